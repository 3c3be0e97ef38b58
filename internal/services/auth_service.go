package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotina-app/rotina-api/internal/constants"
	"github.com/rotina-app/rotina-api/internal/models"
	"github.com/rotina-app/rotina-api/internal/repository"
	"github.com/rotina-app/rotina-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is inactive")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrInvalidResetCode   = errors.New("invalid or expired reset code")
	ErrPasswordTooShort   = errors.New("password is too short")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo   repository.UserRepository
	tenantRepo repository.TenantRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tenantRepo repository.TenantRepository) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	TenantSlug string
	Email      string
	Password   string
}

// Login verifies credentials within a tenant and returns the authenticated
// user. A missing tenant, missing user and wrong password are deliberately
// indistinguishable to the caller.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	tenant, err := s.tenantRepo.FindBySlug(strings.TrimSpace(input.TenantSlug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find tenant: %w", err)
	}
	if !tenant.Active {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(tenant.ID, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves an active user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	return user, nil
}

// RequestPasswordReset generates and stores a reset code for the user.
// Delivering the code (mail, chat) is an external concern; the code is
// returned so that layer can pick it up.
func (s *AuthService) RequestPasswordReset(tenantSlug, email string) (string, error) {
	tenant, err := s.tenantRepo.FindBySlug(strings.TrimSpace(tenantSlug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to find tenant: %w", err)
	}

	user, err := s.userRepo.FindByEmail(tenant.ID, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	code, err := utils.GenerateResetCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}

	if err := s.userRepo.SetResetCode(user.ID, code, time.Now().Add(30*time.Minute)); err != nil {
		return "", fmt.Errorf("failed to store reset code: %w", err)
	}

	return code, nil
}

// ResetPassword consumes a previously issued reset code and replaces the
// user's password. A wrong, expired or never-issued code all fail with the
// same error.
func (s *AuthService) ResetPassword(tenantSlug, email, code, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	tenant, err := s.tenantRepo.FindBySlug(strings.TrimSpace(tenantSlug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetCode
		}
		return fmt.Errorf("failed to find tenant: %w", err)
	}

	user, err := s.userRepo.FindByEmail(tenant.ID, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetCode
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.ResetCode == nil || user.ResetCodeExpiresAt == nil {
		return ErrInvalidResetCode
	}
	if *user.ResetCode != code || time.Now().After(*user.ResetCodeExpiresAt) {
		return ErrInvalidResetCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(user.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
