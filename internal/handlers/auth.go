package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rotina-app/rotina-api/internal/constants"
	"github.com/rotina-app/rotina-api/internal/database"
	"github.com/rotina-app/rotina-api/internal/dto"
	apierrors "github.com/rotina-app/rotina-api/internal/errors"
	"github.com/rotina-app/rotina-api/internal/middleware"
	"github.com/rotina-app/rotina-api/internal/models"
	"github.com/rotina-app/rotina-api/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user within a tenant and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		TenantSlug string `json:"tenant_slug" binding:"required"`
		Email      string `json:"email" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		TenantSlug: req.TenantSlug,
		Email:      req.Email,
		Password:   req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			apierrors.RespondWithCode(c, apierrors.ErrCodeInvalidCredentials, "Invalid email or password")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyUserID, user.ID)
	session.Set(constants.SessionKeyTenantID, user.TenantID)
	session.Delete(constants.SessionKeyImpersonating)
	session.Delete(constants.SessionKeyImpersonated)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
		"area":  user.Area,
	})
}

// Logout closes the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the resolved acting identity, including the impersonation flag.
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	// Under a view-as session the acting identity is the impersonated user;
	// surface who is really behind the session as well.
	if actor.Impersonating {
		if realUserID, ok := middleware.GetUserID(c); ok {
			c.JSON(http.StatusOK, gin.H{
				"actor":        dto.ToActorDTO(actor),
				"real_user_id": realUserID,
			})
			return
		}
	}

	c.JSON(http.StatusOK, dto.ToActorDTO(actor))
}

// RequestPasswordReset generates a reset code. Delivery is external; the
// response never confirms whether the account exists.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	type ResetRequest struct {
		TenantSlug string `json:"tenant_slug" binding:"required"`
		Email      string `json:"email" binding:"required"`
	}

	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	if _, err := h.authService.RequestPasswordReset(req.TenantSlug, req.Email); err != nil && !errors.Is(err, services.ErrUserNotFound) {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset code was issued"})
}

// ConfirmPasswordReset consumes a reset code and sets the new password.
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	type ConfirmResetRequest struct {
		TenantSlug  string `json:"tenant_slug" binding:"required"`
		Email       string `json:"email" binding:"required"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	var req ConfirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	if err := h.authService.ResetPassword(req.TenantSlug, req.Email, req.Code, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordTooShort):
			apierrors.BadRequest(c, "password is too short")
		case errors.Is(err, services.ErrInvalidResetCode):
			apierrors.BadRequest(c, "invalid or expired reset code")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// Impersonate starts a read-only view-as session targeting another user.
// Platform administrators only.
func (h *AuthHandler) Impersonate(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	if actor.Impersonating {
		apierrors.Forbidden(c, "already impersonating")
		return
	}

	var homeTenant models.Tenant
	if err := database.GetDB().First(&homeTenant, actor.TenantID).Error; err != nil ||
		actor.Role != models.RoleAdmin || homeTenant.Slug != constants.PlatformTenantSlug {
		apierrors.Forbidden(c, "")
		return
	}

	type ImpersonateRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}

	var req ImpersonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "")
		return
	}

	target, err := h.authService.GetUser(req.UserID)
	if err != nil {
		apierrors.NotFound(c, "")
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyImpersonating, true)
	session.Set(constants.SessionKeyImpersonated, target.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Impersonation started", "user_id": target.ID})
}

// StopImpersonation ends a view-as session.
func (h *AuthHandler) StopImpersonation(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(constants.SessionKeyImpersonating)
	session.Delete(constants.SessionKeyImpersonated)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Impersonation stopped"})
}
