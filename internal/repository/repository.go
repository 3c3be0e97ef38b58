package repository

import (
	"time"

	"github.com/rotina-app/rotina-api/internal/models"
	"github.com/rotina-app/rotina-api/internal/taskstatus"
)

// TaskRepository defines the interface for task data access.
// Every method is scoped to one tenant; rows from other tenants are as good
// as absent.
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID within a tenant, with optional preloading
	FindByID(tenantID, id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// UpdateStatus persists a re-derived status without touching any other
	// column, so lazy refreshes on read paths cannot clobber concurrent
	// writes
	UpdateStatus(tenantID, taskID uint64, status taskstatus.Status) error

	// Delete soft deletes a task within a tenant
	Delete(tenantID, id uint64) error

	// SetJustificationBlock flips the punitive block flag and its metadata
	SetJustificationBlock(tenantID, taskID uint64, blocked bool, by string, at *time.Time) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	TenantID         uint64
	Area             *string
	ResponsibleEmail *string
	Status           *taskstatus.Status
	Blocked          *bool
	SortByPrazo      bool
	Page             int
	PageSize         int
}

// JustificationRepository defines the interface for justification data access
type JustificationRepository interface {
	// CreatePending inserts a new pending justification. A concurrent pending
	// row for the same task surfaces as ErrDuplicatePending.
	CreatePending(j *models.TaskJustification) error

	// FindByID finds a justification by ID within a tenant
	FindByID(tenantID, id uint64, preload ...string) (*models.TaskJustification, error)

	// FindLatestByTaskID returns the most recent justification for a task
	FindLatestByTaskID(tenantID, taskID uint64) (*models.TaskJustification, error)

	// ListByStatus lists justifications in a review state, optionally
	// restricted to one area (for leader queues)
	ListByStatus(tenantID uint64, status models.JustificationStatus, area *string, page, pageSize int) ([]models.TaskJustification, int64, error)

	// Review finalizes a pending justification and, when blockTask is set,
	// flips the task block flag in the same transaction
	Review(j *models.TaskJustification, blockTask bool) error

	// CreateEvidence inserts the single evidence row for a justification.
	// A second row surfaces as ErrDuplicateEvidence.
	CreateEvidence(e *models.JustificationEvidence) error

	// FindEvidence returns the evidence row for a justification, if any
	FindEvidence(justificationID uint64) (*models.JustificationEvidence, error)

	// CountEvidence reports how many evidence rows a justification carries
	CountEvidence(justificationID uint64) (int64, error)

	// DeleteEvidence removes the evidence row
	DeleteEvidence(justificationID uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds an active user by email within a tenant
	FindByEmail(tenantID uint64, email string) (*models.User, error)

	// SetResetCode stores a password-reset code with its expiry
	SetResetCode(userID uint64, code string, expiresAt time.Time) error

	// UpdatePassword replaces the password hash and clears any reset code
	UpdatePassword(userID uint64, passwordHash string) error
}

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	// FindByID finds a tenant by ID
	FindByID(id uint64) (*models.Tenant, error)

	// FindBySlug finds a tenant by slug
	FindBySlug(slug string) (*models.Tenant, error)

	// ListActive lists active tenants (platform administration views)
	ListActive() ([]models.Tenant, error)
}

// RuleRepository is the per-area recurrence allow-list consumed by
// self-service task creation. Rule administration lives elsewhere.
type RuleRepository interface {
	// GetAllowedRecurrences returns the allow-listed recurrence values for an area
	GetAllowedRecurrences(tenantID uint64, area string) ([]string, error)
}
