package models

import (
	"time"

	"gorm.io/gorm"
)

type JustificationStatus string

const (
	JustificationPending  JustificationStatus = "pending"
	JustificationApproved JustificationStatus = "approved"
	JustificationRefused  JustificationStatus = "refused"
)

// CompositeStatus is the single per-task view over the justification status
// and the task-level block flag. BLOCKED comes from the task, not from any
// justification row.
type CompositeStatus string

const (
	CompositeNone     CompositeStatus = "NONE"
	CompositePending  CompositeStatus = "PENDING"
	CompositeApproved CompositeStatus = "APPROVED"
	CompositeRefused  CompositeStatus = "REFUSED"
	CompositeBlocked  CompositeStatus = "BLOCKED"
)

type TaskJustification struct {
	ID          uint64              `gorm:"primarykey" json:"id"`
	TenantID    uint64              `gorm:"not null;index" json:"tenant_id"`
	TaskID      uint64              `gorm:"not null;index" json:"task_id"`
	Description string              `gorm:"type:text;not null" json:"description"`
	Status      JustificationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	// PendingTaskID mirrors TaskID while Status is pending and is NULLed on
	// review. The unique index makes "one pending per task" hold under
	// concurrent creates without relying on a read-then-write check.
	PendingTaskID *uint64 `gorm:"uniqueIndex:idx_justifications_pending_task" json:"-"`

	CreatedBy     string     `gorm:"type:varchar(255);not null" json:"created_by"`
	ReviewedBy    *string    `gorm:"type:varchar(255)" json:"reviewed_by"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	ReviewComment string     `gorm:"type:varchar(2000)" json:"review_comment"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Task      Task                    `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Evidences []JustificationEvidence `gorm:"foreignKey:JustificationID" json:"evidences,omitempty"`
}
