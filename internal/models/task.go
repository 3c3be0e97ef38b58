package models

import (
	"time"

	"github.com/rotina-app/rotina-api/internal/taskstatus"
	"gorm.io/gorm"
)

type Task struct {
	ID               uint64            `gorm:"primarykey" json:"id"`
	TenantID         uint64            `gorm:"not null;index" json:"tenant_id"`
	Area             string            `gorm:"type:varchar(100);not null;index" json:"area"`
	Titulo           string            `gorm:"type:varchar(255);not null" json:"titulo"`
	ResponsibleEmail string            `gorm:"type:varchar(255);not null;index" json:"responsible_email"`
	ResponsibleName  string            `gorm:"type:varchar(255);not null" json:"responsible_name"`
	Recurrence       string            `gorm:"type:varchar(50)" json:"recurrence"`
	Prazo            *time.Time        `json:"prazo"`
	Realizado        *time.Time        `json:"realizado"`
	Status           taskstatus.Status `gorm:"type:varchar(30);not null" json:"status"`
	Observations     string            `gorm:"type:text" json:"observations"`
	ParentTaskID     *uint64           `gorm:"index" json:"parent_task_id"`

	JustificationBlocked   bool       `gorm:"not null;default:false" json:"justification_blocked"`
	JustificationBlockedAt *time.Time `json:"justification_blocked_at"`
	JustificationBlockedBy string     `gorm:"type:varchar(255)" json:"justification_blocked_by"`

	CreatedBy string         `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Tenant         Tenant              `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	ParentTask     *Task               `gorm:"foreignKey:ParentTaskID" json:"parent_task,omitempty"`
	Justifications []TaskJustification `gorm:"foreignKey:TaskID" json:"justifications,omitempty"`
}
