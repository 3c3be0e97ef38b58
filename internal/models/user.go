package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleLeader Role = "LEADER"
	RoleUser   Role = "USER"
)

type User struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	TenantID     uint64 `gorm:"not null;uniqueIndex:idx_users_tenant_email" json:"tenant_id"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_tenant_email" json:"email"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	Area         string `gorm:"type:varchar(100);not null" json:"area"`
	CanDelete    bool   `gorm:"not null;default:false" json:"can_delete"`
	Active       bool   `gorm:"not null;default:true" json:"active"`

	// Reset codes are generated here; delivery is handled elsewhere.
	ResetCode          *string    `gorm:"type:varchar(20)" json:"-"`
	ResetCodeExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Tenant Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}
