package models

import (
	"time"

	"gorm.io/gorm"
)

type Tenant struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Slug      string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Active    bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Users []User `gorm:"foreignKey:TenantID" json:"users,omitempty"`
	Tasks []Task `gorm:"foreignKey:TenantID" json:"tasks,omitempty"`
}
