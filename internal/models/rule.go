package models

import (
	"time"
)

// Rule is one allow-listed recurrence value for an area. Rows are read by
// self-service task creation; rule administration happens elsewhere.
type Rule struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	TenantID   uint64    `gorm:"not null;uniqueIndex:idx_rules_tenant_area_recurrence" json:"tenant_id"`
	Area       string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_rules_tenant_area_recurrence" json:"area"`
	Recurrence string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_rules_tenant_area_recurrence" json:"recurrence"`
	CreatedAt  time.Time `json:"created_at"`
}
