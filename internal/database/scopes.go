package database

import (
	"gorm.io/gorm"
)

// Paginate applies page-numbered pagination to a GORM query. Non-positive
// values disable it so unpaged internal reads stay possible.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 || pageSize <= 0 {
			return db
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// TenantScoped constrains a query to one tenant. Every repository read and
// write goes through this scope so cross-tenant rows are simply absent.
func TenantScoped(tenantID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}
