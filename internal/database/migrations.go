package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for scoped listing and queues
		{"tasks", "idx_tasks_tenant_area", "tenant_id, area"},
		{"tasks", "idx_tasks_tenant_responsible", "tenant_id, responsible_email"},
		{"tasks", "idx_tasks_tenant_status", "tenant_id, status"},
		{"tasks", "idx_tasks_prazo", "prazo"},

		// Justification queue indexes
		{"task_justifications", "idx_justifications_tenant_status", "tenant_id, status"},
		{"task_justifications", "idx_justifications_task_id", "task_id"},

		// Rule lookup index
		{"rules", "idx_rules_tenant_area", "tenant_id, area"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM information_schema.statistics
			WHERE table_name = ? AND index_name = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
