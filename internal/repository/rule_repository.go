package repository

import (
	"github.com/rotina-app/rotina-api/internal/models"
	"gorm.io/gorm"
)

// GormRuleRepository is a GORM implementation of RuleRepository
type GormRuleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &GormRuleRepository{db: db}
}

// GetAllowedRecurrences returns the allow-listed recurrence values for an area
func (r *GormRuleRepository) GetAllowedRecurrences(tenantID uint64, area string) ([]string, error) {
	var recurrences []string
	err := r.db.Model(&models.Rule{}).
		Where("tenant_id = ? AND area = ?", tenantID, area).
		Pluck("recurrence", &recurrences).Error
	if err != nil {
		return nil, err
	}
	return recurrences, nil
}
