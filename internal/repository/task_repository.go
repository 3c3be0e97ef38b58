package repository

import (
	"time"

	"github.com/rotina-app/rotina-api/internal/database"
	"github.com/rotina-app/rotina-api/internal/models"
	"github.com/rotina-app/rotina-api/internal/taskstatus"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID within a tenant, with optional preloading
func (r *GormTaskRepository) FindByID(tenantID, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.Scopes(database.TenantScoped(tenantID))

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Where("tasks.tenant_id = ?", filter.TenantID)

	if filter.Area != nil {
		query = query.Where("tasks.area = ?", *filter.Area)
	}
	if filter.ResponsibleEmail != nil {
		query = query.Where("tasks.responsible_email = ?", *filter.ResponsibleEmail)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Blocked != nil {
		query = query.Where("tasks.justification_blocked = ?", *filter.Blocked)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.SortByPrazo {
		listQuery = listQuery.Order("CASE WHEN tasks.prazo IS NULL THEN 1 ELSE 0 END, tasks.prazo ASC")
	} else {
		listQuery = listQuery.Order("tasks.created_at DESC")
	}

	listQuery = listQuery.Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// UpdateStatus persists a re-derived status without touching other columns.
// A vanished row is not an error; the caller's derived value stands either way.
func (r *GormTaskRepository) UpdateStatus(tenantID, taskID uint64, status taskstatus.Status) error {
	return r.db.Model(&models.Task{}).
		Scopes(database.TenantScoped(tenantID)).
		Where("id = ?", taskID).
		Update("status", status).Error
}

// Delete soft deletes a task within a tenant
func (r *GormTaskRepository) Delete(tenantID, id uint64) error {
	result := r.db.Scopes(database.TenantScoped(tenantID)).Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetJustificationBlock flips the punitive block flag and its metadata
func (r *GormTaskRepository) SetJustificationBlock(tenantID, taskID uint64, blocked bool, by string, at *time.Time) error {
	updates := map[string]interface{}{
		"justification_blocked":    blocked,
		"justification_blocked_at": at,
		"justification_blocked_by": by,
	}

	result := r.db.Model(&models.Task{}).
		Where("tenant_id = ? AND id = ?", tenantID, taskID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
