package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/rotina-app/rotina-api/internal/database"
	"github.com/rotina-app/rotina-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrDuplicatePending is returned when a second pending justification for
	// the same task hits the unique index.
	ErrDuplicatePending = errors.New("justification repository: pending justification already exists for task")
	// ErrDuplicateEvidence is returned when a second evidence row for the
	// same justification hits the unique index.
	ErrDuplicateEvidence = errors.New("justification repository: evidence already exists for justification")
)

// GormJustificationRepository is a GORM implementation of JustificationRepository
type GormJustificationRepository struct {
	db *gorm.DB
}

// NewJustificationRepository creates a new JustificationRepository
func NewJustificationRepository(db *gorm.DB) JustificationRepository {
	return &GormJustificationRepository{db: db}
}

// CreatePending inserts a new pending justification. The pending_task_id
// unique index is the arbiter: of two concurrent creates, exactly one row
// lands and the other caller gets ErrDuplicatePending.
func (r *GormJustificationRepository) CreatePending(j *models.TaskJustification) error {
	j.Status = models.JustificationPending
	j.PendingTaskID = &j.TaskID

	if err := r.db.Create(j).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicatePending
		}
		return err
	}
	return nil
}

// FindByID finds a justification by ID within a tenant
func (r *GormJustificationRepository) FindByID(tenantID, id uint64, preload ...string) (*models.TaskJustification, error) {
	var j models.TaskJustification
	query := r.db.Scopes(database.TenantScoped(tenantID))

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&j, id).Error; err != nil {
		return nil, err
	}

	return &j, nil
}

// FindLatestByTaskID returns the most recent justification for a task
func (r *GormJustificationRepository) FindLatestByTaskID(tenantID, taskID uint64) (*models.TaskJustification, error) {
	var j models.TaskJustification
	err := r.db.
		Where("tenant_id = ? AND task_id = ?", tenantID, taskID).
		Order("created_at DESC, id DESC").
		First(&j).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// ListByStatus lists justifications in a review state, optionally restricted
// to one area via the owning task
func (r *GormJustificationRepository) ListByStatus(tenantID uint64, status models.JustificationStatus, area *string, page, pageSize int) ([]models.TaskJustification, int64, error) {
	var justifications []models.TaskJustification

	query := r.db.Model(&models.TaskJustification{}).
		Joins("JOIN tasks ON tasks.id = task_justifications.task_id").
		Where("task_justifications.tenant_id = ?", tenantID).
		Where("task_justifications.status = ?", status).
		Where("tasks.deleted_at IS NULL")

	if area != nil {
		query = query.Where("tasks.area = ?", *area)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("task_justifications.created_at ASC").
		Scopes(database.Paginate(page, pageSize))

	if err := listQuery.Preload("Task").Preload("Evidences").Find(&justifications).Error; err != nil {
		return nil, 0, err
	}

	return justifications, total, nil
}

// Review finalizes a pending justification. The row update and the optional
// task block land in one transaction, and pending_task_id is NULLed so the
// task can enter a new cycle after an unblock.
func (r *GormJustificationRepository) Review(j *models.TaskJustification, blockTask bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":          j.Status,
			"pending_task_id": nil,
			"reviewed_by":     j.ReviewedBy,
			"reviewed_at":     j.ReviewedAt,
			"review_comment":  j.ReviewComment,
		}

		result := tx.Model(&models.TaskJustification{}).
			Where("id = ? AND tenant_id = ? AND status = ?", j.ID, j.TenantID, models.JustificationPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if blockTask {
			var by string
			if j.ReviewedBy != nil {
				by = *j.ReviewedBy
			}
			now := time.Now()
			if j.ReviewedAt != nil {
				now = *j.ReviewedAt
			}
			blockResult := tx.Model(&models.Task{}).
				Where("tenant_id = ? AND id = ?", j.TenantID, j.TaskID).
				Updates(map[string]interface{}{
					"justification_blocked":    true,
					"justification_blocked_at": now,
					"justification_blocked_by": by,
				})
			if blockResult.Error != nil {
				return blockResult.Error
			}
			if blockResult.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}

		return nil
	})
}

// CreateEvidence inserts the single evidence row for a justification
func (r *GormJustificationRepository) CreateEvidence(e *models.JustificationEvidence) error {
	if err := r.db.Create(e).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEvidence
		}
		return err
	}
	return nil
}

// FindEvidence returns the evidence row for a justification, if any
func (r *GormJustificationRepository) FindEvidence(justificationID uint64) (*models.JustificationEvidence, error) {
	var e models.JustificationEvidence
	if err := r.db.Where("justification_id = ?", justificationID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// CountEvidence reports how many evidence rows a justification carries
func (r *GormJustificationRepository) CountEvidence(justificationID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.JustificationEvidence{}).
		Where("justification_id = ?", justificationID).
		Count(&count).Error
	return count, err
}

// DeleteEvidence removes the evidence row. The delete is hard so the unique
// index frees up for a replacement upload.
func (r *GormJustificationRepository) DeleteEvidence(justificationID uint64) error {
	return r.db.Where("justification_id = ?", justificationID).Delete(&models.JustificationEvidence{}).Error
}

// isDuplicateKey reports whether an error is a unique-constraint violation,
// covering the translated gorm error plus the raw mysql and sqlite texts.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
