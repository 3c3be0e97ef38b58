package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotina-app/rotina-api/internal/access"
	"github.com/rotina-app/rotina-api/internal/constants"
	"github.com/rotina-app/rotina-api/internal/models"
	"github.com/rotina-app/rotina-api/internal/repository"
	"github.com/rotina-app/rotina-api/internal/storage"
	"github.com/rotina-app/rotina-api/internal/taskstatus"
	"gorm.io/gorm"
)

var (
	ErrJustificationNotFound  = errors.New("justification not found")
	ErrNotResponsible         = errors.New("only the responsible user may justify the task")
	ErrTaskNotLate            = errors.New("task is not completed late")
	ErrTaskBlocked            = errors.New("task is blocked for new justifications")
	ErrPendingExists          = errors.New("a pending justification already exists for the task")
	ErrAlreadyReviewed        = errors.New("justification was already reviewed")
	ErrDescriptionRequired    = errors.New("description is required")
	ErrDescriptionTooLong     = errors.New("description exceeds the maximum length")
	ErrCommentTooLong         = errors.New("review comment exceeds the maximum length")
	ErrReviewForbidden        = errors.New("actor may not review justifications for this task")
	ErrInvalidReviewAction    = errors.New("invalid review action")
	ErrNotEvidenceOwner       = errors.New("only the justification creator may manage evidence")
	ErrEvidenceExists         = errors.New("justification already has an evidence")
	ErrEvidenceNotFound       = errors.New("evidence not found")
	ErrEvidenceTooLarge       = errors.New("evidence exceeds the size ceiling")
	ErrEvidenceMimeNotAllowed = errors.New("evidence mime type is not allowed")
	ErrInvalidEvidencePayload = errors.New("evidence payload is not valid base64")
)

// ReviewAction is a reviewer's decision over a pending justification.
type ReviewAction string

const (
	ReviewApprove        ReviewAction = "approve"
	ReviewRefuse         ReviewAction = "refuse"
	ReviewRefuseAndBlock ReviewAction = "refuse_and_block"
)

// JustificationService drives the late-completion justification workflow:
// NONE -> PENDING -> {APPROVED, REFUSED}, with the orthogonal task-level
// block flag gating re-entry to PENDING.
type JustificationService struct {
	justRepo repository.JustificationRepository
	taskRepo repository.TaskRepository
	store    *storage.EvidenceStore
	loc      *time.Location
	now      func() time.Time
}

// NewJustificationService creates a new JustificationService.
func NewJustificationService(justRepo repository.JustificationRepository, taskRepo repository.TaskRepository, store *storage.EvidenceStore, loc *time.Location) *JustificationService {
	return &JustificationService{
		justRepo: justRepo,
		taskRepo: taskRepo,
		store:    store,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *JustificationService) today() time.Time {
	return s.now().In(s.loc)
}

// Create opens a new pending justification for a late-completed task. The
// one-pending-per-task rule is ultimately decided by the repository's unique
// index, so two concurrent calls cannot both succeed.
func (s *JustificationService) Create(actor access.Actor, taskID uint64, description string) (*models.TaskJustification, error) {
	task, err := s.taskRepo.FindByID(actor.TenantID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if actor.Role != models.RoleUser || actor.Email != task.ResponsibleEmail {
		return nil, ErrNotResponsible
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if len(description) > constants.MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	if taskstatus.Derive(task.Prazo, task.Realizado, s.today()) != taskstatus.StatusDoneLate {
		return nil, ErrTaskNotLate
	}
	if task.JustificationBlocked {
		return nil, ErrTaskBlocked
	}

	justification := &models.TaskJustification{
		TenantID:    actor.TenantID,
		TaskID:      task.ID,
		Description: description,
		CreatedBy:   actor.Email,
	}

	if err := s.justRepo.CreatePending(justification); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, ErrPendingExists
		}
		return nil, fmt.Errorf("failed to create justification: %w", err)
	}

	return justification, nil
}

// AttachEvidenceInput carries an evidence upload. Payload is base64 as it
// arrives on the wire; it is decoded before the size check.
type AttachEvidenceInput struct {
	FileName string
	MimeType string
	Payload  string
}

// AttachEvidence stores the single evidence file for a pending
// justification, enforcing the mime allow-list and the size ceiling.
func (s *JustificationService) AttachEvidence(actor access.Actor, justificationID uint64, input AttachEvidenceInput) (*models.JustificationEvidence, error) {
	justification, err := s.findOwn(actor, justificationID)
	if err != nil {
		return nil, err
	}

	if justification.Status != models.JustificationPending {
		return nil, ErrAlreadyReviewed
	}

	if !constants.AllowedEvidenceMimeTypes[input.MimeType] {
		return nil, ErrEvidenceMimeNotAllowed
	}

	payload, err := base64.StdEncoding.DecodeString(input.Payload)
	if err != nil {
		return nil, ErrInvalidEvidencePayload
	}
	if len(payload) == 0 {
		return nil, ErrInvalidEvidencePayload
	}
	if len(payload) > constants.MaxEvidenceSize {
		return nil, ErrEvidenceTooLarge
	}

	count, err := s.justRepo.CountEvidence(justification.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check evidence: %w", err)
	}
	if count >= constants.MaxEvidencesPerJustification {
		return nil, ErrEvidenceExists
	}

	storedPath, err := s.store.Save(actor.TenantID, justification.ID, input.FileName, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to persist evidence: %w", err)
	}

	evidence := &models.JustificationEvidence{
		JustificationID: justification.ID,
		FileName:        input.FileName,
		StoredPath:      storedPath,
		MimeType:        input.MimeType,
		FileSize:        int64(len(payload)),
		UploadedBy:      actor.Email,
		UploadedAt:      s.now(),
	}

	if err := s.justRepo.CreateEvidence(evidence); err != nil {
		// Lost the race: drop the orphaned file before reporting the cap.
		_ = s.store.Remove(storedPath)
		if errors.Is(err, repository.ErrDuplicateEvidence) {
			return nil, ErrEvidenceExists
		}
		return nil, fmt.Errorf("failed to record evidence: %w", err)
	}

	return evidence, nil
}

// RemoveEvidence deletes the evidence of a still-pending justification.
func (s *JustificationService) RemoveEvidence(actor access.Actor, justificationID uint64) error {
	justification, err := s.findOwn(actor, justificationID)
	if err != nil {
		return err
	}

	if justification.Status != models.JustificationPending {
		return ErrAlreadyReviewed
	}

	evidence, err := s.justRepo.FindEvidence(justification.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEvidenceNotFound
		}
		return fmt.Errorf("failed to find evidence: %w", err)
	}

	if err := s.justRepo.DeleteEvidence(justification.ID); err != nil {
		return fmt.Errorf("failed to delete evidence: %w", err)
	}

	return s.store.Remove(evidence.StoredPath)
}

// Review finalizes a pending justification. refuse_and_block additionally
// flips the task's block flag in the same transaction. The comment is
// persisted on refusal paths only.
func (s *JustificationService) Review(actor access.Actor, justificationID uint64, action ReviewAction, comment string) (*models.TaskJustification, error) {
	justification, err := s.justRepo.FindByID(actor.TenantID, justificationID, "Task")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJustificationNotFound
		}
		return nil, fmt.Errorf("failed to find justification: %w", err)
	}

	if !access.CanReviewJustification(actor, &justification.Task) {
		if !access.CanSee(actor, &justification.Task) {
			return nil, ErrJustificationNotFound
		}
		return nil, ErrReviewForbidden
	}

	if justification.Status != models.JustificationPending {
		return nil, ErrAlreadyReviewed
	}

	comment = strings.TrimSpace(comment)
	if len(comment) > constants.MaxReviewCommentLength {
		return nil, ErrCommentTooLong
	}

	blockTask := false
	switch action {
	case ReviewApprove:
		justification.Status = models.JustificationApproved
		comment = ""
	case ReviewRefuse:
		justification.Status = models.JustificationRefused
	case ReviewRefuseAndBlock:
		justification.Status = models.JustificationRefused
		blockTask = true
	default:
		return nil, ErrInvalidReviewAction
	}

	reviewedAt := s.now()
	reviewer := actor.Email
	justification.ReviewedBy = &reviewer
	justification.ReviewedAt = &reviewedAt
	justification.ReviewComment = comment
	justification.PendingTaskID = nil

	if err := s.justRepo.Review(justification, blockTask); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to review justification: %w", err)
	}

	return justification, nil
}

// Unblock lifts the punitive block flag from a task, permitting a new
// justification cycle. The already-refused justification stays as it is.
func (s *JustificationService) Unblock(actor access.Actor, taskID uint64) error {
	task, err := s.taskRepo.FindByID(actor.TenantID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !access.CanReviewJustification(actor, task) {
		if !access.CanSee(actor, task) {
			return ErrTaskNotFound
		}
		return ErrReviewForbidden
	}

	if err := s.taskRepo.SetJustificationBlock(actor.TenantID, taskID, false, "", nil); err != nil {
		return fmt.Errorf("failed to unblock task: %w", err)
	}

	return nil
}

// Composite computes the single composite view over the task-level block
// flag and the latest justification. Every read path uses this; nothing
// re-derives it ad hoc.
func Composite(task *models.Task, latest *models.TaskJustification) models.CompositeStatus {
	if task.JustificationBlocked {
		return models.CompositeBlocked
	}
	if latest == nil {
		return models.CompositeNone
	}
	switch latest.Status {
	case models.JustificationPending:
		return models.CompositePending
	case models.JustificationApproved:
		return models.CompositeApproved
	case models.JustificationRefused:
		return models.CompositeRefused
	default:
		return models.CompositeNone
	}
}

// TaskJustificationView pairs a task with its composite justification state.
type TaskJustificationView struct {
	Task      models.Task
	Latest    *models.TaskJustification
	Composite models.CompositeStatus
}

// MyLateTasks returns the acting USER's late-completed tasks with their
// composite justification status.
func (s *JustificationService) MyLateTasks(actor access.Actor, page, pageSize int) ([]TaskJustificationView, int64, error) {
	if actor.Role != models.RoleUser {
		return nil, 0, ErrNotResponsible
	}

	email := actor.Email
	status := taskstatus.StatusDoneLate
	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		TenantID:         actor.TenantID,
		ResponsibleEmail: &email,
		Status:           &status,
		Page:             page,
		PageSize:         pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list late tasks: %w", err)
	}

	views := make([]TaskJustificationView, 0, len(tasks))
	for i := range tasks {
		task := tasks[i]
		latest, err := s.justRepo.FindLatestByTaskID(actor.TenantID, task.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, fmt.Errorf("failed to find justification: %w", err)
		}
		views = append(views, TaskJustificationView{
			Task:      task,
			Latest:    latest,
			Composite: Composite(&task, latest),
		})
	}

	return views, total, nil
}

// Queue lists justifications awaiting or past review for LEADER (own area)
// or ADMIN (tenant-wide).
func (s *JustificationService) Queue(actor access.Actor, status models.JustificationStatus, page, pageSize int) ([]models.TaskJustification, int64, error) {
	var area *string
	switch actor.Role {
	case models.RoleAdmin:
		// tenant-wide
	case models.RoleLeader:
		a := actor.Area
		area = &a
	default:
		return nil, 0, ErrReviewForbidden
	}

	return s.justRepo.ListByStatus(actor.TenantID, status, area, page, pageSize)
}

// BlockedTasks lists the tasks currently blocked for justification, scoped
// like Queue.
func (s *JustificationService) BlockedTasks(actor access.Actor, page, pageSize int) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		TenantID: actor.TenantID,
		Page:     page,
		PageSize: pageSize,
	}
	blocked := true
	filter.Blocked = &blocked

	switch actor.Role {
	case models.RoleAdmin:
		// tenant-wide
	case models.RoleLeader:
		area := actor.Area
		filter.Area = &area
	default:
		return nil, 0, ErrReviewForbidden
	}

	return s.taskRepo.List(filter)
}

// findOwn loads a justification the actor created. Anything the actor may
// not act on comes back as not found or forbidden, never as raw data.
func (s *JustificationService) findOwn(actor access.Actor, justificationID uint64) (*models.TaskJustification, error) {
	justification, err := s.justRepo.FindByID(actor.TenantID, justificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJustificationNotFound
		}
		return nil, fmt.Errorf("failed to find justification: %w", err)
	}

	if justification.CreatedBy != actor.Email {
		return nil, ErrNotEvidenceOwner
	}

	return justification, nil
}
