package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rotina-app/rotina-api/internal/access"
	"github.com/rotina-app/rotina-api/internal/models"
	"github.com/rotina-app/rotina-api/internal/repository"
	"github.com/rotina-app/rotina-api/internal/taskstatus"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskForbidden        = errors.New("actor may not modify this task")
	ErrTituloRequired       = errors.New("titulo is required")
	ErrAreaRequired         = errors.New("area is required")
	ErrResponsibleRequired  = errors.New("responsible email is required")
	ErrAreaOutsideScope     = errors.New("task area is outside the actor's scope")
	ErrSelfEditSurface      = errors.New("users may only edit observations and realizado")
	ErrNoRule               = errors.New("no recurrence rules configured for area")
	ErrRecurrenceNotAllowed = errors.New("recurrence is not allow-listed for area")
	ErrParentTaskNotFound   = errors.New("parent task not found")
)

// TaskService handles task business logic.
type TaskService struct {
	taskRepo repository.TaskRepository
	ruleRepo repository.RuleRepository
	loc      *time.Location
	now      func() time.Time
}

// NewTaskService creates a new TaskService. loc is the reference location
// used for every calendar-day comparison.
func NewTaskService(taskRepo repository.TaskRepository, ruleRepo repository.RuleRepository, loc *time.Location) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		ruleRepo: ruleRepo,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *TaskService) today() time.Time {
	return s.now().In(s.loc)
}

// CreateTaskInput represents input for creating a task. Status is absent on
// purpose: it is derived, never supplied.
type CreateTaskInput struct {
	Titulo           string
	Area             string
	ResponsibleEmail string
	ResponsibleName  string
	Recurrence       string
	Prazo            *time.Time
	Realizado        *time.Time
	Observations     string
	ParentTaskID     *uint64
}

// Create creates a task on behalf of a responsible actor. ADMIN creates
// anywhere in the tenant, LEADER within their area, and USER only for
// themself, gated by the area's recurrence allow-list.
func (s *TaskService) Create(actor access.Actor, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Titulo) == "" {
		return nil, ErrTituloRequired
	}

	area := strings.TrimSpace(input.Area)
	responsibleEmail := strings.TrimSpace(input.ResponsibleEmail)
	responsibleName := strings.TrimSpace(input.ResponsibleName)

	switch actor.Role {
	case models.RoleAdmin:
		// unrestricted within the tenant
	case models.RoleLeader:
		if area == "" {
			area = actor.Area
		}
		if area != actor.Area {
			return nil, ErrAreaOutsideScope
		}
	case models.RoleUser:
		area = actor.Area
		responsibleEmail = actor.Email
		responsibleName = actor.Name

		allowed, err := s.ruleRepo.GetAllowedRecurrences(actor.TenantID, area)
		if err != nil {
			return nil, fmt.Errorf("failed to look up recurrence rules: %w", err)
		}
		if len(allowed) == 0 {
			return nil, ErrNoRule
		}
		if !containsString(allowed, input.Recurrence) {
			return nil, ErrRecurrenceNotAllowed
		}
	default:
		return nil, ErrTaskForbidden
	}

	if area == "" {
		return nil, ErrAreaRequired
	}
	if responsibleEmail == "" {
		return nil, ErrResponsibleRequired
	}

	if input.ParentTaskID != nil {
		if _, err := s.taskRepo.FindByID(actor.TenantID, *input.ParentTaskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentTaskNotFound
			}
			return nil, fmt.Errorf("failed to find parent task: %w", err)
		}
	}

	task := &models.Task{
		TenantID:         actor.TenantID,
		Area:             area,
		Titulo:           strings.TrimSpace(input.Titulo),
		ResponsibleEmail: responsibleEmail,
		ResponsibleName:  responsibleName,
		Recurrence:       input.Recurrence,
		Prazo:            input.Prazo,
		Realizado:        input.Realizado,
		Observations:     input.Observations,
		ParentTaskID:     input.ParentTaskID,
		CreatedBy:        actor.Email,
	}
	task.Status = taskstatus.Derive(task.Prazo, task.Realizado, s.today())

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// Get returns a task visible to the actor. Tasks the actor may not see are
// reported as not found so their existence does not leak.
func (s *TaskService) Get(actor access.Actor, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(actor.TenantID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !access.CanSee(actor, task) {
		return nil, ErrTaskNotFound
	}

	s.refreshStatus(task)
	return task, nil
}

// ListTasksInput represents filters for listing tasks.
type ListTasksInput struct {
	Status      *taskstatus.Status
	SortByPrazo bool
	Page        int
	PageSize    int
}

// List returns the tasks in the actor's visibility scope: the whole tenant
// for ADMIN, the actor's area for LEADER, the actor's own tasks for USER.
func (s *TaskService) List(actor access.Actor, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		TenantID:    actor.TenantID,
		Status:      input.Status,
		SortByPrazo: input.SortByPrazo,
		Page:        input.Page,
		PageSize:    input.PageSize,
	}

	switch actor.Role {
	case models.RoleAdmin:
		// tenant-wide
	case models.RoleLeader:
		area := actor.Area
		filter.Area = &area
	case models.RoleUser:
		email := actor.Email
		filter.ResponsibleEmail = &email
	default:
		return []models.Task{}, 0, nil
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	for i := range tasks {
		s.refreshStatus(&tasks[i])
	}

	return tasks, total, nil
}

// Update applies a patch to a task. The stricter USER self-edit surface
// (observations and realizado only) is enforced here, before the access
// predicate, exactly per role.
func (s *TaskService) Update(actor access.Actor, taskID uint64, patch access.TaskPatch) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(actor.TenantID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !access.CanSee(actor, task) {
		return nil, ErrTaskNotFound
	}

	if actor.Role == models.RoleUser && touchesBeyondSelfEdit(patch) {
		return nil, ErrSelfEditSurface
	}

	if !access.CanEdit(actor, task, patch) {
		return nil, ErrTaskForbidden
	}

	applyPatch(task, patch)
	task.Status = taskstatus.Derive(task.Prazo, task.Realizado, s.today())

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete soft deletes a task the actor is allowed to delete.
func (s *TaskService) Delete(actor access.Actor, taskID uint64) error {
	task, err := s.taskRepo.FindByID(actor.TenantID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !access.CanSee(actor, task) {
		return ErrTaskNotFound
	}
	if !access.CanDelete(actor, task) {
		return ErrTaskForbidden
	}

	if err := s.taskRepo.Delete(actor.TenantID, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// refreshStatus recomputes the derived status and persists it when the
// stored value has drifted (a task crossing its prazo since the last write).
// Only the status column is written, so a concurrent update to other fields
// cannot be clobbered by this read-path refresh.
func (s *TaskService) refreshStatus(task *models.Task) {
	derived := taskstatus.Derive(task.Prazo, task.Realizado, s.today())
	if task.Status == derived {
		return
	}
	task.Status = derived
	if err := s.taskRepo.UpdateStatus(task.TenantID, task.ID, derived); err != nil {
		log.Printf("failed to persist refreshed status for task %d: %v", task.ID, err)
	}
}

// applyPatch copies the patch fields onto the task. Clear flags win over
// their value counterparts.
func applyPatch(task *models.Task, patch access.TaskPatch) {
	if patch.Titulo != nil {
		task.Titulo = *patch.Titulo
	}
	if patch.Area != nil {
		task.Area = *patch.Area
	}
	if patch.ResponsibleEmail != nil {
		task.ResponsibleEmail = *patch.ResponsibleEmail
	}
	if patch.ResponsibleName != nil {
		task.ResponsibleName = *patch.ResponsibleName
	}
	if patch.Recurrence != nil {
		task.Recurrence = *patch.Recurrence
	}
	if patch.Observations != nil {
		task.Observations = *patch.Observations
	}
	if patch.ClearPrazo {
		task.Prazo = nil
	} else if patch.Prazo != nil {
		task.Prazo = patch.Prazo
	}
	if patch.ClearRealizado {
		task.Realizado = nil
	} else if patch.Realizado != nil {
		task.Realizado = patch.Realizado
	}
}

// touchesBeyondSelfEdit reports whether a patch reaches outside the USER
// self-edit surface of observations and realizado.
func touchesBeyondSelfEdit(patch access.TaskPatch) bool {
	return patch.Titulo != nil ||
		patch.Area != nil ||
		patch.ResponsibleEmail != nil ||
		patch.ResponsibleName != nil ||
		patch.Recurrence != nil ||
		patch.Prazo != nil ||
		patch.ClearPrazo
}

// containsString reports whether values contains target.
func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
