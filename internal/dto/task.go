package dto

import (
	"time"

	"github.com/rotina-app/rotina-api/internal/models"
	"github.com/rotina-app/rotina-api/internal/taskstatus"
	"github.com/rotina-app/rotina-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                     uint64            `json:"id"`
	TenantID               uint64            `json:"tenant_id"`
	Area                   string            `json:"area"`
	Titulo                 string            `json:"titulo"`
	ResponsibleEmail       string            `json:"responsible_email"`
	ResponsibleName        string            `json:"responsible_name"`
	Recurrence             string            `json:"recurrence,omitempty"`
	Prazo                  *string           `json:"prazo"`
	Realizado              *string           `json:"realizado"`
	Status                 taskstatus.Status `json:"status"`
	Observations           string            `json:"observations,omitempty"`
	ParentTaskID           *uint64           `json:"parent_task_id,omitempty"`
	JustificationBlocked   bool              `json:"justification_blocked"`
	JustificationBlockedAt *time.Time        `json:"justification_blocked_at,omitempty"`
	JustificationBlockedBy string            `json:"justification_blocked_by,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:                     task.ID,
		TenantID:               task.TenantID,
		Area:                   task.Area,
		Titulo:                 task.Titulo,
		ResponsibleEmail:       task.ResponsibleEmail,
		ResponsibleName:        task.ResponsibleName,
		Recurrence:             task.Recurrence,
		Prazo:                  formatDate(task.Prazo),
		Realizado:              formatDate(task.Realizado),
		Status:                 task.Status,
		Observations:           task.Observations,
		ParentTaskID:           task.ParentTaskID,
		JustificationBlocked:   task.JustificationBlocked,
		JustificationBlockedAt: task.JustificationBlockedAt,
		JustificationBlockedBy: task.JustificationBlockedBy,
		CreatedAt:              task.CreatedAt,
		UpdatedAt:              task.UpdatedAt,
	}
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, pagination utils.PaginationResponse) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return TaskListResponse{
		Tasks:      items,
		Pagination: pagination,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(taskstatus.DateLayout)
	return &formatted
}
