package dto

import (
	"time"

	"github.com/rotina-app/rotina-api/internal/models"
	"github.com/rotina-app/rotina-api/internal/services"
	"github.com/rotina-app/rotina-api/internal/utils"
)

// EvidenceDTO represents an evidence in API responses
type EvidenceDTO struct {
	ID         uint64    `json:"id"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	FileSize   int64     `json:"file_size"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// JustificationDTO represents a justification in API responses
type JustificationDTO struct {
	ID            uint64                     `json:"id"`
	TaskID        uint64                     `json:"task_id"`
	Description   string                     `json:"description"`
	Status        models.JustificationStatus `json:"status"`
	CreatedBy     string                     `json:"created_by"`
	CreatedAt     time.Time                  `json:"created_at"`
	ReviewedBy    *string                    `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time                 `json:"reviewed_at,omitempty"`
	ReviewComment string                     `json:"review_comment,omitempty"`
	Task          *TaskDTO                   `json:"task,omitempty"`
	Evidence      *EvidenceDTO               `json:"evidence,omitempty"`
}

// JustificationListResponse represents a paginated review queue
type JustificationListResponse struct {
	Justifications []JustificationDTO       `json:"justifications"`
	Pagination     utils.PaginationResponse `json:"pagination"`
}

// TaskJustificationViewDTO pairs a task with its composite justification state
type TaskJustificationViewDTO struct {
	Task          TaskDTO                `json:"task"`
	Composite     models.CompositeStatus `json:"composite_status"`
	Justification *JustificationDTO      `json:"justification,omitempty"`
}

// ToEvidenceDTO converts a JustificationEvidence model to EvidenceDTO
func ToEvidenceDTO(e models.JustificationEvidence) EvidenceDTO {
	return EvidenceDTO{
		ID:         e.ID,
		FileName:   e.FileName,
		MimeType:   e.MimeType,
		FileSize:   e.FileSize,
		UploadedBy: e.UploadedBy,
		UploadedAt: e.UploadedAt,
	}
}

// ToJustificationDTO converts a TaskJustification model to JustificationDTO
func ToJustificationDTO(j models.TaskJustification) JustificationDTO {
	dto := JustificationDTO{
		ID:            j.ID,
		TaskID:        j.TaskID,
		Description:   j.Description,
		Status:        j.Status,
		CreatedBy:     j.CreatedBy,
		CreatedAt:     j.CreatedAt,
		ReviewedBy:    j.ReviewedBy,
		ReviewedAt:    j.ReviewedAt,
		ReviewComment: j.ReviewComment,
	}

	// Include task if preloaded
	if j.Task.ID != 0 {
		task := ToTaskDTO(j.Task)
		dto.Task = &task
	}

	// Include evidence if preloaded
	if len(j.Evidences) > 0 {
		evidence := ToEvidenceDTO(j.Evidences[0])
		dto.Evidence = &evidence
	}

	return dto
}

// ToJustificationListResponse converts a review queue page
func ToJustificationListResponse(justifications []models.TaskJustification, pagination utils.PaginationResponse) JustificationListResponse {
	items := make([]JustificationDTO, len(justifications))
	for i, j := range justifications {
		items[i] = ToJustificationDTO(j)
	}
	return JustificationListResponse{
		Justifications: items,
		Pagination:     pagination,
	}
}

// ToTaskJustificationViewDTO converts a composite view entry
func ToTaskJustificationViewDTO(view services.TaskJustificationView) TaskJustificationViewDTO {
	dto := TaskJustificationViewDTO{
		Task:      ToTaskDTO(view.Task),
		Composite: view.Composite,
	}
	if view.Latest != nil {
		j := ToJustificationDTO(*view.Latest)
		dto.Justification = &j
	}
	return dto
}
