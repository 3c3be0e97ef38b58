package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rotina-app/rotina-api/internal/cache"
	"github.com/rotina-app/rotina-api/internal/dto"
	apierrors "github.com/rotina-app/rotina-api/internal/errors"
	"github.com/rotina-app/rotina-api/internal/middleware"
	"github.com/rotina-app/rotina-api/internal/models"
	"github.com/rotina-app/rotina-api/internal/services"
	"github.com/rotina-app/rotina-api/internal/utils"
)

type JustificationHandler struct {
	justService  *services.JustificationService
	listingCache *cache.ListingCache
}

func NewJustificationHandler(justService *services.JustificationService, listingCache *cache.ListingCache) *JustificationHandler {
	return &JustificationHandler{
		justService:  justService,
		listingCache: listingCache,
	}
}

// CreateJustification opens a pending justification for a late-completed task.
func (h *JustificationHandler) CreateJustification(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateJustificationRequest struct {
		TaskID      uint64 `json:"task_id" binding:"required"`
		Description string `json:"description" binding:"required"`
	}

	var req CreateJustificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	justification, err := h.justService.Create(actor, req.TaskID, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.listingCache.InvalidateTenant(actor.TenantID)
	c.JSON(http.StatusCreated, dto.ToJustificationDTO(*justification))
}

// AttachEvidence uploads the single evidence file of a pending justification.
func (h *JustificationHandler) AttachEvidence(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	justificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid justification ID")
		return
	}

	type AttachEvidenceRequest struct {
		FileName string `json:"file_name" binding:"required"`
		MimeType string `json:"mime_type" binding:"required"`
		Payload  string `json:"payload" binding:"required"`
	}

	var req AttachEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	evidence, err := h.justService.AttachEvidence(actor, justificationID, services.AttachEvidenceInput{
		FileName: req.FileName,
		MimeType: req.MimeType,
		Payload:  req.Payload,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEvidenceDTO(*evidence))
}

// RemoveEvidence deletes the evidence of a pending justification.
func (h *JustificationHandler) RemoveEvidence(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	justificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid justification ID")
		return
	}

	if err := h.justService.RemoveEvidence(actor, justificationID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Evidence removed"})
}

// ReviewJustification finalizes a pending justification.
func (h *JustificationHandler) ReviewJustification(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	justificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid justification ID")
		return
	}

	type ReviewRequest struct {
		Action  string `json:"action" binding:"required"`
		Comment string `json:"comment"`
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	justification, err := h.justService.Review(actor, justificationID, services.ReviewAction(req.Action), req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.listingCache.InvalidateTenant(actor.TenantID)
	c.JSON(http.StatusOK, dto.ToJustificationDTO(*justification))
}

// UnblockTask lifts the justification block from a task.
func (h *JustificationHandler) UnblockTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.justService.Unblock(actor, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	h.listingCache.InvalidateTenant(actor.TenantID)
	c.JSON(http.StatusOK, gin.H{"message": "Task unblocked"})
}

// MyLateTasks returns the acting USER's late-completed tasks with their
// composite justification status.
func (h *JustificationHandler) MyLateTasks(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	views, total, err := h.justService.MyLateTasks(actor, params.Page, params.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.TaskJustificationViewDTO, len(views))
	for i, view := range views {
		items[i] = dto.ToTaskJustificationViewDTO(view)
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": items,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// Queue lists the review queue for one justification status.
func (h *JustificationHandler) Queue(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var status models.JustificationStatus
	switch c.Param("status") {
	case "pending":
		status = models.JustificationPending
	case "approved":
		status = models.JustificationApproved
	case "refused":
		status = models.JustificationRefused
	default:
		apierrors.BadRequest(c, "Invalid queue status")
		return
	}

	params := utils.GetPaginationParams(c)

	justifications, total, err := h.justService.Queue(actor, status, params.Page, params.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJustificationListResponse(justifications, utils.PaginationResponse{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	}))
}

// BlockedTasks lists the tasks currently blocked for justification.
func (h *JustificationHandler) BlockedTasks(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.justService.BlockedTasks(actor, params.Page, params.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, utils.PaginationResponse{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	}))
}
