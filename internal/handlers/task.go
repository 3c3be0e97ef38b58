package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rotina-app/rotina-api/internal/access"
	"github.com/rotina-app/rotina-api/internal/cache"
	"github.com/rotina-app/rotina-api/internal/dto"
	apierrors "github.com/rotina-app/rotina-api/internal/errors"
	"github.com/rotina-app/rotina-api/internal/middleware"
	"github.com/rotina-app/rotina-api/internal/services"
	"github.com/rotina-app/rotina-api/internal/taskstatus"
	"github.com/rotina-app/rotina-api/internal/utils"
)

type TaskHandler struct {
	taskService  *services.TaskService
	listingCache *cache.ListingCache
	loc          *time.Location
}

// NewTaskHandler creates a TaskHandler. listingCache may be nil to disable
// listing caching.
func NewTaskHandler(taskService *services.TaskService, listingCache *cache.ListingCache, loc *time.Location) *TaskHandler {
	return &TaskHandler{
		taskService:  taskService,
		listingCache: listingCache,
		loc:          loc,
	}
}

// ListTasks returns the tasks in the actor's visibility scope.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	// The cache key carries the actor's scope: two actors with different
	// visibility never share an entry.
	signature := fmt.Sprintf("%s|%s|%s|%s", actor.Role, actor.Area, actor.Email, c.Request.URL.RawQuery)
	if payload, hit := h.listingCache.Get(actor.TenantID, signature); hit {
		c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		SortByPrazo: c.Query("sort") == "prazo",
		Page:        params.Page,
		PageSize:    params.Limit,
	}
	if statusParam := c.Query("status"); statusParam != "" {
		status := taskstatus.Status(statusParam)
		input.Status = &status
	}

	tasks, total, err := h.taskService.List(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := dto.ToTaskListResponse(tasks, utils.PaginationResponse{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	})

	if payload, err := json.Marshal(response); err == nil {
		h.listingCache.Put(actor.TenantID, signature, payload)
	}

	c.JSON(http.StatusOK, response)
}

// GetTask returns a single task visible to the actor.
func (h *TaskHandler) GetTask(c *gin.Context) {
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

	task, err := h.taskService.Get(actor, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a task. Status is not part of the request body; it is
// derived from the dates.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Titulo           string  `json:"titulo" binding:"required"`
		Area             string  `json:"area"`
		ResponsibleEmail string  `json:"responsible_email"`
		ResponsibleName  string  `json:"responsible_name"`
		Recurrence       string  `json:"recurrence"`
		Prazo            *string `json:"prazo"`
		Realizado        *string `json:"realizado"`
		Observations     string  `json:"observations"`
		ParentTaskID     *uint64 `json:"parent_task_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	prazo, err := h.parseDate(req.Prazo)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	realizado, err := h.parseDate(req.Realizado)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Create(actor, services.CreateTaskInput{
		Titulo:           req.Titulo,
		Area:             req.Area,
		ResponsibleEmail: req.ResponsibleEmail,
		ResponsibleName:  req.ResponsibleName,
		Recurrence:       req.Recurrence,
		Prazo:            prazo,
		Realizado:        realizado,
		Observations:     req.Observations,
		ParentTaskID:     req.ParentTaskID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.listingCache.InvalidateTenant(actor.TenantID)
	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a patch to a task. An empty-string date is the explicit
// clear sentinel; a reopened task gets its status re-derived from the dates.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
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

	type UpdateTaskRequest struct {
		Titulo           *string `json:"titulo"`
		Area             *string `json:"area"`
		ResponsibleEmail *string `json:"responsible_email"`
		ResponsibleName  *string `json:"responsible_name"`
		Recurrence       *string `json:"recurrence"`
		Observations     *string `json:"observations"`
		Prazo            *string `json:"prazo"`
		Realizado        *string `json:"realizado"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	patch := access.TaskPatch{
		Titulo:           req.Titulo,
		Area:             req.Area,
		ResponsibleEmail: req.ResponsibleEmail,
		ResponsibleName:  req.ResponsibleName,
		Recurrence:       req.Recurrence,
		Observations:     req.Observations,
	}

	if req.Prazo != nil {
		if *req.Prazo == "" {
			patch.ClearPrazo = true
		} else {
			parsed, err := taskstatus.ParseDate(*req.Prazo, h.loc)
			if err != nil {
				apierrors.BadRequest(c, err.Error())
				return
			}
			patch.Prazo = &parsed
		}
	}
	if req.Realizado != nil {
		if *req.Realizado == "" {
			patch.ClearRealizado = true
		} else {
			parsed, err := taskstatus.ParseDate(*req.Realizado, h.loc)
			if err != nil {
				apierrors.BadRequest(c, err.Error())
				return
			}
			patch.Realizado = &parsed
		}
	}

	task, err := h.taskService.Update(actor, taskID, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.listingCache.InvalidateTenant(actor.TenantID)
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask soft deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
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

	if err := h.taskService.Delete(actor, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	h.listingCache.InvalidateTenant(actor.TenantID)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

func (h *TaskHandler) parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := taskstatus.ParseDate(*value, h.loc)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
