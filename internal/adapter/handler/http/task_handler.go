package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
	"github.com/sm8ta/webike_workshop_service/internal/core/services"
)

type TaskHandler struct {
	taskService *services.TaskService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

type TaskRequest struct {
	Title       string     `json:"title" binding:"required" example:"Klant terugbellen over offerte"`
	Description string     `json:"description,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	BikeID      *uuid.UUID `json:"bike_id,omitempty"`
}

type AssignTaskRequest struct {
	AssignedTo *uuid.UUID `json:"assigned_to"`
}

type TaskStatusRequest struct {
	Status domain.TaskStatus `json:"status" binding:"required" example:"in_behandeling"`
}

type RejectTaskRequest struct {
	Reason string `json:"reason" binding:"required" example:"Klant niet bereikbaar"`
}

func NewTaskHandler(taskService *services.TaskService, logger ports.LoggerPort, metrics ports.MetricsPort) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
		metrics:     metrics,
	}
}

// @Summary Create a task
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body TaskRequest true "Task"
// @Success 201 {object} domain.FohTask "Task created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "CreateTask")
	if !ok {
		return
	}
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create task", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), payload.UserID, &domain.FohTask{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		BikeID:      req.BikeID,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, task)
}

// @Summary Get a task
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} domain.FohTask "Task"
// @Failure 404 {object} errorResponse "Task not found"
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	task, err := h.taskService.GetTask(c.Request.Context(), taskID)
	if err != nil {
		handleServiceError(c, err, "Failed to get task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary My active tasks
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.FohTask "Tasks"
// @Router /tasks/active [get]
func (h *TaskHandler) ListActive(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "ListActive")
	if !ok {
		return
	}
	tasks, err := h.taskService.ListActive(c.Request.Context(), payload.UserID)
	if err != nil {
		handleServiceError(c, err, "Failed to list tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary Tasks I created
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.FohTask "Tasks"
// @Router /tasks/created [get]
func (h *TaskHandler) ListCreated(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "ListCreated")
	if !ok {
		return
	}
	tasks, err := h.taskService.ListCreatedBy(c.Request.Context(), payload.UserID)
	if err != nil {
		handleServiceError(c, err, "Failed to list tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary Assign a task
// @Description Reassigning a rejected task clears its rejection
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body AssignTaskRequest true "Assignee, null to unassign"
// @Success 200 {object} domain.FohTask "Task assigned"
// @Router /tasks/{id}/assign [put]
func (h *TaskHandler) AssignTask(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	task, err := h.taskService.AssignTask(c.Request.Context(), taskID, req.AssignedTo)
	if err != nil {
		handleServiceError(c, err, "Failed to assign task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary Change task status
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body TaskStatusRequest true "Target status"
// @Success 200 {object} domain.FohTask "Task updated"
// @Failure 403 {object} errorResponse "Not the assignee"
// @Failure 422 {object} errorResponse "Transition not allowed or task rejected"
// @Router /tasks/{id}/status [put]
func (h *TaskHandler) TransitionTask(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "TransitionTask")
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req TaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	task, err := h.taskService.TransitionTask(c.Request.Context(), payload, taskID, req.Status)
	if err != nil {
		handleServiceError(c, err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary Reject a task
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body RejectTaskRequest true "Reason"
// @Success 200 {object} domain.FohTask "Task rejected"
// @Router /tasks/{id}/reject [post]
func (h *TaskHandler) RejectTask(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "RejectTask")
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req RejectTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	task, err := h.taskService.RejectTask(c.Request.Context(), payload, taskID, req.Reason)
	if err != nil {
		handleServiceError(c, err, "Failed to reject task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary Delete a task
// @Description Only the creator may delete a task
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} successResponse "Task deleted"
// @Failure 403 {object} errorResponse "Not the creator"
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "DeleteTask")
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.taskService.DeleteTask(c.Request.Context(), payload.UserID, taskID); err != nil {
		handleServiceError(c, err, "Failed to delete task")
		return
	}
	newSuccessResponse(c, http.StatusOK, "Task deleted", nil)
}
