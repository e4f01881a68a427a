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

type WorkflowHandler struct {
	workflowService *services.WorkflowService
	logger          ports.LoggerPort
	metrics         ports.MetricsPort
}

type FireEventRequest struct {
	Event domain.WorkflowEvent `json:"event" binding:"required" example:"claim"`
}

type TransitionRequest struct {
	Status domain.WorkflowStatus `json:"status" binding:"required" example:"in_reparatie"`
}

type AddRepairsRequest struct {
	RepairTypeIDs []uuid.UUID `json:"repair_type_ids" binding:"required,min=1"`
}

func NewWorkflowHandler(workflowService *services.WorkflowService, logger ports.LoggerPort, metrics ports.MetricsPort) *WorkflowHandler {
	return &WorkflowHandler{
		workflowService: workflowService,
		logger:          logger,
		metrics:         metrics,
	}
}

// @Summary Fire a workflow event
// @Description Applies claim, release, finish, reopen and the other workflow events to a bike
// @Tags workflow
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Bike ID"
// @Param request body FireEventRequest true "Event"
// @Success 200 {object} domain.Bike "Bike transitioned"
// @Failure 404 {object} errorResponse "Bike not found"
// @Failure 422 {object} errorResponse "Transition not allowed or checklist incomplete"
// @Router /bikes/{id}/events [post]
func (h *WorkflowHandler) FireEvent(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "FireEvent")
	if !ok {
		return
	}
	bikeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req FireEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in fire event", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	bike, err := h.workflowService.FireEvent(c.Request.Context(), payload.UserID, bikeID, req.Event)
	if err != nil {
		handleServiceError(c, err, "Failed to transition bike")
		return
	}
	c.JSON(http.StatusOK, bike)
}

// @Summary Move a bike to a status
// @Tags workflow
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Bike ID"
// @Param request body TransitionRequest true "Target status"
// @Success 200 {object} domain.Bike "Bike transitioned"
// @Failure 422 {object} errorResponse "Transition not allowed"
// @Router /bikes/{id}/status [put]
func (h *WorkflowHandler) TransitionTo(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "TransitionTo")
	if !ok {
		return
	}
	bikeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	bike, err := h.workflowService.TransitionTo(c.Request.Context(), payload.UserID, bikeID, req.Status)
	if err != nil {
		handleServiceError(c, err, "Failed to transition bike")
		return
	}
	c.JSON(http.StatusOK, bike)
}

// @Summary Add repairs to a bike
// @Tags workflow
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Bike ID"
// @Param request body AddRepairsRequest true "Repair types"
// @Success 201 {array} domain.WorkRegistration "Registrations created"
// @Failure 400 {object} errorResponse "Repair type does not apply"
// @Failure 422 {object} errorResponse "Bike is finished"
// @Router /bikes/{id}/repairs [post]
func (h *WorkflowHandler) AddRepairs(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "AddRepairs")
	if !ok {
		return
	}
	bikeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req AddRepairsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	regs, err := h.workflowService.AddRepairs(c.Request.Context(), payload.UserID, bikeID, req.RepairTypeIDs)
	if err != nil {
		handleServiceError(c, err, "Failed to add repairs")
		return
	}
	c.JSON(http.StatusCreated, regs)
}

// @Summary Pending repairs of a bike
// @Tags workflow
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bike ID"
// @Success 200 {array} domain.PendingRepair "Pending repairs"
// @Router /bikes/{id}/repairs/pending [get]
func (h *WorkflowHandler) PendingRepairs(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	pending, err := h.workflowService.PendingRepairs(c.Request.Context(), bikeID)
	if err != nil {
		handleServiceError(c, err, "Failed to list pending repairs")
		return
	}
	c.JSON(http.StatusOK, pending)
}

// @Summary Complete a repair
// @Tags workflow
// @Security BearerAuth
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} domain.WorkRegistration "Registration completed"
// @Failure 409 {object} errorResponse "Already completed"
// @Failure 422 {object} errorResponse "Bike not approved"
// @Router /registrations/{id}/complete [post]
func (h *WorkflowHandler) CompleteRegistration(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "CompleteRegistration")
	if !ok {
		return
	}
	regID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	reg, err := h.workflowService.CompleteRegistration(c.Request.Context(), payload.UserID, regID)
	if err != nil {
		handleServiceError(c, err, "Failed to complete registration")
		return
	}
	c.JSON(http.StatusOK, reg)
}

// @Summary Delete a pending repair
// @Tags workflow
// @Security BearerAuth
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} successResponse "Registration deleted"
// @Failure 409 {object} errorResponse "Registration already completed"
// @Router /registrations/{id} [delete]
func (h *WorkflowHandler) DeletePendingRegistration(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	regID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.workflowService.DeletePendingRegistration(c.Request.Context(), regID); err != nil {
		handleServiceError(c, err, "Failed to delete registration")
		return
	}
	newSuccessResponse(c, http.StatusOK, "Registration deleted", nil)
}
