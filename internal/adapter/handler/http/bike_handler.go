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

type BikeHandler struct {
	bikeService     *services.BikeService
	workflowService *services.WorkflowService
	logger          ports.LoggerPort
	metrics         ports.MetricsPort
}

type AssignTableRequest struct {
	TableNumber *string    `json:"table_number" example:"T4"`
	MechanicID  *uuid.UUID `json:"mechanic_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
}

type CommentRequest struct {
	Body string `json:"body" binding:"required" example:"Klant wil de oude banden terug"`
}

type CallRequest struct {
	CallStatusID uuid.UUID `json:"call_status_id" binding:"required"`
	Notes        string    `json:"notes,omitempty" example:"Geen gehoor, morgen opnieuw"`
}

type BulkDeleteRequest struct {
	BikeIDs []uuid.UUID `json:"bike_ids" binding:"required,min=1"`
}

type ChecklistToggleRequest struct {
	Done bool `json:"done"`
}

type ChecklistItemRequest struct {
	Label    string `json:"label" binding:"required" example:"Proefrit gemaakt"`
	Position int    `json:"position" example:"1"`
	Active   *bool  `json:"active,omitempty"`
}

type ListBikesResponse struct {
	Bikes []*domain.Bike `json:"bikes"`
	Count int            `json:"count"`
}

func NewBikeHandler(
	bikeService *services.BikeService,
	workflowService *services.WorkflowService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *BikeHandler {
	return &BikeHandler{
		bikeService:     bikeService,
		workflowService: workflowService,
		logger:          logger,
		metrics:         metrics,
	}
}

// @Summary Register a bike
// @Description Intake of a bike at the counter or the diagnosis bench
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.BikeIntake true "Intake data"
// @Success 201 {object} domain.Bike "Bike registered"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 409 {object} errorResponse "Frame number already registered"
// @Router /bikes [post]
func (h *BikeHandler) RegisterBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "RegisterBike")
	if !ok {
		return
	}

	var req domain.BikeIntake
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in register bike", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	bike, err := h.workflowService.RegisterBike(c.Request.Context(), payload.UserID, &req)
	if err != nil {
		handleServiceError(c, err, "Failed to register bike")
		return
	}

	c.JSON(http.StatusCreated, bike)
}

// @Summary Get a bike
// @Description Bike with the events that may fire and its pending repairs
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bike ID"
// @Success 200 {object} domain.BikeDetail "Bike found"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "Bike not found"
// @Router /bikes/{id} [get]
func (h *BikeHandler) GetBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	bike, err := h.bikeService.GetBikeByID(c.Request.Context(), bikeID)
	if err != nil {
		handleServiceError(c, err, "Failed to get bike")
		return
	}
	pending, err := h.workflowService.PendingRepairs(c.Request.Context(), bikeID)
	if err != nil {
		handleServiceError(c, err, "Failed to get pending repairs")
		return
	}

	c.JSON(http.StatusOK, domain.BikeDetail{
		Bike:            bike,
		AvailableEvents: domain.AvailableEvents(bike.WorkflowStatus),
		PendingRepairs:  pending,
	})
}

// @Summary Find a bike by frame number
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Param frame path string true "Frame number"
// @Success 200 {object} domain.Bike "Bike found"
// @Failure 404 {object} errorResponse "Bike not found"
// @Router /bikes/frame/{frame} [get]
func (h *BikeHandler) GetBikeByFrameNumber(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bike, err := h.bikeService.GetBikeByFrameNumber(c.Request.Context(), c.Param("frame"))
	if err != nil {
		handleServiceError(c, err, "Failed to get bike")
		return
	}
	c.JSON(http.StatusOK, bike)
}

// @Summary List bikes
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Param status query string false "Workflow status filter"
// @Success 200 {object} ListBikesResponse "Bikes"
// @Failure 400 {object} errorResponse "Unknown status"
// @Router /bikes [get]
func (h *BikeHandler) ListBikes(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var status *domain.WorkflowStatus
	if s := c.Query("status"); s != "" {
		ws := domain.WorkflowStatus(s)
		status = &ws
	}

	bikes, err := h.bikeService.ListBikes(c.Request.Context(), status)
	if err != nil {
		handleServiceError(c, err, "Failed to list bikes")
		return
	}
	c.JSON(http.StatusOK, ListBikesResponse{Bikes: bikes, Count: len(bikes)})
}

// @Summary Bikes grouped by table
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.TableGroup "Tables"
// @Router /bikes/tables [get]
func (h *BikeHandler) ListByTable(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	groups, err := h.bikeService.ListByTable(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to list tables")
		return
	}
	c.JSON(http.StatusOK, groups)
}

// @Summary Assign a table
// @Description Sets or clears the table of a bike. A table put on a finished bike reopens it.
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Bike ID"
// @Param request body AssignTableRequest true "Table and optional mechanic"
// @Success 200 {object} domain.Bike "Bike updated"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 403 {object} errorResponse "Mechanic inactive, or mechanic assigned by a non-admin non-FOH user"
// @Failure 404 {object} errorResponse "Bike not found"
// @Router /bikes/{id}/table [put]
func (h *BikeHandler) AssignTable(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "AssignTable")
	if !ok {
		return
	}
	bikeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in assign table", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if req.MechanicID != nil && payload.Role != domain.Admin && payload.Role != domain.Foh {
		h.logger.Warn("Mechanic assignment denied", map[string]interface{}{
			"user_id": payload.UserID,
			"role":    payload.Role,
			"bike_id": bikeID,
		})
		newErrorResponse(c, http.StatusForbidden, "Only admin or front-of-house may assign a mechanic")
		return
	}

	bike, err := h.workflowService.AssignTable(c.Request.Context(), payload.UserID, bikeID, req.TableNumber, req.MechanicID)
	if err != nil {
		handleServiceError(c, err, "Failed to assign table")
		return
	}
	c.JSON(http.StatusOK, bike)
}

// @Summary Delete bikes
// @Description Removes the bikes with all their registrations, comments, calls and checklist state
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BulkDeleteRequest true "Bike IDs"
// @Success 200 {object} successResponse "Bikes deleted"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Bike not found"
// @Router /bikes [delete]
func (h *BikeHandler) DeleteBikes(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in delete bikes", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.bikeService.DeleteBikes(c.Request.Context(), req.BikeIDs); err != nil {
		handleServiceError(c, err, "Failed to delete bikes")
		return
	}
	newSuccessResponse(c, http.StatusOK, "Bikes deleted", gin.H{"count": len(req.BikeIDs)})
}

// @Summary Add a comment
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Bike ID"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} domain.Comment "Comment added"
// @Router /bikes/{id}/comments [post]
func (h *BikeHandler) AddComment(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "AddComment")
	if !ok {
		return
	}
	bikeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	comment, err := h.bikeService.AddComment(c.Request.Context(), payload.UserID, bikeID, req.Body)
	if err != nil {
		handleServiceError(c, err, "Failed to add comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// @Summary List comments
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bike ID"
// @Success 200 {array} domain.Comment "Comments"
// @Router /bikes/{id}/comments [get]
func (h *BikeHandler) ListComments(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	comments, err := h.bikeService.ListComments(c.Request.Context(), bikeID)
	if err != nil {
		handleServiceError(c, err, "Failed to list comments")
		return
	}
	c.JSON(http.StatusOK, comments)
}

// @Summary Record a customer call
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Bike ID"
// @Param request body CallRequest true "Call outcome"
// @Success 201 {object} domain.CallRecord "Call recorded"
// @Router /bikes/{id}/calls [post]
func (h *BikeHandler) RecordCall(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "RecordCall")
	if !ok {
		return
	}
	bikeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	rec, err := h.bikeService.RecordCall(c.Request.Context(), payload.UserID, bikeID, req.CallStatusID, req.Notes)
	if err != nil {
		handleServiceError(c, err, "Failed to record call")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// @Summary Call history
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bike ID"
// @Success 200 {array} domain.CallRecord "Calls"
// @Router /bikes/{id}/calls [get]
func (h *BikeHandler) ListCalls(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	calls, err := h.bikeService.ListCalls(c.Request.Context(), bikeID)
	if err != nil {
		handleServiceError(c, err, "Failed to list calls")
		return
	}
	c.JSON(http.StatusOK, calls)
}

// @Summary Call statuses
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.CallStatus "Call statuses"
// @Router /call-statuses [get]
func (h *BikeHandler) ListCallStatuses(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	statuses, err := h.bikeService.ListCallStatuses(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to list call statuses")
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// @Summary Checklist of a bike
// @Tags checklist
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bike ID"
// @Success 200 {array} domain.ChecklistLine "Checklist"
// @Router /bikes/{id}/checklist [get]
func (h *BikeHandler) GetChecklist(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	lines, err := h.bikeService.BikeChecklist(c.Request.Context(), bikeID)
	if err != nil {
		handleServiceError(c, err, "Failed to get checklist")
		return
	}
	c.JSON(http.StatusOK, lines)
}

// @Summary Check or uncheck a checklist item
// @Tags checklist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Bike ID"
// @Param itemId path string true "Checklist item ID"
// @Param request body ChecklistToggleRequest true "State"
// @Success 200 {object} successResponse "Checklist updated"
// @Router /bikes/{id}/checklist/{itemId} [put]
func (h *BikeHandler) SetChecklistItem(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "SetChecklistItem")
	if !ok {
		return
	}
	bikeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}
	var req ChecklistToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.bikeService.SetChecklistItem(c.Request.Context(), payload.UserID, bikeID, itemID, req.Done); err != nil {
		handleServiceError(c, err, "Failed to update checklist")
		return
	}
	newSuccessResponse(c, http.StatusOK, "Checklist updated", nil)
}

// @Summary Checklist items
// @Tags checklist
// @Security BearerAuth
// @Produce json
// @Param all query bool false "Include inactive items"
// @Success 200 {array} domain.ChecklistItem "Items"
// @Router /checklist-items [get]
func (h *BikeHandler) ListChecklistItems(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	items, err := h.bikeService.ListChecklistItems(c.Request.Context(), c.Query("all") != "true")
	if err != nil {
		handleServiceError(c, err, "Failed to list checklist items")
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary Create a checklist item
// @Tags checklist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ChecklistItemRequest true "Item"
// @Success 201 {object} domain.ChecklistItem "Item created"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /checklist-items [post]
func (h *BikeHandler) CreateChecklistItem(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req ChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	item := &domain.ChecklistItem{Label: req.Label, Position: req.Position, Active: true}
	if req.Active != nil {
		item.Active = *req.Active
	}

	created, err := h.bikeService.CreateChecklistItem(c.Request.Context(), item)
	if err != nil {
		handleServiceError(c, err, "Failed to create checklist item")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// @Summary Update a checklist item
// @Tags checklist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Checklist item ID"
// @Param request body ChecklistItemRequest true "Item"
// @Success 200 {object} domain.ChecklistItem "Item updated"
// @Router /checklist-items/{id} [put]
func (h *BikeHandler) UpdateChecklistItem(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	itemID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req ChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	item := &domain.ChecklistItem{ID: itemID, Label: req.Label, Position: req.Position, Active: true}
	if req.Active != nil {
		item.Active = *req.Active
	}

	updated, err := h.bikeService.UpdateChecklistItem(c.Request.Context(), item)
	if err != nil {
		handleServiceError(c, err, "Failed to update checklist item")
		return
	}
	c.JSON(http.StatusOK, updated)
}
