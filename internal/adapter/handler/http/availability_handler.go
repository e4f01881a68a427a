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

type AvailabilityHandler struct {
	availabilityService *services.AvailabilityService
	logger              ports.LoggerPort
	metrics             ports.MetricsPort
}

type AvailabilityRequest struct {
	Date      string `json:"date" binding:"required" example:"2026-03-14"`
	StartTime string `json:"start_time" binding:"required" example:"09:00"`
	EndTime   string `json:"end_time" binding:"required" example:"17:30"`
}

type ReviewRequest struct {
	Approve bool `json:"approve" example:"true"`
}

func NewAvailabilityHandler(availabilityService *services.AvailabilityService, logger ports.LoggerPort, metrics ports.MetricsPort) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityService: availabilityService,
		logger:              logger,
		metrics:             metrics,
	}
}

// @Summary Request availability
// @Tags availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body AvailabilityRequest true "Interval"
// @Success 201 {object} domain.MechanicAvailability "Request filed"
// @Failure 400 {object} errorResponse "Invalid interval"
// @Router /availability [post]
func (h *AvailabilityHandler) Request(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "RequestAvailability")
	if !ok {
		return
	}
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	created, err := h.availabilityService.Request(c.Request.Context(), payload.UserID, &domain.MechanicAvailability{
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to request availability")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// @Summary My availability requests
// @Tags availability
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.MechanicAvailability "Requests"
// @Router /availability/mine [get]
func (h *AvailabilityHandler) ListMine(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "ListAvailability")
	if !ok {
		return
	}
	list, err := h.availabilityService.ListForMechanic(c.Request.Context(), payload.UserID)
	if err != nil {
		handleServiceError(c, err, "Failed to list availability")
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Pending availability requests
// @Tags availability
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.MechanicAvailability "Pending requests"
// @Router /availability/pending [get]
func (h *AvailabilityHandler) ListPending(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	list, err := h.availabilityService.ListPending(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to list availability")
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Review an availability request
// @Tags availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Availability ID"
// @Param request body ReviewRequest true "Decision"
// @Success 200 {object} domain.MechanicAvailability "Request reviewed"
// @Failure 422 {object} errorResponse "Already reviewed"
// @Router /availability/{id}/review [post]
func (h *AvailabilityHandler) Review(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "ReviewAvailability")
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	reviewed, err := h.availabilityService.Review(c.Request.Context(), payload.UserID, id, req.Approve)
	if err != nil {
		handleServiceError(c, err, "Failed to review availability")
		return
	}
	c.JSON(http.StatusOK, reviewed)
}

type HoursResponse struct {
	MechanicID uuid.UUID `json:"mechanic_id"`
	Hours      float64   `json:"hours" example:"31.5"`
}

// @Summary Approved hours
// @Description Sum of approved availability in a date range. Admins may pass another mechanic.
// @Tags availability
// @Security BearerAuth
// @Produce json
// @Param mechanic_id query string false "Mechanic, defaults to the caller"
// @Param from query string true "First day, YYYY-MM-DD"
// @Param to query string true "Last day, YYYY-MM-DD"
// @Success 200 {object} HoursResponse "Hours"
// @Failure 403 {object} errorResponse "Other mechanic requested by non-admin"
// @Router /availability/hours [get]
func (h *AvailabilityHandler) ApprovedHours(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "ApprovedHours")
	if !ok {
		return
	}
	mechanicID := payload.UserID
	if q := c.Query("mechanic_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			newErrorResponse(c, http.StatusBadRequest, "Invalid mechanic_id")
			return
		}
		if id != payload.UserID && !payload.IsAdmin() {
			newErrorResponse(c, http.StatusForbidden, "Access denied")
			return
		}
		mechanicID = id
	}
	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	hours, err := h.availabilityService.ApprovedHours(c.Request.Context(), mechanicID, from, to)
	if err != nil {
		handleServiceError(c, err, "Failed to compute hours")
		return
	}
	c.JSON(http.StatusOK, HoursResponse{MechanicID: mechanicID, Hours: hours})
}
