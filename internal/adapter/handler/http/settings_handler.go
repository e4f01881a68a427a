package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
	"github.com/sm8ta/webike_workshop_service/internal/core/services"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
	logger          ports.LoggerPort
	metrics         ports.MetricsPort
}

func NewSettingsHandler(settingsService *services.SettingsService, logger ports.LoggerPort, metrics ports.MetricsPort) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          logger,
		metrics:         metrics,
	}
}

// @Summary My settings
// @Tags settings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.UserSettings "Settings"
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "GetSettings")
	if !ok {
		return
	}
	settings, err := h.settingsService.Get(c.Request.Context(), payload.UserID)
	if err != nil {
		handleServiceError(c, err, "Failed to load settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// @Summary Update my settings
// @Tags settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.UserSettings true "Settings"
// @Success 200 {object} domain.UserSettings "Settings saved"
// @Router /settings [put]
func (h *SettingsHandler) Set(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "SetSettings")
	if !ok {
		return
	}
	var req domain.UserSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if err := h.settingsService.Set(c.Request.Context(), payload.UserID, req); err != nil {
		handleServiceError(c, err, "Failed to save settings")
		return
	}
	c.JSON(http.StatusOK, req)
}
