package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
	"github.com/sm8ta/webike_workshop_service/internal/core/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	logger         ports.LoggerPort
	metrics        ports.MetricsPort
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"balie@webike.nl"`
	Password string `json:"password" binding:"required" example:"geheim123"`
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Profile *domain.Profile `json:"profile"`
}

type ActiveRequest struct {
	Active bool `json:"active" example:"false"`
}

func NewProfileHandler(profileService *services.ProfileService, logger ports.LoggerPort, metrics ports.MetricsPort) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger,
		metrics:        metrics,
	}
}

// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse "Token issued"
// @Failure 401 {object} errorResponse "Invalid credentials"
// @Failure 403 {object} errorResponse "Profile deactivated"
// @Router /auth/login [post]
func (h *ProfileHandler) Login(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	token, profile, err := h.profileService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("Login failed", map[string]interface{}{
			"ip":    c.ClientIP(),
			"error": err.Error(),
		})
		handleServiceError(c, err, "Failed to log in")
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token, Profile: profile})
}

// @Summary Current profile
// @Tags profiles
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Profile "Profile"
// @Router /profiles/me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, ok := requirePayload(c, h.logger, "Me")
	if !ok {
		return
	}
	profile, err := h.profileService.GetProfile(c.Request.Context(), payload.UserID)
	if err != nil {
		handleServiceError(c, err, "Failed to get profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// @Summary Create a profile
// @Tags profiles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.NewProfile true "Profile"
// @Success 201 {object} domain.Profile "Profile created"
// @Failure 409 {object} errorResponse "Email already in use"
// @Router /profiles [post]
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req domain.NewProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	profile, err := h.profileService.CreateProfile(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "Failed to create profile")
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// @Summary List profiles
// @Tags profiles
// @Security BearerAuth
// @Produce json
// @Param active query bool false "Only active profiles"
// @Success 200 {array} domain.Profile "Profiles"
// @Router /profiles [get]
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	profiles, err := h.profileService.ListProfiles(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		handleServiceError(c, err, "Failed to list profiles")
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// @Summary Activate or deactivate a profile
// @Tags profiles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param request body ActiveRequest true "Active flag"
// @Success 200 {object} domain.Profile "Profile updated"
// @Router /profiles/{id}/active [put]
func (h *ProfileHandler) SetActive(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req ActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	profile, err := h.profileService.SetActive(c.Request.Context(), id, req.Active)
	if err != nil {
		handleServiceError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}
