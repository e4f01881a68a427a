package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

type errorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Error message"`
}

type successResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message" example:"Success"`
	Data    interface{} `json:"data,omitempty"`
}

func newErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, errorResponse{Success: false, Message: message})
}

func newSuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, successResponse{Success: true, Message: message, Data: data})
}

// errorStatus maps a service error to its HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrInactiveProfile):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrRegistrationCompleted),
		errors.Is(err, domain.ErrAlreadyCompleted),
		errors.Is(err, domain.ErrTaskCompleted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrChecklistIncomplete),
		errors.Is(err, domain.ErrApprovalPending),
		errors.Is(err, domain.ErrTaskRejected):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// handleServiceError replies with the status of err. Internal errors get a generic message.
func handleServiceError(c *gin.Context, err error, fallback string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		newErrorResponse(c, status, fallback)
		return
	}
	newErrorResponse(c, status, err.Error())
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
