package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/repository"
	"carpool/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		// Do not leak internals.
		c.JSON(code, ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidCapacity),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrCapacityExceeded),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrDeletionInProgress):
		return http.StatusConflict

	case errors.Is(err, service.ErrPaymentFailed):
		return http.StatusBadGateway

	// Transient transaction failures are retryable.
	case errors.Is(err, repository.ErrTxFailed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
