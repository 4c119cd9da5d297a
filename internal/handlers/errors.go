package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkonomy/kiosk-backend/internal/flow"
	"github.com/parkonomy/kiosk-backend/internal/schema"
	"github.com/parkonomy/kiosk-backend/internal/services"
)

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrSiteNotFound),
		errors.Is(err, services.ErrFlowNotFound),
		errors.Is(err, services.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, flow.ErrInvalidInput),
		errors.Is(err, schema.ErrUnknownField),
		errors.Is(err, schema.ErrReadOnly),
		errors.Is(err, schema.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, flow.ErrInvalidEvent),
		errors.Is(err, flow.ErrStaleResult),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrReceiptUnavailable):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err as {error: message}
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
