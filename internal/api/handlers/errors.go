// Package handlers contains the Gin HTTP handlers of the location subsystem.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldtrack/internal/domain/entities"
)

// statusFor maps domain errors to HTTP status codes. Anything unrecognized is
// a 500 so bugs surface loudly instead of hiding behind a client error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrInvalidFormat),
		errors.Is(err, entities.ErrInvalidLocation):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
