package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/pkg/response"
)

// handleError maps a domain error to an HTTP response
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInsufficientInventory):
		response.Conflict(c, "INSUFFICIENT_INVENTORY", err.Error())
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		response.Conflict(c, "ALREADY_CHECKED_IN", err.Error())
	case errors.Is(err, domain.ErrAlreadyRecorded):
		response.Conflict(c, "ALREADY_RECORDED", err.Error())
	case errors.Is(err, domain.ErrEventMismatch):
		response.Conflict(c, "EVENT_MISMATCH", err.Error())
	case domain.IsConflictError(err):
		response.Conflict(c, "CONFLICT", err.Error())
	case domain.IsExpiredError(err):
		response.Error(c, http.StatusGone, "EXPIRED", err.Error(), "")
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case domain.IsUnauthorizedError(err):
		response.Unauthorized(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
