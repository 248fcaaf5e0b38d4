package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kasi0403/Eventify/internal/dto"
	"github.com/kasi0403/Eventify/internal/service"
	"github.com/kasi0403/Eventify/pkg/response"
	"github.com/kasi0403/Eventify/pkg/telemetry"
)

// CheckinHandler handles gate scan HTTP requests
type CheckinHandler struct {
	checkinService service.CheckinService
}

// NewCheckinHandler creates a new check-in handler
func NewCheckinHandler(checkinService service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinService: checkinService}
}

// CheckIn handles POST /events/:id/checkin
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.checkin.check_in")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.checkinService.CheckIn(ctx, eventID, &req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Attendance handles GET /events/:id/attendance
func (h *CheckinHandler) Attendance(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.checkin.attendance")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	count, err := h.checkinService.GetAttendance(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"event_id": eventID, "attendance": count})
}
