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

// CommissionHandler handles commission HTTP requests for platform operators
type CommissionHandler struct {
	commissionService service.CommissionService
}

// NewCommissionHandler creates a new commission handler
func NewCommissionHandler(commissionService service.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionService: commissionService}
}

// Record handles POST /admin/events/:id/commission
func (h *CommissionHandler) Record(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.commission.record")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	adminID := c.GetString("user_id")
	if adminID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return
	}

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	var req dto.RecordCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	record, err := h.commissionService.RecordCommission(ctx, eventID, adminID, &req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, record)
}

// GetByEvent handles GET /admin/events/:id/commission
func (h *CommissionHandler) GetByEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.commission.get_by_event")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	record, err := h.commissionService.GetEventCommission(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, record)
}

// List handles GET /admin/commissions
func (h *CommissionHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.commission.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var p dto.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		span.SetStatus(codes.Error, "invalid query")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.commissionService.ListCommissions(ctx, p.Page, p.PageSize)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Summary handles GET /admin/commissions/summary
func (h *CommissionHandler) Summary(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.commission.summary")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	summary, err := h.commissionService.Summary(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, summary)
}
