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

// WebhookHandler receives payment collaborator callbacks
type WebhookHandler struct {
	bookingService service.BookingService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(bookingService service.BookingService) *WebhookHandler {
	return &WebhookHandler{bookingService: bookingService}
}

// Payment handles POST /webhooks/payment. Callbacks are idempotent:
// the payment provider retries until it sees a 2xx.
func (h *WebhookHandler) Payment(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.webhook.payment")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("booking_id", req.BookingID),
		attribute.String("payment_status", req.Status),
	)

	var (
		booking *dto.BookingResponse
		err     error
	)
	switch req.Status {
	case "succeeded":
		booking, err = h.bookingService.OnPaymentConfirmed(ctx, req.BookingID, req.PaymentRef)
	case "failed":
		booking, err = h.bookingService.OnPaymentFailed(ctx, req.BookingID, req.Reason)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, booking)
}
