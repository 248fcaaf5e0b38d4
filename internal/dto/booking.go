package dto

import (
	"time"

	"github.com/kasi0403/Eventify/internal/domain"
)

// BookingItemRequest is one category selection in a booking request
type BookingItemRequest struct {
	Category string `json:"category" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=10"`
}

// CreateBookingRequest is the request body for creating a booking
type CreateBookingRequest struct {
	EventID string               `json:"event_id" binding:"required"`
	Items   []BookingItemRequest `json:"items" binding:"required,min=1,dive"`
}

// BookingItemResponse is one line item in a booking response
type BookingItemResponse struct {
	Category  string  `json:"category"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// BookingResponse is the API representation of a booking
type BookingResponse struct {
	ID           string                `json:"id"`
	UserID       string                `json:"user_id"`
	EventID      string                `json:"event_id"`
	Items        []BookingItemResponse `json:"items"`
	Subtotal     float64               `json:"subtotal"`
	ServiceFee   float64               `json:"service_fee"`
	TotalAmount  float64               `json:"total_amount"`
	Currency     string                `json:"currency"`
	Status       string                `json:"status"`
	StatusReason string                `json:"status_reason,omitempty"`
	ExpiresAt    time.Time             `json:"expires_at"`
	ConfirmedAt  *time.Time            `json:"confirmed_at,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

// BookingFromDomain converts a domain booking to a BookingResponse
func BookingFromDomain(booking *domain.Booking) *BookingResponse {
	items := make([]BookingItemResponse, 0, len(booking.Items))
	for _, item := range booking.Items {
		items = append(items, BookingItemResponse{
			Category:  item.Category,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return &BookingResponse{
		ID:           booking.ID,
		UserID:       booking.UserID,
		EventID:      booking.EventID,
		Items:        items,
		Subtotal:     booking.Subtotal,
		ServiceFee:   booking.ServiceFee,
		TotalAmount:  booking.TotalAmount,
		Currency:     booking.Currency,
		Status:       booking.Status.String(),
		StatusReason: booking.StatusReason,
		ExpiresAt:    booking.ExpiresAt,
		ConfirmedAt:  booking.ConfirmedAt,
		CreatedAt:    booking.CreatedAt,
	}
}

// BookingsFromDomain converts a slice of domain bookings
func BookingsFromDomain(bookings []*domain.Booking) []*BookingResponse {
	result := make([]*BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		result = append(result, BookingFromDomain(booking))
	}
	return result
}

// PaymentWebhookRequest is the payload the payment collaborator posts
// back when a charge settles or fails.
type PaymentWebhookRequest struct {
	BookingID  string `json:"booking_id" binding:"required"`
	PaymentRef string `json:"payment_ref"`
	Status     string `json:"status" binding:"required,oneof=succeeded failed"`
	Reason     string `json:"reason"`
}
