package domain

import "time"

// BookingEventType identifies a booking lifecycle event
type BookingEventType string

const (
	BookingEventCreated   BookingEventType = "booking.created"
	BookingEventConfirmed BookingEventType = "booking.confirmed"
	BookingEventFailed    BookingEventType = "booking.failed"
	TicketEventCheckedIn  BookingEventType = "ticket.checked_in"
)

// BookingEvent is the envelope published to the event stream
type BookingEvent struct {
	EventID    string           `json:"event_id"`
	Type       BookingEventType `json:"type"`
	BookingID  string           `json:"booking_id"`
	UserID     string           `json:"user_id"`
	ListingID  string           `json:"listing_id"`
	Status     string           `json:"status,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
	Payload    interface{}      `json:"payload,omitempty"`
}

// NewBookingEvent builds an event envelope from a booking
func NewBookingEvent(eventType BookingEventType, booking *Booking, eventID string) *BookingEvent {
	return &BookingEvent{
		EventID:    eventID,
		Type:       eventType,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		ListingID:  booking.EventID,
		Status:     booking.Status.String(),
		OccurredAt: time.Now(),
		Payload:    booking,
	}
}

// Key returns the partition key for the event. Events for the same
// booking always land on the same partition.
func (e *BookingEvent) Key() string {
	return e.BookingID
}
