package domain

import (
	"math"
	"strings"
	"time"
)

// MaxQuantityPerCategory caps how many units one booking may take from
// a single category.
const MaxQuantityPerCategory = 10

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusFailed    BookingStatus = "failed"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// BookingItem is one category line inside a booking. ReservationToken
// references the inventory hold backing the line while the booking is
// pending.
type BookingItem struct {
	Category         string  `json:"category"`
	Quantity         int     `json:"quantity"`
	UnitPrice        float64 `json:"unit_price"`
	Subtotal         float64 `json:"subtotal"`
	ReservationToken string  `json:"reservation_token,omitempty"`
}

// Validate validates the line item fields
func (i *BookingItem) Validate() error {
	if strings.TrimSpace(i.Category) == "" {
		return ErrInvalidCategory
	}
	if i.Quantity < 1 || i.Quantity > MaxQuantityPerCategory {
		return ErrInvalidQuantity
	}
	if i.UnitPrice < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Booking represents a multi-category purchase attempt against one event
type Booking struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	EventID      string        `json:"event_id"`
	Items        []BookingItem `json:"items"`
	Subtotal     float64       `json:"subtotal"`
	ServiceFee   float64       `json:"service_fee"`
	TotalAmount  float64       `json:"total_amount"`
	Currency     string        `json:"currency"`
	Status       BookingStatus `json:"status"`
	StatusReason string        `json:"status_reason,omitempty"`
	PaymentRef   string        `json:"payment_ref,omitempty"`
	ExpiresAt    time.Time     `json:"expires_at"`
	ConfirmedAt  *time.Time    `json:"confirmed_at,omitempty"`
	FailedAt     *time.Time    `json:"failed_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Validate validates all booking fields
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrInvalidBookingID
	}
	if strings.TrimSpace(b.UserID) == "" {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(b.EventID) == "" {
		return ErrInvalidEventID
	}
	if len(b.Items) == 0 {
		return ErrEmptySelection
	}
	seen := make(map[string]struct{}, len(b.Items))
	for i := range b.Items {
		if err := b.Items[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[b.Items[i].Category]; dup {
			return ErrDuplicateCategory
		}
		seen[b.Items[i].Category] = struct{}{}
	}
	if !b.Status.IsValid() {
		return ErrInvalidBookingStatus
	}
	return nil
}

// ComputeTotals recomputes line subtotals and the order totals. The
// service fee is a fixed fraction of the subtotal, rounded to cents.
func (b *Booking) ComputeTotals(serviceFeeRate float64) {
	var subtotal float64
	for i := range b.Items {
		b.Items[i].Subtotal = roundCents(b.Items[i].UnitPrice * float64(b.Items[i].Quantity))
		subtotal += b.Items[i].Subtotal
	}
	b.Subtotal = roundCents(subtotal)
	b.ServiceFee = roundCents(subtotal * serviceFeeRate)
	b.TotalAmount = roundCents(b.Subtotal + b.ServiceFee)
}

// TotalQuantity returns the number of units across all line items
func (b *Booking) TotalQuantity() int {
	total := 0
	for i := range b.Items {
		total += b.Items[i].Quantity
	}
	return total
}

// Item returns the line item for the given category
func (b *Booking) Item(category string) (*BookingItem, bool) {
	for i := range b.Items {
		if b.Items[i].Category == category {
			return &b.Items[i], true
		}
	}
	return nil, false
}

// IsExpired checks if the booking's payment window has passed
func (b *Booking) IsExpired() bool {
	return b.IsExpiredAt(time.Now())
}

// IsExpiredAt checks if the payment window had passed at a specific time
func (b *Booking) IsExpiredAt(t time.Time) bool {
	return t.After(b.ExpiresAt)
}

// IsPending checks if the booking is awaiting payment
func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}

// IsConfirmed checks if the booking is confirmed
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// Confirm transitions the booking to confirmed. Only a pending booking
// can be confirmed; the transition is terminal.
func (b *Booking) Confirm(paymentRef string) error {
	if b.Status != BookingStatusPending {
		return ErrBookingNotPending
	}
	now := time.Now()
	b.Status = BookingStatusConfirmed
	b.PaymentRef = paymentRef
	b.ConfirmedAt = &now
	b.UpdatedAt = now
	return nil
}

// Fail transitions the booking to failed with a reason. Only a pending
// booking can fail; the transition is terminal.
func (b *Booking) Fail(reason string) error {
	if b.Status != BookingStatusPending {
		return ErrBookingNotPending
	}
	now := time.Now()
	b.Status = BookingStatusFailed
	b.StatusReason = reason
	b.FailedAt = &now
	b.UpdatedAt = now
	return nil
}

// BelongsToUser checks if the booking belongs to the specified user
func (b *Booking) BelongsToUser(userID string) bool {
	return b.UserID == userID
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
