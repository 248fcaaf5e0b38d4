package domain

import "time"

// ReservationStatus represents the state of an inventory hold
type ReservationStatus string

const (
	ReservationStatusHeld      ReservationStatus = "held"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusReleased  ReservationStatus = "released"
)

// Reservation is a short-lived hold on units of one category. The hold
// keeps the units out of the available pool until it is confirmed into
// a sale, released back, or expires.
type Reservation struct {
	Token     string            `json:"token"`
	EventID   string            `json:"event_id"`
	Category  string            `json:"category"`
	Quantity  int               `json:"quantity"`
	Status    ReservationStatus `json:"status"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
}

// IsExpiredAt checks if the hold had lapsed at a specific time
func (r *Reservation) IsExpiredAt(t time.Time) bool {
	return t.After(r.ExpiresAt)
}

// IsHeld checks if the hold is still pending a confirm or release
func (r *Reservation) IsHeld() bool {
	return r.Status == ReservationStatusHeld
}
