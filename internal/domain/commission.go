package domain

import (
	"strings"
	"time"
)

// CommissionRecord is the ledger entry for the platform commission
// collected from an organizer for one event. At most one record exists
// per event.
type CommissionRecord struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	OrganizerID string    `json:"organizer_id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	RecordedBy  string    `json:"recorded_by"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Validate validates the commission record fields
func (c *CommissionRecord) Validate() error {
	if strings.TrimSpace(c.EventID) == "" {
		return ErrInvalidEventID
	}
	if strings.TrimSpace(c.OrganizerID) == "" {
		return ErrInvalidUserID
	}
	if c.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}
