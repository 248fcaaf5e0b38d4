package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// CredentialStatus represents the admission state of a ticket credential
type CredentialStatus string

const (
	CredentialStatusIssued    CredentialStatus = "issued"
	CredentialStatusCheckedIn CredentialStatus = "checked_in"
)

// IsValid checks if the status is a valid CredentialStatus
func (s CredentialStatus) IsValid() bool {
	switch s {
	case CredentialStatusIssued, CredentialStatusCheckedIn:
		return true
	}
	return false
}

// String returns the string representation of CredentialStatus
func (s CredentialStatus) String() string {
	return string(s)
}

// TicketCredential is one admission unit issued for a confirmed
// booking. Token is the opaque value encoded into the attendee's QR
// code; UnitIndex positions the credential within its line item so
// issuance can be retried without minting duplicates.
type TicketCredential struct {
	ID          string           `json:"id"`
	Token       string           `json:"token"`
	BookingID   string           `json:"booking_id"`
	EventID     string           `json:"event_id"`
	UserID      string           `json:"user_id"`
	Category    string           `json:"category"`
	UnitIndex   int              `json:"unit_index"`
	Status      CredentialStatus `json:"status"`
	IssuedAt    time.Time        `json:"issued_at"`
	CheckedInAt *time.Time       `json:"checked_in_at,omitempty"`
}

// SlotKey identifies the credential's slot within its booking. One
// slot yields at most one credential no matter how often issuance runs.
func (t *TicketCredential) SlotKey() string {
	return CredentialSlotKey(t.BookingID, t.Category, t.UnitIndex)
}

// CredentialSlotKey builds the idempotency key for a credential slot
func CredentialSlotKey(bookingID, category string, unitIndex int) string {
	return fmt.Sprintf("%s:%s:%d", bookingID, category, unitIndex)
}

// IsCheckedIn checks if the credential has been redeemed
func (t *TicketCredential) IsCheckedIn() bool {
	return t.Status == CredentialStatusCheckedIn
}

// CheckIn transitions the credential to checked_in. The transition is
// one-way; a redeemed credential never returns to issued.
func (t *TicketCredential) CheckIn(at time.Time) error {
	if t.Status == CredentialStatusCheckedIn {
		return ErrAlreadyCheckedIn
	}
	t.Status = CredentialStatusCheckedIn
	t.CheckedInAt = &at
	return nil
}

// BelongsToEvent checks if the credential was issued for the given event
func (t *TicketCredential) BelongsToEvent(eventID string) bool {
	return t.EventID == eventID
}

// NewCredentialToken returns a fresh 32-character hex admission token
func NewCredentialToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate credential token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ValidateCredentialToken checks the token shape before lookup
func ValidateCredentialToken(token string) error {
	token = strings.TrimSpace(token)
	if len(token) != 32 {
		return ErrCredentialNotFound
	}
	if _, err := hex.DecodeString(token); err != nil {
		return ErrCredentialNotFound
	}
	return nil
}
