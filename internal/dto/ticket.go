package dto

import (
	"time"

	"github.com/kasi0403/Eventify/internal/domain"
)

// CredentialResponse is the API representation of a ticket credential
type CredentialResponse struct {
	ID          string     `json:"id"`
	Token       string     `json:"token"`
	BookingID   string     `json:"booking_id"`
	EventID     string     `json:"event_id"`
	Category    string     `json:"category"`
	UnitIndex   int        `json:"unit_index"`
	Status      string     `json:"status"`
	IssuedAt    time.Time  `json:"issued_at"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
}

// CredentialFromDomain converts a domain credential to a CredentialResponse
func CredentialFromDomain(cred *domain.TicketCredential) *CredentialResponse {
	return &CredentialResponse{
		ID:          cred.ID,
		Token:       cred.Token,
		BookingID:   cred.BookingID,
		EventID:     cred.EventID,
		Category:    cred.Category,
		UnitIndex:   cred.UnitIndex,
		Status:      cred.Status.String(),
		IssuedAt:    cred.IssuedAt,
		CheckedInAt: cred.CheckedInAt,
	}
}

// CredentialsFromDomain converts a slice of domain credentials
func CredentialsFromDomain(creds []*domain.TicketCredential) []*CredentialResponse {
	result := make([]*CredentialResponse, 0, len(creds))
	for _, cred := range creds {
		result = append(result, CredentialFromDomain(cred))
	}
	return result
}

// CheckInRequest is the request body for redeeming a credential at the gate
type CheckInRequest struct {
	Token string `json:"token" binding:"required"`
}

// CheckInResponse reports the outcome of a gate scan
type CheckInResponse struct {
	Credential *CredentialResponse `json:"credential"`
	Attendance int64               `json:"attendance"`
}
