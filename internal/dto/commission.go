package dto

import (
	"time"

	"github.com/kasi0403/Eventify/internal/domain"
)

// RecordCommissionRequest is the request body for recording a commission
type RecordCommissionRequest struct {
	Amount float64 `json:"amount" binding:"min=0"`
}

// CommissionResponse is the API representation of a commission record
type CommissionResponse struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	OrganizerID string    `json:"organizer_id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	RecordedBy  string    `json:"recorded_by"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// CommissionFromDomain converts a domain record to a CommissionResponse
func CommissionFromDomain(record *domain.CommissionRecord) *CommissionResponse {
	return &CommissionResponse{
		ID:          record.ID,
		EventID:     record.EventID,
		OrganizerID: record.OrganizerID,
		Amount:      record.Amount,
		Currency:    record.Currency,
		RecordedBy:  record.RecordedBy,
		RecordedAt:  record.RecordedAt,
	}
}

// CommissionsFromDomain converts a slice of domain records
func CommissionsFromDomain(records []*domain.CommissionRecord) []*CommissionResponse {
	result := make([]*CommissionResponse, 0, len(records))
	for _, record := range records {
		result = append(result, CommissionFromDomain(record))
	}
	return result
}

// CommissionSummaryResponse is the ledger rollup for dashboards
type CommissionSummaryResponse struct {
	TotalAmount float64 `json:"total_amount"`
	Count       int     `json:"count"`
}
