package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/kasi0403/Eventify/internal/domain"
)

// MemoryCommissionRepository implements CommissionRepository using
// in-memory storage. This is useful for testing and development.
type MemoryCommissionRepository struct {
	records map[string]*domain.CommissionRecord // recordID -> record
	byEvent map[string]string                   // eventID -> recordID
	mu      sync.Mutex
}

// NewMemoryCommissionRepository creates a new in-memory commission repository
func NewMemoryCommissionRepository() *MemoryCommissionRepository {
	return &MemoryCommissionRepository{
		records: make(map[string]*domain.CommissionRecord),
		byEvent: make(map[string]string),
	}
}

// Create appends a ledger record. A second record for the same event
// is rejected with ErrAlreadyRecorded.
func (r *MemoryCommissionRepository) Create(ctx context.Context, record *domain.CommissionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEvent[record.EventID]; exists {
		return domain.ErrAlreadyRecorded
	}

	c := *record
	r.records[record.ID] = &c
	r.byEvent[record.EventID] = record.ID
	return nil
}

// GetByEventID retrieves the commission record for an event
func (r *MemoryCommissionRepository) GetByEventID(ctx context.Context, eventID string) (*domain.CommissionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, exists := r.byEvent[eventID]
	if !exists {
		return nil, domain.ErrCommissionNotFound
	}

	cp := *r.records[id]
	return &cp, nil
}

// List retrieves ledger records, newest first
func (r *MemoryCommissionRepository) List(ctx context.Context, limit, offset int) ([]*domain.CommissionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*domain.CommissionRecord, 0, len(r.records))
	for _, record := range r.records {
		all = append(all, record)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].RecordedAt.After(all[j].RecordedAt)
	})

	start := offset
	if start >= len(all) {
		return []*domain.CommissionRecord{}, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	result := make([]*domain.CommissionRecord, 0, end-start)
	for _, record := range all[start:end] {
		cp := *record
		result = append(result, &cp)
	}
	return result, nil
}

// TotalAmount returns the sum of all recorded commissions
func (r *MemoryCommissionRepository) TotalAmount(ctx context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total float64
	for _, record := range r.records {
		total += record.Amount
	}
	return total, nil
}

// Clear clears all data (for testing)
func (r *MemoryCommissionRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make(map[string]*domain.CommissionRecord)
	r.byEvent = make(map[string]string)
}

// Ensure MemoryCommissionRepository implements CommissionRepository
var _ CommissionRepository = (*MemoryCommissionRepository)(nil)
