package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kasi0403/Eventify/internal/domain"
)

// MemoryInventoryRepository implements InventoryRepository using
// in-memory storage. This is useful for testing and development. It
// mirrors the Redis implementation's semantics, including idempotent
// release and expiry checks on confirm.
type MemoryInventoryRepository struct {
	available    map[string]int64 // eventID:category -> available
	reservations map[string]*domain.Reservation
	mu           sync.Mutex
}

// NewMemoryInventoryRepository creates a new in-memory inventory repository
func NewMemoryInventoryRepository() *MemoryInventoryRepository {
	return &MemoryInventoryRepository{
		available:    make(map[string]int64),
		reservations: make(map[string]*domain.Reservation),
	}
}

func memAvailabilityKey(eventID, category string) string {
	return eventID + ":" + category
}

// InitCategory seeds the available pool for a category
func (r *MemoryInventoryRepository) InitCategory(ctx context.Context, eventID, category string, capacity int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memAvailabilityKey(eventID, category)
	if _, exists := r.available[key]; !exists {
		r.available[key] = capacity
	}
	return nil
}

// Reserve places a TTL-bound hold on quantity units
func (r *MemoryInventoryRepository) Reserve(ctx context.Context, params ReserveParams) (*ReserveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memAvailabilityKey(params.EventID, params.Category)
	available, exists := r.available[key]
	if !exists {
		return &ReserveResult{
			Success:      false,
			ErrorCode:    "CATEGORY_NOT_FOUND",
			ErrorMessage: "category inventory is not initialized",
		}, nil
	}

	if available < int64(params.Quantity) {
		return &ReserveResult{
			Success:      false,
			ErrorCode:    "INSUFFICIENT_INVENTORY",
			ErrorMessage: "not enough tickets available",
		}, nil
	}

	token := uuid.New().String()
	now := time.Now()
	r.available[key] = available - int64(params.Quantity)
	r.reservations[token] = &domain.Reservation{
		Token:     token,
		EventID:   params.EventID,
		Category:  params.Category,
		Quantity:  params.Quantity,
		Status:    domain.ReservationStatusHeld,
		ExpiresAt: now.Add(time.Duration(params.TTLSeconds) * time.Second),
		CreatedAt: now,
	}

	return &ReserveResult{
		Success:   true,
		Token:     token,
		Available: r.available[key],
	}, nil
}

// Confirm makes a held reservation permanent
func (r *MemoryInventoryRepository) Confirm(ctx context.Context, token string) (*ConfirmResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, exists := r.reservations[token]
	if !exists {
		return &ConfirmResult{
			Success:      false,
			ErrorCode:    "RESERVATION_NOT_FOUND",
			ErrorMessage: "reservation does not exist or has expired",
		}, nil
	}

	switch res.Status {
	case domain.ReservationStatusConfirmed:
		return &ConfirmResult{
			Success:      false,
			ErrorCode:    "ALREADY_CONFIRMED",
			ErrorMessage: "reservation is already confirmed",
		}, nil
	case domain.ReservationStatusReleased:
		return &ConfirmResult{
			Success:      false,
			ErrorCode:    "RESERVATION_RELEASED",
			ErrorMessage: "reservation was already released",
		}, nil
	}

	if res.IsExpiredAt(time.Now()) {
		return &ConfirmResult{
			Success:      false,
			ErrorCode:    "RESERVATION_EXPIRED",
			ErrorMessage: "reservation has expired",
		}, nil
	}

	res.Status = domain.ReservationStatusConfirmed
	return &ConfirmResult{
		Success:   true,
		Available: r.available[memAvailabilityKey(res.EventID, res.Category)],
	}, nil
}

// Release returns held units to the pool. Safe to call repeatedly.
func (r *MemoryInventoryRepository) Release(ctx context.Context, token string) (*ReleaseResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, exists := r.reservations[token]
	if !exists {
		return &ReleaseResult{Success: true, Released: false, Available: -1}, nil
	}

	key := memAvailabilityKey(res.EventID, res.Category)
	if res.Status != domain.ReservationStatusHeld {
		return &ReleaseResult{Success: true, Released: false, Available: r.available[key]}, nil
	}

	res.Status = domain.ReservationStatusReleased
	r.available[key] += int64(res.Quantity)
	return &ReleaseResult{Success: true, Released: true, Available: r.available[key]}, nil
}

// ReleaseConfirmed hands a confirmed reservation's units back to the
// pool. Only the compensation path of a failed booking calls this;
// held or released tokens are left alone.
func (r *MemoryInventoryRepository) ReleaseConfirmed(ctx context.Context, token string) (*ReleaseResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, exists := r.reservations[token]
	if !exists {
		return &ReleaseResult{Success: true, Released: false, Available: -1}, nil
	}

	key := memAvailabilityKey(res.EventID, res.Category)
	if res.Status != domain.ReservationStatusConfirmed {
		return &ReleaseResult{Success: true, Released: false, Available: r.available[key]}, nil
	}

	res.Status = domain.ReservationStatusReleased
	r.available[key] += int64(res.Quantity)
	return &ReleaseResult{Success: true, Released: true, Available: r.available[key]}, nil
}

// GetAvailability returns the current available count for a category
func (r *MemoryInventoryRepository) GetAvailability(ctx context.Context, eventID, category string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	available, exists := r.available[memAvailabilityKey(eventID, category)]
	if !exists {
		return 0, domain.ErrCategoryNotFound
	}
	return available, nil
}

// GetReservation returns the hold behind a token
func (r *MemoryInventoryRepository) GetReservation(ctx context.Context, token string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, exists := r.reservations[token]
	if !exists {
		return nil, domain.ErrReservationNotFound
	}

	// Return a copy
	cp := *res
	return &cp, nil
}

// Clear clears all data (for testing)
func (r *MemoryInventoryRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.available = make(map[string]int64)
	r.reservations = make(map[string]*domain.Reservation)
}

// Ensure MemoryInventoryRepository implements InventoryRepository
var _ InventoryRepository = (*MemoryInventoryRepository)(nil)
