package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kasi0403/Eventify/internal/domain"
)

// MemoryBookingRepository implements BookingRepository using in-memory
// storage. This is useful for testing and development.
type MemoryBookingRepository struct {
	bookings map[string]*domain.Booking
	byUser   map[string][]string // userID -> []bookingID
	mu       sync.RWMutex
}

// NewMemoryBookingRepository creates a new in-memory booking repository
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		bookings: make(map[string]*domain.Booking),
		byUser:   make(map[string][]string),
	}
}

// Create creates a new booking record
func (r *MemoryBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[booking.ID]; exists {
		return domain.ErrInvalidBookingID
	}

	// Clone to avoid external modifications
	b := cloneBooking(booking)
	r.bookings[booking.ID] = b
	r.byUser[booking.UserID] = append(r.byUser[booking.UserID], booking.ID)

	return nil
}

// GetByID retrieves a booking by its ID
func (r *MemoryBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, exists := r.bookings[id]
	if !exists {
		return nil, domain.ErrBookingNotFound
	}

	return cloneBooking(booking), nil
}

// Update updates an existing booking
func (r *MemoryBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[booking.ID]; !exists {
		return domain.ErrBookingNotFound
	}

	r.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

// ListByUser retrieves bookings for a user, newest first
func (r *MemoryBookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, exists := r.byUser[userID]
	if !exists {
		return []*domain.Booking{}, nil
	}

	all := make([]*domain.Booking, 0, len(ids))
	for _, id := range ids {
		if booking, ok := r.bookings[id]; ok {
			all = append(all, booking)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	start := offset
	if start >= len(all) {
		return []*domain.Booking{}, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	result := make([]*domain.Booking, 0, end-start)
	for _, booking := range all[start:end] {
		result = append(result, cloneBooking(booking))
	}
	return result, nil
}

// ListExpiredPending returns pending bookings whose payment window
// closed before the cutoff, oldest first.
func (r *MemoryBookingRepository) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var expired []*domain.Booking
	for _, booking := range r.bookings {
		if booking.Status == domain.BookingStatusPending && booking.ExpiresAt.Before(cutoff) {
			expired = append(expired, booking)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ExpiresAt.Before(expired[j].ExpiresAt)
	})

	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}

	result := make([]*domain.Booking, 0, len(expired))
	for _, booking := range expired {
		result = append(result, cloneBooking(booking))
	}
	return result, nil
}

// Clear clears all data (for testing)
func (r *MemoryBookingRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookings = make(map[string]*domain.Booking)
	r.byUser = make(map[string][]string)
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	cp := *b
	cp.Items = make([]domain.BookingItem, len(b.Items))
	copy(cp.Items, b.Items)
	return &cp
}

// Ensure MemoryBookingRepository implements BookingRepository
var _ BookingRepository = (*MemoryBookingRepository)(nil)
