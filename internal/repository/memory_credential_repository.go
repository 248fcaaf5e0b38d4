package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kasi0403/Eventify/internal/domain"
)

// MemoryCredentialRepository implements CredentialRepository using
// in-memory storage. This is useful for testing and development.
type MemoryCredentialRepository struct {
	byToken   map[string]*domain.TicketCredential
	bySlot    map[string]string   // slot key -> token
	byBooking map[string][]string // bookingID -> []token
	byUser    map[string][]string // userID -> []token
	mu        sync.Mutex
}

// NewMemoryCredentialRepository creates a new in-memory credential repository
func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{
		byToken:   make(map[string]*domain.TicketCredential),
		bySlot:    make(map[string]string),
		byBooking: make(map[string][]string),
		byUser:    make(map[string][]string),
	}
}

// CreateIfAbsent stores the credential unless its slot is already
// filled, in which case the existing credential is returned.
func (r *MemoryCredentialRepository) CreateIfAbsent(ctx context.Context, cred *domain.TicketCredential) (*domain.TicketCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot := cred.SlotKey()
	if token, exists := r.bySlot[slot]; exists {
		existing := *r.byToken[token]
		return &existing, nil
	}

	c := *cred
	r.byToken[cred.Token] = &c
	r.bySlot[slot] = cred.Token
	r.byBooking[cred.BookingID] = append(r.byBooking[cred.BookingID], cred.Token)
	r.byUser[cred.UserID] = append(r.byUser[cred.UserID], cred.Token)

	cp := c
	return &cp, nil
}

// GetByToken retrieves a credential by its admission token
func (r *MemoryCredentialRepository) GetByToken(ctx context.Context, token string) (*domain.TicketCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cred, exists := r.byToken[token]
	if !exists {
		return nil, domain.ErrCredentialNotFound
	}

	cp := *cred
	return &cp, nil
}

// ListByBooking retrieves all credentials issued for a booking
func (r *MemoryCredentialRepository) ListByBooking(ctx context.Context, bookingID string) ([]*domain.TicketCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens := r.byBooking[bookingID]
	result := make([]*domain.TicketCredential, 0, len(tokens))
	for _, token := range tokens {
		if cred, ok := r.byToken[token]; ok {
			cp := *cred
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].UnitIndex < result[j].UnitIndex
	})
	return result, nil
}

// ListByUser retrieves credentials held by a user, newest first
func (r *MemoryCredentialRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.TicketCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens := r.byUser[userID]
	all := make([]*domain.TicketCredential, 0, len(tokens))
	for _, token := range tokens {
		if cred, ok := r.byToken[token]; ok {
			all = append(all, cred)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].IssuedAt.After(all[j].IssuedAt)
	})

	start := offset
	if start >= len(all) {
		return []*domain.TicketCredential{}, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	result := make([]*domain.TicketCredential, 0, end-start)
	for _, cred := range all[start:end] {
		cp := *cred
		result = append(result, &cp)
	}
	return result, nil
}

// CheckIn flips the credential from issued to checked_in. Holding the
// repository lock for the whole swap makes it atomic: under concurrent
// calls exactly one succeeds.
func (r *MemoryCredentialRepository) CheckIn(ctx context.Context, token string, at time.Time) (*domain.TicketCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cred, exists := r.byToken[token]
	if !exists {
		return nil, domain.ErrCredentialNotFound
	}

	if cred.Status == domain.CredentialStatusCheckedIn {
		return nil, domain.ErrAlreadyCheckedIn
	}

	cred.Status = domain.CredentialStatusCheckedIn
	checkedAt := at
	cred.CheckedInAt = &checkedAt

	cp := *cred
	return &cp, nil
}

// Clear clears all data (for testing)
func (r *MemoryCredentialRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byToken = make(map[string]*domain.TicketCredential)
	r.bySlot = make(map[string]string)
	r.byBooking = make(map[string][]string)
	r.byUser = make(map[string][]string)
}

// Ensure MemoryCredentialRepository implements CredentialRepository
var _ CredentialRepository = (*MemoryCredentialRepository)(nil)
