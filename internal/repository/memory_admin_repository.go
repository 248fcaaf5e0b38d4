package repository

import (
	"context"
	"sync"

	"github.com/kasi0403/Eventify/internal/domain"
)

// MemoryAdminRepository implements AdminRepository using in-memory
// storage. This is useful for testing and development.
type MemoryAdminRepository struct {
	byUsername map[string]*domain.Admin
	mu         sync.RWMutex
}

// NewMemoryAdminRepository creates a new in-memory admin repository
func NewMemoryAdminRepository() *MemoryAdminRepository {
	return &MemoryAdminRepository{
		byUsername: make(map[string]*domain.Admin),
	}
}

// Create creates an admin account
func (r *MemoryAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[admin.Username]; exists {
		return domain.ErrInvalidCredentials
	}

	a := *admin
	r.byUsername[admin.Username] = &a
	return nil
}

// GetByUsername retrieves an admin by username
func (r *MemoryAdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	admin, exists := r.byUsername[username]
	if !exists {
		return nil, domain.ErrAdminNotFound
	}

	cp := *admin
	return &cp, nil
}

// Ensure MemoryAdminRepository implements AdminRepository
var _ AdminRepository = (*MemoryAdminRepository)(nil)
