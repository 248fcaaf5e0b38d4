package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/kasi0403/Eventify/internal/domain"
)

// MemoryEventRepository implements EventRepository using in-memory
// storage. This is useful for testing and development.
type MemoryEventRepository struct {
	events map[string]*domain.Event
	mu     sync.RWMutex
}

// NewMemoryEventRepository creates a new in-memory event repository
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		events: make(map[string]*domain.Event),
	}
}

// Create creates a new event record
func (r *MemoryEventRepository) Create(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[event.ID]; exists {
		return domain.ErrInvalidEventID
	}

	r.events[event.ID] = cloneEvent(event)
	return nil
}

// GetByID retrieves an event by its ID
func (r *MemoryEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, exists := r.events[id]
	if !exists {
		return nil, domain.ErrEventNotFound
	}

	return cloneEvent(event), nil
}

// Update updates an existing event
func (r *MemoryEventRepository) Update(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[event.ID]; !exists {
		return domain.ErrEventNotFound
	}

	r.events[event.ID] = cloneEvent(event)
	return nil
}

// List retrieves active events, featured first, then newest first
func (r *MemoryEventRepository) List(ctx context.Context, featuredOnly bool, limit, offset int) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*domain.Event
	for _, event := range r.events {
		if event.Status != domain.EventStatusActive {
			continue
		}
		if featuredOnly && !event.Featured {
			continue
		}
		all = append(all, event)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Featured != all[j].Featured {
			return all[i].Featured
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return pageEvents(all, limit, offset), nil
}

// ListByOrganizer retrieves events created by one organizer
func (r *MemoryEventRepository) ListByOrganizer(ctx context.Context, organizerID string, limit, offset int) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*domain.Event
	for _, event := range r.events {
		if event.OrganizerID == organizerID {
			all = append(all, event)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return pageEvents(all, limit, offset), nil
}

// AdjustSold moves units between the available and sold columns of the
// durable category record
func (r *MemoryEventRepository) AdjustSold(ctx context.Context, eventID, category string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, exists := r.events[eventID]
	if !exists {
		return domain.ErrEventNotFound
	}

	cat, ok := event.Category(category)
	if !ok {
		return domain.ErrCategoryNotFound
	}

	next := cat.Available - delta
	if next < 0 || next > cat.Capacity {
		return domain.ErrInsufficientInventory
	}
	cat.Available = next
	return nil
}

// Clear clears all data (for testing)
func (r *MemoryEventRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = make(map[string]*domain.Event)
}

func cloneEvent(e *domain.Event) *domain.Event {
	cp := *e
	cp.Categories = make([]domain.TicketCategory, len(e.Categories))
	copy(cp.Categories, e.Categories)
	return &cp
}

func pageEvents(all []*domain.Event, limit, offset int) []*domain.Event {
	start := offset
	if start >= len(all) {
		return []*domain.Event{}
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	result := make([]*domain.Event, 0, end-start)
	for _, event := range all[start:end] {
		result = append(result, cloneEvent(event))
	}
	return result
}

// Ensure MemoryEventRepository implements EventRepository
var _ EventRepository = (*MemoryEventRepository)(nil)
