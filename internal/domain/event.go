package domain

import (
	"strings"
	"time"
)

// EventStatus represents the lifecycle status of an event
type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusCancelled EventStatus = "cancelled"
)

// IsValid checks if the status is a valid EventStatus
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusActive, EventStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of EventStatus
func (s EventStatus) String() string {
	return string(s)
}

// TicketCategory is a named price tier within an event with its own
// capacity. Available counts sellable units and never exceeds Capacity.
type TicketCategory struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Capacity  int     `json:"capacity"`
	Available int     `json:"available"`
}

// Validate validates the category fields
func (c *TicketCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidCategory
	}
	if c.Price < 0 {
		return ErrInvalidPrice
	}
	if c.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}

// Event represents an event listing with its ticket inventory
type Event struct {
	ID             string           `json:"id"`
	OrganizerID    string           `json:"organizer_id"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Venue          string           `json:"venue,omitempty"`
	StartsAt       time.Time        `json:"starts_at"`
	Categories     []TicketCategory `json:"categories"`
	Status         EventStatus      `json:"status"`
	CommissionPaid bool             `json:"commission_paid"`
	Featured       bool             `json:"featured"`
	Attendance     int64            `json:"attendance"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewEvent creates an event with inventory initialized to full capacity.
// Featured visibility is derived from commission settlement and never
// set independently.
func NewEvent(id, organizerID, name string, startsAt time.Time, categories []TicketCategory) (*Event, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidEventID
	}
	if strings.TrimSpace(organizerID) == "" {
		return nil, ErrInvalidUserID
	}
	if len(categories) == 0 {
		return nil, ErrEmptySelection
	}
	seen := make(map[string]struct{}, len(categories))
	for i := range categories {
		if err := categories[i].Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[categories[i].Name]; dup {
			return nil, ErrDuplicateCategory
		}
		seen[categories[i].Name] = struct{}{}
		categories[i].Available = categories[i].Capacity
	}
	now := time.Now()
	return &Event{
		ID:          id,
		OrganizerID: organizerID,
		Name:        name,
		StartsAt:    startsAt,
		Categories:  categories,
		Status:      EventStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Category returns the category with the given name
func (e *Event) Category(name string) (*TicketCategory, bool) {
	for i := range e.Categories {
		if e.Categories[i].Name == name {
			return &e.Categories[i], true
		}
	}
	return nil, false
}

// IsActive checks if the event is accepting bookings
func (e *Event) IsActive() bool {
	return e.Status == EventStatusActive
}

// Cancel marks the event as cancelled. Existing bookings and
// credentials are untouched; only new bookings are blocked.
func (e *Event) Cancel() error {
	if e.Status == EventStatusCancelled {
		return ErrEventCancelled
	}
	e.Status = EventStatusCancelled
	e.UpdatedAt = time.Now()
	return nil
}

// SettleCommission marks the platform commission as paid and promotes
// the event to featured in the same step.
func (e *Event) SettleCommission() error {
	if e.CommissionPaid {
		return ErrAlreadyRecorded
	}
	e.CommissionPaid = true
	e.Featured = true
	e.UpdatedAt = time.Now()
	return nil
}

// BelongsToOrganizer checks if the event belongs to the specified organizer
func (e *Event) BelongsToOrganizer(organizerID string) bool {
	return e.OrganizerID == organizerID
}
