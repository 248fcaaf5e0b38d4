package dto

import (
	"time"

	"github.com/kasi0403/Eventify/internal/domain"
)

// TicketCategoryRequest is one price tier in a create-event request
type TicketCategoryRequest struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"min=0"`
	Capacity int     `json:"capacity" binding:"required,min=1"`
}

// CreateEventRequest is the request body for creating an event
type CreateEventRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Description string                  `json:"description"`
	Venue       string                  `json:"venue"`
	StartsAt    time.Time               `json:"starts_at" binding:"required"`
	Categories  []TicketCategoryRequest `json:"categories" binding:"required,min=1,dive"`
}

// TicketCategoryResponse is one price tier in an event response
type TicketCategoryResponse struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Capacity  int     `json:"capacity"`
	Available int     `json:"available"`
}

// EventResponse is the API representation of an event
type EventResponse struct {
	ID             string                   `json:"id"`
	OrganizerID    string                   `json:"organizer_id"`
	Name           string                   `json:"name"`
	Description    string                   `json:"description,omitempty"`
	Venue          string                   `json:"venue,omitempty"`
	StartsAt       time.Time                `json:"starts_at"`
	Categories     []TicketCategoryResponse `json:"categories"`
	Status         string                   `json:"status"`
	CommissionPaid bool                     `json:"commission_paid"`
	Featured       bool                     `json:"featured"`
	Attendance     int64                    `json:"attendance"`
	CreatedAt      time.Time                `json:"created_at"`
}

// EventFromDomain converts a domain event to an EventResponse
func EventFromDomain(event *domain.Event) *EventResponse {
	categories := make([]TicketCategoryResponse, 0, len(event.Categories))
	for _, c := range event.Categories {
		categories = append(categories, TicketCategoryResponse{
			Name:      c.Name,
			Price:     c.Price,
			Capacity:  c.Capacity,
			Available: c.Available,
		})
	}
	return &EventResponse{
		ID:             event.ID,
		OrganizerID:    event.OrganizerID,
		Name:           event.Name,
		Description:    event.Description,
		Venue:          event.Venue,
		StartsAt:       event.StartsAt,
		Categories:     categories,
		Status:         event.Status.String(),
		CommissionPaid: event.CommissionPaid,
		Featured:       event.Featured,
		Attendance:     event.Attendance,
		CreatedAt:      event.CreatedAt,
	}
}

// EventsFromDomain converts a slice of domain events
func EventsFromDomain(events []*domain.Event) []*EventResponse {
	result := make([]*EventResponse, 0, len(events))
	for _, event := range events {
		result = append(result, EventFromDomain(event))
	}
	return result
}

// AvailabilityResponse reports the live availability for a category
type AvailabilityResponse struct {
	EventID   string `json:"event_id"`
	Category  string `json:"category"`
	Available int64  `json:"available"`
}
