package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/internal/dto"
	"github.com/kasi0403/Eventify/internal/repository"
	"github.com/kasi0403/Eventify/pkg/telemetry"
)

// EventService defines the interface for event listing management
type EventService interface {
	// CreateEvent records a new listing and seeds its inventory
	CreateEvent(ctx context.Context, organizerID string, req *dto.CreateEventRequest) (*dto.EventResponse, error)

	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)

	// ListEvents retrieves active events, featured first
	ListEvents(ctx context.Context, featuredOnly bool, page, pageSize int) (*dto.PaginatedResponse, error)

	// ListOrganizerEvents retrieves an organizer's events
	ListOrganizerEvents(ctx context.Context, organizerID string, page, pageSize int) (*dto.PaginatedResponse, error)

	// CancelEvent soft-cancels an event so new bookings are refused.
	// Existing bookings and credentials stay intact.
	CancelEvent(ctx context.Context, eventID, organizerID string) error

	// GetAvailability reads the live availability for a category
	GetAvailability(ctx context.Context, eventID, category string) (*dto.AvailabilityResponse, error)
}

// eventService implements EventService
type eventService struct {
	eventRepo     repository.EventRepository
	inventoryRepo repository.InventoryRepository
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo repository.EventRepository,
	inventoryRepo repository.InventoryRepository,
) EventService {
	return &eventService{
		eventRepo:     eventRepo,
		inventoryRepo: inventoryRepo,
	}
}

// CreateEvent records a new listing and seeds its inventory
func (s *eventService) CreateEvent(ctx context.Context, organizerID string, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	span.SetAttributes(attribute.String("organizer_id", organizerID))

	if req == nil {
		span.SetStatus(codes.Error, "missing request")
		return nil, domain.ErrEmptySelection
	}

	categories := make([]domain.TicketCategory, 0, len(req.Categories))
	for _, c := range req.Categories {
		categories = append(categories, domain.TicketCategory{
			Name:     c.Name,
			Price:    c.Price,
			Capacity: c.Capacity,
		})
	}

	event, err := domain.NewEvent(uuid.New().String(), organizerID, req.Name, req.StartsAt, categories)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	event.Description = req.Description
	event.Venue = req.Venue

	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Seed the live inventory ledger from the durable record.
	for _, c := range event.Categories {
		if err := s.inventoryRepo.InitCategory(ctx, event.ID, c.Name, int64(c.Capacity)); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, "event lookup failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// ListEvents retrieves active events, featured first
func (s *eventService) ListEvents(ctx context.Context, featuredOnly bool, page, pageSize int) (*dto.PaginatedResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list")
	defer span.End()

	p := dto.Pagination{Page: page, PageSize: pageSize}
	limit, offset := p.Normalize()

	events, err := s.eventRepo.List(ctx, featuredOnly, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return &dto.PaginatedResponse{
		Items:    dto.EventsFromDomain(events),
		Page:     page,
		PageSize: limit,
	}, nil
}

// ListOrganizerEvents retrieves an organizer's events
func (s *eventService) ListOrganizerEvents(ctx context.Context, organizerID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list_by_organizer")
	defer span.End()

	span.SetAttributes(attribute.String("organizer_id", organizerID))

	p := dto.Pagination{Page: page, PageSize: pageSize}
	limit, offset := p.Normalize()

	events, err := s.eventRepo.ListByOrganizer(ctx, organizerID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return &dto.PaginatedResponse{
		Items:    dto.EventsFromDomain(events),
		Page:     page,
		PageSize: limit,
	}, nil
}

// CancelEvent soft-cancels an event so new bookings are refused
func (s *eventService) CancelEvent(ctx context.Context, eventID, organizerID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, "event lookup failed")
		return err
	}
	if organizerID != "" && !event.BelongsToOrganizer(organizerID) {
		span.SetStatus(codes.Error, "ownership mismatch")
		return domain.ErrEventNotFound
	}

	if err := event.Cancel(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetAvailability reads the live availability for a category
func (s *eventService) GetAvailability(ctx context.Context, eventID, category string) (*dto.AvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get_availability")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("category", category),
	)

	available, err := s.inventoryRepo.GetAvailability(ctx, eventID, category)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("available", available))
	span.SetStatus(codes.Ok, "")
	return &dto.AvailabilityResponse{
		EventID:   eventID,
		Category:  category,
		Available: available,
	}, nil
}
