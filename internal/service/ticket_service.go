package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/internal/dto"
	"github.com/kasi0403/Eventify/internal/metrics"
	"github.com/kasi0403/Eventify/internal/repository"
	"github.com/kasi0403/Eventify/pkg/telemetry"
)

// TicketService defines the interface for credential issuance and reads
type TicketService interface {
	// IssueForBooking mints one credential per purchased unit of a
	// confirmed booking. Idempotent: slots already filled by an
	// earlier run keep their original credential.
	IssueForBooking(ctx context.Context, booking *domain.Booking) ([]*domain.TicketCredential, error)

	// GetBookingCredentials returns the credentials of a booking,
	// issuing them first if the booking is confirmed but unissued.
	GetBookingCredentials(ctx context.Context, bookingID, userID string) ([]*dto.CredentialResponse, error)

	// ListUserCredentials returns credentials held by a user
	ListUserCredentials(ctx context.Context, userID string, page, pageSize int) (*dto.PaginatedResponse, error)
}

// ticketService implements TicketService
type ticketService struct {
	credentialRepo repository.CredentialRepository
	bookingRepo    repository.BookingRepository
}

// NewTicketService creates a new ticket service
func NewTicketService(
	credentialRepo repository.CredentialRepository,
	bookingRepo repository.BookingRepository,
) TicketService {
	return &ticketService{
		credentialRepo: credentialRepo,
		bookingRepo:    bookingRepo,
	}
}

// IssueForBooking mints one credential per purchased unit
func (s *ticketService) IssueForBooking(ctx context.Context, booking *domain.Booking) ([]*domain.TicketCredential, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.issue_for_booking")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("event_id", booking.EventID),
	)

	if !booking.IsConfirmed() {
		span.SetStatus(codes.Error, "booking not confirmed")
		return nil, domain.ErrBookingNotPaid
	}

	var issued []*domain.TicketCredential
	fresh := int64(0)
	for _, item := range booking.Items {
		for unit := 0; unit < item.Quantity; unit++ {
			token, err := domain.NewCredentialToken()
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}

			candidate := &domain.TicketCredential{
				ID:        uuid.New().String(),
				Token:     token,
				BookingID: booking.ID,
				EventID:   booking.EventID,
				UserID:    booking.UserID,
				Category:  item.Category,
				UnitIndex: unit,
				Status:    domain.CredentialStatusIssued,
				IssuedAt:  booking.UpdatedAt,
			}

			cred, err := s.credentialRepo.CreateIfAbsent(ctx, candidate)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			if cred.Token == token {
				fresh++
			}
			issued = append(issued, cred)
		}
	}

	if fresh > 0 {
		metrics.RecordCredentialsIssued(ctx, booking.EventID, fresh)
	}

	span.SetAttributes(
		attribute.Int("credential_count", len(issued)),
		attribute.Int64("freshly_issued", fresh),
	)
	span.SetStatus(codes.Ok, "")
	return issued, nil
}

// GetBookingCredentials returns the credentials of a booking
func (s *ticketService) GetBookingCredentials(ctx context.Context, bookingID, userID string) ([]*dto.CredentialResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.get_booking_credentials")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, "booking lookup failed")
		return nil, err
	}
	if userID != "" && !booking.BelongsToUser(userID) {
		span.SetStatus(codes.Error, "ownership mismatch")
		return nil, domain.ErrBookingNotFound
	}
	if !booking.IsConfirmed() {
		span.SetStatus(codes.Error, "booking not confirmed")
		return nil, domain.ErrBookingNotPaid
	}

	creds, err := s.credentialRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// A confirmed booking with missing credentials means a previous
	// issuance was interrupted; finish it here.
	if len(creds) < booking.TotalQuantity() {
		issued, err := s.IssueForBooking(ctx, booking)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		creds = issued
	}

	span.SetAttributes(attribute.Int("count", len(creds)))
	span.SetStatus(codes.Ok, "")
	return dto.CredentialsFromDomain(creds), nil
}

// ListUserCredentials returns credentials held by a user
func (s *ticketService) ListUserCredentials(ctx context.Context, userID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket.list_user_credentials")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	p := dto.Pagination{Page: page, PageSize: pageSize}
	limit, offset := p.Normalize()

	creds, err := s.credentialRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(creds)))
	span.SetStatus(codes.Ok, "")
	return &dto.PaginatedResponse{
		Items:    dto.CredentialsFromDomain(creds),
		Page:     page,
		PageSize: limit,
	}, nil
}

// Ensure ticketService implements both interfaces
var (
	_ TicketService    = (*ticketService)(nil)
	_ CredentialIssuer = (*ticketService)(nil)
)
