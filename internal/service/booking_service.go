package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/internal/dto"
	"github.com/kasi0403/Eventify/internal/metrics"
	"github.com/kasi0403/Eventify/internal/repository"
	"github.com/kasi0403/Eventify/pkg/logger"
	"github.com/kasi0403/Eventify/pkg/telemetry"
)

// CredentialIssuer mints ticket credentials for a confirmed booking.
// Implementations must be idempotent so a retried payment webhook
// never produces duplicates.
type CredentialIssuer interface {
	IssueForBooking(ctx context.Context, booking *domain.Booking) ([]*domain.TicketCredential, error)
}

// BookingService defines the interface for booking business logic
type BookingService interface {
	// CreateBooking places holds for every selected category and
	// records a pending booking. All-or-nothing: one unavailable
	// category aborts the whole attempt.
	CreateBooking(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)

	// OnPaymentConfirmed finalizes a pending booking after the payment
	// collaborator reports success. Safe to retry.
	OnPaymentConfirmed(ctx context.Context, bookingID, paymentRef string) (*dto.BookingResponse, error)

	// OnPaymentFailed fails a pending booking and returns its holds to
	// the pool. Safe to retry.
	OnPaymentFailed(ctx context.Context, bookingID, reason string) (*dto.BookingResponse, error)

	// CancelBooking abandons a pending booking on the attendee's
	// request, returning its holds to the pool. Confirmed bookings
	// cannot be cancelled here.
	CancelBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error)

	// GetBooking retrieves a booking, enforcing ownership
	GetBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error)

	// ListBookings retrieves a user's bookings, newest first
	ListBookings(ctx context.Context, userID string, page, pageSize int) (*dto.PaginatedResponse, error)

	// ExpireBookings fails pending bookings whose payment window has
	// closed and reclaims their holds. Returns the number swept.
	ExpireBookings(ctx context.Context, limit int) (int, error)
}

// bookingService implements BookingService
type bookingService struct {
	bookingRepo   repository.BookingRepository
	eventRepo     repository.EventRepository
	inventoryRepo repository.InventoryRepository
	issuer        CredentialIssuer
	publisher     EventPublisher
	log           *logger.Logger

	reservationTTL time.Duration
	serviceFeeRate float64
	currency       string
}

// BookingServiceConfig contains configuration for the booking service
type BookingServiceConfig struct {
	ReservationTTL  time.Duration
	ServiceFeeRate  float64
	DefaultCurrency string
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repository.BookingRepository,
	eventRepo repository.EventRepository,
	inventoryRepo repository.InventoryRepository,
	issuer CredentialIssuer,
	publisher EventPublisher,
	cfg *BookingServiceConfig,
) BookingService {
	ttl := 5 * time.Minute
	feeRate := 0.10
	currency := "INR"
	if cfg != nil {
		if cfg.ReservationTTL > 0 {
			ttl = cfg.ReservationTTL
		}
		if cfg.ServiceFeeRate > 0 {
			feeRate = cfg.ServiceFeeRate
		}
		if cfg.DefaultCurrency != "" {
			currency = cfg.DefaultCurrency
		}
	}
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &bookingService{
		bookingRepo:    bookingRepo,
		eventRepo:      eventRepo,
		inventoryRepo:  inventoryRepo,
		issuer:         issuer,
		publisher:      publisher,
		log:            logger.Get(),
		reservationTTL: ttl,
		serviceFeeRate: feeRate,
		currency:       currency,
	}
}

// CreateBooking places holds for every selected category and records a
// pending booking
func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if req == nil || req.EventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	if len(req.Items) == 0 {
		span.SetStatus(codes.Error, "empty selection")
		return nil, domain.ErrEmptySelection
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", req.EventID),
		attribute.Int("item_count", len(req.Items)),
	)

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		span.SetStatus(codes.Error, "event lookup failed")
		return nil, err
	}
	if !event.IsActive() {
		span.SetStatus(codes.Error, "event cancelled")
		return nil, domain.ErrEventCancelled
	}

	booking := &domain.Booking{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventID:   req.EventID,
		Currency:  s.currency,
		Status:    domain.BookingStatusPending,
		ExpiresAt: time.Now().Add(s.reservationTTL),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for _, item := range req.Items {
		cat, ok := event.Category(item.Category)
		if !ok {
			span.SetStatus(codes.Error, "category not found")
			return nil, domain.ErrCategoryNotFound
		}
		booking.Items = append(booking.Items, domain.BookingItem{
			Category:  item.Category,
			Quantity:  item.Quantity,
			UnitPrice: cat.Price,
		})
	}
	booking.ComputeTotals(s.serviceFeeRate)

	if err := booking.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Hold inventory line by line. The first refusal unwinds every
	// hold taken so far and leaves a failed booking on record so the
	// attendee's history explains the rejection.
	ttlSeconds := int(s.reservationTTL.Seconds())
	for i := range booking.Items {
		item := &booking.Items[i]
		result, err := s.inventoryRepo.Reserve(ctx, repository.ReserveParams{
			EventID:    booking.EventID,
			Category:   item.Category,
			Quantity:   item.Quantity,
			TTLSeconds: ttlSeconds,
		})
		if err != nil {
			s.abortReservation(ctx, booking, i, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if !result.Success {
			reserveErr := reserveErrorFromCode(result.ErrorCode)
			s.abortReservation(ctx, booking, i, reserveErr)
			span.SetStatus(codes.Error, result.ErrorCode)
			return nil, reserveErr
		}
		item.ReservationToken = result.Token
		metrics.RecordHold(ctx, booking.EventID, item.Category, item.Quantity)
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		s.releaseHolds(ctx, booking, len(booking.Items))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordBookingCreated(ctx, booking.EventID, booking.TotalQuantity())
	if err := s.publisher.PublishBookingCreated(ctx, booking); err != nil {
		s.log.Warn("failed to publish booking created event",
			zap.String("booking_id", booking.ID), zap.Error(err))
	}

	span.SetAttributes(attribute.String("booking_id", booking.ID))
	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// OnPaymentConfirmed finalizes a pending booking after payment success
func (s *bookingService) OnPaymentConfirmed(ctx context.Context, bookingID, paymentRef string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.on_payment_confirmed")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, "booking lookup failed")
		return nil, err
	}

	// A retried webhook for an already finalized booking is not an
	// error.
	if booking.IsConfirmed() {
		span.SetStatus(codes.Ok, "already confirmed")
		return dto.BookingFromDomain(booking), nil
	}
	if !booking.IsPending() {
		span.SetStatus(codes.Error, "not pending")
		return nil, domain.ErrBookingNotPending
	}

	// Payment that lands after the booking's window closed cannot
	// complete, even if the sweep has not reached the booking yet.
	if booking.IsExpired() {
		span.SetStatus(codes.Error, "booking expired")
		if failErr := s.failBooking(ctx, booking, "payment arrived after booking expired"); failErr != nil {
			s.log.Error("failed to fail expired booking",
				zap.String("booking_id", booking.ID), zap.Error(failErr))
		}
		return nil, domain.ErrBookingExpired
	}

	// Confirm every hold before touching the booking record. Any hold
	// that expired or was reclaimed by the sweep aborts the
	// confirmation; holds confirmed before the abort are revoked so
	// their units go back on sale instead of dangling unsold.
	for i := range booking.Items {
		result, err := s.inventoryRepo.Confirm(ctx, booking.Items[i].ReservationToken)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if !result.Success && result.ErrorCode != "ALREADY_CONFIRMED" {
			span.SetStatus(codes.Error, result.ErrorCode)
			s.revokeConfirmations(ctx, booking)
			if failErr := s.failBooking(ctx, booking, "payment arrived after reservation expired"); failErr != nil {
				s.log.Error("failed to fail booking after lapsed hold",
					zap.String("booking_id", booking.ID), zap.Error(failErr))
			}
			return nil, domain.ErrReservationExpired
		}
	}

	windowSeconds := time.Since(booking.CreatedAt).Seconds()
	if err := booking.Confirm(paymentRef); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Reconcile the durable per-category counts.
	for _, item := range booking.Items {
		if err := s.eventRepo.AdjustSold(ctx, booking.EventID, item.Category, item.Quantity); err != nil {
			s.log.Warn("failed to adjust sold count",
				zap.String("booking_id", booking.ID),
				zap.String("category", item.Category),
				zap.Error(err))
		}
	}

	if s.issuer != nil {
		if _, err := s.issuer.IssueForBooking(ctx, booking); err != nil {
			// Issuance is idempotent; the next webhook retry or
			// credential fetch finishes the job.
			s.log.Error("failed to issue credentials",
				zap.String("booking_id", booking.ID), zap.Error(err))
		}
	}

	metrics.RecordBookingConfirmed(ctx, booking.EventID, windowSeconds)
	if err := s.publisher.PublishBookingConfirmed(ctx, booking); err != nil {
		s.log.Warn("failed to publish booking confirmed event",
			zap.String("booking_id", booking.ID), zap.Error(err))
	}

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// OnPaymentFailed fails a pending booking and returns its holds
func (s *bookingService) OnPaymentFailed(ctx context.Context, bookingID, reason string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.on_payment_failed")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("reason", reason),
	)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, "booking lookup failed")
		return nil, err
	}

	if booking.Status == domain.BookingStatusFailed {
		span.SetStatus(codes.Ok, "already failed")
		return dto.BookingFromDomain(booking), nil
	}
	if !booking.IsPending() {
		span.SetStatus(codes.Error, "not pending")
		return nil, domain.ErrBookingNotPending
	}

	if reason == "" {
		reason = "payment failed"
	}
	if err := s.failBooking(ctx, booking, reason); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// CancelBooking abandons a pending booking on the attendee's request
func (s *bookingService) CancelBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel")
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

	if booking.Status == domain.BookingStatusFailed {
		span.SetStatus(codes.Ok, "already failed")
		return dto.BookingFromDomain(booking), nil
	}
	if !booking.IsPending() {
		span.SetStatus(codes.Error, "not pending")
		return nil, domain.ErrBookingNotPending
	}

	if err := s.failBooking(ctx, booking, "cancelled by attendee"); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// GetBooking retrieves a booking, enforcing ownership
func (s *bookingService) GetBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
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

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// ListBookings retrieves a user's bookings, newest first
func (s *bookingService) ListBookings(ctx context.Context, userID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	p := dto.Pagination{Page: page, PageSize: pageSize}
	limit, offset := p.Normalize()

	bookings, err := s.bookingRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return &dto.PaginatedResponse{
		Items:    dto.BookingsFromDomain(bookings),
		Page:     page,
		PageSize: limit,
	}, nil
}

// ExpireBookings fails pending bookings whose payment window has closed
func (s *bookingService) ExpireBookings(ctx context.Context, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.expire")
	defer span.End()

	expired, err := s.bookingRepo.ListExpiredPending(ctx, time.Now(), limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	swept := 0
	for _, booking := range expired {
		if err := s.failBooking(ctx, booking, "payment window expired"); err != nil {
			s.log.Warn("failed to expire booking",
				zap.String("booking_id", booking.ID), zap.Error(err))
			continue
		}
		swept++
	}

	if swept > 0 {
		metrics.RecordExpiration(ctx, int64(swept))
	}

	span.SetAttributes(attribute.Int("swept", swept))
	span.SetStatus(codes.Ok, "")
	return swept, nil
}

// failBooking releases the booking's holds and moves it to failed.
// Releasing is idempotent and a hold that was already confirmed is
// left untouched by the ledger, so a lost race with the payment path
// never un-sells units.
func (s *bookingService) failBooking(ctx context.Context, booking *domain.Booking, reason string) error {
	released := int64(0)
	for _, item := range booking.Items {
		result, err := s.inventoryRepo.Release(ctx, item.ReservationToken)
		if err != nil {
			return err
		}
		if result.Success && result.Released {
			released++
		}
	}
	if released > 0 {
		metrics.RecordRelease(ctx, booking.EventID, released)
	}

	if err := booking.Fail(reason); err != nil {
		return err
	}
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return err
	}

	metrics.RecordBookingFailed(ctx, booking.EventID, reason)
	if err := s.publisher.PublishBookingFailed(ctx, booking); err != nil {
		s.log.Warn("failed to publish booking failed event",
			zap.String("booking_id", booking.ID), zap.Error(err))
	}
	return nil
}

// revokeConfirmations hands back any of the booking's holds that
// already confirmed when the booking cannot complete. Non-confirmed
// tokens are left for failBooking's normal release.
func (s *bookingService) revokeConfirmations(ctx context.Context, booking *domain.Booking) {
	for _, item := range booking.Items {
		if item.ReservationToken == "" {
			continue
		}
		result, err := s.inventoryRepo.ReleaseConfirmed(ctx, item.ReservationToken)
		if err != nil {
			s.log.Error("failed to revoke confirmed hold",
				zap.String("booking_id", booking.ID),
				zap.String("token", item.ReservationToken),
				zap.Error(err))
			continue
		}
		if result.Success && result.Released {
			metrics.RecordRelease(ctx, booking.EventID, int64(item.Quantity))
		}
	}
}

// abortReservation unwinds the first n holds of a partially reserved
// booking and records it as failed with the triggering error, so the
// rejection stays visible in the attendee's booking history.
func (s *bookingService) abortReservation(ctx context.Context, booking *domain.Booking, n int, cause error) {
	s.releaseHolds(ctx, booking, n)

	if err := booking.Fail(cause.Error()); err != nil {
		s.log.Warn("failed to mark aborted booking as failed",
			zap.String("booking_id", booking.ID), zap.Error(err))
		return
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		s.log.Warn("failed to persist aborted booking",
			zap.String("booking_id", booking.ID), zap.Error(err))
		return
	}

	metrics.RecordBookingFailed(ctx, booking.EventID, cause.Error())
	if err := s.publisher.PublishBookingFailed(ctx, booking); err != nil {
		s.log.Warn("failed to publish booking failed event",
			zap.String("booking_id", booking.ID), zap.Error(err))
	}
}

// releaseHolds unwinds the first n holds of a partially reserved booking
func (s *bookingService) releaseHolds(ctx context.Context, booking *domain.Booking, n int) {
	for i := 0; i < n && i < len(booking.Items); i++ {
		token := booking.Items[i].ReservationToken
		if token == "" {
			continue
		}
		if _, err := s.inventoryRepo.Release(ctx, token); err != nil {
			s.log.Warn("failed to release hold during unwind",
				zap.String("booking_id", booking.ID),
				zap.String("token", token),
				zap.Error(err))
		}
	}
}

func reserveErrorFromCode(code string) error {
	switch code {
	case "CATEGORY_NOT_FOUND":
		return domain.ErrCategoryNotFound
	case "INSUFFICIENT_INVENTORY":
		return domain.ErrInsufficientInventory
	default:
		return domain.ErrInsufficientInventory
	}
}
