package service

import (
	"context"
	"time"

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

// CheckinService defines the interface for gate admission
type CheckinService interface {
	// CheckIn redeems a credential at the gate of the given event.
	// Exactly one of any number of concurrent scans of the same
	// credential is admitted.
	CheckIn(ctx context.Context, eventID string, req *dto.CheckInRequest) (*dto.CheckInResponse, error)

	// GetAttendance reads the attendance tally for an event
	GetAttendance(ctx context.Context, eventID string) (int64, error)
}

// checkinService implements CheckinService
type checkinService struct {
	credentialRepo repository.CredentialRepository
	attendance     repository.AttendanceCounter
	publisher      EventPublisher
	log            *logger.Logger
}

// NewCheckinService creates a new check-in service
func NewCheckinService(
	credentialRepo repository.CredentialRepository,
	attendance repository.AttendanceCounter,
	publisher EventPublisher,
) CheckinService {
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &checkinService{
		credentialRepo: credentialRepo,
		attendance:     attendance,
		publisher:      publisher,
		log:            logger.Get(),
	}
}

// CheckIn redeems a credential at the gate
func (s *checkinService) CheckIn(ctx context.Context, eventID string, req *dto.CheckInRequest) (*dto.CheckInResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.checkin.check_in")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	if req == nil || req.Token == "" {
		span.SetStatus(codes.Error, "missing token")
		return nil, domain.ErrCredentialNotFound
	}
	if err := domain.ValidateCredentialToken(req.Token); err != nil {
		metrics.RecordCheckinRejected(ctx, eventID, "malformed_token")
		span.SetStatus(codes.Error, "malformed token")
		return nil, err
	}

	// The event check happens before the swap so a scan at the wrong
	// gate never consumes the credential.
	cred, err := s.credentialRepo.GetByToken(ctx, req.Token)
	if err != nil {
		metrics.RecordCheckinRejected(ctx, eventID, "unknown_credential")
		span.SetStatus(codes.Error, "unknown credential")
		return nil, err
	}
	if !cred.BelongsToEvent(eventID) {
		metrics.RecordCheckinRejected(ctx, eventID, "wrong_event")
		span.SetStatus(codes.Error, "wrong event")
		return nil, domain.ErrEventMismatch
	}

	updated, err := s.credentialRepo.CheckIn(ctx, req.Token, time.Now())
	if err != nil {
		if domain.IsConflictError(err) {
			metrics.RecordCheckinRejected(ctx, eventID, "already_checked_in")
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	count, err := s.attendance.Incr(ctx, eventID)
	if err != nil {
		// The credential swap already happened; attendance is a tally
		// that may trail the records.
		s.log.Warn("failed to increment attendance",
			zap.String("event_id", eventID), zap.Error(err))
	}

	metrics.RecordCheckinAccepted(ctx, eventID)
	if err := s.publisher.PublishTicketCheckedIn(ctx, updated); err != nil {
		s.log.Warn("failed to publish check-in event",
			zap.String("event_id", eventID), zap.Error(err))
	}

	span.SetAttributes(attribute.Int64("attendance", count))
	span.SetStatus(codes.Ok, "")
	return &dto.CheckInResponse{
		Credential: dto.CredentialFromDomain(updated),
		Attendance: count,
	}, nil
}

// GetAttendance reads the attendance tally for an event
func (s *checkinService) GetAttendance(ctx context.Context, eventID string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.checkin.get_attendance")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	count, err := s.attendance.Get(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int64("attendance", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}
