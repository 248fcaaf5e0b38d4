package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/internal/dto"
	"github.com/kasi0403/Eventify/internal/metrics"
	"github.com/kasi0403/Eventify/internal/repository"
	"github.com/kasi0403/Eventify/pkg/telemetry"
)

// CommissionService defines the interface for the commission ledger
type CommissionService interface {
	// RecordCommission records the commission payment for an event
	// exactly once and promotes the event to featured. A second
	// attempt returns ErrAlreadyRecorded and changes nothing.
	RecordCommission(ctx context.Context, eventID, recordedBy string, req *dto.RecordCommissionRequest) (*dto.CommissionResponse, error)

	// GetEventCommission retrieves the ledger entry for an event
	GetEventCommission(ctx context.Context, eventID string) (*dto.CommissionResponse, error)

	// ListCommissions retrieves ledger entries, newest first
	ListCommissions(ctx context.Context, page, pageSize int) (*dto.PaginatedResponse, error)

	// Summary returns the ledger rollup for dashboards
	Summary(ctx context.Context) (*dto.CommissionSummaryResponse, error)
}

// commissionService implements CommissionService
type commissionService struct {
	commissionRepo repository.CommissionRepository
	eventRepo      repository.EventRepository
	currency       string
}

// NewCommissionService creates a new commission service
func NewCommissionService(
	commissionRepo repository.CommissionRepository,
	eventRepo repository.EventRepository,
	currency string,
) CommissionService {
	if currency == "" {
		currency = "INR"
	}
	return &commissionService{
		commissionRepo: commissionRepo,
		eventRepo:      eventRepo,
		currency:       currency,
	}
}

// RecordCommission records the commission payment for an event exactly once
func (s *commissionService) RecordCommission(ctx context.Context, eventID, recordedBy string, req *dto.RecordCommissionRequest) (*dto.CommissionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.commission.record")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if req == nil || req.Amount < 0 {
		span.SetStatus(codes.Error, "invalid amount")
		return nil, domain.ErrInvalidAmount
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, "event lookup failed")
		return nil, err
	}
	if event.CommissionPaid {
		span.SetStatus(codes.Error, "already recorded")
		return nil, domain.ErrAlreadyRecorded
	}

	record := &domain.CommissionRecord{
		ID:          uuid.New().String(),
		EventID:     eventID,
		OrganizerID: event.OrganizerID,
		Amount:      req.Amount,
		Currency:    s.currency,
		RecordedBy:  recordedBy,
		RecordedAt:  time.Now(),
	}
	if err := record.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// The ledger append is the point of no return: its uniqueness
	// constraint arbitrates concurrent attempts.
	if err := s.commissionRepo.Create(ctx, record); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := event.SettleCommission(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordCommission(ctx, eventID, record.Amount)

	span.SetAttributes(attribute.Float64("amount", record.Amount))
	span.SetStatus(codes.Ok, "")
	return dto.CommissionFromDomain(record), nil
}

// GetEventCommission retrieves the ledger entry for an event
func (s *commissionService) GetEventCommission(ctx context.Context, eventID string) (*dto.CommissionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.commission.get_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	record, err := s.commissionRepo.GetByEventID(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.CommissionFromDomain(record), nil
}

// ListCommissions retrieves ledger entries, newest first
func (s *commissionService) ListCommissions(ctx context.Context, page, pageSize int) (*dto.PaginatedResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.commission.list")
	defer span.End()

	p := dto.Pagination{Page: page, PageSize: pageSize}
	limit, offset := p.Normalize()

	records, err := s.commissionRepo.List(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(records)))
	span.SetStatus(codes.Ok, "")
	return &dto.PaginatedResponse{
		Items:    dto.CommissionsFromDomain(records),
		Page:     page,
		PageSize: limit,
	}, nil
}

// Summary returns the ledger rollup for dashboards
func (s *commissionService) Summary(ctx context.Context) (*dto.CommissionSummaryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.commission.summary")
	defer span.End()

	total, err := s.commissionRepo.TotalAmount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	records, err := s.commissionRepo.List(ctx, 1000, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Float64("total", total))
	span.SetStatus(codes.Ok, "")
	return &dto.CommissionSummaryResponse{
		TotalAmount: total,
		Count:       len(records),
	}, nil
}
