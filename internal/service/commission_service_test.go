package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/internal/dto"
	"github.com/kasi0403/Eventify/internal/repository"
)

func newCommissionStack(t *testing.T) (CommissionService, *repository.MemoryEventRepository) {
	t.Helper()
	ctx := context.Background()

	eventRepo := repository.NewMemoryEventRepository()
	if err := eventRepo.Create(ctx, testEvent()); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	svc := NewCommissionService(repository.NewMemoryCommissionRepository(), eventRepo, "INR")
	return svc, eventRepo
}

func TestCommissionService_RecordCommission(t *testing.T) {
	ctx := context.Background()
	svc, eventRepo := newCommissionStack(t)

	record, err := svc.RecordCommission(ctx, "event-001", "admin-001", &dto.RecordCommissionRequest{Amount: 250.00})
	if err != nil {
		t.Fatalf("RecordCommission() error = %v", err)
	}
	if record.Amount != 250.00 || record.Currency != "INR" {
		t.Errorf("record = %+v, want 250.00 INR", record)
	}
	if record.OrganizerID != "org-001" {
		t.Errorf("OrganizerID = %v, want org-001", record.OrganizerID)
	}

	// Settlement promotes the event to featured in the same step
	event, err := eventRepo.GetByID(ctx, "event-001")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !event.CommissionPaid || !event.Featured {
		t.Errorf("CommissionPaid = %v, Featured = %v, want both true", event.CommissionPaid, event.Featured)
	}

	// Exactly once per event
	if _, err := svc.RecordCommission(ctx, "event-001", "admin-001", &dto.RecordCommissionRequest{Amount: 250.00}); !errors.Is(err, domain.ErrAlreadyRecorded) {
		t.Errorf("duplicate RecordCommission() error = %v, want ErrAlreadyRecorded", err)
	}
}

func TestCommissionService_RecordCommission_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCommissionStack(t)

	if _, err := svc.RecordCommission(ctx, "event-001", "admin-001", &dto.RecordCommissionRequest{Amount: -5}); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("negative amount error = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.RecordCommission(ctx, "event-999", "admin-001", &dto.RecordCommissionRequest{Amount: 100}); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("unknown event error = %v, want ErrEventNotFound", err)
	}
}

func TestCommissionService_SummaryAndLookup(t *testing.T) {
	ctx := context.Background()

	eventRepo := repository.NewMemoryEventRepository()
	eventA := testEvent()
	eventRepo.Create(ctx, eventA)
	eventB, _ := domain.NewEvent("event-002", "org-002", "Encore", eventA.StartsAt, []domain.TicketCategory{
		{Name: "general", Price: 200, Capacity: 50},
	})
	eventRepo.Create(ctx, eventB)

	svc := NewCommissionService(repository.NewMemoryCommissionRepository(), eventRepo, "INR")

	if _, err := svc.RecordCommission(ctx, "event-001", "admin-001", &dto.RecordCommissionRequest{Amount: 250.00}); err != nil {
		t.Fatalf("RecordCommission() error = %v", err)
	}
	if _, err := svc.RecordCommission(ctx, "event-002", "admin-001", &dto.RecordCommissionRequest{Amount: 100.50}); err != nil {
		t.Fatalf("RecordCommission() error = %v", err)
	}

	record, err := svc.GetEventCommission(ctx, "event-001")
	if err != nil {
		t.Fatalf("GetEventCommission() error = %v", err)
	}
	if record.Amount != 250.00 {
		t.Errorf("Amount = %v, want 250.00", record.Amount)
	}

	if _, err := svc.GetEventCommission(ctx, "event-999"); !errors.Is(err, domain.ErrCommissionNotFound) {
		t.Errorf("unknown event error = %v, want ErrCommissionNotFound", err)
	}

	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.TotalAmount != 350.50 || summary.Count != 2 {
		t.Errorf("Summary() = %+v, want 350.50 across 2 records", summary)
	}
}
