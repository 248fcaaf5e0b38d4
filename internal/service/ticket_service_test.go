package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/internal/repository"
)

func confirmedBooking() *domain.Booking {
	booking := &domain.Booking{
		ID:      "booking-001",
		UserID:  "user-001",
		EventID: "event-001",
		Items: []domain.BookingItem{
			{Category: "general", Quantity: 2, UnitPrice: 500.00},
			{Category: "vip", Quantity: 1, UnitPrice: 1500.00},
		},
		Status:    domain.BookingStatusPending,
		ExpiresAt: time.Now().Add(5 * time.Minute),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	booking.Confirm("pay-123")
	return booking
}

func TestTicketService_IssueForBooking(t *testing.T) {
	ctx := context.Background()
	credentialRepo := repository.NewMemoryCredentialRepository()
	bookingRepo := repository.NewMemoryBookingRepository()
	svc := NewTicketService(credentialRepo, bookingRepo).(CredentialIssuer)

	booking := confirmedBooking()
	bookingRepo.Create(ctx, booking)

	issued, err := svc.IssueForBooking(ctx, booking)
	if err != nil {
		t.Fatalf("IssueForBooking() error = %v", err)
	}
	if len(issued) != 3 {
		t.Fatalf("issued = %d credentials, want 3", len(issued))
	}
	for _, cred := range issued {
		if err := domain.ValidateCredentialToken(cred.Token); err != nil {
			t.Errorf("credential token %q invalid: %v", cred.Token, err)
		}
		if cred.Status != domain.CredentialStatusIssued {
			t.Errorf("credential status = %v, want issued", cred.Status)
		}
	}

	// Re-running issuance mints nothing new and returns the same set
	again, err := svc.IssueForBooking(ctx, booking)
	if err != nil {
		t.Fatalf("second IssueForBooking() error = %v", err)
	}
	if len(again) != 3 {
		t.Fatalf("second run issued = %d, want 3", len(again))
	}
	tokens := make(map[string]struct{})
	for _, cred := range issued {
		tokens[cred.Token] = struct{}{}
	}
	for _, cred := range again {
		if _, ok := tokens[cred.Token]; !ok {
			t.Errorf("second run minted a new token %q", cred.Token)
		}
	}
}

func TestTicketService_IssueForBooking_NotConfirmed(t *testing.T) {
	ctx := context.Background()
	svc := NewTicketService(repository.NewMemoryCredentialRepository(), repository.NewMemoryBookingRepository()).(CredentialIssuer)

	pending := confirmedBooking()
	pending.Status = domain.BookingStatusPending

	if _, err := svc.IssueForBooking(ctx, pending); !errors.Is(err, domain.ErrBookingNotPaid) {
		t.Errorf("IssueForBooking() error = %v, want ErrBookingNotPaid", err)
	}
}

func TestTicketService_GetBookingCredentials(t *testing.T) {
	ctx := context.Background()
	credentialRepo := repository.NewMemoryCredentialRepository()
	bookingRepo := repository.NewMemoryBookingRepository()
	svc := NewTicketService(credentialRepo, bookingRepo)

	booking := confirmedBooking()
	bookingRepo.Create(ctx, booking)

	// No credentials yet: the fetch self-heals by issuing them
	creds, err := svc.GetBookingCredentials(ctx, booking.ID, "user-001")
	if err != nil {
		t.Fatalf("GetBookingCredentials() error = %v", err)
	}
	if len(creds) != 3 {
		t.Errorf("credentials = %d, want 3", len(creds))
	}

	// Ownership is enforced as not-found
	if _, err := svc.GetBookingCredentials(ctx, booking.ID, "user-002"); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Errorf("stranger fetch error = %v, want ErrBookingNotFound", err)
	}
}

func TestTicketService_GetBookingCredentials_PendingBooking(t *testing.T) {
	ctx := context.Background()
	bookingRepo := repository.NewMemoryBookingRepository()
	svc := NewTicketService(repository.NewMemoryCredentialRepository(), bookingRepo)

	booking := confirmedBooking()
	booking.Status = domain.BookingStatusPending
	bookingRepo.Create(ctx, booking)

	if _, err := svc.GetBookingCredentials(ctx, booking.ID, "user-001"); !errors.Is(err, domain.ErrBookingNotPaid) {
		t.Errorf("GetBookingCredentials() error = %v, want ErrBookingNotPaid", err)
	}
}
