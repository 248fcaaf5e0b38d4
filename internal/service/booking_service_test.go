package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/internal/dto"
	"github.com/kasi0403/Eventify/internal/repository"
)

// MockBookingRepository is a mock implementation of BookingRepository
type MockBookingRepository struct {
	CreateFunc             func(ctx context.Context, booking *domain.Booking) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.Booking, error)
	UpdateFunc             func(ctx context.Context, booking *domain.Booking) error
	ListByUserFunc         func(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error)
	ListExpiredPendingFunc func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error)
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, booking)
	}
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, booking)
	}
	return nil
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error) {
	if m.ListExpiredPendingFunc != nil {
		return m.ListExpiredPendingFunc(ctx, cutoff, limit)
	}
	return []*domain.Booking{}, nil
}

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	CreateFunc          func(ctx context.Context, event *domain.Event) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.Event, error)
	UpdateFunc          func(ctx context.Context, event *domain.Event) error
	ListFunc            func(ctx context.Context, featuredOnly bool, limit, offset int) ([]*domain.Event, error)
	ListByOrganizerFunc func(ctx context.Context, organizerID string, limit, offset int) ([]*domain.Event, error)
	AdjustSoldFunc      func(ctx context.Context, eventID, category string, delta int) error
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) List(ctx context.Context, featuredOnly bool, limit, offset int) ([]*domain.Event, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, featuredOnly, limit, offset)
	}
	return []*domain.Event{}, nil
}

func (m *MockEventRepository) ListByOrganizer(ctx context.Context, organizerID string, limit, offset int) ([]*domain.Event, error) {
	if m.ListByOrganizerFunc != nil {
		return m.ListByOrganizerFunc(ctx, organizerID, limit, offset)
	}
	return []*domain.Event{}, nil
}

func (m *MockEventRepository) AdjustSold(ctx context.Context, eventID, category string, delta int) error {
	if m.AdjustSoldFunc != nil {
		return m.AdjustSoldFunc(ctx, eventID, category, delta)
	}
	return nil
}

func testEvent() *domain.Event {
	event, _ := domain.NewEvent("event-001", "org-001", "Launch Night", time.Now().Add(48*time.Hour), []domain.TicketCategory{
		{Name: "general", Price: 500.00, Capacity: 10},
		{Name: "vip", Price: 1500.00, Capacity: 2},
	})
	return event
}

// newTestStack wires the booking service to in-memory stores with a
// seeded event, so tests exercise the real reserve/confirm/release
// semantics end to end.
func newTestStack(t *testing.T, cfg *BookingServiceConfig) (BookingService, *repository.MemoryBookingRepository, *repository.MemoryInventoryRepository, *repository.MemoryCredentialRepository) {
	t.Helper()
	ctx := context.Background()

	eventRepo := repository.NewMemoryEventRepository()
	bookingRepo := repository.NewMemoryBookingRepository()
	inventoryRepo := repository.NewMemoryInventoryRepository()
	credentialRepo := repository.NewMemoryCredentialRepository()

	event := testEvent()
	if err := eventRepo.Create(ctx, event); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	for _, c := range event.Categories {
		if err := inventoryRepo.InitCategory(ctx, event.ID, c.Name, int64(c.Capacity)); err != nil {
			t.Fatalf("seed inventory: %v", err)
		}
	}

	issuer := NewTicketService(credentialRepo, bookingRepo).(CredentialIssuer)
	svc := NewBookingService(bookingRepo, eventRepo, inventoryRepo, issuer, NewNoOpEventPublisher(), cfg)
	return svc, bookingRepo, inventoryRepo, credentialRepo
}

func TestBookingService_CreateBooking(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		req     *dto.CreateBookingRequest
		wantErr error
		check   func(t *testing.T, resp *dto.BookingResponse, inv *repository.MemoryInventoryRepository)
	}{
		{
			name:   "successful multi-category booking",
			userID: "user-001",
			req: &dto.CreateBookingRequest{
				EventID: "event-001",
				Items: []dto.BookingItemRequest{
					{Category: "general", Quantity: 2},
					{Category: "vip", Quantity: 1},
				},
			},
			check: func(t *testing.T, resp *dto.BookingResponse, inv *repository.MemoryInventoryRepository) {
				if resp.Status != "pending" {
					t.Errorf("Status = %v, want pending", resp.Status)
				}
				if resp.Subtotal != 2500.00 || resp.ServiceFee != 250.00 || resp.TotalAmount != 2750.00 {
					t.Errorf("totals = %v/%v/%v, want 2500/250/2750", resp.Subtotal, resp.ServiceFee, resp.TotalAmount)
				}
				general, _ := inv.GetAvailability(context.Background(), "event-001", "general")
				vip, _ := inv.GetAvailability(context.Background(), "event-001", "vip")
				if general != 8 || vip != 1 {
					t.Errorf("availability = %d/%d, want 8/1", general, vip)
				}
			},
		},
		{
			name:   "insufficient inventory unwinds earlier holds",
			userID: "user-001",
			req: &dto.CreateBookingRequest{
				EventID: "event-001",
				Items: []dto.BookingItemRequest{
					{Category: "general", Quantity: 2},
					{Category: "vip", Quantity: 5}, // only 2 exist
				},
			},
			wantErr: domain.ErrInsufficientInventory,
			check: func(t *testing.T, _ *dto.BookingResponse, inv *repository.MemoryInventoryRepository) {
				general, _ := inv.GetAvailability(context.Background(), "event-001", "general")
				vip, _ := inv.GetAvailability(context.Background(), "event-001", "vip")
				if general != 10 || vip != 2 {
					t.Errorf("availability = %d/%d after unwind, want 10/2", general, vip)
				}
			},
		},
		{
			name:   "unknown category",
			userID: "user-001",
			req: &dto.CreateBookingRequest{
				EventID: "event-001",
				Items:   []dto.BookingItemRequest{{Category: "backstage", Quantity: 1}},
			},
			wantErr: domain.ErrCategoryNotFound,
		},
		{
			name:   "duplicate category lines",
			userID: "user-001",
			req: &dto.CreateBookingRequest{
				EventID: "event-001",
				Items: []dto.BookingItemRequest{
					{Category: "general", Quantity: 1},
					{Category: "general", Quantity: 1},
				},
			},
			wantErr: domain.ErrDuplicateCategory,
		},
		{
			name:   "quantity above cap",
			userID: "user-001",
			req: &dto.CreateBookingRequest{
				EventID: "event-001",
				Items:   []dto.BookingItemRequest{{Category: "general", Quantity: 11}},
			},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:    "missing user ID",
			userID:  "",
			req:     &dto.CreateBookingRequest{EventID: "event-001", Items: []dto.BookingItemRequest{{Category: "general", Quantity: 1}}},
			wantErr: domain.ErrInvalidUserID,
		},
		{
			name:    "empty selection",
			userID:  "user-001",
			req:     &dto.CreateBookingRequest{EventID: "event-001"},
			wantErr: domain.ErrEmptySelection,
		},
		{
			name:    "unknown event",
			userID:  "user-001",
			req:     &dto.CreateBookingRequest{EventID: "event-999", Items: []dto.BookingItemRequest{{Category: "general", Quantity: 1}}},
			wantErr: domain.ErrEventNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, inv, _ := newTestStack(t, nil)

			resp, err := svc.CreateBooking(context.Background(), tt.userID, tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreateBooking() error = %v, wantErr %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("CreateBooking() unexpected error = %v", err)
			}
			if tt.check != nil {
				tt.check(t, resp, inv)
			}
		})
	}
}

func TestBookingService_CreateBooking_CancelledEvent(t *testing.T) {
	ctx := context.Background()
	eventRepo := repository.NewMemoryEventRepository()
	inventoryRepo := repository.NewMemoryInventoryRepository()

	event := testEvent()
	event.Cancel()
	eventRepo.Create(ctx, event)

	svc := NewBookingService(repository.NewMemoryBookingRepository(), eventRepo, inventoryRepo, nil, nil, nil)

	_, err := svc.CreateBooking(ctx, "user-001", &dto.CreateBookingRequest{
		EventID: "event-001",
		Items:   []dto.BookingItemRequest{{Category: "general", Quantity: 1}},
	})
	if !errors.Is(err, domain.ErrEventCancelled) {
		t.Errorf("CreateBooking() error = %v, want ErrEventCancelled", err)
	}
}

func TestBookingService_OnPaymentConfirmed(t *testing.T) {
	ctx := context.Background()
	svc, _, inv, creds := newTestStack(t, nil)

	booking, err := svc.CreateBooking(ctx, "user-001", &dto.CreateBookingRequest{
		EventID: "event-001",
		Items: []dto.BookingItemRequest{
			{Category: "general", Quantity: 2},
			{Category: "vip", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	confirmed, err := svc.OnPaymentConfirmed(ctx, booking.ID, "pay-123")
	if err != nil {
		t.Fatalf("OnPaymentConfirmed() error = %v", err)
	}
	if confirmed.Status != "confirmed" {
		t.Errorf("Status = %v, want confirmed", confirmed.Status)
	}

	// Availability stays down: the units are sold, not returned
	general, _ := inv.GetAvailability(ctx, "event-001", "general")
	if general != 8 {
		t.Errorf("general availability = %d, want 8", general)
	}

	// One credential per purchased unit
	issued, err := creds.ListByBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("ListByBooking() error = %v", err)
	}
	if len(issued) != 3 {
		t.Errorf("credentials issued = %d, want 3", len(issued))
	}

	// A retried webhook is answered idempotently
	again, err := svc.OnPaymentConfirmed(ctx, booking.ID, "pay-123")
	if err != nil {
		t.Fatalf("retried OnPaymentConfirmed() error = %v", err)
	}
	if again.Status != "confirmed" {
		t.Errorf("retry Status = %v, want confirmed", again.Status)
	}
	issued, _ = creds.ListByBooking(ctx, booking.ID)
	if len(issued) != 3 {
		t.Errorf("credentials after retry = %d, want 3", len(issued))
	}
}

func TestBookingService_OnPaymentConfirmed_ExpiredHold(t *testing.T) {
	ctx := context.Background()
	svc, _, inv, _ := newTestStack(t, &BookingServiceConfig{ReservationTTL: time.Millisecond})

	booking, err := svc.CreateBooking(ctx, "user-001", &dto.CreateBookingRequest{
		EventID: "event-001",
		Items:   []dto.BookingItemRequest{{Category: "general", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	// Payment settled after the window closed: the booking fails and
	// the units go back to the pool.
	if _, err := svc.OnPaymentConfirmed(ctx, booking.ID, "pay-123"); !errors.Is(err, domain.ErrBookingExpired) {
		t.Fatalf("OnPaymentConfirmed() error = %v, want ErrBookingExpired", err)
	}

	failed, err := svc.GetBooking(ctx, booking.ID, "user-001")
	if err != nil {
		t.Fatalf("GetBooking() error = %v", err)
	}
	if failed.Status != "failed" {
		t.Errorf("Status = %v, want failed", failed.Status)
	}
	general, _ := inv.GetAvailability(ctx, "event-001", "general")
	if general != 10 {
		t.Errorf("availability = %d, want 10", general)
	}
}

func TestBookingService_OnPaymentFailed(t *testing.T) {
	ctx := context.Background()
	svc, _, inv, _ := newTestStack(t, nil)

	booking, err := svc.CreateBooking(ctx, "user-001", &dto.CreateBookingRequest{
		EventID: "event-001",
		Items:   []dto.BookingItemRequest{{Category: "general", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	failed, err := svc.OnPaymentFailed(ctx, booking.ID, "card declined")
	if err != nil {
		t.Fatalf("OnPaymentFailed() error = %v", err)
	}
	if failed.Status != "failed" || failed.StatusReason != "card declined" {
		t.Errorf("Status = %v (%q), want failed (card declined)", failed.Status, failed.StatusReason)
	}

	general, _ := inv.GetAvailability(ctx, "event-001", "general")
	if general != 10 {
		t.Errorf("availability = %d after failure, want 10", general)
	}

	// Retried failure webhook is idempotent
	again, err := svc.OnPaymentFailed(ctx, booking.ID, "card declined")
	if err != nil {
		t.Fatalf("retried OnPaymentFailed() error = %v", err)
	}
	if again.Status != "failed" {
		t.Errorf("retry Status = %v, want failed", again.Status)
	}
	general, _ = inv.GetAvailability(ctx, "event-001", "general")
	if general != 10 {
		t.Errorf("availability = %d after retry, want 10 (no double credit)", general)
	}

	// A failed booking cannot be confirmed afterwards
	if _, err := svc.OnPaymentConfirmed(ctx, booking.ID, "pay-123"); !errors.Is(err, domain.ErrBookingNotPending) {
		t.Errorf("OnPaymentConfirmed() after failure error = %v, want ErrBookingNotPending", err)
	}
}

func TestBookingService_GetBooking_Ownership(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestStack(t, nil)

	booking, err := svc.CreateBooking(ctx, "user-001", &dto.CreateBookingRequest{
		EventID: "event-001",
		Items:   []dto.BookingItemRequest{{Category: "general", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	if _, err := svc.GetBooking(ctx, booking.ID, "user-001"); err != nil {
		t.Errorf("GetBooking() by owner error = %v", err)
	}

	// Another user's lookup reads as not found, not forbidden
	if _, err := svc.GetBooking(ctx, booking.ID, "user-002"); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Errorf("GetBooking() by stranger error = %v, want ErrBookingNotFound", err)
	}
}

func TestBookingService_ExpireBookings(t *testing.T) {
	ctx := context.Background()
	svc, _, inv, _ := newTestStack(t, &BookingServiceConfig{ReservationTTL: time.Millisecond})

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateBooking(ctx, "user-001", &dto.CreateBookingRequest{
			EventID: "event-001",
			Items:   []dto.BookingItemRequest{{Category: "general", Quantity: 2}},
		}); err != nil {
			t.Fatalf("CreateBooking() error = %v", err)
		}
	}
	general, _ := inv.GetAvailability(ctx, "event-001", "general")
	if general != 4 {
		t.Fatalf("availability = %d before sweep, want 4", general)
	}

	time.Sleep(10 * time.Millisecond)

	swept, err := svc.ExpireBookings(ctx, 100)
	if err != nil {
		t.Fatalf("ExpireBookings() error = %v", err)
	}
	if swept != 3 {
		t.Errorf("swept = %d, want 3", swept)
	}
	general, _ = inv.GetAvailability(ctx, "event-001", "general")
	if general != 10 {
		t.Errorf("availability = %d after sweep, want 10", general)
	}

	// Nothing left to sweep
	swept, err = svc.ExpireBookings(ctx, 100)
	if err != nil {
		t.Fatalf("second ExpireBookings() error = %v", err)
	}
	if swept != 0 {
		t.Errorf("second sweep = %d, want 0", swept)
	}
}

func TestBookingService_ExpireBookings_SkipsConfirmed(t *testing.T) {
	ctx := context.Background()
	svc, bookingRepo, inv, _ := newTestStack(t, nil)

	booking, err := svc.CreateBooking(ctx, "user-001", &dto.CreateBookingRequest{
		EventID: "event-001",
		Items:   []dto.BookingItemRequest{{Category: "general", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	if _, err := svc.OnPaymentConfirmed(ctx, booking.ID, "pay-123"); err != nil {
		t.Fatalf("OnPaymentConfirmed() error = %v", err)
	}

	// Push the window into the past; the sweep must still leave the
	// confirmed booking and its sold units alone.
	stored, err := bookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	stored.ExpiresAt = time.Now().Add(-time.Minute)
	if err := bookingRepo.Update(ctx, stored); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	swept, err := svc.ExpireBookings(ctx, 100)
	if err != nil {
		t.Fatalf("ExpireBookings() error = %v", err)
	}
	if swept != 0 {
		t.Errorf("swept = %d, want 0", swept)
	}
	general, _ := inv.GetAvailability(ctx, "event-001", "general")
	if general != 8 {
		t.Errorf("availability = %d, want 8 (sale intact)", general)
	}
}

func TestBookingService_CreateBooking_StoreFailureUnwinds(t *testing.T) {
	ctx := context.Background()

	eventRepo := &MockEventRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Event, error) {
			return testEvent(), nil
		},
	}
	inventoryRepo := repository.NewMemoryInventoryRepository()
	inventoryRepo.InitCategory(ctx, "event-001", "general", 10)
	inventoryRepo.InitCategory(ctx, "event-001", "vip", 2)

	storeErr := errors.New("insert failed")
	bookingRepo := &MockBookingRepository{
		CreateFunc: func(ctx context.Context, booking *domain.Booking) error {
			return storeErr
		},
	}

	svc := NewBookingService(bookingRepo, eventRepo, inventoryRepo, nil, nil, nil)

	_, err := svc.CreateBooking(ctx, "user-001", &dto.CreateBookingRequest{
		EventID: "event-001",
		Items:   []dto.BookingItemRequest{{Category: "general", Quantity: 4}},
	})
	if !errors.Is(err, storeErr) {
		t.Fatalf("CreateBooking() error = %v, want store failure", err)
	}

	// The holds taken before the failed insert are returned
	general, _ := inventoryRepo.GetAvailability(ctx, "event-001", "general")
	if general != 10 {
		t.Errorf("availability = %d after failed insert, want 10", general)
	}
}

func TestBookingService_CancelBooking(t *testing.T) {
	ctx := context.Background()
	svc, _, inv, _ := newTestStack(t, nil)

	booking, err := svc.CreateBooking(ctx, "user-001", &dto.CreateBookingRequest{
		EventID: "event-001",
		Items:   []dto.BookingItemRequest{{Category: "general", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	// Strangers cannot cancel what they cannot see
	if _, err := svc.CancelBooking(ctx, booking.ID, "user-002"); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Errorf("stranger CancelBooking() error = %v, want ErrBookingNotFound", err)
	}

	cancelled, err := svc.CancelBooking(ctx, booking.ID, "user-001")
	if err != nil {
		t.Fatalf("CancelBooking() error = %v", err)
	}
	if cancelled.Status != "failed" || cancelled.StatusReason != "cancelled by attendee" {
		t.Errorf("Status = %v (%q), want failed (cancelled by attendee)", cancelled.Status, cancelled.StatusReason)
	}
	general, _ := inv.GetAvailability(ctx, "event-001", "general")
	if general != 10 {
		t.Errorf("availability = %d after cancel, want 10", general)
	}

	// Repeated cancel is a no-op
	if _, err := svc.CancelBooking(ctx, booking.ID, "user-001"); err != nil {
		t.Errorf("repeated CancelBooking() error = %v", err)
	}
	general, _ = inv.GetAvailability(ctx, "event-001", "general")
	if general != 10 {
		t.Errorf("availability = %d after repeat, want 10 (no double credit)", general)
	}
}

func TestBookingService_CancelBooking_ConfirmedRefused(t *testing.T) {
	ctx := context.Background()
	svc, _, inv, _ := newTestStack(t, nil)

	booking, err := svc.CreateBooking(ctx, "user-001", &dto.CreateBookingRequest{
		EventID: "event-001",
		Items:   []dto.BookingItemRequest{{Category: "general", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	if _, err := svc.OnPaymentConfirmed(ctx, booking.ID, "pay-123"); err != nil {
		t.Fatalf("OnPaymentConfirmed() error = %v", err)
	}

	if _, err := svc.CancelBooking(ctx, booking.ID, "user-001"); !errors.Is(err, domain.ErrBookingNotPending) {
		t.Errorf("CancelBooking() after confirmation error = %v, want ErrBookingNotPending", err)
	}
	general, _ := inv.GetAvailability(ctx, "event-001", "general")
	if general != 8 {
		t.Errorf("availability = %d, want 8 (sold units stay sold)", general)
	}
}

func TestBookingService_CreateBooking_FailedReserveLeavesRecord(t *testing.T) {
	ctx := context.Background()
	svc, bookingRepo, inv, _ := newTestStack(t, nil)

	_, err := svc.CreateBooking(ctx, "user-001", &dto.CreateBookingRequest{
		EventID: "event-001",
		Items: []dto.BookingItemRequest{
			{Category: "general", Quantity: 2},
			{Category: "vip", Quantity: 3},
		},
	})
	if !errors.Is(err, domain.ErrInsufficientInventory) {
		t.Fatalf("CreateBooking() error = %v, want ErrInsufficientInventory", err)
	}

	general, _ := inv.GetAvailability(ctx, "event-001", "general")
	if general != 10 {
		t.Errorf("availability = %d after unwind, want 10", general)
	}

	// The rejection stays on record as a failed booking
	bookings, err := bookingRepo.ListByUser(ctx, "user-001", 20, 0)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("ListByUser() count = %d, want 1 failed booking", len(bookings))
	}
	if bookings[0].Status != domain.BookingStatusFailed {
		t.Errorf("Status = %v, want failed", bookings[0].Status)
	}
	if bookings[0].StatusReason != domain.ErrInsufficientInventory.Error() {
		t.Errorf("StatusReason = %q, want %q", bookings[0].StatusReason, domain.ErrInsufficientInventory.Error())
	}
}

func TestBookingService_OnPaymentConfirmed_PartialConfirmRevoked(t *testing.T) {
	ctx := context.Background()
	svc, bookingRepo, inv, _ := newTestStack(t, nil)

	booking, err := svc.CreateBooking(ctx, "user-001", &dto.CreateBookingRequest{
		EventID: "event-001",
		Items: []dto.BookingItemRequest{
			{Category: "general", Quantity: 2},
			{Category: "vip", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	// The sweep reclaims the vip hold before payment lands; the general
	// hold is still live and will confirm first.
	stored, err := bookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if _, err := inv.Release(ctx, stored.Items[1].ReservationToken); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	if _, err := svc.OnPaymentConfirmed(ctx, booking.ID, "pay-123"); !errors.Is(err, domain.ErrReservationExpired) {
		t.Fatalf("OnPaymentConfirmed() error = %v, want ErrReservationExpired", err)
	}

	// The general units confirmed mid-flight must be back on sale, not
	// stranded outside both the pool and the sold column.
	general, _ := inv.GetAvailability(ctx, "event-001", "general")
	if general != 10 {
		t.Errorf("general availability = %d, want 10", general)
	}
	vip, _ := inv.GetAvailability(ctx, "event-001", "vip")
	if vip != 2 {
		t.Errorf("vip availability = %d, want 2", vip)
	}

	failed, err := bookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if failed.Status != domain.BookingStatusFailed {
		t.Errorf("Status = %v, want failed", failed.Status)
	}
}
