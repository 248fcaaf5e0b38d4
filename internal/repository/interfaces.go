package repository

import (
	"context"
	"time"

	"github.com/kasi0403/Eventify/internal/domain"
)

// ReserveParams holds parameters for reserving inventory
type ReserveParams struct {
	EventID    string
	Category   string
	Quantity   int
	TTLSeconds int
}

// ReserveResult holds the outcome of a reserve operation
type ReserveResult struct {
	Success      bool
	Token        string
	Available    int64
	ErrorCode    string
	ErrorMessage string
}

// ConfirmResult holds the outcome of a confirm operation
type ConfirmResult struct {
	Success      bool
	Available    int64
	ErrorCode    string
	ErrorMessage string
}

// ReleaseResult holds the outcome of a release operation
type ReleaseResult struct {
	Success      bool
	Released     bool
	Available    int64
	ErrorCode    string
	ErrorMessage string
}

// InventoryRepository is the ledger of sellable units per event
// category. Reserve, Confirm, and Release are each atomic; available
// never drops below zero and never exceeds the initialized capacity.
type InventoryRepository interface {
	// InitCategory seeds the available pool for a category. Existing
	// pools are left untouched.
	InitCategory(ctx context.Context, eventID, category string, capacity int64) error

	// Reserve places a TTL-bound hold on quantity units and returns an
	// opaque token identifying the hold.
	Reserve(ctx context.Context, params ReserveParams) (*ReserveResult, error)

	// Confirm turns a held reservation into a permanent sale. A
	// lapsed or unknown token yields an error result, never a sale.
	Confirm(ctx context.Context, token string) (*ConfirmResult, error)

	// Release returns a held reservation's units to the pool. Safe to
	// call repeatedly; a token that is gone or already confirmed is
	// reported without double-crediting.
	Release(ctx context.Context, token string) (*ReleaseResult, error)

	// ReleaseConfirmed returns a confirmed reservation's units to the
	// pool. Compensation for a booking that cannot complete after some
	// of its holds confirmed; held or released tokens are left alone.
	ReleaseConfirmed(ctx context.Context, token string) (*ReleaseResult, error)

	// GetAvailability returns the current available count for a category
	GetAvailability(ctx context.Context, eventID, category string) (int64, error)

	// GetReservation returns the hold behind a token, if it still exists
	GetReservation(ctx context.Context, token string) (*domain.Reservation, error)
}

// EventRepository persists event listings
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	List(ctx context.Context, featuredOnly bool, limit, offset int) ([]*domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID string, limit, offset int) ([]*domain.Event, error)

	// AdjustSold moves units between the available and sold columns of
	// the durable record. Positive delta records a sale, negative a
	// return to the pool.
	AdjustSold(ctx context.Context, eventID, category string, delta int) error
}

// BookingRepository persists bookings
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error)

	// ListExpiredPending returns pending bookings whose payment window
	// closed before the cutoff, oldest first.
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error)
}

// CredentialRepository persists ticket credentials
type CredentialRepository interface {
	// CreateIfAbsent stores the credential unless its slot is already
	// filled, in which case the existing credential is returned.
	CreateIfAbsent(ctx context.Context, cred *domain.TicketCredential) (*domain.TicketCredential, error)

	GetByToken(ctx context.Context, token string) (*domain.TicketCredential, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*domain.TicketCredential, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.TicketCredential, error)

	// CheckIn flips the credential from issued to checked_in. The swap
	// is atomic: under concurrent calls exactly one succeeds and the
	// rest get ErrAlreadyCheckedIn.
	CheckIn(ctx context.Context, token string, at time.Time) (*domain.TicketCredential, error)
}

// CommissionRepository persists the commission ledger
type CommissionRepository interface {
	// Create appends a record. A second record for the same event is
	// rejected with ErrAlreadyRecorded.
	Create(ctx context.Context, record *domain.CommissionRecord) error

	GetByEventID(ctx context.Context, eventID string) (*domain.CommissionRecord, error)
	List(ctx context.Context, limit, offset int) ([]*domain.CommissionRecord, error)
	TotalAmount(ctx context.Context) (float64, error)
}

// AdminRepository stores platform operator accounts
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
}

// AttendanceCounter tallies check-ins per event. The count trails the
// credential records and is read for dashboards only.
type AttendanceCounter interface {
	Incr(ctx context.Context, eventID string) (int64, error)
	Get(ctx context.Context, eventID string) (int64, error)
}
