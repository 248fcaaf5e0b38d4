package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kasi0403/Eventify/pkg/telemetry"
)

var (
	// Inventory counters
	ReservationsHeld     *telemetry.Counter
	ReservationsReleased *telemetry.Counter
	ReservationsExpired  *telemetry.Counter

	// Booking counters
	BookingsCreated   *telemetry.Counter
	BookingsConfirmed *telemetry.Counter
	BookingsFailed    *telemetry.Counter

	// Ticket counters
	CredentialsIssued *telemetry.Counter
	CheckinsAccepted  *telemetry.Counter
	CheckinsRejected  *telemetry.Counter

	// Commission counters
	CommissionsRecorded *telemetry.Counter

	// Error tracking
	ErrorsTotal *telemetry.Counter

	// Histograms
	PaymentWindowDuration *telemetry.Histogram
	RequestDuration       *telemetry.Histogram

	// Gauges
	ActiveHolds *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	ReservationsHeld, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "inventory_reservations_total",
		Description: "Total number of inventory holds placed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReservationsReleased, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "inventory_releases_total",
		Description: "Total number of holds released back to the pool",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReservationsExpired, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "inventory_expirations_total",
		Description: "Total number of holds reclaimed by the expiry sweep",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "bookings_created_total",
		Description: "Total number of bookings created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsConfirmed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "bookings_confirmed_total",
		Description: "Total number of bookings confirmed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "bookings_failed_total",
		Description: "Total number of failed bookings",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CredentialsIssued, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_credentials_issued_total",
		Description: "Total number of ticket credentials issued",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CheckinsAccepted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "checkins_accepted_total",
		Description: "Total number of accepted check-ins",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CheckinsRejected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "checkins_rejected_total",
		Description: "Total number of rejected check-ins by reason",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CommissionsRecorded, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "commissions_recorded_total",
		Description: "Total number of commission ledger entries",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ErrorsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "errors_total",
		Description: "Total number of errors by type and operation",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PaymentWindowDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "booking_payment_window_seconds",
		Description: "Duration from booking creation to payment outcome",
		Unit:        "s",
	}, []float64{1, 5, 10, 30, 60, 120, 300, 600})
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	if err != nil {
		return err
	}

	ActiveHolds, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "inventory_active_holds",
		Description: "Current number of live inventory holds",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordHold records an inventory hold metric
func RecordHold(ctx context.Context, eventID, category string, quantity int) {
	if ReservationsHeld != nil {
		ReservationsHeld.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.String("category", category),
			attribute.Int("quantity", quantity),
		)
	}
	if ActiveHolds != nil {
		ActiveHolds.Inc(ctx)
	}
}

// RecordRelease records a hold release metric
func RecordRelease(ctx context.Context, eventID string, count int64) {
	if ReservationsReleased != nil {
		ReservationsReleased.Add(ctx, count,
			attribute.String("event_id", eventID),
		)
	}
	if ActiveHolds != nil {
		ActiveHolds.Add(ctx, -count)
	}
}

// RecordExpiration records a sweep reclaim metric
func RecordExpiration(ctx context.Context, count int64) {
	if ReservationsExpired != nil {
		ReservationsExpired.Add(ctx, count)
	}
	if ActiveHolds != nil {
		ActiveHolds.Add(ctx, -count)
	}
}

// RecordBookingCreated records a booking creation metric
func RecordBookingCreated(ctx context.Context, eventID string, quantity int) {
	if BookingsCreated != nil {
		BookingsCreated.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.Int("quantity", quantity),
		)
	}
}

// RecordBookingConfirmed records a confirmation metric
func RecordBookingConfirmed(ctx context.Context, eventID string, windowSeconds float64) {
	if BookingsConfirmed != nil {
		BookingsConfirmed.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if PaymentWindowDuration != nil {
		PaymentWindowDuration.Record(ctx, windowSeconds,
			attribute.String("event_id", eventID),
		)
	}
}

// RecordBookingFailed records a failure metric
func RecordBookingFailed(ctx context.Context, eventID, reason string) {
	if BookingsFailed != nil {
		BookingsFailed.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.String("reason", reason),
		)
	}
}

// RecordCredentialsIssued records issued credentials
func RecordCredentialsIssued(ctx context.Context, eventID string, count int64) {
	if CredentialsIssued != nil {
		CredentialsIssued.Add(ctx, count,
			attribute.String("event_id", eventID),
		)
	}
}

// RecordCheckinAccepted records an accepted check-in
func RecordCheckinAccepted(ctx context.Context, eventID string) {
	if CheckinsAccepted != nil {
		CheckinsAccepted.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
}

// RecordCheckinRejected records a rejected check-in by reason
func RecordCheckinRejected(ctx context.Context, eventID, reason string) {
	if CheckinsRejected != nil {
		CheckinsRejected.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.String("reason", reason),
		)
	}
}

// RecordCommission records a commission ledger entry
func RecordCommission(ctx context.Context, eventID string, amount float64) {
	if CommissionsRecorded != nil {
		CommissionsRecorded.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.Float64("amount", amount),
		)
	}
}

// RecordError records an error by type and operation
func RecordError(ctx context.Context, errorType, operation string) {
	if ErrorsTotal != nil {
		ErrorsTotal.Inc(ctx,
			attribute.String("error_type", errorType),
			attribute.String("operation", operation),
		)
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
