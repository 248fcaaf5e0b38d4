package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/pkg/telemetry"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
// with pgxpool. Categories are stored as a JSONB column; the durable
// available counts on the record trail the live inventory ledger and
// are reconciled through AdjustSold.
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventColumns = `
	id, organizer_id, name, description, venue, starts_at, categories,
	status, commission_paid, featured, attendance, created_at, updated_at
`

// Create creates a new event record
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("organizer_id", event.OrganizerID),
	)

	categories, err := json.Marshal(event.Categories)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.pool.Exec(ctx, query,
		event.ID,
		event.OrganizerID,
		event.Name,
		nullString(event.Description),
		nullString(event.Venue),
		event.StartsAt,
		categories,
		event.Status.String(),
		event.CommissionPaid,
		event.Featured,
		event.Attendance,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an event by its ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEventRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// Update updates an existing event
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID))

	categories, err := json.Marshal(event.Categories)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	query := `
		UPDATE events SET
			name = $2,
			description = $3,
			venue = $4,
			starts_at = $5,
			categories = $6,
			status = $7,
			commission_paid = $8,
			featured = $9,
			attendance = $10,
			updated_at = $11
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Name,
		nullString(event.Description),
		nullString(event.Venue),
		event.StartsAt,
		categories,
		event.Status.String(),
		event.CommissionPaid,
		event.Featured,
		event.Attendance,
		time.Now(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// List retrieves events, newest first. Featured events sort ahead of
// the rest so paid listings surface on top.
func (r *PostgresEventRepository) List(ctx context.Context, featuredOnly bool, limit, offset int) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list")
	defer span.End()

	span.SetAttributes(
		attribute.Bool("featured_only", featuredOnly),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = 'active' AND ($1 = false OR featured = true)
		ORDER BY featured DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, featuredOnly, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// ListByOrganizer retrieves events created by one organizer
func (r *PostgresEventRepository) ListByOrganizer(ctx context.Context, organizerID string, limit, offset int) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list_by_organizer")
	defer span.End()

	span.SetAttributes(
		attribute.String("organizer_id", organizerID),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, organizerID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list events by organizer: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// AdjustSold moves units between the available and sold columns of the
// durable category record. Positive delta records a sale.
func (r *PostgresEventRepository) AdjustSold(ctx context.Context, eventID, category string, delta int) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.adjust_sold")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("category", category),
		attribute.Int("delta", delta),
	)

	// The JSONB array is rewritten under row lock so concurrent
	// adjustments to different categories of the same event serialize
	// instead of clobbering each other.
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT categories FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to lock event: %w", err)
	}

	var categories []domain.TicketCategory
	if err := json.Unmarshal(raw, &categories); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to unmarshal categories: %w", err)
	}

	found := false
	for i := range categories {
		if categories[i].Name != category {
			continue
		}
		next := categories[i].Available - delta
		if next < 0 || next > categories[i].Capacity {
			span.SetStatus(codes.Error, "adjustment out of range")
			return domain.ErrInsufficientInventory
		}
		categories[i].Available = next
		found = true
		break
	}
	if !found {
		span.SetStatus(codes.Error, "category not found")
		return domain.ErrCategoryNotFound
	}

	updated, err := json.Marshal(categories)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE events SET categories = $2, updated_at = $3 WHERE id = $1`, eventID, updated, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update categories: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func scanEventRow(row bookingScanner) (*domain.Event, error) {
	event := &domain.Event{}
	var (
		categories  []byte
		status      string
		description *string
		venue       *string
	)

	err := row.Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Name,
		&description,
		&venue,
		&event.StartsAt,
		&categories,
		&status,
		&event.CommissionPaid,
		&event.Featured,
		&event.Attendance,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(categories, &event.Categories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}

	event.Status = domain.EventStatus(status)
	if description != nil {
		event.Description = *description
	}
	if venue != nil {
		event.Venue = *venue
	}

	return event, nil
}

func collectEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var events []*domain.Event
	for rows.Next() {
		event, err := scanEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// Ensure PostgresEventRepository implements EventRepository
var _ EventRepository = (*PostgresEventRepository)(nil)
