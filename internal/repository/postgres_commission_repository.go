package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/pkg/telemetry"
)

// PostgresCommissionRepository implements CommissionRepository using
// PostgreSQL with pgxpool. The unique index on event_id enforces the
// one-record-per-event rule.
type PostgresCommissionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCommissionRepository creates a new PostgresCommissionRepository
func NewPostgresCommissionRepository(pool *pgxpool.Pool) *PostgresCommissionRepository {
	return &PostgresCommissionRepository{pool: pool}
}

const commissionColumns = `
	id, event_id, organizer_id, amount, currency, recorded_by, recorded_at
`

// Create appends a ledger record. A second record for the same event
// is rejected with ErrAlreadyRecorded.
func (r *PostgresCommissionRepository) Create(ctx context.Context, record *domain.CommissionRecord) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.commission.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", record.EventID),
		attribute.Float64("amount", record.Amount),
	)

	query := `
		INSERT INTO commission_records (` + commissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.EventID,
		record.OrganizerID,
		record.Amount,
		record.Currency,
		record.RecordedBy,
		record.RecordedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			span.SetStatus(codes.Error, "already recorded")
			return domain.ErrAlreadyRecorded
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create commission record: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByEventID retrieves the commission record for an event
func (r *PostgresCommissionRepository) GetByEventID(ctx context.Context, eventID string) (*domain.CommissionRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.commission.get_by_event_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `SELECT ` + commissionColumns + ` FROM commission_records WHERE event_id = $1`

	record, err := scanCommissionRow(r.pool.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrCommissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get commission record: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return record, nil
}

// List retrieves ledger records, newest first
func (r *PostgresCommissionRepository) List(ctx context.Context, limit, offset int) ([]*domain.CommissionRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.commission.list")
	defer span.End()

	span.SetAttributes(
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `
		SELECT ` + commissionColumns + `
		FROM commission_records
		ORDER BY recorded_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list commission records: %w", err)
	}
	defer rows.Close()

	var records []*domain.CommissionRecord
	for rows.Next() {
		record, err := scanCommissionRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan commission record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating commission records: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(records)))
	span.SetStatus(codes.Ok, "")
	return records, nil
}

// TotalAmount returns the sum of all recorded commissions
func (r *PostgresCommissionRepository) TotalAmount(ctx context.Context) (float64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.commission.total_amount")
	defer span.End()

	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM commission_records`).Scan(&total)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to sum commission records: %w", err)
	}

	span.SetAttributes(attribute.Float64("total", total))
	span.SetStatus(codes.Ok, "")
	return total, nil
}

func scanCommissionRow(row bookingScanner) (*domain.CommissionRecord, error) {
	record := &domain.CommissionRecord{}
	err := row.Scan(
		&record.ID,
		&record.EventID,
		&record.OrganizerID,
		&record.Amount,
		&record.Currency,
		&record.RecordedBy,
		&record.RecordedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Ensure PostgresCommissionRepository implements CommissionRepository
var _ CommissionRepository = (*PostgresCommissionRepository)(nil)
