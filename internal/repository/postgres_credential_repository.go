package repository

import (
	"context"
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

// PostgresCredentialRepository implements CredentialRepository using
// PostgreSQL with pgxpool. Slot uniqueness and the issued->checked_in
// swap both lean on the database: a unique index over (booking_id,
// category, unit_index) and a conditional UPDATE.
type PostgresCredentialRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCredentialRepository creates a new PostgresCredentialRepository
func NewPostgresCredentialRepository(pool *pgxpool.Pool) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{pool: pool}
}

const credentialColumns = `
	id, token, booking_id, event_id, user_id, category, unit_index,
	status, issued_at, checked_in_at
`

// CreateIfAbsent stores the credential unless its slot is already
// filled, in which case the existing credential is returned.
func (r *PostgresCredentialRepository) CreateIfAbsent(ctx context.Context, cred *domain.TicketCredential) (*domain.TicketCredential, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.credential.create_if_absent")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", cred.BookingID),
		attribute.String("category", cred.Category),
		attribute.Int("unit_index", cred.UnitIndex),
	)

	query := `
		INSERT INTO ticket_credentials (` + credentialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (booking_id, category, unit_index) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query,
		cred.ID,
		cred.Token,
		cred.BookingID,
		cred.EventID,
		cred.UserID,
		cred.Category,
		cred.UnitIndex,
		cred.Status.String(),
		cred.IssuedAt,
		cred.CheckedInAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	if result.RowsAffected() > 0 {
		span.SetStatus(codes.Ok, "")
		cp := *cred
		return &cp, nil
	}

	// Slot already filled by an earlier issuance; hand back the winner.
	query = `
		SELECT ` + credentialColumns + `
		FROM ticket_credentials
		WHERE booking_id = $1 AND category = $2 AND unit_index = $3
	`
	existing, err := scanCredentialRow(r.pool.QueryRow(ctx, query, cred.BookingID, cred.Category, cred.UnitIndex))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get existing credential: %w", err)
	}

	span.SetAttributes(attribute.Bool("existing", true))
	span.SetStatus(codes.Ok, "")
	return existing, nil
}

// GetByToken retrieves a credential by its admission token
func (r *PostgresCredentialRepository) GetByToken(ctx context.Context, token string) (*domain.TicketCredential, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.credential.get_by_token")
	defer span.End()

	query := `SELECT ` + credentialColumns + ` FROM ticket_credentials WHERE token = $1`

	cred, err := scanCredentialRow(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrCredentialNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return cred, nil
}

// ListByBooking retrieves all credentials issued for a booking
func (r *PostgresCredentialRepository) ListByBooking(ctx context.Context, bookingID string) ([]*domain.TicketCredential, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.credential.list_by_booking")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	query := `
		SELECT ` + credentialColumns + `
		FROM ticket_credentials
		WHERE booking_id = $1
		ORDER BY category, unit_index
	`

	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list credentials by booking: %w", err)
	}
	defer rows.Close()

	creds, err := collectCredentials(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(creds)))
	span.SetStatus(codes.Ok, "")
	return creds, nil
}

// ListByUser retrieves credentials held by a user, newest first
func (r *PostgresCredentialRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.TicketCredential, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.credential.list_by_user")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `
		SELECT ` + credentialColumns + `
		FROM ticket_credentials
		WHERE user_id = $1
		ORDER BY issued_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list credentials by user: %w", err)
	}
	defer rows.Close()

	creds, err := collectCredentials(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(creds)))
	span.SetStatus(codes.Ok, "")
	return creds, nil
}

// CheckIn flips the credential from issued to checked_in. The
// conditional UPDATE makes the swap atomic: under concurrent calls
// exactly one succeeds.
func (r *PostgresCredentialRepository) CheckIn(ctx context.Context, token string, at time.Time) (*domain.TicketCredential, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.credential.check_in")
	defer span.End()

	query := `
		UPDATE ticket_credentials SET
			status = $2,
			checked_in_at = $3
		WHERE token = $1 AND status = $4
		RETURNING ` + credentialColumns

	cred, err := scanCredentialRow(r.pool.QueryRow(ctx, query,
		token,
		domain.CredentialStatusCheckedIn.String(),
		at,
		domain.CredentialStatusIssued.String(),
	))
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return cred, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to check in credential: %w", err)
	}

	// No row updated: either the token is unknown or someone got
	// there first.
	var status string
	err = r.pool.QueryRow(ctx, `SELECT status FROM ticket_credentials WHERE token = $1`, token).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrCredentialNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to check credential status: %w", err)
	}

	span.SetStatus(codes.Error, "already checked in")
	return nil, domain.ErrAlreadyCheckedIn
}

func scanCredentialRow(row bookingScanner) (*domain.TicketCredential, error) {
	cred := &domain.TicketCredential{}
	var status string

	err := row.Scan(
		&cred.ID,
		&cred.Token,
		&cred.BookingID,
		&cred.EventID,
		&cred.UserID,
		&cred.Category,
		&cred.UnitIndex,
		&status,
		&cred.IssuedAt,
		&cred.CheckedInAt,
	)
	if err != nil {
		return nil, err
	}

	cred.Status = domain.CredentialStatus(status)
	return cred, nil
}

func collectCredentials(rows pgx.Rows) ([]*domain.TicketCredential, error) {
	var creds []*domain.TicketCredential
	for rows.Next() {
		cred, err := scanCredentialRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credentials: %w", err)
	}
	return creds, nil
}

// Ensure PostgresCredentialRepository implements CredentialRepository
var _ CredentialRepository = (*PostgresCredentialRepository)(nil)
