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

// PostgresAdminRepository implements AdminRepository using PostgreSQL
type PostgresAdminRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAdminRepository creates a new PostgresAdminRepository
func NewPostgresAdminRepository(pool *pgxpool.Pool) *PostgresAdminRepository {
	return &PostgresAdminRepository{pool: pool}
}

// Create creates an admin account
func (r *PostgresAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.admin.create")
	defer span.End()

	span.SetAttributes(attribute.String("username", admin.Username))

	query := `
		INSERT INTO admins (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, admin.ID, admin.Username, admin.PasswordHash, admin.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			span.SetStatus(codes.Error, "duplicate username")
			return domain.ErrInvalidCredentials
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create admin: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByUsername retrieves an admin by username
func (r *PostgresAdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.admin.get_by_username")
	defer span.End()

	span.SetAttributes(attribute.String("username", username))

	query := `SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`

	admin := &domain.Admin{}
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrAdminNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return admin, nil
}

// Ensure PostgresAdminRepository implements AdminRepository
var _ AdminRepository = (*PostgresAdminRepository)(nil)
