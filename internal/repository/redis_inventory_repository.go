package repository

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kasi0403/Eventify/internal/domain"
	pkgredis "github.com/kasi0403/Eventify/pkg/redis"
	"github.com/kasi0403/Eventify/pkg/telemetry"
)

//go:embed scripts/reserve_tickets.lua
var reserveTicketsScript string

//go:embed scripts/confirm_reservation.lua
var confirmReservationScript string

//go:embed scripts/release_tickets.lua
var releaseTicketsScript string

//go:embed scripts/revoke_confirmation.lua
var revokeConfirmationScript string

// Script names for caching
const (
	scriptReserveTickets     = "reserve_tickets"
	scriptConfirmReservation = "confirm_reservation"
	scriptReleaseTickets     = "release_tickets"
	scriptRevokeConfirmation = "revoke_confirmation"
)

// RedisInventoryRepository implements InventoryRepository using Redis.
// The availability counter and the reservation hashes live in Redis;
// each state change runs as a single Lua script so concurrent bookings
// never oversell a category.
type RedisInventoryRepository struct {
	client *pkgredis.Client
}

// NewRedisInventoryRepository creates a new RedisInventoryRepository
func NewRedisInventoryRepository(client *pkgredis.Client) *RedisInventoryRepository {
	return &RedisInventoryRepository{client: client}
}

// LoadScripts loads all Lua scripts into Redis
func (r *RedisInventoryRepository) LoadScripts(ctx context.Context) error {
	scripts := map[string]string{
		scriptReserveTickets:     reserveTicketsScript,
		scriptConfirmReservation: confirmReservationScript,
		scriptReleaseTickets:     releaseTicketsScript,
		scriptRevokeConfirmation: revokeConfirmationScript,
	}

	for name, script := range scripts {
		if _, err := r.client.LoadScript(ctx, name, script); err != nil {
			return fmt.Errorf("failed to load script %s: %w", name, err)
		}
	}

	return nil
}

func availabilityKey(eventID, category string) string {
	return fmt.Sprintf("inventory:%s:%s", eventID, category)
}

func reservationKey(token string) string {
	return fmt.Sprintf("reservation:%s", token)
}

// InitCategory seeds the availability counter for a category. An
// already seeded counter is left as is.
func (r *RedisInventoryRepository) InitCategory(ctx context.Context, eventID, category string, capacity int64) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.inventory.init_category")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("category", category),
		attribute.Int64("capacity", capacity),
	)

	key := availabilityKey(eventID, category)
	if err := r.client.SetNX(ctx, key, capacity, 0).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to init category inventory: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Reserve atomically holds quantity units using the reserve Lua script
func (r *RedisInventoryRepository) Reserve(ctx context.Context, params ReserveParams) (*ReserveResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.inventory.reserve")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", params.EventID),
		attribute.String("category", params.Category),
		attribute.Int("quantity", params.Quantity),
	)

	token := uuid.New().String()

	keys := []string{
		availabilityKey(params.EventID, params.Category),
		reservationKey(token),
	}
	args := []interface{}{
		params.Quantity,   // ARGV[1]: quantity
		token,             // ARGV[2]: reservation token
		params.EventID,    // ARGV[3]: event id
		params.Category,   // ARGV[4]: category
		params.TTLSeconds, // ARGV[5]: ttl seconds
		time.Now().Unix(), // ARGV[6]: now
	}

	result := r.client.EvalWithFallback(ctx, scriptReserveTickets, reserveTicketsScript, keys, args...)
	if result.Err() != nil {
		span.RecordError(result.Err())
		span.SetStatus(codes.Error, result.Err().Error())
		return nil, fmt.Errorf("failed to execute reserve_tickets script: %w", result.Err())
	}

	values, err := result.Slice()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to parse script result: %w", err)
	}

	if len(values) < 3 {
		span.SetStatus(codes.Error, "unexpected result length")
		return nil, fmt.Errorf("unexpected script result length: %d", len(values))
	}

	success, _ := toInt64(values[0])
	if success == 1 {
		available, _ := toInt64(values[1])
		span.SetAttributes(
			attribute.String("reservation_token", token),
			attribute.Int64("available", available),
		)
		span.SetStatus(codes.Ok, "")
		return &ReserveResult{
			Success:   true,
			Token:     token,
			Available: available,
		}, nil
	}

	errorCode, _ := values[1].(string)
	errorMessage, _ := values[2].(string)
	span.SetAttributes(attribute.String("error_code", errorCode))
	span.SetStatus(codes.Error, errorCode)
	return &ReserveResult{
		Success:      false,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
	}, nil
}

// Confirm makes a held reservation permanent using the confirm Lua script
func (r *RedisInventoryRepository) Confirm(ctx context.Context, token string) (*ConfirmResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.inventory.confirm")
	defer span.End()

	span.SetAttributes(attribute.String("reservation_token", token))

	resKey := reservationKey(token)

	// The availability key is derived from the hash so the script can
	// report the current pool size alongside the confirmation.
	data, err := r.client.HGetAll(ctx, resKey).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if len(data) == 0 {
		span.SetStatus(codes.Error, "RESERVATION_NOT_FOUND")
		return &ConfirmResult{
			Success:      false,
			ErrorCode:    "RESERVATION_NOT_FOUND",
			ErrorMessage: "reservation does not exist or has expired",
		}, nil
	}

	keys := []string{resKey, availabilityKey(data["event_id"], data["category"])}
	args := []interface{}{time.Now().Unix()}

	result := r.client.EvalWithFallback(ctx, scriptConfirmReservation, confirmReservationScript, keys, args...)
	if result.Err() != nil {
		span.RecordError(result.Err())
		span.SetStatus(codes.Error, result.Err().Error())
		return nil, fmt.Errorf("failed to execute confirm_reservation script: %w", result.Err())
	}

	values, err := result.Slice()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to parse script result: %w", err)
	}

	if len(values) < 3 {
		span.SetStatus(codes.Error, "unexpected result length")
		return nil, fmt.Errorf("unexpected script result length: %d", len(values))
	}

	success, _ := toInt64(values[0])
	if success == 1 {
		available, _ := toInt64(values[1])
		span.SetAttributes(attribute.Int64("available", available))
		span.SetStatus(codes.Ok, "")
		return &ConfirmResult{
			Success:   true,
			Available: available,
		}, nil
	}

	errorCode, _ := values[1].(string)
	errorMessage, _ := values[2].(string)
	span.SetAttributes(attribute.String("error_code", errorCode))
	span.SetStatus(codes.Error, errorCode)
	return &ConfirmResult{
		Success:      false,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
	}, nil
}

// Release returns held units to the pool using the release Lua script
func (r *RedisInventoryRepository) Release(ctx context.Context, token string) (*ReleaseResult, error) {
	return r.releaseWith(ctx, "repo.redis.inventory.release", scriptReleaseTickets, releaseTicketsScript, token)
}

// ReleaseConfirmed hands a confirmed reservation's units back to the
// pool. Only the compensation path of a failed booking calls this.
func (r *RedisInventoryRepository) ReleaseConfirmed(ctx context.Context, token string) (*ReleaseResult, error) {
	return r.releaseWith(ctx, "repo.redis.inventory.release_confirmed", scriptRevokeConfirmation, revokeConfirmationScript, token)
}

func (r *RedisInventoryRepository) releaseWith(ctx context.Context, spanName, scriptName, script, token string) (*ReleaseResult, error) {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	span.SetAttributes(attribute.String("reservation_token", token))

	resKey := reservationKey(token)

	data, err := r.client.HGetAll(ctx, resKey).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if len(data) == 0 {
		// Hash already gone; nothing held, nothing to credit.
		span.SetStatus(codes.Ok, "reservation not found")
		return &ReleaseResult{Success: true, Released: false, Available: -1}, nil
	}

	keys := []string{availabilityKey(data["event_id"], data["category"]), resKey}

	result := r.client.EvalWithFallback(ctx, scriptName, script, keys)
	if result.Err() != nil {
		span.RecordError(result.Err())
		span.SetStatus(codes.Error, result.Err().Error())
		return nil, fmt.Errorf("failed to execute %s script: %w", scriptName, result.Err())
	}

	values, err := result.Slice()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to parse script result: %w", err)
	}

	if len(values) < 3 {
		span.SetStatus(codes.Error, "unexpected result length")
		return nil, fmt.Errorf("unexpected script result length: %d", len(values))
	}

	success, _ := toInt64(values[0])
	if success == 1 {
		released, _ := toInt64(values[1])
		available, _ := toInt64(values[2])
		span.SetAttributes(
			attribute.Bool("released", released == 1),
			attribute.Int64("available", available),
		)
		span.SetStatus(codes.Ok, "")
		return &ReleaseResult{
			Success:   true,
			Released:  released == 1,
			Available: available,
		}, nil
	}

	errorCode, _ := values[1].(string)
	errorMessage, _ := values[2].(string)
	span.SetAttributes(attribute.String("error_code", errorCode))
	span.SetStatus(codes.Error, errorCode)
	return &ReleaseResult{
		Success:      false,
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
	}, nil
}

// GetAvailability returns the current available count for a category
func (r *RedisInventoryRepository) GetAvailability(ctx context.Context, eventID, category string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.inventory.get_availability")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("category", category),
	)

	result, err := r.client.Get(ctx, availabilityKey(eventID, category)).Result()
	if err != nil {
		if err.Error() == "redis: nil" {
			span.SetStatus(codes.Error, "category not found")
			return 0, domain.ErrCategoryNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to get availability: %w", err)
	}

	available, err := strconv.ParseInt(result, 10, 64)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to parse availability: %w", err)
	}

	span.SetAttributes(attribute.Int64("available", available))
	span.SetStatus(codes.Ok, "")
	return available, nil
}

// GetReservation returns the hold behind a token
func (r *RedisInventoryRepository) GetReservation(ctx context.Context, token string) (*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.inventory.get_reservation")
	defer span.End()

	span.SetAttributes(attribute.String("reservation_token", token))

	data, err := r.client.HGetAll(ctx, reservationKey(token)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if len(data) == 0 {
		span.SetStatus(codes.Error, "not found")
		return nil, domain.ErrReservationNotFound
	}

	quantity, _ := strconv.Atoi(data["quantity"])
	expiresAt, _ := strconv.ParseInt(data["expires_at"], 10, 64)
	createdAt, _ := strconv.ParseInt(data["created_at"], 10, 64)

	span.SetStatus(codes.Ok, "")
	return &domain.Reservation{
		Token:     data["token"],
		EventID:   data["event_id"],
		Category:  data["category"],
		Quantity:  quantity,
		Status:    domain.ReservationStatus(data["status"]),
		ExpiresAt: time.Unix(expiresAt, 0),
		CreatedAt: time.Unix(createdAt, 0),
	}, nil
}

// Helper function to convert interface{} to int64
func toInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case float64:
		return int64(val), true
	case string:
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// Ensure RedisInventoryRepository implements InventoryRepository
var _ InventoryRepository = (*RedisInventoryRepository)(nil)
