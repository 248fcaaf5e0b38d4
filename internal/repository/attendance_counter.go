package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	pkgredis "github.com/kasi0403/Eventify/pkg/redis"
	"github.com/kasi0403/Eventify/pkg/telemetry"
)

// RedisAttendanceCounter implements AttendanceCounter on a Redis
// counter per event. The tally is advisory: it may trail the
// credential records briefly but converges on every increment.
type RedisAttendanceCounter struct {
	client *pkgredis.Client
}

// NewRedisAttendanceCounter creates a new RedisAttendanceCounter
func NewRedisAttendanceCounter(client *pkgredis.Client) *RedisAttendanceCounter {
	return &RedisAttendanceCounter{client: client}
}

func attendanceKey(eventID string) string {
	return fmt.Sprintf("attendance:%s", eventID)
}

// Incr bumps the attendance tally for an event
func (c *RedisAttendanceCounter) Incr(ctx context.Context, eventID string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.attendance.incr")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	count, err := c.client.Incr(ctx, attendanceKey(eventID)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to increment attendance: %w", err)
	}

	span.SetAttributes(attribute.Int64("attendance", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// Get reads the attendance tally for an event
func (c *RedisAttendanceCounter) Get(ctx context.Context, eventID string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.attendance.get")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := c.client.Get(ctx, attendanceKey(eventID)).Result()
	if err != nil {
		if err.Error() == "redis: nil" {
			span.SetStatus(codes.Ok, "no attendance yet")
			return 0, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to get attendance: %w", err)
	}

	count, err := strconv.ParseInt(result, 10, 64)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to parse attendance: %w", err)
	}

	span.SetAttributes(attribute.Int64("attendance", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// Ensure RedisAttendanceCounter implements AttendanceCounter
var _ AttendanceCounter = (*RedisAttendanceCounter)(nil)

// MemoryAttendanceCounter implements AttendanceCounter using in-memory
// storage. This is useful for testing and development.
type MemoryAttendanceCounter struct {
	counts map[string]int64
	mu     sync.Mutex
}

// NewMemoryAttendanceCounter creates a new in-memory attendance counter
func NewMemoryAttendanceCounter() *MemoryAttendanceCounter {
	return &MemoryAttendanceCounter{counts: make(map[string]int64)}
}

// Incr bumps the attendance tally for an event
func (c *MemoryAttendanceCounter) Incr(ctx context.Context, eventID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts[eventID]++
	return c.counts[eventID], nil
}

// Get reads the attendance tally for an event
func (c *MemoryAttendanceCounter) Get(ctx context.Context, eventID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.counts[eventID], nil
}

// Ensure MemoryAttendanceCounter implements AttendanceCounter
var _ AttendanceCounter = (*MemoryAttendanceCounter)(nil)
