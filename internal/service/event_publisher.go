package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/pkg/kafka"
)

// EventPublisher defines the interface for publishing lifecycle events
type EventPublisher interface {
	// PublishBookingCreated publishes a booking created event
	PublishBookingCreated(ctx context.Context, booking *domain.Booking) error

	// PublishBookingConfirmed publishes a booking confirmed event
	PublishBookingConfirmed(ctx context.Context, booking *domain.Booking) error

	// PublishBookingFailed publishes a booking failed event
	PublishBookingFailed(ctx context.Context, booking *domain.Booking) error

	// PublishTicketCheckedIn publishes a check-in event for a credential
	PublishTicketCheckedIn(ctx context.Context, cred *domain.TicketCredential) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "ticketing-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "eventify"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "eventify-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishBookingCreated publishes a booking created event
func (p *KafkaEventPublisher) PublishBookingCreated(ctx context.Context, booking *domain.Booking) error {
	return p.publishBooking(ctx, domain.BookingEventCreated, booking)
}

// PublishBookingConfirmed publishes a booking confirmed event
func (p *KafkaEventPublisher) PublishBookingConfirmed(ctx context.Context, booking *domain.Booking) error {
	return p.publishBooking(ctx, domain.BookingEventConfirmed, booking)
}

// PublishBookingFailed publishes a booking failed event
func (p *KafkaEventPublisher) PublishBookingFailed(ctx context.Context, booking *domain.Booking) error {
	return p.publishBooking(ctx, domain.BookingEventFailed, booking)
}

// PublishTicketCheckedIn publishes a check-in event for a credential
func (p *KafkaEventPublisher) PublishTicketCheckedIn(ctx context.Context, cred *domain.TicketCredential) error {
	eventID := uuid.New().String()
	event := &domain.BookingEvent{
		EventID:    eventID,
		Type:       domain.TicketEventCheckedIn,
		BookingID:  cred.BookingID,
		UserID:     cred.UserID,
		ListingID:  cred.EventID,
		Status:     cred.Status.String(),
		OccurredAt: time.Now(),
		Payload:    cred,
	}
	return p.publish(ctx, event)
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaEventPublisher) publishBooking(ctx context.Context, eventType domain.BookingEventType, booking *domain.Booking) error {
	eventID := uuid.New().String()
	return p.publish(ctx, domain.NewBookingEvent(eventType, booking, eventID))
}

func (p *KafkaEventPublisher) publish(ctx context.Context, event *domain.BookingEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(event.Type),
		"event_id":     event.EventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:   p.topic,
		Key:     []byte(event.Key()),
		Value:   value,
		Headers: headers,
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher for testing
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishBookingCreated is a no-op
func (p *NoOpEventPublisher) PublishBookingCreated(ctx context.Context, booking *domain.Booking) error {
	return nil
}

// PublishBookingConfirmed is a no-op
func (p *NoOpEventPublisher) PublishBookingConfirmed(ctx context.Context, booking *domain.Booking) error {
	return nil
}

// PublishBookingFailed is a no-op
func (p *NoOpEventPublisher) PublishBookingFailed(ctx context.Context, booking *domain.Booking) error {
	return nil
}

// PublishTicketCheckedIn is a no-op
func (p *NoOpEventPublisher) PublishTicketCheckedIn(ctx context.Context, cred *domain.TicketCredential) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}

// Ensure implementations satisfy EventPublisher
var (
	_ EventPublisher = (*KafkaEventPublisher)(nil)
	_ EventPublisher = (*NoOpEventPublisher)(nil)
)
