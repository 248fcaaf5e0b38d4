package di

import (
	"github.com/kasi0403/Eventify/internal/handler"
	"github.com/kasi0403/Eventify/internal/repository"
	"github.com/kasi0403/Eventify/internal/service"
	"github.com/kasi0403/Eventify/internal/worker"
	"github.com/kasi0403/Eventify/pkg/config"
	"github.com/kasi0403/Eventify/pkg/database"
	"github.com/kasi0403/Eventify/pkg/middleware"
	"github.com/kasi0403/Eventify/pkg/redis"
)

// Container holds all dependencies for the ticketing core
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	EventRepo      repository.EventRepository
	BookingRepo    repository.BookingRepository
	InventoryRepo  repository.InventoryRepository
	CredentialRepo repository.CredentialRepository
	CommissionRepo repository.CommissionRepository
	AdminRepo      repository.AdminRepository
	Attendance     repository.AttendanceCounter

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	EventService      service.EventService
	BookingService    service.BookingService
	TicketService     service.TicketService
	CheckinService    service.CheckinService
	CommissionService service.CommissionService
	AuthService       service.AuthService

	// Handlers
	HealthHandler     *handler.HealthHandler
	EventHandler      *handler.EventHandler
	BookingHandler    *handler.BookingHandler
	TicketHandler     *handler.TicketHandler
	CheckinHandler    *handler.CheckinHandler
	CommissionHandler *handler.CommissionHandler
	WebhookHandler    *handler.WebhookHandler
	AuthHandler       *handler.AuthHandler

	// Workers
	ExpiryWorker *worker.ExpiryWorker
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config         *config.Config
	DB             *database.PostgresDB
	Redis          *redis.Client
	EventPublisher service.EventPublisher
	AuthConfig     *middleware.AuthConfig
}

// NewContainer creates a new dependency injection container. A nil DB or
// Redis falls back to in-memory implementations for local development.
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		EventPublisher: cfg.EventPublisher,
	}
	if c.EventPublisher == nil {
		c.EventPublisher = service.NewNoOpEventPublisher()
	}

	// Repositories
	if cfg.DB != nil {
		pool := cfg.DB.Pool()
		c.EventRepo = repository.NewPostgresEventRepository(pool)
		c.BookingRepo = repository.NewPostgresBookingRepository(pool)
		c.CredentialRepo = repository.NewPostgresCredentialRepository(pool)
		c.CommissionRepo = repository.NewPostgresCommissionRepository(pool)
		c.AdminRepo = repository.NewPostgresAdminRepository(pool)
	} else {
		c.EventRepo = repository.NewMemoryEventRepository()
		c.BookingRepo = repository.NewMemoryBookingRepository()
		c.CredentialRepo = repository.NewMemoryCredentialRepository()
		c.CommissionRepo = repository.NewMemoryCommissionRepository()
		c.AdminRepo = repository.NewMemoryAdminRepository()
	}
	if cfg.Redis != nil {
		c.InventoryRepo = repository.NewRedisInventoryRepository(cfg.Redis)
		c.Attendance = repository.NewRedisAttendanceCounter(cfg.Redis)
	} else {
		c.InventoryRepo = repository.NewMemoryInventoryRepository()
		c.Attendance = repository.NewMemoryAttendanceCounter()
	}

	booking := cfg.Config.Booking

	// Services. The ticket service doubles as the credential issuer for
	// the booking flow.
	c.TicketService = service.NewTicketService(c.CredentialRepo, c.BookingRepo)
	issuer := c.TicketService.(service.CredentialIssuer)

	c.EventService = service.NewEventService(c.EventRepo, c.InventoryRepo)
	c.BookingService = service.NewBookingService(
		c.BookingRepo,
		c.EventRepo,
		c.InventoryRepo,
		issuer,
		c.EventPublisher,
		&service.BookingServiceConfig{
			ReservationTTL:  booking.ReservationTTL,
			ServiceFeeRate:  booking.ServiceFeeRate,
			DefaultCurrency: booking.DefaultCurrency,
		},
	)
	c.CheckinService = service.NewCheckinService(c.CredentialRepo, c.Attendance, c.EventPublisher)
	c.CommissionService = service.NewCommissionService(c.CommissionRepo, c.EventRepo, booking.DefaultCurrency)
	c.AuthService = service.NewAuthService(c.AdminRepo, cfg.AuthConfig, cfg.Config.JWT.AccessTokenTTL)

	// Handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)
	c.TicketHandler = handler.NewTicketHandler(c.TicketService)
	c.CheckinHandler = handler.NewCheckinHandler(c.CheckinService)
	c.CommissionHandler = handler.NewCommissionHandler(c.CommissionService)
	c.WebhookHandler = handler.NewWebhookHandler(c.BookingService)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)

	// Workers
	c.ExpiryWorker = worker.NewExpiryWorker(c.BookingService, &worker.ExpiryWorkerConfig{
		SweepInterval: booking.SweepInterval,
		BatchSize:     booking.SweepBatchSize,
	})

	return c
}
