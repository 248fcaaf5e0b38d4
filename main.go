package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kasi0403/Eventify/internal/di"
	"github.com/kasi0403/Eventify/internal/metrics"
	"github.com/kasi0403/Eventify/internal/service"
	"github.com/kasi0403/Eventify/pkg/config"
	"github.com/kasi0403/Eventify/pkg/database"
	"github.com/kasi0403/Eventify/pkg/logger"
	"github.com/kasi0403/Eventify/pkg/middleware"
	pkgredis "github.com/kasi0403/Eventify/pkg/redis"
	"github.com/kasi0403/Eventify/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Eventify core...")

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed, continuing without traces: %v", err))
	}
	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	// Initialize database connection. The core keeps running on memory
	// stores when Postgres is unreachable so local development works
	// without infra.
	var db *database.PostgresDB
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err = database.NewPostgres(ctx, dbCfg)
	if err != nil {
		if cfg.IsProduction() {
			appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
		}
		appLog.Warn(fmt.Sprintf("Database connection failed, using memory stores: %v", err))
		db = nil
	} else {
		defer db.Close()
		appLog.Info("Database connected")
	}

	// Initialize Redis connection
	var redisClient *pkgredis.Client
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
	redisClient, err = pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		if cfg.IsProduction() {
			appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
		}
		appLog.Warn(fmt.Sprintf("Redis connection failed, using memory ledger: %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info("Redis connected")
	}

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher
	eventPublisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		ServiceName: cfg.App.Name,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		eventPublisher = service.NewNoOpEventPublisher()
	} else {
		appLog.Info("Kafka event publisher connected")
	}
	defer eventPublisher.Close()

	authCfg := &middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		Config:         cfg,
		DB:             db,
		Redis:          redisClient,
		EventPublisher: eventPublisher,
		AuthConfig:     authCfg,
	})

	// Pre-load Lua scripts into Redis
	if redisClient != nil {
		if loader, ok := container.InventoryRepo.(interface{ LoadScripts(context.Context) error }); ok {
			if err := loader.LoadScripts(ctx); err != nil {
				appLog.Warn(fmt.Sprintf("Failed to pre-load Lua scripts: %v", err))
			} else {
				appLog.Info("Lua scripts pre-loaded into Redis")
			}
		}
	}

	// Seed the platform operator account when configured
	if username := os.Getenv("ADMIN_USERNAME"); username != "" {
		if err := container.AuthService.EnsureAdmin(ctx, username, os.Getenv("ADMIN_PASSWORD")); err != nil {
			appLog.Warn(fmt.Sprintf("Failed to seed admin account: %v", err))
		}
	}

	// Start the payment-window sweeper alongside the API
	if err := container.ExpiryWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start expiry worker: %v", err))
	}
	defer container.ExpiryWorker.Stop()

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Get()))
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	registerRoutes(router, container, authCfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Eventify core listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry shutdown failed: %v", err))
	}

	appLog.Info("Server exited gracefully")
}

func registerRoutes(router *gin.Engine, c *di.Container, authCfg *middleware.AuthConfig) {
	// Health check endpoints
	router.GET("/health", c.HealthHandler.Health)
	router.GET("/ready", c.HealthHandler.Ready)

	v1 := router.Group("/api/v1")

	// Public surface
	v1.GET("/events", c.EventHandler.List)
	v1.GET("/events/:id", c.EventHandler.Get)
	v1.GET("/events/:id/availability/:category", c.EventHandler.Availability)
	v1.POST("/admin/login", c.AuthHandler.Login)

	// Payment collaborator callbacks
	v1.POST("/webhooks/payment", c.WebhookHandler.Payment)

	auth := v1.Group("")
	auth.Use(middleware.Auth(authCfg))

	// Attendee surface
	auth.POST("/bookings", c.BookingHandler.Create)
	auth.GET("/bookings", c.BookingHandler.List)
	auth.GET("/bookings/:id", c.BookingHandler.Get)
	auth.POST("/bookings/:id/cancel", c.BookingHandler.Cancel)
	auth.GET("/bookings/:id/tickets", c.TicketHandler.BookingCredentials)
	auth.GET("/tickets", c.TicketHandler.List)

	// Organizer surface
	organizer := auth.Group("")
	organizer.Use(middleware.RequireRole(middleware.RoleOrganizer, middleware.RoleAdmin))
	organizer.POST("/events", c.EventHandler.Create)
	organizer.POST("/events/:id/cancel", c.EventHandler.Cancel)
	organizer.GET("/organizer/events", c.EventHandler.ListMine)
	organizer.POST("/events/:id/checkin", c.CheckinHandler.CheckIn)
	organizer.GET("/events/:id/attendance", c.CheckinHandler.Attendance)

	// Platform operator surface
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole(middleware.RoleAdmin))
	admin.POST("/events/:id/commission", c.CommissionHandler.Record)
	admin.GET("/events/:id/commission", c.CommissionHandler.GetByEvent)
	admin.GET("/commissions", c.CommissionHandler.List)
	admin.GET("/commissions/summary", c.CommissionHandler.Summary)
}
