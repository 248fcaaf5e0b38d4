package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kasi0403/Eventify/internal/service"
	"github.com/kasi0403/Eventify/pkg/logger"
)

// ExpiryWorkerConfig contains configuration for the expiry worker
type ExpiryWorkerConfig struct {
	// SweepInterval is the interval between sweeps for lapsed bookings
	SweepInterval time.Duration
	// BatchSize is the number of bookings to process in each sweep
	BatchSize int
}

// DefaultExpiryWorkerConfig returns default configuration
func DefaultExpiryWorkerConfig() *ExpiryWorkerConfig {
	return &ExpiryWorkerConfig{
		SweepInterval: 15 * time.Second,
		BatchSize:     100,
	}
}

// ExpiryWorker periodically fails pending bookings whose payment
// window has closed and returns their holds to the pool.
type ExpiryWorker struct {
	bookingService service.BookingService
	config         *ExpiryWorkerConfig
	log            *logger.Logger
	stopCh         chan struct{}
	wg             sync.WaitGroup
	mu             sync.Mutex
	running        bool

	// Stats
	totalSwept    int64
	lastSweepTime time.Time
	lastSweptNum  int
}

// NewExpiryWorker creates a new expiry worker
func NewExpiryWorker(bookingService service.BookingService, config *ExpiryWorkerConfig) *ExpiryWorker {
	if config == nil {
		config = DefaultExpiryWorkerConfig()
	}
	return &ExpiryWorker{
		bookingService: bookingService,
		config:         config,
		log:            logger.Get(),
		stopCh:         make(chan struct{}),
	}
}

// Start starts the expiry worker
func (w *ExpiryWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("expiry worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting expiry worker",
		zap.Duration("interval", w.config.SweepInterval),
		zap.Int("batch_size", w.config.BatchSize))

	w.wg.Add(1)
	go w.run(ctx)

	return nil
}

// Stop stops the expiry worker
func (w *ExpiryWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping expiry worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Expiry worker stopped")
}

func (w *ExpiryWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	w.mu.Lock()
	w.lastSweepTime = time.Now()
	w.mu.Unlock()

	swept, err := w.bookingService.ExpireBookings(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error("Expiry sweep failed", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.totalSwept += int64(swept)
	w.lastSweptNum = swept
	w.mu.Unlock()

	if swept > 0 {
		w.log.Info("Expiry sweep reclaimed bookings", zap.Int("count", swept))
	}
}

// ExpiryWorkerStats contains worker statistics
type ExpiryWorkerStats struct {
	IsRunning     bool      `json:"is_running"`
	TotalSwept    int64     `json:"total_swept"`
	LastSweepTime time.Time `json:"last_sweep_time"`
	LastSweptNum  int       `json:"last_swept_num"`
}

// GetStats returns worker statistics
func (w *ExpiryWorker) GetStats() *ExpiryWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &ExpiryWorkerStats{
		IsRunning:     w.running,
		TotalSwept:    w.totalSwept,
		LastSweepTime: w.lastSweepTime,
		LastSweptNum:  w.lastSweptNum,
	}
}
