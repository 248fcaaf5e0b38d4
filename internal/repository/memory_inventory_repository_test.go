package repository

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryInventoryRepository_Reserve(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInventoryRepository()

	if err := repo.InitCategory(ctx, "event-001", "general", 10); err != nil {
		t.Fatalf("InitCategory() error = %v", err)
	}

	result, err := repo.Reserve(ctx, ReserveParams{
		EventID: "event-001", Category: "general", Quantity: 3, TTLSeconds: 300,
	})
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("Reserve() failed: %s", result.ErrorCode)
	}
	if result.Token == "" {
		t.Error("Reserve() returned empty token")
	}
	if result.Available != 7 {
		t.Errorf("Available = %d, want 7", result.Available)
	}

	// Unknown category
	result, err = repo.Reserve(ctx, ReserveParams{
		EventID: "event-001", Category: "backstage", Quantity: 1, TTLSeconds: 300,
	})
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if result.Success || result.ErrorCode != "CATEGORY_NOT_FOUND" {
		t.Errorf("Reserve() = %+v, want CATEGORY_NOT_FOUND", result)
	}

	// More than remaining
	result, err = repo.Reserve(ctx, ReserveParams{
		EventID: "event-001", Category: "general", Quantity: 8, TTLSeconds: 300,
	})
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if result.Success || result.ErrorCode != "INSUFFICIENT_INVENTORY" {
		t.Errorf("Reserve() = %+v, want INSUFFICIENT_INVENTORY", result)
	}
}

func TestMemoryInventoryRepository_InitCategoryIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInventoryRepository()

	if err := repo.InitCategory(ctx, "event-001", "general", 10); err != nil {
		t.Fatalf("InitCategory() error = %v", err)
	}
	if _, err := repo.Reserve(ctx, ReserveParams{
		EventID: "event-001", Category: "general", Quantity: 4, TTLSeconds: 300,
	}); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	// A second init must not reset the pool
	if err := repo.InitCategory(ctx, "event-001", "general", 10); err != nil {
		t.Fatalf("InitCategory() error = %v", err)
	}
	available, err := repo.GetAvailability(ctx, "event-001", "general")
	if err != nil {
		t.Fatalf("GetAvailability() error = %v", err)
	}
	if available != 6 {
		t.Errorf("available = %d, want 6", available)
	}
}

func TestMemoryInventoryRepository_ConfirmAndRelease(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInventoryRepository()
	repo.InitCategory(ctx, "event-001", "general", 10)

	reserved, _ := repo.Reserve(ctx, ReserveParams{
		EventID: "event-001", Category: "general", Quantity: 3, TTLSeconds: 300,
	})

	confirm, err := repo.Confirm(ctx, reserved.Token)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if !confirm.Success {
		t.Fatalf("Confirm() failed: %s", confirm.ErrorCode)
	}

	// Confirming again reports the state without side effects
	confirm, _ = repo.Confirm(ctx, reserved.Token)
	if confirm.Success || confirm.ErrorCode != "ALREADY_CONFIRMED" {
		t.Errorf("second Confirm() = %+v, want ALREADY_CONFIRMED", confirm)
	}

	// Releasing a confirmed hold never returns its units
	release, err := repo.Release(ctx, reserved.Token)
	if err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if !release.Success || release.Released {
		t.Errorf("Release() of confirmed hold = %+v, want no-op", release)
	}
	available, _ := repo.GetAvailability(ctx, "event-001", "general")
	if available != 7 {
		t.Errorf("available = %d after releasing confirmed hold, want 7", available)
	}
}

func TestMemoryInventoryRepository_ReleaseIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInventoryRepository()
	repo.InitCategory(ctx, "event-001", "general", 10)

	reserved, _ := repo.Reserve(ctx, ReserveParams{
		EventID: "event-001", Category: "general", Quantity: 4, TTLSeconds: 300,
	})

	first, err := repo.Release(ctx, reserved.Token)
	if err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if !first.Released || first.Available != 10 {
		t.Errorf("first Release() = %+v, want released with 10 available", first)
	}

	// Releasing twice must not double-credit the pool
	second, err := repo.Release(ctx, reserved.Token)
	if err != nil {
		t.Fatalf("second Release() error = %v", err)
	}
	if !second.Success || second.Released {
		t.Errorf("second Release() = %+v, want idempotent no-op", second)
	}
	available, _ := repo.GetAvailability(ctx, "event-001", "general")
	if available != 10 {
		t.Errorf("available = %d, want 10", available)
	}

	// A token that never existed is also a successful no-op
	unknown, err := repo.Release(ctx, "no-such-token")
	if err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if !unknown.Success || unknown.Released {
		t.Errorf("Release() of unknown token = %+v, want no-op", unknown)
	}
}

func TestMemoryInventoryRepository_ConfirmExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInventoryRepository()
	repo.InitCategory(ctx, "event-001", "general", 10)

	reserved, _ := repo.Reserve(ctx, ReserveParams{
		EventID: "event-001", Category: "general", Quantity: 2, TTLSeconds: 0,
	})

	time.Sleep(5 * time.Millisecond)

	confirm, err := repo.Confirm(ctx, reserved.Token)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if confirm.Success || confirm.ErrorCode != "RESERVATION_EXPIRED" {
		t.Errorf("Confirm() of lapsed hold = %+v, want RESERVATION_EXPIRED", confirm)
	}

	// The lapsed hold can still be released exactly once
	release, _ := repo.Release(ctx, reserved.Token)
	if !release.Released {
		t.Errorf("Release() of lapsed hold = %+v, want released", release)
	}

	// After release, confirm reports the release, not a sale
	confirm, _ = repo.Confirm(ctx, reserved.Token)
	if confirm.Success || confirm.ErrorCode != "RESERVATION_RELEASED" {
		t.Errorf("Confirm() after release = %+v, want RESERVATION_RELEASED", confirm)
	}
}

func TestMemoryInventoryRepository_ConcurrentReserveNeverOversells(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInventoryRepository()

	const capacity = 50
	repo.InitCategory(ctx, "event-001", "general", capacity)

	const workers = 100
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := repo.Reserve(ctx, ReserveParams{
				EventID: "event-001", Category: "general", Quantity: 1, TTLSeconds: 300,
			})
			if err != nil {
				t.Errorf("Reserve() error = %v", err)
				return
			}
			if result.Success {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != capacity {
		t.Errorf("granted = %d, want exactly %d", granted, capacity)
	}
	available, _ := repo.GetAvailability(ctx, "event-001", "general")
	if available != 0 {
		t.Errorf("available = %d, want 0", available)
	}
}

func TestMemoryInventoryRepository_ReleaseConfirmed(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryInventoryRepository()
	if err := repo.InitCategory(ctx, "event-001", "general", 10); err != nil {
		t.Fatalf("InitCategory() error = %v", err)
	}

	reserved, err := repo.Reserve(ctx, ReserveParams{
		EventID:    "event-001",
		Category:   "general",
		Quantity:   4,
		TTLSeconds: 60,
	})
	if err != nil || !reserved.Success {
		t.Fatalf("Reserve() = %+v, %v", reserved, err)
	}

	// A still-held token is not this path's business
	result, err := repo.ReleaseConfirmed(ctx, reserved.Token)
	if err != nil {
		t.Fatalf("ReleaseConfirmed() error = %v", err)
	}
	if result.Released {
		t.Error("ReleaseConfirmed() credited a held token")
	}

	if _, err := repo.Confirm(ctx, reserved.Token); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	result, err = repo.ReleaseConfirmed(ctx, reserved.Token)
	if err != nil {
		t.Fatalf("ReleaseConfirmed() error = %v", err)
	}
	if !result.Released || result.Available != 10 {
		t.Errorf("ReleaseConfirmed() = %+v, want released with 10 available", result)
	}

	// Repeats never double-credit
	result, err = repo.ReleaseConfirmed(ctx, reserved.Token)
	if err != nil {
		t.Fatalf("second ReleaseConfirmed() error = %v", err)
	}
	if result.Released {
		t.Error("second ReleaseConfirmed() credited the pool again")
	}
	available, _ := repo.GetAvailability(ctx, "event-001", "general")
	if available != 10 {
		t.Errorf("availability = %d, want 10", available)
	}

	// Unknown tokens are a no-op
	result, err = repo.ReleaseConfirmed(ctx, "no-such-token")
	if err != nil || result.Released {
		t.Errorf("ReleaseConfirmed(unknown) = %+v, %v, want no-op", result, err)
	}
}
