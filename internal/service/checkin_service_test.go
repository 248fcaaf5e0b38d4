package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/internal/dto"
	"github.com/kasi0403/Eventify/internal/repository"
)

func newCheckinStack(t *testing.T) (CheckinService, *repository.MemoryCredentialRepository, string) {
	t.Helper()
	ctx := context.Background()

	credentialRepo := repository.NewMemoryCredentialRepository()
	attendance := repository.NewMemoryAttendanceCounter()
	svc := NewCheckinService(credentialRepo, attendance, NewNoOpEventPublisher())

	token, err := domain.NewCredentialToken()
	if err != nil {
		t.Fatalf("NewCredentialToken() error = %v", err)
	}
	if _, err := credentialRepo.CreateIfAbsent(ctx, &domain.TicketCredential{
		ID:        "cred-001",
		Token:     token,
		BookingID: "booking-001",
		EventID:   "event-001",
		UserID:    "user-001",
		Category:  "general",
		UnitIndex: 0,
		Status:    domain.CredentialStatusIssued,
		IssuedAt:  time.Now(),
	}); err != nil {
		t.Fatalf("seed credential: %v", err)
	}

	return svc, credentialRepo, token
}

func TestCheckinService_CheckIn(t *testing.T) {
	ctx := context.Background()
	svc, _, token := newCheckinStack(t)

	result, err := svc.CheckIn(ctx, "event-001", &dto.CheckInRequest{Token: token})
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if result.Credential.Status != "checked_in" {
		t.Errorf("credential status = %v, want checked_in", result.Credential.Status)
	}
	if result.Attendance != 1 {
		t.Errorf("attendance = %d, want 1", result.Attendance)
	}

	// A second scan of the same credential is refused
	if _, err := svc.CheckIn(ctx, "event-001", &dto.CheckInRequest{Token: token}); !errors.Is(err, domain.ErrAlreadyCheckedIn) {
		t.Errorf("second CheckIn() error = %v, want ErrAlreadyCheckedIn", err)
	}

	count, err := svc.GetAttendance(ctx, "event-001")
	if err != nil {
		t.Fatalf("GetAttendance() error = %v", err)
	}
	if count != 1 {
		t.Errorf("attendance = %d after rejected rescan, want 1", count)
	}
}

func TestCheckinService_CheckIn_WrongEvent(t *testing.T) {
	ctx := context.Background()
	svc, credentialRepo, token := newCheckinStack(t)

	// Scanning at the wrong gate is rejected without consuming the
	// credential.
	if _, err := svc.CheckIn(ctx, "event-999", &dto.CheckInRequest{Token: token}); !errors.Is(err, domain.ErrEventMismatch) {
		t.Fatalf("CheckIn() error = %v, want ErrEventMismatch", err)
	}

	cred, err := credentialRepo.GetByToken(ctx, token)
	if err != nil {
		t.Fatalf("GetByToken() error = %v", err)
	}
	if cred.IsCheckedIn() {
		t.Error("wrong-gate scan consumed the credential")
	}

	// The right gate still admits it
	if _, err := svc.CheckIn(ctx, "event-001", &dto.CheckInRequest{Token: token}); err != nil {
		t.Errorf("CheckIn() at correct gate error = %v", err)
	}
}

func TestCheckinService_CheckIn_BadTokens(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCheckinStack(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "not-a-token"},
		{name: "well-formed unknown token", token: "0123456789abcdef0123456789abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CheckIn(ctx, "event-001", &dto.CheckInRequest{Token: tt.token})
			if !errors.Is(err, domain.ErrCredentialNotFound) {
				t.Errorf("CheckIn() error = %v, want ErrCredentialNotFound", err)
			}
		})
	}
}

func TestCheckinService_ConcurrentCheckInSingleWinner(t *testing.T) {
	ctx := context.Background()
	svc, _, token := newCheckinStack(t)

	const scanners = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CheckIn(ctx, "event-001", &dto.CheckInRequest{Token: token}); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 1 {
		t.Errorf("admitted = %d, want exactly 1", admitted)
	}

	count, _ := svc.GetAttendance(ctx, "event-001")
	if count != 1 {
		t.Errorf("attendance = %d, want 1", count)
	}
}
