package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/internal/dto"
	"github.com/kasi0403/Eventify/internal/repository"
	"github.com/kasi0403/Eventify/pkg/middleware"
)

func newAuthStack(t *testing.T) AuthService {
	t.Helper()

	svc := NewAuthService(repository.NewMemoryAdminRepository(), &middleware.AuthConfig{
		Secret: "test-secret",
		Issuer: "eventify-test",
	}, time.Hour)

	if err := svc.EnsureAdmin(context.Background(), "admin", "hunter22"); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}
	return svc
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc := newAuthStack(t)

	result, err := svc.Login(ctx, &dto.AdminLoginRequest{Username: "admin", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token == "" {
		t.Error("Login() returned empty token")
	}
	if result.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", result.ExpiresIn)
	}
}

func TestAuthService_Login_Invalid(t *testing.T) {
	ctx := context.Background()
	svc := newAuthStack(t)

	tests := []struct {
		name string
		req  *dto.AdminLoginRequest
	}{
		{name: "wrong password", req: &dto.AdminLoginRequest{Username: "admin", Password: "wrong"}},
		{name: "unknown account", req: &dto.AdminLoginRequest{Username: "nobody", Password: "hunter22"}},
		{name: "empty credentials", req: &dto.AdminLoginRequest{}},
	}

	// Every failure mode looks identical to the caller
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.req); !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestAuthService_EnsureAdminIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newAuthStack(t)

	// A second seed run keeps the existing account and password
	if err := svc.EnsureAdmin(ctx, "admin", "different-password"); err != nil {
		t.Fatalf("second EnsureAdmin() error = %v", err)
	}
	if _, err := svc.Login(ctx, &dto.AdminLoginRequest{Username: "admin", Password: "hunter22"}); err != nil {
		t.Errorf("Login() with original password error = %v", err)
	}
}
