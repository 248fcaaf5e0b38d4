package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/internal/dto"
	"github.com/kasi0403/Eventify/internal/repository"
	"github.com/kasi0403/Eventify/pkg/middleware"
	"github.com/kasi0403/Eventify/pkg/telemetry"
)

// AuthService defines the interface for platform operator authentication
type AuthService interface {
	// Login verifies admin credentials and issues a token
	Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)

	// EnsureAdmin creates the admin account if it does not exist yet.
	// Used at startup to seed the operator account.
	EnsureAdmin(ctx context.Context, username, password string) error
}

// authService implements AuthService
type authService struct {
	adminRepo repository.AdminRepository
	authCfg   *middleware.AuthConfig
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(adminRepo repository.AdminRepository, authCfg *middleware.AuthConfig, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &authService{
		adminRepo: adminRepo,
		authCfg:   authCfg,
		tokenTTL:  tokenTTL,
	}
}

// Login verifies admin credentials and issues a token
func (s *authService) Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	if req == nil || req.Username == "" || req.Password == "" {
		span.SetStatus(codes.Error, "missing credentials")
		return nil, domain.ErrInvalidCredentials
	}

	span.SetAttributes(attribute.String("username", req.Username))

	admin, err := s.adminRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		// A missing account and a wrong password look the same to the
		// caller.
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	if err := admin.VerifyPassword(req.Password); err != nil {
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := middleware.SignToken(s.authCfg, admin.ID, middleware.RoleAdmin, s.tokenTTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.AdminLoginResponse{
		Token:     token,
		ExpiresIn: int64(s.tokenTTL.Seconds()),
	}, nil
}

// EnsureAdmin creates the admin account if it does not exist yet
func (s *authService) EnsureAdmin(ctx context.Context, username, password string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.ensure_admin")
	defer span.End()

	if username == "" || password == "" {
		span.SetStatus(codes.Ok, "no seed account configured")
		return nil
	}

	if _, err := s.adminRepo.GetByUsername(ctx, username); err == nil {
		span.SetStatus(codes.Ok, "admin exists")
		return nil
	}

	admin, err := domain.NewAdmin(username, username, password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
