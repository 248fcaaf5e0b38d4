package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/kasi0403/Eventify/internal/dto"
	"github.com/kasi0403/Eventify/internal/service"
	"github.com/kasi0403/Eventify/pkg/response"
	"github.com/kasi0403/Eventify/pkg/telemetry"
)

// AuthHandler handles platform operator authentication
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /admin/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.login")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(ctx, &req)
	if err != nil {
		span.SetStatus(codes.Error, "login failed")
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
