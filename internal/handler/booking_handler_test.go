package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kasi0403/Eventify/internal/domain"
	"github.com/kasi0403/Eventify/internal/dto"
)

// MockBookingService is a mock implementation of BookingService for testing
type MockBookingService struct {
	CreateBookingFunc      func(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	OnPaymentConfirmedFunc func(ctx context.Context, bookingID, paymentRef string) (*dto.BookingResponse, error)
	OnPaymentFailedFunc    func(ctx context.Context, bookingID, reason string) (*dto.BookingResponse, error)
	CancelBookingFunc      func(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error)
	GetBookingFunc         func(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error)
	ListBookingsFunc       func(ctx context.Context, userID string, page, pageSize int) (*dto.PaginatedResponse, error)
	ExpireBookingsFunc     func(ctx context.Context, limit int) (int, error)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if m.CreateBookingFunc != nil {
		return m.CreateBookingFunc(ctx, userID, req)
	}
	return nil, nil
}

func (m *MockBookingService) OnPaymentConfirmed(ctx context.Context, bookingID, paymentRef string) (*dto.BookingResponse, error) {
	if m.OnPaymentConfirmedFunc != nil {
		return m.OnPaymentConfirmedFunc(ctx, bookingID, paymentRef)
	}
	return nil, nil
}

func (m *MockBookingService) OnPaymentFailed(ctx context.Context, bookingID, reason string) (*dto.BookingResponse, error) {
	if m.OnPaymentFailedFunc != nil {
		return m.OnPaymentFailedFunc(ctx, bookingID, reason)
	}
	return nil, nil
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error) {
	if m.CancelBookingFunc != nil {
		return m.CancelBookingFunc(ctx, bookingID, userID)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error) {
	if m.GetBookingFunc != nil {
		return m.GetBookingFunc(ctx, bookingID, userID)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingService) ListBookings(ctx context.Context, userID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	if m.ListBookingsFunc != nil {
		return m.ListBookingsFunc(ctx, userID, page, pageSize)
	}
	return &dto.PaginatedResponse{}, nil
}

func (m *MockBookingService) ExpireBookings(ctx context.Context, limit int) (int, error) {
	if m.ExpireBookingsFunc != nil {
		return m.ExpireBookingsFunc(ctx, limit)
	}
	return 0, nil
}

func setupBookingRouter(svc *MockBookingService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set("user_id", userID)
			c.Next()
		})
	}

	h := NewBookingHandler(svc)
	router.POST("/bookings", h.Create)
	router.GET("/bookings", h.List)
	router.GET("/bookings/:id", h.Get)
	router.POST("/bookings/:id/cancel", h.Cancel)

	wh := NewWebhookHandler(svc)
	router.POST("/webhooks/payment", wh.Payment)

	return router
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	if err := json.Unmarshal(body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope
}

func errorCode(envelope map[string]interface{}) string {
	errData, ok := envelope["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errData["code"].(string)
	return code
}

func TestBookingHandler_Create(t *testing.T) {
	validRequest := &dto.CreateBookingRequest{
		EventID: "event-001",
		Items:   []dto.BookingItemRequest{{Category: "general", Quantity: 2}},
	}

	tests := []struct {
		name           string
		userID         string
		body           interface{}
		mockFunc       func(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:   "successful booking",
			userID: "user-001",
			body:   validRequest,
			mockFunc: func(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
				return &dto.BookingResponse{
					ID:          "booking-001",
					Status:      "pending",
					TotalAmount: 1100.00,
					ExpiresAt:   time.Now().Add(5 * time.Minute),
				}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unauthorized without user",
			userID:         "",
			body:           validRequest,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed body",
			userID:         "user-001",
			body:           map[string]interface{}{"event_id": "event-001"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name:   "insufficient inventory",
			userID: "user-001",
			body:   validRequest,
			mockFunc: func(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
				return nil, domain.ErrInsufficientInventory
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "INSUFFICIENT_INVENTORY",
		},
		{
			name:   "unknown event",
			userID: "user-001",
			body:   validRequest,
			mockFunc: func(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
				return nil, domain.ErrEventNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:   "cancelled event",
			userID: "user-001",
			body:   validRequest,
			mockFunc: func(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
				return nil, domain.ErrEventCancelled
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockBookingService{CreateBookingFunc: tt.mockFunc}
			router := setupBookingRouter(svc, tt.userID)

			payload, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.expectedStatus, w.Body.String())
			}
			if tt.expectedCode != "" {
				if code := errorCode(decodeEnvelope(t, w.Body)); code != tt.expectedCode {
					t.Errorf("error code = %q, want %q", code, tt.expectedCode)
				}
			}
		})
	}
}

func TestWebhookHandler_Payment(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		confirmedFunc  func(ctx context.Context, bookingID, paymentRef string) (*dto.BookingResponse, error)
		failedFunc     func(ctx context.Context, bookingID, reason string) (*dto.BookingResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "payment succeeded",
			body: &dto.PaymentWebhookRequest{BookingID: "booking-001", PaymentRef: "pay-123", Status: "succeeded"},
			confirmedFunc: func(ctx context.Context, bookingID, paymentRef string) (*dto.BookingResponse, error) {
				return &dto.BookingResponse{ID: bookingID, Status: "confirmed"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "payment failed",
			body: &dto.PaymentWebhookRequest{BookingID: "booking-001", Status: "failed", Reason: "card declined"},
			failedFunc: func(ctx context.Context, bookingID, reason string) (*dto.BookingResponse, error) {
				return &dto.BookingResponse{ID: bookingID, Status: "failed", StatusReason: reason}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown status rejected by binding",
			body:           map[string]interface{}{"booking_id": "booking-001", "status": "maybe"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name: "payment after window closed",
			body: &dto.PaymentWebhookRequest{BookingID: "booking-001", PaymentRef: "pay-123", Status: "succeeded"},
			confirmedFunc: func(ctx context.Context, bookingID, paymentRef string) (*dto.BookingResponse, error) {
				return nil, domain.ErrReservationExpired
			},
			expectedStatus: http.StatusGone,
			expectedCode:   "EXPIRED",
		},
		{
			name: "unknown booking",
			body: &dto.PaymentWebhookRequest{BookingID: "booking-404", Status: "succeeded"},
			confirmedFunc: func(ctx context.Context, bookingID, paymentRef string) (*dto.BookingResponse, error) {
				return nil, domain.ErrBookingNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockBookingService{
				OnPaymentConfirmedFunc: tt.confirmedFunc,
				OnPaymentFailedFunc:    tt.failedFunc,
			}
			router := setupBookingRouter(svc, "")

			payload, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.expectedStatus, w.Body.String())
			}
			if tt.expectedCode != "" {
				if code := errorCode(decodeEnvelope(t, w.Body)); code != tt.expectedCode {
					t.Errorf("error code = %q, want %q", code, tt.expectedCode)
				}
			}
		})
	}
}

func TestBookingHandler_Get(t *testing.T) {
	svc := &MockBookingService{
		GetBookingFunc: func(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error) {
			if bookingID == "booking-001" && userID == "user-001" {
				return &dto.BookingResponse{ID: bookingID, UserID: userID, Status: "pending"}, nil
			}
			return nil, domain.ErrBookingNotFound
		},
	}
	router := setupBookingRouter(svc, "user-001")

	req := httptest.NewRequest(http.MethodGet, "/bookings/booking-001", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/bookings/booking-999", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
