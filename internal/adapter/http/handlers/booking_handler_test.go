package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking_reconciliation/internal/adapter/http/handlers/mocks"
	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func bookingDetails() entities.BookingDetails {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return entities.BookingDetails{
		Booking: entities.Booking{
			ID: "b-1", TenantID: "t1", ServiceID: "s1", StaffID: "st1",
			ClientName: "Jane", ClientEmail: "jane@example.com",
			StartTime: start, EndTime: start.Add(time.Hour),
			TotalAmount: 4500, Currency: "BRL", Status: entities.BookingStatusConfirmed,
		},
		Payment: entities.Payment{
			ID: "p-1", BookingID: "b-1", Amount: 4500, FeeAmount: 225, NetAmount: 4275,
			Status: entities.PaymentStatusCompleted, TransactionID: "pi_123",
		},
		Tenant:  entities.Tenant{ID: "t1", Name: "Studio"},
		Service: entities.Service{ID: "s1", Name: "Cut", DurationMinutes: 60, Price: 4500},
		Staff:   entities.Staff{ID: "st1", FirstName: "Ana", LastName: "Lima"},
	}
}

func TestBookingHandler_Reconcile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success from body", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIReconciliationUseCase(ctrl)
		h := NewBookingHandler(uc)

		r := gin.New()
		r.POST("/v1/bookings/reconcile", h.Reconcile)

		uc.EXPECT().Reconcile(gomock.Any(), "sess_abc").Return(bookingDetails(), nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/bookings/reconcile", bytes.NewBufferString(`{"sessionReference":"sess_abc"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body struct {
			Booking struct {
				ID          string  `json:"id"`
				TotalAmount float64 `json:"totalAmount"`
				Payment     struct {
					FeeAmount float64 `json:"feeAmount"`
					NetAmount float64 `json:"netAmount"`
				} `json:"payment"`
			} `json:"booking"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Booking.ID != "b-1" || body.Booking.TotalAmount != 45.00 {
			t.Fatalf("unexpected response body: %s", w.Body.String())
		}
		if body.Booking.Payment.FeeAmount != 2.25 || body.Booking.Payment.NetAmount != 42.75 {
			t.Fatalf("unexpected payment amounts: %s", w.Body.String())
		}
	})

	t.Run("reference from redirect query", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIReconciliationUseCase(ctrl)
		h := NewBookingHandler(uc)

		r := gin.New()
		r.POST("/v1/bookings/reconcile", h.Reconcile)

		uc.EXPECT().Reconcile(gomock.Any(), "123").Return(bookingDetails(), nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/bookings/reconcile?payment_id=123", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIReconciliationUseCase(ctrl)
		h := NewBookingHandler(uc)

		r := gin.New()
		r.POST("/v1/bookings/reconcile", h.Reconcile)

		req := httptest.NewRequest(http.MethodPost, "/v1/bookings/reconcile", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("usecase returns mapped error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIReconciliationUseCase(ctrl)
		h := NewBookingHandler(uc)

		r := gin.New()
		r.POST("/v1/bookings/reconcile", h.Reconcile)

		uc.EXPECT().Reconcile(gomock.Any(), "sess_abc").Return(entities.BookingDetails{}, usecase.ErrPaymentNotConfirmed)

		req := httptest.NewRequest(http.MethodPost, "/v1/bookings/reconcile", bytes.NewBufferString(`{"sessionReference":"sess_abc"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["code"] != "PAYMENT_NOT_CONFIRMED" {
			t.Fatalf("unexpected response body: %s", w.Body.String())
		}
	})
}

func TestBookingHandler_GetBooking(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIReconciliationUseCase(ctrl)
		h := NewBookingHandler(uc)

		r := gin.New()
		r.GET("/v1/bookings/:id", h.GetBooking)

		uc.EXPECT().GetBooking(gomock.Any(), "b-1").Return(bookingDetails(), nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/bookings/b-1", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIReconciliationUseCase(ctrl)
		h := NewBookingHandler(uc)

		r := gin.New()
		r.GET("/v1/bookings/:id", h.GetBooking)

		uc.EXPECT().GetBooking(gomock.Any(), "missing").Return(entities.BookingDetails{}, usecase.ErrBookingNotFound)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/bookings/missing", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestMapReconciliationError(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{usecase.ErrInvalidRequest, "INVALID_REQUEST", http.StatusBadRequest},
		{fmt.Errorf("%w: %w", usecase.ErrInvalidRequest, errors.New("end before start")), "INVALID_REQUEST", http.StatusBadRequest},
		{usecase.ErrPaymentNotConfirmed, "PAYMENT_NOT_CONFIRMED", http.StatusBadRequest},
		{fmt.Errorf("%w: tenant t9", usecase.ErrCatalogNotFound), "CATALOG_NOT_FOUND", http.StatusNotFound},
		{usecase.ErrBookingNotFound, "BOOKING_NOT_FOUND", http.StatusNotFound},
		{fmt.Errorf("%w: %w", usecase.ErrGatewayError, errors.New("timeout")), "GATEWAY_ERROR", http.StatusInternalServerError},
		{usecase.ErrConflictRetryExhausted, "CONFLICT_RETRY_EXHAUSTED", http.StatusInternalServerError},
		{fmt.Errorf("%w: %w", usecase.ErrPersistenceError, errors.New("disk full")), "PERSISTENCE_ERROR", http.StatusInternalServerError},
		{context.DeadlineExceeded, "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			appErr := mapReconciliationError(tt.err)
			if appErr.Code != tt.code || appErr.HTTPStatus != tt.status {
				t.Fatalf("expected %s/%d, got %s/%d", tt.code, tt.status, appErr.Code, appErr.HTTPStatus)
			}
		})
	}
}
