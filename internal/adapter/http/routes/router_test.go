package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"booking_reconciliation/internal/adapter/http/handlers/mocks"
	"booking_reconciliation/internal/domain/entities"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

type okStore struct{}

func (okStore) Ping(context.Context) error { return nil }

func TestNewRouter_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc := mocks.NewMockIReconciliationUseCase(ctrl)
	uc.EXPECT().Reconcile(gomock.Any(), "123").Return(entities.BookingDetails{Booking: entities.Booking{ID: "b-1"}}, nil)
	uc.EXPECT().GetBooking(gomock.Any(), "b-1").Return(entities.BookingDetails{Booking: entities.Booking{ID: "b-1"}}, nil)
	uc.EXPECT().HandlePaymentNotification(gomock.Any(), gomock.Any()).Return(entities.BookingDetails{}, false, nil)

	r := NewRouter(Dependencies{UseCase: uc, Store: okStore{}, CORSAllowedOrigins: []string{"https://app.example"}})

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/v1/ping", "", http.StatusOK},
		{http.MethodGet, "/v1/health", "", http.StatusOK},
		{http.MethodPost, "/v1/bookings/reconcile", `{"sessionReference":"123"}`, http.StatusOK},
		{http.MethodGet, "/v1/bookings/b-1", "", http.StatusOK},
		{http.MethodPost, "/v1/webhooks/mercadopago", `{"type":"plan"}`, http.StatusOK},
		{http.MethodGet, "/v1/unknown", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestNewRouter_CORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := NewRouter(Dependencies{
		UseCase:            mocks.NewMockIReconciliationUseCase(ctrl),
		Store:              okStore{},
		CORSAllowedOrigins: []string{"https://app.example"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/v1/bookings/reconcile", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("expected allowed origin header, got %q (status %d)", got, w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for disallowed origin, got %d", w.Code)
	}
}

func TestCorsConfig(t *testing.T) {
	if cfg := corsConfig([]string{"*"}); !cfg.AllowAllOrigins || len(cfg.AllowOrigins) != 0 {
		t.Fatalf("wildcard must allow all origins: %+v", cfg)
	}
	if cfg := corsConfig(nil); !cfg.AllowAllOrigins {
		t.Fatalf("empty list must allow all origins: %+v", cfg)
	}
	cfg := corsConfig([]string{" https://a.example ", ""})
	if cfg.AllowAllOrigins || len(cfg.AllowOrigins) != 1 || cfg.AllowOrigins[0] != "https://a.example" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
