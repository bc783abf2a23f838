package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"booking_reconciliation/internal/adapter/http/handlers/mocks"
	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func TestWebhookHandler_MercadoPago(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(uc usecase.IReconciliationUseCase) *gin.Engine {
		r := gin.New()
		r.POST("/v1/webhooks/mercadopago", NewWebhookHandler(uc).MercadoPago)
		return r
	}

	t.Run("payment reconciled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIReconciliationUseCase(ctrl)

		want := entities.PaymentNotification{Type: "payment", Action: "payment.updated", ResourceID: "123"}
		uc.EXPECT().HandlePaymentNotification(gomock.Any(), want).Return(bookingDetails(), true, nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/mercadopago",
			bytes.NewBufferString(`{"type":"payment","action":"payment.updated","data":{"id":"123"}}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		newRouter(uc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"booking":{"id":"b-1"`) {
			t.Fatalf("unexpected response body: %s", w.Body.String())
		}
	})

	t.Run("legacy query notification", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIReconciliationUseCase(ctrl)

		uc.EXPECT().HandlePaymentNotification(gomock.Any(), entities.PaymentNotification{Type: "payment", ResourceID: "555"}).
			Return(bookingDetails(), true, nil)

		w := httptest.NewRecorder()
		newRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/webhooks/mercadopago?topic=payment&id=555", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("ignored notification", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIReconciliationUseCase(ctrl)

		uc.EXPECT().HandlePaymentNotification(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, n entities.PaymentNotification) (entities.BookingDetails, bool, error) {
				if n.Type != "merchant_order" {
					t.Errorf("unexpected type %q", n.Type)
				}
				return entities.BookingDetails{}, false, nil
			})

		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/mercadopago",
			bytes.NewBufferString(`{"type":"merchant_order","data":{"id":99}}`))
		w := httptest.NewRecorder()
		newRouter(uc).ServeHTTP(w, req)

		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ignored":true`) {
			t.Fatalf("expected ignored 200, got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIReconciliationUseCase(ctrl)

		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/mercadopago", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		newRouter(uc).ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("gateway failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIReconciliationUseCase(ctrl)

		uc.EXPECT().HandlePaymentNotification(gomock.Any(), gomock.Any()).
			Return(entities.BookingDetails{}, false, errors.Join(usecase.ErrGatewayError, errors.New("503")))

		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/mercadopago",
			bytes.NewBufferString(`{"type":"payment","data":{"id":"123"}}`))
		w := httptest.NewRecorder()
		newRouter(uc).ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "GATEWAY_ERROR") {
			t.Fatalf("expected 500 GATEWAY_ERROR, got %d %s", w.Code, w.Body.String())
		}
	})
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		path   string
		store  Pinger
		status int
	}{
		{"ping", "/v1/ping", fakePinger{errors.New("down")}, http.StatusOK},
		{"healthy", "/v1/health", fakePinger{}, http.StatusOK},
		{"store down", "/v1/health", fakePinger{errors.New("connection refused")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.store)
			r := gin.New()
			r.GET("/v1/ping", h.Ping)
			r.GET("/v1/health", h.Health)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}
