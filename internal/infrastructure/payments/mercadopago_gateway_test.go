package payments

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"booking_reconciliation/internal/config"
	"booking_reconciliation/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/payment"
)

type fakePaymentClient struct {
	resp   *payment.Response
	err    error
	gotID  int
	called bool
}

func (f *fakePaymentClient) Get(_ context.Context, id int) (*payment.Response, error) {
	f.called = true
	f.gotID = id
	return f.resp, f.err
}

func approvedPayment() payment.Response {
	return payment.Response{
		ID:                123,
		Status:            "approved",
		TransactionAmount: 45.00,
		CurrencyID:        "brl",
		Metadata: map[string]any{
			"tenant_id":    "t1",
			"service_id":   "s1",
			"staff_id":     "st1",
			"client_name":  "Jane Doe",
			"client_email": "jane@example.com",
			"client_phone": "+55 11 99999-0000",
			"start_time":   "2025-03-01T07:00:00-03:00",
			"end_time":     "2025-03-01T08:00:00-03:00",
			"fee_amount":   float64(225),
			"net_amount":   "4275",
		},
	}
}

func TestMercadoPagoGateway_GetSession(t *testing.T) {
	t.Run("approved payment maps to paid session", func(t *testing.T) {
		p := approvedPayment()
		client := &fakePaymentClient{resp: &p}
		g := &MercadoPagoGateway{client: client}

		s, err := g.GetSession(context.Background(), " 123 ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.gotID != 123 {
			t.Fatalf("expected payment id 123, got %d", client.gotID)
		}
		if !s.Paid || s.TransactionID != "123" || s.Reference != "123" {
			t.Fatalf("unexpected session: %+v", s)
		}
		if s.AmountTotal != 4500 || s.Currency != "BRL" {
			t.Fatalf("unexpected amount: %d %s", s.AmountTotal, s.Currency)
		}
		if s.Metadata.FeeAmount != 225 || s.Metadata.NetAmount != 4275 {
			t.Fatalf("unexpected fee/net: %d %d", s.Metadata.FeeAmount, s.Metadata.NetAmount)
		}
		if !s.Metadata.StartTime.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected start time: %s", s.Metadata.StartTime)
		}
		if s.Metadata.TenantID != "t1" || s.Metadata.ClientEmail != "jane@example.com" {
			t.Fatalf("unexpected metadata: %+v", s.Metadata)
		}
	})

	t.Run("pending payment is not paid", func(t *testing.T) {
		p := approvedPayment()
		p.Status = "in_process"
		p.Metadata = map[string]any{"start_time": "garbage"}
		g := &MercadoPagoGateway{client: &fakePaymentClient{resp: &p}}

		s, err := g.GetSession(context.Background(), "123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Paid {
			t.Fatalf("expected unpaid session, got %+v", s)
		}
	})

	t.Run("non numeric reference", func(t *testing.T) {
		client := &fakePaymentClient{}
		g := &MercadoPagoGateway{client: client}
		_, err := g.GetSession(context.Background(), "sess_abc")
		if !errors.Is(err, ErrInvalidPaymentReference) {
			t.Fatalf("expected ErrInvalidPaymentReference, got %v", err)
		}
		if client.called {
			t.Fatal("sdk must not be called for an invalid reference")
		}
	})

	t.Run("sdk error", func(t *testing.T) {
		sdkErr := errors.New("401 unauthorized")
		g := &MercadoPagoGateway{client: &fakePaymentClient{err: sdkErr}}
		if _, err := g.GetSession(context.Background(), "123"); !errors.Is(err, sdkErr) {
			t.Fatalf("expected sdk error, got %v", err)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		var g *MercadoPagoGateway
		if _, err := g.GetSession(context.Background(), "123"); !errors.Is(err, ErrMercadoPagoGatewayNotConfigured) {
			t.Fatalf("expected ErrMercadoPagoGatewayNotConfigured, got %v", err)
		}
	})
}

func TestNewMercadoPagoGateway_MissingToken(t *testing.T) {
	if _, err := NewMercadoPagoGateway(""); !errors.Is(err, ErrMissingMercadoPagoAccessToken) {
		t.Fatalf("expected ErrMissingMercadoPagoAccessToken, got %v", err)
	}
}

func TestParseMetadata_Malformed(t *testing.T) {
	tests := map[string]map[string]any{
		"bad start time":  {"start_time": "01/03/2025 10:00"},
		"fractional fee":  {"fee_amount": 2.25},
		"non numeric net": {"net_amount": "42.75"},
		"unexpected type": {"fee_amount": true},
		"bad end time":    {"start_time": "2025-03-01T10:00:00Z", "end_time": "tomorrow"},
	}
	for name, md := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseMetadata(md); !errors.Is(err, interfaces.ErrMalformedMetadata) {
				t.Fatalf("expected ErrMalformedMetadata, got %v", err)
			}
		})
	}
}

func TestMockGateway(t *testing.T) {
	fixture := `{
		"123": {"id": 123, "status": "approved", "transaction_amount": 45, "currency_id": "BRL",
			"metadata": {"tenant_id": "t1", "service_id": "s1", "staff_id": "st1",
				"client_name": "Jane", "client_email": "jane@example.com",
				"start_time": "2025-03-01T10:00:00Z", "end_time": "2025-03-01T11:00:00Z",
				"fee_amount": 225, "net_amount": 4275}},
		"456": {"id": 456, "status": "pending", "transaction_amount": 10, "currency_id": "BRL"}
	}`
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte(fixture), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	g, err := NewGateway(config.Config{PaymentGatewayMock: true, MockSessionsFile: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := g.GetSession(context.Background(), "123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Paid || s.TransactionID != "123" || s.AmountTotal != 4500 || s.Metadata.NetAmount != 4275 {
		t.Fatalf("unexpected session: %+v", s)
	}

	pending, err := g.GetSession(context.Background(), "456")
	if err != nil || pending.Paid {
		t.Fatalf("expected unpaid session, got %+v err=%v", pending, err)
	}

	if _, err := g.GetSession(context.Background(), "789"); !errors.Is(err, ErrMockSessionNotFound) {
		t.Fatalf("expected ErrMockSessionNotFound, got %v", err)
	}
}

func TestLoadMockGateway_BadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadMockGateway(path); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := LoadMockGateway(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected read error")
	}
}
