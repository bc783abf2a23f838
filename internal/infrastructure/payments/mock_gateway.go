package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"booking_reconciliation/internal/config"
	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/payment"
)

var ErrMockSessionNotFound = errors.New("mock payment session not found")

// MockGateway serves Mercado Pago payments from a JSON fixture instead of the API.
//
// The fixture maps a reference to a payment object in Mercado Pago's own JSON shape:
//
//	{"123": {"id": 123, "status": "approved", "transaction_amount": 45, "currency_id": "BRL",
//	         "metadata": {"tenant_id": "t1", "start_time": "2025-03-01T10:00:00Z", ...}}}
type MockGateway struct {
	mu       sync.RWMutex
	payments map[string]payment.Response
}

var _ interfaces.IPaymentGateway = (*MockGateway)(nil)

func NewMockGateway() *MockGateway {
	return &MockGateway{payments: map[string]payment.Response{}}
}

// LoadMockGateway reads the fixture at path; an empty path yields an empty gateway.
func LoadMockGateway(path string) (*MockGateway, error) {
	g := NewMockGateway()
	if path == "" {
		log.Printf("[payment][gateway] mock mode enabled without fixture")
		return g, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mock sessions: %w", err)
	}
	var fixture map[string]payment.Response
	if err := json.Unmarshal(raw, &fixture); err != nil {
		return nil, fmt.Errorf("decode mock sessions: %w", err)
	}
	for ref, p := range fixture {
		g.Put(ref, p)
	}
	log.Printf("[payment][gateway] mock mode enabled sessions=%d file=%s", len(fixture), path)
	return g, nil
}

func (g *MockGateway) Put(reference string, p payment.Response) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payments[strings.TrimSpace(reference)] = p
}

func (g *MockGateway) GetSession(_ context.Context, reference string) (entities.GatewaySession, error) {
	ref := strings.TrimSpace(reference)
	g.mu.RLock()
	p, ok := g.payments[ref]
	g.mu.RUnlock()
	if !ok {
		log.Printf("[payment][gateway] mock session not found reference=%q", ref)
		return entities.GatewaySession{}, fmt.Errorf("%w: %q", ErrMockSessionNotFound, ref)
	}
	log.Printf("[payment][gateway] mock get reference=%s status=%s", ref, p.Status)
	return sessionFromPayment(ref, &p)
}

// NewGateway picks the mock or the Mercado Pago gateway from config.
func NewGateway(cfg config.Config) (interfaces.IPaymentGateway, error) {
	if cfg.PaymentGatewayMock {
		g, err := LoadMockGateway(cfg.MockSessionsFile)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	g, err := NewMercadoPagoGateway(cfg.MercadoPagoAccessToken)
	if err != nil {
		return nil, err
	}
	return g, nil
}
