package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
var ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")
var ErrInvalidPaymentReference = errors.New("invalid mercado pago payment reference")

const statusApproved = "approved"

// Metadata keys attached to the Mercado Pago payment at checkout. Amounts are minor units.
const (
	metaTenantID    = "tenant_id"
	metaServiceID   = "service_id"
	metaStaffID     = "staff_id"
	metaClientName  = "client_name"
	metaClientEmail = "client_email"
	metaClientPhone = "client_phone"
	metaStartTime   = "start_time"
	metaEndTime     = "end_time"
	metaFeeAmount   = "fee_amount"
	metaNetAmount   = "net_amount"
)

// paymentGetter is the part of the SDK payment.Client the gateway uses.
type paymentGetter interface {
	Get(ctx context.Context, id int) (*payment.Response, error)
}

// MercadoPagoGateway resolves checkout references through the Mercado Pago payments API.
// The reference is the Mercado Pago payment id (returned on the redirect as payment_id and
// pushed in webhooks as data.id).
type MercadoPagoGateway struct {
	client paymentGetter
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string) (*MercadoPagoGateway, error) {
	if accessToken == "" {
		log.Printf("[payment][gateway] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		log.Printf("[payment][gateway] failed creating sdk config err=%v", err)
		return nil, err
	}
	log.Printf("[payment][gateway] Mercado Pago client initialized")

	return &MercadoPagoGateway{client: payment.NewClient(cfg)}, nil
}

func (g *MercadoPagoGateway) GetSession(ctx context.Context, reference string) (entities.GatewaySession, error) {
	if g == nil || g.client == nil {
		log.Printf("[payment][gateway] gateway not configured")
		return entities.GatewaySession{}, ErrMercadoPagoGatewayNotConfigured
	}
	id, err := strconv.Atoi(strings.TrimSpace(reference))
	if err != nil || id <= 0 {
		log.Printf("[payment][gateway] invalid reference reference=%q", reference)
		return entities.GatewaySession{}, fmt.Errorf("%w: %q", ErrInvalidPaymentReference, reference)
	}

	log.Printf("[payment][gateway] get start payment_id=%d", id)
	resp, err := g.client.Get(ctx, id)
	if err != nil {
		log.Printf("[payment][gateway] sdk get failed payment_id=%d err=%v", id, err)
		return entities.GatewaySession{}, err
	}
	log.Printf("[payment][gateway] get success payment_id=%d status=%s", resp.ID, resp.Status)
	return sessionFromPayment(reference, resp)
}

// sessionFromPayment maps a Mercado Pago payment to a GatewaySession. Metadata is only
// parsed for approved payments; an unpaid session never reaches booking creation.
func sessionFromPayment(reference string, resp *payment.Response) (entities.GatewaySession, error) {
	if resp == nil {
		return entities.GatewaySession{}, errors.New("empty mercado pago payment response")
	}
	s := entities.GatewaySession{
		Reference:   strings.TrimSpace(reference),
		Status:      resp.Status,
		Paid:        strings.EqualFold(resp.Status, statusApproved),
		AmountTotal: entities.MoneyFromDecimal(resp.TransactionAmount),
		Currency:    strings.ToUpper(resp.CurrencyID),
	}
	if resp.ID != 0 {
		s.TransactionID = fmt.Sprintf("%d", resp.ID)
	}
	if !s.Paid {
		return s, nil
	}

	meta, err := parseMetadata(resp.Metadata)
	if err != nil {
		return entities.GatewaySession{}, err
	}
	s.Metadata = meta
	return s, nil
}

func parseMetadata(md map[string]any) (entities.SessionMetadata, error) {
	var (
		meta entities.SessionMetadata
		err  error
	)
	meta.TenantID = metaString(md, metaTenantID)
	meta.ServiceID = metaString(md, metaServiceID)
	meta.StaffID = metaString(md, metaStaffID)
	meta.ClientName = metaString(md, metaClientName)
	meta.ClientEmail = metaString(md, metaClientEmail)
	meta.ClientPhone = metaString(md, metaClientPhone)

	if meta.StartTime, err = metaTime(md, metaStartTime); err != nil {
		return entities.SessionMetadata{}, err
	}
	if meta.EndTime, err = metaTime(md, metaEndTime); err != nil {
		return entities.SessionMetadata{}, err
	}
	if meta.FeeAmount, err = metaMoney(md, metaFeeAmount); err != nil {
		return entities.SessionMetadata{}, err
	}
	if meta.NetAmount, err = metaMoney(md, metaNetAmount); err != nil {
		return entities.SessionMetadata{}, err
	}
	return meta, nil
}

func metaString(md map[string]any, key string) string {
	switch v := md[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// metaTime accepts RFC3339 strings; a missing key yields the zero time.
func metaTime(md map[string]any, key string) (time.Time, error) {
	raw := metaString(md, key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s=%q", interfaces.ErrMalformedMetadata, key, raw)
	}
	return t.UTC(), nil
}

// metaMoney accepts integer minor units as a JSON number or a numeric string.
func metaMoney(md map[string]any, key string) (entities.Money, error) {
	switch v := md[key].(type) {
	case nil:
		return 0, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %s=%v is not in minor units", interfaces.ErrMalformedMetadata, key, v)
		}
		return entities.Money(int64(v)), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", interfaces.ErrMalformedMetadata, key, v)
		}
		return entities.Money(n), nil
	default:
		return 0, fmt.Errorf("%w: %s has type %T", interfaces.ErrMalformedMetadata, key, v)
	}
}
