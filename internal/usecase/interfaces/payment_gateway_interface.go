package interfaces

import (
	"context"
	"errors"

	"booking_reconciliation/internal/domain/entities"
)

// ErrMalformedMetadata is returned by IPaymentGateway.GetSession when a paid session carries
// booking metadata that cannot be parsed (bad timestamps, non-numeric amounts).
var ErrMalformedMetadata = errors.New("malformed session metadata")

// IPaymentGateway abstracts external payment providers (e.g. Mercado Pago).
//
// Reconciliation only reads from it: given the reference handed back after checkout
// it returns the payment status, the transaction id and the booking metadata.
type IPaymentGateway interface {
	GetSession(ctx context.Context, reference string) (entities.GatewaySession, error)
}
