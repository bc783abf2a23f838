package interfaces

import (
	"context"
	"errors"

	"booking_reconciliation/internal/domain/entities"
)

// ErrPaymentConflict is returned by IPaymentRepository.Create when the gateway
// transaction id or the booking already has a payment.
var ErrPaymentConflict = errors.New("payment already exists for transaction or booking")

// IPaymentRepository abstracts persistence for Payment.
//
// Uniqueness: transaction_id and booking_id are both unique. Lookups return a
// zero-value Payment (ID == "") when nothing matches.
type IPaymentRepository interface {
	Create(ctx context.Context, p entities.Payment) (entities.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (entities.Payment, error)
	GetByBookingID(ctx context.Context, bookingID string) (entities.Payment, error)
}
