package entities

import "time"

// PaymentStatus represents the settlement state of a gateway payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Payment records the gateway charge that paid for a Booking.
//
// Storage model:
//   - PK: id
//   - unique: transaction_id (gateway idempotency key)
//   - unique: booking_id (a booking is paid at most once)
//
// Amount = FeeAmount + NetAmount is expected but not enforced; the split comes from the
// checkout metadata.
type Payment struct {
	ID               string        `json:"id"`
	BookingID        string        `json:"booking_id"`
	Amount           Money         `json:"amount"`
	FeeAmount        Money         `json:"fee_amount"`
	NetAmount        Money         `json:"net_amount"`
	Currency         string        `json:"currency"`
	Status           PaymentStatus `json:"status"`
	TransactionID    string        `json:"transaction_id"`
	SessionReference string        `json:"session_reference"`
	CreatedAt        time.Time     `json:"created_at"`
}
