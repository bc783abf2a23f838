package interfaces

import (
	"context"

	"booking_reconciliation/internal/domain/entities"
)

// INotificationDispatcher sends the booking confirmation. Implementations must not
// panic; returned errors are logged by the caller and never change its outcome.
type INotificationDispatcher interface {
	Send(ctx context.Context, details entities.BookingDetails) error
}
