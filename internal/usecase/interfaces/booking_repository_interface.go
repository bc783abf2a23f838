package interfaces

import (
	"context"
	"errors"

	"booking_reconciliation/internal/domain/entities"
)

// ErrNaturalKeyConflict is returned by IBookingRepository.Create when another booking
// already holds the same natural key.
var ErrNaturalKeyConflict = errors.New("booking natural key already exists")

// IBookingRepository abstracts persistence for Booking.
//
// The store must:
//   - reject a second booking with the same NaturalKey atomically (ErrNaturalKeyConflict)
//   - return a zero-value Booking (ID == "") when nothing matches
//   - serve reads that observe every committed create (no stale replicas)
type IBookingRepository interface {
	Create(ctx context.Context, b entities.Booking) (entities.Booking, error)
	GetByID(ctx context.Context, id string) (entities.Booking, error)
	GetByNaturalKey(ctx context.Context, key entities.NaturalKey) (entities.Booking, error)
}
