package notifications

import (
	"context"
	"log"
	"sync"
	"time"

	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/usecase/interfaces"
)

// AsyncNotifier hands confirmations to a background goroutine so the HTTP response never
// waits on the broker or mail transport. Send always returns nil.
type AsyncNotifier struct {
	next    interfaces.INotificationDispatcher
	timeout time.Duration
	wg      sync.WaitGroup
}

var _ interfaces.INotificationDispatcher = (*AsyncNotifier)(nil)

func NewAsyncNotifier(next interfaces.INotificationDispatcher, timeout time.Duration) *AsyncNotifier {
	return &AsyncNotifier{next: next, timeout: timeout}
}

func (n *AsyncNotifier) Send(ctx context.Context, d entities.BookingDetails) error {
	// the request context is cancelled once the handler returns
	bg := context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[notification][async] dispatcher panicked booking_id=%s panic=%v", d.Booking.ID, r)
			}
		}()

		sendCtx, cancel := context.WithTimeout(bg, n.timeout)
		defer cancel()
		if err := n.next.Send(sendCtx, d); err != nil {
			log.Printf("[notification][async] send failed booking_id=%s err=%v", d.Booking.ID, err)
		}
	}()
	return nil
}

// Wait blocks until every in-flight confirmation has finished.
func (n *AsyncNotifier) Wait() {
	n.wg.Wait()
}

// Close drains in-flight sends and closes the wrapped dispatcher when it holds resources.
func (n *AsyncNotifier) Close() error {
	n.Wait()
	if c, ok := n.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
