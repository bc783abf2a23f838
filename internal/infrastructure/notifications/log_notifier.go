package notifications

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/usecase/interfaces"
)

const confirmationTimeLayout = "Mon, 02 Jan 2006 15:04 MST"

// FormatConfirmation renders the plain-text confirmation sent to the client.
func FormatConfirmation(d entities.BookingDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, your booking is confirmed.\n\n", d.Booking.ClientName)
	fmt.Fprintf(&b, "Service: %s\n", d.Service.Name)
	if staff := d.StaffFullName(); staff != "" {
		fmt.Fprintf(&b, "With: %s\n", staff)
	}
	fmt.Fprintf(&b, "When: %s - %s\n",
		d.Booking.StartTime.UTC().Format(confirmationTimeLayout),
		d.Booking.EndTime.UTC().Format("15:04 MST"))
	fmt.Fprintf(&b, "Where: %s", d.Tenant.Name)
	if d.Tenant.Address != "" {
		fmt.Fprintf(&b, ", %s", d.Tenant.Address)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Paid: %s %s (ref %s)\n", d.Payment.Amount, d.Payment.Currency, d.Payment.TransactionID)
	fmt.Fprintf(&b, "Booking: %s\n", d.Booking.ID)
	return b.String()
}

// LogNotifier writes the confirmation to the process log. It is the default dispatcher
// when no broker is configured.
type LogNotifier struct {
	logf func(format string, v ...any)
}

var _ interfaces.INotificationDispatcher = (*LogNotifier)(nil)

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logf: log.Printf}
}

func (n *LogNotifier) Send(ctx context.Context, d entities.BookingDetails) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.Booking.ClientEmail == "" {
		return fmt.Errorf("booking %s has no client email", d.Booking.ID)
	}
	n.logf("[notification][log] booking confirmed to=%s booking_id=%s at=%s\n%s",
		d.Booking.ClientEmail, d.Booking.ID, time.Now().UTC().Format(time.RFC3339), FormatConfirmation(d))
	return nil
}
