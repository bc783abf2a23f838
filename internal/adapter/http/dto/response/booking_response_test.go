package response

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"booking_reconciliation/internal/domain/entities"
)

func TestFromBookingDetails(t *testing.T) {
	start := time.Date(2025, 3, 1, 7, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	d := entities.BookingDetails{
		Booking: entities.Booking{
			ID: "b-1", StartTime: start, EndTime: start.Add(time.Hour),
			Status: entities.BookingStatusConfirmed, TotalAmount: 4500, Currency: "BRL",
			ClientName: "Jane", ClientEmail: "jane@example.com",
		},
		Payment: entities.Payment{
			ID: "p-1", Amount: 4500, FeeAmount: 225, NetAmount: 4275,
			Status: entities.PaymentStatusCompleted, TransactionID: "pi_123",
		},
		Service: entities.Service{ID: "s1", Name: "Cut", DurationMinutes: 60, Price: 4500},
		Staff:   entities.Staff{ID: "st1", FirstName: "Ana", LastName: "Lima"},
		Tenant:  entities.Tenant{ID: "t1", Name: "Studio"},
	}

	res := FromBookingDetails(d)
	if res.ID != "b-1" || res.Status != "CONFIRMED" || res.Currency != "BRL" {
		t.Fatalf("unexpected booking fields: %+v", res)
	}
	if res.TotalAmount != 45.00 || res.Payment.FeeAmount != 2.25 || res.Payment.NetAmount != 42.75 {
		t.Fatalf("unexpected amounts: %+v", res)
	}
	if res.StartTime.Location() != time.UTC || res.StartTime.Hour() != 10 {
		t.Fatalf("expected UTC start time, got %s", res.StartTime)
	}
	if res.Service.Duration != 60 || res.Staff.FirstName != "Ana" || res.Payment.TransactionID != "pi_123" {
		t.Fatalf("unexpected nested fields: %+v", res)
	}

	raw, err := json.Marshal(NewBookingEnvelope(d))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"booking":{`, `"startTime":"2025-03-01T10:00:00Z"`, `"transactionId":"pi_123"`, `"feeAmount":2.25`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("json missing %s: %s", want, raw)
		}
	}
}
