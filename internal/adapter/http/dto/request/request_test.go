package request

import (
	"encoding/json"
	"testing"
)

func TestReconcileBookingRequest_ResolveSessionReference(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		sessionID string
		paymentID string
		want      string
	}{
		{"body wins", " 123 ", "456", "789", "123"},
		{"session query", "", " 456 ", "789", "456"},
		{"mercado pago redirect", "  ", "", "789", "789"},
		{"nothing", "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ReconcileBookingRequest{SessionReference: tt.body}
			if got := r.ResolveSessionReference(tt.sessionID, tt.paymentID); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPaymentNotificationRequest_ToEntity(t *testing.T) {
	t.Run("webhook body with string id", func(t *testing.T) {
		var r PaymentNotificationRequest
		if err := json.Unmarshal([]byte(`{"type":"payment","action":"payment.updated","data":{"id":"123"}}`), &r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		n := r.ToEntity(NotificationQuery{})
		if n.Type != "payment" || n.Action != "payment.updated" || n.ResourceID != "123" {
			t.Fatalf("unexpected notification: %+v", n)
		}
	})

	t.Run("webhook body with numeric id", func(t *testing.T) {
		var r PaymentNotificationRequest
		if err := json.Unmarshal([]byte(`{"type":"payment","data":{"id":12345678901}}`), &r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := r.ToEntity(NotificationQuery{}); n.ResourceID != "12345678901" {
			t.Fatalf("unexpected resource id: %q", n.ResourceID)
		}
	})

	t.Run("legacy ipn query", func(t *testing.T) {
		n := PaymentNotificationRequest{}.ToEntity(NotificationQuery{Topic: "payment", ID: "555"})
		if n.Type != "payment" || n.ResourceID != "555" {
			t.Fatalf("unexpected notification: %+v", n)
		}
	})

	t.Run("invalid id type", func(t *testing.T) {
		var r PaymentNotificationRequest
		if err := json.Unmarshal([]byte(`{"data":{"id":{}}}`), &r); err == nil {
			t.Fatal("expected error")
		}
	})
}
