package request

import (
	"bytes"
	"encoding/json"
	"strings"

	"booking_reconciliation/internal/domain/entities"
)

// NotificationID accepts Mercado Pago ids sent either as a JSON string or a JSON number.
type NotificationID string

func (id *NotificationID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = NotificationID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = NotificationID(n.String())
	return nil
}

type PaymentNotificationData struct {
	ID NotificationID `json:"id" swaggertype:"string" example:"1234567890"`
}

// PaymentNotificationRequest is the Mercado Pago webhook body. Legacy IPN deliveries carry
// `topic` and `id` as query parameters instead.
type PaymentNotificationRequest struct {
	Type   string                  `json:"type" example:"payment"`
	Topic  string                  `json:"topic"`
	Action string                  `json:"action" example:"payment.updated"`
	Data   PaymentNotificationData `json:"data"`
}

// NotificationQuery holds the query-string variants Mercado Pago uses for the same notification.
type NotificationQuery struct {
	Type   string
	Topic  string
	DataID string
	ID     string
}

func (r PaymentNotificationRequest) ToEntity(q NotificationQuery) entities.PaymentNotification {
	return entities.PaymentNotification{
		Type:       firstNonEmpty(r.Type, r.Topic, q.Type, q.Topic),
		Action:     strings.TrimSpace(r.Action),
		ResourceID: firstNonEmpty(string(r.Data.ID), q.DataID, q.ID),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
