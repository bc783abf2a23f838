package request

import "strings"

// ReconcileBookingRequest is sent by the front-end after the checkout redirect.
type ReconcileBookingRequest struct {
	SessionReference string `json:"sessionReference" example:"1234567890"`
}

// ResolveSessionReference prefers the body and falls back to the redirect query values
// (session_id, or payment_id as appended by Mercado Pago back_urls).
func (r ReconcileBookingRequest) ResolveSessionReference(sessionID, paymentID string) string {
	if v := strings.TrimSpace(r.SessionReference); v != "" {
		return v
	}
	if v := strings.TrimSpace(sessionID); v != "" {
		return v
	}
	return strings.TrimSpace(paymentID)
}
