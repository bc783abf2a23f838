package entities

import "time"

// GatewaySession is the gateway's view of a finished checkout.
//
// TransactionID is the primary idempotency key; Metadata carries the booking the client
// intended to pay for and yields the fallback NaturalKey.
type GatewaySession struct {
	Reference     string
	Paid          bool
	Status        string
	TransactionID string
	AmountTotal   Money
	Currency      string
	Metadata      SessionMetadata
}

// SessionMetadata is the metadata bag attached at checkout time. Fee and net amounts are
// in minor units, like AmountTotal.
type SessionMetadata struct {
	TenantID    string
	ServiceID   string
	StaffID     string
	ClientName  string
	ClientEmail string
	ClientPhone string
	StartTime   time.Time
	EndTime     time.Time
	FeeAmount   Money
	NetAmount   Money
}

func (m SessionMetadata) NaturalKey() NaturalKey {
	return NewNaturalKey(m.TenantID, m.ServiceID, m.StaffID, m.ClientEmail, m.StartTime)
}

// PaymentNotification is a server-pushed gateway event. Only payment topics are
// reconciled; ResourceID is the gateway payment id and doubles as the session reference.
type PaymentNotification struct {
	Type       string
	Action     string
	ResourceID string
}
