package entities

import (
	"strconv"
	"strings"
	"time"
)

// BookingStatus represents the lifecycle of an appointment booking.
//
// Domain notes:
//   - Reconciliation only ever creates bookings as CONFIRMED.
//   - COMPLETED and CANCELLED are set later by the completion/cancellation flows.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking is an appointment slot paid through the payment gateway.
//
// Storage model:
//   - PK: id
//   - unique: (tenant_id, service_id, staff_id, client_email, start_time), see NaturalKey
//
// Monetary representation:
//   - TotalAmount is kept in minor units (cents).
type Booking struct {
	ID          string        `json:"id"`
	TenantID    string        `json:"tenant_id"`
	ServiceID   string        `json:"service_id"`
	StaffID     string        `json:"staff_id"`
	ClientName  string        `json:"client_name"`
	ClientEmail string        `json:"client_email"`
	ClientPhone string        `json:"client_phone,omitempty"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	TotalAmount Money         `json:"total_amount"`
	Currency    string        `json:"currency"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (b Booking) NaturalKey() NaturalKey {
	return NewNaturalKey(b.TenantID, b.ServiceID, b.StaffID, b.ClientEmail, b.StartTime)
}

// NaturalKey identifies a booking before any gateway transaction id is attached to it.
// Values are normalized so the same appointment always yields the same key.
type NaturalKey struct {
	TenantID    string
	ServiceID   string
	StaffID     string
	ClientEmail string
	StartTime   time.Time
}

func NewNaturalKey(tenantID, serviceID, staffID, clientEmail string, startTime time.Time) NaturalKey {
	return NaturalKey{
		TenantID:    strings.TrimSpace(tenantID),
		ServiceID:   strings.TrimSpace(serviceID),
		StaffID:     strings.TrimSpace(staffID),
		ClientEmail: NormalizeEmail(clientEmail),
		StartTime:   NormalizeTime(startTime),
	}
}

// String renders the key as a single opaque value, used where the store needs one
// attribute to carry the uniqueness guard. Each component is length-prefixed so ids
// containing the separator cannot make two different tuples render the same.
func (k NaturalKey) String() string {
	parts := []string{
		k.TenantID,
		k.ServiceID,
		k.StaffID,
		k.ClientEmail,
		k.StartTime.Format(time.RFC3339),
	}
	var sb strings.Builder
	for i, p := range parts {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(strconv.Itoa(len(p)))
		sb.WriteByte(':')
		sb.WriteString(p)
	}
	return sb.String()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeTime drops sub-second precision so every store compares start times the same way.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
