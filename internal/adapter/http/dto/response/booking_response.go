package response

import (
	"time"

	"booking_reconciliation/internal/domain/entities"
)

// Amounts are rendered in major units (4500 -> 45.00); storage keeps minor units.

type ServiceResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Duration int     `json:"duration"`
	Price    float64 `json:"price"`
}

type StaffResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type TenantResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type PaymentResponse struct {
	ID            string  `json:"id"`
	Amount        float64 `json:"amount"`
	FeeAmount     float64 `json:"feeAmount"`
	NetAmount     float64 `json:"netAmount"`
	Status        string  `json:"status"`
	TransactionID string  `json:"transactionId"`
}

type BookingDetailsResponse struct {
	ID          string          `json:"id"`
	StartTime   time.Time       `json:"startTime"`
	EndTime     time.Time       `json:"endTime"`
	Status      string          `json:"status"`
	TotalAmount float64         `json:"totalAmount"`
	Currency    string          `json:"currency"`
	ClientName  string          `json:"clientName"`
	ClientEmail string          `json:"clientEmail"`
	ClientPhone string          `json:"clientPhone"`
	Service     ServiceResponse `json:"service"`
	Staff       StaffResponse   `json:"staff"`
	Tenant      TenantResponse  `json:"tenant"`
	Payment     PaymentResponse `json:"payment"`
}

type BookingEnvelope struct {
	Booking BookingDetailsResponse `json:"booking"`
}

type IgnoredNotificationResponse struct {
	Ignored bool `json:"ignored" example:"true"`
}

func FromBookingDetails(d entities.BookingDetails) BookingDetailsResponse {
	return BookingDetailsResponse{
		ID:          d.Booking.ID,
		StartTime:   d.Booking.StartTime.UTC(),
		EndTime:     d.Booking.EndTime.UTC(),
		Status:      string(d.Booking.Status),
		TotalAmount: d.Booking.TotalAmount.Decimal(),
		Currency:    d.Booking.Currency,
		ClientName:  d.Booking.ClientName,
		ClientEmail: d.Booking.ClientEmail,
		ClientPhone: d.Booking.ClientPhone,
		Service: ServiceResponse{
			ID:       d.Service.ID,
			Name:     d.Service.Name,
			Duration: d.Service.DurationMinutes,
			Price:    d.Service.Price.Decimal(),
		},
		Staff: StaffResponse{
			ID:        d.Staff.ID,
			FirstName: d.Staff.FirstName,
			LastName:  d.Staff.LastName,
		},
		Tenant: TenantResponse{
			ID:      d.Tenant.ID,
			Name:    d.Tenant.Name,
			Address: d.Tenant.Address,
			Phone:   d.Tenant.Phone,
			Email:   d.Tenant.Email,
		},
		Payment: PaymentResponse{
			ID:            d.Payment.ID,
			Amount:        d.Payment.Amount.Decimal(),
			FeeAmount:     d.Payment.FeeAmount.Decimal(),
			NetAmount:     d.Payment.NetAmount.Decimal(),
			Status:        string(d.Payment.Status),
			TransactionID: d.Payment.TransactionID,
		},
	}
}

func NewBookingEnvelope(d entities.BookingDetails) BookingEnvelope {
	return BookingEnvelope{Booking: FromBookingDetails(d)}
}
