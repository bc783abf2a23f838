package entities

// BookingDetails is the reconciled Booking+Payment pair together with the catalog
// entries needed to present it to the client or in a confirmation email.
type BookingDetails struct {
	Booking Booking
	Payment Payment
	Tenant  Tenant
	Service Service
	Staff   Staff
}

func (d BookingDetails) StaffFullName() string {
	switch {
	case d.Staff.FirstName == "":
		return d.Staff.LastName
	case d.Staff.LastName == "":
		return d.Staff.FirstName
	default:
		return d.Staff.FirstName + " " + d.Staff.LastName
	}
}
