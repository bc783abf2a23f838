package entities

import (
	"testing"
	"time"
)

func TestMoney(t *testing.T) {
	cases := []struct {
		name    string
		in      Money
		decimal float64
		str     string
	}{
		{name: "total", in: 4500, decimal: 45, str: "45.00"},
		{name: "fee", in: 225, decimal: 2.25, str: "2.25"},
		{name: "net", in: 4275, decimal: 42.75, str: "42.75"},
		{name: "zero", in: 0, decimal: 0, str: "0.00"},
		{name: "negative", in: -105, decimal: -1.05, str: "-1.05"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Decimal(); got != tc.decimal {
				t.Fatalf("Decimal() = %v, want %v", got, tc.decimal)
			}
			if got := tc.in.String(); got != tc.str {
				t.Fatalf("String() = %q, want %q", got, tc.str)
			}
		})
	}

	t.Run("from decimal rounds to the nearest cent", func(t *testing.T) {
		if got := MoneyFromDecimal(45); got != 4500 {
			t.Fatalf("got %d", got)
		}
		if got := MoneyFromDecimal(19.99); got != 1999 {
			t.Fatalf("got %d", got)
		}
		if got := MoneyFromDecimal(0.1 + 0.2); got != 30 {
			t.Fatalf("got %d", got)
		}
	})
}

func TestNaturalKey(t *testing.T) {
	start := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)

	t.Run("normalizes email and time", func(t *testing.T) {
		local := start.In(time.FixedZone("BRT", -3*60*60)).Add(300 * time.Millisecond)
		a := NewNaturalKey("T1", "S1", "ST1", " A@X.com ", local)
		b := NewNaturalKey("T1", "S1", "ST1", "a@x.com", start)
		if a.String() != b.String() || !a.StartTime.Equal(b.StartTime) {
			t.Fatalf("expected equal keys, got %+v and %+v", a, b)
		}
		if a.String() != "2:T1|2:S1|3:ST1|7:a@x.com|20:2025-01-10T10:00:00Z" {
			t.Fatalf("unexpected key string %q", a.String())
		}
	})

	t.Run("booking and metadata agree", func(t *testing.T) {
		b := Booking{TenantID: "T1", ServiceID: "S1", StaffID: "ST1", ClientEmail: "a@x.com", StartTime: start}
		m := SessionMetadata{TenantID: "T1", ServiceID: "S1", StaffID: "ST1", ClientEmail: "A@x.com", StartTime: start}
		if b.NaturalKey().String() != m.NaturalKey().String() {
			t.Fatalf("expected booking and metadata keys to match")
		}
	})

	t.Run("separator inside ids does not collide", func(t *testing.T) {
		a := NewNaturalKey("t1", "s1|st1", "x", "a@x.com", start)
		b := NewNaturalKey("t1|s1", "st1", "x", "a@x.com", start)
		if a.String() == b.String() {
			t.Fatalf("expected distinct keys, both rendered %q", a.String())
		}
	})

	t.Run("different staff yields different key", func(t *testing.T) {
		a := NewNaturalKey("T1", "S1", "ST1", "a@x.com", start)
		b := NewNaturalKey("T1", "S1", "ST2", "a@x.com", start)
		if a.String() == b.String() {
			t.Fatalf("expected different keys")
		}
	})
}

func TestBookingDetails_StaffFullName(t *testing.T) {
	cases := []struct {
		staff Staff
		want  string
	}{
		{Staff{FirstName: "Ana", LastName: "Silva"}, "Ana Silva"},
		{Staff{FirstName: "Ana"}, "Ana"},
		{Staff{LastName: "Silva"}, "Silva"},
	}
	for _, tc := range cases {
		d := BookingDetails{Staff: tc.staff}
		if got := d.StaffFullName(); got != tc.want {
			t.Fatalf("got %q want %q", got, tc.want)
		}
	}
}
