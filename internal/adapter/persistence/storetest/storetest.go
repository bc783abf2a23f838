// Package storetest holds the behaviour every booking store must share, run against the
// memory, DynamoDB and Postgres implementations.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/usecase/interfaces"

	"github.com/google/uuid"
)

type Repos struct {
	Bookings interfaces.IBookingRepository
	Payments interfaces.IPaymentRepository
	Catalog  interfaces.ICatalogRepository
	// SeedCatalog stores one tenant with its service and staff member.
	SeedCatalog func(t *testing.T, tenant entities.Tenant, service entities.Service, staff entities.Staff)
}

func newBooking(tenantID string) entities.Booking {
	now := time.Now().UTC().Truncate(time.Second)
	return entities.Booking{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		ServiceID:   "svc-1",
		StaffID:     "staff-1",
		ClientName:  "Jane Doe",
		ClientEmail: "jane@example.com",
		StartTime:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC),
		TotalAmount: 4500,
		Currency:    "BRL",
		Status:      entities.BookingStatusConfirmed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func newPayment(bookingID string) entities.Payment {
	return entities.Payment{
		ID:            uuid.NewString(),
		BookingID:     bookingID,
		Amount:        4500,
		FeeAmount:     225,
		NetAmount:     4275,
		Currency:      "BRL",
		Status:        entities.PaymentStatusCompleted,
		TransactionID: "pi_" + uuid.NewString(),
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
}

// Run exercises newRepos with the uniqueness and lookup rules reconciliation relies on.
// Every subtest uses a fresh tenant id so stores may be shared between subtests.
func Run(t *testing.T, newRepos func(t *testing.T) Repos) {
	ctx := context.Background()

	t.Run("booking round trip", func(t *testing.T) {
		r := newRepos(t)
		b := newBooking(uuid.NewString())
		b.ClientEmail = " Jane@Example.COM"
		if _, err := r.Bookings.Create(ctx, b); err != nil {
			t.Fatalf("create: %v", err)
		}
		got, err := r.Bookings.GetByID(ctx, b.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != b.ID || got.TotalAmount != 4500 || got.ClientEmail != "jane@example.com" || !got.StartTime.Equal(b.StartTime) {
			t.Fatalf("unexpected booking: %+v", got)
		}
		byKey, err := r.Bookings.GetByNaturalKey(ctx, b.NaturalKey())
		if err != nil || byKey.ID != b.ID {
			t.Fatalf("natural key lookup: %+v err=%v", byKey, err)
		}
	})

	t.Run("missing rows return zero values", func(t *testing.T) {
		r := newRepos(t)
		b, err := r.Bookings.GetByID(ctx, uuid.NewString())
		if err != nil || b.ID != "" {
			t.Fatalf("expected zero booking, got %+v err=%v", b, err)
		}
		b, err = r.Bookings.GetByNaturalKey(ctx, newBooking(uuid.NewString()).NaturalKey())
		if err != nil || b.ID != "" {
			t.Fatalf("expected zero booking, got %+v err=%v", b, err)
		}
		p, err := r.Payments.GetByTransactionID(ctx, "pi_"+uuid.NewString())
		if err != nil || p.ID != "" {
			t.Fatalf("expected zero payment, got %+v err=%v", p, err)
		}
	})

	t.Run("natural key is unique", func(t *testing.T) {
		r := newRepos(t)
		first := newBooking(uuid.NewString())
		if _, err := r.Bookings.Create(ctx, first); err != nil {
			t.Fatalf("create: %v", err)
		}
		second := first
		second.ID = uuid.NewString()
		second.ClientEmail = "JANE@example.com"
		second.StartTime = first.StartTime.Add(300 * time.Millisecond)
		if _, err := r.Bookings.Create(ctx, second); !errors.Is(err, interfaces.ErrNaturalKeyConflict) {
			t.Fatalf("expected ErrNaturalKeyConflict, got %v", err)
		}
	})

	t.Run("ids containing the key separator stay distinct", func(t *testing.T) {
		r := newRepos(t)
		tenantID := uuid.NewString()
		first := newBooking(tenantID)
		first.ServiceID = "svc|staff-1"
		first.StaffID = "x"
		second := newBooking(tenantID + "|svc")
		second.ServiceID = "staff-1"
		second.StaffID = "x"

		if _, err := r.Bookings.Create(ctx, first); err != nil {
			t.Fatalf("create first: %v", err)
		}
		if _, err := r.Bookings.Create(ctx, second); err != nil {
			t.Fatalf("create second: %v", err)
		}
		got, err := r.Bookings.GetByNaturalKey(ctx, second.NaturalKey())
		if err != nil || got.ID != second.ID || got.TenantID != second.TenantID {
			t.Fatalf("expected second booking, got %+v err=%v", got, err)
		}
		got, err = r.Bookings.GetByNaturalKey(ctx, first.NaturalKey())
		if err != nil || got.ID != first.ID {
			t.Fatalf("expected first booking, got %+v err=%v", got, err)
		}
	})

	t.Run("payment transaction and booking are unique", func(t *testing.T) {
		r := newRepos(t)
		b := newBooking(uuid.NewString())
		if _, err := r.Bookings.Create(ctx, b); err != nil {
			t.Fatalf("create booking: %v", err)
		}
		p := newPayment(b.ID)
		if _, err := r.Payments.Create(ctx, p); err != nil {
			t.Fatalf("create payment: %v", err)
		}

		sameTxn := newPayment(uuid.NewString())
		sameTxn.TransactionID = p.TransactionID
		if _, err := r.Payments.Create(ctx, sameTxn); !errors.Is(err, interfaces.ErrPaymentConflict) {
			t.Fatalf("expected ErrPaymentConflict for transaction, got %v", err)
		}
		sameBooking := newPayment(b.ID)
		if _, err := r.Payments.Create(ctx, sameBooking); !errors.Is(err, interfaces.ErrPaymentConflict) {
			t.Fatalf("expected ErrPaymentConflict for booking, got %v", err)
		}

		byTxn, err := r.Payments.GetByTransactionID(ctx, p.TransactionID)
		if err != nil || byTxn.ID != p.ID || byTxn.FeeAmount != 225 || byTxn.NetAmount != 4275 {
			t.Fatalf("lookup by transaction: %+v err=%v", byTxn, err)
		}
		byBooking, err := r.Payments.GetByBookingID(ctx, b.ID)
		if err != nil || byBooking.ID != p.ID {
			t.Fatalf("lookup by booking: %+v err=%v", byBooking, err)
		}
	})

	t.Run("concurrent creates have one winner", func(t *testing.T) {
		r := newRepos(t)
		base := newBooking(uuid.NewString())
		const writers = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				b := base
				b.ID = uuid.NewString()
				_, err := r.Bookings.Create(ctx, b)
				if err == nil {
					mu.Lock()
					winners++
					mu.Unlock()
					return
				}
				if !errors.Is(err, interfaces.ErrNaturalKeyConflict) {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()
		if winners != 1 {
			t.Fatalf("expected exactly one winner, got %d", winners)
		}
	})

	t.Run("catalog is scoped by tenant", func(t *testing.T) {
		r := newRepos(t)
		tenantID := uuid.NewString()
		r.SeedCatalog(t,
			entities.Tenant{ID: tenantID, Name: "Studio", Email: "studio@example.com"},
			entities.Service{ID: "svc-1", TenantID: tenantID, Name: "Cut", DurationMinutes: 60, Price: 4500},
			entities.Staff{ID: "staff-1", TenantID: tenantID, FirstName: "Ana", LastName: "Lima"},
		)

		tenant, err := r.Catalog.GetTenant(ctx, tenantID)
		if err != nil || tenant.Name != "Studio" {
			t.Fatalf("tenant: %+v err=%v", tenant, err)
		}
		svc, err := r.Catalog.GetService(ctx, tenantID, "svc-1")
		if err != nil || svc.Price != 4500 || svc.DurationMinutes != 60 {
			t.Fatalf("service: %+v err=%v", svc, err)
		}
		other, err := r.Catalog.GetService(ctx, uuid.NewString(), "svc-1")
		if err != nil || other.ID != "" {
			t.Fatalf("service resolved under another tenant: %+v err=%v", other, err)
		}
		staff, err := r.Catalog.GetStaff(ctx, tenantID, "staff-1")
		if err != nil || staff.FirstName != "Ana" {
			t.Fatalf("staff: %+v err=%v", staff, err)
		}
	})
}
