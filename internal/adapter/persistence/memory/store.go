package memory

import (
	"context"
	"sync"

	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/usecase/interfaces"
)

// Store keeps bookings, payments and the catalog in process memory.
//
// Each create checks its uniqueness constraints and inserts under one lock, which gives the
// same atomic-constraint guarantee the DynamoDB and Postgres stores get from the database.
// Used by tests and by STORE_DRIVER=memory for local runs.
type Store struct {
	mu sync.RWMutex

	bookings     map[string]entities.Booking
	bookingByKey map[string]string

	payments         map[string]entities.Payment
	paymentByTxn     map[string]string
	paymentByBooking map[string]string

	tenants  map[string]entities.Tenant
	services map[string]entities.Service
	staff    map[string]entities.Staff
}

func NewStore() *Store {
	return &Store{
		bookings:         map[string]entities.Booking{},
		bookingByKey:     map[string]string{},
		payments:         map[string]entities.Payment{},
		paymentByTxn:     map[string]string{},
		paymentByBooking: map[string]string{},
		tenants:          map[string]entities.Tenant{},
		services:         map[string]entities.Service{},
		staff:            map[string]entities.Staff{},
	}
}

func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }
func (s *Store) Payments() *PaymentRepository { return &PaymentRepository{s: s} }
func (s *Store) Catalog() *CatalogRepository  { return &CatalogRepository{s: s} }

func (s *Store) PutTenant(t entities.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.ID] = t
}

func (s *Store) PutService(svc entities.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[scoped(svc.TenantID, svc.ID)] = svc
}

func (s *Store) PutStaff(st entities.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff[scoped(st.TenantID, st.ID)] = st
}

func (s *Store) BookingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bookings)
}

func (s *Store) PaymentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payments)
}

// Ping always succeeds; it lets the health check treat every store the same way.
func (s *Store) Ping(context.Context) error { return nil }

func scoped(tenantID, id string) string { return tenantID + "/" + id }

type BookingRepository struct{ s *Store }

var _ interfaces.IBookingRepository = (*BookingRepository)(nil)

func (r *BookingRepository) Create(ctx context.Context, b entities.Booking) (entities.Booking, error) {
	if err := ctx.Err(); err != nil {
		return entities.Booking{}, err
	}
	b.ClientEmail = entities.NormalizeEmail(b.ClientEmail)
	b.StartTime = entities.NormalizeTime(b.StartTime)
	key := b.NaturalKey().String()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookingByKey[key]; ok {
		return entities.Booking{}, interfaces.ErrNaturalKeyConflict
	}
	if _, ok := r.s.bookings[b.ID]; ok {
		return entities.Booking{}, interfaces.ErrNaturalKeyConflict
	}
	r.s.bookings[b.ID] = b
	r.s.bookingByKey[key] = b.ID
	return b, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (entities.Booking, error) {
	if err := ctx.Err(); err != nil {
		return entities.Booking{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.bookings[id], nil
}

func (r *BookingRepository) GetByNaturalKey(ctx context.Context, key entities.NaturalKey) (entities.Booking, error) {
	if err := ctx.Err(); err != nil {
		return entities.Booking{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.bookingByKey[key.String()]
	if !ok {
		return entities.Booking{}, nil
	}
	return r.s.bookings[id], nil
}

type PaymentRepository struct{ s *Store }

var _ interfaces.IPaymentRepository = (*PaymentRepository)(nil)

func (r *PaymentRepository) Create(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	if err := ctx.Err(); err != nil {
		return entities.Payment{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.paymentByTxn[p.TransactionID]; ok {
		return entities.Payment{}, interfaces.ErrPaymentConflict
	}
	if _, ok := r.s.paymentByBooking[p.BookingID]; ok {
		return entities.Payment{}, interfaces.ErrPaymentConflict
	}
	if _, ok := r.s.payments[p.ID]; ok {
		return entities.Payment{}, interfaces.ErrPaymentConflict
	}
	r.s.payments[p.ID] = p
	r.s.paymentByTxn[p.TransactionID] = p.ID
	r.s.paymentByBooking[p.BookingID] = p.ID
	return p, nil
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (entities.Payment, error) {
	return r.lookup(ctx, func(s *Store) (string, bool) {
		id, ok := s.paymentByTxn[transactionID]
		return id, ok
	})
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (entities.Payment, error) {
	return r.lookup(ctx, func(s *Store) (string, bool) {
		id, ok := s.paymentByBooking[bookingID]
		return id, ok
	})
}

func (r *PaymentRepository) lookup(ctx context.Context, index func(*Store) (string, bool)) (entities.Payment, error) {
	if err := ctx.Err(); err != nil {
		return entities.Payment{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := index(r.s)
	if !ok {
		return entities.Payment{}, nil
	}
	return r.s.payments[id], nil
}

type CatalogRepository struct{ s *Store }

var _ interfaces.ICatalogRepository = (*CatalogRepository)(nil)

func (r *CatalogRepository) GetTenant(ctx context.Context, id string) (entities.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.tenants[id], ctx.Err()
}

func (r *CatalogRepository) GetService(ctx context.Context, tenantID, serviceID string) (entities.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.services[scoped(tenantID, serviceID)], ctx.Err()
}

func (r *CatalogRepository) GetStaff(ctx context.Context, tenantID, staffID string) (entities.Staff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.staff[scoped(tenantID, staffID)], ctx.Err()
}
