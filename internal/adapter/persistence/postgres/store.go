package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/usecase/interfaces"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const (
	bookingsNaturalKeyConstraint    = "bookings_natural_key"
	paymentsTransactionIDConstraint = "payments_transaction_id_key"
	paymentsBookingIDConstraint     = "payments_booking_id_key"
)

const schema = `
CREATE TABLE IF NOT EXISTS tenants (
	id      TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	phone   TEXT NOT NULL DEFAULT '',
	email   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS services (
	tenant_id        TEXT NOT NULL REFERENCES tenants(id),
	id               TEXT NOT NULL,
	name             TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL DEFAULT 0,
	price            BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (tenant_id, id)
);

CREATE TABLE IF NOT EXISTS staff (
	tenant_id  TEXT NOT NULL REFERENCES tenants(id),
	id         TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (tenant_id, id)
);

CREATE TABLE IF NOT EXISTS bookings (
	id           TEXT PRIMARY KEY,
	tenant_id    TEXT NOT NULL,
	service_id   TEXT NOT NULL,
	staff_id     TEXT NOT NULL,
	client_name  TEXT NOT NULL,
	client_email TEXT NOT NULL,
	client_phone TEXT NOT NULL DEFAULT '',
	start_time   TIMESTAMPTZ NOT NULL,
	end_time     TIMESTAMPTZ NOT NULL,
	total_amount BIGINT NOT NULL,
	currency     TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT bookings_natural_key UNIQUE (tenant_id, service_id, staff_id, client_email, start_time)
);

CREATE TABLE IF NOT EXISTS payments (
	id                TEXT PRIMARY KEY,
	booking_id        TEXT NOT NULL REFERENCES bookings(id),
	amount            BIGINT NOT NULL,
	fee_amount        BIGINT NOT NULL DEFAULT 0,
	net_amount        BIGINT NOT NULL DEFAULT 0,
	currency          TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL,
	transaction_id    TEXT NOT NULL,
	session_reference TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT payments_transaction_id_key UNIQUE (transaction_id),
	CONSTRAINT payments_booking_id_key UNIQUE (booking_id)
);
`

// Store keeps bookings, payments and the catalog in Postgres. Uniqueness is enforced by
// the constraints in schema; a violated constraint is reported as the matching sentinel.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Bookings() *BookingRepository { return &BookingRepository{db: s.db} }
func (s *Store) Payments() *PaymentRepository { return &PaymentRepository{db: s.db} }
func (s *Store) Catalog() *CatalogRepository  { return &CatalogRepository{db: s.db} }

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Printf("[store][postgres] schema applied")
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// violatedConstraint returns the constraint name of a unique violation, "" otherwise.
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}

type BookingRepository struct {
	db *sql.DB
}

var _ interfaces.IBookingRepository = (*BookingRepository)(nil)

const bookingColumns = `id, tenant_id, service_id, staff_id, client_name, client_email, client_phone,
	start_time, end_time, total_amount, currency, status, created_at, updated_at`

func (r *BookingRepository) Create(ctx context.Context, b entities.Booking) (entities.Booking, error) {
	b.ClientEmail = entities.NormalizeEmail(b.ClientEmail)
	b.StartTime = entities.NormalizeTime(b.StartTime)
	b.EndTime = b.EndTime.UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}

	query := `INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.TenantID, b.ServiceID, b.StaffID, b.ClientName, b.ClientEmail, b.ClientPhone,
		b.StartTime, b.EndTime, int64(b.TotalAmount), b.Currency, string(b.Status), b.CreatedAt, b.UpdatedAt,
	)
	switch violatedConstraint(err) {
	case "":
	case bookingsNaturalKeyConstraint, "bookings_pkey":
		return entities.Booking{}, interfaces.ErrNaturalKeyConflict
	}
	if err != nil {
		return entities.Booking{}, err
	}
	return b, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (entities.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

func (r *BookingRepository) GetByNaturalKey(ctx context.Context, key entities.NaturalKey) (entities.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE tenant_id = $1 AND service_id = $2 AND staff_id = $3 AND client_email = $4 AND start_time = $5`,
		key.TenantID, key.ServiceID, key.StaffID, key.ClientEmail, key.StartTime,
	)
	return scanBooking(row)
}

func scanBooking(row *sql.Row) (entities.Booking, error) {
	var (
		b      entities.Booking
		total  int64
		status string
	)
	err := row.Scan(&b.ID, &b.TenantID, &b.ServiceID, &b.StaffID, &b.ClientName, &b.ClientEmail, &b.ClientPhone,
		&b.StartTime, &b.EndTime, &total, &b.Currency, &status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Booking{}, nil
	}
	if err != nil {
		return entities.Booking{}, err
	}
	b.TotalAmount = entities.Money(total)
	b.Status = entities.BookingStatus(status)
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

type PaymentRepository struct {
	db *sql.DB
}

var _ interfaces.IPaymentRepository = (*PaymentRepository)(nil)

const paymentColumns = `id, booking_id, amount, fee_amount, net_amount, currency, status,
	transaction_id, session_reference, created_at`

func (r *PaymentRepository) Create(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.BookingID, int64(p.Amount), int64(p.FeeAmount), int64(p.NetAmount), p.Currency, string(p.Status),
		p.TransactionID, p.SessionReference, p.CreatedAt,
	)
	switch violatedConstraint(err) {
	case "":
	case paymentsTransactionIDConstraint, paymentsBookingIDConstraint, "payments_pkey":
		return entities.Payment{}, interfaces.ErrPaymentConflict
	}
	if err != nil {
		return entities.Payment{}, err
	}
	return p, nil
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (entities.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE transaction_id = $1`, transactionID)
	return scanPayment(row)
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (entities.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id = $1`, bookingID)
	return scanPayment(row)
}

func scanPayment(row *sql.Row) (entities.Payment, error) {
	var (
		p                entities.Payment
		amount, fee, net int64
		status           string
	)
	err := row.Scan(&p.ID, &p.BookingID, &amount, &fee, &net, &p.Currency, &status,
		&p.TransactionID, &p.SessionReference, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Payment{}, nil
	}
	if err != nil {
		return entities.Payment{}, err
	}
	p.Amount = entities.Money(amount)
	p.FeeAmount = entities.Money(fee)
	p.NetAmount = entities.Money(net)
	p.Status = entities.PaymentStatus(status)
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

type CatalogRepository struct {
	db *sql.DB
}

var _ interfaces.ICatalogRepository = (*CatalogRepository)(nil)

func (r *CatalogRepository) GetTenant(ctx context.Context, id string) (entities.Tenant, error) {
	var t entities.Tenant
	err := r.db.QueryRowContext(ctx, `SELECT id, name, address, phone, email FROM tenants WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Address, &t.Phone, &t.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Tenant{}, nil
	}
	return t, err
}

func (r *CatalogRepository) GetService(ctx context.Context, tenantID, serviceID string) (entities.Service, error) {
	var (
		s     entities.Service
		price int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, duration_minutes, price FROM services WHERE tenant_id = $1 AND id = $2`,
		tenantID, serviceID,
	).Scan(&s.ID, &s.TenantID, &s.Name, &s.DurationMinutes, &price)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Service{}, nil
	}
	s.Price = entities.Money(price)
	return s, err
}

func (r *CatalogRepository) GetStaff(ctx context.Context, tenantID, staffID string) (entities.Staff, error) {
	var s entities.Staff
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, first_name, last_name FROM staff WHERE tenant_id = $1 AND id = $2`,
		tenantID, staffID,
	).Scan(&s.ID, &s.TenantID, &s.FirstName, &s.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Staff{}, nil
	}
	return s, err
}

func (r *CatalogRepository) PutTenant(ctx context.Context, t entities.Tenant) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO tenants (id, name, address, phone, email) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address, phone = EXCLUDED.phone, email = EXCLUDED.email`,
		t.ID, t.Name, t.Address, t.Phone, t.Email)
	return err
}

func (r *CatalogRepository) PutService(ctx context.Context, s entities.Service) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO services (tenant_id, id, name, duration_minutes, price) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, id) DO UPDATE SET name = EXCLUDED.name, duration_minutes = EXCLUDED.duration_minutes, price = EXCLUDED.price`,
		s.TenantID, s.ID, s.Name, s.DurationMinutes, int64(s.Price))
	return err
}

func (r *CatalogRepository) PutStaff(ctx context.Context, s entities.Staff) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO staff (tenant_id, id, first_name, last_name) VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, id) DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name`,
		s.TenantID, s.ID, s.FirstName, s.LastName)
	return err
}
