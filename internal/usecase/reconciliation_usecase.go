package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrPaymentNotConfirmed    = errors.New("payment not confirmed")
	ErrGatewayError           = errors.New("payment gateway error")
	ErrConflictRetryExhausted = errors.New("booking conflict retries exhausted")
	ErrPersistenceError       = errors.New("persistence error")
	ErrCatalogNotFound        = errors.New("catalog entry not found")
	ErrBookingNotFound        = errors.New("booking not found")
)

const (
	DefaultMaxConflictRetries = 3
	DefaultConflictBackoff    = 25 * time.Millisecond
)

const paymentNotificationType = "payment"

var tracer = otel.Tracer("booking_reconciliation/internal/usecase")

// IReconciliationUseCase turns a completed gateway payment into exactly one Booking+Payment
// pair.
//
// Reconcile may be called any number of times for the same reference, concurrently and in
// any order (client redirect racing the gateway webhook). Every call converges on the same
// pair; duplicates are prevented only by the store's uniqueness constraints.
type IReconciliationUseCase interface {
	Reconcile(ctx context.Context, sessionReference string) (entities.BookingDetails, error)
	GetBooking(ctx context.Context, id string) (entities.BookingDetails, error)
	HandlePaymentNotification(ctx context.Context, n entities.PaymentNotification) (entities.BookingDetails, bool, error)
}

type ReconciliationUseCase struct {
	bookings interfaces.IBookingRepository
	payments interfaces.IPaymentRepository
	catalog  interfaces.ICatalogRepository
	gateway  interfaces.IPaymentGateway
	notifier interfaces.INotificationDispatcher

	maxConflictRetries int
	conflictBackoff    time.Duration
	now                func() time.Time
	newID              func() string
}

var _ IReconciliationUseCase = (*ReconciliationUseCase)(nil)

type Option func(*ReconciliationUseCase)

// WithMaxConflictRetries bounds how many times a natural-key conflict on booking creation
// sends the flow back to the fallback lookup. Negative values are treated as zero.
func WithMaxConflictRetries(n int) Option {
	return func(u *ReconciliationUseCase) {
		if n < 0 {
			n = 0
		}
		u.maxConflictRetries = n
	}
}

// WithConflictBackoff sets the base delay between conflict retries; attempt k waits k*d.
func WithConflictBackoff(d time.Duration) Option {
	return func(u *ReconciliationUseCase) {
		if d < 0 {
			d = 0
		}
		u.conflictBackoff = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *ReconciliationUseCase) {
		if now != nil {
			u.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(u *ReconciliationUseCase) {
		if newID != nil {
			u.newID = newID
		}
	}
}

func NewReconciliationUseCase(
	bookings interfaces.IBookingRepository,
	payments interfaces.IPaymentRepository,
	catalog interfaces.ICatalogRepository,
	gateway interfaces.IPaymentGateway,
	notifier interfaces.INotificationDispatcher,
	opts ...Option,
) *ReconciliationUseCase {
	u := &ReconciliationUseCase{
		bookings:           bookings,
		payments:           payments,
		catalog:            catalog,
		gateway:            gateway,
		notifier:           notifier,
		maxConflictRetries: DefaultMaxConflictRetries,
		conflictBackoff:    DefaultConflictBackoff,
		now:                func() time.Time { return time.Now().UTC() },
		newID:              func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type catalogEntries struct {
	tenant  entities.Tenant
	service entities.Service
	staff   entities.Staff
}

func (u *ReconciliationUseCase) Reconcile(ctx context.Context, sessionReference string) (entities.BookingDetails, error) {
	ref := strings.TrimSpace(sessionReference)
	ctx, span := tracer.Start(ctx, "Reconcile", trace.WithAttributes(attribute.String("session.reference", ref)))
	defer span.End()

	log.Printf("[reconcile][usecase] start session_reference=%q", ref)
	if ref == "" {
		log.Printf("[reconcile][usecase] invalid session reference (empty)")
		return entities.BookingDetails{}, failSpan(span, ErrInvalidRequest)
	}
	if u.gateway == nil || u.bookings == nil || u.payments == nil || u.catalog == nil {
		return entities.BookingDetails{}, failSpan(span, errors.New("reconciliation dependencies not configured"))
	}

	session, err := u.gateway.GetSession(ctx, ref)
	if errors.Is(err, interfaces.ErrMalformedMetadata) {
		log.Printf("[reconcile][usecase] malformed metadata session_reference=%s err=%v", ref, err)
		return entities.BookingDetails{}, failSpan(span, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
	}
	if err != nil {
		log.Printf("[reconcile][usecase] gateway lookup failed session_reference=%s err=%v", ref, err)
		return entities.BookingDetails{}, failSpan(span, fmt.Errorf("%w: %w", ErrGatewayError, err))
	}
	if !session.Paid {
		log.Printf("[reconcile][usecase] payment not confirmed session_reference=%s status=%s", ref, session.Status)
		return entities.BookingDetails{}, failSpan(span, ErrPaymentNotConfirmed)
	}
	session.TransactionID = strings.TrimSpace(session.TransactionID)
	if session.TransactionID == "" {
		log.Printf("[reconcile][usecase] paid session without transaction id session_reference=%s", ref)
		return entities.BookingDetails{}, failSpan(span, fmt.Errorf("%w: session %s has no transaction id", ErrGatewayError, ref))
	}
	if session.Reference == "" {
		session.Reference = ref
	}
	span.SetAttributes(attribute.String("payment.transaction_id", session.TransactionID))

	if err := requireCatalogIDs(session.Metadata); err != nil {
		log.Printf("[reconcile][usecase] unresolvable metadata session_reference=%s err=%v", ref, err)
		return entities.BookingDetails{}, failSpan(span, fmt.Errorf("%w: %w", ErrCatalogNotFound, err))
	}
	if err := validateMetadata(session); err != nil {
		log.Printf("[reconcile][usecase] invalid metadata session_reference=%s err=%v", ref, err)
		return entities.BookingDetails{}, failSpan(span, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
	}

	booking, payment, cat, err := u.materialize(ctx, session)
	if err != nil {
		return entities.BookingDetails{}, failSpan(span, err)
	}
	if cat == nil {
		resolved, err := u.resolveCatalog(ctx, booking.TenantID, booking.ServiceID, booking.StaffID)
		if err != nil {
			return entities.BookingDetails{}, failSpan(span, err)
		}
		cat = &resolved
	}

	details := entities.BookingDetails{
		Booking: booking,
		Payment: payment,
		Tenant:  cat.tenant,
		Service: cat.service,
		Staff:   cat.staff,
	}
	span.SetAttributes(attribute.String("booking.id", booking.ID))
	u.notify(ctx, details)

	log.Printf("[reconcile][usecase] done session_reference=%s booking_id=%s payment_id=%s", ref, booking.ID, payment.ID)
	return details, nil
}

// materialize finds or creates the pair for a paid session. cat is non-nil only when the
// creation path already resolved the catalog.
func (u *ReconciliationUseCase) materialize(ctx context.Context, session entities.GatewaySession) (entities.Booking, entities.Payment, *catalogEntries, error) {
	booking, payment, err := u.findByTransaction(ctx, session.TransactionID)
	if err != nil {
		return entities.Booking{}, entities.Payment{}, nil, err
	}
	if booking.ID != "" {
		log.Printf("[reconcile][usecase] found by transaction transaction_id=%s booking_id=%s", session.TransactionID, booking.ID)
		return booking, payment, nil, nil
	}

	key := session.Metadata.NaturalKey()
	var cat *catalogEntries
	for attempt := 0; attempt <= u.maxConflictRetries; attempt++ {
		if attempt > 0 {
			if err := u.backoff(ctx, attempt); err != nil {
				return entities.Booking{}, entities.Payment{}, nil, err
			}
		}

		existing, err := u.findByNaturalKey(ctx, key)
		if err != nil {
			return entities.Booking{}, entities.Payment{}, nil, err
		}
		if existing.ID != "" {
			log.Printf("[reconcile][usecase] found by natural key booking_id=%s attempt=%d", existing.ID, attempt)
			booking, payment, err := u.ensurePayment(ctx, existing, session)
			return booking, payment, cat, err
		}

		if cat == nil {
			resolved, err := u.resolveCatalog(ctx, session.Metadata.TenantID, session.Metadata.ServiceID, session.Metadata.StaffID)
			if err != nil {
				return entities.Booking{}, entities.Payment{}, nil, err
			}
			cat = &resolved
		}

		created, err := u.bookings.Create(ctx, u.newBooking(session))
		if errors.Is(err, interfaces.ErrNaturalKeyConflict) {
			log.Printf("[reconcile][usecase] natural key conflict key=%s attempt=%d", key, attempt)
			continue
		}
		if err != nil {
			log.Printf("[reconcile][usecase] booking create failed key=%s err=%v", key, err)
			return entities.Booking{}, entities.Payment{}, nil, fmt.Errorf("%w: %w", ErrPersistenceError, err)
		}
		log.Printf("[reconcile][usecase] booking created booking_id=%s", created.ID)
		booking, payment, err := u.ensurePayment(ctx, created, session)
		return booking, payment, cat, err
	}

	// The loop only ends on a conflict, so the winning booking is already committed.
	existing, err := u.findByNaturalKey(ctx, key)
	if err != nil {
		return entities.Booking{}, entities.Payment{}, nil, err
	}
	if existing.ID != "" {
		log.Printf("[reconcile][usecase] found by natural key after last conflict booking_id=%s", existing.ID)
		booking, payment, err := u.ensurePayment(ctx, existing, session)
		return booking, payment, cat, err
	}

	log.Printf("[reconcile][usecase] conflict retries exhausted key=%s retries=%d", key, u.maxConflictRetries)
	return entities.Booking{}, entities.Payment{}, nil, ErrConflictRetryExhausted
}

func (u *ReconciliationUseCase) findByNaturalKey(ctx context.Context, key entities.NaturalKey) (entities.Booking, error) {
	existing, err := u.bookings.GetByNaturalKey(ctx, key)
	if err != nil {
		log.Printf("[reconcile][usecase] natural key lookup failed key=%s err=%v", key, err)
		return entities.Booking{}, fmt.Errorf("%w: %w", ErrPersistenceError, err)
	}
	return existing, nil
}

func (u *ReconciliationUseCase) findByTransaction(ctx context.Context, transactionID string) (entities.Booking, entities.Payment, error) {
	payment, err := u.payments.GetByTransactionID(ctx, transactionID)
	if err != nil {
		log.Printf("[reconcile][usecase] transaction lookup failed transaction_id=%s err=%v", transactionID, err)
		return entities.Booking{}, entities.Payment{}, fmt.Errorf("%w: %w", ErrPersistenceError, err)
	}
	if payment.ID == "" {
		return entities.Booking{}, entities.Payment{}, nil
	}
	booking, err := u.bookings.GetByID(ctx, payment.BookingID)
	if err != nil {
		return entities.Booking{}, entities.Payment{}, fmt.Errorf("%w: %w", ErrPersistenceError, err)
	}
	if booking.ID == "" {
		log.Printf("[reconcile][usecase] payment references missing booking payment_id=%s booking_id=%s", payment.ID, payment.BookingID)
		return entities.Booking{}, entities.Payment{}, fmt.Errorf("%w: payment %s references missing booking %s", ErrPersistenceError, payment.ID, payment.BookingID)
	}
	return booking, payment, nil
}

// ensurePayment returns the payment attached to booking, creating it when absent. Losing a
// create race re-reads whatever the winner wrote.
func (u *ReconciliationUseCase) ensurePayment(ctx context.Context, booking entities.Booking, session entities.GatewaySession) (entities.Booking, entities.Payment, error) {
	existing, err := u.payments.GetByBookingID(ctx, booking.ID)
	if err != nil {
		return entities.Booking{}, entities.Payment{}, fmt.Errorf("%w: %w", ErrPersistenceError, err)
	}
	if existing.ID != "" {
		if existing.TransactionID != session.TransactionID {
			log.Printf("[reconcile][usecase] booking already paid by another transaction booking_id=%s existing_transaction_id=%s transaction_id=%s",
				booking.ID, existing.TransactionID, session.TransactionID)
		}
		return booking, existing, nil
	}

	created, err := u.payments.Create(ctx, u.newPayment(booking, session))
	if err == nil {
		log.Printf("[reconcile][usecase] payment created payment_id=%s booking_id=%s", created.ID, booking.ID)
		return booking, created, nil
	}
	if !errors.Is(err, interfaces.ErrPaymentConflict) {
		log.Printf("[reconcile][usecase] payment create failed booking_id=%s err=%v", booking.ID, err)
		return entities.Booking{}, entities.Payment{}, fmt.Errorf("%w: %w", ErrPersistenceError, err)
	}

	log.Printf("[reconcile][usecase] payment conflict; re-reading transaction_id=%s booking_id=%s", session.TransactionID, booking.ID)
	owner, payment, err := u.findByTransaction(ctx, session.TransactionID)
	if err != nil {
		return entities.Booking{}, entities.Payment{}, err
	}
	if owner.ID != "" {
		return owner, payment, nil
	}
	payment, err = u.payments.GetByBookingID(ctx, booking.ID)
	if err != nil {
		return entities.Booking{}, entities.Payment{}, fmt.Errorf("%w: %w", ErrPersistenceError, err)
	}
	if payment.ID == "" {
		return entities.Booking{}, entities.Payment{}, fmt.Errorf("%w: payment conflict for booking %s but no payment found", ErrPersistenceError, booking.ID)
	}
	return booking, payment, nil
}

func (u *ReconciliationUseCase) newBooking(session entities.GatewaySession) entities.Booking {
	meta := session.Metadata
	now := u.now()
	return entities.Booking{
		ID:          u.newID(),
		TenantID:    strings.TrimSpace(meta.TenantID),
		ServiceID:   strings.TrimSpace(meta.ServiceID),
		StaffID:     strings.TrimSpace(meta.StaffID),
		ClientName:  strings.TrimSpace(meta.ClientName),
		ClientEmail: entities.NormalizeEmail(meta.ClientEmail),
		ClientPhone: strings.TrimSpace(meta.ClientPhone),
		StartTime:   entities.NormalizeTime(meta.StartTime),
		EndTime:     entities.NormalizeTime(meta.EndTime),
		TotalAmount: session.AmountTotal,
		Currency:    strings.ToUpper(session.Currency),
		Status:      entities.BookingStatusConfirmed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (u *ReconciliationUseCase) newPayment(booking entities.Booking, session entities.GatewaySession) entities.Payment {
	return entities.Payment{
		ID:               u.newID(),
		BookingID:        booking.ID,
		Amount:           session.AmountTotal,
		FeeAmount:        session.Metadata.FeeAmount,
		NetAmount:        session.Metadata.NetAmount,
		Currency:         strings.ToUpper(session.Currency),
		Status:           entities.PaymentStatusCompleted,
		TransactionID:    session.TransactionID,
		SessionReference: session.Reference,
		CreatedAt:        u.now(),
	}
}

func (u *ReconciliationUseCase) backoff(ctx context.Context, attempt int) error {
	d := u.conflictBackoff * time.Duration(attempt)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (u *ReconciliationUseCase) resolveCatalog(ctx context.Context, tenantID, serviceID, staffID string) (catalogEntries, error) {
	tenant, err := u.catalog.GetTenant(ctx, tenantID)
	if err != nil {
		return catalogEntries{}, fmt.Errorf("%w: %w", ErrPersistenceError, err)
	}
	if tenant.ID == "" {
		log.Printf("[reconcile][usecase] tenant not found tenant_id=%s", tenantID)
		return catalogEntries{}, fmt.Errorf("%w: tenant %s", ErrCatalogNotFound, tenantID)
	}
	service, err := u.catalog.GetService(ctx, tenantID, serviceID)
	if err != nil {
		return catalogEntries{}, fmt.Errorf("%w: %w", ErrPersistenceError, err)
	}
	if service.ID == "" {
		log.Printf("[reconcile][usecase] service not found tenant_id=%s service_id=%s", tenantID, serviceID)
		return catalogEntries{}, fmt.Errorf("%w: service %s", ErrCatalogNotFound, serviceID)
	}
	staff, err := u.catalog.GetStaff(ctx, tenantID, staffID)
	if err != nil {
		return catalogEntries{}, fmt.Errorf("%w: %w", ErrPersistenceError, err)
	}
	if staff.ID == "" {
		log.Printf("[reconcile][usecase] staff not found tenant_id=%s staff_id=%s", tenantID, staffID)
		return catalogEntries{}, fmt.Errorf("%w: staff %s", ErrCatalogNotFound, staffID)
	}
	return catalogEntries{tenant: tenant, service: service, staff: staff}, nil
}

// notify never fails the reconciliation.
func (u *ReconciliationUseCase) notify(ctx context.Context, details entities.BookingDetails) {
	if u.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[reconcile][usecase] notification panic booking_id=%s panic=%v", details.Booking.ID, r)
		}
	}()
	if err := u.notifier.Send(ctx, details); err != nil {
		log.Printf("[reconcile][usecase] notification failed booking_id=%s err=%v", details.Booking.ID, err)
	}
}

func (u *ReconciliationUseCase) GetBooking(ctx context.Context, id string) (entities.BookingDetails, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.BookingDetails{}, ErrInvalidRequest
	}
	ctx, span := tracer.Start(ctx, "GetBooking", trace.WithAttributes(attribute.String("booking.id", id)))
	defer span.End()

	booking, err := u.bookings.GetByID(ctx, id)
	if err != nil {
		return entities.BookingDetails{}, failSpan(span, fmt.Errorf("%w: %w", ErrPersistenceError, err))
	}
	if booking.ID == "" {
		return entities.BookingDetails{}, failSpan(span, ErrBookingNotFound)
	}
	payment, err := u.payments.GetByBookingID(ctx, booking.ID)
	if err != nil {
		return entities.BookingDetails{}, failSpan(span, fmt.Errorf("%w: %w", ErrPersistenceError, err))
	}
	cat, err := u.resolveCatalog(ctx, booking.TenantID, booking.ServiceID, booking.StaffID)
	if err != nil {
		return entities.BookingDetails{}, failSpan(span, err)
	}
	return entities.BookingDetails{
		Booking: booking,
		Payment: payment,
		Tenant:  cat.tenant,
		Service: cat.service,
		Staff:   cat.staff,
	}, nil
}

// HandlePaymentNotification reconciles gateway push notifications. The bool reports whether
// the notification produced a booking; non-payment topics and payments that are not approved
// yet are acknowledged without error so the gateway stops redelivering them.
func (u *ReconciliationUseCase) HandlePaymentNotification(ctx context.Context, n entities.PaymentNotification) (entities.BookingDetails, bool, error) {
	kind := strings.ToLower(strings.TrimSpace(n.Type))
	log.Printf("[reconcile][webhook] notification type=%q action=%q resource_id=%q", kind, n.Action, n.ResourceID)
	if kind != paymentNotificationType {
		log.Printf("[reconcile][webhook] ignoring notification type=%q", kind)
		return entities.BookingDetails{}, false, nil
	}
	if strings.TrimSpace(n.ResourceID) == "" {
		return entities.BookingDetails{}, false, ErrInvalidRequest
	}

	details, err := u.Reconcile(ctx, n.ResourceID)
	if errors.Is(err, ErrPaymentNotConfirmed) {
		log.Printf("[reconcile][webhook] payment not approved yet resource_id=%s", n.ResourceID)
		return entities.BookingDetails{}, false, nil
	}
	if err != nil {
		return entities.BookingDetails{}, false, err
	}
	return details, true, nil
}

// requireCatalogIDs rejects metadata that names no tenant, service or staff member to resolve.
func requireCatalogIDs(meta entities.SessionMetadata) error {
	switch {
	case strings.TrimSpace(meta.TenantID) == "":
		return errors.New("metadata tenant_id is missing")
	case strings.TrimSpace(meta.ServiceID) == "":
		return errors.New("metadata service_id is missing")
	case strings.TrimSpace(meta.StaffID) == "":
		return errors.New("metadata staff_id is missing")
	}
	return nil
}

func validateMetadata(session entities.GatewaySession) error {
	meta := session.Metadata
	switch {
	case strings.TrimSpace(meta.ClientName) == "":
		return errors.New("metadata client_name is required")
	case !strings.Contains(entities.NormalizeEmail(meta.ClientEmail), "@"):
		return errors.New("metadata client_email is invalid")
	case meta.StartTime.IsZero():
		return errors.New("metadata start_time is required")
	case !meta.EndTime.After(meta.StartTime):
		return errors.New("metadata end_time must be after start_time")
	case meta.FeeAmount < 0 || meta.NetAmount < 0:
		return errors.New("metadata fee_amount and net_amount must not be negative")
	case session.AmountTotal < 0:
		return errors.New("amount total must not be negative")
	}
	if meta.FeeAmount+meta.NetAmount != session.AmountTotal {
		log.Printf("[reconcile][usecase] fee/net split does not add up amount_total=%s fee=%s net=%s",
			session.AmountTotal, meta.FeeAmount, meta.NetAmount)
	}
	return nil
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
