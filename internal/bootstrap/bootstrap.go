// Package bootstrap wires config into a ready ReconciliationUseCase. The API server and the
// operator CLI share it so both run against the same store and gateway.
package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"booking_reconciliation/internal/adapter/persistence/memory"
	"booking_reconciliation/internal/adapter/persistence/postgres"
	"booking_reconciliation/internal/adapter/persistence/repository"
	"booking_reconciliation/internal/config"
	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/infrastructure/database"
	"booking_reconciliation/internal/infrastructure/notifications"
	"booking_reconciliation/internal/infrastructure/payments"
	"booking_reconciliation/internal/usecase"
	"booking_reconciliation/internal/usecase/interfaces"
)

// CatalogWriter upserts catalog rows. The catalog is owned by another subsystem; writes
// here only serve local seeding.
type CatalogWriter interface {
	PutTenant(ctx context.Context, t entities.Tenant) error
	PutService(ctx context.Context, s entities.Service) error
	PutStaff(ctx context.Context, s entities.Staff) error
}

// CatalogSeed is the JSON document accepted by CATALOG_SEED_FILE and `reconcilectl seed`.
type CatalogSeed struct {
	Tenants  []entities.Tenant  `json:"tenants"`
	Services []entities.Service `json:"services"`
	Staff    []entities.Staff   `json:"staff"`
}

func LoadCatalogSeed(path string) (CatalogSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return CatalogSeed{}, fmt.Errorf("read catalog seed: %w", err)
	}
	var seed CatalogSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return CatalogSeed{}, fmt.Errorf("decode catalog seed: %w", err)
	}
	return seed, nil
}

// App holds the wired use case and the store lifecycle hooks.
type App struct {
	Config  config.Config
	UseCase *usecase.ReconciliationUseCase

	catalog CatalogWriter
	ping    func(context.Context) error
	migrate func(context.Context) error
	closers []func() error
}

type stores struct {
	bookings interfaces.IBookingRepository
	payments interfaces.IPaymentRepository
	catalog  interfaces.ICatalogRepository
	writer   CatalogWriter
	ping     func(context.Context) error
	migrate  func(context.Context) error
	close    func() error
}

func Build(ctx context.Context, cfg config.Config) (*App, error) {
	s, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, catalog: s.writer, ping: s.ping, migrate: s.migrate}
	if s.close != nil {
		app.closers = append(app.closers, s.close)
	}

	gateway, err := payments.NewGateway(cfg)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("payment gateway: %w", err)
	}

	notifier := newNotifier(cfg)
	if c, ok := notifier.(interface{ Close() error }); ok {
		app.closers = append(app.closers, c.Close)
	}

	app.UseCase = usecase.NewReconciliationUseCase(s.bookings, s.payments, s.catalog, gateway, notifier,
		usecase.WithMaxConflictRetries(cfg.MaxConflictRetries),
		usecase.WithConflictBackoff(cfg.ConflictBackoff),
	)

	if cfg.CatalogSeedFile != "" {
		seed, err := LoadCatalogSeed(cfg.CatalogSeedFile)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		if err := app.Seed(ctx, seed); err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	log.Printf("[bootstrap] ready store=%s gateway_mock=%t notifications_async=%t max_conflict_retries=%d",
		cfg.StoreDriver, cfg.PaymentGatewayMock, cfg.NotificationAsync, cfg.MaxConflictRetries)
	return app, nil
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		m := memory.NewStore()
		return stores{
			bookings: m.Bookings(),
			payments: m.Payments(),
			catalog:  m.Catalog(),
			writer:   memoryCatalogWriter{m},
			ping:     m.Ping,
			migrate:  func(context.Context) error { return nil },
		}, nil

	case config.StoreDriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return stores{}, err
		}
		pg := postgres.NewStore(db)
		return stores{
			bookings: pg.Bookings(),
			payments: pg.Payments(),
			catalog:  pg.Catalog(),
			writer:   pg.Catalog(),
			ping:     pg.Ping,
			migrate:  pg.Migrate,
			close:    pg.Close,
		}, nil

	case config.StoreDriverDynamoDB:
		ddb, err := database.ConnectDynamoDB(ctx, cfg)
		if err != nil {
			return stores{}, err
		}
		ds := repository.NewDynamoStore(ddb, repository.TablesFromConfig(cfg))
		return stores{
			bookings: ds.Bookings(),
			payments: ds.Payments(),
			catalog:  ds.Catalog(),
			writer:   ds.Catalog(),
			ping:     ds.Ping,
			migrate:  ds.Migrate,
		}, nil
	}
	return stores{}, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
}

// newNotifier never fails startup: a broker that cannot be reached degrades to log-only
// confirmations.
func newNotifier(cfg config.Config) interfaces.INotificationDispatcher {
	var n interfaces.INotificationDispatcher = notifications.NewLogNotifier()
	if cfg.RabbitURL != "" {
		pub, err := notifications.NewAMQPNotifier(cfg.RabbitURL, cfg.BookingExchange, cfg.BookingRoutingKey)
		if err != nil {
			log.Printf("[bootstrap] rabbitmq unavailable, falling back to log notifications err=%v", err)
		} else {
			n = pub
		}
	}
	if cfg.NotificationAsync {
		return notifications.NewAsyncNotifier(n, cfg.NotificationTimeout)
	}
	return n
}

func (a *App) Ping(ctx context.Context) error {
	return a.ping(ctx)
}

func (a *App) Migrate(ctx context.Context) error {
	log.Printf("[bootstrap] migrate start store=%s", a.Config.StoreDriver)
	if err := a.migrate(ctx); err != nil {
		log.Printf("[bootstrap] migrate failed store=%s err=%v", a.Config.StoreDriver, err)
		return err
	}
	log.Printf("[bootstrap] migrate success store=%s", a.Config.StoreDriver)
	return nil
}

// Seed upserts tenants first so services and staff never reference a missing tenant.
func (a *App) Seed(ctx context.Context, seed CatalogSeed) error {
	for _, t := range seed.Tenants {
		if err := a.catalog.PutTenant(ctx, t); err != nil {
			return fmt.Errorf("seed tenant %s: %w", t.ID, err)
		}
	}
	for _, s := range seed.Services {
		if err := a.catalog.PutService(ctx, s); err != nil {
			return fmt.Errorf("seed service %s: %w", s.ID, err)
		}
	}
	for _, s := range seed.Staff {
		if err := a.catalog.PutStaff(ctx, s); err != nil {
			return fmt.Errorf("seed staff %s: %w", s.ID, err)
		}
	}
	log.Printf("[bootstrap] catalog seeded tenants=%d services=%d staff=%d",
		len(seed.Tenants), len(seed.Services), len(seed.Staff))
	return nil
}

// Close drains pending notifications before releasing the store.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

type memoryCatalogWriter struct{ s *memory.Store }

func (w memoryCatalogWriter) PutTenant(_ context.Context, t entities.Tenant) error {
	w.s.PutTenant(t)
	return nil
}

func (w memoryCatalogWriter) PutService(_ context.Context, s entities.Service) error {
	w.s.PutService(s)
	return nil
}

func (w memoryCatalogWriter) PutStaff(_ context.Context, s entities.Staff) error {
	w.s.PutStaff(s)
	return nil
}
