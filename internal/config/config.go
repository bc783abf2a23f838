package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StoreDriverDynamoDB = "dynamodb"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config is read from the environment (and .env through godotenv/autoload in the binaries).
type Config struct {
	Env                string   `envconfig:"ENV" default:"dev"`
	HTTPPort           string   `envconfig:"HTTP_PORT" default:"8080"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"dynamodb"`

	// DynamoDB (DynamoDB Local when DYNAMODB_ENDPOINT is set)
	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID" default:"local"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY" default:"local"`
	DynamoDBEndpoint   string `envconfig:"DYNAMODB_ENDPOINT"`
	BookingsTable      string `envconfig:"BOOKINGS_TABLE" default:"bookings"`
	BookingKeysTable   string `envconfig:"BOOKING_KEYS_TABLE" default:"booking_keys"`
	PaymentsTable      string `envconfig:"PAYMENTS_TABLE" default:"payments"`
	PaymentKeysTable   string `envconfig:"PAYMENT_KEYS_TABLE" default:"payment_keys"`
	TenantsTable       string `envconfig:"TENANTS_TABLE" default:"tenants"`
	ServicesTable      string `envconfig:"SERVICES_TABLE" default:"services"`
	StaffTable         string `envconfig:"STAFF_TABLE" default:"staff"`

	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	// JSON catalog (tenants, services, staff) loaded into the store at startup
	CatalogSeedFile string `envconfig:"CATALOG_SEED_FILE"`

	MercadoPagoAccessToken string `envconfig:"MERCADOPAGO_ACCESS_TOKEN"`
	PaymentGatewayMock     bool   `envconfig:"PAYMENT_GATEWAY_MOCK" default:"false"`
	MockSessionsFile       string `envconfig:"MOCK_SESSIONS_FILE"`

	// RabbitMQ for publishing booking.confirmed; log-only notifications when empty
	RabbitURL           string        `envconfig:"RABBIT_URL"`
	BookingExchange     string        `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`
	BookingRoutingKey   string        `envconfig:"BOOKING_ROUTING_KEY" default:"booking.confirmed"`
	NotificationAsync   bool          `envconfig:"NOTIFICATION_ASYNC" default:"true"`
	NotificationTimeout time.Duration `envconfig:"NOTIFICATION_TIMEOUT" default:"10s"`

	MaxConflictRetries int           `envconfig:"RECONCILE_MAX_CONFLICT_RETRIES" default:"3"`
	ConflictBackoff    time.Duration `envconfig:"RECONCILE_CONFLICT_BACKOFF" default:"25ms"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"booking-reconciliation"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = StoreDriverDynamoDB
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverDynamoDB, StoreDriverMemory:
	case StoreDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if !c.PaymentGatewayMock && c.MercadoPagoAccessToken == "" {
		return fmt.Errorf("MERCADOPAGO_ACCESS_TOKEN is required unless PAYMENT_GATEWAY_MOCK=true")
	}
	if c.MaxConflictRetries < 0 {
		return fmt.Errorf("RECONCILE_MAX_CONFLICT_RETRIES must not be negative")
	}
	if c.NotificationTimeout <= 0 {
		return fmt.Errorf("NOTIFICATION_TIMEOUT must be positive")
	}
	return nil
}
