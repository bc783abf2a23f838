package repository

import (
	"context"
	"testing"
	"time"

	"booking_reconciliation/internal/adapter/persistence/storetest"
	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/infrastructure/database"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startDynamoDBLocal(t *testing.T) *DynamoStore {
	t.Helper()
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "amazon/dynamodb-local:2.5.2",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
			WaitingFor:   wait.ForListeningPort("8000/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start dynamodb local: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate dynamodb local: %v", err)
		}
	})

	endpoint, err := ctr.PortEndpoint(ctx, "8000/tcp", "http")
	if err != nil {
		t.Fatalf("dynamodb endpoint: %v", err)
	}
	awsCfg, err := database.NewAWSConfig(ctx, "us-east-1", "local", "local")
	if err != nil {
		t.Fatalf("aws config: %v", err)
	}
	store := NewDynamoStore(database.NewDynamoDBClient(awsCfg, endpoint), Tables{
		Bookings:    "bookings",
		BookingKeys: "booking_keys",
		Payments:    "payments",
		PaymentKeys: "payment_keys",
		Tenants:     "tenants",
		Services:    "services",
		Staff:       "staff",
	})
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// second run must be a no-op
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate again: %v", err)
	}
	return store
}

func TestDynamoStore_Conformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping DynamoDB Local integration test in -short mode")
	}
	store := startDynamoDBLocal(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	storetest.Run(t, func(t *testing.T) storetest.Repos {
		catalog := store.Catalog()
		return storetest.Repos{
			Bookings: store.Bookings(),
			Payments: store.Payments(),
			Catalog:  catalog,
			SeedCatalog: func(t *testing.T, tenant entities.Tenant, service entities.Service, staff entities.Staff) {
				ctx := context.Background()
				if err := catalog.PutTenant(ctx, tenant); err != nil {
					t.Fatalf("put tenant: %v", err)
				}
				if err := catalog.PutService(ctx, service); err != nil {
					t.Fatalf("put service: %v", err)
				}
				if err := catalog.PutStaff(ctx, staff); err != nil {
					t.Fatalf("put staff: %v", err)
				}
			},
		}
	})
}
