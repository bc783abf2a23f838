package interfaces

import (
	"context"

	"booking_reconciliation/internal/domain/entities"
)

// ICatalogRepository reads the tenant catalog. Services and staff are scoped by tenant:
// an id that exists under another tenant must not resolve.
type ICatalogRepository interface {
	GetTenant(ctx context.Context, id string) (entities.Tenant, error)
	GetService(ctx context.Context, tenantID, serviceID string) (entities.Service, error)
	GetStaff(ctx context.Context, tenantID, staffID string) (entities.Staff, error)
}
