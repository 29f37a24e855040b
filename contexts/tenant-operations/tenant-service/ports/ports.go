package ports

import (
	"context"
	"time"

	"backoffice/contexts/tenant-operations/tenant-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Repository is the write/read boundary for tenant state. Slug uniqueness is
// enforced at the storage layer; ExistsBySlug supports candidate probing.
type Repository interface {
	CreateTenant(ctx context.Context, tenant entities.Tenant) error
	GetTenant(ctx context.Context, tenantID string) (entities.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (entities.Tenant, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ListTenants(ctx context.Context, limit int, offset int) ([]entities.Tenant, error)
	UpdateTenant(ctx context.Context, tenant entities.Tenant) error
	SoftDeleteTenant(ctx context.Context, tenantID string, now time.Time) error
}
