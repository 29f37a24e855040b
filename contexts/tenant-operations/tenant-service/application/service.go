package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"backoffice/contexts/tenant-operations/tenant-service/domain/entities"
	domainerrors "backoffice/contexts/tenant-operations/tenant-service/domain/errors"
	"backoffice/contexts/tenant-operations/tenant-service/domain/services"
	"backoffice/contexts/tenant-operations/tenant-service/ports"
)

// slugProbeLimit bounds collision probing; a registry with this many slug
// collisions on one base name indicates a data problem, not a naming one.
const slugProbeLimit = 1000

type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// CreateTenant registers a tenant and derives a unique slug from its name,
// appending -1, -2, ... until the candidate is free.
func (s Service) CreateTenant(ctx context.Context, name string, settings map[string]any) (entities.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entities.Tenant{}, domainerrors.ErrInvalidRequest
	}
	base := services.Slugify(name)
	if base == "" {
		return entities.Tenant{}, domainerrors.ErrInvalidRequest
	}

	slug := ""
	for n := 0; n < slugProbeLimit; n++ {
		candidate := services.SlugCandidate(base, n)
		taken, err := s.Repo.ExistsBySlug(ctx, candidate)
		if err != nil {
			return entities.Tenant{}, err
		}
		if !taken {
			slug = candidate
			break
		}
	}
	if slug == "" {
		return entities.Tenant{}, domainerrors.ErrInvalidRequest
	}

	tenantID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Tenant{}, err
	}
	now := s.now()
	tenant := entities.Tenant{
		TenantID:  tenantID,
		Name:      name,
		Slug:      slug,
		IsActive:  true,
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.CreateTenant(ctx, tenant); err != nil {
		return entities.Tenant{}, err
	}

	ResolveLogger(s.Logger).Info("tenant created",
		"event", "tenant_created",
		"module", "tenant-operations/tenant-service",
		"layer", "application",
		"tenant_id", tenant.TenantID,
		"slug", tenant.Slug,
	)
	return tenant, nil
}

// UpdateSettings replaces the tenant settings blob.
func (s Service) UpdateSettings(ctx context.Context, tenantID string, settings map[string]any) (entities.Tenant, error) {
	tenant, err := s.activeTenant(ctx, tenantID)
	if err != nil {
		return entities.Tenant{}, err
	}
	tenant.Settings = settings
	tenant.UpdatedAt = s.now()
	if err := s.Repo.UpdateTenant(ctx, tenant); err != nil {
		return entities.Tenant{}, err
	}
	return tenant, nil
}

// Deactivate flips the active flag without deleting anything.
func (s Service) Deactivate(ctx context.Context, tenantID string) error {
	return s.setActive(ctx, tenantID, false)
}

// Reactivate re-enables a previously deactivated tenant.
func (s Service) Reactivate(ctx context.Context, tenantID string) error {
	return s.setActive(ctx, tenantID, true)
}

// Delete is a soft delete; memberships, feature assignments and financial
// requests owned by the tenant are cascaded by the storage layer.
func (s Service) Delete(ctx context.Context, tenantID string) error {
	if strings.TrimSpace(tenantID) == "" {
		return domainerrors.ErrInvalidRequest
	}
	return s.Repo.SoftDeleteTenant(ctx, strings.TrimSpace(tenantID), s.now())
}

func (s Service) GetTenant(ctx context.Context, tenantID string) (entities.Tenant, error) {
	if strings.TrimSpace(tenantID) == "" {
		return entities.Tenant{}, domainerrors.ErrInvalidRequest
	}
	return s.Repo.GetTenant(ctx, strings.TrimSpace(tenantID))
}

func (s Service) GetTenantBySlug(ctx context.Context, slug string) (entities.Tenant, error) {
	if strings.TrimSpace(slug) == "" {
		return entities.Tenant{}, domainerrors.ErrInvalidRequest
	}
	return s.Repo.GetTenantBySlug(ctx, strings.TrimSpace(slug))
}

func (s Service) ListTenants(ctx context.Context, limit int, offset int) ([]entities.Tenant, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListTenants(ctx, limit, offset)
}

func (s Service) setActive(ctx context.Context, tenantID string, active bool) error {
	tenant, err := s.activeOrInactiveTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if tenant.IsActive == active {
		return nil
	}
	tenant.IsActive = active
	tenant.UpdatedAt = s.now()
	return s.Repo.UpdateTenant(ctx, tenant)
}

func (s Service) activeTenant(ctx context.Context, tenantID string) (entities.Tenant, error) {
	tenant, err := s.activeOrInactiveTenant(ctx, tenantID)
	if err != nil {
		return entities.Tenant{}, err
	}
	return tenant, nil
}

func (s Service) activeOrInactiveTenant(ctx context.Context, tenantID string) (entities.Tenant, error) {
	if strings.TrimSpace(tenantID) == "" {
		return entities.Tenant{}, domainerrors.ErrInvalidRequest
	}
	tenant, err := s.Repo.GetTenant(ctx, strings.TrimSpace(tenantID))
	if err != nil {
		return entities.Tenant{}, err
	}
	if tenant.IsDeleted {
		return entities.Tenant{}, domainerrors.ErrTenantDeleted
	}
	return tenant, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
