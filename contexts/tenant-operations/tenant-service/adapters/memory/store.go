package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"backoffice/contexts/tenant-operations/tenant-service/domain/entities"
	domainerrors "backoffice/contexts/tenant-operations/tenant-service/domain/errors"
)

// Store is the in-memory tenant adapter for tests and local wiring.
type Store struct {
	mu      sync.RWMutex
	tenants map[string]entities.Tenant
	now     time.Time
}

func NewStore() *Store {
	return &Store{tenants: make(map[string]entities.Tenant)}
}

func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) CreateTenant(_ context.Context, tenant entities.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenant.TenantID] = tenant
	return nil
}

func (s *Store) GetTenant(_ context.Context, tenantID string) (entities.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.tenants[tenantID]
	if !ok {
		return entities.Tenant{}, domainerrors.ErrTenantNotFound
	}
	return tenant, nil
}

func (s *Store) GetTenantBySlug(_ context.Context, slug string) (entities.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tenant := range s.tenants {
		if tenant.Slug == slug && !tenant.IsDeleted {
			return tenant, nil
		}
	}
	return entities.Tenant{}, domainerrors.ErrTenantNotFound
}

func (s *Store) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tenant := range s.tenants {
		if tenant.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListTenants(_ context.Context, limit int, offset int) ([]entities.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Tenant, 0, len(s.tenants))
	for _, tenant := range s.tenants {
		if tenant.IsDeleted {
			continue
		}
		items = append(items, tenant)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	if offset >= len(items) {
		return []entities.Tenant{}, nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) UpdateTenant(_ context.Context, tenant entities.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[tenant.TenantID]; !ok {
		return domainerrors.ErrTenantNotFound
	}
	s.tenants[tenant.TenantID] = tenant
	return nil
}

func (s *Store) SoftDeleteTenant(_ context.Context, tenantID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenant, ok := s.tenants[tenantID]
	if !ok {
		return domainerrors.ErrTenantNotFound
	}
	tenant.IsDeleted = true
	tenant.IsActive = false
	tenant.UpdatedAt = now
	s.tenants[tenantID] = tenant
	return nil
}
