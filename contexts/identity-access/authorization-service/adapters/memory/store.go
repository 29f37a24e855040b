package memory

import (
	"context"
	"sync"
	"time"

	"backoffice/contexts/identity-access/authorization-service/ports"
)

// Store is an in-memory adapter implementing the directory and cache ports.
// It is intended for tests and local wiring; production wiring bridges the
// directories to the identity and membership services instead.
type Store struct {
	mu sync.RWMutex

	supers       map[string]bool
	globalGrants map[string]map[string]struct{}
	memberships  map[string]ports.MembershipView

	decisions map[string]cachedDecision

	now time.Time
}

type cachedDecision struct {
	allowed   bool
	expiresAt time.Time
}

func NewStore() *Store {
	return &Store{
		supers:       make(map[string]bool),
		globalGrants: make(map[string]map[string]struct{}),
		memberships:  make(map[string]ports.MembershipView),
		decisions:    make(map[string]cachedDecision),
	}
}

func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) clock() time.Time {
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

// SetSuperAdmin marks the principal as superadmin for directory lookups.
func (s *Store) SetSuperAdmin(principalID string, super bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supers[principalID] = super
}

// GrantGlobalPermission records a direct global grant for the principal.
func (s *Store) GrantGlobalPermission(principalID string, permission string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.globalGrants[principalID] == nil {
		s.globalGrants[principalID] = make(map[string]struct{})
	}
	s.globalGrants[principalID][permission] = struct{}{}
}

// PutMembership installs the membership view returned for the pair.
func (s *Store) PutMembership(tenantID string, principalID string, view ports.MembershipView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view.Found = true
	s.memberships[tenantID+"|"+principalID] = view
}

func (s *Store) IsSuperAdmin(_ context.Context, principalID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.supers[principalID], nil
}

func (s *Store) HasGlobalPermission(_ context.Context, principalID string, permission string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.globalGrants[principalID][permission]
	return ok, nil
}

func (s *Store) MembershipInTenant(_ context.Context, tenantID string, principalID string) (ports.MembershipView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view, ok := s.memberships[tenantID+"|"+principalID]
	if !ok {
		return ports.MembershipView{}, nil
	}
	return view, nil
}

func (s *Store) GetDecision(_ context.Context, key string) (bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cached, ok := s.decisions[key]
	if !ok || s.clock().After(cached.expiresAt) {
		return false, false, nil
	}
	return cached.allowed, true, nil
}

func (s *Store) SetDecision(_ context.Context, key string, allowed bool, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[key] = cachedDecision{allowed: allowed, expiresAt: s.clock().Add(ttl)}
	return nil
}
