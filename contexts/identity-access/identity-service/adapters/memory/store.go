package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"backoffice/contexts/identity-access/identity-service/domain/entities"
	domainerrors "backoffice/contexts/identity-access/identity-service/domain/errors"
	"backoffice/contexts/identity-access/identity-service/ports"
)

// Store is an in-memory adapter implementing the identity repository plus
// clock/id ports. It is intended for tests and local development wiring.
type Store struct {
	mu sync.RWMutex

	principals     map[string]entities.Principal
	profiles       map[string]entities.Profile
	roles          map[string]entities.Role
	principalRoles map[string]map[string]struct{} // principal -> role ids
	directGrants   map[string]map[string]struct{} // principal -> permissions

	now time.Time
}

func NewStore() *Store {
	return &Store{
		principals:     make(map[string]entities.Principal),
		profiles:       make(map[string]entities.Profile),
		roles:          make(map[string]entities.Role),
		principalRoles: make(map[string]map[string]struct{}),
		directGrants:   make(map[string]map[string]struct{}),
	}
}

// SetNow pins the clock for deterministic tests.
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

func (s *Store) CreatePrincipal(_ context.Context, input ports.CreatePrincipalInput) (entities.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.principals {
		if existing.Email == input.Email && !existing.IsDeleted {
			return entities.Principal{}, domainerrors.ErrDuplicateEmail
		}
	}
	principal := entities.Principal{
		PrincipalID:    input.PrincipalID,
		Email:          input.Email,
		CredentialHash: input.CredentialHash,
		CreatedAt:      input.Now,
		UpdatedAt:      input.Now,
	}
	s.principals[principal.PrincipalID] = principal
	s.profiles[principal.PrincipalID] = entities.Profile{
		PrincipalID: principal.PrincipalID,
		LegacyRole:  input.LegacyRole,
		Status:      "active",
		CreatedAt:   input.Now,
	}
	return principal, nil
}

func (s *Store) GetPrincipal(_ context.Context, principalID string) (entities.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	principal, ok := s.principals[principalID]
	if !ok {
		return entities.Principal{}, domainerrors.ErrPrincipalNotFound
	}
	return principal, nil
}

func (s *Store) GetPrincipalByEmail(_ context.Context, email string) (entities.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, principal := range s.principals {
		if principal.Email == email {
			return principal, nil
		}
	}
	return entities.Principal{}, domainerrors.ErrPrincipalNotFound
}

func (s *Store) GetProfile(_ context.Context, principalID string) (entities.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[principalID]
	if !ok {
		return entities.Profile{}, domainerrors.ErrPrincipalNotFound
	}
	return profile, nil
}

func (s *Store) CreateRole(_ context.Context, role entities.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.roles {
		if existing.Name == role.Name && existing.GuardTag == role.GuardTag {
			return domainerrors.ErrDuplicateRole
		}
	}
	s.roles[role.RoleID] = role
	return nil
}

func (s *Store) GetRoleByName(_ context.Context, name string, guardTag string) (entities.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, role := range s.roles {
		if role.Name == name && role.GuardTag == guardTag {
			return role, nil
		}
	}
	return entities.Role{}, domainerrors.ErrRoleNotFound
}

func (s *Store) AssignRole(_ context.Context, principalID string, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[roleID]; !ok {
		return domainerrors.ErrRoleNotFound
	}
	assigned, ok := s.principalRoles[principalID]
	if !ok {
		assigned = make(map[string]struct{})
		s.principalRoles[principalID] = assigned
	}
	if _, ok := assigned[roleID]; ok {
		return domainerrors.ErrRoleAlreadyAssigned
	}
	assigned[roleID] = struct{}{}
	return nil
}

func (s *Store) HasGlobalRole(_ context.Context, principalID string, roleName string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for roleID := range s.principalRoles[principalID] {
		if role, ok := s.roles[roleID]; ok && role.Name == roleName {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) GrantPermissionToRole(_ context.Context, roleID string, permission string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[roleID]
	if !ok {
		return domainerrors.ErrRoleNotFound
	}
	for _, p := range role.Permissions {
		if p == permission {
			return domainerrors.ErrPermissionAlreadyGranted
		}
	}
	role.Permissions = append(role.Permissions, permission)
	s.roles[roleID] = role
	return nil
}

func (s *Store) GrantPermissionToPrincipal(_ context.Context, principalID string, permission string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	grants, ok := s.directGrants[principalID]
	if !ok {
		grants = make(map[string]struct{})
		s.directGrants[principalID] = grants
	}
	grants[permission] = struct{}{}
	return nil
}

func (s *Store) ListDirectPermissions(_ context.Context, principalID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]string, 0, len(s.directGrants[principalID]))
	for permission := range s.directGrants[principalID] {
		items = append(items, permission)
	}
	return items, nil
}

func (s *Store) ListRolePermissions(_ context.Context, principalID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	items := make([]string, 0)
	for roleID := range s.principalRoles[principalID] {
		role, ok := s.roles[roleID]
		if !ok {
			continue
		}
		for _, permission := range role.Permissions {
			if _, dup := seen[permission]; dup {
				continue
			}
			seen[permission] = struct{}{}
			items = append(items, permission)
		}
	}
	return items, nil
}
