package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"backoffice/contexts/identity-access/identity-service/domain/entities"
	domainerrors "backoffice/contexts/identity-access/identity-service/domain/errors"
	"backoffice/contexts/identity-access/identity-service/ports"
	"backoffice/internal/shared/permissions"
)

type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Register creates a principal and its profile in one shot. The profile is
// always auto-created so the legacy role source exists for every account.
func (s Service) Register(ctx context.Context, email string, password string, legacyRole string) (entities.Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") || strings.TrimSpace(password) == "" {
		return entities.Principal{}, domainerrors.ErrInvalidRequest
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return entities.Principal{}, err
	}
	principalID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Principal{}, err
	}

	principal, err := s.Repo.CreatePrincipal(ctx, ports.CreatePrincipalInput{
		PrincipalID:    principalID,
		Email:          email,
		CredentialHash: string(hash),
		LegacyRole:     strings.TrimSpace(legacyRole),
		Now:            s.now(),
	})
	if err != nil {
		return entities.Principal{}, err
	}

	ResolveLogger(s.Logger).Info("principal registered",
		"event", "identity_principal_registered",
		"module", "identity-access/identity-service",
		"layer", "application",
		"principal_id", principal.PrincipalID,
	)
	return principal, nil
}

// VerifyCredentials checks an email/password pair against the stored hash.
func (s Service) VerifyCredentials(ctx context.Context, email string, password string) (entities.Principal, error) {
	principal, err := s.Repo.GetPrincipalByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return entities.Principal{}, err
	}
	if principal.IsDeleted {
		return entities.Principal{}, domainerrors.ErrPrincipalNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(principal.CredentialHash), []byte(password)); err != nil {
		return entities.Principal{}, domainerrors.ErrInvalidRequest
	}
	return principal, nil
}

// CreateRole registers a global role. Every listed permission must already
// be in the platform registry.
func (s Service) CreateRole(ctx context.Context, name string, guardTag string, perms []string) (entities.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entities.Role{}, domainerrors.ErrInvalidRequest
	}
	if guardTag = strings.TrimSpace(guardTag); guardTag == "" {
		guardTag = entities.DefaultGuardTag
	}
	for _, p := range perms {
		if !permissions.IsRegistered(p) {
			return entities.Role{}, domainerrors.ErrPermissionNotRegistered
		}
	}

	roleID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Role{}, err
	}
	role := entities.Role{
		RoleID:      roleID,
		Name:        name,
		GuardTag:    guardTag,
		Permissions: append([]string(nil), perms...),
	}
	if err := s.Repo.CreateRole(ctx, role); err != nil {
		return entities.Role{}, err
	}
	return role, nil
}

// AssignRole links a principal to a global role by name.
func (s Service) AssignRole(ctx context.Context, principalID string, roleName string) error {
	if strings.TrimSpace(principalID) == "" || strings.TrimSpace(roleName) == "" {
		return domainerrors.ErrInvalidRequest
	}
	role, err := s.Repo.GetRoleByName(ctx, strings.TrimSpace(roleName), entities.DefaultGuardTag)
	if err != nil {
		return err
	}
	if err := s.Repo.AssignRole(ctx, strings.TrimSpace(principalID), role.RoleID); err != nil {
		return err
	}

	ResolveLogger(s.Logger).Info("role assigned",
		"event", "identity_role_assigned",
		"module", "identity-access/identity-service",
		"layer", "application",
		"principal_id", principalID,
		"role", role.Name,
	)
	return nil
}

// GrantPermissionToPrincipal records a direct grant outside any role.
func (s Service) GrantPermissionToPrincipal(ctx context.Context, principalID string, permission string) error {
	if strings.TrimSpace(principalID) == "" {
		return domainerrors.ErrInvalidRequest
	}
	if !permissions.IsRegistered(permission) {
		return domainerrors.ErrPermissionNotRegistered
	}
	return s.Repo.GrantPermissionToPrincipal(ctx, strings.TrimSpace(principalID), permission)
}

// GrantPermissionToRole extends a role's permission bundle.
func (s Service) GrantPermissionToRole(ctx context.Context, roleName string, permission string) error {
	if !permissions.IsRegistered(permission) {
		return domainerrors.ErrPermissionNotRegistered
	}
	role, err := s.Repo.GetRoleByName(ctx, strings.TrimSpace(roleName), entities.DefaultGuardTag)
	if err != nil {
		return err
	}
	return s.Repo.GrantPermissionToRole(ctx, role.RoleID, permission)
}

// HasPermission walks direct grants and the permissions of every assigned
// role. It never consults tenant memberships; that is the resolver's job.
func (s Service) HasPermission(ctx context.Context, principalID string, permission string) (bool, error) {
	direct, err := s.Repo.ListDirectPermissions(ctx, principalID)
	if err != nil {
		return false, err
	}
	for _, p := range direct {
		if p == permission {
			return true, nil
		}
	}
	viaRoles, err := s.Repo.ListRolePermissions(ctx, principalID)
	if err != nil {
		return false, err
	}
	for _, p := range viaRoles {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

// IsSuperAdmin checks both role sources. The redundancy bridges the legacy
// single-role profiles and the newer many-role system; keep both checks
// until profiles are migrated.
func (s Service) IsSuperAdmin(ctx context.Context, principalID string) (bool, error) {
	viaRole, err := s.Repo.HasGlobalRole(ctx, principalID, entities.SuperAdminRole)
	if err != nil {
		return false, err
	}
	if viaRole {
		return true, nil
	}
	profile, err := s.Repo.GetProfile(ctx, principalID)
	if err != nil {
		return false, err
	}
	return profile.LegacyRole == entities.SuperAdminRole, nil
}

// GetPrincipal returns one principal by id.
func (s Service) GetPrincipal(ctx context.Context, principalID string) (entities.Principal, error) {
	if strings.TrimSpace(principalID) == "" {
		return entities.Principal{}, domainerrors.ErrInvalidRequest
	}
	return s.Repo.GetPrincipal(ctx, strings.TrimSpace(principalID))
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
