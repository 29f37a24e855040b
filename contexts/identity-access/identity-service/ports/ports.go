package ports

import (
	"context"
	"time"

	"backoffice/contexts/identity-access/identity-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for new records.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// CreatePrincipalInput is persisted atomically with the auto-created profile.
type CreatePrincipalInput struct {
	PrincipalID    string
	Email          string
	CredentialHash string
	LegacyRole     string
	Now            time.Time
}

// Repository is the write/read boundary for identity state.
type Repository interface {
	CreatePrincipal(ctx context.Context, input CreatePrincipalInput) (entities.Principal, error)
	GetPrincipal(ctx context.Context, principalID string) (entities.Principal, error)
	GetPrincipalByEmail(ctx context.Context, email string) (entities.Principal, error)
	GetProfile(ctx context.Context, principalID string) (entities.Profile, error)

	CreateRole(ctx context.Context, role entities.Role) error
	GetRoleByName(ctx context.Context, name string, guardTag string) (entities.Role, error)
	AssignRole(ctx context.Context, principalID string, roleID string) error
	HasGlobalRole(ctx context.Context, principalID string, roleName string) (bool, error)

	GrantPermissionToRole(ctx context.Context, roleID string, permission string) error
	GrantPermissionToPrincipal(ctx context.Context, principalID string, permission string) error
	ListDirectPermissions(ctx context.Context, principalID string) ([]string, error)
	ListRolePermissions(ctx context.Context, principalID string) ([]string, error)
}
