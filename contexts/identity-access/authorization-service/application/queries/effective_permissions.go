package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	domainerrors "backoffice/contexts/identity-access/authorization-service/domain/errors"
	"backoffice/contexts/identity-access/authorization-service/domain/services"
	"backoffice/contexts/identity-access/authorization-service/ports"
	"backoffice/internal/shared/permissions"
)

// EffectivePermissions lists the permission set a membership resolves to:
// overrides unioned with the business-role defaults. Superadmins resolve to
// the full registry regardless of membership.
type EffectivePermissions struct {
	Identity   ports.IdentityDirectory
	Membership ports.MembershipDirectory
	Logger     *slog.Logger
}

func (q EffectivePermissions) Execute(ctx context.Context, principalID string, tenantID string) ([]string, error) {
	principalID = strings.TrimSpace(principalID)
	tenantID = strings.TrimSpace(tenantID)
	if principalID == "" || tenantID == "" {
		return nil, domainerrors.ErrInvalidRequest
	}

	super, err := q.Identity.IsSuperAdmin(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if super {
		return permissions.All(), nil
	}

	membership, err := q.Membership.MembershipInTenant(ctx, tenantID, principalID)
	if err != nil {
		return nil, err
	}
	if !usableMembership(membership) {
		return []string{}, nil
	}

	set := services.EffectiveSet(membership.BusinessRole, membership.PermissionOverrides)
	items := make([]string, 0, len(set))
	for p := range set {
		items = append(items, p)
	}
	sort.Strings(items)
	return items, nil
}
