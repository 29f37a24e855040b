package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "backoffice/contexts/identity-access/authorization-service/application"
	"backoffice/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "backoffice/contexts/identity-access/authorization-service/domain/errors"
	"backoffice/contexts/identity-access/authorization-service/domain/services"
	"backoffice/contexts/identity-access/authorization-service/ports"
	"backoffice/internal/shared/permissions"
)

// CanPerform resolves whether a principal may perform an action, optionally
// inside a tenant. The rule order is deliberate: the cheap superadmin and
// tenant-owner checks short-circuit before the permission-set union.
type CanPerform struct {
	Identity   ports.IdentityDirectory
	Membership ports.MembershipDirectory
	Cache      ports.DecisionCache
	CacheTTL   time.Duration
	Logger     *slog.Logger
}

// Execute answers the access question. tenantID may be empty for global-only
// actions. The permission must exist in the platform registry.
func (q CanPerform) Execute(ctx context.Context, principalID string, permission string, tenantID string) (entities.AccessDecision, error) {
	principalID = strings.TrimSpace(principalID)
	permission = strings.TrimSpace(permission)
	tenantID = strings.TrimSpace(tenantID)
	if principalID == "" || permission == "" {
		return entities.AccessDecision{}, domainerrors.ErrInvalidRequest
	}
	if !permissions.IsRegistered(permission) {
		return entities.AccessDecision{}, domainerrors.ErrPermissionNotRegistered
	}

	cacheKey := decisionKey(principalID, permission, tenantID)
	if q.Cache != nil {
		if allowed, found, err := q.Cache.GetDecision(ctx, cacheKey); err == nil && found {
			if allowed {
				return entities.Allow(entities.ReasonMembershipGrant, permission), nil
			}
			return entities.Deny(permission), nil
		}
	}

	decision, err := q.resolve(ctx, principalID, permission, tenantID)
	if err != nil {
		return entities.AccessDecision{}, err
	}

	if q.Cache != nil {
		ttl := q.CacheTTL
		if ttl <= 0 {
			ttl = 30 * time.Second
		}
		if err := q.Cache.SetDecision(ctx, cacheKey, decision.Allowed, ttl); err != nil {
			application.ResolveLogger(q.Logger).Warn("decision cache write failed",
				"event", "authorization_cache_write_failed",
				"module", "identity-access/authorization-service",
				"layer", "application",
				"error", err.Error(),
			)
		}
	}
	return decision, nil
}

func (q CanPerform) resolve(ctx context.Context, principalID string, permission string, tenantID string) (entities.AccessDecision, error) {
	super, err := q.Identity.IsSuperAdmin(ctx, principalID)
	if err != nil {
		return entities.AccessDecision{}, err
	}
	if super {
		return entities.Allow(entities.ReasonSuperAdmin, permission), nil
	}

	var membership ports.MembershipView
	if tenantID != "" {
		membership, err = q.Membership.MembershipInTenant(ctx, tenantID, principalID)
		if err != nil {
			return entities.AccessDecision{}, err
		}
		if usableMembership(membership) && membership.BusinessRole == services.RoleOwner {
			return entities.Allow(entities.ReasonTenantOwner, permission), nil
		}
	}

	if isCrossTenantUserManagement(permission) {
		granted, err := q.Identity.HasGlobalPermission(ctx, principalID, permission)
		if err != nil {
			return entities.AccessDecision{}, err
		}
		if granted {
			return entities.Allow(entities.ReasonGlobalPermission, permission), nil
		}
	}

	if tenantID != "" && usableMembership(membership) {
		set := services.EffectiveSet(membership.BusinessRole, membership.PermissionOverrides)
		if _, ok := set[permission]; ok {
			return entities.Allow(entities.ReasonMembershipGrant, permission), nil
		}
	}
	return entities.Deny(permission), nil
}

// usableMembership gates resolution on an active membership row. Terminated
// members keep their history but lose tenant access immediately.
func usableMembership(membership ports.MembershipView) bool {
	return membership.Found && membership.EmploymentStatus == "active"
}

func isCrossTenantUserManagement(permission string) bool {
	for _, p := range permissions.CrossTenantUserManagement() {
		if p == permission {
			return true
		}
	}
	return false
}

func decisionKey(principalID string, permission string, tenantID string) string {
	return principalID + "|" + tenantID + "|" + permission
}
