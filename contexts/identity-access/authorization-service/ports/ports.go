package ports

import (
	"context"
	"time"
)

// IdentityDirectory exposes the global identity-store questions the resolver
// needs. Implemented by a bridge over the identity-service at bootstrap.
type IdentityDirectory interface {
	IsSuperAdmin(ctx context.Context, principalID string) (bool, error)
	HasGlobalPermission(ctx context.Context, principalID string, permission string) (bool, error)
}

// MembershipView is the read-model slice of a membership the resolver uses.
type MembershipView struct {
	BusinessRole        string
	PermissionOverrides []string
	EmploymentStatus    string
	Found               bool
}

// MembershipDirectory exposes tenant membership lookups. A missing membership
// is not an error: Found is false and the zero view comes back.
type MembershipDirectory interface {
	MembershipInTenant(ctx context.Context, tenantID string, principalID string) (MembershipView, error)
}

// DecisionCache memoizes resolver verdicts for a short TTL. A cache failure
// must never fail the resolution; callers treat errors as misses.
type DecisionCache interface {
	GetDecision(ctx context.Context, key string) (allowed bool, found bool, err error)
	SetDecision(ctx context.Context, key string, allowed bool, ttl time.Duration) error
}
