package bootstrap

import (
	"context"
	"errors"

	financeports "backoffice/contexts/finance-core/financial-request-engine/ports"
	"backoffice/contexts/identity-access/authorization-service/application/queries"
	authzports "backoffice/contexts/identity-access/authorization-service/ports"
	identityapp "backoffice/contexts/identity-access/identity-service/application"
	identityerrors "backoffice/contexts/identity-access/identity-service/domain/errors"
	membershipapp "backoffice/contexts/tenant-operations/membership-service/application"
	membershiperrors "backoffice/contexts/tenant-operations/membership-service/domain/errors"
)

// identityDirectory bridges the identity-service into the resolver's
// directory port. An unknown principal is simply not a super admin and holds
// no global grants.
type identityDirectory struct {
	service identityapp.Service
}

func (d identityDirectory) IsSuperAdmin(ctx context.Context, principalID string) (bool, error) {
	isSuper, err := d.service.IsSuperAdmin(ctx, principalID)
	if err != nil {
		if isIdentityNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return isSuper, nil
}

func (d identityDirectory) HasGlobalPermission(ctx context.Context, principalID string, permission string) (bool, error) {
	granted, err := d.service.HasPermission(ctx, principalID, permission)
	if err != nil {
		if isIdentityNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return granted, nil
}

func isIdentityNotFound(err error) bool {
	return errors.Is(err, identityerrors.ErrPrincipalNotFound) ||
		errors.Is(err, identityerrors.ErrNotFound)
}

// membershipDirectory bridges the membership-service into the resolver's
// membership port. A missing membership yields Found=false, not an error.
type membershipDirectory struct {
	service membershipapp.Service
}

func (d membershipDirectory) MembershipInTenant(ctx context.Context, tenantID string, principalID string) (authzports.MembershipView, error) {
	membership, err := d.service.GetMembership(ctx, tenantID, principalID)
	if err != nil {
		if errors.Is(err, membershiperrors.ErrMembershipNotFound) ||
			errors.Is(err, membershiperrors.ErrNotFound) {
			return authzports.MembershipView{}, nil
		}
		return authzports.MembershipView{}, err
	}
	return authzports.MembershipView{
		BusinessRole:        membership.BusinessRole,
		PermissionOverrides: membership.PermissionOverrides,
		EmploymentStatus:    membership.EmploymentStatus,
		Found:               true,
	}, nil
}

// resolverAuthorizer lets the financial-request engine consult the
// authorization resolver without importing its context.
type resolverAuthorizer struct {
	resolver queries.CanPerform
}

var _ financeports.Authorizer = resolverAuthorizer{}

func (a resolverAuthorizer) CanPerform(ctx context.Context, principalID string, permission string, tenantID string) (bool, error) {
	decision, err := a.resolver.Execute(ctx, principalID, permission, tenantID)
	if err != nil {
		return false, err
	}
	return decision.Allowed, nil
}
