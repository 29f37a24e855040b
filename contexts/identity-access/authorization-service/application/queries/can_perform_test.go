package queries_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"backoffice/contexts/identity-access/authorization-service/adapters/memory"
	"backoffice/contexts/identity-access/authorization-service/application/queries"
	"backoffice/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "backoffice/contexts/identity-access/authorization-service/domain/errors"
	"backoffice/contexts/identity-access/authorization-service/ports"
	"backoffice/internal/shared/permissions"
)

func newResolver(t *testing.T) (queries.CanPerform, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return queries.CanPerform{Identity: store, Membership: store, Cache: store}, store
}

func TestSuperAdminShortCircuits(t *testing.T) {
	ctx := context.Background()
	resolver, store := newResolver(t)
	store.SetSuperAdmin("root-1", true)

	// No membership anywhere, arbitrary tenant: still allowed.
	for _, permission := range permissions.All() {
		decision, err := resolver.Execute(ctx, "root-1", permission, "tenant-1")
		if err != nil {
			t.Fatalf("resolve %s failed: %v", permission, err)
		}
		if !decision.Allowed || decision.Reason != entities.ReasonSuperAdmin {
			t.Fatalf("expected superadmin allow for %s, got %+v", permission, decision)
		}
	}
}

func TestOwnerAllowsTenantScopedActions(t *testing.T) {
	ctx := context.Background()
	resolver, store := newResolver(t)
	store.PutMembership("tenant-1", "p-1", ports.MembershipView{
		BusinessRole:     "owner",
		EmploymentStatus: "active",
	})

	decision, err := resolver.Execute(ctx, "p-1", permissions.TenantManage, "tenant-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !decision.Allowed || decision.Reason != entities.ReasonTenantOwner {
		t.Fatalf("expected owner allow, got %+v", decision)
	}

	// Same principal in a tenant where it is only an employee.
	store.PutMembership("tenant-2", "p-1", ports.MembershipView{
		BusinessRole:     "employee",
		EmploymentStatus: "active",
	})
	decision, err = resolver.Execute(ctx, "p-1", permissions.TenantManage, "tenant-2")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("employee should not manage tenant, got %+v", decision)
	}
}

func TestNoMembershipNoGlobalGrantDenies(t *testing.T) {
	ctx := context.Background()
	resolver, _ := newResolver(t)

	decision, err := resolver.Execute(ctx, "p-1", permissions.MembersManage, "tenant-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if decision.Allowed || decision.Reason != entities.ReasonDenied {
		t.Fatalf("expected deny, got %+v", decision)
	}
}

func TestGlobalUserManagementGrant(t *testing.T) {
	ctx := context.Background()
	resolver, store := newResolver(t)
	store.GrantGlobalPermission("p-1", permissions.UsersCreate)

	// Cross-tenant user management works even without a membership.
	decision, err := resolver.Execute(ctx, "p-1", permissions.UsersCreate, "tenant-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !decision.Allowed || decision.Reason != entities.ReasonGlobalPermission {
		t.Fatalf("expected global allow, got %+v", decision)
	}

	// Only the user-management permissions consult the global store here.
	decision, err = resolver.Execute(ctx, "p-1", permissions.UsersEdit, "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("users.edit was never granted, got %+v", decision)
	}
}

func TestMembershipGrantUnionsOverridesAndDefaults(t *testing.T) {
	ctx := context.Background()
	resolver, store := newResolver(t)
	store.PutMembership("tenant-1", "p-1", ports.MembershipView{
		BusinessRole:        "employee",
		PermissionOverrides: []string{permissions.FinanceRequestApprove},
		EmploymentStatus:    "active",
	})

	// Role default.
	decision, err := resolver.Execute(ctx, "p-1", permissions.FinanceRequestView, "tenant-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !decision.Allowed || decision.Reason != entities.ReasonMembershipGrant {
		t.Fatalf("expected default grant, got %+v", decision)
	}

	// Override on top of the defaults.
	decision, err = resolver.Execute(ctx, "p-1", permissions.FinanceRequestApprove, "tenant-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected override grant, got %+v", decision)
	}

	// Neither default nor override.
	decision, err = resolver.Execute(ctx, "p-1", permissions.TenantManage, "tenant-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected deny, got %+v", decision)
	}
}

func TestUnknownBusinessRoleDeniesByDefault(t *testing.T) {
	ctx := context.Background()
	resolver, store := newResolver(t)
	store.PutMembership("tenant-1", "p-1", ports.MembershipView{
		BusinessRole:        "wizard",
		PermissionOverrides: []string{permissions.FeaturesView},
		EmploymentStatus:    "active",
	})

	// Unknown role contributes no defaults; only the explicit override passes.
	decision, err := resolver.Execute(ctx, "p-1", permissions.FeaturesView, "tenant-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("override should still grant, got %+v", decision)
	}
	decision, err = resolver.Execute(ctx, "p-1", permissions.MembersView, "tenant-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("unknown role must deny by default, got %+v", decision)
	}
}

func TestTerminatedMembershipLosesAccess(t *testing.T) {
	ctx := context.Background()
	resolver, store := newResolver(t)
	store.PutMembership("tenant-1", "p-1", ports.MembershipView{
		BusinessRole:     "owner",
		EmploymentStatus: "terminated",
	})

	decision, err := resolver.Execute(ctx, "p-1", permissions.TenantManage, "tenant-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("terminated owner must be denied, got %+v", decision)
	}
}

func TestUnregisteredPermissionRejected(t *testing.T) {
	ctx := context.Background()
	resolver, _ := newResolver(t)

	if _, err := resolver.Execute(ctx, "p-1", "made.up", "tenant-1"); !errors.Is(err, domainerrors.ErrPermissionNotRegistered) {
		t.Fatalf("expected ErrPermissionNotRegistered, got %v", err)
	}
}

func TestDecisionCacheHit(t *testing.T) {
	ctx := context.Background()
	resolver, store := newResolver(t)
	resolver.CacheTTL = time.Minute
	store.SetNow(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	store.PutMembership("tenant-1", "p-1", ports.MembershipView{
		BusinessRole:     "employee",
		EmploymentStatus: "active",
	})

	first, err := resolver.Execute(ctx, "p-1", permissions.FinanceRequestView, "tenant-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	// Flip the underlying membership; the cached verdict still answers until
	// the TTL lapses.
	store.PutMembership("tenant-1", "p-1", ports.MembershipView{
		BusinessRole:     "employee",
		EmploymentStatus: "terminated",
	})
	cached, err := resolver.Execute(ctx, "p-1", permissions.FinanceRequestView, "tenant-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !reflect.DeepEqual(first.Allowed, cached.Allowed) {
		t.Fatalf("expected cached allow, got %+v", cached)
	}

	store.SetNow(time.Date(2026, 5, 1, 10, 2, 0, 0, time.UTC))
	fresh, err := resolver.Execute(ctx, "p-1", permissions.FinanceRequestView, "tenant-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if fresh.Allowed {
		t.Fatalf("expected fresh deny after TTL, got %+v", fresh)
	}
}

func TestEffectivePermissionsListing(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	query := queries.EffectivePermissions{Identity: store, Membership: store}
	store.PutMembership("tenant-1", "p-1", ports.MembershipView{
		BusinessRole:        "employee",
		PermissionOverrides: []string{permissions.FinanceRequestApprove},
		EmploymentStatus:    "active",
	})

	items, err := query.Execute(ctx, "p-1", "tenant-1")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	want := map[string]bool{
		permissions.MembersView:           true,
		permissions.FeaturesView:          true,
		permissions.FinanceRequestCreate:  true,
		permissions.FinanceRequestView:    true,
		permissions.FinanceRequestApprove: true,
	}
	if len(items) != len(want) {
		t.Fatalf("unexpected set size: %v", items)
	}
	for _, p := range items {
		if !want[p] {
			t.Fatalf("unexpected permission %q in %v", p, items)
		}
	}

	// Superadmins resolve to the whole registry.
	store.SetSuperAdmin("root-1", true)
	items, err = query.Execute(ctx, "root-1", "tenant-1")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(items) != len(permissions.All()) {
		t.Fatalf("expected full registry for superadmin, got %d entries", len(items))
	}
}
