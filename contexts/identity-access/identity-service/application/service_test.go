package application

import (
	"context"
	"errors"
	"testing"

	"backoffice/contexts/identity-access/identity-service/adapters/memory"
	"backoffice/contexts/identity-access/identity-service/domain/entities"
	domainerrors "backoffice/contexts/identity-access/identity-service/domain/errors"
	"backoffice/internal/shared/permissions"
)

func newService() (Service, *memory.Store) {
	store := memory.NewStore()
	return Service{Repo: store, Clock: store, IDGen: store}, store
}

func TestRegisterCreatesProfile(t *testing.T) {
	service, store := newService()

	principal, err := service.Register(context.Background(), "Ana@Example.com", "s3cret", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if principal.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %s", principal.Email)
	}
	profile, err := store.GetProfile(context.Background(), principal.PrincipalID)
	if err != nil {
		t.Fatalf("expected auto-created profile: %v", err)
	}
	if profile.Status != "active" {
		t.Fatalf("unexpected profile status %s", profile.Status)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _ := newService()

	if _, err := service.Register(context.Background(), "dup@example.com", "pw-one", ""); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := service.Register(context.Background(), "dup@example.com", "pw-two", "")
	if !errors.Is(err, domainerrors.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
}

func TestVerifyCredentials(t *testing.T) {
	service, _ := newService()

	if _, err := service.Register(context.Background(), "login@example.com", "correct-horse", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := service.VerifyCredentials(context.Background(), "login@example.com", "correct-horse"); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if _, err := service.VerifyCredentials(context.Background(), "login@example.com", "wrong"); err == nil {
		t.Fatal("expected bad password to fail")
	}
}

func TestHasPermissionViaRoleAndDirectGrant(t *testing.T) {
	service, _ := newService()

	principal, err := service.Register(context.Background(), "ops@example.com", "pw", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := service.CreateRole(context.Background(), "support", "", []string{permissions.UsersView}); err != nil {
		t.Fatalf("create role failed: %v", err)
	}
	if err := service.AssignRole(context.Background(), principal.PrincipalID, "support"); err != nil {
		t.Fatalf("assign role failed: %v", err)
	}

	granted, err := service.HasPermission(context.Background(), principal.PrincipalID, permissions.UsersView)
	if err != nil || !granted {
		t.Fatalf("expected role permission, granted=%v err=%v", granted, err)
	}

	granted, err = service.HasPermission(context.Background(), principal.PrincipalID, permissions.UsersEdit)
	if err != nil || granted {
		t.Fatalf("expected no users.edit yet, granted=%v err=%v", granted, err)
	}
	if err := service.GrantPermissionToPrincipal(context.Background(), principal.PrincipalID, permissions.UsersEdit); err != nil {
		t.Fatalf("direct grant failed: %v", err)
	}
	granted, err = service.HasPermission(context.Background(), principal.PrincipalID, permissions.UsersEdit)
	if err != nil || !granted {
		t.Fatalf("expected direct permission, granted=%v err=%v", granted, err)
	}
}

func TestUnregisteredPermissionRejected(t *testing.T) {
	service, _ := newService()

	principal, err := service.Register(context.Background(), "reg@example.com", "pw", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	err = service.GrantPermissionToPrincipal(context.Background(), principal.PrincipalID, "made.up")
	if !errors.Is(err, domainerrors.ErrPermissionNotRegistered) {
		t.Fatalf("expected registry rejection, got %v", err)
	}
	if _, err := service.CreateRole(context.Background(), "bogus", "", []string{"also.made.up"}); !errors.Is(err, domainerrors.ErrPermissionNotRegistered) {
		t.Fatalf("expected registry rejection on role, got %v", err)
	}
}

func TestIsSuperAdminFromBothSources(t *testing.T) {
	service, _ := newService()

	// Legacy profile role source.
	legacy, err := service.Register(context.Background(), "old-admin@example.com", "pw", entities.SuperAdminRole)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	isSuper, err := service.IsSuperAdmin(context.Background(), legacy.PrincipalID)
	if err != nil || !isSuper {
		t.Fatalf("expected legacy superadmin, got %v err=%v", isSuper, err)
	}

	// Modern global role source.
	modern, err := service.Register(context.Background(), "new-admin@example.com", "pw", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := service.CreateRole(context.Background(), entities.SuperAdminRole, "", nil); err != nil {
		t.Fatalf("create role failed: %v", err)
	}
	if err := service.AssignRole(context.Background(), modern.PrincipalID, entities.SuperAdminRole); err != nil {
		t.Fatalf("assign role failed: %v", err)
	}
	isSuper, err = service.IsSuperAdmin(context.Background(), modern.PrincipalID)
	if err != nil || !isSuper {
		t.Fatalf("expected modern superadmin, got %v err=%v", isSuper, err)
	}

	// Neither source.
	plain, err := service.Register(context.Background(), "plain@example.com", "pw", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	isSuper, err = service.IsSuperAdmin(context.Background(), plain.PrincipalID)
	if err != nil || isSuper {
		t.Fatalf("expected non-superadmin, got %v err=%v", isSuper, err)
	}
}
