package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"backoffice/contexts/tenant-operations/membership-service/adapters/memory"
	"backoffice/contexts/tenant-operations/membership-service/application"
	"backoffice/contexts/tenant-operations/membership-service/application/workers"
	"backoffice/contexts/tenant-operations/membership-service/domain/entities"
	domainerrors "backoffice/contexts/tenant-operations/membership-service/domain/errors"
	"backoffice/internal/shared/permissions"
)

func newService(t *testing.T) (application.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return application.Service{
		Repo:   store,
		Outbox: store,
		Clock:  store,
		IDGen:  store,
	}, store
}

func TestAddMemberRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	if _, err := service.AddMember(ctx, "tenant-1", "principal-1", "manager", nil, "admin-1"); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	_, err := service.AddMember(ctx, "tenant-1", "principal-1", "employee", nil, "admin-1")
	if !errors.Is(err, domainerrors.ErrDuplicateMembership) {
		t.Fatalf("expected ErrDuplicateMembership, got %v", err)
	}

	// Same principal in another tenant is a different membership.
	if _, err := service.AddMember(ctx, "tenant-2", "principal-1", "employee", nil, "admin-1"); err != nil {
		t.Fatalf("cross-tenant add failed: %v", err)
	}
}

func TestAddMemberValidatesOverrides(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	_, err := service.AddMember(ctx, "tenant-1", "principal-1", "manager", []string{"made.up_permission"}, "admin-1")
	if !errors.Is(err, domainerrors.ErrPermissionNotRegistered) {
		t.Fatalf("expected ErrPermissionNotRegistered, got %v", err)
	}

	membership, err := service.AddMember(ctx, "tenant-1", "principal-1", "manager", []string{permissions.FinanceRequestApprove}, "admin-1")
	if err != nil {
		t.Fatalf("add with registered override failed: %v", err)
	}
	if len(membership.PermissionOverrides) != 1 || membership.PermissionOverrides[0] != permissions.FinanceRequestApprove {
		t.Fatalf("unexpected overrides: %v", membership.PermissionOverrides)
	}
}

func TestInviteAcceptFlow(t *testing.T) {
	ctx := context.Background()
	service, store := newService(t)
	store.SetNow(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	membership, err := service.Invite(ctx, "tenant-1", "principal-1", "employee", nil, "admin-1")
	if err != nil {
		t.Fatalf("invite failed: %v", err)
	}
	if membership.InvitationToken == "" {
		t.Fatal("expected invitation token")
	}
	if membership.InvitationSentAt == nil || membership.InvitationAcceptedAt != nil {
		t.Fatalf("unexpected invitation timestamps: %+v", membership)
	}
	if !membership.AwaitingAcceptance() {
		t.Fatal("expected membership to await acceptance")
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("outbox list failed: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "membership.invitation_created" {
		t.Fatalf("expected one invitation_created event, got %+v", pending)
	}

	accepted, err := service.AcceptInvitation(ctx, membership.InvitationToken)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.InvitationAcceptedAt == nil {
		t.Fatal("expected acceptance timestamp")
	}

	if _, err := service.AcceptInvitation(ctx, membership.InvitationToken); !errors.Is(err, domainerrors.ErrInvitationAccepted) {
		t.Fatalf("expected ErrInvitationAccepted on second accept, got %v", err)
	}
	if _, err := service.AcceptInvitation(ctx, "no-such-token"); !errors.Is(err, domainerrors.ErrInvitationNotFound) {
		t.Fatalf("expected ErrInvitationNotFound, got %v", err)
	}
}

func TestRemoveUnacceptedInvitation(t *testing.T) {
	ctx := context.Background()
	service, store := newService(t)
	store.SetNow(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	membership, err := service.Invite(ctx, "tenant-1", "principal-1", "employee", nil, "admin-1")
	if err != nil {
		t.Fatalf("invite failed: %v", err)
	}

	// The invitation is never accepted; removal still works and the row
	// keeps its invitation history.
	store.SetNow(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	removed, err := service.Remove(ctx, "tenant-1", "principal-1")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if removed.EmploymentStatus != entities.StatusTerminated {
		t.Fatalf("expected terminated, got %q", removed.EmploymentStatus)
	}
	if removed.LeftAt == nil || !removed.LeftAt.Equal(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected left_at: %v", removed.LeftAt)
	}
	if removed.InvitationToken != membership.InvitationToken || removed.InvitationAcceptedAt != nil {
		t.Fatal("invitation history lost on removal")
	}

	got, err := service.GetMembership(ctx, "tenant-1", "principal-1")
	if err != nil {
		t.Fatalf("terminated membership should remain queryable: %v", err)
	}
	if !got.IsTerminated() {
		t.Fatal("expected terminated membership from lookup")
	}
}

func TestTerminatedMembershipIsFrozen(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	if _, err := service.AddMember(ctx, "tenant-1", "principal-1", "manager", nil, "admin-1"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := service.Remove(ctx, "tenant-1", "principal-1"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if _, err := service.ChangeRole(ctx, "tenant-1", "principal-1", "employee"); !errors.Is(err, domainerrors.ErrMembershipTerminated) {
		t.Fatalf("expected ErrMembershipTerminated on role change, got %v", err)
	}
	if _, err := service.SetOverrides(ctx, "tenant-1", "principal-1", []string{permissions.FeaturesView}); !errors.Is(err, domainerrors.ErrMembershipTerminated) {
		t.Fatalf("expected ErrMembershipTerminated on overrides, got %v", err)
	}
	if _, err := service.ChangeStatus(ctx, "tenant-1", "principal-1", entities.StatusInactive); !errors.Is(err, domainerrors.ErrMembershipTerminated) {
		t.Fatalf("expected ErrMembershipTerminated on status change, got %v", err)
	}
	if _, err := service.Remove(ctx, "tenant-1", "principal-1"); !errors.Is(err, domainerrors.ErrMembershipTerminated) {
		t.Fatalf("expected ErrMembershipTerminated on double remove, got %v", err)
	}
}

func TestReactivateTerminatedMembership(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	if _, err := service.AddMember(ctx, "tenant-1", "principal-1", "manager", nil, "admin-1"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := service.Reactivate(ctx, "tenant-1", "principal-1"); !errors.Is(err, domainerrors.ErrMembershipNotTerminated) {
		t.Fatalf("expected ErrMembershipNotTerminated, got %v", err)
	}

	if _, err := service.Remove(ctx, "tenant-1", "principal-1"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	restored, err := service.Reactivate(ctx, "tenant-1", "principal-1")
	if err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if restored.EmploymentStatus != entities.StatusActive || restored.LeftAt != nil {
		t.Fatalf("unexpected restored state: %+v", restored)
	}
}

func TestChangeStatusDisallowsTerminatedDirectly(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	if _, err := service.AddMember(ctx, "tenant-1", "principal-1", "manager", nil, "admin-1"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := service.ChangeStatus(ctx, "tenant-1", "principal-1", entities.StatusTerminated); !errors.Is(err, domainerrors.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus for direct termination, got %v", err)
	}
	if _, err := service.ChangeStatus(ctx, "tenant-1", "principal-1", "retired"); !errors.Is(err, domainerrors.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus for unknown status, got %v", err)
	}

	updated, err := service.ChangeStatus(ctx, "tenant-1", "principal-1", entities.StatusInactive)
	if err != nil {
		t.Fatalf("status change failed: %v", err)
	}
	if updated.EmploymentStatus != entities.StatusInactive {
		t.Fatalf("expected inactive, got %q", updated.EmploymentStatus)
	}
}

func TestRoleInTenant(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	role, err := service.RoleInTenant(ctx, "tenant-1", "principal-1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if role != "" {
		t.Fatalf("expected empty role without membership, got %q", role)
	}

	if _, err := service.AddMember(ctx, "tenant-1", "principal-1", "owner", nil, "admin-1"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	ok, err := service.HasRoleInTenant(ctx, "tenant-1", "principal-1", "owner")
	if err != nil {
		t.Fatalf("role check failed: %v", err)
	}
	if !ok {
		t.Fatal("expected owner role")
	}
}

func TestInvitationReminderSweep(t *testing.T) {
	ctx := context.Background()
	service, store := newService(t)
	store.SetNow(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	if _, err := service.Invite(ctx, "tenant-1", "principal-1", "employee", nil, "admin-1"); err != nil {
		t.Fatalf("invite failed: %v", err)
	}
	fresh, err := service.Invite(ctx, "tenant-1", "principal-2", "employee", nil, "admin-1")
	if err != nil {
		t.Fatalf("invite failed: %v", err)
	}

	// principal-2 accepts right away; only principal-1 should be reminded.
	if _, err := service.AcceptInvitation(ctx, fresh.InvitationToken); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	store.SetNow(time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC))
	reminder := workers.InvitationReminder{
		Repo:        store,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
		RemindAfter: 72 * time.Hour,
	}
	if err := reminder.RunOnce(ctx); err != nil {
		t.Fatalf("reminder run failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("outbox list failed: %v", err)
	}
	reminders := 0
	for _, message := range pending {
		if message.EventType == "membership.invitation_reminder" {
			reminders++
		}
	}
	if reminders != 1 {
		t.Fatalf("expected exactly one reminder event, got %d", reminders)
	}
}
