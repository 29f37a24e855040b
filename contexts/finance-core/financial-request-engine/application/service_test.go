package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"backoffice/contexts/finance-core/financial-request-engine/adapters/memory"
	"backoffice/contexts/finance-core/financial-request-engine/application"
	"backoffice/contexts/finance-core/financial-request-engine/domain/entities"
	domainerrors "backoffice/contexts/finance-core/financial-request-engine/domain/errors"
	"backoffice/contexts/finance-core/financial-request-engine/domain/services"
	"backoffice/contexts/finance-core/financial-request-engine/ports"
)

// grantTable allows everything except the permissions listed per principal.
type grantTable struct {
	denied map[string]map[string]bool // principalID -> permission -> denied
}

func (g grantTable) CanPerform(_ context.Context, principalID string, permission string, _ string) (bool, error) {
	return !g.denied[principalID][permission], nil
}

func deny(principalID string, perms ...string) grantTable {
	table := grantTable{denied: map[string]map[string]bool{principalID: {}}}
	for _, p := range perms {
		table.denied[principalID][p] = true
	}
	return table
}

func newEngine(t *testing.T, authz ports.Authorizer) (application.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return application.Service{
		Repo:   store,
		Outbox: store,
		Authz:  authz,
		Clock:  store,
		IDGen:  store,
	}, store
}

func submit(t *testing.T, service application.Service, amount float64) entities.FinancialRequest {
	t.Helper()
	request, err := service.SubmitRequest(context.Background(), "requester-1", ports.SubmitRequestInput{
		TenantID:      "tenant-1",
		Kind:          entities.KindAdvance,
		BeneficiaryID: "beneficiary-1",
		Amount:        amount,
		Purpose:       "equipment",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return request
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newEngine(t, grantTable{})

	_, err := service.SubmitRequest(ctx, "requester-1", ports.SubmitRequestInput{
		TenantID: "tenant-1",
		Kind:     "loan",
		Amount:   -5,
	})
	var fieldErrors domainerrors.FieldErrors
	if !errors.As(err, &fieldErrors) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	for _, field := range []string{"kind", "beneficiary_id", "amount"} {
		if _, ok := fieldErrors[field]; !ok {
			t.Fatalf("expected %s in field errors, got %v", field, fieldErrors)
		}
	}
}

func TestSubmitInitialLedger(t *testing.T) {
	service, store := newEngine(t, grantTable{})
	request := submit(t, service, 1000)

	if request.Status != entities.StatusPending {
		t.Fatalf("expected pending, got %q", request.Status)
	}
	if request.Remaining != 1000 || request.IsFullySettled {
		t.Fatalf("unexpected ledger: %+v", request)
	}
	if request.PublicID == "" || request.PublicID == request.RequestID {
		t.Fatal("public id must be a distinct opaque token")
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("outbox list failed: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "finance.request_submitted" {
		t.Fatalf("expected submitted event, got %+v", pending)
	}
}

func TestAdvanceSettlementLifecycle(t *testing.T) {
	ctx := context.Background()
	service, _ := newEngine(t, grantTable{})
	request := submit(t, service, 1000)

	approved, err := service.Approve(ctx, "approver-1", "tenant-1", request.RequestID, nil, "ok")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.ApprovedBy != "approver-1" || approved.ApprovedAt == nil {
		t.Fatalf("approval stamps missing: %+v", approved)
	}

	paid, err := service.MarkPaid(ctx, "payer-1", "tenant-1", request.RequestID, nil)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.PaidAt == nil {
		t.Fatal("paid_at not stamped")
	}

	after300, err := service.RecordSettlement(ctx, "payer-1", "tenant-1", request.RequestID, 300)
	if err != nil {
		t.Fatalf("settle 300 failed: %v", err)
	}
	after700, err := service.RecordSettlement(ctx, "payer-1", "tenant-1", request.RequestID, 400)
	if err != nil {
		t.Fatalf("settle 400 failed: %v", err)
	}
	if after300.Remaining != 700 || after700.Remaining != 300 {
		t.Fatalf("remaining wrong: %v then %v", after300.Remaining, after700.Remaining)
	}
	if after700.IsFullySettled {
		t.Fatal("not fully settled yet")
	}

	// Over-settlement is rejected with the authoritative remaining, never clamped.
	_, err = service.RecordSettlement(ctx, "payer-1", "tenant-1", request.RequestID, 301)
	if !errors.Is(err, domainerrors.ErrOverSettlement) {
		t.Fatalf("expected ErrOverSettlement, got %v", err)
	}
	if !strings.Contains(err.Error(), "300.00") {
		t.Fatalf("expected remaining in error, got %q", err.Error())
	}

	final, err := service.RecordSettlement(ctx, "payer-1", "tenant-1", request.RequestID, 300)
	if err != nil {
		t.Fatalf("final settle failed: %v", err)
	}
	if final.Remaining != 0 || !final.IsFullySettled || final.Status != entities.StatusPaid {
		t.Fatalf("unexpected final state: %+v", final)
	}

	// Fully settled requests accept nothing further.
	if _, err := service.RecordSettlement(ctx, "payer-1", "tenant-1", request.RequestID, 1); !errors.Is(err, domainerrors.ErrOverSettlement) {
		t.Fatalf("expected ErrOverSettlement on settled request, got %v", err)
	}
}

func TestApprovedAmountIsSettlementBasis(t *testing.T) {
	ctx := context.Background()
	service, _ := newEngine(t, grantTable{})
	request := submit(t, service, 1000)

	granted := 600.0
	approved, err := service.Approve(ctx, "approver-1", "tenant-1", request.RequestID, &granted, "partial grant")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Remaining != 600 {
		t.Fatalf("remaining should follow approved amount, got %v", approved.Remaining)
	}
	if _, err := service.MarkPaid(ctx, "payer-1", "tenant-1", request.RequestID, nil); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if _, err := service.RecordSettlement(ctx, "payer-1", "tenant-1", request.RequestID, 601); !errors.Is(err, domainerrors.ErrOverSettlement) {
		t.Fatalf("expected ErrOverSettlement above approved amount, got %v", err)
	}
}

func TestStateMachineEdges(t *testing.T) {
	ctx := context.Background()
	service, _ := newEngine(t, grantTable{})

	// Rejected is terminal.
	rejected := submit(t, service, 100)
	if _, err := service.Reject(ctx, "approver-1", "tenant-1", rejected.RequestID, "incomplete"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if _, err := service.Approve(ctx, "approver-1", "tenant-1", rejected.RequestID, nil, ""); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after reject, got %v", err)
	}
	if _, err := service.Cancel(ctx, "requester-1", "tenant-1", rejected.RequestID); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("rejected must have no outgoing transitions, got %v", err)
	}

	// Cancelled is terminal.
	cancelled := submit(t, service, 100)
	if _, err := service.Cancel(ctx, "requester-1", "tenant-1", cancelled.RequestID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := service.Approve(ctx, "approver-1", "tenant-1", cancelled.RequestID, nil, ""); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after cancel, got %v", err)
	}

	// Paid cannot be cancelled, approved can.
	paid := submit(t, service, 100)
	if _, err := service.Approve(ctx, "approver-1", "tenant-1", paid.RequestID, nil, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := service.MarkPaid(ctx, "payer-1", "tenant-1", paid.RequestID, nil); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if _, err := service.Cancel(ctx, "requester-1", "tenant-1", paid.RequestID); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("paid must not cancel, got %v", err)
	}

	approvedThenCancelled := submit(t, service, 100)
	if _, err := service.Approve(ctx, "approver-1", "tenant-1", approvedThenCancelled.RequestID, nil, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := service.Cancel(ctx, "requester-1", "tenant-1", approvedThenCancelled.RequestID); err != nil {
		t.Fatalf("cancel from approved failed: %v", err)
	}

	// markPaid straight from pending is invalid.
	pending := submit(t, service, 100)
	if _, err := service.MarkPaid(ctx, "payer-1", "tenant-1", pending.RequestID, nil); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for pending→paid, got %v", err)
	}
	// The error reports the authoritative status for resynchronization.
	_, err := service.MarkPaid(ctx, "payer-1", "tenant-1", pending.RequestID, nil)
	if !strings.Contains(err.Error(), entities.StatusPending) {
		t.Fatalf("expected current status in error, got %q", err.Error())
	}
}

func TestRejectStampsActorAndReason(t *testing.T) {
	ctx := context.Background()
	service, _ := newEngine(t, grantTable{})
	request := submit(t, service, 100)

	rejected, err := service.Reject(ctx, "approver-2", "tenant-1", request.RequestID, "missing receipts")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.ApprovedBy != "approver-2" || rejected.RejectionReason != "missing receipts" {
		t.Fatalf("rejection stamps wrong: %+v", rejected)
	}
}

func TestPermissionDeniedAbortsBeforeMutation(t *testing.T) {
	ctx := context.Background()
	service, store := newEngine(t, grantTable{})
	request := submit(t, service, 100)

	service.Authz = deny("approver-1", "finance.request_approve")
	if _, err := service.Approve(ctx, "approver-1", "tenant-1", request.RequestID, nil, ""); !errors.Is(err, domainerrors.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	unchanged, err := store.GetRequest(ctx, "tenant-1", request.RequestID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if unchanged.Status != entities.StatusPending || unchanged.Version != request.Version {
		t.Fatalf("denied call mutated state: %+v", unchanged)
	}
}

func TestEditRules(t *testing.T) {
	ctx := context.Background()
	service, _ := newEngine(t, grantTable{})
	request := submit(t, service, 100)

	// Requester edits own pending request.
	amount := 150.0
	updated, err := service.UpdatePending(ctx, "requester-1", "tenant-1", request.RequestID, ports.UpdateRequestInput{Amount: &amount})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if updated.Amount != 150 || updated.Remaining != 150 {
		t.Fatalf("edit not applied: %+v", updated)
	}

	// Beneficiary change needs tenant management rights.
	service.Authz = deny("requester-1", "tenant.manage")
	other := "beneficiary-2"
	if _, err := service.UpdatePending(ctx, "requester-1", "tenant-1", request.RequestID, ports.UpdateRequestInput{BeneficiaryID: &other}); !errors.Is(err, domainerrors.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for beneficiary change, got %v", err)
	}

	// No edits once the request leaves pending.
	service.Authz = grantTable{}
	if _, err := service.Approve(ctx, "approver-1", "tenant-1", request.RequestID, nil, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := service.UpdatePending(ctx, "requester-1", "tenant-1", request.RequestID, ports.UpdateRequestInput{Amount: &amount}); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for post-pending edit, got %v", err)
	}
}

func TestSoftDeletePendingOnly(t *testing.T) {
	ctx := context.Background()
	service, _ := newEngine(t, grantTable{})

	deletable := submit(t, service, 100)
	if err := service.SoftDelete(ctx, "requester-1", "tenant-1", deletable.RequestID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := service.GetRequest(ctx, "requester-1", "tenant-1", deletable.RequestID); !errors.Is(err, domainerrors.ErrRequestDeleted) {
		t.Fatalf("expected ErrRequestDeleted, got %v", err)
	}

	kept := submit(t, service, 100)
	if _, err := service.Approve(ctx, "approver-1", "tenant-1", kept.RequestID, nil, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := service.SoftDelete(ctx, "requester-1", "tenant-1", kept.RequestID); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition deleting approved, got %v", err)
	}
}

func TestConcurrentTransitionLoses(t *testing.T) {
	ctx := context.Background()
	service, store := newEngine(t, grantTable{})
	request := submit(t, service, 100)

	// A racing writer lands first and bumps the version under us.
	racer := request
	racer.Status = entities.StatusApproved
	racer.Version = request.Version + 1
	if err := store.UpdateRequest(ctx, racer, request.Version); err != nil {
		t.Fatalf("racer update failed: %v", err)
	}

	if _, err := service.Reject(ctx, "approver-1", "tenant-1", request.RequestID, "late"); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("losing racer must see ErrInvalidTransition, got %v", err)
	}
}

func TestSettledAmountMonotonicity(t *testing.T) {
	ctx := context.Background()
	service, _ := newEngine(t, grantTable{})
	request := submit(t, service, 500)

	if _, err := service.Approve(ctx, "approver-1", "tenant-1", request.RequestID, nil, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := service.MarkPaid(ctx, "payer-1", "tenant-1", request.RequestID, nil); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	previous := 0.0
	for _, amount := range []float64{100.5, 0.25, 399.25} {
		updated, err := service.RecordSettlement(ctx, "payer-1", "tenant-1", request.RequestID, amount)
		if err != nil {
			t.Fatalf("settle %v failed: %v", amount, err)
		}
		if updated.SettledAmount < previous {
			t.Fatalf("settled amount decreased: %v -> %v", previous, updated.SettledAmount)
		}
		if want := services.Round2(updated.AmountBasis() - updated.SettledAmount); updated.Remaining != want && updated.Remaining != 0 {
			t.Fatalf("ledger invariant broken: %+v", updated)
		}
		previous = updated.SettledAmount
	}

	// Negative and zero settlements never pass validation.
	for _, amount := range []float64{0, -10} {
		_, err := service.RecordSettlement(ctx, "payer-1", "tenant-1", request.RequestID, amount)
		var fieldErrors domainerrors.FieldErrors
		if !errors.As(err, &fieldErrors) {
			t.Fatalf("expected FieldErrors for %v, got %v", amount, err)
		}
	}
}

func TestListByBeneficiarySelfService(t *testing.T) {
	ctx := context.Background()
	service, _ := newEngine(t, grantTable{})
	submit(t, service, 100)
	submit(t, service, 200)

	// Beneficiaries list their own without any grant.
	service.Authz = deny("beneficiary-1", "finance.request_view")
	items, err := service.ListByBeneficiary(ctx, "beneficiary-1", "beneficiary-1", "", 10, 0)
	if err != nil {
		t.Fatalf("self list failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(items))
	}

	// A stranger without view rights is refused.
	service.Authz = deny("stranger-1", "finance.request_view")
	if _, err := service.ListByBeneficiary(ctx, "stranger-1", "beneficiary-1", "", 10, 0); !errors.Is(err, domainerrors.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestGetByPublicID(t *testing.T) {
	ctx := context.Background()
	service, _ := newEngine(t, grantTable{})
	request := submit(t, service, 100)

	found, err := service.GetRequestByPublicID(ctx, "requester-1", request.PublicID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if found.RequestID != request.RequestID {
		t.Fatalf("wrong request resolved: %+v", found)
	}
}
