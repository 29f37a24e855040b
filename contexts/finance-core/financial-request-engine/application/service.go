package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"backoffice/contexts/finance-core/financial-request-engine/domain/entities"
	domainerrors "backoffice/contexts/finance-core/financial-request-engine/domain/errors"
	"backoffice/contexts/finance-core/financial-request-engine/domain/services"
	"backoffice/contexts/finance-core/financial-request-engine/ports"
	"backoffice/internal/shared/permissions"
)

type Service struct {
	Repo     ports.Repository
	Outbox   ports.OutboxWriter
	Authz    ports.Authorizer
	Exporter ports.LedgerExporter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// SubmitRequest creates a pending advance or claim after the resolver clears
// the actor. Validation problems are collected per field so form callers can
// surface them all at once.
func (s Service) SubmitRequest(ctx context.Context, actorID string, input ports.SubmitRequestInput) (entities.FinancialRequest, error) {
	if err := s.authorize(ctx, actorID, permissions.FinanceRequestCreate, input.TenantID); err != nil {
		return entities.FinancialRequest{}, err
	}
	if err := validateSubmit(input); err != nil {
		return entities.FinancialRequest{}, err
	}

	requestID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	publicID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.FinancialRequest{}, err
	}

	now := s.now()
	request := entities.FinancialRequest{
		RequestID:     requestID,
		PublicID:      publicID,
		TenantID:      strings.TrimSpace(input.TenantID),
		Kind:          input.Kind,
		BeneficiaryID: strings.TrimSpace(input.BeneficiaryID),
		RequestedBy:   strings.TrimSpace(actorID),
		Amount:        services.Round2(input.Amount),
		Purpose:       strings.TrimSpace(input.Purpose),
		Category:      strings.TrimSpace(input.Category),
		Status:        entities.StatusPending,
		RequestedAt:   now,
		Attachments:   append([]string(nil), input.Attachments...),
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	services.Recompute(&request)

	if err := s.Repo.CreateRequest(ctx, request); err != nil {
		return entities.FinancialRequest{}, err
	}
	if err := s.appendStatusEvent(ctx, "finance.request_submitted", request); err != nil {
		return entities.FinancialRequest{}, err
	}

	ResolveLogger(s.Logger).Info("financial request submitted",
		"event", "finance_request_submitted",
		"module", "finance-core/financial-request-engine",
		"layer", "application",
		"tenant_id", request.TenantID,
		"public_id", request.PublicID,
		"kind", request.Kind,
		"amount", request.Amount,
	)
	return request, nil
}

// UpdatePending edits a pending request. Requesters may edit their own
// pending requests; anyone else needs request management rights, and a
// beneficiary change always needs tenant management rights on top.
func (s Service) UpdatePending(ctx context.Context, actorID string, tenantID string, requestID string, input ports.UpdateRequestInput) (entities.FinancialRequest, error) {
	request, err := s.loadRequest(ctx, tenantID, requestID)
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	if actorID != request.RequestedBy {
		if err := s.authorize(ctx, actorID, permissions.FinanceRequestManage, tenantID); err != nil {
			return entities.FinancialRequest{}, err
		}
	}
	if input.BeneficiaryID != nil && strings.TrimSpace(*input.BeneficiaryID) != request.BeneficiaryID {
		if err := s.authorize(ctx, actorID, permissions.TenantManage, tenantID); err != nil {
			return entities.FinancialRequest{}, err
		}
	}
	if !request.IsPending() {
		return entities.FinancialRequest{}, transitionError(request)
	}

	fieldErrors := domainerrors.FieldErrors{}
	if input.Amount != nil {
		if *input.Amount <= 0 {
			fieldErrors["amount"] = "must be positive"
		} else {
			request.Amount = services.Round2(*input.Amount)
		}
	}
	if input.Purpose != nil {
		request.Purpose = strings.TrimSpace(*input.Purpose)
	}
	if input.Category != nil {
		request.Category = strings.TrimSpace(*input.Category)
	}
	if input.BeneficiaryID != nil {
		if strings.TrimSpace(*input.BeneficiaryID) == "" {
			fieldErrors["beneficiary_id"] = "must not be empty"
		} else {
			request.BeneficiaryID = strings.TrimSpace(*input.BeneficiaryID)
		}
	}
	if input.Attachments != nil {
		request.Attachments = append([]string(nil), (*input.Attachments)...)
	}
	if len(fieldErrors) > 0 {
		return entities.FinancialRequest{}, fieldErrors
	}

	return s.persist(ctx, request)
}

// Approve moves pending to approved, optionally granting a different amount
// than requested. Settlements later count against the approved amount.
func (s Service) Approve(ctx context.Context, actorID string, tenantID string, requestID string, approvedAmount *float64, notes string) (entities.FinancialRequest, error) {
	if err := s.authorize(ctx, actorID, permissions.FinanceRequestApprove, tenantID); err != nil {
		return entities.FinancialRequest{}, err
	}
	request, err := s.loadRequest(ctx, tenantID, requestID)
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	if !services.CanTransition(request.Status, entities.StatusApproved) {
		return entities.FinancialRequest{}, transitionError(request)
	}
	if approvedAmount != nil {
		if *approvedAmount <= 0 {
			return entities.FinancialRequest{}, domainerrors.FieldErrors{"approved_amount": "must be positive"}
		}
		granted := services.Round2(*approvedAmount)
		request.ApprovedAmount = &granted
	}

	now := s.now()
	request.Status = entities.StatusApproved
	request.ApprovedBy = strings.TrimSpace(actorID)
	request.ApprovedAt = &now
	request.ApprovalNotes = strings.TrimSpace(notes)
	services.Recompute(&request)

	updated, err := s.persist(ctx, request)
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	if err := s.appendStatusEvent(ctx, "finance.request_status_changed", updated); err != nil {
		return entities.FinancialRequest{}, err
	}
	return updated, nil
}

// Reject moves pending to rejected, stamping the rejecting actor and reason.
func (s Service) Reject(ctx context.Context, actorID string, tenantID string, requestID string, reason string) (entities.FinancialRequest, error) {
	if err := s.authorize(ctx, actorID, permissions.FinanceRequestApprove, tenantID); err != nil {
		return entities.FinancialRequest{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return entities.FinancialRequest{}, domainerrors.FieldErrors{"reason": "must not be empty"}
	}
	request, err := s.loadRequest(ctx, tenantID, requestID)
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	if !services.CanTransition(request.Status, entities.StatusRejected) {
		return entities.FinancialRequest{}, transitionError(request)
	}

	request.Status = entities.StatusRejected
	request.ApprovedBy = strings.TrimSpace(actorID)
	request.RejectionReason = reason
	services.Recompute(&request)

	updated, err := s.persist(ctx, request)
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	if err := s.appendStatusEvent(ctx, "finance.request_status_changed", updated); err != nil {
		return entities.FinancialRequest{}, err
	}
	return updated, nil
}

// MarkPaid moves approved to paid. paidAt defaults to now when unset.
func (s Service) MarkPaid(ctx context.Context, actorID string, tenantID string, requestID string, paidAt *time.Time) (entities.FinancialRequest, error) {
	if err := s.authorize(ctx, actorID, permissions.FinanceRequestPay, tenantID); err != nil {
		return entities.FinancialRequest{}, err
	}
	request, err := s.loadRequest(ctx, tenantID, requestID)
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	if !services.CanTransition(request.Status, entities.StatusPaid) {
		return entities.FinancialRequest{}, transitionError(request)
	}

	stamp := s.now()
	if paidAt != nil && !paidAt.IsZero() {
		stamp = paidAt.UTC()
	}
	request.Status = entities.StatusPaid
	request.PaidAt = &stamp
	services.Recompute(&request)

	updated, err := s.persist(ctx, request)
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	if err := s.appendStatusEvent(ctx, "finance.request_status_changed", updated); err != nil {
		return entities.FinancialRequest{}, err
	}
	return updated, nil
}

// Cancel withdraws a pending or approved request. Requesters may cancel
// their own; anyone else needs request management rights.
func (s Service) Cancel(ctx context.Context, actorID string, tenantID string, requestID string) (entities.FinancialRequest, error) {
	request, err := s.loadRequest(ctx, tenantID, requestID)
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	if actorID != request.RequestedBy {
		if err := s.authorize(ctx, actorID, permissions.FinanceRequestManage, tenantID); err != nil {
			return entities.FinancialRequest{}, err
		}
	}
	if !services.CanTransition(request.Status, entities.StatusCancelled) {
		return entities.FinancialRequest{}, transitionError(request)
	}

	request.Status = entities.StatusCancelled
	services.Recompute(&request)

	updated, err := s.persist(ctx, request)
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	if err := s.appendStatusEvent(ctx, "finance.request_status_changed", updated); err != nil {
		return entities.FinancialRequest{}, err
	}
	return updated, nil
}

// RecordSettlement applies a repayment (advance) or reimbursement (claim)
// against a paid request. The amount must not exceed the remaining balance;
// an over-settlement is rejected with the authoritative remaining, never
// clamped. The status stays paid.
func (s Service) RecordSettlement(ctx context.Context, actorID string, tenantID string, requestID string, amount float64) (entities.FinancialRequest, error) {
	if err := s.authorize(ctx, actorID, permissions.FinanceRequestSettle, tenantID); err != nil {
		return entities.FinancialRequest{}, err
	}
	if amount <= 0 {
		return entities.FinancialRequest{}, domainerrors.FieldErrors{"amount": "must be positive"}
	}
	request, err := s.loadRequest(ctx, tenantID, requestID)
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	if request.Status != entities.StatusPaid {
		return entities.FinancialRequest{}, transitionError(request)
	}

	amount = services.Round2(amount)
	if amount > request.Remaining {
		return entities.FinancialRequest{}, fmt.Errorf("%w (remaining %.2f)", domainerrors.ErrOverSettlement, request.Remaining)
	}
	request.SettledAmount = services.Round2(request.SettledAmount + amount)
	services.Recompute(&request)

	updated, err := s.persist(ctx, request)
	if err != nil {
		return entities.FinancialRequest{}, err
	}

	ResolveLogger(s.Logger).Info("settlement recorded",
		"event", "finance_settlement_recorded",
		"module", "finance-core/financial-request-engine",
		"layer", "application",
		"tenant_id", updated.TenantID,
		"public_id", updated.PublicID,
		"amount", amount,
		"remaining", updated.Remaining,
	)
	return updated, nil
}

// SoftDelete hides a pending request without destroying its history.
func (s Service) SoftDelete(ctx context.Context, actorID string, tenantID string, requestID string) error {
	request, err := s.loadRequest(ctx, tenantID, requestID)
	if err != nil {
		return err
	}
	if actorID != request.RequestedBy {
		if err := s.authorize(ctx, actorID, permissions.FinanceRequestManage, tenantID); err != nil {
			return err
		}
	}
	if !request.IsPending() {
		return transitionError(request)
	}
	request.IsDeleted = true
	_, err = s.persist(ctx, request)
	return err
}

// GetRequest returns a single request. Requesters and beneficiaries may read
// their own; anyone else needs view rights.
func (s Service) GetRequest(ctx context.Context, actorID string, tenantID string, requestID string) (entities.FinancialRequest, error) {
	request, err := s.loadRequest(ctx, tenantID, requestID)
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	if actorID != request.RequestedBy && actorID != request.BeneficiaryID {
		if err := s.authorize(ctx, actorID, permissions.FinanceRequestView, tenantID); err != nil {
			return entities.FinancialRequest{}, err
		}
	}
	return request, nil
}

// GetRequestByPublicID resolves the opaque client-facing identifier.
func (s Service) GetRequestByPublicID(ctx context.Context, actorID string, publicID string) (entities.FinancialRequest, error) {
	request, err := s.Repo.GetRequestByPublicID(ctx, strings.TrimSpace(publicID))
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	return s.GetRequest(ctx, actorID, request.TenantID, request.RequestID)
}

// ListByTenant lists a tenant's requests, optionally narrowed by status.
func (s Service) ListByTenant(ctx context.Context, actorID string, tenantID string, status string, limit int, offset int) ([]entities.FinancialRequest, error) {
	if err := s.authorize(ctx, actorID, permissions.FinanceRequestView, tenantID); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)
	return s.Repo.ListByTenantAndStatus(ctx, strings.TrimSpace(tenantID), strings.TrimSpace(status), limit, offset)
}

// ListByBeneficiary lists requests addressed to one principal. Principals
// may always list their own.
func (s Service) ListByBeneficiary(ctx context.Context, actorID string, beneficiaryID string, status string, limit int, offset int) ([]entities.FinancialRequest, error) {
	beneficiaryID = strings.TrimSpace(beneficiaryID)
	if beneficiaryID == "" {
		return nil, domainerrors.FieldErrors{"beneficiary_id": "must not be empty"}
	}
	if actorID != beneficiaryID {
		if err := s.authorize(ctx, actorID, permissions.FinanceRequestView, ""); err != nil {
			return nil, err
		}
	}
	limit, offset = clampPage(limit, offset)
	return s.Repo.ListByBeneficiaryAndStatus(ctx, beneficiaryID, strings.TrimSpace(status), limit, offset)
}

// ExportLedger renders the tenant's full request ledger as a spreadsheet.
func (s Service) ExportLedger(ctx context.Context, actorID string, tenantID string) ([]byte, error) {
	if err := s.authorize(ctx, actorID, permissions.ReportsExport, tenantID); err != nil {
		return nil, err
	}
	if s.Exporter == nil {
		return nil, domainerrors.ErrRequestNotFound
	}
	requests, err := s.Repo.ListByTenantAndStatus(ctx, strings.TrimSpace(tenantID), "", 10000, 0)
	if err != nil {
		return nil, err
	}
	return s.Exporter.WriteLedger(ctx, strings.TrimSpace(tenantID), requests)
}

func (s Service) authorize(ctx context.Context, actorID string, permission string, tenantID string) error {
	if s.Authz == nil {
		return nil
	}
	allowed, err := s.Authz.CanPerform(ctx, strings.TrimSpace(actorID), permission, strings.TrimSpace(tenantID))
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: %s", domainerrors.ErrPermissionDenied, permission)
	}
	return nil
}

func (s Service) loadRequest(ctx context.Context, tenantID string, requestID string) (entities.FinancialRequest, error) {
	tenantID = strings.TrimSpace(tenantID)
	requestID = strings.TrimSpace(requestID)
	if tenantID == "" || requestID == "" {
		return entities.FinancialRequest{}, domainerrors.FieldErrors{"request_id": "must not be empty"}
	}
	request, err := s.Repo.GetRequest(ctx, tenantID, requestID)
	if err != nil {
		return entities.FinancialRequest{}, err
	}
	if request.IsDeleted {
		return entities.FinancialRequest{}, domainerrors.ErrRequestDeleted
	}
	return request, nil
}

// persist bumps the optimistic version and writes the row. A racing writer
// that got there first leaves the expected version stale and the loser sees
// an invalid transition with the authoritative state gone from under it.
func (s Service) persist(ctx context.Context, request entities.FinancialRequest) (entities.FinancialRequest, error) {
	expected := request.Version
	request.Version = expected + 1
	request.UpdatedAt = s.now()
	if err := s.Repo.UpdateRequest(ctx, request, expected); err != nil {
		return entities.FinancialRequest{}, err
	}
	return request, nil
}

func (s Service) appendStatusEvent(ctx context.Context, eventType string, request entities.FinancialRequest) error {
	if s.Outbox == nil {
		return nil
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(map[string]any{
		"tenant_id":    request.TenantID,
		"principal_id": request.BeneficiaryID,
		"request_id":   request.PublicID,
		"status":       request.Status,
	})
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       s.now(),
		SourceService:    "financial-request-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "tenant_id",
		PartitionKey:     request.TenantID,
		Data:             data,
	})
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func transitionError(request entities.FinancialRequest) error {
	return fmt.Errorf("%w (current status %s)", domainerrors.ErrInvalidTransition, request.Status)
}

func validateSubmit(input ports.SubmitRequestInput) error {
	fieldErrors := domainerrors.FieldErrors{}
	if strings.TrimSpace(input.TenantID) == "" {
		fieldErrors["tenant_id"] = "must not be empty"
	}
	if !entities.IsValidKind(input.Kind) {
		fieldErrors["kind"] = "must be advance or claim"
	}
	if strings.TrimSpace(input.BeneficiaryID) == "" {
		fieldErrors["beneficiary_id"] = "must not be empty"
	}
	if input.Amount <= 0 {
		fieldErrors["amount"] = "must be positive"
	}
	if len(fieldErrors) > 0 {
		return fieldErrors
	}
	return nil
}

func clampPage(limit int, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
