package httpadapter

import (
	"context"
	"log/slog"

	application "backoffice/contexts/finance-core/financial-request-engine/application"
	"backoffice/contexts/finance-core/financial-request-engine/domain/entities"
	"backoffice/contexts/finance-core/financial-request-engine/ports"
	httptransport "backoffice/contexts/finance-core/financial-request-engine/transport/http"
)

// Handler maps HTTP DTOs to engine calls. The acting principal is resolved
// by the server layer and passed through explicitly.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) SubmitRequestHandler(ctx context.Context, actorID string, tenantID string, request httptransport.SubmitRequestRequest) (httptransport.FinancialRequestResponse, error) {
	created, err := h.Service.SubmitRequest(ctx, actorID, ports.SubmitRequestInput{
		TenantID:      tenantID,
		Kind:          request.Kind,
		BeneficiaryID: request.BeneficiaryID,
		Amount:        request.Amount,
		Purpose:       request.Purpose,
		Category:      request.Category,
		Attachments:   request.Attachments,
	})
	if err != nil {
		return httptransport.FinancialRequestResponse{}, err
	}
	return toResponse(created), nil
}

func (h Handler) UpdateRequestHandler(ctx context.Context, actorID string, tenantID string, requestID string, request httptransport.UpdateRequestRequest) (httptransport.FinancialRequestResponse, error) {
	updated, err := h.Service.UpdatePending(ctx, actorID, tenantID, requestID, ports.UpdateRequestInput{
		Amount:        request.Amount,
		Purpose:       request.Purpose,
		Category:      request.Category,
		BeneficiaryID: request.BeneficiaryID,
		Attachments:   request.Attachments,
	})
	if err != nil {
		return httptransport.FinancialRequestResponse{}, err
	}
	return toResponse(updated), nil
}

func (h Handler) ApproveRequestHandler(ctx context.Context, actorID string, tenantID string, requestID string, request httptransport.ApproveRequestRequest) (httptransport.FinancialRequestResponse, error) {
	updated, err := h.Service.Approve(ctx, actorID, tenantID, requestID, request.ApprovedAmount, request.Notes)
	if err != nil {
		return httptransport.FinancialRequestResponse{}, err
	}
	return toResponse(updated), nil
}

func (h Handler) RejectRequestHandler(ctx context.Context, actorID string, tenantID string, requestID string, request httptransport.RejectRequestRequest) (httptransport.FinancialRequestResponse, error) {
	updated, err := h.Service.Reject(ctx, actorID, tenantID, requestID, request.Reason)
	if err != nil {
		return httptransport.FinancialRequestResponse{}, err
	}
	return toResponse(updated), nil
}

func (h Handler) MarkPaidHandler(ctx context.Context, actorID string, tenantID string, requestID string, request httptransport.MarkPaidRequest) (httptransport.FinancialRequestResponse, error) {
	updated, err := h.Service.MarkPaid(ctx, actorID, tenantID, requestID, request.PaidAt)
	if err != nil {
		return httptransport.FinancialRequestResponse{}, err
	}
	return toResponse(updated), nil
}

func (h Handler) CancelRequestHandler(ctx context.Context, actorID string, tenantID string, requestID string) (httptransport.FinancialRequestResponse, error) {
	updated, err := h.Service.Cancel(ctx, actorID, tenantID, requestID)
	if err != nil {
		return httptransport.FinancialRequestResponse{}, err
	}
	return toResponse(updated), nil
}

func (h Handler) RecordSettlementHandler(ctx context.Context, actorID string, tenantID string, requestID string, request httptransport.RecordSettlementRequest) (httptransport.FinancialRequestResponse, error) {
	updated, err := h.Service.RecordSettlement(ctx, actorID, tenantID, requestID, request.Amount)
	if err != nil {
		return httptransport.FinancialRequestResponse{}, err
	}
	return toResponse(updated), nil
}

func (h Handler) DeleteRequestHandler(ctx context.Context, actorID string, tenantID string, requestID string) error {
	return h.Service.SoftDelete(ctx, actorID, tenantID, requestID)
}

func (h Handler) GetRequestHandler(ctx context.Context, actorID string, tenantID string, requestID string) (httptransport.FinancialRequestResponse, error) {
	request, err := h.Service.GetRequest(ctx, actorID, tenantID, requestID)
	if err != nil {
		return httptransport.FinancialRequestResponse{}, err
	}
	return toResponse(request), nil
}

func (h Handler) ListByTenantHandler(ctx context.Context, actorID string, tenantID string, status string, limit int, offset int) (httptransport.ListRequestsResponse, error) {
	requests, err := h.Service.ListByTenant(ctx, actorID, tenantID, status, limit, offset)
	if err != nil {
		return httptransport.ListRequestsResponse{}, err
	}
	return toListResponse(requests), nil
}

func (h Handler) ListByBeneficiaryHandler(ctx context.Context, actorID string, beneficiaryID string, status string, limit int, offset int) (httptransport.ListRequestsResponse, error) {
	requests, err := h.Service.ListByBeneficiary(ctx, actorID, beneficiaryID, status, limit, offset)
	if err != nil {
		return httptransport.ListRequestsResponse{}, err
	}
	return toListResponse(requests), nil
}

func (h Handler) ExportLedgerHandler(ctx context.Context, actorID string, tenantID string) ([]byte, error) {
	return h.Service.ExportLedger(ctx, actorID, tenantID)
}

func toListResponse(requests []entities.FinancialRequest) httptransport.ListRequestsResponse {
	items := make([]httptransport.FinancialRequestResponse, 0, len(requests))
	for _, request := range requests {
		items = append(items, toResponse(request))
	}
	return httptransport.ListRequestsResponse{Items: items}
}

func toResponse(request entities.FinancialRequest) httptransport.FinancialRequestResponse {
	return httptransport.FinancialRequestResponse{
		PublicID:        request.PublicID,
		TenantID:        request.TenantID,
		Kind:            request.Kind,
		BeneficiaryID:   request.BeneficiaryID,
		RequestedBy:     request.RequestedBy,
		ApprovedBy:      request.ApprovedBy,
		Amount:          request.Amount,
		ApprovedAmount:  request.ApprovedAmount,
		Purpose:         request.Purpose,
		Category:        request.Category,
		Status:          request.Status,
		RequestedAt:     request.RequestedAt,
		ApprovedAt:      request.ApprovedAt,
		PaidAt:          request.PaidAt,
		ApprovalNotes:   request.ApprovalNotes,
		RejectionReason: request.RejectionReason,
		SettledAmount:   request.SettledAmount,
		Remaining:       request.Remaining,
		IsFullySettled:  request.IsFullySettled,
		Attachments:     request.Attachments,
	}
}
