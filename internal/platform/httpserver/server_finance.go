package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	financeerrors "backoffice/contexts/finance-core/financial-request-engine/domain/errors"
	financehttp "backoffice/contexts/finance-core/financial-request-engine/transport/http"
)

func (s *Server) registerFinanceRoutes() {
	s.handle("POST /api/finance/v1/tenants/{tenant_id}/requests", s.handleFinanceSubmit)
	s.handle("GET /api/finance/v1/tenants/{tenant_id}/requests", s.handleFinanceListByTenant)
	s.handle("GET /api/finance/v1/tenants/{tenant_id}/requests/{request_id}", s.handleFinanceGet)
	s.handle("PATCH /api/finance/v1/tenants/{tenant_id}/requests/{request_id}", s.handleFinanceUpdate)
	s.handle("DELETE /api/finance/v1/tenants/{tenant_id}/requests/{request_id}", s.handleFinanceDelete)
	s.handle("POST /api/finance/v1/tenants/{tenant_id}/requests/{request_id}/approve", s.handleFinanceApprove)
	s.handle("POST /api/finance/v1/tenants/{tenant_id}/requests/{request_id}/reject", s.handleFinanceReject)
	s.handle("POST /api/finance/v1/tenants/{tenant_id}/requests/{request_id}/pay", s.handleFinancePay)
	s.handle("POST /api/finance/v1/tenants/{tenant_id}/requests/{request_id}/cancel", s.handleFinanceCancel)
	s.handle("POST /api/finance/v1/tenants/{tenant_id}/requests/{request_id}/settlements", s.handleFinanceSettle)
	s.handle("GET /api/finance/v1/tenants/{tenant_id}/ledger", s.handleFinanceExportLedger)
	s.handle("GET /api/finance/v1/beneficiaries/{beneficiary_id}/requests", s.handleFinanceListByBeneficiary)
}

func (s *Server) handleFinanceSubmit(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeFinanceError)
	if !ok {
		return
	}
	var req financehttp.SubmitRequestRequest
	if !s.decodeJSON(w, r, &req, writeFinanceError) {
		return
	}
	resp, err := s.finance.Handler.SubmitRequestHandler(r.Context(), actorID, r.PathValue("tenant_id"), req)
	if err != nil {
		writeFinanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleFinanceListByTenant(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeFinanceError)
	if !ok {
		return
	}
	limit, ok := queryIntValue(w, r, "limit", writeFinanceError)
	if !ok {
		return
	}
	offset, ok := queryIntValue(w, r, "offset", writeFinanceError)
	if !ok {
		return
	}
	resp, err := s.finance.Handler.ListByTenantHandler(
		r.Context(),
		actorID,
		r.PathValue("tenant_id"),
		r.URL.Query().Get("status"),
		limit,
		offset,
	)
	if err != nil {
		writeFinanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinanceGet(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeFinanceError)
	if !ok {
		return
	}
	resp, err := s.finance.Handler.GetRequestHandler(r.Context(), actorID, r.PathValue("tenant_id"), r.PathValue("request_id"))
	if err != nil {
		writeFinanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinanceUpdate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeFinanceError)
	if !ok {
		return
	}
	var req financehttp.UpdateRequestRequest
	if !s.decodeJSON(w, r, &req, writeFinanceError) {
		return
	}
	resp, err := s.finance.Handler.UpdateRequestHandler(r.Context(), actorID, r.PathValue("tenant_id"), r.PathValue("request_id"), req)
	if err != nil {
		writeFinanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinanceDelete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeFinanceError)
	if !ok {
		return
	}
	if err := s.finance.Handler.DeleteRequestHandler(r.Context(), actorID, r.PathValue("tenant_id"), r.PathValue("request_id")); err != nil {
		writeFinanceDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinanceApprove(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeFinanceError)
	if !ok {
		return
	}
	var req financehttp.ApproveRequestRequest
	if !s.decodeJSON(w, r, &req, writeFinanceError) {
		return
	}
	resp, err := s.finance.Handler.ApproveRequestHandler(r.Context(), actorID, r.PathValue("tenant_id"), r.PathValue("request_id"), req)
	if err != nil {
		writeFinanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinanceReject(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeFinanceError)
	if !ok {
		return
	}
	var req financehttp.RejectRequestRequest
	if !s.decodeJSON(w, r, &req, writeFinanceError) {
		return
	}
	resp, err := s.finance.Handler.RejectRequestHandler(r.Context(), actorID, r.PathValue("tenant_id"), r.PathValue("request_id"), req)
	if err != nil {
		writeFinanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinancePay(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeFinanceError)
	if !ok {
		return
	}
	var req financehttp.MarkPaidRequest
	if !s.decodeJSON(w, r, &req, writeFinanceError) {
		return
	}
	resp, err := s.finance.Handler.MarkPaidHandler(r.Context(), actorID, r.PathValue("tenant_id"), r.PathValue("request_id"), req)
	if err != nil {
		writeFinanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinanceCancel(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeFinanceError)
	if !ok {
		return
	}
	resp, err := s.finance.Handler.CancelRequestHandler(r.Context(), actorID, r.PathValue("tenant_id"), r.PathValue("request_id"))
	if err != nil {
		writeFinanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinanceSettle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeFinanceError)
	if !ok {
		return
	}
	var req financehttp.RecordSettlementRequest
	if !s.decodeJSON(w, r, &req, writeFinanceError) {
		return
	}
	resp, err := s.finance.Handler.RecordSettlementHandler(r.Context(), actorID, r.PathValue("tenant_id"), r.PathValue("request_id"), req)
	if err != nil {
		writeFinanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinanceExportLedger(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeFinanceError)
	if !ok {
		return
	}
	tenantID := r.PathValue("tenant_id")
	workbook, err := s.finance.Handler.ExportLedgerHandler(r.Context(), actorID, tenantID)
	if err != nil {
		writeFinanceDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ledger-"+tenantID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

func (s *Server) handleFinanceListByBeneficiary(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeFinanceError)
	if !ok {
		return
	}
	limit, ok := queryIntValue(w, r, "limit", writeFinanceError)
	if !ok {
		return
	}
	offset, ok := queryIntValue(w, r, "offset", writeFinanceError)
	if !ok {
		return
	}
	resp, err := s.finance.Handler.ListByBeneficiaryHandler(
		r.Context(),
		actorID,
		r.PathValue("beneficiary_id"),
		r.URL.Query().Get("status"),
		limit,
		offset,
	)
	if err != nil {
		writeFinanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeFinanceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, financehttp.ErrorResponse{Code: code, Message: message})
}

func writeFinanceDomainError(w http.ResponseWriter, err error) {
	var fields financeerrors.FieldErrors
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusUnprocessableEntity, financehttp.ErrorResponse{
			Code:    "validation_failed",
			Message: fields.Error(),
			Fields:  fields,
		})
	case errors.Is(err, financeerrors.ErrPermissionDenied):
		writeFinanceError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, financeerrors.ErrRequestDeleted):
		writeFinanceError(w, http.StatusGone, "request_deleted", err.Error())
	case errors.Is(err, financeerrors.ErrRequestNotFound):
		writeFinanceError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, financeerrors.ErrInvalidTransition):
		writeFinanceError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, financeerrors.ErrOverSettlement):
		writeFinanceError(w, http.StatusConflict, "over_settlement", err.Error())
	default:
		writeFinanceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
