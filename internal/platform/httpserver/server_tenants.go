package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	tenanterrors "backoffice/contexts/tenant-operations/tenant-service/domain/errors"
	tenanthttp "backoffice/contexts/tenant-operations/tenant-service/transport/http"
)

func (s *Server) registerTenantRoutes() {
	s.handle("POST /api/tenants/v1/tenants", s.handleTenantCreate)
	s.handle("GET /api/tenants/v1/tenants", s.handleTenantList)
	s.handle("GET /api/tenants/v1/tenants/{tenant_id}", s.handleTenantGet)
	s.handle("PUT /api/tenants/v1/tenants/{tenant_id}/settings", s.handleTenantUpdateSettings)
	s.handle("POST /api/tenants/v1/tenants/{tenant_id}/deactivate", s.handleTenantDeactivate)
	s.handle("POST /api/tenants/v1/tenants/{tenant_id}/reactivate", s.handleTenantReactivate)
	s.handle("DELETE /api/tenants/v1/tenants/{tenant_id}", s.handleTenantDelete)
}

func (s *Server) handleTenantCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeTenantError); !ok {
		return
	}
	var req tenanthttp.CreateTenantRequest
	if !s.decodeJSON(w, r, &req, writeTenantError) {
		return
	}
	resp, err := s.tenants.Handler.CreateTenantHandler(r.Context(), req)
	if err != nil {
		writeTenantDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleTenantList(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryIntValue(w, r, "limit", writeTenantError)
	if !ok {
		return
	}
	offset, ok := queryIntValue(w, r, "offset", writeTenantError)
	if !ok {
		return
	}
	resp, err := s.tenants.Handler.ListTenantsHandler(r.Context(), limit, offset)
	if err != nil {
		writeTenantDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTenantGet(w http.ResponseWriter, r *http.Request) {
	resp, err := s.tenants.Handler.GetTenantHandler(r.Context(), r.PathValue("tenant_id"))
	if err != nil {
		writeTenantDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTenantUpdateSettings(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeTenantError); !ok {
		return
	}
	var req tenanthttp.UpdateSettingsRequest
	if !s.decodeJSON(w, r, &req, writeTenantError) {
		return
	}
	resp, err := s.tenants.Handler.UpdateSettingsHandler(r.Context(), r.PathValue("tenant_id"), req)
	if err != nil {
		writeTenantDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTenantDeactivate(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeTenantError); !ok {
		return
	}
	if err := s.tenants.Handler.DeactivateHandler(r.Context(), r.PathValue("tenant_id")); err != nil {
		writeTenantDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTenantReactivate(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeTenantError); !ok {
		return
	}
	if err := s.tenants.Handler.ReactivateHandler(r.Context(), r.PathValue("tenant_id")); err != nil {
		writeTenantDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTenantDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeTenantError); !ok {
		return
	}
	if err := s.tenants.Handler.DeleteHandler(r.Context(), r.PathValue("tenant_id")); err != nil {
		writeTenantDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryIntValue parses an optional integer query parameter, writing a 400
// through the module error writer when the value is not an integer.
func queryIntValue(w http.ResponseWriter, r *http.Request, name string, write func(http.ResponseWriter, int, string, string)) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		write(w, http.StatusBadRequest, "invalid_"+name, name+" must be an integer")
		return 0, false
	}
	return value, true
}

func writeTenantError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, tenanthttp.ErrorResponse{Code: code, Message: message})
}

func writeTenantDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tenanterrors.ErrInvalidRequest):
		writeTenantError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, tenanterrors.ErrTenantDeleted):
		writeTenantError(w, http.StatusGone, "tenant_deleted", err.Error())
	case errors.Is(err, tenanterrors.ErrTenantNotFound),
		errors.Is(err, tenanterrors.ErrNotFound):
		writeTenantError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeTenantError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
