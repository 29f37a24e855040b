package httpserver

import (
	"errors"
	"net/http"
	"strings"

	identityerrors "backoffice/contexts/identity-access/identity-service/domain/errors"
	identityhttp "backoffice/contexts/identity-access/identity-service/transport/http"
)

func (s *Server) registerIdentityRoutes() {
	s.handle("POST /api/identity/v1/register", s.handleIdentityRegister)
	s.handle("POST /api/identity/v1/roles", s.handleIdentityCreateRole)
	s.handle("POST /api/identity/v1/principals/{principal_id}/roles", s.handleIdentityAssignRole)
	s.handle("POST /api/identity/v1/principals/{principal_id}/permissions", s.handleIdentityGrantPermission)
	s.handle("GET /api/identity/v1/principals/{principal_id}/permissions/{permission}", s.handleIdentityCheckPermission)
	s.handle("GET /api/identity/v1/principals/{principal_id}/super-admin", s.handleIdentitySuperAdmin)
}

func (s *Server) handleIdentityRegister(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.RegisterRequest
	if !s.decodeJSON(w, r, &req, writeIdentityError) {
		return
	}
	resp, err := s.identity.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleIdentityCreateRole(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeIdentityError); !ok {
		return
	}
	var req identityhttp.CreateRoleRequest
	if !s.decodeJSON(w, r, &req, writeIdentityError) {
		return
	}
	resp, err := s.identity.Handler.CreateRoleHandler(r.Context(), req)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleIdentityAssignRole(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeIdentityError); !ok {
		return
	}
	var req identityhttp.AssignRoleRequest
	if !s.decodeJSON(w, r, &req, writeIdentityError) {
		return
	}
	if err := s.identity.Handler.AssignRoleHandler(r.Context(), r.PathValue("principal_id"), req); err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIdentityGrantPermission(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeIdentityError); !ok {
		return
	}
	var req identityhttp.GrantPermissionRequest
	if !s.decodeJSON(w, r, &req, writeIdentityError) {
		return
	}
	if err := s.identity.Handler.GrantPermissionHandler(r.Context(), r.PathValue("principal_id"), req); err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIdentityCheckPermission(w http.ResponseWriter, r *http.Request) {
	permission := strings.TrimSpace(r.PathValue("permission"))
	resp, err := s.identity.Handler.CheckPermissionHandler(r.Context(), r.PathValue("principal_id"), permission)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIdentitySuperAdmin(w http.ResponseWriter, r *http.Request) {
	resp, err := s.identity.Handler.SuperAdminHandler(r.Context(), r.PathValue("principal_id"))
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeIdentityError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, identityhttp.ErrorResponse{Code: code, Message: message})
}

func writeIdentityDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identityerrors.ErrInvalidRequest):
		writeIdentityError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, identityerrors.ErrPermissionNotRegistered):
		writeIdentityError(w, http.StatusUnprocessableEntity, "permission_not_registered", err.Error())
	case errors.Is(err, identityerrors.ErrDuplicateEmail),
		errors.Is(err, identityerrors.ErrDuplicateRole),
		errors.Is(err, identityerrors.ErrRoleAlreadyAssigned),
		errors.Is(err, identityerrors.ErrPermissionAlreadyGranted):
		writeIdentityError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, identityerrors.ErrPrincipalNotFound),
		errors.Is(err, identityerrors.ErrRoleNotFound),
		errors.Is(err, identityerrors.ErrNotFound):
		writeIdentityError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeIdentityError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
