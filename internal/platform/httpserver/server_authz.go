package httpserver

import (
	"errors"
	"net/http"
	"strings"

	authzerrors "backoffice/contexts/identity-access/authorization-service/domain/errors"
	authzhttp "backoffice/contexts/identity-access/authorization-service/transport/http"
)

func (s *Server) registerAuthzRoutes() {
	s.handle("POST /api/authz/v1/check", s.handleAuthzCheck)
	s.handle("GET /api/authz/v1/principals/{principal_id}/permissions", s.handleAuthzEffectivePermissions)
}

func (s *Server) handleAuthzCheck(w http.ResponseWriter, r *http.Request) {
	var req authzhttp.CanPerformRequest
	if !s.decodeJSON(w, r, &req, writeAuthzError) {
		return
	}
	if strings.TrimSpace(req.PrincipalID) == "" {
		req.PrincipalID = s.resolveActor(r)
	}
	resp, err := s.authorization.Handler.CanPerformHandler(r.Context(), req)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzEffectivePermissions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.authorization.Handler.EffectivePermissionsHandler(
		r.Context(),
		r.PathValue("principal_id"),
		r.URL.Query().Get("tenant_id"),
	)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAuthzError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, authzhttp.ErrorResponse{Code: code, Message: message})
}

func writeAuthzDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authzerrors.ErrInvalidRequest):
		writeAuthzError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, authzerrors.ErrPermissionNotRegistered):
		writeAuthzError(w, http.StatusUnprocessableEntity, "permission_not_registered", err.Error())
	default:
		writeAuthzError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
