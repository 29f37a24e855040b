package httpserver

import (
	"errors"
	"net/http"

	membershiperrors "backoffice/contexts/tenant-operations/membership-service/domain/errors"
	membershiphttp "backoffice/contexts/tenant-operations/membership-service/transport/http"
)

func (s *Server) registerMembershipRoutes() {
	s.handle("POST /api/tenants/v1/tenants/{tenant_id}/members", s.handleMemberAdd)
	s.handle("GET /api/tenants/v1/tenants/{tenant_id}/members", s.handleMemberList)
	s.handle("POST /api/tenants/v1/tenants/{tenant_id}/invitations", s.handleMemberInvite)
	s.handle("POST /api/tenants/v1/invitations/accept", s.handleInvitationAccept)
	s.handle("GET /api/tenants/v1/tenants/{tenant_id}/members/{principal_id}", s.handleMemberGet)
	s.handle("DELETE /api/tenants/v1/tenants/{tenant_id}/members/{principal_id}", s.handleMemberRemove)
	s.handle("POST /api/tenants/v1/tenants/{tenant_id}/members/{principal_id}/reactivate", s.handleMemberReactivate)
	s.handle("PUT /api/tenants/v1/tenants/{tenant_id}/members/{principal_id}/role", s.handleMemberChangeRole)
	s.handle("PUT /api/tenants/v1/tenants/{tenant_id}/members/{principal_id}/status", s.handleMemberChangeStatus)
	s.handle("PUT /api/tenants/v1/tenants/{tenant_id}/members/{principal_id}/overrides", s.handleMemberSetOverrides)
}

func (s *Server) handleMemberAdd(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeMembershipError)
	if !ok {
		return
	}
	var req membershiphttp.AddMemberRequest
	if !s.decodeJSON(w, r, &req, writeMembershipError) {
		return
	}
	resp, err := s.memberships.Handler.AddMemberHandler(r.Context(), actorID, r.PathValue("tenant_id"), req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleMemberInvite(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeMembershipError)
	if !ok {
		return
	}
	var req membershiphttp.InviteMemberRequest
	if !s.decodeJSON(w, r, &req, writeMembershipError) {
		return
	}
	resp, err := s.memberships.Handler.InviteMemberHandler(r.Context(), actorID, r.PathValue("tenant_id"), req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleInvitationAccept(w http.ResponseWriter, r *http.Request) {
	var req membershiphttp.AcceptInvitationRequest
	if !s.decodeJSON(w, r, &req, writeMembershipError) {
		return
	}
	resp, err := s.memberships.Handler.AcceptInvitationHandler(r.Context(), req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMemberGet(w http.ResponseWriter, r *http.Request) {
	resp, err := s.memberships.Handler.GetMembershipHandler(r.Context(), r.PathValue("tenant_id"), r.PathValue("principal_id"))
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMemberList(w http.ResponseWriter, r *http.Request) {
	resp, err := s.memberships.Handler.ListMembersHandler(r.Context(), r.PathValue("tenant_id"))
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMemberRemove(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeMembershipError); !ok {
		return
	}
	resp, err := s.memberships.Handler.RemoveMemberHandler(r.Context(), r.PathValue("tenant_id"), r.PathValue("principal_id"))
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMemberReactivate(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeMembershipError); !ok {
		return
	}
	resp, err := s.memberships.Handler.ReactivateMemberHandler(r.Context(), r.PathValue("tenant_id"), r.PathValue("principal_id"))
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMemberChangeRole(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeMembershipError); !ok {
		return
	}
	var req membershiphttp.ChangeRoleRequest
	if !s.decodeJSON(w, r, &req, writeMembershipError) {
		return
	}
	resp, err := s.memberships.Handler.ChangeRoleHandler(r.Context(), r.PathValue("tenant_id"), r.PathValue("principal_id"), req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMemberChangeStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeMembershipError); !ok {
		return
	}
	var req membershiphttp.ChangeStatusRequest
	if !s.decodeJSON(w, r, &req, writeMembershipError) {
		return
	}
	resp, err := s.memberships.Handler.ChangeStatusHandler(r.Context(), r.PathValue("tenant_id"), r.PathValue("principal_id"), req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMemberSetOverrides(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeMembershipError); !ok {
		return
	}
	var req membershiphttp.SetOverridesRequest
	if !s.decodeJSON(w, r, &req, writeMembershipError) {
		return
	}
	resp, err := s.memberships.Handler.SetOverridesHandler(r.Context(), r.PathValue("tenant_id"), r.PathValue("principal_id"), req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeMembershipError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, membershiphttp.ErrorResponse{Code: code, Message: message})
}

func writeMembershipDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, membershiperrors.ErrInvalidRequest),
		errors.Is(err, membershiperrors.ErrInvalidStatus):
		writeMembershipError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, membershiperrors.ErrPermissionNotRegistered):
		writeMembershipError(w, http.StatusUnprocessableEntity, "permission_not_registered", err.Error())
	case errors.Is(err, membershiperrors.ErrMembershipNotFound),
		errors.Is(err, membershiperrors.ErrInvitationNotFound),
		errors.Is(err, membershiperrors.ErrNotFound):
		writeMembershipError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, membershiperrors.ErrDuplicateMembership),
		errors.Is(err, membershiperrors.ErrInvitationAccepted),
		errors.Is(err, membershiperrors.ErrMembershipTerminated),
		errors.Is(err, membershiperrors.ErrMembershipNotTerminated):
		writeMembershipError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeMembershipError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
