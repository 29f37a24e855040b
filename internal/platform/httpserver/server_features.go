package httpserver

import (
	"errors"
	"net/http"

	featureerrors "backoffice/contexts/tenant-operations/feature-gate-service/domain/errors"
	featurehttp "backoffice/contexts/tenant-operations/feature-gate-service/transport/http"
)

func (s *Server) registerFeatureRoutes() {
	s.handle("POST /api/features/v1/features", s.handleFeatureDefine)
	s.handle("GET /api/features/v1/features", s.handleFeatureList)
	s.handle("DELETE /api/features/v1/features/{feature_slug}", s.handleFeatureRetire)
	s.handle("GET /api/tenants/v1/tenants/{tenant_id}/features", s.handleFeatureListAssignments)
	s.handle("POST /api/tenants/v1/tenants/{tenant_id}/features/{feature_slug}/enable", s.handleFeatureEnable)
	s.handle("POST /api/tenants/v1/tenants/{tenant_id}/features/{feature_slug}/disable", s.handleFeatureDisable)
	s.handle("PUT /api/tenants/v1/tenants/{tenant_id}/features/{feature_slug}/settings", s.handleFeatureUpdateSettings)
	s.handle("GET /api/tenants/v1/tenants/{tenant_id}/features/{feature_slug}/settings", s.handleFeatureEffectiveSettings)
	s.handle("GET /api/tenants/v1/tenants/{tenant_id}/features/{feature_slug}/gate", s.handleFeatureGate)
}

func (s *Server) handleFeatureDefine(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeFeatureError); !ok {
		return
	}
	var req featurehttp.DefineFeatureRequest
	if !s.decodeJSON(w, r, &req, writeFeatureError) {
		return
	}
	resp, err := s.features.Handler.DefineFeatureHandler(r.Context(), req)
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleFeatureList(w http.ResponseWriter, r *http.Request) {
	resp, err := s.features.Handler.ListFeaturesHandler(r.Context())
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeatureRetire(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeFeatureError); !ok {
		return
	}
	if err := s.features.Handler.RetireFeatureHandler(r.Context(), r.PathValue("feature_slug")); err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFeatureListAssignments(w http.ResponseWriter, r *http.Request) {
	resp, err := s.features.Handler.ListAssignmentsHandler(r.Context(), r.PathValue("tenant_id"))
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeatureEnable(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.requireActor(w, r, writeFeatureError)
	if !ok {
		return
	}
	req := featurehttp.EnableFeatureRequest{EnabledBy: actorID}
	resp, err := s.features.Handler.EnableFeatureHandler(r.Context(), r.PathValue("tenant_id"), r.PathValue("feature_slug"), req)
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeatureDisable(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeFeatureError); !ok {
		return
	}
	resp, err := s.features.Handler.DisableFeatureHandler(r.Context(), r.PathValue("tenant_id"), r.PathValue("feature_slug"))
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeatureUpdateSettings(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireActor(w, r, writeFeatureError); !ok {
		return
	}
	var req featurehttp.UpdateFeatureSettingsRequest
	if !s.decodeJSON(w, r, &req, writeFeatureError) {
		return
	}
	resp, err := s.features.Handler.UpdateSettingsHandler(r.Context(), r.PathValue("tenant_id"), r.PathValue("feature_slug"), req)
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeatureEffectiveSettings(w http.ResponseWriter, r *http.Request) {
	resp, err := s.features.Handler.EffectiveSettingsHandler(r.Context(), r.PathValue("tenant_id"), r.PathValue("feature_slug"))
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeatureGate(w http.ResponseWriter, r *http.Request) {
	resp, err := s.features.Handler.IsEnabledHandler(r.Context(), r.PathValue("tenant_id"), r.PathValue("feature_slug"))
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeFeatureError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, featurehttp.ErrorResponse{Code: code, Message: message})
}

func writeFeatureDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, featureerrors.ErrInvalidRequest):
		writeFeatureError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, featureerrors.ErrDuplicateFeature):
		writeFeatureError(w, http.StatusConflict, "duplicate_feature", err.Error())
	case errors.Is(err, featureerrors.ErrFeatureInactive):
		writeFeatureError(w, http.StatusConflict, "feature_inactive", err.Error())
	case errors.Is(err, featureerrors.ErrFeatureNotFound),
		errors.Is(err, featureerrors.ErrAssignmentNotFound):
		writeFeatureError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeFeatureError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
