package httpadapter

import (
	"context"
	"log/slog"

	application "backoffice/contexts/tenant-operations/feature-gate-service/application"
	"backoffice/contexts/tenant-operations/feature-gate-service/domain/entities"
	httptransport "backoffice/contexts/tenant-operations/feature-gate-service/transport/http"
)

// Handler maps HTTP DTOs to feature-gate application calls.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) DefineFeatureHandler(ctx context.Context, request httptransport.DefineFeatureRequest) (httptransport.FeatureDefinitionResponse, error) {
	feature, err := h.Service.DefineFeature(ctx, request.Name, request.Category, request.DefaultSettings)
	if err != nil {
		return httptransport.FeatureDefinitionResponse{}, err
	}
	return toFeatureResponse(feature), nil
}

func (h Handler) RetireFeatureHandler(ctx context.Context, featureSlug string) error {
	return h.Service.RetireFeature(ctx, featureSlug)
}

func (h Handler) EnableFeatureHandler(ctx context.Context, tenantID string, featureSlug string, request httptransport.EnableFeatureRequest) (httptransport.FeatureAssignmentResponse, error) {
	assignment, err := h.Service.Enable(ctx, tenantID, featureSlug, request.EnabledBy)
	if err != nil {
		return httptransport.FeatureAssignmentResponse{}, err
	}
	return toAssignmentResponse(assignment), nil
}

func (h Handler) DisableFeatureHandler(ctx context.Context, tenantID string, featureSlug string) (httptransport.FeatureAssignmentResponse, error) {
	assignment, err := h.Service.Disable(ctx, tenantID, featureSlug)
	if err != nil {
		return httptransport.FeatureAssignmentResponse{}, err
	}
	return toAssignmentResponse(assignment), nil
}

func (h Handler) UpdateSettingsHandler(ctx context.Context, tenantID string, featureSlug string, request httptransport.UpdateFeatureSettingsRequest) (httptransport.FeatureAssignmentResponse, error) {
	assignment, err := h.Service.UpdateSettings(ctx, tenantID, featureSlug, request.Settings)
	if err != nil {
		return httptransport.FeatureAssignmentResponse{}, err
	}
	return toAssignmentResponse(assignment), nil
}

func (h Handler) IsEnabledHandler(ctx context.Context, tenantID string, featureSlug string) (httptransport.FeatureGateResponse, error) {
	enabled, err := h.Service.IsEnabled(ctx, tenantID, featureSlug)
	if err != nil {
		return httptransport.FeatureGateResponse{}, err
	}
	return httptransport.FeatureGateResponse{
		TenantID:    tenantID,
		FeatureSlug: featureSlug,
		Enabled:     enabled,
	}, nil
}

func (h Handler) EffectiveSettingsHandler(ctx context.Context, tenantID string, featureSlug string) (httptransport.EffectiveSettingsResponse, error) {
	settings, err := h.Service.EffectiveSettings(ctx, tenantID, featureSlug)
	if err != nil {
		return httptransport.EffectiveSettingsResponse{}, err
	}
	return httptransport.EffectiveSettingsResponse{
		TenantID:    tenantID,
		FeatureSlug: featureSlug,
		Settings:    settings,
	}, nil
}

func (h Handler) ListFeaturesHandler(ctx context.Context) (httptransport.ListFeaturesResponse, error) {
	features, err := h.Service.ListFeatures(ctx)
	if err != nil {
		return httptransport.ListFeaturesResponse{}, err
	}
	items := make([]httptransport.FeatureDefinitionResponse, 0, len(features))
	for _, feature := range features {
		items = append(items, toFeatureResponse(feature))
	}
	return httptransport.ListFeaturesResponse{Items: items}, nil
}

func (h Handler) ListAssignmentsHandler(ctx context.Context, tenantID string) (httptransport.ListAssignmentsResponse, error) {
	assignments, err := h.Service.ListAssignments(ctx, tenantID)
	if err != nil {
		return httptransport.ListAssignmentsResponse{}, err
	}
	items := make([]httptransport.FeatureAssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		items = append(items, toAssignmentResponse(assignment))
	}
	return httptransport.ListAssignmentsResponse{Items: items}, nil
}

func toFeatureResponse(feature entities.FeatureDefinition) httptransport.FeatureDefinitionResponse {
	return httptransport.FeatureDefinitionResponse{
		FeatureID:       feature.FeatureID,
		Name:            feature.Name,
		Slug:            feature.Slug,
		Category:        feature.Category,
		IsActive:        feature.IsActive,
		DefaultSettings: feature.DefaultSettings,
		CreatedAt:       feature.CreatedAt,
	}
}

func toAssignmentResponse(assignment entities.FeatureAssignment) httptransport.FeatureAssignmentResponse {
	return httptransport.FeatureAssignmentResponse{
		AssignmentID: assignment.AssignmentID,
		TenantID:     assignment.TenantID,
		FeatureID:    assignment.FeatureID,
		IsEnabled:    assignment.IsEnabled,
		Settings:     assignment.Settings,
		EnabledAt:    assignment.EnabledAt,
		EnabledBy:    assignment.EnabledBy,
	}
}
