package httptransport

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type DefineFeatureRequest struct {
	Name            string         `json:"name"`
	Category        string         `json:"category,omitempty"`
	DefaultSettings map[string]any `json:"default_settings,omitempty"`
}

type EnableFeatureRequest struct {
	EnabledBy string `json:"enabled_by"`
}

type UpdateFeatureSettingsRequest struct {
	Settings map[string]any `json:"settings"`
}

type FeatureDefinitionResponse struct {
	FeatureID       string         `json:"feature_id"`
	Name            string         `json:"name"`
	Slug            string         `json:"slug"`
	Category        string         `json:"category,omitempty"`
	IsActive        bool           `json:"is_active"`
	DefaultSettings map[string]any `json:"default_settings,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

type FeatureAssignmentResponse struct {
	AssignmentID string         `json:"assignment_id"`
	TenantID     string         `json:"tenant_id"`
	FeatureID    string         `json:"feature_id"`
	IsEnabled    bool           `json:"is_enabled"`
	Settings     map[string]any `json:"settings,omitempty"`
	EnabledAt    *time.Time     `json:"enabled_at,omitempty"`
	EnabledBy    string         `json:"enabled_by,omitempty"`
}

type FeatureGateResponse struct {
	TenantID    string `json:"tenant_id"`
	FeatureSlug string `json:"feature_slug"`
	Enabled     bool   `json:"enabled"`
}

type EffectiveSettingsResponse struct {
	TenantID    string         `json:"tenant_id"`
	FeatureSlug string         `json:"feature_slug"`
	Settings    map[string]any `json:"settings"`
}

type ListFeaturesResponse struct {
	Items []FeatureDefinitionResponse `json:"items"`
}

type ListAssignmentsResponse struct {
	Items []FeatureAssignmentResponse `json:"items"`
}
