package entities

import "time"

// FeatureDefinition is a platform-wide catalogue entry describing a
// capability tenants may switch on. Name and slug are unique.
type FeatureDefinition struct {
	FeatureID       string         `json:"feature_id"`
	Name            string         `json:"name"`
	Slug            string         `json:"slug"`
	Category        string         `json:"category"`
	IsActive        bool           `json:"is_active"`
	DefaultSettings map[string]any `json:"default_settings,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// FeatureAssignment is one tenant's state for one feature definition. At most
// one row exists per (tenant, feature) pair. Disabling clears the enablement
// stamps but keeps the settings override, so re-enabling restores the prior
// configuration.
type FeatureAssignment struct {
	AssignmentID string         `json:"assignment_id"`
	TenantID     string         `json:"tenant_id"`
	FeatureID    string         `json:"feature_id"`
	IsEnabled    bool           `json:"is_enabled"`
	Settings     map[string]any `json:"settings,omitempty"`
	EnabledAt    *time.Time     `json:"enabled_at,omitempty"`
	EnabledBy    string         `json:"enabled_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
