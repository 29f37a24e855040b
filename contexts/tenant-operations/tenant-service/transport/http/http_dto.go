package httptransport

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateTenantRequest struct {
	Name     string         `json:"name"`
	Settings map[string]any `json:"settings,omitempty"`
}

type UpdateSettingsRequest struct {
	Settings map[string]any `json:"settings"`
}

type TenantResponse struct {
	TenantID  string         `json:"tenant_id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	IsActive  bool           `json:"is_active"`
	Settings  map[string]any `json:"settings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type ListTenantsResponse struct {
	Items []TenantResponse `json:"items"`
}
