package entities

import "time"

// Tenant is an isolated business scope. The slug is derived from the name at
// creation and never regenerated afterwards.
type Tenant struct {
	TenantID  string         `json:"tenant_id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	IsActive  bool           `json:"is_active"`
	Settings  map[string]any `json:"settings"`
	IsDeleted bool           `json:"is_deleted"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
