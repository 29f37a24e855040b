package httptransport

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CanPerformRequest struct {
	PrincipalID string `json:"principal_id"`
	Permission  string `json:"permission"`
	TenantID    string `json:"tenant_id,omitempty"`
}

type CanPerformResponse struct {
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason"`
	Permission string `json:"permission"`
}

type EffectivePermissionsResponse struct {
	PrincipalID string   `json:"principal_id"`
	TenantID    string   `json:"tenant_id"`
	Permissions []string `json:"permissions"`
}
