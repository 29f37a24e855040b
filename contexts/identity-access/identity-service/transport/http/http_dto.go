package httptransport

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	LegacyRole string `json:"legacy_role,omitempty"`
}

type PrincipalResponse struct {
	PrincipalID string    `json:"principal_id"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateRoleRequest struct {
	Name        string   `json:"name"`
	GuardTag    string   `json:"guard_tag,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

type RoleResponse struct {
	RoleID      string   `json:"role_id"`
	Name        string   `json:"name"`
	GuardTag    string   `json:"guard_tag"`
	Permissions []string `json:"permissions"`
}

type AssignRoleRequest struct {
	RoleName string `json:"role_name"`
}

type GrantPermissionRequest struct {
	Permission string `json:"permission"`
}

type CheckPermissionResponse struct {
	PrincipalID string `json:"principal_id"`
	Permission  string `json:"permission"`
	Granted     bool   `json:"granted"`
}

type SuperAdminResponse struct {
	PrincipalID  string `json:"principal_id"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}
