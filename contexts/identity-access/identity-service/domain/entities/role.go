package entities

// Role models a global permission bundle assignable to principals.
// Role names are immutable identifiers used for lookup.
type Role struct {
	RoleID      string   `json:"role_id"`
	Name        string   `json:"name"`
	GuardTag    string   `json:"guard_tag"`
	Permissions []string `json:"permissions"`
}

// Permission is a platform-wide grant identified by name and guard tag.
type Permission struct {
	PermissionID string `json:"permission_id"`
	Name         string `json:"name"`
	GuardTag     string `json:"guard_tag"`
}

// SuperAdminRole is recognized by both the modern role system and the
// legacy profile role field.
const SuperAdminRole = "superadmin"

// DefaultGuardTag applies when callers do not scope a role or permission.
const DefaultGuardTag = "web"
