package entities

// Decision reasons, in resolver order. The reason names the rule that
// produced the outcome so callers can log or display it.
const (
	ReasonSuperAdmin       = "superadmin"
	ReasonTenantOwner      = "tenant_owner"
	ReasonGlobalPermission = "global_permission"
	ReasonMembershipGrant  = "membership_grant"
	ReasonDenied           = "denied"
)

// AccessDecision is the resolver verdict for one (principal, action, tenant)
// question. It is side-effect-free and safe to cache.
type AccessDecision struct {
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason"`
	Permission string `json:"permission"`
}

func Allow(reason string, permission string) AccessDecision {
	return AccessDecision{Allowed: true, Reason: reason, Permission: permission}
}

func Deny(permission string) AccessDecision {
	return AccessDecision{Allowed: false, Reason: ReasonDenied, Permission: permission}
}
