package services

import "backoffice/internal/shared/permissions"

// Business roles with a fixed default-permission table. business_role is a
// free-form string on the membership; anything outside this table resolves
// to no default permissions at all.
const (
	RoleOwner    = "owner"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// DefaultPermissions is the fixed lookup from business role to default
// permission set. Unknown roles deny by default: the caller only gets what
// its explicit overrides grant.
func DefaultPermissions(businessRole string) []string {
	switch businessRole {
	case RoleOwner:
		return permissions.All()
	case RoleManager:
		return []string{
			permissions.MembersManage,
			permissions.MembersView,
			permissions.FeaturesView,
			permissions.FinanceRequestCreate,
			permissions.FinanceRequestView,
			permissions.FinanceRequestApprove,
			permissions.FinanceRequestPay,
			permissions.FinanceRequestSettle,
			permissions.ReportsExport,
		}
	case RoleEmployee:
		return []string{
			permissions.MembersView,
			permissions.FeaturesView,
			permissions.FinanceRequestCreate,
			permissions.FinanceRequestView,
		}
	default:
		return nil
	}
}

// EffectiveSet unions the membership overrides with the role defaults.
func EffectiveSet(businessRole string, overrides []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, p := range DefaultPermissions(businessRole) {
		set[p] = struct{}{}
	}
	for _, p := range overrides {
		set[p] = struct{}{}
	}
	return set
}
