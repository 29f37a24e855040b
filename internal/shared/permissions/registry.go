package permissions

import "strings"

// Platform permission names. Permissions are keyed by "<category>.<action>"
// convention but the registry below is the security boundary, never the
// string shape alone.
const (
	UsersCreate = "users.create"
	UsersView   = "users.view"
	UsersEdit   = "users.edit"

	TenantManage = "tenant.manage"
	TenantView   = "tenant.view"

	MembersManage = "members.manage"
	MembersView   = "members.view"

	FeaturesManage = "features.manage"
	FeaturesView   = "features.view"

	FinanceRequestCreate  = "finance.request_create"
	FinanceRequestView    = "finance.request_view"
	FinanceRequestApprove = "finance.request_approve"
	FinanceRequestPay     = "finance.request_pay"
	FinanceRequestSettle  = "finance.request_settle"
	FinanceRequestManage  = "finance.request_manage"

	ReportsExport = "reports.export"
)

var registry = map[string]struct{}{
	UsersCreate:           {},
	UsersView:             {},
	UsersEdit:             {},
	TenantManage:          {},
	TenantView:            {},
	MembersManage:         {},
	MembersView:           {},
	FeaturesManage:        {},
	FeaturesView:          {},
	FinanceRequestCreate:  {},
	FinanceRequestView:    {},
	FinanceRequestApprove: {},
	FinanceRequestPay:     {},
	FinanceRequestSettle:  {},
	FinanceRequestManage:  {},
	ReportsExport:         {},
}

// IsRegistered reports whether name belongs to the closed permission set.
// Write paths must reject anything outside it.
func IsRegistered(name string) bool {
	_, ok := registry[name]
	return ok
}

// All returns every registered permission name. The slice is a copy.
func All() []string {
	items := make([]string, 0, len(registry))
	for name := range registry {
		items = append(items, name)
	}
	return items
}

// Parse splits a permission into category and action for display purposes
// only. Callers must not make access decisions from the parts.
func Parse(name string) (category string, action string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) != 2 {
		return name, ""
	}
	return parts[0], parts[1]
}

// CrossTenantUserManagement lists the global permissions that allow
// user-management actions without any tenant membership.
func CrossTenantUserManagement() []string {
	return []string{UsersCreate, UsersView, UsersEdit}
}
