package entities

import "time"

// Employment statuses. Terminated rows are retained for history and can be
// reactivated; they are never physically deleted.
const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusTerminated = "terminated"
)

func IsValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusInactive, StatusTerminated:
		return true
	default:
		return false
	}
}

// Membership is the (tenant, principal) relationship record. The business
// role is a tenant-scoped string, deliberately not the global Role type.
type Membership struct {
	MembershipID        string     `json:"membership_id"`
	TenantID            string     `json:"tenant_id"`
	PrincipalID         string     `json:"principal_id"`
	BusinessRole        string     `json:"business_role"`
	PermissionOverrides []string   `json:"permission_overrides"`
	EmploymentStatus    string     `json:"employment_status"`
	JoinedAt            time.Time  `json:"joined_at"`
	LeftAt              *time.Time `json:"left_at,omitempty"`

	InvitationToken      string     `json:"invitation_token,omitempty"`
	InvitationSentAt     *time.Time `json:"invitation_sent_at,omitempty"`
	InvitationAcceptedAt *time.Time `json:"invitation_accepted_at,omitempty"`
	InvitedBy            string     `json:"invited_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminated reports whether the membership left the tenant.
func (m Membership) IsTerminated() bool {
	return m.EmploymentStatus == StatusTerminated
}

// AwaitingAcceptance reports whether an issued invitation is still open.
func (m Membership) AwaitingAcceptance() bool {
	return m.InvitationSentAt != nil && m.InvitationAcceptedAt == nil
}
