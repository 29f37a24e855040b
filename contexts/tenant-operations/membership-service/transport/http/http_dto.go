package httptransport

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AddMemberRequest struct {
	PrincipalID         string   `json:"principal_id"`
	BusinessRole        string   `json:"business_role"`
	PermissionOverrides []string `json:"permission_overrides,omitempty"`
}

type InviteMemberRequest struct {
	PrincipalID         string   `json:"principal_id"`
	BusinessRole        string   `json:"business_role"`
	PermissionOverrides []string `json:"permission_overrides,omitempty"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token"`
}

type ChangeRoleRequest struct {
	BusinessRole string `json:"business_role"`
}

type ChangeStatusRequest struct {
	EmploymentStatus string `json:"employment_status"`
}

type SetOverridesRequest struct {
	PermissionOverrides []string `json:"permission_overrides"`
}

type MembershipResponse struct {
	MembershipID         string     `json:"membership_id"`
	TenantID             string     `json:"tenant_id"`
	PrincipalID          string     `json:"principal_id"`
	BusinessRole         string     `json:"business_role"`
	PermissionOverrides  []string   `json:"permission_overrides,omitempty"`
	EmploymentStatus     string     `json:"employment_status"`
	JoinedAt             time.Time  `json:"joined_at"`
	LeftAt               *time.Time `json:"left_at,omitempty"`
	InvitationSentAt     *time.Time `json:"invitation_sent_at,omitempty"`
	InvitationAcceptedAt *time.Time `json:"invitation_accepted_at,omitempty"`
	InvitedBy            string     `json:"invited_by,omitempty"`
}

type InviteMemberResponse struct {
	Membership MembershipResponse `json:"membership"`
	Token      string             `json:"token"`
}

type ListMembersResponse struct {
	Items []MembershipResponse `json:"items"`
}
