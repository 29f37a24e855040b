package httpadapter

import (
	"context"
	"log/slog"

	application "backoffice/contexts/tenant-operations/membership-service/application"
	"backoffice/contexts/tenant-operations/membership-service/domain/entities"
	httptransport "backoffice/contexts/tenant-operations/membership-service/transport/http"
)

// Handler maps HTTP DTOs to membership application calls. The acting
// principal is resolved by the server layer and passed through explicitly.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) AddMemberHandler(ctx context.Context, actorID string, tenantID string, request httptransport.AddMemberRequest) (httptransport.MembershipResponse, error) {
	membership, err := h.Service.AddMember(ctx, tenantID, request.PrincipalID, request.BusinessRole, request.PermissionOverrides, actorID)
	if err != nil {
		return httptransport.MembershipResponse{}, err
	}
	return toResponse(membership), nil
}

func (h Handler) InviteMemberHandler(ctx context.Context, actorID string, tenantID string, request httptransport.InviteMemberRequest) (httptransport.InviteMemberResponse, error) {
	membership, err := h.Service.Invite(ctx, tenantID, request.PrincipalID, request.BusinessRole, request.PermissionOverrides, actorID)
	if err != nil {
		return httptransport.InviteMemberResponse{}, err
	}
	return httptransport.InviteMemberResponse{
		Membership: toResponse(membership),
		Token:      membership.InvitationToken,
	}, nil
}

func (h Handler) AcceptInvitationHandler(ctx context.Context, request httptransport.AcceptInvitationRequest) (httptransport.MembershipResponse, error) {
	membership, err := h.Service.AcceptInvitation(ctx, request.Token)
	if err != nil {
		return httptransport.MembershipResponse{}, err
	}
	return toResponse(membership), nil
}

func (h Handler) RemoveMemberHandler(ctx context.Context, tenantID string, principalID string) (httptransport.MembershipResponse, error) {
	membership, err := h.Service.Remove(ctx, tenantID, principalID)
	if err != nil {
		return httptransport.MembershipResponse{}, err
	}
	return toResponse(membership), nil
}

func (h Handler) ReactivateMemberHandler(ctx context.Context, tenantID string, principalID string) (httptransport.MembershipResponse, error) {
	membership, err := h.Service.Reactivate(ctx, tenantID, principalID)
	if err != nil {
		return httptransport.MembershipResponse{}, err
	}
	return toResponse(membership), nil
}

func (h Handler) ChangeRoleHandler(ctx context.Context, tenantID string, principalID string, request httptransport.ChangeRoleRequest) (httptransport.MembershipResponse, error) {
	membership, err := h.Service.ChangeRole(ctx, tenantID, principalID, request.BusinessRole)
	if err != nil {
		return httptransport.MembershipResponse{}, err
	}
	return toResponse(membership), nil
}

func (h Handler) ChangeStatusHandler(ctx context.Context, tenantID string, principalID string, request httptransport.ChangeStatusRequest) (httptransport.MembershipResponse, error) {
	membership, err := h.Service.ChangeStatus(ctx, tenantID, principalID, request.EmploymentStatus)
	if err != nil {
		return httptransport.MembershipResponse{}, err
	}
	return toResponse(membership), nil
}

func (h Handler) SetOverridesHandler(ctx context.Context, tenantID string, principalID string, request httptransport.SetOverridesRequest) (httptransport.MembershipResponse, error) {
	membership, err := h.Service.SetOverrides(ctx, tenantID, principalID, request.PermissionOverrides)
	if err != nil {
		return httptransport.MembershipResponse{}, err
	}
	return toResponse(membership), nil
}

func (h Handler) GetMembershipHandler(ctx context.Context, tenantID string, principalID string) (httptransport.MembershipResponse, error) {
	membership, err := h.Service.GetMembership(ctx, tenantID, principalID)
	if err != nil {
		return httptransport.MembershipResponse{}, err
	}
	return toResponse(membership), nil
}

func (h Handler) ListMembersHandler(ctx context.Context, tenantID string) (httptransport.ListMembersResponse, error) {
	memberships, err := h.Service.ListMembers(ctx, tenantID)
	if err != nil {
		return httptransport.ListMembersResponse{}, err
	}
	items := make([]httptransport.MembershipResponse, 0, len(memberships))
	for _, membership := range memberships {
		items = append(items, toResponse(membership))
	}
	return httptransport.ListMembersResponse{Items: items}, nil
}

func toResponse(membership entities.Membership) httptransport.MembershipResponse {
	return httptransport.MembershipResponse{
		MembershipID:         membership.MembershipID,
		TenantID:             membership.TenantID,
		PrincipalID:          membership.PrincipalID,
		BusinessRole:         membership.BusinessRole,
		PermissionOverrides:  membership.PermissionOverrides,
		EmploymentStatus:     membership.EmploymentStatus,
		JoinedAt:             membership.JoinedAt,
		LeftAt:               membership.LeftAt,
		InvitationSentAt:     membership.InvitationSentAt,
		InvitationAcceptedAt: membership.InvitationAcceptedAt,
		InvitedBy:            membership.InvitedBy,
	}
}
