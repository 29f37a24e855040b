package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"backoffice/contexts/tenant-operations/membership-service/domain/entities"
	domainerrors "backoffice/contexts/tenant-operations/membership-service/domain/errors"
	"backoffice/contexts/tenant-operations/membership-service/ports"
	"backoffice/internal/shared/permissions"
)

type Service struct {
	Repo   ports.Repository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// AddMember creates an active membership directly, without invitation
// bookkeeping. A second non-deleted membership for the pair fails with
// ErrDuplicateMembership instead of overwriting.
func (s Service) AddMember(
	ctx context.Context,
	tenantID string,
	principalID string,
	businessRole string,
	overrides []string,
	invitedBy string,
) (entities.Membership, error) {
	membership, err := s.newMembership(ctx, tenantID, principalID, businessRole, overrides)
	if err != nil {
		return entities.Membership{}, err
	}
	membership.InvitedBy = strings.TrimSpace(invitedBy)
	if err := s.Repo.CreateMembership(ctx, membership); err != nil {
		return entities.Membership{}, err
	}

	ResolveLogger(s.Logger).Info("member added",
		"event", "membership_member_added",
		"module", "tenant-operations/membership-service",
		"layer", "application",
		"tenant_id", membership.TenantID,
		"principal_id", membership.PrincipalID,
		"business_role", membership.BusinessRole,
	)
	return membership, nil
}

// Invite creates the membership with an invitation token. The member starts
// active; acceptance bookkeeping is tracked separately so callers can gate
// access on it. An invitation-created event is appended to the outbox in the
// same unit of work.
func (s Service) Invite(
	ctx context.Context,
	tenantID string,
	principalID string,
	businessRole string,
	overrides []string,
	invitedBy string,
) (entities.Membership, error) {
	if strings.TrimSpace(invitedBy) == "" {
		return entities.Membership{}, domainerrors.ErrInvalidRequest
	}
	membership, err := s.newMembership(ctx, tenantID, principalID, businessRole, overrides)
	if err != nil {
		return entities.Membership{}, err
	}

	token, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Membership{}, err
	}
	now := membership.JoinedAt
	membership.InvitationToken = token
	membership.InvitationSentAt = &now
	membership.InvitedBy = strings.TrimSpace(invitedBy)

	if err := s.Repo.CreateMembership(ctx, membership); err != nil {
		return entities.Membership{}, err
	}
	if err := s.appendEvent(ctx, "membership.invitation_created", membership.TenantID, map[string]any{
		"tenant_id":    membership.TenantID,
		"principal_id": membership.PrincipalID,
		"token":        membership.InvitationToken,
		"invited_by":   membership.InvitedBy,
	}); err != nil {
		return entities.Membership{}, err
	}

	ResolveLogger(s.Logger).Info("invitation issued",
		"event", "membership_invitation_issued",
		"module", "tenant-operations/membership-service",
		"layer", "application",
		"tenant_id", membership.TenantID,
		"principal_id", membership.PrincipalID,
	)
	return membership, nil
}

// AcceptInvitation stamps acceptance on the membership the token belongs to.
func (s Service) AcceptInvitation(ctx context.Context, token string) (entities.Membership, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return entities.Membership{}, domainerrors.ErrInvalidRequest
	}
	membership, err := s.Repo.GetByInvitationToken(ctx, token)
	if err != nil {
		return entities.Membership{}, err
	}
	if membership.InvitationAcceptedAt != nil {
		return entities.Membership{}, domainerrors.ErrInvitationAccepted
	}
	now := s.now()
	membership.InvitationAcceptedAt = &now
	membership.UpdatedAt = now
	if err := s.Repo.UpdateMembership(ctx, membership); err != nil {
		return entities.Membership{}, err
	}
	return membership, nil
}

// Remove is a logical removal: status flips to terminated and left_date is
// stamped. The row is retained for history and re-invitation.
func (s Service) Remove(ctx context.Context, tenantID string, principalID string) (entities.Membership, error) {
	membership, err := s.GetMembership(ctx, tenantID, principalID)
	if err != nil {
		return entities.Membership{}, err
	}
	if membership.IsTerminated() {
		return entities.Membership{}, domainerrors.ErrMembershipTerminated
	}
	now := s.now()
	membership.EmploymentStatus = entities.StatusTerminated
	membership.LeftAt = &now
	membership.UpdatedAt = now
	if err := s.Repo.UpdateMembership(ctx, membership); err != nil {
		return entities.Membership{}, err
	}

	ResolveLogger(s.Logger).Info("member removed",
		"event", "membership_member_removed",
		"module", "tenant-operations/membership-service",
		"layer", "application",
		"tenant_id", membership.TenantID,
		"principal_id", membership.PrincipalID,
	)
	return membership, nil
}

// Reactivate is the only path out of the terminated status. It clears the
// left date and restores active employment.
func (s Service) Reactivate(ctx context.Context, tenantID string, principalID string) (entities.Membership, error) {
	membership, err := s.GetMembership(ctx, tenantID, principalID)
	if err != nil {
		return entities.Membership{}, err
	}
	if !membership.IsTerminated() {
		return entities.Membership{}, domainerrors.ErrMembershipNotTerminated
	}
	membership.EmploymentStatus = entities.StatusActive
	membership.LeftAt = nil
	membership.UpdatedAt = s.now()
	if err := s.Repo.UpdateMembership(ctx, membership); err != nil {
		return entities.Membership{}, err
	}
	return membership, nil
}

// ChangeRole updates the tenant-scoped business role. Disallowed once the
// membership is terminated.
func (s Service) ChangeRole(ctx context.Context, tenantID string, principalID string, newRole string) (entities.Membership, error) {
	newRole = strings.TrimSpace(newRole)
	if newRole == "" {
		return entities.Membership{}, domainerrors.ErrInvalidRequest
	}
	membership, err := s.mutableMembership(ctx, tenantID, principalID)
	if err != nil {
		return entities.Membership{}, err
	}
	membership.BusinessRole = newRole
	membership.UpdatedAt = s.now()
	if err := s.Repo.UpdateMembership(ctx, membership); err != nil {
		return entities.Membership{}, err
	}
	return membership, nil
}

// ChangeStatus moves between active and inactive. Termination goes through
// Remove so the left date is stamped consistently.
func (s Service) ChangeStatus(ctx context.Context, tenantID string, principalID string, newStatus string) (entities.Membership, error) {
	if !entities.IsValidStatus(newStatus) || newStatus == entities.StatusTerminated {
		return entities.Membership{}, domainerrors.ErrInvalidStatus
	}
	membership, err := s.mutableMembership(ctx, tenantID, principalID)
	if err != nil {
		return entities.Membership{}, err
	}
	membership.EmploymentStatus = newStatus
	membership.UpdatedAt = s.now()
	if err := s.Repo.UpdateMembership(ctx, membership); err != nil {
		return entities.Membership{}, err
	}
	return membership, nil
}

// SetOverrides replaces the membership permission overrides. Every override
// must exist in the platform registry.
func (s Service) SetOverrides(ctx context.Context, tenantID string, principalID string, overrides []string) (entities.Membership, error) {
	for _, p := range overrides {
		if !permissions.IsRegistered(p) {
			return entities.Membership{}, domainerrors.ErrPermissionNotRegistered
		}
	}
	membership, err := s.mutableMembership(ctx, tenantID, principalID)
	if err != nil {
		return entities.Membership{}, err
	}
	membership.PermissionOverrides = append([]string(nil), overrides...)
	membership.UpdatedAt = s.now()
	if err := s.Repo.UpdateMembership(ctx, membership); err != nil {
		return entities.Membership{}, err
	}
	return membership, nil
}

// GetMembership is a pure lookup; it never grants access by itself.
func (s Service) GetMembership(ctx context.Context, tenantID string, principalID string) (entities.Membership, error) {
	if strings.TrimSpace(tenantID) == "" || strings.TrimSpace(principalID) == "" {
		return entities.Membership{}, domainerrors.ErrInvalidRequest
	}
	return s.Repo.GetMembership(ctx, strings.TrimSpace(tenantID), strings.TrimSpace(principalID))
}

// RoleInTenant returns the business role, or empty when no membership exists.
func (s Service) RoleInTenant(ctx context.Context, tenantID string, principalID string) (string, error) {
	membership, err := s.GetMembership(ctx, tenantID, principalID)
	if err != nil {
		if err == domainerrors.ErrMembershipNotFound {
			return "", nil
		}
		return "", err
	}
	return membership.BusinessRole, nil
}

// HasRoleInTenant reports whether the principal holds the given business role.
func (s Service) HasRoleInTenant(ctx context.Context, tenantID string, principalID string, role string) (bool, error) {
	current, err := s.RoleInTenant(ctx, tenantID, principalID)
	if err != nil {
		return false, err
	}
	return current != "" && current == role, nil
}

func (s Service) ListMembers(ctx context.Context, tenantID string) ([]entities.Membership, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	return s.Repo.ListMembers(ctx, strings.TrimSpace(tenantID))
}

func (s Service) newMembership(
	ctx context.Context,
	tenantID string,
	principalID string,
	businessRole string,
	overrides []string,
) (entities.Membership, error) {
	tenantID = strings.TrimSpace(tenantID)
	principalID = strings.TrimSpace(principalID)
	businessRole = strings.TrimSpace(businessRole)
	if tenantID == "" || principalID == "" || businessRole == "" {
		return entities.Membership{}, domainerrors.ErrInvalidRequest
	}
	for _, p := range overrides {
		if !permissions.IsRegistered(p) {
			return entities.Membership{}, domainerrors.ErrPermissionNotRegistered
		}
	}

	membershipID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Membership{}, err
	}
	now := s.now()
	return entities.Membership{
		MembershipID:        membershipID,
		TenantID:            tenantID,
		PrincipalID:         principalID,
		BusinessRole:        businessRole,
		PermissionOverrides: append([]string(nil), overrides...),
		EmploymentStatus:    entities.StatusActive,
		JoinedAt:            now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

func (s Service) mutableMembership(ctx context.Context, tenantID string, principalID string) (entities.Membership, error) {
	membership, err := s.GetMembership(ctx, tenantID, principalID)
	if err != nil {
		return entities.Membership{}, err
	}
	if membership.IsTerminated() {
		return entities.Membership{}, domainerrors.ErrMembershipTerminated
	}
	return membership, nil
}

func (s Service) appendEvent(ctx context.Context, eventType string, tenantID string, payload map[string]any) error {
	if s.Outbox == nil {
		return nil
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       s.now(),
		SourceService:    "membership-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "tenant_id",
		PartitionKey:     tenantID,
		Data:             data,
	})
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
