package httpadapter

import (
	"context"
	"log/slog"

	"backoffice/contexts/identity-access/authorization-service/application/queries"
	httptransport "backoffice/contexts/identity-access/authorization-service/transport/http"
)

// Handler maps HTTP DTOs to resolver queries. Both endpoints are
// side-effect-free reads.
type Handler struct {
	CanPerform           queries.CanPerform
	EffectivePermissions queries.EffectivePermissions
	Logger               *slog.Logger
}

func (h Handler) CanPerformHandler(ctx context.Context, request httptransport.CanPerformRequest) (httptransport.CanPerformResponse, error) {
	decision, err := h.CanPerform.Execute(ctx, request.PrincipalID, request.Permission, request.TenantID)
	if err != nil {
		return httptransport.CanPerformResponse{}, err
	}
	return httptransport.CanPerformResponse{
		Allowed:    decision.Allowed,
		Reason:     decision.Reason,
		Permission: decision.Permission,
	}, nil
}

func (h Handler) EffectivePermissionsHandler(ctx context.Context, principalID string, tenantID string) (httptransport.EffectivePermissionsResponse, error) {
	items, err := h.EffectivePermissions.Execute(ctx, principalID, tenantID)
	if err != nil {
		return httptransport.EffectivePermissionsResponse{}, err
	}
	return httptransport.EffectivePermissionsResponse{
		PrincipalID: principalID,
		TenantID:    tenantID,
		Permissions: items,
	}, nil
}
