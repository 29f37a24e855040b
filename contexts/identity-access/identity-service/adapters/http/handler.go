package httpadapter

import (
	"context"
	"log/slog"

	application "backoffice/contexts/identity-access/identity-service/application"
	httptransport "backoffice/contexts/identity-access/identity-service/transport/http"
)

// Handler maps HTTP DTOs to identity application calls.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) RegisterHandler(ctx context.Context, request httptransport.RegisterRequest) (httptransport.PrincipalResponse, error) {
	principal, err := h.Service.Register(ctx, request.Email, request.Password, request.LegacyRole)
	if err != nil {
		application.ResolveLogger(h.Logger).Error("http register failed",
			"event", "identity_http_register_failed",
			"module", "identity-access/identity-service",
			"layer", "transport",
			"error", err.Error(),
		)
		return httptransport.PrincipalResponse{}, err
	}
	return httptransport.PrincipalResponse{
		PrincipalID: principal.PrincipalID,
		Email:       principal.Email,
		CreatedAt:   principal.CreatedAt,
	}, nil
}

func (h Handler) CreateRoleHandler(ctx context.Context, request httptransport.CreateRoleRequest) (httptransport.RoleResponse, error) {
	role, err := h.Service.CreateRole(ctx, request.Name, request.GuardTag, request.Permissions)
	if err != nil {
		return httptransport.RoleResponse{}, err
	}
	return httptransport.RoleResponse{
		RoleID:      role.RoleID,
		Name:        role.Name,
		GuardTag:    role.GuardTag,
		Permissions: role.Permissions,
	}, nil
}

func (h Handler) AssignRoleHandler(ctx context.Context, principalID string, request httptransport.AssignRoleRequest) error {
	return h.Service.AssignRole(ctx, principalID, request.RoleName)
}

func (h Handler) GrantPermissionHandler(ctx context.Context, principalID string, request httptransport.GrantPermissionRequest) error {
	return h.Service.GrantPermissionToPrincipal(ctx, principalID, request.Permission)
}

func (h Handler) CheckPermissionHandler(ctx context.Context, principalID string, permission string) (httptransport.CheckPermissionResponse, error) {
	granted, err := h.Service.HasPermission(ctx, principalID, permission)
	if err != nil {
		return httptransport.CheckPermissionResponse{}, err
	}
	return httptransport.CheckPermissionResponse{
		PrincipalID: principalID,
		Permission:  permission,
		Granted:     granted,
	}, nil
}

func (h Handler) SuperAdminHandler(ctx context.Context, principalID string) (httptransport.SuperAdminResponse, error) {
	isSuper, err := h.Service.IsSuperAdmin(ctx, principalID)
	if err != nil {
		return httptransport.SuperAdminResponse{}, err
	}
	return httptransport.SuperAdminResponse{
		PrincipalID:  principalID,
		IsSuperAdmin: isSuper,
	}, nil
}
