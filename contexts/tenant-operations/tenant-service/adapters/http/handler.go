package httpadapter

import (
	"context"
	"log/slog"

	application "backoffice/contexts/tenant-operations/tenant-service/application"
	"backoffice/contexts/tenant-operations/tenant-service/domain/entities"
	httptransport "backoffice/contexts/tenant-operations/tenant-service/transport/http"
)

// Handler maps HTTP DTOs to tenant application calls.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateTenantHandler(ctx context.Context, request httptransport.CreateTenantRequest) (httptransport.TenantResponse, error) {
	tenant, err := h.Service.CreateTenant(ctx, request.Name, request.Settings)
	if err != nil {
		return httptransport.TenantResponse{}, err
	}
	return toResponse(tenant), nil
}

func (h Handler) GetTenantHandler(ctx context.Context, tenantID string) (httptransport.TenantResponse, error) {
	tenant, err := h.Service.GetTenant(ctx, tenantID)
	if err != nil {
		return httptransport.TenantResponse{}, err
	}
	return toResponse(tenant), nil
}

func (h Handler) ListTenantsHandler(ctx context.Context, limit int, offset int) (httptransport.ListTenantsResponse, error) {
	tenants, err := h.Service.ListTenants(ctx, limit, offset)
	if err != nil {
		return httptransport.ListTenantsResponse{}, err
	}
	items := make([]httptransport.TenantResponse, 0, len(tenants))
	for _, tenant := range tenants {
		items = append(items, toResponse(tenant))
	}
	return httptransport.ListTenantsResponse{Items: items}, nil
}

func (h Handler) UpdateSettingsHandler(ctx context.Context, tenantID string, request httptransport.UpdateSettingsRequest) (httptransport.TenantResponse, error) {
	tenant, err := h.Service.UpdateSettings(ctx, tenantID, request.Settings)
	if err != nil {
		return httptransport.TenantResponse{}, err
	}
	return toResponse(tenant), nil
}

func (h Handler) DeactivateHandler(ctx context.Context, tenantID string) error {
	return h.Service.Deactivate(ctx, tenantID)
}

func (h Handler) ReactivateHandler(ctx context.Context, tenantID string) error {
	return h.Service.Reactivate(ctx, tenantID)
}

func (h Handler) DeleteHandler(ctx context.Context, tenantID string) error {
	return h.Service.Delete(ctx, tenantID)
}

func toResponse(tenant entities.Tenant) httptransport.TenantResponse {
	return httptransport.TenantResponse{
		TenantID:  tenant.TenantID,
		Name:      tenant.Name,
		Slug:      tenant.Slug,
		IsActive:  tenant.IsActive,
		Settings:  tenant.Settings,
		CreatedAt: tenant.CreatedAt,
	}
}
