package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"backoffice/contexts/tenant-operations/tenant-service/domain/entities"
	domainerrors "backoffice/contexts/tenant-operations/tenant-service/domain/errors"
)

type tenantRecord struct {
	TenantID  string    `gorm:"column:tenant_id;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;uniqueIndex;not null"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	Settings  string    `gorm:"column:settings;type:jsonb"`
	IsDeleted bool      `gorm:"column:is_deleted;default:false"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (tenantRecord) TableName() string { return "tenants" }

// Repository is the PostgreSQL adapter for the tenant registry.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&tenantRecord{})
}

func (r *Repository) CreateTenant(ctx context.Context, tenant entities.Tenant) error {
	record, err := toRecord(tenant)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *Repository) GetTenant(ctx context.Context, tenantID string) (entities.Tenant, error) {
	var record tenantRecord
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Tenant{}, domainerrors.ErrTenantNotFound
		}
		return entities.Tenant{}, err
	}
	return fromRecord(record)
}

func (r *Repository) GetTenantBySlug(ctx context.Context, slug string) (entities.Tenant, error) {
	var record tenantRecord
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_deleted = false", slug).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Tenant{}, domainerrors.ErrTenantNotFound
		}
		return entities.Tenant{}, err
	}
	return fromRecord(record)
}

func (r *Repository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&tenantRecord{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) ListTenants(ctx context.Context, limit int, offset int) ([]entities.Tenant, error) {
	var records []tenantRecord
	err := r.db.WithContext(ctx).
		Where("is_deleted = false").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Tenant, 0, len(records))
	for _, record := range records {
		tenant, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		items = append(items, tenant)
	}
	return items, nil
}

func (r *Repository) UpdateTenant(ctx context.Context, tenant entities.Tenant) error {
	record, err := toRecord(tenant)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&tenantRecord{}).
		Where("tenant_id = ?", tenant.TenantID).
		Updates(map[string]any{
			"name":       record.Name,
			"is_active":  record.IsActive,
			"settings":   record.Settings,
			"updated_at": record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTenantNotFound
	}
	return nil
}

func (r *Repository) SoftDeleteTenant(ctx context.Context, tenantID string, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&tenantRecord{}).
		Where("tenant_id = ? AND is_deleted = false", tenantID).
		Updates(map[string]any{
			"is_deleted": true,
			"is_active":  false,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTenantNotFound
	}
	return nil
}

func toRecord(tenant entities.Tenant) (tenantRecord, error) {
	settings, err := json.Marshal(tenant.Settings)
	if err != nil {
		return tenantRecord{}, err
	}
	return tenantRecord{
		TenantID:  tenant.TenantID,
		Name:      tenant.Name,
		Slug:      tenant.Slug,
		IsActive:  tenant.IsActive,
		Settings:  string(settings),
		IsDeleted: tenant.IsDeleted,
		CreatedAt: tenant.CreatedAt,
		UpdatedAt: tenant.UpdatedAt,
	}, nil
}

func fromRecord(record tenantRecord) (entities.Tenant, error) {
	tenant := entities.Tenant{
		TenantID:  record.TenantID,
		Name:      record.Name,
		Slug:      record.Slug,
		IsActive:  record.IsActive,
		IsDeleted: record.IsDeleted,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if record.Settings != "" {
		if err := json.Unmarshal([]byte(record.Settings), &tenant.Settings); err != nil {
			return entities.Tenant{}, err
		}
	}
	return tenant, nil
}
