package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"backoffice/contexts/tenant-operations/feature-gate-service/domain/entities"
	domainerrors "backoffice/contexts/tenant-operations/feature-gate-service/domain/errors"
)

type featureRecord struct {
	FeatureID       string    `gorm:"column:feature_id;primaryKey"`
	Name            string    `gorm:"column:name;uniqueIndex"`
	Slug            string    `gorm:"column:slug;uniqueIndex"`
	Category        string    `gorm:"column:category;index"`
	IsActive        bool      `gorm:"column:is_active"`
	DefaultSettings string    `gorm:"column:default_settings;type:jsonb"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (featureRecord) TableName() string { return "feature_definitions" }

type assignmentRecord struct {
	AssignmentID string     `gorm:"column:assignment_id;primaryKey"`
	TenantID     string     `gorm:"column:tenant_id;uniqueIndex:idx_feature_assignments_pair;index"`
	FeatureID    string     `gorm:"column:feature_id;uniqueIndex:idx_feature_assignments_pair"`
	IsEnabled    bool       `gorm:"column:is_enabled"`
	Settings     string     `gorm:"column:settings;type:jsonb"`
	EnabledAt    *time.Time `gorm:"column:enabled_at"`
	EnabledBy    string     `gorm:"column:enabled_by"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (assignmentRecord) TableName() string { return "feature_assignments" }

// Repository is the PostgreSQL adapter for the feature catalogue and
// per-tenant assignments.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&featureRecord{}, &assignmentRecord{})
}

func (r *Repository) CreateFeature(ctx context.Context, feature entities.FeatureDefinition) error {
	record, err := toFeatureRecord(feature)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&featureRecord{}).Where("name = ?", feature.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.ErrDuplicateFeature
		}
		return tx.Create(&record).Error
	})
}

func (r *Repository) GetFeatureBySlug(ctx context.Context, slug string) (entities.FeatureDefinition, error) {
	var record featureRecord
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.FeatureDefinition{}, domainerrors.ErrFeatureNotFound
		}
		return entities.FeatureDefinition{}, err
	}
	return fromFeatureRecord(record)
}

func (r *Repository) ExistsFeatureSlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&featureRecord{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *Repository) ExistsFeatureName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&featureRecord{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *Repository) UpdateFeature(ctx context.Context, feature entities.FeatureDefinition) error {
	record, err := toFeatureRecord(feature)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&featureRecord{}).
		Where("feature_id = ?", feature.FeatureID).
		Updates(map[string]any{
			"name":             record.Name,
			"category":         record.Category,
			"is_active":        record.IsActive,
			"default_settings": record.DefaultSettings,
			"updated_at":       record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrFeatureNotFound
	}
	return nil
}

func (r *Repository) ListFeatures(ctx context.Context) ([]entities.FeatureDefinition, error) {
	var records []featureRecord
	if err := r.db.WithContext(ctx).Order("slug ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	items := make([]entities.FeatureDefinition, 0, len(records))
	for _, record := range records {
		feature, err := fromFeatureRecord(record)
		if err != nil {
			return nil, err
		}
		items = append(items, feature)
	}
	return items, nil
}

func (r *Repository) GetAssignment(ctx context.Context, tenantID string, featureID string) (entities.FeatureAssignment, error) {
	var record assignmentRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND feature_id = ?", tenantID, featureID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.FeatureAssignment{}, domainerrors.ErrAssignmentNotFound
		}
		return entities.FeatureAssignment{}, err
	}
	return fromAssignmentRecord(record)
}

func (r *Repository) SaveAssignment(ctx context.Context, assignment entities.FeatureAssignment) error {
	record, err := toAssignmentRecord(assignment)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(&record).Error
}

func (r *Repository) ListAssignments(ctx context.Context, tenantID string) ([]entities.FeatureAssignment, error) {
	var records []assignmentRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("feature_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.FeatureAssignment, 0, len(records))
	for _, record := range records {
		assignment, err := fromAssignmentRecord(record)
		if err != nil {
			return nil, err
		}
		items = append(items, assignment)
	}
	return items, nil
}

func toFeatureRecord(feature entities.FeatureDefinition) (featureRecord, error) {
	defaults, err := json.Marshal(feature.DefaultSettings)
	if err != nil {
		return featureRecord{}, err
	}
	return featureRecord{
		FeatureID:       feature.FeatureID,
		Name:            feature.Name,
		Slug:            feature.Slug,
		Category:        feature.Category,
		IsActive:        feature.IsActive,
		DefaultSettings: string(defaults),
		CreatedAt:       feature.CreatedAt,
		UpdatedAt:       feature.UpdatedAt,
	}, nil
}

func fromFeatureRecord(record featureRecord) (entities.FeatureDefinition, error) {
	feature := entities.FeatureDefinition{
		FeatureID: record.FeatureID,
		Name:      record.Name,
		Slug:      record.Slug,
		Category:  record.Category,
		IsActive:  record.IsActive,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if record.DefaultSettings != "" {
		if err := json.Unmarshal([]byte(record.DefaultSettings), &feature.DefaultSettings); err != nil {
			return entities.FeatureDefinition{}, err
		}
	}
	return feature, nil
}

func toAssignmentRecord(assignment entities.FeatureAssignment) (assignmentRecord, error) {
	settings, err := json.Marshal(assignment.Settings)
	if err != nil {
		return assignmentRecord{}, err
	}
	return assignmentRecord{
		AssignmentID: assignment.AssignmentID,
		TenantID:     assignment.TenantID,
		FeatureID:    assignment.FeatureID,
		IsEnabled:    assignment.IsEnabled,
		Settings:     string(settings),
		EnabledAt:    assignment.EnabledAt,
		EnabledBy:    assignment.EnabledBy,
		CreatedAt:    assignment.CreatedAt,
		UpdatedAt:    assignment.UpdatedAt,
	}, nil
}

func fromAssignmentRecord(record assignmentRecord) (entities.FeatureAssignment, error) {
	assignment := entities.FeatureAssignment{
		AssignmentID: record.AssignmentID,
		TenantID:     record.TenantID,
		FeatureID:    record.FeatureID,
		IsEnabled:    record.IsEnabled,
		EnabledAt:    record.EnabledAt,
		EnabledBy:    record.EnabledBy,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
	if record.Settings != "" {
		if err := json.Unmarshal([]byte(record.Settings), &assignment.Settings); err != nil {
			return entities.FeatureAssignment{}, err
		}
	}
	return assignment, nil
}
