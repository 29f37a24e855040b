package ports

import (
	"context"
	"time"

	"backoffice/contexts/tenant-operations/feature-gate-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Repository stores the feature catalogue and per-tenant assignments.
// (tenant_id, feature_id) uniqueness on assignments is backed by a storage
// constraint; enable/disable are read-modify-write on one assignment row.
type Repository interface {
	CreateFeature(ctx context.Context, feature entities.FeatureDefinition) error
	GetFeatureBySlug(ctx context.Context, slug string) (entities.FeatureDefinition, error)
	ExistsFeatureSlug(ctx context.Context, slug string) (bool, error)
	ExistsFeatureName(ctx context.Context, name string) (bool, error)
	UpdateFeature(ctx context.Context, feature entities.FeatureDefinition) error
	ListFeatures(ctx context.Context) ([]entities.FeatureDefinition, error)

	GetAssignment(ctx context.Context, tenantID string, featureID string) (entities.FeatureAssignment, error)
	SaveAssignment(ctx context.Context, assignment entities.FeatureAssignment) error
	ListAssignments(ctx context.Context, tenantID string) ([]entities.FeatureAssignment, error)
}
