package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"backoffice/contexts/tenant-operations/feature-gate-service/domain/entities"
	domainerrors "backoffice/contexts/tenant-operations/feature-gate-service/domain/errors"
	"backoffice/contexts/tenant-operations/feature-gate-service/domain/services"
	"backoffice/contexts/tenant-operations/feature-gate-service/ports"
)

const slugProbeLimit = 1000

type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// DefineFeature registers a platform-wide feature. The slug is derived from
// the name with the same collision suffixing tenants use; the name itself
// must be unique.
func (s Service) DefineFeature(
	ctx context.Context,
	name string,
	category string,
	defaults map[string]any,
) (entities.FeatureDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entities.FeatureDefinition{}, domainerrors.ErrInvalidRequest
	}
	taken, err := s.Repo.ExistsFeatureName(ctx, name)
	if err != nil {
		return entities.FeatureDefinition{}, err
	}
	if taken {
		return entities.FeatureDefinition{}, domainerrors.ErrDuplicateFeature
	}

	base := services.Slugify(name)
	if base == "" {
		return entities.FeatureDefinition{}, domainerrors.ErrInvalidRequest
	}
	slug := ""
	for n := 0; n < slugProbeLimit; n++ {
		candidate := services.SlugCandidate(base, n)
		inUse, err := s.Repo.ExistsFeatureSlug(ctx, candidate)
		if err != nil {
			return entities.FeatureDefinition{}, err
		}
		if !inUse {
			slug = candidate
			break
		}
	}
	if slug == "" {
		return entities.FeatureDefinition{}, domainerrors.ErrInvalidRequest
	}

	featureID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.FeatureDefinition{}, err
	}
	now := s.now()
	feature := entities.FeatureDefinition{
		FeatureID:       featureID,
		Name:            name,
		Slug:            slug,
		Category:        strings.TrimSpace(category),
		IsActive:        true,
		DefaultSettings: defaults,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.CreateFeature(ctx, feature); err != nil {
		return entities.FeatureDefinition{}, err
	}

	ResolveLogger(s.Logger).Info("feature defined",
		"event", "feature_defined",
		"module", "tenant-operations/feature-gate-service",
		"layer", "application",
		"feature_id", feature.FeatureID,
		"slug", feature.Slug,
	)
	return feature, nil
}

// RetireFeature flips the catalogue active flag; existing assignments stay
// but the gate answers false for inactive definitions.
func (s Service) RetireFeature(ctx context.Context, featureSlug string) error {
	feature, err := s.feature(ctx, featureSlug)
	if err != nil {
		return err
	}
	if !feature.IsActive {
		return nil
	}
	feature.IsActive = false
	feature.UpdatedAt = s.now()
	return s.Repo.UpdateFeature(ctx, feature)
}

// Enable switches the feature on for the tenant, stamping who and when. It
// is idempotent; the existing settings override is preserved.
func (s Service) Enable(ctx context.Context, tenantID string, featureSlug string, byPrincipal string) (entities.FeatureAssignment, error) {
	if strings.TrimSpace(byPrincipal) == "" {
		return entities.FeatureAssignment{}, domainerrors.ErrInvalidRequest
	}
	feature, err := s.feature(ctx, featureSlug)
	if err != nil {
		return entities.FeatureAssignment{}, err
	}
	if !feature.IsActive {
		return entities.FeatureAssignment{}, domainerrors.ErrFeatureInactive
	}
	assignment, err := s.assignmentOrNew(ctx, tenantID, feature.FeatureID)
	if err != nil {
		return entities.FeatureAssignment{}, err
	}
	now := s.now()
	assignment.IsEnabled = true
	assignment.EnabledAt = &now
	assignment.EnabledBy = strings.TrimSpace(byPrincipal)
	assignment.UpdatedAt = now
	if err := s.Repo.SaveAssignment(ctx, assignment); err != nil {
		return entities.FeatureAssignment{}, err
	}

	ResolveLogger(s.Logger).Info("feature enabled",
		"event", "feature_enabled",
		"module", "tenant-operations/feature-gate-service",
		"layer", "application",
		"tenant_id", tenantID,
		"feature_slug", feature.Slug,
	)
	return assignment, nil
}

// Disable clears the enablement stamps but keeps the settings override, so
// re-enabling restores the prior configuration. Disabling an already-disabled
// or never-assigned feature is a no-op.
func (s Service) Disable(ctx context.Context, tenantID string, featureSlug string) (entities.FeatureAssignment, error) {
	feature, err := s.feature(ctx, featureSlug)
	if err != nil {
		return entities.FeatureAssignment{}, err
	}
	assignment, err := s.Repo.GetAssignment(ctx, tenantID, feature.FeatureID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAssignmentNotFound) {
			return entities.FeatureAssignment{}, nil
		}
		return entities.FeatureAssignment{}, err
	}
	if !assignment.IsEnabled && assignment.EnabledAt == nil && assignment.EnabledBy == "" {
		return assignment, nil
	}
	assignment.IsEnabled = false
	assignment.EnabledAt = nil
	assignment.EnabledBy = ""
	assignment.UpdatedAt = s.now()
	if err := s.Repo.SaveAssignment(ctx, assignment); err != nil {
		return entities.FeatureAssignment{}, err
	}
	return assignment, nil
}

// UpdateSettings replaces the tenant's settings override for the feature.
// The assignment is created disabled when it does not exist yet, so settings
// can be staged ahead of enablement.
func (s Service) UpdateSettings(ctx context.Context, tenantID string, featureSlug string, settings map[string]any) (entities.FeatureAssignment, error) {
	feature, err := s.feature(ctx, featureSlug)
	if err != nil {
		return entities.FeatureAssignment{}, err
	}
	assignment, err := s.assignmentOrNew(ctx, tenantID, feature.FeatureID)
	if err != nil {
		return entities.FeatureAssignment{}, err
	}
	assignment.Settings = settings
	assignment.UpdatedAt = s.now()
	if err := s.Repo.SaveAssignment(ctx, assignment); err != nil {
		return entities.FeatureAssignment{}, err
	}
	return assignment, nil
}

// IsEnabled answers the gate question. A missing assignment, a disabled
// assignment, or an inactive definition all answer false.
func (s Service) IsEnabled(ctx context.Context, tenantID string, featureSlug string) (bool, error) {
	feature, err := s.feature(ctx, featureSlug)
	if err != nil {
		if errors.Is(err, domainerrors.ErrFeatureNotFound) {
			return false, nil
		}
		return false, err
	}
	if !feature.IsActive {
		return false, nil
	}
	assignment, err := s.Repo.GetAssignment(ctx, tenantID, feature.FeatureID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAssignmentNotFound) {
			return false, nil
		}
		return false, err
	}
	return assignment.IsEnabled, nil
}

// EffectiveSettings merges the definition defaults with the tenant override,
// assignment keys winning. Without an assignment the defaults come back as-is.
func (s Service) EffectiveSettings(ctx context.Context, tenantID string, featureSlug string) (map[string]any, error) {
	feature, err := s.feature(ctx, featureSlug)
	if err != nil {
		return nil, err
	}
	assignment, err := s.Repo.GetAssignment(ctx, tenantID, feature.FeatureID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAssignmentNotFound) {
			return services.MergeSettings(feature.DefaultSettings, nil), nil
		}
		return nil, err
	}
	return services.MergeSettings(feature.DefaultSettings, assignment.Settings), nil
}

func (s Service) GetFeature(ctx context.Context, featureSlug string) (entities.FeatureDefinition, error) {
	return s.feature(ctx, featureSlug)
}

func (s Service) ListFeatures(ctx context.Context) ([]entities.FeatureDefinition, error) {
	return s.Repo.ListFeatures(ctx)
}

func (s Service) ListAssignments(ctx context.Context, tenantID string) ([]entities.FeatureAssignment, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	return s.Repo.ListAssignments(ctx, strings.TrimSpace(tenantID))
}

func (s Service) feature(ctx context.Context, featureSlug string) (entities.FeatureDefinition, error) {
	featureSlug = strings.TrimSpace(featureSlug)
	if featureSlug == "" {
		return entities.FeatureDefinition{}, domainerrors.ErrInvalidRequest
	}
	return s.Repo.GetFeatureBySlug(ctx, featureSlug)
}

func (s Service) assignmentOrNew(ctx context.Context, tenantID string, featureID string) (entities.FeatureAssignment, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return entities.FeatureAssignment{}, domainerrors.ErrInvalidRequest
	}
	assignment, err := s.Repo.GetAssignment(ctx, tenantID, featureID)
	if err == nil {
		return assignment, nil
	}
	if !errors.Is(err, domainerrors.ErrAssignmentNotFound) {
		return entities.FeatureAssignment{}, err
	}
	assignmentID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.FeatureAssignment{}, err
	}
	now := s.now()
	return entities.FeatureAssignment{
		AssignmentID: assignmentID,
		TenantID:     tenantID,
		FeatureID:    featureID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
