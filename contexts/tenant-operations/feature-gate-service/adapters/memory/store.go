package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"backoffice/contexts/tenant-operations/feature-gate-service/domain/entities"
	domainerrors "backoffice/contexts/tenant-operations/feature-gate-service/domain/errors"
)

// Store is an in-memory adapter implementing the feature-gate repository,
// clock and id ports. It is intended for tests and local wiring.
type Store struct {
	mu sync.RWMutex

	features    map[string]entities.FeatureDefinition // key featureID
	assignments map[string]entities.FeatureAssignment // key tenantID|featureID

	now time.Time
}

func NewStore() *Store {
	return &Store{
		features:    make(map[string]entities.FeatureDefinition),
		assignments: make(map[string]entities.FeatureAssignment),
	}
}

func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func assignmentKey(tenantID string, featureID string) string {
	return tenantID + "|" + featureID
}

func (s *Store) CreateFeature(_ context.Context, feature entities.FeatureDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.features {
		if existing.Name == feature.Name {
			return domainerrors.ErrDuplicateFeature
		}
	}
	s.features[feature.FeatureID] = feature
	return nil
}

func (s *Store) GetFeatureBySlug(_ context.Context, slug string) (entities.FeatureDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, feature := range s.features {
		if feature.Slug == slug {
			return feature, nil
		}
	}
	return entities.FeatureDefinition{}, domainerrors.ErrFeatureNotFound
}

func (s *Store) ExistsFeatureSlug(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, feature := range s.features {
		if feature.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ExistsFeatureName(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, feature := range s.features {
		if feature.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) UpdateFeature(_ context.Context, feature entities.FeatureDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.features[feature.FeatureID]; !ok {
		return domainerrors.ErrFeatureNotFound
	}
	s.features[feature.FeatureID] = feature
	return nil
}

func (s *Store) ListFeatures(_ context.Context) ([]entities.FeatureDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.FeatureDefinition, 0, len(s.features))
	for _, feature := range s.features {
		items = append(items, feature)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Slug < items[j].Slug })
	return items, nil
}

func (s *Store) GetAssignment(_ context.Context, tenantID string, featureID string) (entities.FeatureAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignment, ok := s.assignments[assignmentKey(tenantID, featureID)]
	if !ok {
		return entities.FeatureAssignment{}, domainerrors.ErrAssignmentNotFound
	}
	return assignment, nil
}

func (s *Store) SaveAssignment(_ context.Context, assignment entities.FeatureAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[assignmentKey(assignment.TenantID, assignment.FeatureID)] = assignment
	return nil
}

func (s *Store) ListAssignments(_ context.Context, tenantID string) ([]entities.FeatureAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.FeatureAssignment, 0)
	for _, assignment := range s.assignments {
		if assignment.TenantID == tenantID {
			items = append(items, assignment)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].FeatureID < items[j].FeatureID })
	return items, nil
}
