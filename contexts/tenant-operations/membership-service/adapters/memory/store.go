package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"backoffice/contexts/tenant-operations/membership-service/domain/entities"
	domainerrors "backoffice/contexts/tenant-operations/membership-service/domain/errors"
	"backoffice/contexts/tenant-operations/membership-service/ports"
	"backoffice/internal/shared/outbox"
)

// Store is an in-memory adapter implementing the membership repository,
// outbox, clock and id ports. It is intended for tests and local wiring.
type Store struct {
	mu sync.RWMutex

	memberships map[string]entities.Membership // key tenantID|principalID
	outboxRows  []outboxRow

	now time.Time
}

type outboxRow struct {
	outbox.Message
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{memberships: make(map[string]entities.Membership)}
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

func key(tenantID string, principalID string) string {
	return tenantID + "|" + principalID
}

func (s *Store) CreateMembership(_ context.Context, membership entities.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.memberships[key(membership.TenantID, membership.PrincipalID)]; exists {
		return domainerrors.ErrDuplicateMembership
	}
	s.memberships[key(membership.TenantID, membership.PrincipalID)] = membership
	return nil
}

func (s *Store) GetMembership(_ context.Context, tenantID string, principalID string) (entities.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	membership, ok := s.memberships[key(tenantID, principalID)]
	if !ok {
		return entities.Membership{}, domainerrors.ErrMembershipNotFound
	}
	return membership, nil
}

func (s *Store) GetByInvitationToken(_ context.Context, token string) (entities.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, membership := range s.memberships {
		if membership.InvitationToken != "" && membership.InvitationToken == token {
			return membership, nil
		}
	}
	return entities.Membership{}, domainerrors.ErrInvitationNotFound
}

func (s *Store) UpdateMembership(_ context.Context, membership entities.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(membership.TenantID, membership.PrincipalID)
	if _, ok := s.memberships[k]; !ok {
		return domainerrors.ErrMembershipNotFound
	}
	s.memberships[k] = membership
	return nil
}

func (s *Store) ListMembers(_ context.Context, tenantID string) ([]entities.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Membership, 0)
	for _, membership := range s.memberships {
		if membership.TenantID == tenantID {
			items = append(items, membership)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].JoinedAt.Before(items[j].JoinedAt) })
	return items, nil
}

func (s *Store) ListUnacceptedInvitations(_ context.Context, sentBefore time.Time) ([]entities.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Membership, 0)
	for _, membership := range s.memberships {
		if !membership.AwaitingAcceptance() || membership.IsTerminated() {
			continue
		}
		if membership.InvitationSentAt.Before(sentBefore) {
			items = append(items, membership)
		}
	}
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.outboxRows = append(s.outboxRows, outboxRow{
		Message: outbox.Message{
			OutboxID:  envelope.EventID,
			EventType: envelope.EventType,
			Payload:   payload,
			CreatedAt: envelope.OccurredAt,
		},
	})
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]outbox.Message, 0)
	for _, row := range s.outboxRows {
		if row.PublishedAt != nil {
			continue
		}
		items = append(items, row.Message)
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.outboxRows {
		if row.OutboxID == outboxID {
			s.outboxRows[i].PublishedAt = &publishedAt
			return nil
		}
	}
	return domainerrors.ErrNotFound
}
