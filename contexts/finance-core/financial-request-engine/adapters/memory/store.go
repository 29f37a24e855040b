package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"backoffice/contexts/finance-core/financial-request-engine/domain/entities"
	domainerrors "backoffice/contexts/finance-core/financial-request-engine/domain/errors"
	"backoffice/contexts/finance-core/financial-request-engine/ports"
	"backoffice/internal/shared/outbox"
)

// Store is an in-memory adapter implementing the request repository, outbox,
// clock and id ports. It is intended for tests and local wiring.
type Store struct {
	mu sync.RWMutex

	requests   map[string]entities.FinancialRequest // key requestID
	outboxRows []outboxRow

	now time.Time
}

type outboxRow struct {
	outbox.Message
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{requests: make(map[string]entities.FinancialRequest)}
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

func (s *Store) CreateRequest(_ context.Context, request entities.FinancialRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[request.RequestID] = request
	return nil
}

func (s *Store) GetRequest(_ context.Context, tenantID string, requestID string) (entities.FinancialRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[requestID]
	if !ok || request.TenantID != tenantID {
		return entities.FinancialRequest{}, domainerrors.ErrRequestNotFound
	}
	return request, nil
}

func (s *Store) GetRequestByPublicID(_ context.Context, publicID string) (entities.FinancialRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, request := range s.requests {
		if request.PublicID == publicID {
			return request, nil
		}
	}
	return entities.FinancialRequest{}, domainerrors.ErrRequestNotFound
}

func (s *Store) UpdateRequest(_ context.Context, request entities.FinancialRequest, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.requests[request.RequestID]
	if !ok {
		return domainerrors.ErrRequestNotFound
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("%w (concurrent update, current status %s)", domainerrors.ErrInvalidTransition, stored.Status)
	}
	s.requests[request.RequestID] = request
	return nil
}

func (s *Store) ListByTenantAndStatus(_ context.Context, tenantID string, status string, limit int, offset int) ([]entities.FinancialRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.FinancialRequest, 0)
	for _, request := range s.requests {
		if request.TenantID != tenantID || request.IsDeleted {
			continue
		}
		if status != "" && request.Status != status {
			continue
		}
		items = append(items, request)
	}
	return page(items, limit, offset), nil
}

func (s *Store) ListByBeneficiaryAndStatus(_ context.Context, beneficiaryID string, status string, limit int, offset int) ([]entities.FinancialRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.FinancialRequest, 0)
	for _, request := range s.requests {
		if request.BeneficiaryID != beneficiaryID || request.IsDeleted {
			continue
		}
		if status != "" && request.Status != status {
			continue
		}
		items = append(items, request)
	}
	return page(items, limit, offset), nil
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
	return domainerrors.ErrRequestNotFound
}

func page(items []entities.FinancialRequest, limit int, offset int) []entities.FinancialRequest {
	sort.Slice(items, func(i, j int) bool { return items[i].RequestedAt.Before(items[j].RequestedAt) })
	if offset >= len(items) {
		return []entities.FinancialRequest{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
