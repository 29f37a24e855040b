package ports

import (
	"context"
	"time"

	contractsv1 "backoffice/contracts/gen/events/v1"
	"backoffice/contexts/tenant-operations/membership-service/domain/entities"
	"backoffice/internal/shared/outbox"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-context envelope contract.
type EventEnvelope = contractsv1.Envelope

// OutboxWriter persists an event in the same transaction scope as the
// membership mutation that produced it.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// OutboxRepository supports worker relay polling and acknowledgement.
type OutboxRepository = outbox.Source

// Repository is the write/read boundary for membership state. Uniqueness of
// (tenant_id, principal_id) is enforced here, backed by a storage-level
// unique constraint so concurrent adds cannot race past the check.
type Repository interface {
	CreateMembership(ctx context.Context, membership entities.Membership) error
	GetMembership(ctx context.Context, tenantID string, principalID string) (entities.Membership, error)
	GetByInvitationToken(ctx context.Context, token string) (entities.Membership, error)
	UpdateMembership(ctx context.Context, membership entities.Membership) error
	ListMembers(ctx context.Context, tenantID string) ([]entities.Membership, error)
	ListUnacceptedInvitations(ctx context.Context, sentBefore time.Time) ([]entities.Membership, error)
}
