package ports

import (
	"context"
	"time"

	contractsv1 "backoffice/contracts/gen/events/v1"
	"backoffice/contexts/finance-core/financial-request-engine/domain/entities"
	"backoffice/internal/shared/outbox"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Authorizer is the resolver boundary: every mutation asks it before any
// state is touched. Wired to the authorization-service at bootstrap.
type Authorizer interface {
	CanPerform(ctx context.Context, principalID string, permission string, tenantID string) (bool, error)
}

// EventEnvelope reuses the canonical cross-context envelope contract.
type EventEnvelope = contractsv1.Envelope

// OutboxWriter persists an event in the same unit of work as the request
// mutation that produced it.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// OutboxRepository supports worker relay polling and acknowledgement.
type OutboxRepository = outbox.Source

// SubmitRequestInput carries the raw field values for a new request.
type SubmitRequestInput struct {
	TenantID      string
	Kind          string
	BeneficiaryID string
	Amount        float64
	Purpose       string
	Category      string
	Attachments   []string
}

// UpdateRequestInput is a partial update of a pending request. Nil fields
// are left unchanged.
type UpdateRequestInput struct {
	Amount        *float64
	Purpose       *string
	Category      *string
	BeneficiaryID *string
	Attachments   *[]string
}

// Repository is the durable boundary for financial requests. UpdateRequest
// performs an optimistic version check: the stored row must still carry
// expectedVersion or the write is refused, which surfaces to racing callers
// as an invalid transition.
type Repository interface {
	CreateRequest(ctx context.Context, request entities.FinancialRequest) error
	GetRequest(ctx context.Context, tenantID string, requestID string) (entities.FinancialRequest, error)
	GetRequestByPublicID(ctx context.Context, publicID string) (entities.FinancialRequest, error)
	UpdateRequest(ctx context.Context, request entities.FinancialRequest, expectedVersion int64) error
	ListByTenantAndStatus(ctx context.Context, tenantID string, status string, limit int, offset int) ([]entities.FinancialRequest, error)
	ListByBeneficiaryAndStatus(ctx context.Context, beneficiaryID string, status string, limit int, offset int) ([]entities.FinancialRequest, error)
}

// LedgerExporter renders a tenant's requests into a downloadable report.
type LedgerExporter interface {
	WriteLedger(ctx context.Context, tenantID string, requests []entities.FinancialRequest) ([]byte, error)
}
