package entities

import "time"

// Request kinds. Advances and claims share one lifecycle; claims carry
// expense metadata and may be approved for a different amount.
const (
	KindAdvance = "advance"
	KindClaim   = "claim"
)

func IsValidKind(kind string) bool {
	return kind == KindAdvance || kind == KindClaim
}

// Lifecycle statuses.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// FinancialRequest is the shared advance/claim entity with approval and
// settlement bookkeeping. PublicID is the opaque identifier handed to
// clients; the internal RequestID never leaves the system. Version backs
// the optimistic concurrency check on every transition.
type FinancialRequest struct {
	RequestID      string   `json:"request_id"`
	PublicID       string   `json:"public_id"`
	TenantID       string   `json:"tenant_id"`
	Kind           string   `json:"kind"`
	BeneficiaryID  string   `json:"beneficiary_id"`
	RequestedBy    string   `json:"requested_by"`
	ApprovedBy     string   `json:"approved_by,omitempty"`
	Amount         float64  `json:"amount"`
	ApprovedAmount *float64 `json:"approved_amount,omitempty"`
	Purpose        string   `json:"purpose"`
	Category       string   `json:"category,omitempty"`

	Status          string     `json:"status"`
	RequestedAt     time.Time  `json:"requested_at"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	ApprovalNotes   string     `json:"approval_notes,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	SettledAmount  float64 `json:"settled_amount"`
	Remaining      float64 `json:"remaining"`
	IsFullySettled bool    `json:"is_fully_settled"`

	Attachments []string `json:"attachments,omitempty"`
	IsDeleted   bool     `json:"is_deleted"`
	Version     int64    `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AmountBasis is the figure settlements count against: the approved amount
// when the approver granted one, else the requested amount.
func (r FinancialRequest) AmountBasis() float64 {
	if r.ApprovedAmount != nil {
		return *r.ApprovedAmount
	}
	return r.Amount
}

// IsPending reports whether the request is still editable.
func (r FinancialRequest) IsPending() bool {
	return r.Status == StatusPending
}
