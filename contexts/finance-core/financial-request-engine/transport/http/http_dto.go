package httptransport

import "time"

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type SubmitRequestRequest struct {
	Kind          string   `json:"kind"`
	BeneficiaryID string   `json:"beneficiary_id"`
	Amount        float64  `json:"amount"`
	Purpose       string   `json:"purpose,omitempty"`
	Category      string   `json:"category,omitempty"`
	Attachments   []string `json:"attachments,omitempty"`
}

type UpdateRequestRequest struct {
	Amount        *float64  `json:"amount,omitempty"`
	Purpose       *string   `json:"purpose,omitempty"`
	Category      *string   `json:"category,omitempty"`
	BeneficiaryID *string   `json:"beneficiary_id,omitempty"`
	Attachments   *[]string `json:"attachments,omitempty"`
}

type ApproveRequestRequest struct {
	ApprovedAmount *float64 `json:"approved_amount,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

type RejectRequestRequest struct {
	Reason string `json:"reason"`
}

type MarkPaidRequest struct {
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

type RecordSettlementRequest struct {
	Amount float64 `json:"amount"`
}

type FinancialRequestResponse struct {
	PublicID        string     `json:"public_id"`
	TenantID        string     `json:"tenant_id"`
	Kind            string     `json:"kind"`
	BeneficiaryID   string     `json:"beneficiary_id"`
	RequestedBy     string     `json:"requested_by"`
	ApprovedBy      string     `json:"approved_by,omitempty"`
	Amount          float64    `json:"amount"`
	ApprovedAmount  *float64   `json:"approved_amount,omitempty"`
	Purpose         string     `json:"purpose,omitempty"`
	Category        string     `json:"category,omitempty"`
	Status          string     `json:"status"`
	RequestedAt     time.Time  `json:"requested_at"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	ApprovalNotes   string     `json:"approval_notes,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	SettledAmount   float64    `json:"settled_amount"`
	Remaining       float64    `json:"remaining"`
	IsFullySettled  bool       `json:"is_fully_settled"`
	Attachments     []string   `json:"attachments,omitempty"`
}

type ListRequestsResponse struct {
	Items []FinancialRequestResponse `json:"items"`
}
