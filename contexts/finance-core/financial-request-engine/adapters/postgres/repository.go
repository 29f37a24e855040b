package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"backoffice/contexts/finance-core/financial-request-engine/domain/entities"
	domainerrors "backoffice/contexts/finance-core/financial-request-engine/domain/errors"
	"backoffice/contexts/finance-core/financial-request-engine/ports"
	"backoffice/internal/shared/outbox"
)

type requestRecord struct {
	RequestID      string   `gorm:"column:request_id;primaryKey"`
	PublicID       string   `gorm:"column:public_id;uniqueIndex"`
	TenantID       string   `gorm:"column:tenant_id;index:idx_requests_tenant_status"`
	Kind           string   `gorm:"column:kind"`
	BeneficiaryID  string   `gorm:"column:beneficiary_id;index:idx_requests_beneficiary_status"`
	RequestedBy    string   `gorm:"column:requested_by"`
	ApprovedBy     string   `gorm:"column:approved_by"`
	Amount         float64  `gorm:"column:amount"`
	ApprovedAmount *float64 `gorm:"column:approved_amount"`
	Purpose        string   `gorm:"column:purpose"`
	Category       string   `gorm:"column:category"`

	Status          string     `gorm:"column:status;index:idx_requests_tenant_status;index:idx_requests_beneficiary_status"`
	RequestedAt     time.Time  `gorm:"column:requested_at"`
	ApprovedAt      *time.Time `gorm:"column:approved_at"`
	PaidAt          *time.Time `gorm:"column:paid_at"`
	ApprovalNotes   string     `gorm:"column:approval_notes"`
	RejectionReason string     `gorm:"column:rejection_reason"`

	SettledAmount  float64 `gorm:"column:settled_amount"`
	Remaining      float64 `gorm:"column:remaining"`
	IsFullySettled bool    `gorm:"column:is_fully_settled"`

	Attachments string `gorm:"column:attachments;type:jsonb"`
	IsDeleted   bool   `gorm:"column:is_deleted"`
	Version     int64  `gorm:"column:version"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (requestRecord) TableName() string { return "financial_requests" }

type financeOutboxRecord struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     string     `gorm:"column:payload;type:jsonb"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at;index"`
}

func (financeOutboxRecord) TableName() string { return "finance_outbox" }

// Repository is the PostgreSQL adapter for financial requests and their
// outbox. Transitions rely on the version column: an update only lands when
// the row still carries the version the caller read.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&requestRecord{}, &financeOutboxRecord{})
}

func (r *Repository) CreateRequest(ctx context.Context, request entities.FinancialRequest) error {
	record, err := toRecord(request)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *Repository) GetRequest(ctx context.Context, tenantID string, requestID string) (entities.FinancialRequest, error) {
	var record requestRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND request_id = ?", tenantID, requestID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.FinancialRequest{}, domainerrors.ErrRequestNotFound
		}
		return entities.FinancialRequest{}, err
	}
	return fromRecord(record)
}

func (r *Repository) GetRequestByPublicID(ctx context.Context, publicID string) (entities.FinancialRequest, error) {
	var record requestRecord
	err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.FinancialRequest{}, domainerrors.ErrRequestNotFound
		}
		return entities.FinancialRequest{}, err
	}
	return fromRecord(record)
}

func (r *Repository) UpdateRequest(ctx context.Context, request entities.FinancialRequest, expectedVersion int64) error {
	record, err := toRecord(request)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&requestRecord{}).
		Where("request_id = ? AND version = ?", request.RequestID, expectedVersion).
		Updates(map[string]any{
			"beneficiary_id":   record.BeneficiaryID,
			"amount":           record.Amount,
			"approved_amount":  record.ApprovedAmount,
			"purpose":          record.Purpose,
			"category":         record.Category,
			"status":           record.Status,
			"approved_by":      record.ApprovedBy,
			"approved_at":      record.ApprovedAt,
			"paid_at":          record.PaidAt,
			"approval_notes":   record.ApprovalNotes,
			"rejection_reason": record.RejectionReason,
			"settled_amount":   record.SettledAmount,
			"remaining":        record.Remaining,
			"is_fully_settled": record.IsFullySettled,
			"attachments":      record.Attachments,
			"is_deleted":       record.IsDeleted,
			"version":          record.Version,
			"updated_at":       record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the row vanished or another writer bumped the version first.
		var current requestRecord
		err := r.db.WithContext(ctx).
			Where("request_id = ?", request.RequestID).
			First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrRequestNotFound
			}
			return err
		}
		return fmt.Errorf("%w (concurrent update, current status %s)", domainerrors.ErrInvalidTransition, current.Status)
	}
	return nil
}

func (r *Repository) ListByTenantAndStatus(ctx context.Context, tenantID string, status string, limit int, offset int) ([]entities.FinancialRequest, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_deleted = ?", tenantID, false)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return listRequests(query, limit, offset)
}

func (r *Repository) ListByBeneficiaryAndStatus(ctx context.Context, beneficiaryID string, status string, limit int, offset int) ([]entities.FinancialRequest, error) {
	query := r.db.WithContext(ctx).
		Where("beneficiary_id = ? AND is_deleted = ?", beneficiaryID, false)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return listRequests(query, limit, offset)
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&financeOutboxRecord{
		OutboxID:  envelope.EventID,
		EventType: envelope.EventType,
		Payload:   string(payload),
		CreatedAt: envelope.OccurredAt,
	}).Error
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	var records []financeOutboxRecord
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	items := make([]outbox.Message, 0, len(records))
	for _, record := range records {
		items = append(items, outbox.Message{
			OutboxID:  record.OutboxID,
			EventType: record.EventType,
			Payload:   []byte(record.Payload),
			CreatedAt: record.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&financeOutboxRecord{}).
		Where("outbox_id = ?", outboxID).
		Update("published_at", publishedAt).Error
}

func listRequests(query *gorm.DB, limit int, offset int) ([]entities.FinancialRequest, error) {
	var records []requestRecord
	err := query.Order("requested_at ASC").Limit(limit).Offset(offset).Find(&records).Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.FinancialRequest, 0, len(records))
	for _, record := range records {
		request, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		items = append(items, request)
	}
	return items, nil
}

func toRecord(request entities.FinancialRequest) (requestRecord, error) {
	attachments, err := json.Marshal(request.Attachments)
	if err != nil {
		return requestRecord{}, err
	}
	return requestRecord{
		RequestID:       request.RequestID,
		PublicID:        request.PublicID,
		TenantID:        request.TenantID,
		Kind:            request.Kind,
		BeneficiaryID:   request.BeneficiaryID,
		RequestedBy:     request.RequestedBy,
		ApprovedBy:      request.ApprovedBy,
		Amount:          request.Amount,
		ApprovedAmount:  request.ApprovedAmount,
		Purpose:         request.Purpose,
		Category:        request.Category,
		Status:          request.Status,
		RequestedAt:     request.RequestedAt,
		ApprovedAt:      request.ApprovedAt,
		PaidAt:          request.PaidAt,
		ApprovalNotes:   request.ApprovalNotes,
		RejectionReason: request.RejectionReason,
		SettledAmount:   request.SettledAmount,
		Remaining:       request.Remaining,
		IsFullySettled:  request.IsFullySettled,
		Attachments:     string(attachments),
		IsDeleted:       request.IsDeleted,
		Version:         request.Version,
		CreatedAt:       request.CreatedAt,
		UpdatedAt:       request.UpdatedAt,
	}, nil
}

func fromRecord(record requestRecord) (entities.FinancialRequest, error) {
	request := entities.FinancialRequest{
		RequestID:       record.RequestID,
		PublicID:        record.PublicID,
		TenantID:        record.TenantID,
		Kind:            record.Kind,
		BeneficiaryID:   record.BeneficiaryID,
		RequestedBy:     record.RequestedBy,
		ApprovedBy:      record.ApprovedBy,
		Amount:          record.Amount,
		ApprovedAmount:  record.ApprovedAmount,
		Purpose:         record.Purpose,
		Category:        record.Category,
		Status:          record.Status,
		RequestedAt:     record.RequestedAt,
		ApprovedAt:      record.ApprovedAt,
		PaidAt:          record.PaidAt,
		ApprovalNotes:   record.ApprovalNotes,
		RejectionReason: record.RejectionReason,
		SettledAmount:   record.SettledAmount,
		Remaining:       record.Remaining,
		IsFullySettled:  record.IsFullySettled,
		IsDeleted:       record.IsDeleted,
		Version:         record.Version,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
	if record.Attachments != "" {
		if err := json.Unmarshal([]byte(record.Attachments), &request.Attachments); err != nil {
			return entities.FinancialRequest{}, err
		}
	}
	return request, nil
}
