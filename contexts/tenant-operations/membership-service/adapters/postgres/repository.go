package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"backoffice/contexts/tenant-operations/membership-service/domain/entities"
	domainerrors "backoffice/contexts/tenant-operations/membership-service/domain/errors"
	"backoffice/contexts/tenant-operations/membership-service/ports"
	"backoffice/internal/shared/outbox"
)

type membershipRecord struct {
	MembershipID        string     `gorm:"column:membership_id;primaryKey"`
	TenantID            string     `gorm:"column:tenant_id;uniqueIndex:idx_memberships_pair;index:idx_memberships_tenant"`
	PrincipalID         string     `gorm:"column:principal_id;uniqueIndex:idx_memberships_pair"`
	BusinessRole        string     `gorm:"column:business_role;not null"`
	PermissionOverrides string     `gorm:"column:permission_overrides;type:jsonb"`
	EmploymentStatus    string     `gorm:"column:employment_status;not null"`
	JoinedAt            time.Time  `gorm:"column:joined_at"`
	LeftAt              *time.Time `gorm:"column:left_at"`

	InvitationToken      string     `gorm:"column:invitation_token;index"`
	InvitationSentAt     *time.Time `gorm:"column:invitation_sent_at"`
	InvitationAcceptedAt *time.Time `gorm:"column:invitation_accepted_at"`
	InvitedBy            string     `gorm:"column:invited_by"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (membershipRecord) TableName() string { return "memberships" }

type membershipOutboxRecord struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     string     `gorm:"column:payload;type:jsonb"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at;index"`
}

func (membershipOutboxRecord) TableName() string { return "membership_outbox" }

// Repository is the PostgreSQL adapter for membership state and its outbox.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&membershipRecord{}, &membershipOutboxRecord{})
}

func (r *Repository) CreateMembership(ctx context.Context, membership entities.Membership) error {
	record, err := toRecord(membership)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&membershipRecord{}).
			Where("tenant_id = ? AND principal_id = ?", membership.TenantID, membership.PrincipalID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.ErrDuplicateMembership
		}
		// The unique index backs this up under concurrent inserts.
		return tx.Create(&record).Error
	})
}

func (r *Repository) GetMembership(ctx context.Context, tenantID string, principalID string) (entities.Membership, error) {
	var record membershipRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND principal_id = ?", tenantID, principalID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Membership{}, domainerrors.ErrMembershipNotFound
		}
		return entities.Membership{}, err
	}
	return fromRecord(record)
}

func (r *Repository) GetByInvitationToken(ctx context.Context, token string) (entities.Membership, error) {
	var record membershipRecord
	err := r.db.WithContext(ctx).
		Where("invitation_token = ?", token).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Membership{}, domainerrors.ErrInvitationNotFound
		}
		return entities.Membership{}, err
	}
	return fromRecord(record)
}

func (r *Repository) UpdateMembership(ctx context.Context, membership entities.Membership) error {
	record, err := toRecord(membership)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&membershipRecord{}).
		Where("membership_id = ?", membership.MembershipID).
		Updates(map[string]any{
			"business_role":          record.BusinessRole,
			"permission_overrides":   record.PermissionOverrides,
			"employment_status":      record.EmploymentStatus,
			"left_at":                record.LeftAt,
			"invitation_accepted_at": record.InvitationAcceptedAt,
			"updated_at":             record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMembershipNotFound
	}
	return nil
}

func (r *Repository) ListMembers(ctx context.Context, tenantID string) ([]entities.Membership, error) {
	var records []membershipRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("joined_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Membership, 0, len(records))
	for _, record := range records {
		membership, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		items = append(items, membership)
	}
	return items, nil
}

func (r *Repository) ListUnacceptedInvitations(ctx context.Context, sentBefore time.Time) ([]entities.Membership, error) {
	var records []membershipRecord
	err := r.db.WithContext(ctx).
		Where("invitation_sent_at IS NOT NULL AND invitation_accepted_at IS NULL").
		Where("employment_status <> ?", entities.StatusTerminated).
		Where("invitation_sent_at < ?", sentBefore).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Membership, 0, len(records))
	for _, record := range records {
		membership, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		items = append(items, membership)
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&membershipOutboxRecord{
		OutboxID:  envelope.EventID,
		EventType: envelope.EventType,
		Payload:   string(payload),
		CreatedAt: envelope.OccurredAt,
	}).Error
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	var records []membershipOutboxRecord
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
		Model(&membershipOutboxRecord{}).
		Where("outbox_id = ?", outboxID).
		Update("published_at", publishedAt).Error
}

func toRecord(membership entities.Membership) (membershipRecord, error) {
	overrides, err := json.Marshal(membership.PermissionOverrides)
	if err != nil {
		return membershipRecord{}, err
	}
	return membershipRecord{
		MembershipID:         membership.MembershipID,
		TenantID:             membership.TenantID,
		PrincipalID:          membership.PrincipalID,
		BusinessRole:         membership.BusinessRole,
		PermissionOverrides:  string(overrides),
		EmploymentStatus:     membership.EmploymentStatus,
		JoinedAt:             membership.JoinedAt,
		LeftAt:               membership.LeftAt,
		InvitationToken:      membership.InvitationToken,
		InvitationSentAt:     membership.InvitationSentAt,
		InvitationAcceptedAt: membership.InvitationAcceptedAt,
		InvitedBy:            membership.InvitedBy,
		CreatedAt:            membership.CreatedAt,
		UpdatedAt:            membership.UpdatedAt,
	}, nil
}

func fromRecord(record membershipRecord) (entities.Membership, error) {
	membership := entities.Membership{
		MembershipID:         record.MembershipID,
		TenantID:             record.TenantID,
		PrincipalID:          record.PrincipalID,
		BusinessRole:         record.BusinessRole,
		EmploymentStatus:     record.EmploymentStatus,
		JoinedAt:             record.JoinedAt,
		LeftAt:               record.LeftAt,
		InvitationToken:      record.InvitationToken,
		InvitationSentAt:     record.InvitationSentAt,
		InvitationAcceptedAt: record.InvitationAcceptedAt,
		InvitedBy:            record.InvitedBy,
		CreatedAt:            record.CreatedAt,
		UpdatedAt:            record.UpdatedAt,
	}
	if record.PermissionOverrides != "" {
		if err := json.Unmarshal([]byte(record.PermissionOverrides), &membership.PermissionOverrides); err != nil {
			return entities.Membership{}, err
		}
	}
	return membership, nil
}
