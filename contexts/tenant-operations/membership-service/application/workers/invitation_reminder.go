package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "backoffice/contexts/tenant-operations/membership-service/application"
	"backoffice/contexts/tenant-operations/membership-service/ports"
)

// InvitationReminder emits reminder events for invitations that were issued
// but never accepted. It runs on the worker schedule, not the request path.
type InvitationReminder struct {
	Repo        ports.Repository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	RemindAfter time.Duration
	Logger      *slog.Logger
}

func (w InvitationReminder) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)
	remindAfter := w.RemindAfter
	if remindAfter <= 0 {
		remindAfter = 72 * time.Hour
	}

	now := time.Now().UTC()
	if w.Clock != nil {
		now = w.Clock.Now().UTC()
	}
	stale, err := w.Repo.ListUnacceptedInvitations(ctx, now.Add(-remindAfter))
	if err != nil {
		logger.Error("invitation sweep failed",
			"event", "membership_invitation_sweep_failed",
			"module", "tenant-operations/membership-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	for _, membership := range stale {
		eventID, err := w.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		data, err := json.Marshal(map[string]any{
			"tenant_id":    membership.TenantID,
			"principal_id": membership.PrincipalID,
			"token":        membership.InvitationToken,
			"sent_at":      membership.InvitationSentAt,
		})
		if err != nil {
			return err
		}
		if err := w.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
			EventID:          eventID,
			EventType:        "membership.invitation_reminder",
			OccurredAt:       now,
			SourceService:    "membership-service",
			TraceID:          eventID,
			SchemaVersion:    1,
			PartitionKeyPath: "tenant_id",
			PartitionKey:     membership.TenantID,
			Data:             data,
		}); err != nil {
			return err
		}
	}

	if len(stale) > 0 {
		logger.Info("invitation reminders queued",
			"event", "membership_invitation_reminders_queued",
			"module", "tenant-operations/membership-service",
			"layer", "worker",
			"count", len(stale),
		)
	}
	return nil
}
