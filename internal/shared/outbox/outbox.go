package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	contractsv1 "backoffice/contracts/gen/events/v1"
)

// Message is an outbox row persisted inside the same DB transaction as the
// state change it announces. Worker relay reads pending rows and publishes
// them to the message bus.
type Message struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// Source is implemented by each service repository that keeps an outbox.
type Source interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]Message, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// Publisher is the bus-side sink for relayed envelopes.
type Publisher interface {
	Publish(ctx context.Context, topic string, event contractsv1.Envelope) error
}

// Relay drains pending outbox rows from one source and publishes them.
type Relay struct {
	Name      string
	Topic     string
	Source    Source
	Publisher Publisher
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce relays at most one batch. Rows are acknowledged only after a
// successful publish so a crash re-delivers rather than drops.
func (r Relay) RunOnce(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Source.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("outbox list failed",
			"event", "outbox_list_failed",
			"module", "internal/shared/outbox",
			"layer", "worker",
			"relay", r.Name,
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	for _, row := range pending {
		var event contractsv1.Envelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			return err
		}
		if err := r.Publisher.Publish(ctx, r.Topic, event); err != nil {
			logger.Error("outbox publish failed",
				"event", "outbox_publish_failed",
				"module", "internal/shared/outbox",
				"layer", "worker",
				"relay", r.Name,
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Source.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			return err
		}
	}
	return nil
}
