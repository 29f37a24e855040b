package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	contractsv1 "backoffice/contracts/gen/events/v1"

	"github.com/go-resty/resty/v2"
)

// WebhookDispatcher forwards bus envelopes to an external HTTP sink, one
// POST per event. Delivery is at-least-once; the sink deduplicates on
// event_id.
type WebhookDispatcher struct {
	client  *resty.Client
	sinkURL string
	logger  *slog.Logger
}

func NewWebhookDispatcher(sinkURL string, logger *slog.Logger) *WebhookDispatcher {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond)
	return &WebhookDispatcher{
		client:  client,
		sinkURL: sinkURL,
		logger:  logger,
	}
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, event contractsv1.Envelope) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Event-Id", event.EventID).
		SetHeader("X-Event-Type", event.EventType).
		SetBody(event).
		Post(d.sinkURL)
	if err != nil {
		return fmt.Errorf("dispatch webhook %s: %w", event.EventType, err)
	}
	if resp.IsError() {
		return fmt.Errorf("dispatch webhook %s: sink returned %d", event.EventType, resp.StatusCode())
	}

	if d.logger != nil {
		d.logger.Info("webhook delivered",
			"event", "webhook_delivered",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"status", resp.StatusCode(),
		)
	}
	return nil
}
