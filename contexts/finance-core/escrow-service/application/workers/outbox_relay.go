package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	application "covenant/contexts/finance-core/escrow-service/application"
	"covenant/contexts/finance-core/escrow-service/ports"
)

// EscrowEventsTopic carries every escrow transition, keyed by escrow id.
const EscrowEventsTopic = "escrow.events"

const defaultRelayBatch = 100

// OutboxRelay publishes pending escrow outbox rows to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Topic     string
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce relays one batch and returns how many rows were published. It stops
// at the first failure so rows stay in commit order for the next cycle.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.LayerLogger(r.Logger, "worker")

	pending, err := r.Outbox.ListPendingOutbox(ctx, r.batchSize())
	if err != nil {
		logger.Error("escrow outbox list failed",
			"event", "escrow_outbox_list_failed",
			"error", err.Error(),
		)
		return 0, err
	}

	topic := r.topic()
	publishedAt := r.now()
	for i, row := range pending {
		if err := r.relayRow(ctx, topic, row, publishedAt); err != nil {
			logger.Error("escrow outbox relay stopped",
				"event", "escrow_outbox_relay_failed",
				"outbox_id", row.OutboxID,
				"topic", topic,
				"published_count", i,
				"error", err.Error(),
			)
			return i, err
		}
	}

	if len(pending) > 0 {
		logger.Info("escrow outbox relay cycle completed",
			"event", "escrow_outbox_relay_completed",
			"published_count", len(pending),
		)
	}
	return len(pending), nil
}

func (r OutboxRelay) relayRow(ctx context.Context, topic string, row ports.OutboxMessage, publishedAt time.Time) error {
	var event ports.EventEnvelope
	if err := json.Unmarshal(row.Payload, &event); err != nil {
		return fmt.Errorf("decode outbox payload: %w", err)
	}
	if err := event.Validate(); err != nil {
		return err
	}
	if err := r.Publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s %s: %w", event.EventType, event.EventID, err)
	}
	if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, publishedAt); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

func (r OutboxRelay) batchSize() int {
	if r.BatchSize <= 0 {
		return defaultRelayBatch
	}
	return r.BatchSize
}

func (r OutboxRelay) topic() string {
	if r.Topic == "" {
		return EscrowEventsTopic
	}
	return r.Topic
}

func (r OutboxRelay) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}
