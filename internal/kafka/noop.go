package kafka

import (
	"context"
	"log/slog"

	"github.com/dejobratic/snackbar/internal/pos/ports"
)

// NoopEventBus logs events without sending them to Kafka. Useful for local dev before wiring Kafka.
type NoopEventBus struct {
	logger *slog.Logger
}

// NewNoopEventBus returns a new no-op event publisher.
func NewNoopEventBus(logger *slog.Logger) *NoopEventBus {
	return &NoopEventBus{logger: logger}
}

func (n *NoopEventBus) Publish(ctx context.Context, event ports.Event) error {
	n.logger.DebugContext(ctx, "event::"+string(event.Type), "entity_id", event.EntityID)
	return nil
}
