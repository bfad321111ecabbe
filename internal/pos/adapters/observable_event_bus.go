package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/snackbar/internal/kafka"
	"github.com/dejobratic/snackbar/internal/pos/ports"
	"github.com/dejobratic/snackbar/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) Publish(ctx context.Context, event ports.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.Publish")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("event.type", string(event.Type)),
		attribute.String("event.entity_id", event.EntityID),
	)

	start := time.Now()
	err := e.bus.Publish(ctx, event)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, string(event.Type), duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
