package app

import (
	"context"
	"time"

	"github.com/dejobratic/snackbar/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// observe runs fn inside a span, records the operation metric and logs failures. Domain rejections are
// logged at info level; anything else is an error.
func (s *Service) observe(ctx context.Context, operation string, attrs []attribute.KeyValue, fn func(ctx context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, "Service."+operation)
	defer span.End()

	telemetry.AddSpanAttributes(span, attrs...)

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	s.metrics.RecordOperation(ctx, operation, duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		kind, _ := KindOf(err)
		telemetry.AddSpanAttributes(span, attribute.String("error.kind", string(kind)))

		logArgs := append(attrArgs(attrs), "operation", operation, "error", err, "error_kind", kind)
		if kind == KindPersistence || kind == "" {
			s.logger.ErrorContext(ctx, "operation failed", logArgs...)
		} else {
			s.logger.InfoContext(ctx, "operation rejected", logArgs...)
		}
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func attrArgs(attrs []attribute.KeyValue) []any {
	args := make([]any, 0, len(attrs)*2)
	for _, kv := range attrs {
		args = append(args, string(kv.Key), kv.Value.Emit())
	}
	return args
}
