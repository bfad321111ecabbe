package telemetry

import (
	"context"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// discardExporter accepts spans and metrics and drops them. It lets Initialize build real providers in
// tests and local runs without an OTLP collector.
type discardExporter struct{}

var (
	_ sdktrace.SpanExporter = discardExporter{}
	_ sdkmetric.Exporter    = discardExporter{}
)

func (discardExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }

func (discardExporter) Export(context.Context, *metricdata.ResourceMetrics) error { return nil }

func (discardExporter) Temporality(sdkmetric.InstrumentKind) metricdata.Temporality {
	return metricdata.CumulativeTemporality
}

func (discardExporter) Aggregation(sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.AggregationDefault{}
}

func (discardExporter) ForceFlush(context.Context) error { return nil }

func (discardExporter) Shutdown(context.Context) error { return nil }

// NewNoopTraceExporter returns a span exporter for WithTraceExporter that drops everything.
func NewNoopTraceExporter() sdktrace.SpanExporter {
	return discardExporter{}
}

// NewNoopMetricExporter returns a metric exporter for WithMetricExporter that drops everything.
func NewNoopMetricExporter() sdkmetric.Exporter {
	return discardExporter{}
}
