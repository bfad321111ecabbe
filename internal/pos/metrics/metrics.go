package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	operationsTotal   metric.Int64Counter
	operationDuration metric.Float64Histogram
	ordersCreated     metric.Int64Counter
	statusTransitions metric.Int64Counter
	stockConsumed     metric.Int64Counter
	checkoutsTotal    metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.operationsTotal, err = meter.Int64Counter(
		"pos_operations_total",
		metric.WithDescription("Total number of point of sale operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create pos_operations_total counter: %w", err)
	}

	m.operationDuration, err = meter.Float64Histogram(
		"pos_operation_duration_seconds",
		metric.WithDescription("Duration of point of sale operations, persistence included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create pos_operation_duration histogram: %w", err)
	}

	m.ordersCreated, err = meter.Int64Counter(
		"orders_created_total",
		metric.WithDescription("Total number of orders created"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_created_total counter: %w", err)
	}

	m.statusTransitions, err = meter.Int64Counter(
		"order_status_transitions_total",
		metric.WithDescription("Total number of order status changes"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_status_transitions_total counter: %w", err)
	}

	m.stockConsumed, err = meter.Int64Counter(
		"stock_units_consumed_total",
		metric.WithDescription("Units of stock consumed by delivered orders"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create stock_units_consumed_total counter: %w", err)
	}

	m.checkoutsTotal, err = meter.Int64Counter(
		"cart_checkouts_total",
		metric.WithDescription("Total number of cart checkouts"),
		metric.WithUnit("{checkout}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cart_checkouts_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOperation(ctx context.Context, operation string, durationSeconds float64, success bool) {
	m.operationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", statusLabel(success)),
	))
	m.operationDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordOrderCreated counts a new order; source is "order" or "checkout".
func (m *Metrics) RecordOrderCreated(ctx context.Context, source string) {
	m.ordersCreated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
	))
}

func (m *Metrics) RecordStatusTransition(ctx context.Context, from, to string) {
	m.statusTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

func (m *Metrics) RecordStockConsumed(ctx context.Context, productID string, units int) {
	m.stockConsumed.Add(ctx, int64(units), metric.WithAttributes(
		attribute.String("product_id", productID),
	))
}

func (m *Metrics) RecordCheckout(ctx context.Context, success bool) {
	m.checkoutsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", statusLabel(success)),
	))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
