package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/snackbar/internal/database"
	"github.com/dejobratic/snackbar/internal/pos/ports"
	"github.com/dejobratic/snackbar/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableStore struct {
	store   ports.Store
	metrics *database.Metrics
	driver  string
}

func NewObservableStore(store ports.Store, metrics *database.Metrics, driver string) *ObservableStore {
	return &ObservableStore{
		store:   store,
		metrics: metrics,
		driver:  driver,
	}
}

func (s *ObservableStore) Load(ctx context.Context) (ports.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "Store.Load")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("store.driver", s.driver),
		attribute.String("operation", "load"),
	)

	start := time.Now()
	doc, err := s.store.Load(ctx)
	duration := time.Since(start).Seconds()

	s.metrics.RecordQuery(ctx, "load_document", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return ports.Document{}, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.Int("document.products", len(doc.Products)),
		attribute.Int("document.customers", len(doc.Customers)),
		attribute.Int("document.orders", len(doc.Orders)),
	)
	telemetry.SetSpanSuccess(span)
	return doc, nil
}

func (s *ObservableStore) Save(ctx context.Context, doc ports.Document) error {
	ctx, span := telemetry.StartSpan(ctx, "Store.Save")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("store.driver", s.driver),
		attribute.String("operation", "save"),
		attribute.Int("document.orders", len(doc.Orders)),
	)

	start := time.Now()
	err := s.store.Save(ctx, doc)
	duration := time.Since(start).Seconds()

	s.metrics.RecordQuery(ctx, "save_document", duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
