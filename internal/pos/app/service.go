package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dejobratic/snackbar/internal/pos/domain"
	"github.com/dejobratic/snackbar/internal/pos/metrics"
	"github.com/dejobratic/snackbar/internal/pos/ports"
	"github.com/dejobratic/snackbar/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Service bundles the point of sale use cases. A single mutex serialises every operation because the
// domain model is not safe for concurrent use while the HTTP server is.
type Service struct {
	mu        sync.Mutex
	catalog   *domain.Catalog
	customers *domain.Directory
	book      *domain.OrderBook
	carts     map[string]*domain.Cart

	store     ports.Store
	events    ports.EventBus
	idemStore ports.IdempotencyStore
	logger    *slog.Logger
	metrics   *metrics.Metrics

	now      func() time.Time
	newID    func() string
	location *time.Location
}

type Option func(*Service)

// WithClock replaces the clock used for order timestamps and events.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator replaces the cart session id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// WithLocation sets the time zone report dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.location = loc
	}
}

// NewService wires required dependencies. The service starts empty; call Load to restore persisted state.
func NewService(
	store ports.Store,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	opts ...Option,
) *Service {
	s := &Service{
		store:     store,
		events:    events,
		idemStore: idem,
		logger:    logger,
		metrics:   metrics,
		carts:     make(map[string]*domain.Cart),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		location:  time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

func (s *Service) reset() {
	s.catalog = domain.NewCatalog()
	s.customers = domain.NewDirectory()
	s.book = domain.NewOrderBook(s.catalog, s.customers, domain.WithClock(s.now))
}

// Load replaces the in-memory state with the persisted document. A missing document leaves the service
// empty. Any other failure also leaves it empty and is returned as a persistence error; the service
// stays usable.
func (s *Service) Load(ctx context.Context) error {
	return s.observe(ctx, "load", nil, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.reset()
		s.carts = make(map[string]*domain.Cart)

		doc, err := s.store.Load(ctx)
		if errors.Is(err, ports.ErrNoDocument) {
			s.logger.InfoContext(ctx, "no persisted state found, starting empty")
			return nil
		}
		if err != nil {
			return &PersistenceError{Op: "load state", Err: err}
		}

		state, err := restore(ctx, s.logger, doc, s.now)
		if err != nil {
			return &PersistenceError{Op: "load state", Err: err}
		}
		s.catalog, s.customers, s.book = state.catalog, state.customers, state.book

		s.logger.InfoContext(ctx, "state loaded",
			"products", len(doc.Products),
			"customers", len(doc.Customers),
			"orders", len(doc.Orders),
			"order_sequence", s.book.Sequence(),
		)
		return nil
	})
}

// commit saves the whole document and then publishes events. Callers hold s.mu.
func (s *Service) commit(ctx context.Context, events ...ports.Event) error {
	if err := s.store.Save(ctx, snapshot(s.catalog, s.customers, s.book)); err != nil {
		return &PersistenceError{Op: "save state", Err: err}
	}
	telemetry.AddSpanEvent(trace.SpanFromContext(ctx), "state.saved", attribute.Int("events", len(events)))

	for _, event := range events {
		if event.OccurredAt.IsZero() {
			event.OccurredAt = s.now()
		}
		if err := s.events.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish event",
				"error", err,
				"event_type", event.Type,
				"entity_id", event.EntityID,
			)
		}
	}
	return nil
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
