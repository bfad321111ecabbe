package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	idemmemory "github.com/dejobratic/snackbar/internal/idempotency/memory"
	"github.com/dejobratic/snackbar/internal/kafka"
	httpadapter "github.com/dejobratic/snackbar/internal/pos/adapters/http"
	"github.com/dejobratic/snackbar/internal/pos/adapters/memory"
	"github.com/dejobratic/snackbar/internal/pos/app"
	"github.com/dejobratic/snackbar/internal/pos/metrics"
	"github.com/dejobratic/snackbar/internal/pos/ports"
	"github.com/shopspring/decimal"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type failingSaveStore struct {
	*memory.Store
	fail bool
}

func (s *failingSaveStore) Save(ctx context.Context, doc ports.Document) error {
	if s.fail {
		return errors.New("disk unavailable")
	}
	return s.Store.Save(ctx, doc)
}

type server struct {
	t       *testing.T
	handler http.Handler
	store   *failingSaveStore
}

type options struct {
	ready func(ctx context.Context) error
}

func newServer(t *testing.T, opts ...func(*options)) *server {
	t.Helper()
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, err := metrics.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	store := &failingSaveStore{Store: memory.NewStore()}
	clock := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	carts := 0
	service := app.NewService(
		store,
		kafka.NewNoopEventBus(logger),
		idemmemory.NewStore(),
		logger,
		m,
		app.WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
		app.WithIDGenerator(func() string {
			carts++
			return "cart" + strconv.Itoa(carts)
		}),
	)

	var handlerOpts []httpadapter.HandlerOption
	if o.ready != nil {
		handlerOpts = append(handlerOpts, httpadapter.WithReadinessCheck(o.ready))
	}
	handler := httpadapter.NewHandler(service, logger, handlerOpts...)

	return &server{
		t:       t,
		handler: httpadapter.NewRouter(handler, httpadapter.RouterConfig{MetricsPath: "/metrics"}),
		store:   store,
	}
}

func (s *server) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *server) expect(rec *httptest.ResponseRecorder, status int) {
	s.t.Helper()
	if rec.Code != status {
		s.t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}

func (s *server) seed() {
	s.t.Helper()
	s.expect(s.do(http.MethodPost, "/v1/products", map[string]any{"id": "P1", "name": "Coxinha", "price": "6.50", "stock": 5}), http.StatusCreated)
	s.expect(s.do(http.MethodPost, "/v1/products", map[string]any{"id": "P2", "name": "Bolo", "price": "8.00", "stock": 3}), http.StatusCreated)
	s.expect(s.do(http.MethodPost, "/v1/customers", map[string]any{"id": "C1", "name": "Ana", "phone": "11999998888"}), http.StatusCreated)
}

type orderBody struct {
	Order struct {
		ID     string          `json:"id"`
		Status string          `json:"status"`
		Total  decimal.Decimal `json:"total"`
		Items  []struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
	} `json:"order"`
}

type ordersBody struct {
	Orders []struct {
		ID string `json:"id"`
	} `json:"orders"`
}

type productBody struct {
	Product struct {
		ID    string          `json:"id"`
		Stock int             `json:"stock"`
		Price decimal.Decimal `json:"price"`
	} `json:"product"`
}

type errorBody struct {
	Error   string         `json:"error"`
	Kind    string         `json:"kind"`
	Details map[string]any `json:"details"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("healthz always reports ok", func(t *testing.T) {
		s := newServer(t)
		s.expect(s.do(http.MethodGet, "/healthz", nil), http.StatusOK)
	})

	t.Run("readyz reflects the readiness check", func(t *testing.T) {
		s := newServer(t, func(o *options) {
			o.ready = func(context.Context) error { return errors.New("database down") }
		})
		s.expect(s.do(http.MethodGet, "/readyz", nil), http.StatusServiceUnavailable)
	})

	t.Run("readyz without a check is ready", func(t *testing.T) {
		s := newServer(t)
		s.expect(s.do(http.MethodGet, "/readyz", nil), http.StatusOK)
	})

	t.Run("metrics path responds", func(t *testing.T) {
		s := newServer(t)
		s.expect(s.do(http.MethodGet, "/metrics", nil), http.StatusOK)
	})
}

func TestOrderLifecycle(t *testing.T) {
	s := newServer(t)
	s.seed()

	rec := s.do(http.MethodPost, "/v1/orders", map[string]any{"customer_id": "C1"}, "Idempotency-Key", "order-1")
	s.expect(rec, http.StatusCreated)
	created := decode[orderBody](t, rec)
	if created.Order.ID != "PED0001" || created.Order.Status != "pending" {
		t.Fatalf("unexpected order %+v", created.Order)
	}

	s.expect(s.do(http.MethodPost, "/v1/orders/PED0001/items", map[string]any{"product_id": "P1", "quantity": 2}), http.StatusOK)
	rec = s.do(http.MethodPost, "/v1/orders/PED0001/items", map[string]any{"product_id": "P2", "quantity": 1})
	s.expect(rec, http.StatusOK)
	updated := decode[orderBody](t, rec)
	if !updated.Order.Total.Equal(decimal.RequireFromString("21")) {
		t.Errorf("expected total 21, got %s", updated.Order.Total)
	}

	s.expect(s.do(http.MethodDelete, "/v1/orders/PED0001/items/P2", nil), http.StatusOK)
	s.expect(s.do(http.MethodPut, "/v1/orders/PED0001/status", map[string]any{"status": "delivered"}), http.StatusOK)

	product := decode[productBody](t, s.do(http.MethodGet, "/v1/products/P1", nil))
	if product.Product.Stock != 3 {
		t.Errorf("expected stock 3 after delivery, got %d", product.Product.Stock)
	}

	rec = s.do(http.MethodPost, "/v1/orders/PED0001/items", map[string]any{"product_id": "P1", "quantity": 1})
	s.expect(rec, http.StatusBadRequest)

	listed := decode[struct {
		Orders []struct {
			ID string `json:"id"`
		} `json:"orders"`
	}](t, s.do(http.MethodGet, "/v1/orders?status=delivered", nil))
	if len(listed.Orders) != 1 || listed.Orders[0].ID != "PED0001" {
		t.Errorf("expected PED0001 in delivered list, got %+v", listed.Orders)
	}
	s.expect(s.do(http.MethodGet, "/v1/orders?status=lost", nil), http.StatusBadRequest)
	s.expect(s.do(http.MethodGet, "/v1/customers/C1/orders", nil), http.StatusOK)
}

func TestCreateOrderIsIdempotent(t *testing.T) {
	s := newServer(t)
	s.seed()

	first := s.do(http.MethodPost, "/v1/orders", map[string]any{"customer_id": "C1"}, "Idempotency-Key", "abc")
	s.expect(first, http.StatusCreated)
	second := s.do(http.MethodPost, "/v1/orders", map[string]any{"customer_id": "C1"}, "Idempotency-Key", "abc")
	s.expect(second, http.StatusCreated)

	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("expected replayed response header")
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("expected identical bodies, got %s and %s", first.Body.String(), second.Body.String())
	}

	third := decode[orderBody](t, s.do(http.MethodPost, "/v1/orders", map[string]any{"customer_id": "C1"}))
	if third.Order.ID != "PED0002" {
		t.Errorf("expected a new order without a key, got %s", third.Order.ID)
	}
}

func TestCreateOrderConcurrentSameKey(t *testing.T) {
	s := newServer(t)
	s.seed()

	const requests = 8
	bodies := make([]string, requests)
	codes := make([]int, requests)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/v1/orders", strings.NewReader(`{"customer_id":"C1"}`))
			req.Header.Set("Idempotency-Key", "terminal-1")
			rec := httptest.NewRecorder()
			<-start
			s.handler.ServeHTTP(rec, req)
			codes[i] = rec.Code
			bodies[i] = rec.Body.String()
		}()
	}
	close(start)
	wg.Wait()

	for i := range requests {
		if codes[i] != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d: %s", i, codes[i], bodies[i])
		}
		if bodies[i] != bodies[0] {
			t.Errorf("request %d: expected the same order as the first response, got %s", i, bodies[i])
		}
	}

	listed := decode[ordersBody](t, s.do(http.MethodGet, "/v1/orders", nil))
	if len(listed.Orders) != 1 {
		t.Errorf("expected exactly one order, got %d", len(listed.Orders))
	}
}

func TestErrorMapping(t *testing.T) {
	s := newServer(t)
	s.seed()
	s.expect(s.do(http.MethodPost, "/v1/orders", map[string]any{"customer_id": "C1"}), http.StatusCreated)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		kind   string
	}{
		{"unknown product", http.MethodGet, "/v1/products/NOPE", nil, http.StatusNotFound, "not_found"},
		{"duplicate product", http.MethodPost, "/v1/products", map[string]any{"id": "P1", "name": "Other", "price": "1.00", "stock": 1}, http.StatusConflict, "duplicate"},
		{"invalid price", http.MethodPost, "/v1/products", map[string]any{"id": "P9", "name": "Other", "price": "abc", "stock": 1}, http.StatusBadRequest, "invalid_input"},
		{"price finer than a cent", http.MethodPost, "/v1/products", map[string]any{"id": "P9", "name": "Other", "price": "0.001", "stock": 1}, http.StatusBadRequest, "invalid_input"},
		{"invalid phone", http.MethodPost, "/v1/customers", map[string]any{"id": "C2", "name": "Bia", "phone": "12"}, http.StatusBadRequest, "invalid_input"},
		{"unknown customer", http.MethodPost, "/v1/orders", map[string]any{"customer_id": "C9"}, http.StatusNotFound, "not_found"},
		{"insufficient stock", http.MethodPost, "/v1/orders/PED0001/items", map[string]any{"product_id": "P2", "quantity": 4}, http.StatusConflict, "insufficient_stock"},
		{"unknown status", http.MethodPut, "/v1/orders/PED0001/status", map[string]any{"status": "lost"}, http.StatusBadRequest, "invalid_input"},
		{"unknown order", http.MethodGet, "/v1/orders/PED0042", nil, http.StatusNotFound, "not_found"},
		{"unknown cart", http.MethodGet, "/v1/carts/nope", nil, http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.body)
			s.expect(rec, tt.status)
			body := decode[errorBody](t, rec)
			if body.Kind != tt.kind {
				t.Errorf("expected kind %q, got %q", tt.kind, body.Kind)
			}
		})
	}

	t.Run("stock errors carry details", func(t *testing.T) {
		body := decode[errorBody](t, s.do(http.MethodPost, "/v1/orders/PED0001/items", map[string]any{"product_id": "P2", "quantity": 4}))
		if body.Details["product_id"] != "P2" || body.Details["available"] != float64(3) {
			t.Errorf("unexpected details %+v", body.Details)
		}
	})

	t.Run("unavailable product", func(t *testing.T) {
		s.expect(s.do(http.MethodPut, "/v1/products/P2/availability", map[string]any{"available": false}), http.StatusOK)
		rec := s.do(http.MethodPost, "/v1/orders/PED0001/items", map[string]any{"product_id": "P2", "quantity": 1})
		s.expect(rec, http.StatusConflict)
		if body := decode[errorBody](t, rec); body.Kind != "product_unavailable" {
			t.Errorf("expected product_unavailable, got %q", body.Kind)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/products", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		s.expect(rec, http.StatusBadRequest)
	})
}

func TestCartCheckout(t *testing.T) {
	s := newServer(t)
	s.seed()

	rec := s.do(http.MethodPost, "/v1/carts", nil)
	s.expect(rec, http.StatusCreated)
	cart := decode[struct {
		Cart struct {
			ID string `json:"id"`
		} `json:"cart"`
	}](t, rec)
	if cart.Cart.ID != "cart1" {
		t.Fatalf("expected cart1, got %q", cart.Cart.ID)
	}

	s.expect(s.do(http.MethodPost, "/v1/carts/cart1/items", map[string]any{"product_id": "P1", "quantity": 2}), http.StatusOK)
	s.expect(s.do(http.MethodPost, "/v1/carts/cart1/items", map[string]any{"product_id": "P2", "quantity": 1}), http.StatusOK)
	s.expect(s.do(http.MethodDelete, "/v1/carts/cart1/items/P2", nil), http.StatusOK)

	rec = s.do(http.MethodPost, "/v1/carts/cart1/items", map[string]any{"product_id": "P1", "quantity": 4})
	s.expect(rec, http.StatusConflict)

	s.expect(s.do(http.MethodPost, "/v1/carts/cart1/checkout", map[string]any{}), http.StatusBadRequest)

	rec = s.do(http.MethodPost, "/v1/carts/cart1/checkout", map[string]any{"customer_id": "C1"}, "Idempotency-Key", "till-1")
	s.expect(rec, http.StatusCreated)
	order := decode[orderBody](t, rec)
	if order.Order.ID != "PED0001" || len(order.Order.Items) != 1 || order.Order.Items[0].Quantity != 2 {
		t.Errorf("unexpected checkout order %+v", order.Order)
	}

	replayed := s.do(http.MethodPost, "/v1/carts/cart1/checkout", map[string]any{"customer_id": "C1"}, "Idempotency-Key", "till-1")
	s.expect(replayed, http.StatusCreated)
	if replayed.Body.String() != rec.Body.String() {
		t.Error("expected checkout retry to replay the first response")
	}

	s.expect(s.do(http.MethodGet, "/v1/carts/cart1", nil), http.StatusNotFound)

	product := decode[productBody](t, s.do(http.MethodGet, "/v1/products/P1", nil))
	if product.Product.Stock != 5 {
		t.Errorf("expected checkout to leave stock untouched, got %d", product.Product.Stock)
	}
}

func TestCartClearAndDiscard(t *testing.T) {
	s := newServer(t)
	s.seed()
	s.expect(s.do(http.MethodPost, "/v1/carts", nil), http.StatusCreated)
	s.expect(s.do(http.MethodPost, "/v1/carts/cart1/items", map[string]any{"product_id": "P1", "quantity": 1}), http.StatusOK)

	rec := s.do(http.MethodDelete, "/v1/carts/cart1/items", nil)
	s.expect(rec, http.StatusOK)
	cleared := decode[struct {
		Cart struct {
			Items []any `json:"items"`
		} `json:"cart"`
	}](t, rec)
	if len(cleared.Cart.Items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(cleared.Cart.Items))
	}

	s.expect(s.do(http.MethodPost, "/v1/carts/cart1/checkout", map[string]any{"customer_id": "C1"}), http.StatusBadRequest)
	s.expect(s.do(http.MethodDelete, "/v1/carts/cart1", nil), http.StatusNoContent)
	s.expect(s.do(http.MethodDelete, "/v1/carts/cart1", nil), http.StatusNotFound)
}

func TestReports(t *testing.T) {
	s := newServer(t)
	s.seed()

	s.expect(s.do(http.MethodPost, "/v1/orders", map[string]any{"customer_id": "C1"}), http.StatusCreated)
	s.expect(s.do(http.MethodPost, "/v1/orders/PED0001/items", map[string]any{"product_id": "P2", "quantity": 2}), http.StatusOK)
	s.expect(s.do(http.MethodPut, "/v1/orders/PED0001/status", map[string]any{"status": "delivered"}), http.StatusOK)

	rec := s.do(http.MethodGet, "/v1/reports/sales?start=2024-05-10&end=2024-05-10", nil)
	s.expect(rec, http.StatusOK)
	sales := decode[struct {
		Report struct {
			Total decimal.Decimal `json:"total"`
		} `json:"report"`
	}](t, rec)
	if !sales.Report.Total.Equal(decimal.RequireFromString("16")) {
		t.Errorf("expected sales 16, got %s", sales.Report.Total)
	}

	rec = s.do(http.MethodGet, "/v1/reports/sales?start=2024-05-11", nil)
	s.expect(rec, http.StatusOK)
	later := decode[struct {
		Report struct {
			Total decimal.Decimal `json:"total"`
		} `json:"report"`
	}](t, rec)
	if !later.Report.Total.IsZero() {
		t.Errorf("expected no sales after the order date, got %s", later.Report.Total)
	}

	s.expect(s.do(http.MethodGet, "/v1/reports/sales?start=10/05/2024", nil), http.StatusBadRequest)
	s.expect(s.do(http.MethodGet, "/v1/reports/sales?start=2024-05-11&end=2024-05-10", nil), http.StatusBadRequest)

	rec = s.do(http.MethodGet, "/v1/reports/top-products", nil)
	s.expect(rec, http.StatusOK)
	top := decode[struct {
		Products []struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		} `json:"products"`
	}](t, rec)
	if len(top.Products) != 1 || top.Products[0].Name != "Bolo" || top.Products[0].Quantity != 2 {
		t.Errorf("unexpected top products %+v", top.Products)
	}

	s.expect(s.do(http.MethodGet, "/v1/reports/top-products?n=abc", nil), http.StatusBadRequest)
	s.expect(s.do(http.MethodGet, "/v1/reports/top-products?n=-1", nil), http.StatusBadRequest)
}

func TestPersistenceFailureMapsToServiceUnavailable(t *testing.T) {
	s := newServer(t)
	s.seed()
	s.store.fail = true

	rec := s.do(http.MethodPost, "/v1/products/P1/stock", map[string]any{"delta": 5})
	s.expect(rec, http.StatusServiceUnavailable)
	if body := decode[errorBody](t, rec); body.Kind != "persistence" {
		t.Errorf("expected persistence kind, got %q", body.Kind)
	}
}

func TestProductEndpoints(t *testing.T) {
	s := newServer(t)
	s.seed()

	rec := s.do(http.MethodPatch, "/v1/products/P1", map[string]any{"price": "7.00"})
	s.expect(rec, http.StatusOK)
	if p := decode[productBody](t, rec); !p.Product.Price.Equal(decimal.RequireFromString("7")) {
		t.Errorf("expected price 7, got %s", p.Product.Price)
	}

	rec = s.do(http.MethodPost, "/v1/products/P1/stock", map[string]any{"delta": -2})
	s.expect(rec, http.StatusOK)
	if p := decode[productBody](t, rec); p.Product.Stock != 3 {
		t.Errorf("expected stock 3, got %d", p.Product.Stock)
	}

	s.expect(s.do(http.MethodPost, "/v1/products/P1/stock", map[string]any{"delta": -10}), http.StatusConflict)
	s.expect(s.do(http.MethodPost, "/v1/products/P1/stock", map[string]any{"delta": 0}), http.StatusBadRequest)
	s.expect(s.do(http.MethodDelete, "/v1/products/P2", nil), http.StatusNoContent)
	s.expect(s.do(http.MethodGet, "/v1/products/P2", nil), http.StatusNotFound)

	listed := decode[struct {
		Products []struct {
			ID string `json:"id"`
		} `json:"products"`
	}](t, s.do(http.MethodGet, "/v1/products", nil))
	if len(listed.Products) != 1 || listed.Products[0].ID != "P1" {
		t.Errorf("expected only P1 to be listed, got %+v", listed.Products)
	}

	rec = s.do(http.MethodPatch, "/v1/customers/C1", map[string]any{"address": "Rua B, 20"})
	s.expect(rec, http.StatusOK)
	s.expect(s.do(http.MethodGet, "/v1/customers", nil), http.StatusOK)
}
