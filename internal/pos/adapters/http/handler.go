package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dejobratic/snackbar/internal/pos/app"
)

// Handler exposes HTTP endpoints for the point of sale.
type Handler struct {
	service *app.Service
	logger  *slog.Logger
	ready   func(ctx context.Context) error
	events  http.Handler
	keys    *keyLocks
}

type HandlerOption func(*Handler)

// WithReadinessCheck makes /readyz report the result of check.
func WithReadinessCheck(check func(ctx context.Context) error) HandlerOption {
	return func(h *Handler) {
		h.ready = check
	}
}

// WithEventStream serves the live change feed on /v1/events.
func WithEventStream(events http.Handler) HandlerOption {
	return func(h *Handler) {
		h.events = events
	}
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{service: service, logger: logger, keys: newKeyLocks()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) metrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("# metrics are pushed over OTLP; point a collector at OTEL_EXPORTER_OTLP_ENDPOINT\n"))
}
