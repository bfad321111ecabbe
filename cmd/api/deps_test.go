package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dejobratic/snackbar/internal/config"
	"github.com/dejobratic/snackbar/internal/pos/ports"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestBuildDependenciesWithoutExternalServices(t *testing.T) {
	tests := []struct {
		name      string
		driver    string
		websocket bool
	}{
		{name: "json file store with websocket", driver: config.StoreDriverJSON, websocket: true},
		{name: "memory store without websocket", driver: config.StoreDriverMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Store:       config.StoreConfig{Driver: tt.driver, Path: filepath.Join(t.TempDir(), "state.json")},
				Idempotency: config.IdempotencyConfig{Driver: config.IdempotencyDriverMemory},
				Events:      config.EventsConfig{WebSocket: tt.websocket},
			}
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))

			deps, err := buildDependencies(context.Background(), cfg, noop.NewMeterProvider().Meter("test"), logger)
			if err != nil {
				t.Fatalf("buildDependencies() failed: %v", err)
			}
			t.Cleanup(func() { _ = deps.Close() })

			if deps.pool != nil || deps.redis != nil || deps.publisher != nil {
				t.Error("expected no external clients")
			}
			if (deps.hub != nil) != tt.websocket {
				t.Errorf("hub presence = %v, want %v", deps.hub != nil, tt.websocket)
			}
			if err := deps.Ready(context.Background()); err != nil {
				t.Errorf("expected ready, got %v", err)
			}

			if err := deps.events.Publish(context.Background(), ports.Event{Type: ports.EventProductChanged, EntityID: "P1"}); err != nil {
				t.Errorf("publish failed: %v", err)
			}
			if _, err := deps.store.Load(context.Background()); err == nil {
				t.Error("expected no persisted document yet")
			}
		})
	}
}
