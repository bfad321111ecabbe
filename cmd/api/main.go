package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dejobratic/snackbar/internal/config"
	httpadapter "github.com/dejobratic/snackbar/internal/pos/adapters/http"
	"github.com/dejobratic/snackbar/internal/pos/app"
	posmetrics "github.com/dejobratic/snackbar/internal/pos/metrics"
	"github.com/dejobratic/snackbar/internal/telemetry"
)

const meterName = "github.com/dejobratic/snackbar"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(telemetry.ParseLevel(cfg.Telemetry.LogLevel)).With(
		"service", cfg.Service.Name,
		"version", cfg.Service.Version,
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tel.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("telemetry shutdown failed", "error", shutdownErr)
		}
	}()
	meter := tel.Meter(meterName)

	location, err := time.LoadLocation(cfg.Reports.TimeZone)
	if err != nil {
		return fmt.Errorf("load reports time zone: %w", err)
	}

	deps, err := buildDependencies(ctx, cfg, meter, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := deps.Close(); closeErr != nil {
			logger.Warn("failed to release dependencies", "error", closeErr)
		}
	}()

	serviceMetrics, err := posmetrics.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create service metrics: %w", err)
	}

	service := app.NewService(deps.store, deps.events, deps.idempotency, logger, serviceMetrics,
		app.WithLocation(location),
	)
	if err := service.Load(ctx); err != nil {
		// The service keeps running empty; the next successful save overwrites the unreadable state.
		logger.Error("failed to load persisted state, starting empty", "error", err)
	}

	handlerOpts := []httpadapter.HandlerOption{httpadapter.WithReadinessCheck(deps.Ready)}

	hubDone := make(chan struct{})
	if deps.hub != nil {
		go func() {
			defer close(hubDone)
			deps.hub.Run(ctx)
		}()
		handlerOpts = append(handlerOpts, httpadapter.WithEventStream(deps.hub))
	} else {
		close(hubDone)
	}

	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create http metrics: %w", err)
	}

	handler := httpadapter.NewHandler(service, logger, handlerOpts...)
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: httpadapter.NewRouter(handler, httpadapter.RouterConfig{
			MetricsPath: cfg.HTTP.MetricsPath,
			Metrics:     httpMetrics,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting",
			"port", cfg.HTTP.Port,
			"store_driver", cfg.Store.Driver,
			"idempotency_driver", cfg.Idempotency.Driver,
			"kafka_enabled", len(cfg.Kafka.Brokers) > 0,
			"websocket_enabled", deps.hub != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
	<-hubDone

	return nil
}
