package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dejobratic/snackbar/internal/config"
	"github.com/dejobratic/snackbar/internal/database"
	idemmemory "github.com/dejobratic/snackbar/internal/idempotency/memory"
	idempostgres "github.com/dejobratic/snackbar/internal/idempotency/postgres"
	idemredis "github.com/dejobratic/snackbar/internal/idempotency/redis"
	"github.com/dejobratic/snackbar/internal/kafka"
	"github.com/dejobratic/snackbar/internal/notify"
	"github.com/dejobratic/snackbar/internal/pos/adapters"
	"github.com/dejobratic/snackbar/internal/pos/adapters/jsonfile"
	posmemory "github.com/dejobratic/snackbar/internal/pos/adapters/memory"
	pospostgres "github.com/dejobratic/snackbar/internal/pos/adapters/postgres"
	"github.com/dejobratic/snackbar/internal/pos/ports"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
)

// dependencies holds the adapters selected by configuration and the resources that must be released
// on shutdown.
type dependencies struct {
	store       ports.Store
	events      ports.EventBus
	idempotency ports.IdempotencyStore
	hub         *notify.Hub

	pool      *pgxpool.Pool
	tables    []string
	redis     *goredis.Client
	publisher *kafka.Publisher
}

func buildDependencies(ctx context.Context, cfg *config.Config, meter metric.Meter, logger *slog.Logger) (_ *dependencies, err error) {
	deps := &dependencies{}
	defer func() {
		if err != nil {
			_ = deps.Close()
		}
	}()

	if cfg.UsesPostgres() {
		deps.pool, err = database.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("create database pool: %w", err)
		}
		if cfg.Database.AutoMigrate {
			logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
			if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
			logger.Info("migrations completed successfully")
		}
	}

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create database metrics: %w", err)
	}

	var store ports.Store
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		store = pospostgres.NewStore(deps.pool)
		deps.tables = append(deps.tables, "pos_state")
	case config.StoreDriverMemory:
		store = posmemory.NewStore()
	default:
		store = jsonfile.NewStore(cfg.Store.Path)
	}
	deps.store = adapters.NewObservableStore(store, dbMetrics, cfg.Store.Driver)

	switch cfg.Idempotency.Driver {
	case config.IdempotencyDriverPostgres:
		deps.idempotency = idempostgres.NewStore(deps.pool)
		deps.tables = append(deps.tables, "idempotency_keys")
	case config.IdempotencyDriverRedis:
		deps.redis, err = idemredis.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		deps.idempotency = idemredis.NewStore(deps.redis, cfg.Idempotency.TTL)
	default:
		deps.idempotency = idemmemory.NewStore()
	}

	buses := make([]ports.EventBus, 0, 2)
	if len(cfg.Kafka.Brokers) > 0 {
		deps.publisher, err = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		if err != nil {
			return nil, fmt.Errorf("create kafka publisher: %w", err)
		}
		buses = append(buses, deps.publisher)
	} else {
		buses = append(buses, kafka.NewNoopEventBus(logger))
	}
	if cfg.Events.WebSocket {
		deps.hub = notify.NewHub(logger, notify.WithAllowedOrigins(cfg.Events.AllowedOrigins...))
		buses = append(buses, deps.hub)
	}

	eventMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create event metrics: %w", err)
	}
	deps.events = adapters.NewObservableEventBus(adapters.NewFanoutEventBus(buses...), eventMetrics)

	return deps, nil
}

// Ready reports whether the external stores the service writes to are reachable.
func (d *dependencies) Ready(ctx context.Context) error {
	var errs []error
	if d.pool != nil {
		if err := database.CheckHealth(ctx, d.pool); err != nil {
			errs = append(errs, err)
		} else if err := database.CheckSchema(ctx, d.pool, d.tables...); err != nil {
			errs = append(errs, err)
		}
	}
	if d.redis != nil {
		if err := d.redis.Ping(ctx).Err(); err != nil {
			errs = append(errs, fmt.Errorf("redis ping: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (d *dependencies) Close() error {
	var errs []error
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka publisher: %w", err))
		}
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if d.pool != nil {
		d.pool.Close()
	}
	return errors.Join(errs...)
}
