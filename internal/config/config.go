package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures runtime configuration for the API service.
type Config struct {
	HTTP        HTTPConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Idempotency IdempotencyConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Events      EventsConfig
	Reports     ReportsConfig
	Telemetry   TelemetryConfig
	Service     ServiceConfig
}

type HTTPConfig struct {
	Port          int
	MetricsPath   string
	ShutdownGrace int
}

// StoreConfig selects where the point of sale document is persisted.
type StoreConfig struct {
	Driver string
	Path   string
}

type DatabaseConfig struct {
	URL            string
	AutoMigrate    bool
	MigrationsPath string
}

type IdempotencyConfig struct {
	Driver string
	TTL    time.Duration
}

type RedisConfig struct {
	URL string
}

type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

// EventsConfig controls the live WebSocket change feed.
type EventsConfig struct {
	WebSocket      bool
	AllowedOrigins []string
}

type ReportsConfig struct {
	TimeZone string
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

const (
	StoreDriverJSON     = "json"
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"

	IdempotencyDriverMemory   = "memory"
	IdempotencyDriverPostgres = "postgres"
	IdempotencyDriverRedis    = "redis"
)

const (
	defaultHTTPPort          = 8080
	defaultMetricsPath       = "/metrics"
	defaultShutdownGrace     = 15
	defaultStoreDriver       = StoreDriverJSON
	defaultStorePath         = "data/snackbar.json"
	defaultMigrationsPath    = "migrations"
	defaultAutoMigrate       = true
	defaultIdempotencyDriver = IdempotencyDriverMemory
	defaultIdempotencyTTL    = 24 * time.Hour
	defaultRedisURL          = "redis://localhost:6379/0"
	defaultKafkaTopicPrefix  = "snackbar."
	defaultWebSocket         = true
	defaultTimeZone          = "UTC"
	defaultServiceName       = "snackbar-api"
	defaultServiceVersion    = "0.1.0"
	defaultEnvironment       = "development"
	defaultLogLevel          = "info"
	defaultOTelSampleRate    = 1.0
)

type fileConfig struct {
	HTTP struct {
		Port          int    `yaml:"port"`
		MetricsPath   string `yaml:"metrics_path"`
		ShutdownGrace int    `yaml:"shutdown_grace_seconds"`
	} `yaml:"http"`
	Store struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"store"`
	Database struct {
		URL            string `yaml:"url"`
		AutoMigrate    *bool  `yaml:"auto_migrate"`
		MigrationsPath string `yaml:"migrations_path"`
	} `yaml:"database"`
	Idempotency struct {
		Driver string `yaml:"driver"`
		TTL    string `yaml:"ttl"`
	} `yaml:"idempotency"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Kafka struct {
		Brokers     []string `yaml:"brokers"`
		TopicPrefix *string  `yaml:"topic_prefix"`
	} `yaml:"kafka"`
	Events struct {
		WebSocket      *bool    `yaml:"websocket"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"events"`
	Reports struct {
		TimeZone string `yaml:"time_zone"`
	} `yaml:"reports"`
	Telemetry struct {
		LogLevel      string   `yaml:"log_level"`
		OTelEndpoint  string   `yaml:"otel_endpoint"`
		EnableTracing *bool    `yaml:"enable_tracing"`
		EnableMetrics *bool    `yaml:"enable_metrics"`
		SampleRate    *float64 `yaml:"sample_rate"`
	} `yaml:"telemetry"`
	Service struct {
		Name        string `yaml:"name"`
		Version     string `yaml:"version"`
		Environment string `yaml:"environment"`
	} `yaml:"service"`
}

// Load builds the configuration from defaults, then the YAML file named by CONFIG_FILE when set, then
// environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:          defaultHTTPPort,
			MetricsPath:   defaultMetricsPath,
			ShutdownGrace: defaultShutdownGrace,
		},
		Store: StoreConfig{
			Driver: defaultStoreDriver,
			Path:   defaultStorePath,
		},
		Database: DatabaseConfig{
			AutoMigrate:    defaultAutoMigrate,
			MigrationsPath: defaultMigrationsPath,
		},
		Idempotency: IdempotencyConfig{
			Driver: defaultIdempotencyDriver,
			TTL:    defaultIdempotencyTTL,
		},
		Redis: RedisConfig{URL: defaultRedisURL},
		Kafka: KafkaConfig{TopicPrefix: defaultKafkaTopicPrefix},
		Events: EventsConfig{
			WebSocket: defaultWebSocket,
		},
		Reports: ReportsConfig{TimeZone: defaultTimeZone},
		Telemetry: TelemetryConfig{
			LogLevel:      defaultLogLevel,
			EnableTracing: true,
			EnableMetrics: true,
			SampleRate:    defaultOTelSampleRate,
		},
		Service: ServiceConfig{
			Name:        defaultServiceName,
			Version:     defaultServiceVersion,
			Environment: defaultEnvironment,
		},
	}
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if f.HTTP.Port > 0 {
		c.HTTP.Port = f.HTTP.Port
	}
	if f.HTTP.MetricsPath != "" {
		c.HTTP.MetricsPath = f.HTTP.MetricsPath
	}
	if f.HTTP.ShutdownGrace > 0 {
		c.HTTP.ShutdownGrace = f.HTTP.ShutdownGrace
	}
	if f.Store.Driver != "" {
		c.Store.Driver = f.Store.Driver
	}
	if f.Store.Path != "" {
		c.Store.Path = f.Store.Path
	}
	if f.Database.URL != "" {
		c.Database.URL = f.Database.URL
	}
	if f.Database.AutoMigrate != nil {
		c.Database.AutoMigrate = *f.Database.AutoMigrate
	}
	if f.Database.MigrationsPath != "" {
		c.Database.MigrationsPath = f.Database.MigrationsPath
	}
	if f.Idempotency.Driver != "" {
		c.Idempotency.Driver = f.Idempotency.Driver
	}
	if f.Idempotency.TTL != "" {
		ttl, err := time.ParseDuration(f.Idempotency.TTL)
		if err != nil {
			return fmt.Errorf("invalid idempotency.ttl: %w", err)
		}
		c.Idempotency.TTL = ttl
	}
	if f.Redis.URL != "" {
		c.Redis.URL = f.Redis.URL
	}
	if len(f.Kafka.Brokers) > 0 {
		c.Kafka.Brokers = trimNonEmpty(f.Kafka.Brokers)
	}
	if f.Kafka.TopicPrefix != nil {
		c.Kafka.TopicPrefix = *f.Kafka.TopicPrefix
	}
	if f.Events.WebSocket != nil {
		c.Events.WebSocket = *f.Events.WebSocket
	}
	if len(f.Events.AllowedOrigins) > 0 {
		c.Events.AllowedOrigins = trimNonEmpty(f.Events.AllowedOrigins)
	}
	if f.Reports.TimeZone != "" {
		c.Reports.TimeZone = f.Reports.TimeZone
	}
	if f.Telemetry.LogLevel != "" {
		c.Telemetry.LogLevel = f.Telemetry.LogLevel
	}
	if f.Telemetry.OTelEndpoint != "" {
		c.Telemetry.OTelEndpoint = f.Telemetry.OTelEndpoint
	}
	if f.Telemetry.EnableTracing != nil {
		c.Telemetry.EnableTracing = *f.Telemetry.EnableTracing
	}
	if f.Telemetry.EnableMetrics != nil {
		c.Telemetry.EnableMetrics = *f.Telemetry.EnableMetrics
	}
	if f.Telemetry.SampleRate != nil {
		c.Telemetry.SampleRate = *f.Telemetry.SampleRate
	}
	if f.Service.Name != "" {
		c.Service.Name = f.Service.Name
	}
	if f.Service.Version != "" {
		c.Service.Version = f.Service.Version
	}
	if f.Service.Environment != "" {
		c.Service.Environment = f.Service.Environment
	}

	return nil
}

func (c *Config) applyEnv() error {
	if err := intEnv("API_HTTP_PORT", &c.HTTP.Port); err != nil {
		return fmt.Errorf("loading HTTP config: %w", err)
	}
	if err := intEnv("API_SHUTDOWN_GRACE_SECONDS", &c.HTTP.ShutdownGrace); err != nil {
		return fmt.Errorf("loading HTTP config: %w", err)
	}
	c.HTTP.MetricsPath = getEnvOrDefault("API_METRICS_PATH", c.HTTP.MetricsPath)

	c.Store.Driver = getEnvOrDefault("STORE_DRIVER", c.Store.Driver)
	c.Store.Path = getEnvOrDefault("STORE_PATH", c.Store.Path)

	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	} else if c.Database.URL == "" {
		c.Database.URL = buildDatabaseURL()
	}
	c.Database.AutoMigrate = getBoolEnv("AUTO_MIGRATE", c.Database.AutoMigrate)
	c.Database.MigrationsPath = getEnvOrDefault("MIGRATIONS_PATH", c.Database.MigrationsPath)

	c.Idempotency.Driver = getEnvOrDefault("IDEMPOTENCY_DRIVER", c.Idempotency.Driver)
	if value, ok := os.LookupEnv("IDEMPOTENCY_TTL"); ok {
		ttl, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
		}
		c.Idempotency.TTL = ttl
	}

	c.Redis.URL = getEnvOrDefault("REDIS_URL", c.Redis.URL)

	if value, ok := os.LookupEnv("KAFKA_BROKERS"); ok && value != "" {
		c.Kafka.Brokers = trimNonEmpty(strings.Split(value, ","))
	}
	if value, ok := os.LookupEnv("KAFKA_TOPIC_PREFIX"); ok {
		c.Kafka.TopicPrefix = value
	}

	c.Events.WebSocket = getBoolEnv("EVENTS_WEBSOCKET", c.Events.WebSocket)
	if value, ok := os.LookupEnv("EVENTS_ALLOWED_ORIGINS"); ok && value != "" {
		c.Events.AllowedOrigins = trimNonEmpty(strings.Split(value, ","))
	}

	c.Reports.TimeZone = getEnvOrDefault("REPORTS_TIME_ZONE", c.Reports.TimeZone)

	c.Telemetry.LogLevel = getEnvOrDefault("LOG_LEVEL", c.Telemetry.LogLevel)
	c.Telemetry.OTelEndpoint = getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.OTelEndpoint)
	c.Telemetry.EnableTracing = getBoolEnv("OTEL_ENABLE_TRACING", c.Telemetry.EnableTracing)
	c.Telemetry.EnableMetrics = getBoolEnv("OTEL_ENABLE_METRICS", c.Telemetry.EnableMetrics)
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("loading telemetry config: invalid OTEL_SAMPLE_RATE: %w", err)
		}
		c.Telemetry.SampleRate = parsed
	}

	c.Service.Name = getEnvOrDefault("API_SERVICE_NAME", c.Service.Name)
	c.Service.Version = getEnvOrDefault("SERVICE_VERSION", c.Service.Version)
	c.Service.Environment = getEnvOrDefault("ENVIRONMENT", c.Service.Environment)

	return nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http port %d out of range", c.HTTP.Port))
	}
	switch c.Store.Driver {
	case StoreDriverJSON:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store path is required for the json driver"))
		}
	case StoreDriverMemory, StoreDriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	switch c.Idempotency.Driver {
	case IdempotencyDriverMemory, IdempotencyDriverPostgres, IdempotencyDriverRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown idempotency driver %q", c.Idempotency.Driver))
	}
	if c.Idempotency.TTL <= 0 {
		errs = append(errs, errors.New("idempotency ttl must be positive"))
	}
	if _, err := time.LoadLocation(c.Reports.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("invalid reports time zone %q: %w", c.Reports.TimeZone, err))
	}

	return errors.Join(errs...)
}

// UsesPostgres reports whether any component needs a database pool.
func (c *Config) UsesPostgres() bool {
	return c.Store.Driver == StoreDriverPostgres || c.Idempotency.Driver == IdempotencyDriverPostgres
}

func buildDatabaseURL() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "snackbar")
	sslMode := getEnvOrDefault("DB_SSLMODE", "disable")

	maxConns := getEnvOrDefault("DB_MAX_CONNS", "10")
	minConns := getEnvOrDefault("DB_MIN_CONNS", "2")
	maxLifetime := getEnvOrDefault("DB_MAX_CONN_LIFETIME", "5m")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%s&pool_min_conns=%s&pool_max_conn_lifetime=%s",
		user, password, host, port, dbName, sslMode, maxConns, minConns, maxLifetime,
	)
}

func intEnv(key string, dst *int) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = parsed
	return nil
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return defaultValue
}
