package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// App holds domain-level settings.
type App struct {
	Timezone string
	Location *time.Location
}

// HTTP holds HTTP server configuration.
type HTTP struct {
	Host string
	Port int
}

// GRPC holds gRPC server configuration.
type GRPC struct {
	Host           string
	Port           int
	HealthInterval time.Duration
}

// Cache configures caching behavior and backend selection.
type Cache struct {
	Enabled    bool
	Driver     string
	DefaultTTL time.Duration
	// CatalogTTL bounds how long sliders and defects inserted outside the
	// service stay invisible to the catalog listings.
	CatalogTTL time.Duration
	Redis      Redis
}

// Redis contains redis-specific connection settings.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Messaging configures the message bus used by the application.
type Messaging struct {
	Driver        string
	Enabled       bool
	Kafka         Kafka
	ConsumerGroup string
	Workers       Worker
}

// Kafka holds Kafka connection details.
type Kafka struct {
	Brokers        []string
	ClientID       string
	Topic          string
	CommitInterval time.Duration
	MinBytes       int
	MaxBytes       int
	ConnectTimeout time.Duration
	BatchTimeout   time.Duration
}

// Worker configures background worker concurrency and polling.
type Worker struct {
	Enabled      bool
	PollInterval time.Duration
	Concurrency  int
}

// Database holds primary and read replica connection settings.
type Database struct {
	Driver          string
	WriterDSN       string
	ReaderDSN       string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SlowQuery       time.Duration
}

// Observability contains logging, tracing, and metrics configuration.
type Observability struct {
	ServiceName     string
	ServiceVersion  string
	Environment     string
	LogLevel        string
	LogEncoding     string
	EnableTracing   bool
	TraceExporter   string
	TraceEndpoint   string
	TraceInsecure   bool
	TraceSampleRate float64
	EnableMetrics   bool
	MetricsExporter string
	PrometheusPath  string
}

// Config wraps all application configuration knobs.
type Config struct {
	App           App
	HTTP          HTTP
	GRPC          GRPC
	Cache         Cache
	Messaging     Messaging
	Database      Database
	Observability Observability
}

// Module wires the configuration loader into the Fx graph.
var Module = fx.Provide(New)

var loadEnvOnce sync.Once

// New builds a Config from environment variables or defaults.
func New() (Config, error) {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load()
	})

	env := &envReader{}
	cfg := Config{
		App: App{
			Timezone: env.String("APP_TIMEZONE", "Local"),
		},
		HTTP: HTTP{
			Host: env.String("HTTP_HOST", "0.0.0.0"),
			Port: env.Int("HTTP_PORT", 5000),
		},
		GRPC: GRPC{
			Host:           env.String("GRPC_HOST", "0.0.0.0"),
			Port:           env.Int("GRPC_PORT", 9090),
			HealthInterval: env.Duration("GRPC_HEALTH_INTERVAL", 10*time.Second),
		},
		Cache: Cache{
			Enabled:    env.Bool("CACHE_ENABLED", true),
			Driver:     env.String("CACHE_DRIVER", "redis"),
			DefaultTTL: env.Duration("CACHE_DEFAULT_TTL", time.Minute*5),
			CatalogTTL: env.Duration("CACHE_CATALOG_TTL", 30*time.Second),
			Redis: Redis{
				Addr:     env.String("REDIS_ADDR", "127.0.0.1:6379"),
				Password: env.String("REDIS_PASSWORD", ""),
				DB:       env.Int("REDIS_DB", 0),
			},
		},
		Messaging: Messaging{
			Driver:  env.String("MESSAGING_DRIVER", "kafka"),
			Enabled: env.Bool("MESSAGING_ENABLED", true),
			Kafka: Kafka{
				Brokers:        env.StringSlice("KAFKA_BROKERS", []string{"127.0.0.1:9092"}),
				ClientID:       env.String("KAFKA_CLIENT_ID", "planta-service"),
				Topic:          env.String("KAFKA_TOPIC", "planta.events"),
				CommitInterval: env.Duration("KAFKA_COMMIT_INTERVAL", time.Second),
				MinBytes:       env.Int("KAFKA_MIN_BYTES", 10e3),
				MaxBytes:       env.Int("KAFKA_MAX_BYTES", 10e6),
				ConnectTimeout: env.Duration("KAFKA_CONNECT_TIMEOUT", 5*time.Second),
				BatchTimeout:   env.Duration("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond),
			},
			ConsumerGroup: env.String("KAFKA_CONSUMER_GROUP", "planta-worker"),
			Workers: Worker{
				Enabled:      env.Bool("WORKER_ENABLED", true),
				PollInterval: env.Duration("WORKER_POLL_INTERVAL", time.Second),
				Concurrency:  env.Int("WORKER_CONCURRENCY", 4),
			},
		},
		Database: Database{
			Driver:          env.String("DB_DRIVER", "mysql"),
			WriterDSN:       env.String("DB_WRITER_DSN", "planta:planta@tcp(localhost:3306)/planta?parseTime=true"),
			ReaderDSN:       env.String("DB_READER_DSN", ""),
			MaxOpenConns:    env.Int("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    env.Int("DB_MAX_IDLE_CONNS", 25),
			MaxConnLifetime: env.Duration("DB_MAX_CONN_LIFETIME", time.Minute*5),
			SlowQuery:       env.Duration("DB_SLOW_QUERY", 200*time.Millisecond),
		},
		Observability: Observability{
			ServiceName:     env.String("OBS_SERVICE_NAME", "planta"),
			ServiceVersion:  env.String("OBS_SERVICE_VERSION", "0.1.0"),
			Environment:     env.String("OBS_ENVIRONMENT", "local"),
			LogLevel:        env.String("OBS_LOG_LEVEL", "info"),
			LogEncoding:     env.String("OBS_LOG_ENCODING", "json"),
			EnableTracing:   env.Bool("OBS_ENABLE_TRACING", true),
			TraceExporter:   env.String("OBS_TRACE_EXPORTER", "stdout"),
			TraceEndpoint:   env.String("OBS_OTLP_ENDPOINT", "localhost:4317"),
			TraceInsecure:   env.Bool("OBS_OTLP_INSECURE", true),
			TraceSampleRate: env.Float("OBS_TRACE_SAMPLE_RATE", 1),
			EnableMetrics:   env.Bool("OBS_ENABLE_METRICS", true),
			MetricsExporter: env.String("OBS_METRICS_EXPORTER", "prometheus"),
			PrometheusPath:  env.String("OBS_PROMETHEUS_PATH", "/metrics"),
		},
	}

	if err := env.Err(); err != nil {
		return Config{}, err
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// normalize fills derived defaults and reports every invalid setting at once.
func (c *Config) normalize() error {
	var errs []error

	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err))
	}
	c.App.Location = loc

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port))
	}
	if c.GRPC.Port <= 0 || c.GRPC.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid gRPC port: %d", c.GRPC.Port))
	}
	if c.GRPC.HealthInterval <= 0 {
		c.GRPC.HealthInterval = 10 * time.Second
	}

	errs = append(errs,
		c.Cache.normalize(),
		c.Messaging.normalize(),
		c.Database.normalize(),
		c.Observability.normalize(),
	)
	return errors.Join(errs...)
}

func (c *Cache) normalize() error {
	if !c.Enabled {
		c.Driver = "noop"
	}
	c.Driver = lowerOr(c.Driver, "redis")
	if c.DefaultTTL < 0 {
		c.DefaultTTL = 5 * time.Minute
	}
	if c.CatalogTTL <= 0 {
		c.CatalogTTL = 30 * time.Second
	}

	switch c.Driver {
	case "noop":
		return nil
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("missing REDIS_ADDR for redis cache")
		}
		return nil
	default:
		return fmt.Errorf("unsupported cache driver: %s", c.Driver)
	}
}

func (m *Messaging) normalize() error {
	if !m.Enabled {
		m.Driver = "noop"
	}
	m.Driver = lowerOr(m.Driver, "kafka")
	if m.Workers.Concurrency <= 0 {
		m.Workers.Concurrency = 1
	}
	if m.Workers.PollInterval <= 0 {
		m.Workers.PollInterval = time.Second
	}

	switch m.Driver {
	case "noop":
		return nil
	case "kafka":
		var errs []error
		if len(m.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS must be provided"))
		}
		if m.Kafka.Topic == "" {
			errs = append(errs, errors.New("KAFKA_TOPIC must be provided"))
		}
		if m.ConsumerGroup == "" {
			errs = append(errs, errors.New("KAFKA_CONSUMER_GROUP must be provided"))
		}
		return errors.Join(errs...)
	default:
		return fmt.Errorf("unsupported messaging driver: %s", m.Driver)
	}
}

func (d *Database) normalize() error {
	d.Driver = lowerOr(d.Driver, "mysql")
	if d.ReaderDSN == "" {
		d.ReaderDSN = d.WriterDSN
	}

	switch d.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", d.Driver)
	}
	if d.WriterDSN == "" {
		return errors.New("missing DB_WRITER_DSN")
	}
	return nil
}

func (o *Observability) normalize() error {
	o.LogLevel = lowerOr(o.LogLevel, "info")
	o.LogEncoding = lowerOr(o.LogEncoding, "json")
	o.TraceExporter = lowerOr(o.TraceExporter, "stdout")
	o.MetricsExporter = lowerOr(o.MetricsExporter, "prometheus")

	switch {
	case o.PrometheusPath == "":
		o.PrometheusPath = "/metrics"
	case !strings.HasPrefix(o.PrometheusPath, "/"):
		o.PrometheusPath = "/" + o.PrometheusPath
	}

	if o.TraceSampleRate < 0 || o.TraceSampleRate > 1 {
		return fmt.Errorf("OBS_TRACE_SAMPLE_RATE must be within [0,1], got %v", o.TraceSampleRate)
	}
	return nil
}

func lowerOr(value, fallback string) string {
	if value = strings.ToLower(strings.TrimSpace(value)); value == "" {
		return fallback
	}
	return value
}
