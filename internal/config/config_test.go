package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.HTTP.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, cfg.Database.WriterDSN, cfg.Database.ReaderDSN)
	assert.Equal(t, "planta", cfg.Observability.ServiceName)
	assert.Equal(t, "planta.events", cfg.Messaging.Kafka.Topic)
	assert.Equal(t, 1.0, cfg.Observability.TraceSampleRate)
	assert.Equal(t, 10*time.Millisecond, cfg.Messaging.Kafka.BatchTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.CatalogTTL)
	assert.Equal(t, time.UTC, cfg.App.Location)
}

func TestNewOverrides(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "America/Argentina/Buenos_Aires")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("DB_WRITER_DSN", "file::memory:")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("MESSAGING_ENABLED", "false")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("OBS_PROMETHEUS_PATH", "prom")
	t.Setenv("KAFKA_BATCH_TIMEOUT", "50ms")
	t.Setenv("CACHE_CATALOG_TTL", "5s")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "noop", cfg.Cache.Driver)
	assert.Equal(t, "noop", cfg.Messaging.Driver)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Messaging.Kafka.Brokers)
	assert.Equal(t, "/prom", cfg.Observability.PrometheusPath)
	assert.Equal(t, 50*time.Millisecond, cfg.Messaging.Kafka.BatchTimeout)
	assert.Equal(t, 5*time.Second, cfg.Cache.CatalogTTL)
	assert.Equal(t, "America/Argentina/Buenos_Aires", cfg.App.Location.String())
}

func TestNewRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"unparsable port":   {"HTTP_PORT", "http"},
		"negative port":     {"HTTP_PORT", "-1"},
		"unknown driver":    {"DB_DRIVER", "oracle"},
		"unknown timezone":  {"APP_TIMEZONE", "Mars/Olympus"},
		"bad duration":      {"CACHE_DEFAULT_TTL", "five minutes"},
		"bad bool":          {"CACHE_ENABLED", "sometimes"},
		"sample rate range": {"OBS_TRACE_SAMPLE_RATE", "1.5"},
		"cache driver":      {"CACHE_DRIVER", "memcached"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("APP_TIMEZONE", "UTC")
			t.Setenv(kv[0], kv[1])

			_, err := New()
			assert.Error(t, err)
		})
	}
}

func TestNewKeepsCatalogTTLPositive(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("CACHE_CATALOG_TTL", "0s")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Cache.CatalogTTL)
}

func TestNewReportsEveryProblem(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("HTTP_PORT", "70000")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := New()
	require.Error(t, err)
	for _, want := range []string{"invalid HTTP port: 70000", "unsupported database driver: oracle"} {
		assert.ErrorContains(t, err, want)
	}
}
