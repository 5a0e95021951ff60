package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Additional-Code/planta/internal/config"
)

func TestNewSharesWriterWithoutReplica(t *testing.T) {
	cfg := config.Config{Database: config.Database{
		Driver:    "sqlite",
		WriterDSN: "file::memory:",
		ReaderDSN: "file::memory:",
	}}
	lc := fxtest.NewLifecycle(t)

	conns, err := New(lc, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Same(t, conns.Writer, conns.Reader)

	lc.RequireStart()
	var one int
	require.NoError(t, conns.Reader.NewSelect().ColumnExpr("1").Scan(context.Background(), &one))
	assert.Equal(t, 1, one)
	lc.RequireStop()
}

func TestSlowQueryHookLogsAboveThreshold(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	db, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	db.AddQueryHook(&slowQueryHook{threshold: time.Nanosecond, pool: "writer", logger: zap.New(core)})

	var one int
	require.NoError(t, db.NewSelect().ColumnExpr("1").Scan(context.Background(), &one))

	entries := logs.FilterMessage("slow query").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "writer", entries[0].ContextMap()["pool"])
	assert.Equal(t, "SELECT", entries[0].ContextMap()["operation"])
}

func TestSlowQueryHookDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	db.AddQueryHook(&slowQueryHook{pool: "writer", logger: zap.New(core)})

	var one int
	require.NoError(t, db.NewSelect().ColumnExpr("1").Scan(context.Background(), &one))
	assert.Zero(t, logs.Len())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "dsn")
	assert.Error(t, err)

	_, err = Open("sqlite", "")
	assert.Error(t, err)
}
