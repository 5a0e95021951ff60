package logger

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Additional-Code/planta/internal/config"
)

func TestBuild(t *testing.T) {
	logger, err := Build(config.Observability{ServiceName: "planta", LogLevel: "warn", LogEncoding: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = Build(config.Observability{LogLevel: "debug", LogEncoding: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestBuildRejectsUnknownSettings(t *testing.T) {
	_, err := Build(config.Observability{LogLevel: "loud", LogEncoding: "json"})
	assert.Error(t, err)

	_, err = Build(config.Observability{LogLevel: "info", LogEncoding: "xml"})
	assert.Error(t, err)
}

func TestIgnoreSyncErr(t *testing.T) {
	assert.NoError(t, ignoreSyncErr(nil))
	assert.NoError(t, ignoreSyncErr(syscall.EINVAL))
	assert.NoError(t, ignoreSyncErr(syscall.ENOTTY))
	assert.Error(t, ignoreSyncErr(syscall.EIO))
}
