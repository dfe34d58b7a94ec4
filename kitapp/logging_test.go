package kitapp_test

import (
	"testing"

	"github.com/appkit-go/appkit/kitapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	conf := kitapp.DefaultConfig()
	conf.LogLevel = zapcore.WarnLevel

	logs, err := kitapp.NewLogger(conf)
	require.NoError(t, err)
	defer func() { _ = logs.Sync() }()

	assert.False(t, logs.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logs.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLoggerConsole(t *testing.T) {
	conf := kitapp.DefaultConfig()
	conf.LogJSON = false
	conf.LogLevel = zapcore.DebugLevel

	logs, err := kitapp.NewLogger(conf)
	require.NoError(t, err)
	defer func() { _ = logs.Sync() }()

	assert.True(t, logs.Core().Enabled(zapcore.DebugLevel))
}

func TestLReturnsSameInstance(t *testing.T) {
	require.Same(t, kitapp.L(), kitapp.L())
}
