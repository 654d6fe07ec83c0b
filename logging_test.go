package cubefield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_SetDebug(t *testing.T) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core, logs := observer.New(level)
	log := NewZapLoggerFrom(zap.New(core), level)

	log.Debugf("hidden %d", 1)
	assert.False(t, log.DebugEnabled())

	log.SetDebug(true)
	assert.True(t, log.DebugEnabled())
	log.Debugf("shown %d", 2)

	log.SetDebug(false)
	log.Debugf("hidden %d", 3)
	log.Warnf("warn %s", "x")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "shown 2", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestNewZapLogger(t *testing.T) {
	log, err := NewZapLogger("cubefield", true, "json")
	require.NoError(t, err)
	assert.True(t, log.DebugEnabled())

	_, err = NewZapLogger("", false, "yaml")
	assert.Error(t, err)
}

func TestApp_LoggerFallsBackToNop(t *testing.T) {
	var nilApp *App
	assert.NotNil(t, nilApp.Logger())

	app := newApp()
	assert.IsType(t, &nopLogger{}, app.Logger())

	app, err := NewAppBuilder().UseModule(LoggingModule{Prefix: "test"}).Build()
	require.NoError(t, err)
	assert.IsType(t, &ZapLogger{}, app.Logger())
	assert.IsType(t, &ZapLogger{}, app.Commands().Logger())
}
