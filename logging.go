package cubefield

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Sync() error
}

// ZapLogger adapts a zap SugaredLogger to Logger. Debug output is toggled at
// runtime through an atomic level so it can be flipped from a key binding.
type ZapLogger struct {
	mu    sync.Mutex
	level zap.AtomicLevel
	base  zapcore.Level
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a logger writing to stderr. encoding is "console" or
// "json"; prefix, if set, is attached to every entry as the "module" field.
func NewZapLogger(prefix string, debug bool, encoding string) (*ZapLogger, error) {
	base := zapcore.InfoLevel
	level := zap.NewAtomicLevelAt(base)
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	if encoding == "" {
		encoding = "console"
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	config := zap.Config{
		Level:            level,
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	if prefix != "" {
		zapLogger = zapLogger.With(zap.String("module", prefix))
	}

	return &ZapLogger{
		level: level,
		base:  base,
		sugar: zapLogger.Sugar(),
	}, nil
}

// NewZapLoggerFrom wraps an existing zap logger, mostly for tests that use
// zaptest/observer cores.
func NewZapLoggerFrom(l *zap.Logger, level zap.AtomicLevel) *ZapLogger {
	return &ZapLogger{level: level, base: zapcore.InfoLevel, sugar: l.Sugar()}
}

func (l *ZapLogger) DebugEnabled() bool {
	return l.level.Enabled(zapcore.DebugLevel)
}

func (l *ZapLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if enabled {
		l.level.SetLevel(zapcore.DebugLevel)
	} else {
		l.level.SetLevel(l.base)
	}
}

func (l *ZapLogger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *ZapLogger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *ZapLogger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *ZapLogger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }

func (l *ZapLogger) Sync() error {
	err := l.sugar.Sync()
	// stderr cannot be fsynced on most terminals.
	if err != nil && strings.Contains(err.Error(), "invalid argument") {
		return nil
	}
	return err
}

// LoggingModule installs a zap backed logger as a resource.
type LoggingModule struct {
	Prefix   string
	Debug    bool
	Encoding string
}

func (m LoggingModule) Install(app *App, cmd *Commands) error {
	logger, err := NewZapLogger(m.Prefix, m.Debug, m.Encoding)
	if err != nil {
		return err
	}
	cmd.AddResources(logger)
	return nil
}

// Nop logger and App helper accessor

type nopLogger struct{}

func NewNopLogger() Logger { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}
func (n *nopLogger) Sync() error                       { return nil }

// Logger returns the first Logger resource if present, otherwise a no-op logger.
// Safe to call at any time; never returns nil.
func (app *App) Logger() Logger {
	if app == nil {
		return NewNopLogger()
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return NewNopLogger()
}
