// Package logger configures the zap logger shared through otelzap.
//
// The console core writes to stderr so that stdout only ever carries the
// rewritten commit message.
package logger

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel keeps routine runs quiet.
const DefaultLevel = zapcore.WarnLevel

// ParseLevel maps a level name to a zap level. "trace" is accepted as debug
// and an empty name selects DefaultLevel.
func ParseLevel(level string) (zapcore.Level, error) {
	level = strings.TrimSpace(strings.ToLower(level))
	switch level {
	case "":
		return DefaultLevel, nil
	case "trace":
		return zapcore.DebugLevel, nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return DefaultLevel, errors.Wrapf(err, "invalid log level %q", level)
	}
	return lvl, nil
}

// ConsoleEncoderConfig is the compact console layout used on stderr.
func ConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "T"
	cfg.LevelKey = "L"
	cfg.NameKey = "N"
	cfg.CallerKey = ""
	cfg.MessageKey = "M"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// New builds a console logger writing to w.
func New(level zapcore.Level, w io.Writer) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(ConsoleEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
}

// Install makes l the global zap and otelzap logger. The returned func
// restores the previous globals.
func Install(l *zap.Logger) func() {
	undoZap := zap.ReplaceGlobals(l)
	undoOtel := otelzap.ReplaceGlobals(otelzap.New(l))
	return func() {
		undoOtel()
		undoZap()
	}
}

// GenerateRunID returns a short identifier attached to every log line of one run.
func GenerateRunID() string {
	return uuid.New().String()[:8]
}

// WithCommandLogging logs the start, outcome and duration of fn.
func WithCommandLogging(ctx context.Context, name string, fn func() error) error {
	log := otelzap.Ctx(ctx)
	start := time.Now()
	log.Debug("Command started", zap.String("command", name))

	err := fn()

	duration := time.Since(start)
	if err != nil {
		log.Debug("Command failed", zap.String("command", name), zap.Duration("duration", duration), zap.Error(err))
	} else {
		log.Debug("Command completed", zap.String("command", name), zap.Duration("duration", duration))
	}
	return err
}
