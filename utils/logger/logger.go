// Package logger holds the process-wide zap logger. Entries go to stderr, or
// to LOG_FILE when set, so stdout is left to command output.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configure Init. Level overrides the environment default when set
// and File receives the entries instead of stderr.
type Options struct {
	Environment string
	Level       string
	File        string
	Profile     string
}

var (
	mu     sync.RWMutex
	global *zap.Logger
	toFile bool
)

// Init builds the logger: JSON in production, colored console otherwise.
// Every entry carries the session profile.
func Init(opts Options) error {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Environment == "production" {
		config = zap.NewProductionConfig()
	}

	if opts.Level != "" {
		level, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return err
		}
		config.Level = zap.NewAtomicLevelAt(level)
	}
	if opts.File != "" {
		config.OutputPaths = []string{opts.File}
		config.ErrorOutputPaths = []string{opts.File}
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	l, err := config.Build()
	if err != nil {
		return err
	}
	if opts.Profile != "" {
		l = l.With(zap.String("profile", opts.Profile))
	}

	mu.Lock()
	global = l
	toFile = opts.File != ""
	mu.Unlock()
	return nil
}

// Set replaces the logger. Tests use it with an observer core.
func Set(l *zap.Logger) {
	mu.Lock()
	global = l
	toFile = false
	mu.Unlock()
}

// Detach silences terminal logging while a full-screen view owns the
// terminal. A file logger keeps writing.
func Detach() {
	mu.Lock()
	defer mu.Unlock()
	if toFile || global == nil {
		return
	}
	_ = global.Sync()
	global = zap.NewNop()
}

func Get() *zap.Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global, _ = zap.NewProduction()
	}
	return global
}

// Close flushes buffered entries.
func Close() error {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return nil
	}
	return global.Sync()
}

func Info(msg string, fields ...zap.Field) {
	Get().Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Get().Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Get().Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Get().Warn(msg, fields...)
}

// Fatal logs and exits the process.
func Fatal(msg string, fields ...zap.Field) {
	Get().Fatal(msg, fields...)
}
