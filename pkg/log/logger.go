// Package log provides structured logging for fitkit, backed by zerolog.
//
// Estimators and composers emit diagnostic trace records (sample counts,
// parameter values, timings) through this package. The output is purely
// observational and never behavior-affecting; the caller controls the
// detail level via SetupLogger or by installing a custom LoggerProvider.
package log

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is the minimal structured logging interface used throughout
// fitkit. Fields are alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// LoggerProvider constructs named loggers. Install a custom provider
// with SetProvider to redirect fitkit's trace output.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
}

// ToLogLevel parses a level string ("debug", "info", "warn", "error",
// "disabled") into a zerolog level. Unknown strings map to info.
func ToLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// zerologProvider adapts a zerolog.Logger to the LoggerProvider interface.
type zerologProvider struct {
	base zerolog.Logger
}

// NewZerologProvider creates a LoggerProvider writing JSON records to
// stderr at the given level.
func NewZerologProvider(level zerolog.Level) LoggerProvider {
	base := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	return &zerologProvider{base: base}
}

func (p *zerologProvider) GetLogger() Logger {
	return &zerologLogger{logger: p.base}
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{logger: p.base.With().Str(ComponentKey, name).Logger()}
}

type zerologLogger struct {
	logger zerolog.Logger
}

func (l *zerologLogger) emit(ev *zerolog.Event, msg string, fields []interface{}) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, fields[i+1])
	}
	ev.Msg(msg)
}

func (l *zerologLogger) Debug(msg string, fields ...interface{}) {
	l.emit(l.logger.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...interface{}) {
	l.emit(l.logger.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...interface{}) {
	l.emit(l.logger.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...interface{}) {
	l.emit(l.logger.Error(), msg, fields)
}

var (
	mu       sync.RWMutex
	provider LoggerProvider = NewZerologProvider(zerolog.WarnLevel)
	raw                     = zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
)

// SetupLogger configures the global provider at the given level with
// human-readable console output. Intended for examples and debugging.
func SetupLogger(level string) {
	mu.Lock()
	defer mu.Unlock()
	lvl := ToLogLevel(level)
	out := zerolog.ConsoleWriter{Out: os.Stderr}
	raw = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	provider = &zerologProvider{base: raw}
}

// SetProvider installs a custom LoggerProvider for all fitkit loggers.
func SetProvider(p LoggerProvider) {
	mu.Lock()
	defer mu.Unlock()
	provider = p
}

// GetLogger returns the global zerolog logger for fluent call sites.
func GetLogger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return raw
}

// GetLoggerWithName returns a named Logger from the global provider.
func GetLoggerWithName(name string) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// LogError logs err with its full chain at error level.
func LogError(err error, msg string) {
	logger := GetLogger()
	logger.Error().Err(err).Msg(msg)
}
