// Package log provides the structured logging interface used across kernreg.
//
// Library code logs through the Logger interface, obtained from GetLogger or
// injected with a WithLogger option, so that applications can route output
// to zerolog (the default backend), slog, or a TestLogger in tests.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "KNearestNeighbors",
//	    log.EstimatorIDKey, id,
//	)
//	logger.Debug("neighbour ranking cached",
//	    log.CacheKeyKey, 12,
//	    log.CacheHitKey, false,
//	)

package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. Error treats a leading error value
// specially so that its stack trace can be attached.
type Logger interface {
	// Debug logs detailed diagnostic information, e.g. per-query cache hits.
	Debug(msg string, fields ...any)

	// Info logs operational information such as a finished cache write.
	Info(msg string, fields ...any)

	// Warn logs potentially problematic situations.
	Warn(msg string, fields ...any)

	// Error logs an error. If the first field is an error it is attached as
	// the record's error.
	//
	//	logger.Error("cache merge failed", err, log.CachePathKey, path)
	Error(msg string, fields ...any)

	// With returns a Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to skip building expensive fields.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
