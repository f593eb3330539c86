package dictcol

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with dictcol-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithQueue adds a queue ID field to the logger.
func (l *Logger) WithQueue(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("queue", id),
	}
}

// WithRows adds a row-count field to the logger.
func (l *Logger) WithRows(rows int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", rows),
	}
}

// WithKeys adds a key-count field to the logger.
func (l *Logger) WithKeys(keys int) *Logger {
	return &Logger{
		Logger: l.Logger.With("keys", keys),
	}
}

// LogKeyUpdate logs a key-management operation on a single column.
func (l *Logger) LogKeyUpdate(op string, rows, keysBefore, keysAfter int, err error) {
	if err != nil {
		l.Error("key update failed",
			"op", op,
			"rows", rows,
			"keys_before", keysBefore,
			"error", err,
		)
	} else {
		l.Debug("key update completed",
			"op", op,
			"rows", rows,
			"keys_before", keysBefore,
			"keys_after", keysAfter,
		)
	}
}

// LogMatch logs a cross-column or cross-table match operation.
// mergedKeys < 0 means the merge produced several key sets (table match).
func (l *Logger) LogMatch(columns, mergedKeys int, err error) {
	switch {
	case err != nil:
		l.Error("dictionary match failed",
			"columns", columns,
			"error", err,
		)
	case mergedKeys < 0:
		l.Debug("dictionary match completed",
			"columns", columns,
		)
	default:
		l.Debug("dictionary match completed",
			"columns", columns,
			"merged_keys", mergedKeys,
		)
	}
}

// LogEncode logs a dictionary encode operation.
func (l *Logger) LogEncode(rows, keys int, err error) {
	if err != nil {
		l.Error("encode failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.Debug("encode completed",
			"rows", rows,
			"keys", keys,
		)
	}
}

// LogDecode logs a dictionary decode operation.
func (l *Logger) LogDecode(rows int, err error) {
	if err != nil {
		l.Error("decode failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.Debug("decode completed",
			"rows", rows,
		)
	}
}
