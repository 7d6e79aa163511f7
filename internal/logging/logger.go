package logging

import (
	"log/slog"
	"os"
)

// Logger is a thin wrapper around slog.Logger that adds field helpers
type Logger struct {
	*slog.Logger
}

// NewLogger creates a text logger at debug level for development and a
// JSON logger at info level otherwise
func NewLogger(isDevelopment bool) *Logger {
	var handler slog.Handler
	if isDevelopment {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return New(handler)
}

// New creates a Logger from an arbitrary slog handler
func New(handler slog.Handler) *Logger {
	return &Logger{Logger: slog.New(handler)}
}

// WithFields returns a child logger that always includes the given fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.Logger.With(args...)}
}
