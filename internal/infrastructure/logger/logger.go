package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger creates a JSON structured logger writing to stdout at level
func NewLogger(level string) *slog.Logger {
	return New(os.Stdout, level, "json")
}

// New creates a logger with the given output, level and format ("json" or "text")
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}

// ForEnvironment picks a readable text format in development and JSON elsewhere
func ForEnvironment(environment, level string) *slog.Logger {
	if environment == "development" {
		return New(os.Stdout, level, "text")
	}
	return NewLogger(level)
}

// Discard returns a logger that drops everything, for tests
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
