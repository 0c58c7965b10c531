// Package logging provides the structured logger used across the service.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog behind the key/value call style used across the service:
// Debug/Info/Warn/Error(msg, "key", value, ...).
type Logger struct {
	*slog.Logger
}

// NewLogger creates a text Logger on stdout at info level.
func NewLogger() *Logger {
	return New("info", "text", os.Stdout)
}

// New creates a Logger writing to w at the given level and format. Unknown
// levels fall back to info, unknown formats to text.
func New(level, format string, w io.Writer) *Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}
