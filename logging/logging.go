// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Init creates and sets the default slog logger. pretty selects the
// colored development handler; otherwise records are written as JSON.
func Init(w io.Writer, level slog.Level, pretty bool) *slog.Logger {
	var handler slog.Handler
	if pretty {
		handler = NewPrettyHandler(w, PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{Level: level},
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
