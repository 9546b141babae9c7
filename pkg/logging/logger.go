// Package logging configures the process logger and provides HTTP request
// logging middleware.
package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New builds the process logger. Format "json" produces machine-readable
// output for production; anything else gets a colorized development handler.
func New(format string, level slog.Level) *slog.Logger {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	}
	return slog.New(handler)
}

// Init installs the configured logger as the slog default.
func Init(format string, level slog.Level) *slog.Logger {
	logger := New(format, level)
	slog.SetDefault(logger)
	return logger
}
