// Package logger configures structured logging for the review daemon.
// Decisions are audited through the ledger, not the log stream, so the log
// format favors operators: JSON records tagged with the service name, ready
// for the bank's log aggregation.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/omnibank/reviewd/internal/config"
)

// defaultService tags records when logging.service is not configured.
const defaultService = "reviewd"

// New creates a *slog.Logger from the given Logging config. Output is JSON
// to stdout; at debug level each record also carries its source location,
// which helps when tracing a single item through a review pass.
func New(cfg config.Logging) *slog.Logger {
	level := parseLevel(cfg.Level)

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})

	service := strings.TrimSpace(cfg.Service)
	if service == "" {
		service = defaultService
	}
	return slog.New(handler).With("service", service)
}

// parseLevel converts a string log level to slog.Level. Unknown values fall
// back to info rather than erroring; a typo in logging config must never
// keep the daemon from starting.
func parseLevel(s string) slog.Level {
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
