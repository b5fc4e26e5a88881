package worker

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the structured logger shared by the worker, scheduler and
// stream consumer. Unrecognized levels fall back to info; format "json"
// selects JSON output, anything else is text.
func NewLogger(level, format string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
