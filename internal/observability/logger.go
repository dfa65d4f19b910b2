package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide JSON logger. The service and env
// fields ride along on every line so aggregated logs stay attributable,
// and the trace handler stamps ids when a span is active.
func NewLogger(serviceName, env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler)).With(
		slog.String("service", serviceName),
		slog.String("env", env),
	)
}
