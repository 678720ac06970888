package observability

import (
	"log/slog"
	"os"
)

func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	// decorate records with trace/span ids when a span is active
	return slog.New(NewTraceHandler(handler)).With(
		slog.String("service", "realtyhub"),
		slog.String("env", env),
	)
}
