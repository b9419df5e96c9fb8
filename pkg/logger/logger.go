package logger

import (
	"log/slog"
	"os"
)

var Log *slog.Logger

// Init sets up the global JSON logger. Every line carries the service name
// so aggregated logs from co-deployed services stay attributable.
func Init(service string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler).With("service", service)
}
