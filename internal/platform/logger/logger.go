package logger

import (
	"log/slog"
	"os"
)

// New returns the shared structured logger. JSON on stdout so log shippers
// can pick it up without extra parsing.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
