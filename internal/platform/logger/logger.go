package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Development gets text output, everything
// else JSON for log shipping.
func New(environment string) *slog.Logger {
	var handler slog.Handler
	if environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	return slog.New(handler).With("service", "vecinal")
}
