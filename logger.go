package poolbot

import (
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("component", "poolbot")

// SetLogger replaces the logger used by processors and builders.
func SetLogger(l *slog.Logger) {
	logger = l
}
