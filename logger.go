package main

import (
	"log/slog"
	"os"
)

// NewLogger returns a JSON slog.Logger writing to stderr at level. Stdout is
// left to the headless console output.
func NewLogger(level slog.Leveler) *slog.Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
