// Command assistant runs the voice assistant session.
package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger builds the process logger from ASSISTANT_LOG_LEVEL and
// ASSISTANT_LOG_FORMAT. Logs go to w; console text goes to stdout.
func setupLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ASSISTANT_LOG_LEVEL"))) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(strings.TrimSpace(os.Getenv("ASSISTANT_LOG_FORMAT"))) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
