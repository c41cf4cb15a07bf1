package app

import (
	"io"
	"log/slog"
)

// newLogger builds the app-scoped logger writing to outW. Nothing is
// installed globally: every App owns its logger, so concurrent grid runs in
// tests capture their own output. An unrecognized level falls back to info,
// matching the CLI default.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
