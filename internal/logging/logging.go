package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds the process logger, installs it as slog's default, and
// returns it. The level string is "debug", "info", "warn" or "error"
// (case-insensitive); anything else falls back to info. Debug level also
// turns on source locations.
func Setup(level string) *slog.Logger {
	lvl := parseLevel(level)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
