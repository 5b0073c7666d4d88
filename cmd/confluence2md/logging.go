package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/alnah/go-confluence2md/internal/config"
)

// newLogger builds the CLI logger on w. Verbose forces debug and quiet
// forces error; otherwise the configured level applies.
func newLogger(w io.Writer, cfg config.LogConfig, common commonFlags) *slog.Logger {
	opts := &slog.HandlerOptions{Level: resolveLogLevel(cfg.Level, common.quiet, common.verbose)}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// resolveLogLevel maps a config level name to a slog level.
// Priority: --verbose > --quiet > config > warn.
func resolveLogLevel(level string, quiet, verbose bool) slog.Level {
	switch {
	case verbose:
		return slog.LevelDebug
	case quiet:
		return slog.LevelError
	}

	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
