package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger creates a *slog.Logger writing to os.Stderr and sets it as the
// default logger. Format "json" produces JSON lines, anything else text with
// source positions. Level is one of debug, info, warn, error; defaults to info.
func NewLogger(cfg LogConfig) *slog.Logger {
	logger := slog.New(newHandler(cfg, os.Stderr))
	slog.SetDefault(logger)
	return logger
}

func newHandler(cfg LogConfig, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
