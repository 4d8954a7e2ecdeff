// Package logger builds the process wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"truetrace/internal/platform/config"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// Options select the handler and the attributes attached to every record.
type Options struct {
	Level   string
	JSON    bool
	Service string
	Version string
	Output  io.Writer
}

// FromConfig maps the LOG_* settings onto Options.
func FromConfig(cfg config.LogConfig, service string) Options {
	return Options{
		Level:   cfg.Level,
		JSON:    cfg.Format != "text",
		Service: service,
		Version: Version,
	}
}

// New returns a slog logger writing to stdout unless Output is set.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	l := slog.New(handler)
	if opts.Service != "" {
		l = l.With("service", opts.Service)
	}
	if opts.Version != "" {
		l = l.With("version", opts.Version)
	}
	return l
}

// ParseLevel maps debug|info|warn|error to a level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
