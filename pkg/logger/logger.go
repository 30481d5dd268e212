package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Options controls handler selection. Zero values fall back to the env defaults.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

func Init(env string) {
	InitWithOptions(env, Options{})
}

func InitWithOptions(env string, opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	level := slog.LevelDebug
	format := "text"
	if env == "production" {
		level = slog.LevelInfo
		format = "json"
	}
	if opts.Level != "" {
		level = ParseLevel(opts.Level)
	}
	if opts.Format != "" {
		format = opts.Format
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}

	defaultLogger = slog.New(handler).With("service", "warehouse-management")
	slog.SetDefault(defaultLogger)
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}

// Discard returns a logger that drops everything, for tests and CLI quiet mode.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
