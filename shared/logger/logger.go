// Package logger builds the slog loggers used by every binary.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Config holds logger configuration
type Config struct {
	Level        string // debug, info, warn, error
	Format       string // json, console
	Output       string // stdout, stderr, or file path
	EnableSource bool
	TimeFormat   string // console only
	Service      string

	writer io.Writer // overrides Output in tests
}

// Logger is a slog.Logger that owns its output file, if any
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// New builds a logger. Unknown formats fall back to JSON and unknown levels to info.
func New(config *Config) (*Logger, error) {
	out, closer, err := openOutput(config)
	if err != nil {
		return nil, err
	}

	logger := slog.New(newHandler(config, out, closer != nil))
	if config.Service != "" {
		logger = logger.With(slog.String("service", config.Service))
	}

	return &Logger{Logger: logger, closer: closer}, nil
}

func newHandler(config *Config, out io.Writer, toFile bool) slog.Handler {
	level := parseLevel(config.Level)

	if config.Format != "console" && config.Format != "" {
		return slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:     level,
			AddSource: config.EnableSource,
		})
	}

	timeFormat := config.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	return tint.NewHandler(out, &tint.Options{
		Level:      level,
		AddSource:  config.EnableSource,
		TimeFormat: timeFormat,
		NoColor:    toFile,
	})
}

// Close releases the log file when output is a file path
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func openOutput(config *Config) (io.Writer, io.Closer, error) {
	if config.writer != nil {
		return config.writer, nil, nil
	}

	switch config.Output {
	case "", "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	}

	f, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", config.Output, err)
	}
	return f, f, nil
}

// parseLevel accepts slog level names in any case, plus "warning"
func parseLevel(s string) slog.Level {
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
