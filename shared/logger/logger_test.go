package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, output *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(output.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel string
	}{
		{name: "debug passes debug", level: "debug", wantLevel: "DEBUG"},
		{name: "info drops debug", level: "info", wantLevel: "INFO"},
		{name: "warn drops info", level: "warn", wantLevel: "WARN"},
		{name: "error drops warn", level: "error", wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}
			logger, err := New(&Config{Level: tt.level, Format: "json", writer: output})
			require.NoError(t, err)

			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")

			entries := decodeLines(t, output)
			require.NotEmpty(t, entries)
			assert.Equal(t, tt.wantLevel, entries[0]["level"])
		})
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{Level: "info", Format: "console", TimeFormat: time.RFC3339, writer: output})
	require.NoError(t, err)

	logger.Info("list uploaded", slog.String("job_id", "abc"))

	// tint abbreviates levels
	assert.Contains(t, output.String(), "INF")
	assert.Contains(t, output.String(), "list uploaded")
	assert.Contains(t, output.String(), "abc")
}

func TestNew_ServiceAttribute(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{Level: "info", Format: "json", Service: "api-service", writer: output})
	require.NoError(t, err)

	logger.Info("ready")

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	assert.Equal(t, "api-service", entries[0]["service"])
}

func TestNew_SourceLocation(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{Level: "info", Format: "json", EnableSource: true, writer: output})
	require.NoError(t, err)

	logger.Info("with source")

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	source, ok := entries[0]["source"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, source, "file")
	assert.Contains(t, source, "line")
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Info("to file", slog.Int("credits", 42))
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"credits":42`)
}

func TestNew_FileOutputBadPath(t *testing.T) {
	logger, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
	require.Error(t, err)
	assert.Nil(t, logger)
}

func TestNew_UnknownFormatFallsBackToJSON(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{Level: "info", Format: "logfmt", writer: output})
	require.NoError(t, err)

	logger.Info("fallback")

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	assert.Equal(t, "fallback", entries[0]["msg"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}
