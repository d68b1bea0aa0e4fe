package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutputWithTsKey(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Output: &buf})

	logger.Info("hello", "key", "value")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "value", line["key"])
	assert.Contains(t, line, "ts")
	assert.NotContains(t, line, "time")
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Level: slog.LevelInfo})

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_DebugOverridesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Level: slog.LevelInfo, Debug: true})

	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestNew_NilConfig(t *testing.T) {
	assert.NotNil(t, New(nil))
}

func TestNewFromEnv_Debug(t *testing.T) {
	t.Setenv("REDLINE_DEBUG", "1")
	assert.NotNil(t, NewFromEnv("info"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestStartupShutdownHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Output: &buf})

	LogStartup(logger, "1.0.0", "/etc/config.yaml", "/var/learning.db", "127.0.0.1:7433", 42)
	LogShutdown(logger, "signal")

	out := buf.String()
	assert.Contains(t, out, "daemon started")
	assert.Contains(t, out, "1.0.0")
	assert.Contains(t, out, "daemon shutting down")
}
