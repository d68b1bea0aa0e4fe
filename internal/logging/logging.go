// Package logging provides JSON-lines structured logging for the redline
// learning service.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelInfo,
		Debug:  false,
	}
}

// New creates a new JSON-lines structured logger. Log lines look like:
//
//	{"ts":"2024-01-15T10:30:00Z","level":"INFO","msg":"daemon started","pid":12345}
//
// Log levels:
//   - debug: Verbose (enabled via REDLINE_DEBUG=1)
//   - info: Startup, shutdown, comparison results
//   - warn: Non-fatal issues (overlay degraded, skipped lines)
//   - error: Failures requiring attention
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	handler := slog.NewJSONHandler(output, opts)
	return slog.New(handler)
}

// NewFromEnv creates a logger at the given configured level.
// REDLINE_DEBUG=1 overrides the level to debug.
func NewFromEnv(level string) *slog.Logger {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(level)
	if os.Getenv("REDLINE_DEBUG") == "1" {
		cfg.Debug = true
	}
	return New(cfg)
}

// ParseLevel maps a config level name to a slog.Level; unknown names map
// to info.
func ParseLevel(level string) slog.Level {
	switch level {
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

// LogStartup logs daemon startup information.
func LogStartup(logger *slog.Logger, version, configPath, dbPath, addr string, pid int) {
	logger.Info("daemon started",
		"version", version,
		"config_path", configPath,
		"database_path", dbPath,
		"listen_addr", addr,
		"pid", pid,
	)
}

// LogShutdown logs daemon shutdown.
func LogShutdown(logger *slog.Logger, reason string) {
	logger.Info("daemon shutting down", "reason", reason)
}
