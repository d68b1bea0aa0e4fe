// redlined is the correction learning daemon. It owns the SQLite training
// log and serves the learning API over HTTP until stopped.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/runger/redline/internal/config"
	"github.com/runger/redline/internal/daemon"
	"github.com/runger/redline/internal/logging"
)

// Version is set via ldflags during build.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "redlined: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	paths := config.DefaultPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	logger := logging.NewFromEnv(cfg.Daemon.LogLevel)
	logging.LogStartup(logger, Version, paths.ConfigFile(), cfg.Storage.DatabasePath, cfg.Daemon.ListenAddr, os.Getpid())
	defer logging.LogShutdown(logger, "exit")

	return daemon.Run(context.Background(), cfg, logger)
}
