package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/runger/redline/internal/config"
	"github.com/runger/redline/internal/daemon"
	"github.com/runger/redline/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the learning daemon",
	Long: `Run the correction learning daemon in the foreground.

The daemon serves the HTTP API on the configured listen address and owns
the SQLite training log. Stop it with Ctrl-C or SIGTERM.

Examples:
  redline serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
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
