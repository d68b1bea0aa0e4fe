// Package daemon runs the learning engine as a long-lived HTTP service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/runger/redline/internal/config"
	"github.com/runger/redline/internal/extract"
	"github.com/runger/redline/internal/learning/api"
	"github.com/runger/redline/internal/learning/db"
	"github.com/runger/redline/internal/learning/engine"
	"github.com/runger/redline/internal/learning/overlay"
	"github.com/runger/redline/internal/learning/override"
	"github.com/runger/redline/internal/learning/rules"
	"github.com/runger/redline/internal/learning/trainlog"
)

const shutdownTimeout = 10 * time.Second

// Server owns the HTTP listener, the database handle and the engine.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	database *db.DB
	engine   *engine.Engine
	httpSrv  *http.Server
}

// NewServer builds a fully wired server from configuration. The database is
// opened and migrated here so startup fails fast on a broken store.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	database, err := db.Open(ctx, db.Options{Path: cfg.Storage.DatabasePath})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	extractor, err := extract.NewFileExtractor(cfg.Storage.DocumentsDir)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	logStore := trainlog.NewStore(database.DB())
	seedKeys := make(map[string]bool, len(cfg.Learning.SeedPairs))
	for _, p := range cfg.Learning.SeedPairs {
		seedKeys[rules.SeedKey(p.Source, p.Target)] = true
	}
	agg := rules.NewRecompute(logStore, rules.Config{
		MinOccurrences:     cfg.Learning.MinOccurrences,
		DominanceThreshold: cfg.Learning.DominanceThreshold,
		Logger:             logger,
	})

	eng := engine.New(engine.Dependencies{
		Extractor:  extractor,
		Log:        logStore,
		Aggregator: agg,
		Snapshots:  rules.NewSnapshotStore(database.DB()),
		Overrides:  override.NewStore(database.DB(), logger),
		Overlay:    overlay.NewBuilder(cfg.Overlay.MaxRules),
		Logger:     logger,
		SeedKeys:   seedKeys,
	})

	mux := http.NewServeMux()
	api.NewHandler(eng, logger).RegisterRoutes(mux)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		database: database,
		engine:   eng,
		httpSrv: &http.Server{
			Addr:         cfg.Daemon.ListenAddr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}, nil
}

// Engine exposes the wired engine, for in-process callers.
func (s *Server) Engine() *engine.Engine {
	return s.engine
}

// Start serves HTTP until the context is canceled, then shuts down
// gracefully and closes the database.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		s.closeDatabase()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http shutdown failed", "error", err)
	}
	<-errCh
	s.closeDatabase()
	return nil
}

func (s *Server) closeDatabase() {
	if err := s.database.Close(); err != nil {
		s.logger.Error("failed to close database", "error", err)
	}
}
