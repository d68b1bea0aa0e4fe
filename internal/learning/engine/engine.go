// Package engine wires the learning pipeline together: extraction,
// comparison, the training log, rule aggregation, overrides and the overlay.
// It owns the mutex that serializes the append+rebuild path.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/runger/redline/internal/extract"
	"github.com/runger/redline/internal/learning/compare"
	"github.com/runger/redline/internal/learning/overlay"
	"github.com/runger/redline/internal/learning/override"
	"github.com/runger/redline/internal/learning/rules"
	"github.com/runger/redline/internal/learning/trainlog"
)

// ErrExtraction wraps failures to resolve a document reference. Nothing is
// written to the training log when extraction fails.
var ErrExtraction = errors.New("document extraction failed")

// CompareResult is what a comparison returns to the caller. Signals and the
// diff itself are not exposed; they live in the training log.
type CompareResult struct {
	SubmissionID  string  `json:"submission_id"`
	HasChanges    bool    `json:"has_changes"`
	ChangePercent float64 `json:"change_percent"`
	CharsDelta    int     `json:"chars_delta"`
	WordsDelta    int     `json:"words_delta"`
	SignalsFound  int     `json:"signals_found"`
	ActiveRules   int     `json:"active_rules"`
}

// StatsResult merges training log totals with rule status counts.
type StatsResult struct {
	trainlog.Stats
	ActiveRules     int `json:"active_rules"`
	WeakRules       int `json:"weak_rules"`
	ConflictedRules int `json:"conflicted_rules"`
	Overrides       int `json:"overrides"`
}

// Engine is the learning engine facade. All methods are safe for concurrent
// use; Compare calls are serialized so each rebuild observes a log that
// includes its own append.
type Engine struct {
	mu sync.Mutex

	extractor extract.Extractor
	log       *trainlog.Store
	agg       rules.Aggregator
	snapshots *rules.SnapshotStore
	overrides *override.Store
	overlay   *overlay.Builder
	seedKeys  map[string]bool
	logger    *slog.Logger
}

// Dependencies contains everything an Engine needs.
type Dependencies struct {
	Extractor  extract.Extractor
	Log        *trainlog.Store
	Aggregator rules.Aggregator
	Snapshots  *rules.SnapshotStore
	Overrides  *override.Store
	Overlay    *overlay.Builder
	Logger     *slog.Logger

	// SeedKeys holds normalized rule keys for curated correction pairs.
	// Seeded pairs pass the signal closeness filter regardless of edit
	// distance; rule status follows the normal lifecycle.
	SeedKeys map[string]bool
}

// New creates an engine from its dependencies.
func New(deps Dependencies) *Engine {
	if deps.Extractor == nil {
		deps.Extractor = extract.Inline{}
	}
	if deps.Overlay == nil {
		deps.Overlay = overlay.NewBuilder(0)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Engine{
		extractor: deps.Extractor,
		log:       deps.Log,
		agg:       deps.Aggregator,
		snapshots: deps.Snapshots,
		overrides: deps.Overrides,
		overlay:   deps.Overlay,
		seedKeys:  deps.SeedKeys,
		logger:    deps.Logger,
	}
}

// Compare resolves both references, diffs them, appends the training log
// entry and synchronously rebuilds the rule snapshot. The new snapshot is
// visible before the call returns.
func (e *Engine) Compare(ctx context.Context, submissionID, draftRef, finalRef string) (*CompareResult, error) {
	if submissionID == "" {
		return nil, errors.New("submission_id is required")
	}

	draft, err := e.extractor.Extract(ctx, draftRef)
	if err != nil {
		return nil, fmt.Errorf("%w: draft: %v", ErrExtraction, err)
	}
	final, err := e.extractor.Extract(ctx, finalRef)
	if err != nil {
		return nil, fmt.Errorf("%w: final: %v", ErrExtraction, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	started := time.Now()
	entry := compare.Compare(submissionID, draft, final, e.seedKeys)
	if err := e.log.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record comparison: %w", err)
	}

	snap, err := e.agg.Rebuild(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild rules: %w", err)
	}
	if err := e.snapshots.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to save rule snapshot: %w", err)
	}

	e.logger.Info("comparison recorded",
		"submission_id", submissionID,
		"signals", len(entry.Signals),
		"lines_changed", entry.LinesChanged,
		"active_rules", len(snap.Active),
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return &CompareResult{
		SubmissionID:  submissionID,
		HasChanges:    entry.HasChanges,
		ChangePercent: entry.ChangePercent,
		CharsDelta:    entry.FinalChars - entry.DraftChars,
		WordsDelta:    entry.FinalWords - entry.DraftWords,
		SignalsFound:  len(entry.Signals),
		ActiveRules:   len(snap.Active),
	}, nil
}

// Rules returns the latest snapshot. Before the first comparison, and when
// the stored snapshot is unreadable or corrupt, it returns an empty
// snapshot rather than an error: read paths fail open.
func (e *Engine) Rules(ctx context.Context) (*rules.Snapshot, error) {
	snap, err := e.snapshots.Load(ctx)
	if err != nil {
		if !errors.Is(err, rules.ErrNoSnapshot) {
			e.logger.Warn("rules degraded to empty snapshot", "error", err)
		}
		return &rules.Snapshot{GeneratedAt: time.Now()}, nil
	}
	return snap, nil
}

// Overlay renders the export block from the latest snapshot minus disabled
// rules. Any failure degrades to an empty overlay: a broken learning store
// must never block drafting.
func (e *Engine) Overlay(ctx context.Context) string {
	snap, err := e.snapshots.Load(ctx)
	if err != nil {
		if !errors.Is(err, rules.ErrNoSnapshot) {
			e.logger.Warn("overlay degraded to empty", "error", err)
		}
		return ""
	}
	disabled, err := e.overrides.Disabled(ctx)
	if err != nil {
		e.logger.Warn("overlay degraded to empty", "error", err)
		return ""
	}
	return e.overlay.Build(snap, disabled)
}

// Overrides returns the current disabled map. An unreadable override store
// degrades to an empty map.
func (e *Engine) Overrides(ctx context.Context) (map[string]override.Override, error) {
	disabled, err := e.overrides.Disabled(ctx)
	if err != nil {
		e.logger.Warn("overrides degraded to empty", "error", err)
		return map[string]override.Override{}, nil
	}
	return disabled, nil
}

// SetOverride toggles the disabled flag for a rule key.
func (e *Engine) SetOverride(ctx context.Context, key string, disabled bool, reason string) error {
	return e.overrides.Set(ctx, key, disabled, reason)
}

// Stats returns monitoring totals over the log plus rule status counts.
func (e *Engine) Stats(ctx context.Context) (*StatsResult, error) {
	logStats, err := e.log.Stats(ctx)
	if err != nil {
		return nil, err
	}
	out := &StatsResult{Stats: *logStats}

	snap, err := e.snapshots.Load(ctx)
	if err == nil {
		out.ActiveRules = len(snap.Active)
		out.WeakRules = len(snap.Weak)
		out.ConflictedRules = len(snap.Conflicted)
	} else if !errors.Is(err, rules.ErrNoSnapshot) {
		e.logger.Warn("stats missing rule counts", "error", err)
	}

	disabled, err := e.overrides.Disabled(ctx)
	if err == nil {
		out.Overrides = len(disabled)
	}
	return out, nil
}

// TrainingData exports the most recent entries with their signals, newest
// first. limit <= 0 returns everything.
func (e *Engine) TrainingData(ctx context.Context, limit int) ([]trainlog.Entry, error) {
	return e.log.Entries(ctx, limit)
}
