package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoSnapshot is returned by Load before the first rebuild has run.
var ErrNoSnapshot = errors.New("no rule snapshot exists")

// SnapshotStore persists the derived rule snapshot as a single row that is
// replaced wholesale inside one transaction, so readers always observe a
// complete snapshot.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore creates a snapshot store.
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save atomically replaces the stored snapshot.
func (s *SnapshotStore) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.New("snapshot is nil")
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rule_snapshot (id, generated_at_ms, min_occurrences, entries_analyzed, payload)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			generated_at_ms  = excluded.generated_at_ms,
			min_occurrences  = excluded.min_occurrences,
			entries_analyzed = excluded.entries_analyzed,
			payload          = excluded.payload`,
		snap.GeneratedAt.UnixMilli(), snap.MinOccurrences, snap.EntriesAnalyzed, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or ErrNoSnapshot if none exists yet.
func (s *SnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM rule_snapshot WHERE id = 1").Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}
