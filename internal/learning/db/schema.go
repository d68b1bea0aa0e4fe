package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the current supported schema version.
const SchemaVersion = 1

// schema creates all tables for the correction learning engine.
//
// Tables:
//  1. comparison_entry   - one immutable row per draft/final comparison
//  2. replacement_signal - token substitutions extracted per comparison
//  3. rule_snapshot      - single-row derived rule snapshot (atomic replace)
//  4. rule_override      - operator-controlled disable list
//  5. schema_migrations  - migration version tracking
const schema = `
-- 1. Comparison entries (the append-only training log)
CREATE TABLE IF NOT EXISTS comparison_entry (
  id               TEXT PRIMARY KEY,
  submission_id    TEXT NOT NULL,
  ts_ms            INTEGER NOT NULL,
  draft_chars      INTEGER NOT NULL,
  final_chars      INTEGER NOT NULL,
  draft_words      INTEGER NOT NULL,
  final_words      INTEGER NOT NULL,
  has_changes      INTEGER NOT NULL,
  change_percent   REAL NOT NULL,
  lines_compared   INTEGER NOT NULL,
  lines_changed    INTEGER NOT NULL,
  draft_excerpt    TEXT NOT NULL DEFAULT '',
  final_excerpt    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entry_ts ON comparison_entry(ts_ms);
CREATE INDEX IF NOT EXISTS idx_entry_submission ON comparison_entry(submission_id);

-- 2. Replacement signals (embedded in their entry, written in the same tx)
CREATE TABLE IF NOT EXISTS replacement_signal (
  id             INTEGER PRIMARY KEY AUTOINCREMENT,
  entry_id       TEXT NOT NULL REFERENCES comparison_entry(id),
  submission_id  TEXT NOT NULL,
  from_raw       TEXT NOT NULL,
  to_raw         TEXT NOT NULL,
  from_norm      TEXT NOT NULL,
  to_norm        TEXT NOT NULL,
  kind           TEXT NOT NULL,
  confidence     REAL NOT NULL,
  line_index     INTEGER NOT NULL,
  ts_ms          INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signal_key ON replacement_signal(from_norm, to_norm);
CREATE INDEX IF NOT EXISTS idx_signal_entry ON replacement_signal(entry_id);

-- 3. Derived rule snapshot, exactly one row, replaced wholesale per rebuild
CREATE TABLE IF NOT EXISTS rule_snapshot (
  id               INTEGER PRIMARY KEY CHECK (id = 1),
  generated_at_ms  INTEGER NOT NULL,
  min_occurrences  INTEGER NOT NULL,
  entries_analyzed INTEGER NOT NULL,
  payload          TEXT NOT NULL
);

-- 4. Operator overrides, keyed like rules ("source=>target")
CREATE TABLE IF NOT EXISTS rule_override (
  rule_key    TEXT PRIMARY KEY,
  disabled    INTEGER NOT NULL DEFAULT 1,
  reason      TEXT,
  updated_ms  INTEGER NOT NULL
);

-- 5. Schema migrations tracking
CREATE TABLE IF NOT EXISTS schema_migrations (
  version    INTEGER PRIMARY KEY,
  applied_ms INTEGER NOT NULL
);
`

// RunMigrations applies the schema and records the version.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	version, err := GetSchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, SchemaVersion)
	}
	if version < SchemaVersion {
		_, err = db.ExecContext(ctx,
			"INSERT OR IGNORE INTO schema_migrations (version, applied_ms) VALUES (?, ?)",
			SchemaVersion, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}
	return nil
}

// GetSchemaVersion returns the highest applied migration version, 0 if none.
func GetSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version sql.NullInt64
	err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to query schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

// ValidateSchema checks that all required tables exist.
func ValidateSchema(ctx context.Context, db *sql.DB) error {
	required := []string{
		"comparison_entry",
		"replacement_signal",
		"rule_snapshot",
		"rule_override",
		"schema_migrations",
	}
	for _, table := range required {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("required table %q is missing", table)
		}
		if err != nil {
			return fmt.Errorf("failed to validate table %q: %w", table, err)
		}
	}
	return nil
}
