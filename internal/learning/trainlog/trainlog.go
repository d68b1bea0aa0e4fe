// Package trainlog implements the append-only training log: one immutable
// entry per draft/final comparison, each carrying the replacement signals
// found. The log is the sole source of truth for learning; entries are never
// mutated or deleted. Entry and signals are written in a single transaction
// so concurrent appends cannot interleave.
package trainlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/runger/redline/internal/learning/signal"
)

var errNilEntry = errors.New("entry is nil")

// Entry is one immutable comparison record.
type Entry struct {
	ID            string          `json:"id"`
	SubmissionID  string          `json:"submission_id"`
	Timestamp     time.Time       `json:"timestamp"`
	DraftChars    int             `json:"draft_chars"`
	FinalChars    int             `json:"final_chars"`
	DraftWords    int             `json:"draft_words"`
	FinalWords    int             `json:"final_words"`
	HasChanges    bool            `json:"has_changes"`
	ChangePercent float64         `json:"change_percent"`
	LinesCompared int             `json:"lines_compared"`
	LinesChanged  int             `json:"lines_changed"`
	DraftExcerpt  string          `json:"draft_excerpt"`
	FinalExcerpt  string          `json:"final_excerpt"`
	Signals       []signal.Signal `json:"signals"`
}

// Record is a signal joined with its entry context, as the aggregator
// consumes it.
type Record struct {
	signal.Signal
	SubmissionID string
	Timestamp    time.Time
}

// Stats summarizes the log for monitoring. These numbers do not feed the
// learning model.
type Stats struct {
	Entries        int            `json:"entries"`
	ChangedEntries int            `json:"changed_entries"`
	Signals        int            `json:"signals"`
	SignalsByKind  map[string]int `json:"signals_by_kind"`
	LastComparison time.Time      `json:"last_comparison"`
}

// Store persists comparison entries in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a training log store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes the entry and its signals atomically. The entry is assigned
// an ID and timestamp if missing. The written entry is never touched again.
func (s *Store) Append(ctx context.Context, e *Entry) error {
	if e == nil {
		return errNilEntry
	}
	if e.SubmissionID == "" {
		return errors.New("submission_id is required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	tsMs := e.Timestamp.UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin append transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO comparison_entry (
			id, submission_id, ts_ms,
			draft_chars, final_chars, draft_words, final_words,
			has_changes, change_percent, lines_compared, lines_changed,
			draft_excerpt, final_excerpt
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SubmissionID, tsMs,
		e.DraftChars, e.FinalChars, e.DraftWords, e.FinalWords,
		boolToInt(e.HasChanges), e.ChangePercent, e.LinesCompared, e.LinesChanged,
		e.DraftExcerpt, e.FinalExcerpt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comparison entry: %w", err)
	}

	for _, sig := range e.Signals {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO replacement_signal (
				entry_id, submission_id,
				from_raw, to_raw, from_norm, to_norm,
				kind, confidence, line_index, ts_ms
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.SubmissionID,
			sig.FromRaw, sig.ToRaw, sig.FromNorm, sig.ToNorm,
			string(sig.Kind), sig.Confidence, sig.LineIndex, tsMs,
		)
		if err != nil {
			return fmt.Errorf("failed to insert replacement signal: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit comparison entry: %w", err)
	}
	return nil
}

// AllRecords returns every signal in the log with its entry context, oldest
// first. The aggregator recomputes the full rule set from this.
func (s *Store) AllRecords(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT submission_id, from_raw, to_raw, from_norm, to_norm,
		       kind, confidence, line_index, ts_ms
		FROM replacement_signal
		ORDER BY ts_ms ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var kind string
		var tsMs int64
		err := rows.Scan(&r.SubmissionID, &r.FromRaw, &r.ToRaw, &r.FromNorm, &r.ToNorm,
			&kind, &r.Confidence, &r.LineIndex, &tsMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal row: %w", err)
		}
		r.Kind = signal.Kind(kind)
		r.Timestamp = time.UnixMilli(tsMs)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountEntries returns the number of entries in the log.
func (s *Store) CountEntries(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comparison_entry").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// Entries returns the most recent entries with their signals, newest first.
// limit <= 0 returns everything.
func (s *Store) Entries(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, submission_id, ts_ms,
		       draft_chars, final_chars, draft_words, final_words,
		       has_changes, change_percent, lines_compared, lines_changed,
		       draft_excerpt, final_excerpt
		FROM comparison_entry
		ORDER BY ts_ms DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var tsMs int64
		var hasChanges int
		err := rows.Scan(&e.ID, &e.SubmissionID, &tsMs,
			&e.DraftChars, &e.FinalChars, &e.DraftWords, &e.FinalWords,
			&hasChanges, &e.ChangePercent, &e.LinesCompared, &e.LinesChanged,
			&e.DraftExcerpt, &e.FinalExcerpt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		e.Timestamp = time.UnixMilli(tsMs)
		e.HasChanges = hasChanges != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		if err := s.loadSignals(ctx, &entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *Store) loadSignals(ctx context.Context, e *Entry) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT from_raw, to_raw, from_norm, to_norm, kind, confidence, line_index
		FROM replacement_signal
		WHERE entry_id = ?
		ORDER BY id ASC`, e.ID)
	if err != nil {
		return fmt.Errorf("failed to query entry signals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sig signal.Signal
		var kind string
		err := rows.Scan(&sig.FromRaw, &sig.ToRaw, &sig.FromNorm, &sig.ToNorm,
			&kind, &sig.Confidence, &sig.LineIndex)
		if err != nil {
			return fmt.Errorf("failed to scan entry signal: %w", err)
		}
		sig.Kind = signal.Kind(kind)
		e.Signals = append(e.Signals, sig)
	}
	return rows.Err()
}

// Stats computes monitoring totals over the whole log.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{SignalsByKind: make(map[string]int)}

	var lastTs sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(has_changes), 0),
		       COALESCE(MAX(ts_ms), 0)
		FROM comparison_entry`).Scan(&st.Entries, &st.ChangedEntries, &lastTs)
	if err != nil {
		return nil, fmt.Errorf("failed to query entry stats: %w", err)
	}
	if lastTs.Valid && lastTs.Int64 > 0 {
		st.LastComparison = time.UnixMilli(lastTs.Int64)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT kind, COUNT(*) FROM replacement_signal GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("failed to query signal stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan signal stats: %w", err)
		}
		st.SignalsByKind[kind] = n
		st.Signals += n
	}
	return st, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
