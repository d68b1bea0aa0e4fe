package trainlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/redline/internal/learning/db"
	"github.com/runger/redline/internal/learning/signal"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(context.Background(), db.Options{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database.DB())
}

func sampleEntry(submissionID string, ts time.Time, sigs ...signal.Signal) *Entry {
	return &Entry{
		SubmissionID:  submissionID,
		Timestamp:     ts,
		DraftChars:    100,
		FinalChars:    102,
		DraftWords:    20,
		FinalWords:    20,
		HasChanges:    len(sigs) > 0,
		ChangePercent: 10,
		LinesCompared: 5,
		LinesChanged:  1,
		DraftExcerpt:  "draft text",
		FinalExcerpt:  "final text",
		Signals:       sigs,
	}
}

func sig(from, to string, kind signal.Kind, line int) signal.Signal {
	return signal.Signal{
		FromRaw: from, ToRaw: to,
		FromNorm: from, ToNorm: to,
		Kind: kind, Confidence: 0.7, LineIndex: line,
	}
}

func TestAppend_AssignsIDAndTimestamp(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	e := sampleEntry("sub-1", time.Time{})
	require.NoError(t, store.Append(ctx, e))

	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
}

func TestAppend_Validation(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	assert.Error(t, store.Append(ctx, nil))
	assert.Error(t, store.Append(ctx, &Entry{}))
}

func TestAppend_RoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	ts := time.Now().Truncate(time.Millisecond)
	e := sampleEntry("sub-1", ts,
		sig("teh", "the", signal.KindSpelling, 0),
		sig("cafe", "café", signal.KindDiacritic, 2),
	)
	require.NoError(t, store.Append(ctx, e))

	entries, err := store.Entries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, "sub-1", got.SubmissionID)
	assert.Equal(t, ts.UnixMilli(), got.Timestamp.UnixMilli())
	assert.True(t, got.HasChanges)
	assert.Equal(t, "draft text", got.DraftExcerpt)
	require.Len(t, got.Signals, 2)
	assert.Equal(t, "teh=>the", got.Signals[0].Key())
	assert.Equal(t, signal.KindDiacritic, got.Signals[1].Kind)
}

func TestAllRecords_OldestFirst(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	require.NoError(t, store.Append(ctx, sampleEntry("sub-1", base, sig("teh", "the", signal.KindSpelling, 0))))
	require.NoError(t, store.Append(ctx, sampleEntry("sub-2", base.Add(time.Minute), sig("quik", "quick", signal.KindSpelling, 0))))

	records, err := store.AllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "sub-1", records[0].SubmissionID)
	assert.Equal(t, "sub-2", records[1].SubmissionID)
	assert.True(t, records[0].Timestamp.Before(records[1].Timestamp))
}

func TestEntries_NewestFirstWithLimit(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"sub-a", "sub-b", "sub-c"} {
		require.NoError(t, store.Append(ctx, sampleEntry(id, base.Add(time.Duration(i)*time.Minute))))
	}

	entries, err := store.Entries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "sub-c", entries[0].SubmissionID)
	assert.Equal(t, "sub-b", entries[1].SubmissionID)
}

func TestCountEntries(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	n, err := store.CountEntries(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, store.Append(ctx, sampleEntry("sub-1", time.Now())))
	n, err = store.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStats(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	last := time.Now().Truncate(time.Millisecond)
	require.NoError(t, store.Append(ctx, sampleEntry("sub-1", last.Add(-time.Minute),
		sig("teh", "the", signal.KindSpelling, 0),
		sig("cafe", "café", signal.KindDiacritic, 1),
	)))
	noChange := sampleEntry("sub-2", last)
	require.NoError(t, store.Append(ctx, noChange))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 1, stats.ChangedEntries)
	assert.Equal(t, 2, stats.Signals)
	assert.Equal(t, 1, stats.SignalsByKind["spelling"])
	assert.Equal(t, 1, stats.SignalsByKind["diacritic"])
	assert.Equal(t, last.UnixMilli(), stats.LastComparison.UnixMilli())
}
