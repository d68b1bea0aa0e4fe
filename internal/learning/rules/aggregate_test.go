package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/redline/internal/learning/signal"
	"github.com/runger/redline/internal/learning/trainlog"
)

// fakeLog is an in-memory LogReader.
type fakeLog struct {
	records []trainlog.Record
	entries int
}

func (f *fakeLog) AllRecords(context.Context) ([]trainlog.Record, error) {
	return f.records, nil
}

func (f *fakeLog) CountEntries(context.Context) (int, error) {
	return f.entries, nil
}

func rec(submission, from, to string, kind signal.Kind, ts time.Time) trainlog.Record {
	return trainlog.Record{
		Signal: signal.Signal{
			FromRaw: from, ToRaw: to,
			FromNorm: from, ToNorm: to,
			Kind: kind, Confidence: 0.7,
		},
		SubmissionID: submission,
		Timestamp:    ts,
	}
}

func rebuild(t *testing.T, log *fakeLog, cfg Config) *Snapshot {
	t.Helper()
	snap, err := NewRecompute(log, cfg).Rebuild(context.Background())
	require.NoError(t, err)
	return snap
}

func TestRebuild_EmptyLog(t *testing.T) {
	snap := rebuild(t, &fakeLog{}, DefaultConfig())

	assert.Empty(t, snap.Active)
	assert.Empty(t, snap.Weak)
	assert.Empty(t, snap.Conflicted)
	assert.Zero(t, snap.EntriesAnalyzed)
	assert.Equal(t, 2, snap.MinOccurrences)
}

func TestRebuild_TwoOccurrencesBecomeActive(t *testing.T) {
	now := time.Now()
	log := &fakeLog{
		entries: 2,
		records: []trainlog.Record{
			rec("sub-1", "avacado", "avocado", signal.KindSpelling, now.Add(-time.Hour)),
			rec("sub-2", "avacado", "avocado", signal.KindSpelling, now),
		},
	}

	snap := rebuild(t, log, DefaultConfig())

	require.Len(t, snap.Active, 1)
	r := snap.Active[0]
	assert.Equal(t, "avacado=>avocado", r.Key)
	assert.Equal(t, StatusActive, r.Status)
	assert.Equal(t, 2, r.Occurrences)
	assert.Equal(t, 2, r.SubmissionCount)
	assert.Equal(t, 1.0, r.DominanceRatio)
	// 0.4 + 2*0.08 + 2*0.04 = 0.64
	assert.InDelta(t, 0.64, r.Confidence, 1e-9)
	assert.Equal(t, now.Unix(), r.LastSeenAt.Unix())
}

func TestRebuild_SingleOccurrenceStaysWeak(t *testing.T) {
	log := &fakeLog{
		entries: 1,
		records: []trainlog.Record{
			rec("sub-1", "crust", "rim", signal.KindSpelling, time.Now()),
		},
	}

	snap := rebuild(t, log, DefaultConfig())

	assert.Empty(t, snap.Active)
	require.Len(t, snap.Weak, 1)
	assert.Equal(t, StatusWeak, snap.Weak[0].Status)
	// 0.4 + 0.08 + 0.04 = 0.52
	assert.InDelta(t, 0.52, snap.Weak[0].Confidence, 1e-9)
}

func TestRebuild_CompetingTargetsConflict(t *testing.T) {
	now := time.Now()
	log := &fakeLog{
		entries: 4,
		records: []trainlog.Record{
			rec("sub-1", "color", "colour", signal.KindSpelling, now),
			rec("sub-2", "color", "colour", signal.KindSpelling, now),
			rec("sub-3", "color", "couleur", signal.KindSpelling, now),
			rec("sub-4", "color", "couleur", signal.KindSpelling, now),
		},
	}

	snap := rebuild(t, log, DefaultConfig())

	assert.Empty(t, snap.Active)
	require.Len(t, snap.Conflicted, 2)
	for _, r := range snap.Conflicted {
		assert.Equal(t, StatusConflicted, r.Status)
		assert.InDelta(t, 0.5, r.DominanceRatio, 1e-9)
		// 0.4 + 0.16 + 0.08 - 0.18 = 0.46
		assert.InDelta(t, 0.46, r.Confidence, 1e-9)
	}
}

func TestRebuild_DominantTargetStaysActive(t *testing.T) {
	now := time.Now()
	log := &fakeLog{
		entries: 5,
		records: []trainlog.Record{
			rec("sub-1", "teh", "the", signal.KindSpelling, now),
			rec("sub-2", "teh", "the", signal.KindSpelling, now),
			rec("sub-3", "teh", "the", signal.KindSpelling, now),
			rec("sub-4", "teh", "the", signal.KindSpelling, now),
			rec("sub-5", "teh", "then", signal.KindSpelling, now),
		},
	}

	snap := rebuild(t, log, DefaultConfig())

	require.Len(t, snap.Active, 1)
	assert.Equal(t, "teh=>the", snap.Active[0].Key)
	assert.InDelta(t, 0.8, snap.Active[0].DominanceRatio, 1e-9)
	// The minority target is weak (1 occurrence), not conflicted.
	require.Len(t, snap.Weak, 1)
	assert.Equal(t, "teh=>then", snap.Weak[0].Key)
}

func TestRebuild_DissimilarPairFollowsNormalLifecycle(t *testing.T) {
	// Terminology swaps reach the log via seed-pair extraction but earn
	// active status like any other rule: once is weak, twice is active.
	now := time.Now()
	log := &fakeLog{
		entries: 1,
		records: []trainlog.Record{
			rec("sub-1", "crust", "rim", signal.KindSpelling, now),
		},
	}

	snap := rebuild(t, log, DefaultConfig())

	assert.Empty(t, snap.Active)
	require.Len(t, snap.Weak, 1)
	assert.Equal(t, "crust=>rim", snap.Weak[0].Key)

	log.entries = 2
	log.records = append(log.records, rec("sub-2", "crust", "rim", signal.KindSpelling, now))

	snap = rebuild(t, log, DefaultConfig())

	require.Len(t, snap.Active, 1)
	assert.Equal(t, "crust=>rim", snap.Active[0].Key)
}

func TestRebuild_ConfidenceCaps(t *testing.T) {
	now := time.Now()
	var records []trainlog.Record
	for i := 0; i < 10; i++ {
		records = append(records, rec(
			string(rune('a'+i))+"-sub", "recieve", "receive", signal.KindSpelling, now))
	}
	log := &fakeLog{entries: 10, records: records}

	snap := rebuild(t, log, DefaultConfig())

	require.Len(t, snap.Active, 1)
	// 0.4 + cap(0.35) + cap(0.15) = 0.90
	assert.InDelta(t, 0.90, snap.Active[0].Confidence, 1e-9)
}

func TestRebuild_DiacriticBonus(t *testing.T) {
	now := time.Now()
	log := &fakeLog{
		entries: 2,
		records: []trainlog.Record{
			rec("sub-1", "cafe", "café", signal.KindDiacritic, now),
			rec("sub-2", "cafe", "café", signal.KindDiacritic, now),
		},
	}

	snap := rebuild(t, log, DefaultConfig())

	require.Len(t, snap.Active, 1)
	assert.Equal(t, signal.KindDiacritic, snap.Active[0].Kind)
	// 0.4 + 0.16 + 0.08 + 0.08 = 0.72
	assert.InDelta(t, 0.72, snap.Active[0].Confidence, 1e-9)
}

func TestRebuild_ExemplarsTrackLatestRawForms(t *testing.T) {
	now := time.Now()
	log := &fakeLog{
		entries: 2,
		records: []trainlog.Record{
			{
				Signal:       signal.Signal{FromRaw: "Teh", ToRaw: "The", FromNorm: "teh", ToNorm: "the", Kind: signal.KindSpelling},
				SubmissionID: "sub-1",
				Timestamp:    now.Add(-time.Hour),
			},
			{
				Signal:       signal.Signal{FromRaw: "teh", ToRaw: "the", FromNorm: "teh", ToNorm: "the", Kind: signal.KindSpelling},
				SubmissionID: "sub-2",
				Timestamp:    now,
			},
		},
	}

	snap := rebuild(t, log, DefaultConfig())

	require.Len(t, snap.Active, 1)
	assert.Equal(t, "teh", snap.Active[0].Source)
	assert.Equal(t, "the", snap.Active[0].Target)
}

func TestRebuild_SortOrder(t *testing.T) {
	now := time.Now()
	log := &fakeLog{
		entries: 5,
		records: []trainlog.Record{
			rec("sub-1", "aaa", "aab", signal.KindSpelling, now),
			rec("sub-2", "aaa", "aab", signal.KindSpelling, now),
			rec("sub-3", "zzz", "zzy", signal.KindSpelling, now),
			rec("sub-4", "zzz", "zzy", signal.KindSpelling, now),
			rec("sub-5", "zzz", "zzy", signal.KindSpelling, now),
		},
	}

	snap := rebuild(t, log, DefaultConfig())

	require.Len(t, snap.Active, 2)
	assert.Equal(t, "zzz=>zzy", snap.Active[0].Key)
	assert.Equal(t, "aaa=>aab", snap.Active[1].Key)
}

func TestMajorityKind(t *testing.T) {
	assert.Equal(t, signal.KindSpelling, majorityKind(map[signal.Kind]int{
		signal.KindSpelling: 3, signal.KindDiacritic: 1,
	}))
	// Ties resolve diacritic first, then punctuation.
	assert.Equal(t, signal.KindDiacritic, majorityKind(map[signal.Kind]int{
		signal.KindSpelling: 2, signal.KindDiacritic: 2,
	}))
	assert.Equal(t, signal.KindPunctuation, majorityKind(map[signal.Kind]int{
		signal.KindSpelling: 1, signal.KindPunctuation: 1,
	}))
}

func TestSeedKey(t *testing.T) {
	assert.Equal(t, "it's=>its", SeedKey("It’s", "Its"))
}

func TestSnapshot_AllAndFind(t *testing.T) {
	snap := &Snapshot{
		Active: []Rule{{Key: "a=>b"}},
		Weak:   []Rule{{Key: "c=>d"}},
	}

	assert.Len(t, snap.All(), 2)
	require.NotNil(t, snap.Find("c=>d"))
	assert.Nil(t, snap.Find("x=>y"))
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range []Status{StatusActive, StatusWeak, StatusConflicted} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, Status("").IsValid())
	assert.False(t, Status("Active").IsValid())
}
