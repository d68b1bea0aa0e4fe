package compare

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_Identical(t *testing.T) {
	text := "The quick brown fox.\nJumps over the lazy dog."
	entry := Compare("sub-1", text, text, nil)

	assert.Equal(t, "sub-1", entry.SubmissionID)
	assert.False(t, entry.HasChanges)
	assert.Zero(t, entry.ChangePercent)
	assert.Equal(t, 2, entry.LinesCompared)
	assert.Zero(t, entry.LinesChanged)
	assert.Empty(t, entry.Signals)
}

func TestCompare_WhitespaceOnlyChangesIgnored(t *testing.T) {
	draft := "hello   world\n  indented line"
	final := "hello world\nindented   line"

	entry := Compare("sub-1", draft, final, nil)

	assert.Equal(t, 2, entry.LinesCompared)
	assert.Zero(t, entry.LinesChanged)
	assert.Empty(t, entry.Signals)
	// Whole-document comparison still sees the raw difference.
	assert.True(t, entry.HasChanges)
}

func TestCompare_SpellingCorrection(t *testing.T) {
	draft := "I ate an avacado today.\nIt was good."
	final := "I ate an avocado today.\nIt was good."

	entry := Compare("sub-1", draft, final, nil)

	assert.True(t, entry.HasChanges)
	assert.Equal(t, 2, entry.LinesCompared)
	assert.Equal(t, 1, entry.LinesChanged)
	assert.InDelta(t, 50.0, entry.ChangePercent, 1e-9)
	require.Len(t, entry.Signals, 1)
	assert.Equal(t, "avacado=>avocado", entry.Signals[0].Key())
	assert.Equal(t, 0, entry.Signals[0].LineIndex)
}

func TestCompare_UnevenLineCounts(t *testing.T) {
	draft := "line one"
	final := "line one\nline two added"

	entry := Compare("sub-1", draft, final, nil)

	assert.Equal(t, 2, entry.LinesCompared)
	assert.Equal(t, 1, entry.LinesChanged)
}

func TestCompare_EmptyLinesSkipped(t *testing.T) {
	draft := "first\n\n\nsecond"
	final := "first\n\n\nsecond"

	entry := Compare("sub-1", draft, final, nil)

	assert.Equal(t, 2, entry.LinesCompared)
}

func TestCompare_DocumentStats(t *testing.T) {
	entry := Compare("sub-1", "one two three", "one two three four", nil)

	assert.Equal(t, 13, entry.DraftChars)
	assert.Equal(t, 18, entry.FinalChars)
	assert.Equal(t, 3, entry.DraftWords)
	assert.Equal(t, 4, entry.FinalWords)
}

func TestCompare_DedupesRepeatedSignalOnLine(t *testing.T) {
	// The same substitution twice on one line collapses to one signal.
	entry := Compare("sub-1", "teh cat and teh dog", "the cat and the dog", nil)

	require.Len(t, entry.Signals, 1)
	assert.Equal(t, "teh=>the", entry.Signals[0].Key())
}

func TestCompare_SameSignalOnDifferentLinesKept(t *testing.T) {
	entry := Compare("sub-1", "teh cat\nteh dog", "the cat\nthe dog", nil)

	require.Len(t, entry.Signals, 2)
	assert.Equal(t, 0, entry.Signals[0].LineIndex)
	assert.Equal(t, 1, entry.Signals[1].LineIndex)
}

func TestCompare_SeededPairExtracted(t *testing.T) {
	seeded := map[string]bool{"crust=>rim": true}
	entry := Compare("sub-1", "add a salt crust", "add a salt rim", seeded)

	require.Len(t, entry.Signals, 1)
	assert.Equal(t, "crust=>rim", entry.Signals[0].Key())
}

func TestCompare_ExcerptTruncated(t *testing.T) {
	long := strings.Repeat("word ", 100)
	entry := Compare("sub-1", long, long, nil)

	assert.LessOrEqual(t, len([]rune(entry.DraftExcerpt)), excerptRunes+1)
	assert.True(t, strings.HasSuffix(entry.DraftExcerpt, "…"))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", collapseWhitespace("  a\t b   c "))
	assert.Equal(t, "", collapseWhitespace("   \t "))
}
