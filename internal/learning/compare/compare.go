// Package compare turns a draft/final text pair into a training log entry:
// per-line diffs, extracted replacement signals, and document-level stats.
// The stats are for monitoring only; learning consumes the signals.
package compare

import (
	"strings"

	"github.com/runger/redline/internal/learning/signal"
	"github.com/runger/redline/internal/learning/trainlog"
)

// excerptRunes bounds the stored draft/final excerpts.
const excerptRunes = 200

// Compare diffs final against draft line by line and builds an unsaved
// training log entry. Line pairs whose whitespace-collapsed forms are equal
// are skipped; missing lines on the shorter side compare as empty. Signals
// are deduplicated across the whole document. seeded holds normalized rule
// keys exempt from the signal closeness filter; nil is fine.
func Compare(submissionID, draft, final string, seeded map[string]bool) *trainlog.Entry {
	draftLines := strings.Split(draft, "\n")
	finalLines := strings.Split(final, "\n")

	n := len(draftLines)
	if len(finalLines) > n {
		n = len(finalLines)
	}

	var signals []signal.Signal
	compared := 0
	changed := 0
	for i := 0; i < n; i++ {
		var dl, fl string
		if i < len(draftLines) {
			dl = draftLines[i]
		}
		if i < len(finalLines) {
			fl = finalLines[i]
		}

		dc := collapseWhitespace(dl)
		fc := collapseWhitespace(fl)
		if dc == "" && fc == "" {
			continue
		}
		compared++
		if dc == fc {
			continue
		}
		changed++
		signals = append(signals, signal.ExtractFromLines(dl, fl, i, seeded)...)
	}
	signals = signal.Dedupe(signals)

	changePercent := 0.0
	if compared > 0 {
		changePercent = float64(changed) / float64(compared) * 100
	}

	return &trainlog.Entry{
		SubmissionID:  submissionID,
		DraftChars:    len([]rune(draft)),
		FinalChars:    len([]rune(final)),
		DraftWords:    len(strings.Fields(draft)),
		FinalWords:    len(strings.Fields(final)),
		HasChanges:    strings.TrimSpace(draft) != strings.TrimSpace(final),
		ChangePercent: changePercent,
		LinesCompared: compared,
		LinesChanged:  changed,
		DraftExcerpt:  excerpt(draft),
		FinalExcerpt:  excerpt(final),
		Signals:       signals,
	}
}

// collapseWhitespace joins all whitespace-separated fields with single
// spaces, so indentation and trailing-space churn never counts as a change.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= excerptRunes {
		return s
	}
	return string(r[:excerptRunes]) + "…"
}
