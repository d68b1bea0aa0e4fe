// Package signal turns edit-script runs into candidate replacement signals:
// token-level substitutions detected between an AI-drafted line and its
// human-corrected counterpart. Candidates pass a high-signal filter before
// they are classified and scored; low-quality pairs are dropped silently.
package signal

import (
	"unicode"

	"github.com/runger/redline/internal/learning/textdiff"
)

// Kind classifies a replacement signal.
type Kind string

// Signal kinds.
const (
	KindDiacritic   Kind = "diacritic"
	KindPunctuation Kind = "punctuation"
	KindSpelling    Kind = "spelling"
)

// IsValid returns true if k is a recognized signal kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindDiacritic, KindPunctuation, KindSpelling:
		return true
	}
	return false
}

// Filter and scoring constants. The confidence increments were chosen
// empirically; they are named here rather than inlined so the scoring
// policy reads in one place.
const (
	maxTokenLen      = 40
	numericRatioMax  = 0.6
	maxEditDistance  = 3
	maxDistanceRatio = 0.4

	confidenceBase        = 0.55
	confidenceDiacritic   = 0.20
	confidencePunctuation = 0.10
	confidenceCloseBonus  = 0.15 // distance ratio <= 0.2
	confidenceFarPenalty  = 0.15 // distance ratio > 0.5
	confidenceMin         = 0.35
	confidenceMax         = 0.95
)

// Signal is one token-level substitution extracted from a comparison.
type Signal struct {
	FromRaw    string  `json:"from_raw"`
	ToRaw      string  `json:"to_raw"`
	FromNorm   string  `json:"from_norm"`
	ToNorm     string  `json:"to_norm"`
	Kind       Kind    `json:"kind"`
	Confidence float64 `json:"confidence"`
	LineIndex  int     `json:"line_index"`
}

// Key returns the aggregation key shared with learned rules and overrides.
func (s Signal) Key() string {
	return s.FromNorm + "=>" + s.ToNorm
}

// ExtractFromRuns walks an edit script and emits signals for each adjacent
// (delete-run, insert-run) pair interpreted as a substitution. Tokens pair
// positionally up to the shorter run length; excess tokens stay pure
// deletions or insertions and are never force-paired. Pairs whose
// normalized key appears in seeded skip the closeness check: curated
// terminology swaps like crust=>rim are valid corrections even though the
// words share no edit proximity.
func ExtractFromRuns(runs []textdiff.Run, lineIndex int, seeded map[string]bool) []Signal {
	var out []Signal
	for i := 0; i+1 < len(runs); i++ {
		if runs[i].Op != textdiff.OpDelete || runs[i+1].Op != textdiff.OpInsert {
			continue
		}
		deleted := runs[i].Before
		inserted := runs[i+1].After
		n := min(len(deleted), len(inserted))
		for j := 0; j < n; j++ {
			if sig, ok := candidate(deleted[j], inserted[j], lineIndex, seeded); ok {
				out = append(out, sig)
			}
		}
	}
	return out
}

// ExtractFromLines diffs a line pair and extracts its signals.
func ExtractFromLines(before, after string, lineIndex int, seeded map[string]bool) []Signal {
	return ExtractFromRuns(textdiff.DiffLine(before, after), lineIndex, seeded)
}

// candidate applies the high-signal filter and, when the pair qualifies,
// classifies and scores it.
func candidate(from, to string, lineIndex int, seeded map[string]bool) (Signal, bool) {
	if from == "" || to == "" {
		return Signal{}, false
	}
	fromNorm := textdiff.NormalizeToken(from)
	toNorm := textdiff.NormalizeToken(to)
	if fromNorm == toNorm {
		return Signal{}, false
	}
	if !hasLetter(from) || !hasLetter(to) {
		return Signal{}, false
	}
	if len([]rune(from)) > maxTokenLen || len([]rune(to)) > maxTokenLen {
		return Signal{}, false
	}
	if mostlyNumeric(from) || mostlyNumeric(to) {
		return Signal{}, false
	}

	diacriticMatch := textdiff.StripDiacritics(fromNorm) == textdiff.StripDiacritics(toNorm)
	punctMatch := textdiff.StripNonAlnum(fromNorm) == textdiff.StripNonAlnum(toNorm)
	dist := levenshtein(fromNorm, toNorm)
	ratio := distanceRatio(fromNorm, toNorm)

	isClose := diacriticMatch || punctMatch || dist <= maxEditDistance || ratio <= maxDistanceRatio
	if !isClose && !seeded[fromNorm+"=>"+toNorm] {
		return Signal{}, false
	}

	kind := KindSpelling
	switch {
	case diacriticMatch:
		kind = KindDiacritic
	case punctMatch:
		kind = KindPunctuation
	}

	return Signal{
		FromRaw:    from,
		ToRaw:      to,
		FromNorm:   fromNorm,
		ToNorm:     toNorm,
		Kind:       kind,
		Confidence: score(kind, ratio),
		LineIndex:  lineIndex,
	}, true
}

func score(kind Kind, ratio float64) float64 {
	c := confidenceBase
	switch kind {
	case KindDiacritic:
		c += confidenceDiacritic
	case KindPunctuation:
		c += confidencePunctuation
	}
	if ratio <= 0.2 {
		c += confidenceCloseBonus
	}
	if ratio > 0.5 {
		c -= confidenceFarPenalty
	}
	return clamp(c, confidenceMin, confidenceMax)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// mostlyNumeric reports whether 60% or more of the token's runes are digits.
func mostlyNumeric(s string) bool {
	rs := []rune(s)
	if len(rs) == 0 {
		return false
	}
	digits := 0
	for _, r := range rs {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return float64(digits)/float64(len(rs)) >= numericRatioMax
}

// Dedupe collapses signals sharing (from_norm, to_norm, line_index) within
// one comparison call, keeping the first occurrence.
func Dedupe(signals []Signal) []Signal {
	type key struct {
		from, to string
		line     int
	}
	seen := make(map[key]bool, len(signals))
	out := signals[:0]
	for _, s := range signals {
		k := key{s.FromNorm, s.ToNorm, s.LineIndex}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}
