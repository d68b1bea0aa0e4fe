// Package overlay renders the export surface of the learning engine: a
// plain-text block of active correction rules suitable for prepending to a
// drafting prompt. The overlay is derived state only; it is rebuilt from the
// current snapshot on every request and never stored.
package overlay

import (
	"fmt"
	"strings"

	"github.com/runger/redline/internal/learning/override"
	"github.com/runger/redline/internal/learning/rules"
)

// DefaultMaxRules caps how many rules one overlay may carry.
const DefaultMaxRules = 25

const header = "Known corrections from past reviews (apply unless context disagrees):"

// Builder renders overlay text from a rule snapshot and the disabled map.
type Builder struct {
	maxRules int
}

// NewBuilder creates an overlay builder. maxRules <= 0 uses the default cap.
func NewBuilder(maxRules int) *Builder {
	if maxRules <= 0 {
		maxRules = DefaultMaxRules
	}
	return &Builder{maxRules: maxRules}
}

// MaxRules returns the configured cap.
func (b *Builder) MaxRules() int {
	return b.maxRules
}

// Build renders the overlay block. Only active rules not present in the
// disabled map are included; the snapshot already orders active rules by
// occurrences, so truncation keeps the best-evidenced ones. A nil snapshot
// or an empty eligible set renders as the empty string, never an error: a
// missing overlay must never block drafting.
func (b *Builder) Build(snap *rules.Snapshot, disabled map[string]override.Override) string {
	if snap == nil || len(snap.Active) == 0 {
		return ""
	}

	eligible := make([]rules.Rule, 0, len(snap.Active))
	for _, r := range snap.Active {
		if _, off := disabled[r.Key]; off {
			continue
		}
		eligible = append(eligible, r)
	}
	if len(eligible) == 0 {
		return ""
	}
	if len(eligible) > b.maxRules {
		eligible = eligible[:b.maxRules]
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	for _, r := range eligible {
		fmt.Fprintf(&sb, "- %q -> %q (seen %dx)\n", r.Source, r.Target, r.Occurrences)
	}
	return sb.String()
}
