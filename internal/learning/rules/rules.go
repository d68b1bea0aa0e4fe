// Package rules derives confidence-scored correction rules from the
// training log. Rules are never patched incrementally: every rebuild reads
// the entire log and replaces the previous snapshot wholesale, trading CPU
// time for freedom from double-counting drift. Comparisons happen at
// human-correction rate, so the recompute cost is negligible.
package rules

import (
	"time"

	"github.com/runger/redline/internal/learning/signal"
)

// Status is the lifecycle state of a learned rule.
type Status string

// Rule statuses. A rule is weak until it has been seen MinOccurrences
// times, conflicted when its source token resolves to competing targets,
// and active otherwise.
const (
	StatusActive     Status = "active"
	StatusWeak       Status = "weak"
	StatusConflicted Status = "conflicted"
)

// IsValid returns true if s is a recognized rule status.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusWeak, StatusConflicted:
		return true
	}
	return false
}

// Rule is a fully derived aggregate over all signals sharing one
// (from_norm, to_norm) key.
type Rule struct {
	// Source and Target are display exemplars: the most recently seen raw
	// forms of the pair.
	Source string `json:"source"`
	Target string `json:"target"`

	// Key is "from_norm=>to_norm", shared with overrides.
	Key string `json:"key"`

	// Kind is the majority kind among contributing signals.
	Kind signal.Kind `json:"kind"`

	// Occurrences counts matching signals across the whole log.
	Occurrences int `json:"occurrences"`

	// SubmissionCount counts distinct submissions contributing.
	SubmissionCount int `json:"submission_count"`

	// Confidence is the aggregate score in [0.2, 0.98].
	Confidence float64 `json:"confidence"`

	// DominanceRatio is the share of all transitions from this source
	// token that land on this target.
	DominanceRatio float64 `json:"dominance_ratio"`

	LastSeenAt time.Time `json:"last_seen_at"`
	Status     Status    `json:"status"`
}

// Snapshot is the full derived rule set at one point in time.
type Snapshot struct {
	GeneratedAt     time.Time `json:"generated_at"`
	MinOccurrences  int       `json:"min_occurrences"`
	EntriesAnalyzed int       `json:"entries_analyzed"`
	Active          []Rule    `json:"active"`
	Weak            []Rule    `json:"weak"`
	Conflicted      []Rule    `json:"conflicted"`
}

// All returns every rule in the snapshot, active first.
func (s *Snapshot) All() []Rule {
	out := make([]Rule, 0, len(s.Active)+len(s.Weak)+len(s.Conflicted))
	out = append(out, s.Active...)
	out = append(out, s.Weak...)
	out = append(out, s.Conflicted...)
	return out
}

// Find returns the rule with the given key, or nil.
func (s *Snapshot) Find(key string) *Rule {
	all := s.All()
	for i := range all {
		if all[i].Key == key {
			return &all[i]
		}
	}
	return nil
}
