package rules

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/runger/redline/internal/learning/signal"
	"github.com/runger/redline/internal/learning/textdiff"
	"github.com/runger/redline/internal/learning/trainlog"
)

// Aggregate confidence constants. Empirically chosen; kept as named values
// so the scoring policy reads in one place.
const (
	confidenceBase   = 0.4
	occurrenceWeight = 0.08
	occurrenceCap    = 0.35
	submissionWeight = 0.04
	submissionCap    = 0.15
	diacriticBonus   = 0.08
	conflictPenalty  = 0.18
	confidenceFloor  = 0.2
	confidenceCeil   = 0.98
)

// DefaultDominanceThreshold is the minimum dominance ratio before a rule
// counts as unambiguous.
const DefaultDominanceThreshold = 0.6

// Config tunes the aggregator.
type Config struct {
	// MinOccurrences is the active/weak boundary. Default: 2.
	MinOccurrences int

	// DominanceThreshold is the conflict boundary. Default: 0.6.
	DominanceThreshold float64

	Logger *slog.Logger
}

// DefaultConfig returns the default aggregator configuration.
func DefaultConfig() Config {
	return Config{
		MinOccurrences:     2,
		DominanceThreshold: DefaultDominanceThreshold,
	}
}

// SeedKey builds the normalized rule key for a curated seed pair. Seed
// pairs are recognized at signal extraction; here they are ordinary rules
// and earn active status the same way every other rule does.
func SeedKey(source, target string) string {
	return textdiff.NormalizeToken(source) + "=>" + textdiff.NormalizeToken(target)
}

// LogReader is the slice of the training log the aggregator consumes.
type LogReader interface {
	AllRecords(ctx context.Context) ([]trainlog.Record, error)
	CountEntries(ctx context.Context) (int, error)
}

// Aggregator rebuilds the full rule snapshot from the training log. The
// recompute-from-scratch strategy is isolated behind this interface so it
// can later be replaced by an incremental aggregator without touching
// callers.
type Aggregator interface {
	Rebuild(ctx context.Context) (*Snapshot, error)
}

// Recompute is the default Aggregator: a full read-recompute of the log.
type Recompute struct {
	log LogReader
	cfg Config
}

// NewRecompute creates the default full-recompute aggregator.
func NewRecompute(log LogReader, cfg Config) *Recompute {
	if cfg.MinOccurrences < 1 {
		cfg.MinOccurrences = DefaultConfig().MinOccurrences
	}
	if cfg.DominanceThreshold <= 0 || cfg.DominanceThreshold > 1 {
		cfg.DominanceThreshold = DefaultDominanceThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Recompute{log: log, cfg: cfg}
}

// group accumulates everything known about one (from_norm, to_norm) key.
type group struct {
	source      string
	target      string
	key         string
	fromNorm    string
	occurrences int
	submissions map[string]bool
	kinds       map[signal.Kind]int
	lastSeen    time.Time
}

// Rebuild reads the entire training log and derives a fresh snapshot.
func (a *Recompute) Rebuild(ctx context.Context) (*Snapshot, error) {
	records, err := a.log.AllRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read training log: %w", err)
	}
	entries, err := a.log.CountEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count training entries: %w", err)
	}

	groups := make(map[string]*group)
	// Total transitions observed per source token, for dominance.
	fromTotals := make(map[string]int)

	for _, r := range records {
		key := r.Key()
		g, ok := groups[key]
		if !ok {
			g = &group{
				key:         key,
				fromNorm:    r.FromNorm,
				submissions: make(map[string]bool),
				kinds:       make(map[signal.Kind]int),
			}
			groups[key] = g
		}
		g.occurrences++
		g.submissions[r.SubmissionID] = true
		g.kinds[r.Kind]++
		fromTotals[r.FromNorm]++
		// Records arrive oldest first, so the last write wins: the
		// exemplars and last-seen time track the most recent signal.
		g.source = r.FromRaw
		g.target = r.ToRaw
		g.lastSeen = r.Timestamp
	}

	snapshot := &Snapshot{
		GeneratedAt:     time.Now(),
		MinOccurrences:  a.cfg.MinOccurrences,
		EntriesAnalyzed: entries,
	}

	for _, g := range groups {
		rule := a.deriveRule(g, fromTotals[g.fromNorm])
		switch rule.Status {
		case StatusActive:
			snapshot.Active = append(snapshot.Active, rule)
		case StatusWeak:
			snapshot.Weak = append(snapshot.Weak, rule)
		case StatusConflicted:
			snapshot.Conflicted = append(snapshot.Conflicted, rule)
		}
	}

	sortRules(snapshot.Active)
	sortRules(snapshot.Weak)
	sortRules(snapshot.Conflicted)

	a.cfg.Logger.Debug("rule snapshot rebuilt",
		"entries", entries,
		"signals", len(records),
		"active", len(snapshot.Active),
		"weak", len(snapshot.Weak),
		"conflicted", len(snapshot.Conflicted),
	)
	return snapshot, nil
}

func (a *Recompute) deriveRule(g *group, fromTotal int) Rule {
	dominance := 0.0
	if fromTotal > 0 {
		dominance = float64(g.occurrences) / float64(fromTotal)
	}

	status := StatusActive
	switch {
	case g.occurrences < a.cfg.MinOccurrences:
		status = StatusWeak
	case dominance < a.cfg.DominanceThreshold:
		status = StatusConflicted
	}

	kind := majorityKind(g.kinds)

	confidence := confidenceBase
	confidence += min(occurrenceCap, float64(g.occurrences)*occurrenceWeight)
	confidence += min(submissionCap, float64(len(g.submissions))*submissionWeight)
	if kind == signal.KindDiacritic {
		confidence += diacriticBonus
	}
	if status == StatusConflicted {
		confidence -= conflictPenalty
	}
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}
	if confidence > confidenceCeil {
		confidence = confidenceCeil
	}

	return Rule{
		Source:          g.source,
		Target:          g.target,
		Key:             g.key,
		Kind:            kind,
		Occurrences:     g.occurrences,
		SubmissionCount: len(g.submissions),
		Confidence:      confidence,
		DominanceRatio:  dominance,
		LastSeenAt:      g.lastSeen,
		Status:          status,
	}
}

// majorityKind picks the most frequent kind; ties resolve in the fixed
// order diacritic, punctuation, spelling so rebuilds are deterministic.
func majorityKind(kinds map[signal.Kind]int) signal.Kind {
	best := signal.KindSpelling
	bestCount := -1
	for _, k := range []signal.Kind{signal.KindDiacritic, signal.KindPunctuation, signal.KindSpelling} {
		if kinds[k] > bestCount {
			best = k
			bestCount = kinds[k]
		}
	}
	return best
}

// sortRules orders by occurrences descending, then confidence descending,
// then key for a stable total order.
func sortRules(rules []Rule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Occurrences != rules[j].Occurrences {
			return rules[i].Occurrences > rules[j].Occurrences
		}
		if rules[i].Confidence != rules[j].Confidence {
			return rules[i].Confidence > rules[j].Confidence
		}
		return rules[i].Key < rules[j].Key
	})
}
