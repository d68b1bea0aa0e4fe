package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/runger/redline/internal/learning/engine"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	Long: `Show monitoring totals over the training log and the rule set.

Examples:
  redline stats`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	client := newAPIClient()

	var stats engine.StatsResult
	if err := client.get("/v1/stats", &stats); err != nil {
		return err
	}

	fmt.Println("Training log:")
	fmt.Printf("  Comparisons:  %d (%d with changes)\n", stats.Entries, stats.ChangedEntries)
	fmt.Printf("  Signals:      %d\n", stats.Signals)
	if len(stats.SignalsByKind) > 0 {
		kinds := make([]string, 0, len(stats.SignalsByKind))
		for k := range stats.SignalsByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Printf("    %-12s %d\n", k+":", stats.SignalsByKind[k])
		}
	}
	if !stats.LastComparison.IsZero() {
		fmt.Printf("  Last:         %s\n", stats.LastComparison.Format("2006-01-02 15:04:05"))
	}

	fmt.Println("Rules:")
	fmt.Printf("  Active:       %d\n", stats.ActiveRules)
	fmt.Printf("  Weak:         %d\n", stats.WeakRules)
	fmt.Printf("  Conflicted:   %d\n", stats.ConflictedRules)
	fmt.Printf("  Overridden:   %d\n", stats.Overrides)
	return nil
}
