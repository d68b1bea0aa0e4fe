package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/redline/internal/learning/rules"
)

var rulesShowAll bool

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List learned correction rules",
	Long: `List the current rule snapshot.

By default only active rules are shown; --all includes weak and conflicted
rules.

Examples:
  redline rules
  redline rules --all`,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().BoolVarP(&rulesShowAll, "all", "a", false, "include weak and conflicted rules")
}

func runRules(cmd *cobra.Command, args []string) error {
	client := newAPIClient()

	var snap rules.Snapshot
	if err := client.get("/v1/rules", &snap); err != nil {
		return err
	}

	fmt.Printf("Snapshot from %s (%d entries analyzed, min occurrences %d)\n\n",
		snap.GeneratedAt.Format("2006-01-02 15:04:05"), snap.EntriesAnalyzed, snap.MinOccurrences)

	printRuleSection("Active", snap.Active)
	if rulesShowAll {
		printRuleSection("Weak", snap.Weak)
		printRuleSection("Conflicted", snap.Conflicted)
	}
	return nil
}

func printRuleSection(title string, list []rules.Rule) {
	fmt.Printf("%s (%d):\n", title, len(list))
	if len(list) == 0 {
		fmt.Println("  (none)")
		fmt.Println()
		return
	}
	for _, r := range list {
		fmt.Printf("  %-30s %-12s conf=%.2f  seen=%dx  dom=%.2f\n",
			fmt.Sprintf("%q -> %q", r.Source, r.Target), r.Kind, r.Confidence, r.Occurrences, r.DominanceRatio)
	}
	fmt.Println()
}
