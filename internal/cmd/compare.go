package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/redline/internal/learning/api"
	"github.com/runger/redline/internal/learning/engine"
)

var compareSubmissionID string

var compareCmd = &cobra.Command{
	Use:   "compare <draft-ref> <final-ref>",
	Short: "Record a draft/final comparison",
	Long: `Submit a draft/final document pair to the daemon for learning.

References are paths relative to the configured documents directory. The
daemon diffs the pair, appends the result to the training log and rebuilds
the rule set before returning.

Examples:
  redline compare drafts/report.txt finals/report.txt --submission rpt-2031`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&compareSubmissionID, "submission", "s", "", "submission identifier (required)")
	compareCmd.MarkFlagRequired("submission")
}

func runCompare(cmd *cobra.Command, args []string) error {
	client := newAPIClient()

	var result engine.CompareResult
	err := client.post("/v1/compare", api.CompareRequest{
		SubmissionID: compareSubmissionID,
		DraftRef:     args[0],
		FinalRef:     args[1],
	}, &result)
	if err != nil {
		return err
	}

	fmt.Printf("Submission:  %s\n", result.SubmissionID)
	fmt.Printf("Changed:     %v (%.1f%% of lines)\n", result.HasChanges, result.ChangePercent)
	fmt.Printf("Delta:       %+d chars, %+d words\n", result.CharsDelta, result.WordsDelta)
	fmt.Printf("Signals:     %d\n", result.SignalsFound)
	fmt.Printf("Active:      %d rules\n", result.ActiveRules)
	return nil
}
