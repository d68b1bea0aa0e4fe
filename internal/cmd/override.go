package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/runger/redline/internal/learning/api"
)

var (
	overrideEnable bool
	overrideReason string
)

var overrideCmd = &cobra.Command{
	Use:   "override [rule-key]",
	Short: "Disable or re-enable a learned rule",
	Long: `Toggle an override for a rule key of the form source=>target.

Without arguments, lists current overrides. With a key, disables the rule
(or re-enables it with --enable). Overrides survive rule rebuilds.

Examples:
  redline override
  redline override "teh=>the" --reason "false positive"
  redline override "teh=>the" --enable`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOverride,
}

func init() {
	overrideCmd.Flags().BoolVar(&overrideEnable, "enable", false, "re-enable the rule instead of disabling it")
	overrideCmd.Flags().StringVar(&overrideReason, "reason", "", "why the rule is being disabled")
}

func runOverride(cmd *cobra.Command, args []string) error {
	client := newAPIClient()

	if len(args) == 0 {
		var resp api.OverridesResponse
		if err := client.get("/v1/overrides", &resp); err != nil {
			return err
		}
		if len(resp.Overrides) == 0 {
			fmt.Println("No overrides set.")
			return nil
		}
		keys := make([]string, 0, len(resp.Overrides))
		for k := range resp.Overrides {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			o := resp.Overrides[k]
			if o.Reason != "" {
				fmt.Printf("  %-30s disabled  (%s)\n", k, o.Reason)
			} else {
				fmt.Printf("  %-30s disabled\n", k)
			}
		}
		return nil
	}

	req := api.OverrideRequest{
		RuleKey:  args[0],
		Disabled: !overrideEnable,
		Reason:   overrideReason,
	}
	if err := client.post("/v1/overrides", req, nil); err != nil {
		return err
	}
	if req.Disabled {
		fmt.Printf("Rule %s disabled.\n", req.RuleKey)
	} else {
		fmt.Printf("Rule %s re-enabled.\n", req.RuleKey)
	}
	return nil
}
