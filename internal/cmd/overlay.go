package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/redline/internal/learning/api"
)

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Print the current correction overlay",
	Long: `Print the overlay block of active correction rules, ready to be
prepended to a drafting prompt. Prints nothing when no rules are active.

Examples:
  redline overlay`,
	RunE: runOverlay,
}

func runOverlay(cmd *cobra.Command, args []string) error {
	client := newAPIClient()

	var resp api.OverlayResponse
	if err := client.get("/v1/overlay", &resp); err != nil {
		return err
	}
	if resp.OverlayText != "" {
		fmt.Print(resp.OverlayText)
	}
	return nil
}
