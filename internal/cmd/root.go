// Package cmd implements the redline CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "redline",
	Short: "learn correction rules from draft/final document pairs",
	Long: `redline - correction learning engine
  - compare an AI draft against its human-corrected final
  - accumulate token replacement signals into confidence-scored rules
  - export active rules as an overlay block for future drafts`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(overlayCmd)
	rootCmd.AddCommand(overrideCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}
