// Package cli wires the postgate commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "postgate",
	Short: "Publishing gate for autonomous agents",
	Long:  "Decides whether agent-generated content may be published: safety blocks,\nsecret redaction, brand compliance, rate limits, duplicate detection, and\nrisk scoring, with stable reason codes for every denial.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
