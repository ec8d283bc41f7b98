package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trackctl",
	Short: "Companion tool for the temps error-tracking SDK",
	Long: "Validates DSNs, sends test events, and forwards spooled events\n" +
		"to the error-tracking store endpoint.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
