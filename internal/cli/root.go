package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autogate",
	Short: "Autonomy decision and approval engine",
	Long: "Decides whether a proposed automated action may execute immediately, must wait\n" +
		"for human sign-off, or must be rejected, and keeps a hash-chained record of\n" +
		"every decision. It never performs the underlying effect.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
