package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spaa",
	Short: "Stack profile conversion and aggregation engine",
	Long: `spaa normalizes source-specific profiling data (DTrace text, Chrome
DevTools CPU profiles and traces, Chrome heap snapshots) into a shared,
streamable NDJSON format, and computes heap-diff growth and retention
reports between two heap snapshots.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}
