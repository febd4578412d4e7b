package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mabhi256/spaa/internal/spaa/chromeheap"
	"github.com/mabhi256/spaa/internal/spaa/heapdiff"
	"github.com/mabhi256/spaa/utils"
)

var (
	heapDiffOut         string
	heapDiffMaxRetained int
)

var heapDiffCmd = &cobra.Command{
	Use:               "heap-diff [baseline-snapshot] [target-snapshot]",
	Short:             "Diff two Chrome heap snapshots for growth and retention",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".heapsnapshot", ".json"}, false),
	RunE: func(cmd *cobra.Command, args []string) error {
		baselinePath, targetPath := args[0], args[1]

		baseline, err := openSnapshot(baselinePath)
		if err != nil {
			return err
		}
		target, err := openSnapshot(targetPath)
		if err != nil {
			return err
		}

		result := heapdiff.Diff(baseline, target, heapdiff.Options{
			BaselinePath:   baselinePath,
			TargetPath:     targetPath,
			CandidateBound: heapDiffMaxRetained,
		})

		out, err := os.Create(heapDiffOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()

		return heapdiff.NewWriter(out).WriteAll(result)
	},
}

func openSnapshot(path string) (*chromeheap.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return chromeheap.ParseSnapshot(f)
}

func init() {
	rootCmd.AddCommand(heapDiffCmd)

	heapDiffCmd.Flags().StringVarP(&heapDiffOut, "out", "o", "out.heap-diff.ndjson", "output file path")
	heapDiffCmd.Flags().IntVar(&heapDiffMaxRetained, "max-retained", heapdiff.DefaultCandidateBound, "max candidate nodes walked for retention")
}
