package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mabhi256/spaa/internal/spaa/dtrace"
	"github.com/mabhi256/spaa/internal/spaa/log"
	"github.com/mabhi256/spaa/internal/spaa/writer"
	"github.com/mabhi256/spaa/utils"
)

var (
	dtraceOut    string
	dtraceEvent  string
	dtraceFreqHz int64
	dtraceLayout string
)

var dtraceCmd = &cobra.Command{
	Use:               "dtrace [stack-file]",
	Short:             "Convert a DTrace textual stack listing into SPAA NDJSON",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".txt", ".out"}, false),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := parseDtraceLayout(dtraceLayout)
		if err != nil {
			return err
		}

		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer in.Close()

		diag := &log.Diagnostics{}
		result, err := dtrace.Parse(in, dtrace.Options{
			EventName:   dtraceEvent,
			FrequencyHz: dtraceFreqHz,
			Layout:      layout,
		}, diag)
		if err != nil {
			return err
		}

		out, err := os.Create(dtraceOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()

		if err := writer.WriteAll(out, result.Header, result.DSOs, result.Frames, result.Threads, result.Stacks); err != nil {
			return err
		}

		reportDiagnostics(diag)
		return nil
	},
}

func parseDtraceLayout(s string) (dtrace.Layout, error) {
	switch s {
	case "", "aggregated":
		return dtrace.LayoutAggregated, nil
	case "split":
		return dtrace.LayoutSplit, nil
	case "per-probe":
		return dtrace.LayoutPerProbe, nil
	default:
		return 0, fmt.Errorf("invalid --layout %q: must be aggregated, split, or per-probe", s)
	}
}

var warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8800")).Bold(true)

func reportDiagnostics(diag *log.Diagnostics) {
	unresolved, unknown := diag.Counts()
	if unresolved == 0 && unknown == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf(
		"warning: %d unresolved symbol(s), %d unknown extension(s)", unresolved, unknown)))
}

func init() {
	rootCmd.AddCommand(dtraceCmd)

	dtraceCmd.Flags().StringVarP(&dtraceOut, "out", "o", "out.spaa.ndjson", "output file path")
	dtraceCmd.Flags().StringVar(&dtraceEvent, "event", "profile", "event name")
	dtraceCmd.Flags().Int64Var(&dtraceFreqHz, "freq", 0, "sampling frequency in Hz (0 = period mode)")
	dtraceCmd.Flags().StringVar(&dtraceLayout, "layout", "aggregated", "input layout: aggregated, split, or per-probe")

	dtraceCmd.RegisterFlagCompletionFunc("layout", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"aggregated", "split", "per-probe"}, cobra.ShellCompDirectiveNoFileComp
	})
}
