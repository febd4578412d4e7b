package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mabhi256/spaa/internal/spaa/chromecpu"
	"github.com/mabhi256/spaa/internal/spaa/chromeheap"
	"github.com/mabhi256/spaa/internal/spaa/writer"
	"github.com/mabhi256/spaa/utils"
)

var chromeOut string

var chromeCmd = &cobra.Command{
	Use:               "chrome [profile-file]",
	Short:             "Convert a Chrome DevTools CPU profile, trace, or heap snapshot into SPAA NDJSON",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".cpuprofile", ".json", ".heapsnapshot"}, false),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer in.Close()

		kind, err := sniffChromeInput(in)
		if err != nil {
			return err
		}

		out, err := os.Create(chromeOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()

		switch kind {
		case chromeKindCPUProfile:
			result, err := chromecpu.ParseProfile(in, chromecpu.Options{})
			if err != nil {
				return err
			}
			return writer.WriteAll(out, result.Header, result.DSOs, result.Frames, result.Threads, result.Stacks)

		case chromeKindTrace:
			result, err := chromecpu.ParseTrace(in, chromecpu.Options{})
			if err != nil {
				return err
			}
			return writer.WriteAll(out, result.Header, result.DSOs, result.Frames, result.Threads, result.Stacks)

		case chromeKindHeapSnapshot:
			graph, err := chromeheap.ParseSnapshot(in)
			if err != nil {
				return err
			}
			result := chromeheap.ToSPAA(graph, chromeheap.Options{})
			return writer.WriteAll(out, result.Header, result.DSOs, result.Frames, nil, result.Stacks)

		default:
			return fmt.Errorf("%s: unrecognized Chrome profile format", args[0])
		}
	},
}

type chromeInputKind int

const (
	chromeKindUnknown chromeInputKind = iota
	chromeKindCPUProfile
	chromeKindTrace
	chromeKindHeapSnapshot
)

// sniffChromeInput peeks the input's opening bytes to tell apart the three
// JSON shapes spec.md §4.6/§4.7 describe, then rewinds so the real parser
// still sees the full document: a standalone .cpuprofile is a top-level
// object with a "nodes" array of call-tree nodes; a DevTools trace is a
// top-level object with a "traceEvents" array; a heap snapshot is a
// top-level object with a "snapshot" object.
func sniffChromeInput(f *os.File) (chromeInputKind, error) {
	br := bufio.NewReader(f)
	peeked, err := br.Peek(4096)
	if err != nil && len(peeked) == 0 {
		return chromeKindUnknown, fmt.Errorf("read input: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return chromeKindUnknown, fmt.Errorf("seek input: %w", err)
	}

	head := string(peeked)
	switch {
	case strings.Contains(head, `"snapshot"`):
		return chromeKindHeapSnapshot, nil
	case strings.Contains(head, `"traceEvents"`):
		return chromeKindTrace, nil
	case strings.Contains(head, `"nodes"`) && strings.Contains(head, `"samples"`):
		return chromeKindCPUProfile, nil
	default:
		return chromeKindUnknown, nil
	}
}

func init() {
	rootCmd.AddCommand(chromeCmd)

	chromeCmd.Flags().StringVarP(&chromeOut, "out", "o", "out.spaa.ndjson", "output file path")
}
