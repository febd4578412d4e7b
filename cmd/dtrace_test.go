package cmd

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/spaa/internal/spaa/dtrace"
)

func TestParseDtraceLayout(t *testing.T) {
	tests := []struct {
		in      string
		want    dtrace.Layout
		wantErr bool
	}{
		{"", dtrace.LayoutAggregated, false},
		{"aggregated", dtrace.LayoutAggregated, false},
		{"split", dtrace.LayoutSplit, false},
		{"per-probe", dtrace.LayoutPerProbe, false},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDtraceLayout(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

// TestDtraceCommand_ConvertsFixtureToNDJSON runs the dtrace subcommand
// end-to-end against a small aggregated-layout fixture and checks that the
// output file's first line is the dtrace header record.
func TestDtraceCommand_ConvertsFixtureToNDJSON(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "stacks.out")
	out := filepath.Join(dir, "out.ndjson")

	const fixture = "libc.so.1`read+0x12\n" +
		"myapp`worker+0x40\n" +
		"42\n"
	require.NoError(t, os.WriteFile(in, []byte(fixture), 0o644))

	root := GetRootCmd()
	root.SetArgs([]string{"dtrace", in, "--out", out})
	require.NoError(t, root.Execute())

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	require.NotEmpty(t, lines)
	assert.True(t, strings.Contains(lines[0], `"type":"header"`))
	assert.Contains(t, lines[0], `"source_tool":"dtrace"`)
}
