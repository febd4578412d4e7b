package cmd

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heapSnapshotFixture(arrayCount int) string {
	meta := `{"node_fields":["type","name","id","self_size","edge_count","trace_node_id"],` +
		`"node_types":[["array","object"]],` +
		`"edge_fields":["type","name_or_index","to_node"],` +
		`"edge_types":[["element"]]}`

	nodes := ""
	for i := 0; i < arrayCount; i++ {
		if i > 0 {
			nodes += ","
		}
		nodes += "0,0,0,10,0,0"
	}
	return `{"snapshot":{"meta":` + meta + `},"nodes":[` + nodes + `],"edges":[],"strings":["Array"]}`
}

// TestHeapDiffCommand_ProducesGrowthRecord runs the heap-diff subcommand
// end-to-end against two minimal snapshots where the target has grown by
// one Array node relative to the baseline, covering the growth-record shape
// of spec.md §8 scenario 4.
func TestHeapDiffCommand_ProducesGrowthRecord(t *testing.T) {
	dir := t.TempDir()
	baseline := filepath.Join(dir, "baseline.heapsnapshot")
	target := filepath.Join(dir, "target.heapsnapshot")
	out := filepath.Join(dir, "diff.ndjson")

	require.NoError(t, os.WriteFile(baseline, []byte(heapSnapshotFixture(2)), 0o644))
	require.NoError(t, os.WriteFile(target, []byte(heapSnapshotFixture(3)), 0o644))

	root := GetRootCmd()
	root.SetArgs([]string{"heap-diff", baseline, target, "--out", out})
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
	assert.Contains(t, lines[0], `"type":"header"`)

	var sawGrowth bool
	for _, l := range lines[1:] {
		if strings.Contains(l, `"type":"growth"`) {
			sawGrowth = true
		}
	}
	assert.True(t, sawGrowth)
}
