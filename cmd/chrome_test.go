package cmd

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSniffChromeInput(t *testing.T) {
	dir := t.TempDir()

	cpuprofile := writeTemp(t, dir, "p.cpuprofile", `{"nodes":[{"id":1,"callFrame":{"functionName":"(root)"}}],"samples":[1],"timeDeltas":[1]}`)
	trace := writeTemp(t, dir, "t.json", `{"traceEvents":[{"name":"Profile","ph":"P"}]}`)
	snapshot := writeTemp(t, dir, "s.heapsnapshot", `{"snapshot":{"meta":{}},"nodes":[],"edges":[],"strings":[]}`)
	unknown := writeTemp(t, dir, "u.json", `{"foo":"bar"}`)

	cases := []struct {
		path string
		want chromeInputKind
	}{
		{cpuprofile, chromeKindCPUProfile},
		{trace, chromeKindTrace},
		{snapshot, chromeKindHeapSnapshot},
		{unknown, chromeKindUnknown},
	}

	for _, c := range cases {
		f, err := os.Open(c.path)
		require.NoError(t, err)
		kind, err := sniffChromeInput(f)
		require.NoError(t, err)
		assert.Equal(t, c.want, kind, c.path)
		f.Close()
	}
}

// TestChromeCommand_ConvertsCPUProfile runs the chrome subcommand end-to-end
// against a standalone .cpuprofile, relying on auto-detection to route it to
// the CPU-profile parser rather than the trace or heap-snapshot path.
func TestChromeCommand_ConvertsCPUProfile(t *testing.T) {
	dir := t.TempDir()
	in := writeTemp(t, dir, "p.cpuprofile", `{
		"nodes": [
			{"id": 1, "callFrame": {"functionName": "(root)", "url": "", "lineNumber": 0, "columnNumber": 0}, "children": [2]},
			{"id": 2, "callFrame": {"functionName": "main", "url": "app.js", "lineNumber": 10, "columnNumber": 2}}
		],
		"samples": [2],
		"timeDeltas": [100]
	}`)
	out := filepath.Join(dir, "out.ndjson")

	root := GetRootCmd()
	root.SetArgs([]string{"chrome", in, "--out", out})
	require.NoError(t, root.Execute())

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	assert.Contains(t, scanner.Text(), `"source_tool":"chrome-cpu"`)
}
