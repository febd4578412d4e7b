package perf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = `
swapper     0/0     [000]  1000.000000:    1000000 cycles:
	    ffffffff81012345 native_write_msr+0x10 ([kernel.kallsyms])
	    ffffffff81022345 do_idle+0x55 ([kernel.kallsyms])

myapp   1234/1234  [001]  1000.000100:    1000000 cycles:
	    7f1234 work+0x20 (/usr/bin/myapp)
	    7f5678 main+0x40 (/usr/bin/myapp)

myapp   1234/1234  [001]  1000.000200:     500000 cycles:
	    7f1234 work+0x20 (/usr/bin/myapp)
	    7f5678 main+0x40 (/usr/bin/myapp)
`

func TestParse_AggregatesIdenticalStacks(t *testing.T) {
	res, err := Parse(strings.NewReader(sampleScript), Options{}, nil)
	require.NoError(t, err)

	require.Equal(t, "perf", res.Header.SourceTool)
	require.Len(t, res.Header.Events, 1)
	assert.Equal(t, "period", res.Header.Events[0].PrimaryMetric)

	require.Len(t, res.Stacks, 2)

	var sawKernel, sawUser bool
	for _, s := range res.Stacks {
		period, _ := s.Weights.Get("period")
		samples, _ := s.Weights.Get("samples")
		if s.Context.PID != nil && *s.Context.PID == 0 {
			sawKernel = true
			assert.InDelta(t, 1000000, period, 0.001)
			assert.InDelta(t, 1, samples, 0.001)
		} else if s.Context.PID != nil && *s.Context.PID == 1234 {
			sawUser = true
			assert.InDelta(t, 1500000, period, 0.001)
			assert.InDelta(t, 2, samples, 0.001)
		}
	}
	assert.True(t, sawKernel, "expected an aggregated kernel stack")
	assert.True(t, sawUser, "expected the two identical user stacks merged into one")
}

func TestParseFrameLine_SplitsSymbolAndOffset(t *testing.T) {
	pf, ok := parseFrameLine("\t    7f1234 work+0x20 (/usr/bin/myapp)")
	require.True(t, ok)
	assert.Equal(t, "work", pf.Func)
	assert.Equal(t, "+0x20", pf.Offset)
	assert.Equal(t, "/usr/bin/myapp", pf.Module)
	assert.Equal(t, "0x7f1234", pf.IP)
}

func TestParse_AssignsAscendingInlineDepth(t *testing.T) {
	const inlined = `
myapp   1/1  [000]  2000.000000:    100 cycles:
	    7faaaa inner_inlined+0x5 (/usr/bin/myapp)
	    7faaaa outer_inlined+0x9 (/usr/bin/myapp)
	    7faaaa physical_frame+0x1 (/usr/bin/myapp)
	    7fbbbb caller+0x2 (/usr/bin/myapp)
`
	res, err := Parse(strings.NewReader(inlined), Options{}, nil)
	require.NoError(t, err)
	require.Len(t, res.Stacks, 1)

	var physicalSeen, depth1Seen, depth2Seen bool
	for _, f := range res.Frames {
		switch f.Func {
		case "physical_frame":
			physicalSeen = true
			assert.False(t, f.Inlined)
		case "outer_inlined":
			depth1Seen = true
			require.NotNil(t, f.InlineDepth)
			assert.Equal(t, 1, *f.InlineDepth)
		case "inner_inlined":
			depth2Seen = true
			require.NotNil(t, f.InlineDepth)
			assert.Equal(t, 2, *f.InlineDepth)
		}
	}
	assert.True(t, physicalSeen)
	assert.True(t, depth1Seen)
	assert.True(t, depth2Seen)
}
