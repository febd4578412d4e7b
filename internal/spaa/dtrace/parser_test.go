package dtrace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/spaa/internal/spaa/model"
)

// TestParse_AggregatedLayout covers spec.md §8 scenario 1: two aggregated
// stack blocks sharing a leaf frame but distinct counts.
func TestParse_AggregatedLayout(t *testing.T) {
	const doc = "libc.so.1`read+0x12\n" +
		"myapp`worker+0x40\n" +
		"42\n" +
		"\n" +
		"libc.so.1`write+0x8\n" +
		"myapp`worker+0x40\n" +
		"17\n"

	result, err := Parse(strings.NewReader(doc), Options{EventName: "profile-997"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "dtrace", result.Header.SourceTool)
	assert.Equal(t, model.LeafToRoot, result.Header.FrameOrder)
	require.Len(t, result.Header.Events, 1)
	assert.Equal(t, "profile-997", result.Header.Events[0].Name)

	assert.Len(t, result.DSOs, 2)
	assert.Len(t, result.Frames, 3)
	require.Len(t, result.Stacks, 2)

	var readWeight, writeWeight float64
	for _, s := range result.Stacks {
		leafID := s.Leaf(result.Header.FrameOrder)
		var leafFunc string
		for _, f := range result.Frames {
			if f.ID == leafID {
				leafFunc = f.Func
			}
		}
		v, ok := s.Weights.Get("samples")
		require.True(t, ok)
		switch leafFunc {
		case "read":
			readWeight = v
		case "write":
			writeWeight = v
		}

		excl, ok := s.Exclusive.Weights.Get("samples")
		require.True(t, ok)
		assert.Equal(t, v, excl)
		assert.Equal(t, leafID, s.Exclusive.Frame)
	}
	assert.Equal(t, 42.0, readWeight)
	assert.Equal(t, 17.0, writeWeight)
}

// TestParse_UserKernelPairLinksRelatedStacks covers spec.md §8 scenario 2: a
// single probe firing ustack() and kstack() together.
func TestParse_UserKernelPairLinksRelatedStacks(t *testing.T) {
	const doc = "myapp`B+0x10\n" +
		"myapp`A+0x4\n" +
		"unix`K2+0x20\n" +
		"unix`K1+0x8\n" +
		"3\n"

	result, err := Parse(strings.NewReader(doc), Options{}, nil)
	require.NoError(t, err)
	require.Len(t, result.Stacks, 2)

	var user, kernel *model.Stack
	for _, s := range result.Stacks {
		switch s.StackType {
		case model.StackUser:
			user = s
		case model.StackKernel:
			kernel = s
		}
	}
	require.NotNil(t, user)
	require.NotNil(t, kernel)

	require.Len(t, user.RelatedStacks, 1)
	require.Len(t, kernel.RelatedStacks, 1)
	assert.Equal(t, kernel.ID, user.RelatedStacks[0])
	assert.Equal(t, user.ID, kernel.RelatedStacks[0])

	uv, ok := user.Weights.Get("samples")
	require.True(t, ok)
	assert.Equal(t, 3.0, uv)
	kv, ok := kernel.Weights.Get("samples")
	require.True(t, ok)
	assert.Equal(t, 3.0, kv)
}

func TestParse_UnterminatedBlockIsMalformed(t *testing.T) {
	const doc = "myapp`worker+0x40\n"

	_, err := Parse(strings.NewReader(doc), Options{}, nil)
	require.Error(t, err)
}
