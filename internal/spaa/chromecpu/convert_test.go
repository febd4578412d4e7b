package chromecpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseProfile_SampleAggregation covers spec.md §8 scenario 3: node tree
// {1:root -> 2:main -> 3:compute}; samples=[3,3,2,3]; timeDeltas all 100.
func TestParseProfile_SampleAggregation(t *testing.T) {
	const doc = `{
		"nodes": [
			{"id": 1, "callFrame": {"functionName": "(root)", "url": "", "lineNumber": 0, "columnNumber": 0}, "children": [2]},
			{"id": 2, "callFrame": {"functionName": "main", "url": "app.js", "lineNumber": 10, "columnNumber": 2}, "children": [3]},
			{"id": 3, "callFrame": {"functionName": "compute", "url": "app.js", "lineNumber": 20, "columnNumber": 4}}
		],
		"samples": [3, 3, 2, 3],
		"timeDeltas": [100, 100, 100, 100]
	}`

	result, err := ParseProfile(strings.NewReader(doc), Options{})
	require.NoError(t, err)
	require.Len(t, result.Stacks, 2)

	byLeafFunc := make(map[string]float64)
	for _, stack := range result.Stacks {
		leafID := stack.Leaf(result.Header.FrameOrder)
		var leafFunc string
		for _, f := range result.Frames {
			if f.ID == leafID {
				leafFunc = f.Func
			}
		}
		v, ok := stack.Weights.Get("samples")
		require.True(t, ok)
		byLeafFunc[leafFunc] = v

		excl, ok := stack.Exclusive.Weights.Get("samples")
		require.True(t, ok)
		assert.Equal(t, v, excl, "exclusive must equal total for a leaf-only-observed stack")
	}

	assert.Equal(t, 300.0, byLeafFunc["compute"])
	assert.Equal(t, 100.0, byLeafFunc["main"])

	assert.Equal(t, "cpu", result.Header.Events[0].Name)
	assert.Equal(t, "samples", result.Header.Events[0].PrimaryMetric)
}

func TestParseProfile_AnonymousAndNativeFrames(t *testing.T) {
	const doc = `{
		"nodes": [
			{"id": 1, "callFrame": {"functionName": "", "url": "", "lineNumber": 0, "columnNumber": 0}, "children": [2]},
			{"id": 2, "callFrame": {"functionName": "(garbage collector)", "url": "", "lineNumber": 0, "columnNumber": 0}}
		],
		"samples": [2],
		"timeDeltas": []
	}`

	result, err := ParseProfile(strings.NewReader(doc), Options{})
	require.NoError(t, err)
	require.Len(t, result.Stacks, 1)
	require.Len(t, result.Frames, 2)

	for _, f := range result.Frames {
		assert.Equal(t, "native", string(f.Kind))
	}
	assert.Equal(t, "(anonymous)", result.Frames[0].Func)
	assert.Equal(t, "(garbage collector)", result.Frames[1].Func)
}

func TestParseTrace_StitchesProfileChunks(t *testing.T) {
	const doc = `{
		"traceEvents": [
			{"name": "Profile", "ph": "P", "pid": 100, "tid": 200, "id": "0x1", "ts": 0, "args": {}},
			{"name": "ProfileChunk", "ph": "P", "pid": 100, "tid": 999, "id": "0x1", "ts": 0, "args": {
				"data": {
					"cpuProfile": {
						"nodes": [
							{"id": 1, "callFrame": {"functionName": "(root)", "url": "", "lineNumber": 0, "columnNumber": 0}, "children": [2]},
							{"id": 2, "callFrame": {"functionName": "handle", "url": "worker.js", "lineNumber": 5, "columnNumber": 1}}
						],
						"samples": [2, 2],
						"timeDeltas": [50, 50]
					}
				}
			}}
		]
	}`

	result, err := ParseTrace(strings.NewReader(doc), Options{})
	require.NoError(t, err)
	require.Len(t, result.Stacks, 1)

	stack := result.Stacks[0]
	require.NotNil(t, stack.Context.TID)
	assert.Equal(t, 200, *stack.Context.TID)

	v, ok := stack.Weights.Get("samples")
	require.True(t, ok)
	assert.Equal(t, 100.0, v)
}
