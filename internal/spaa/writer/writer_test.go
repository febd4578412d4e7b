package writer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/spaa/internal/spaa/errs"
	"github.com/mabhi256/spaa/internal/spaa/model"
)

func samplePeriodEvent() model.Event {
	one := int64(1)
	return model.Event{
		Name:          "profile",
		Kind:          model.EventTimer,
		PrimaryMetric: "samples",
		Sampling:      model.Sampling{Mode: model.ModePeriod, SamplePeriod: &one},
	}
}

func TestWriteAll_OrdersDictionariesBeforeReferences(t *testing.T) {
	header := model.NewHeader("dtrace", model.LeafToRoot, model.ContentAddressable, []model.Event{samplePeriodEvent()})
	dso := &model.DSO{Type: model.RecordDSO, ID: 0, Name: "myapp"}
	frame := &model.Frame{Type: model.RecordFrame, ID: 0, DSO: 0, Func: "worker", IP: "0x1", FuncResolved: true, Kind: model.KindUser}
	thread := &model.Thread{Type: model.RecordThread, PID: 100, TID: 100}
	stack := &model.Stack{
		Type: model.RecordStack, ID: "s1", Frames: []int{0}, StackType: model.StackUnified,
		Context: model.Context{Event: "profile"},
		Weights: model.Weights{{Name: "samples", Value: 1}},
	}

	var buf bytes.Buffer
	err := WriteAll(&buf, header, []*model.DSO{dso}, []*model.Frame{frame}, []*model.Thread{thread}, []*model.Stack{stack})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], `"type":"header"`)
	assert.Contains(t, lines[1], `"type":"dso"`)
	assert.Contains(t, lines[2], `"type":"frame"`)
	assert.Contains(t, lines[3], `"type":"thread"`)
	assert.Contains(t, lines[4], `"type":"stack"`)
}

// TestStack_RejectsUndeclaredFrameReference covers spec.md §8 scenario 6: a
// stack whose frames contain an ID never defined must be rejected with a
// semantic-violation error naming the missing frame ID.
func TestStack_RejectsUndeclaredFrameReference(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)
	header := model.NewHeader("dtrace", model.LeafToRoot, model.ContentAddressable, []model.Event{samplePeriodEvent()})
	require.NoError(t, w.Header(header))

	stack := &model.Stack{
		Type: model.RecordStack, ID: "s1", Frames: []int{7}, StackType: model.StackUnified,
		Context: model.Context{Event: "profile"},
		Weights: model.Weights{{Name: "samples", Value: 1}},
	}

	err := w.Stack(stack)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSemanticViolation))
	assert.Contains(t, err.Error(), "7")
}

func TestStack_RejectsMissingPrimaryMetric(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)
	header := model.NewHeader("dtrace", model.LeafToRoot, model.ContentAddressable, []model.Event{samplePeriodEvent()})
	require.NoError(t, w.Header(header))
	require.NoError(t, w.DSO(&model.DSO{Type: model.RecordDSO, ID: 0, Name: "x"}))
	require.NoError(t, w.Frame(&model.Frame{Type: model.RecordFrame, ID: 0, DSO: 0, Func: "x", FuncResolved: true}))

	stack := &model.Stack{
		Type: model.RecordStack, ID: "s1", Frames: []int{0}, StackType: model.StackUnified,
		Context: model.Context{Event: "profile"},
		Weights: model.Weights{{Name: "cpu_time_ns", Value: 1}},
	}

	err := w.Stack(stack)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSemanticViolation))
}

func TestFrame_RejectsUndeclaredDSO(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)
	header := model.NewHeader("dtrace", model.LeafToRoot, model.ContentAddressable, []model.Event{samplePeriodEvent()})
	require.NoError(t, w.Header(header))

	err := w.Frame(&model.Frame{Type: model.RecordFrame, ID: 0, DSO: 5, Func: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSemanticViolation))
}
