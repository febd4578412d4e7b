// Package perf adapts perf script textual stack listings onto the same
// interning/aggregation pipeline the DTrace converter uses (spec.md §4.9):
// a thin format-specific front end, not a parallel implementation.
package perf

import "github.com/mabhi256/spaa/internal/spaa/model"

// Options configures one perf script conversion.
type Options struct {
	EventName   string
	StackIDMode model.StackIDMode
}

func (o Options) defaulted() Options {
	if o.EventName == "" {
		o.EventName = "cycles"
	}
	if o.StackIDMode == "" {
		o.StackIDMode = model.ContentAddressable
	}
	return o
}

// Result is everything one conversion produced, ready for the output
// writer to emit in dictionary-before-reference order.
type Result struct {
	Header  *model.Header
	DSOs    []*model.DSO
	Frames  []*model.Frame
	Threads []*model.Thread
	Stacks  []*model.Stack
}

// parsedFrame is one decoded perf script frame line, prior to interning.
type parsedFrame struct {
	IP     string
	Func   string
	Offset string
	Module string
}

// block is one header-line-plus-frames stack sample, prior to interning.
type block struct {
	comm      string
	pid, tid  int
	hasTID    bool
	event     string
	period    int64
	timestamp float64
	frames    []parsedFrame
}
