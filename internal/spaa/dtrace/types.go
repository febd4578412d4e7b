package dtrace

import "github.com/mabhi256/spaa/internal/spaa/model"

// Layout selects one of the three textual DTrace output shapes spec.md
// §4.5 names.
type Layout int

const (
	LayoutAggregated Layout = iota
	LayoutSplit
	LayoutPerProbe
)

// Options configures one DTrace text conversion. These mirror the CLI
// flags spec.md §6 describes for the DTrace converter (output path is the
// caller's concern, not this package's).
type Options struct {
	EventName   string
	FrequencyHz int64
	Layout      Layout
	StackIDMode model.StackIDMode
}

// defaulted fills in zero-value fallbacks: event name "profile" and
// content-addressable stack IDs.
func (o Options) defaulted() Options {
	if o.EventName == "" {
		o.EventName = "profile"
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
