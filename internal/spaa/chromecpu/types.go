// Package chromecpu parses V8 .cpuprofile documents and DevTools
// Performance traces into SPAA dictionaries and aggregated stacks
// (spec.md §4.6).
package chromecpu

import (
	"encoding/json"

	"github.com/mabhi256/spaa/internal/spaa/model"
)

// CPUProfile is the V8 .cpuprofile document shape: a node tree plus flat
// sample/timeDelta arrays.
type CPUProfile struct {
	Nodes      []Node  `json:"nodes"`
	Samples    []int   `json:"samples"`
	TimeDeltas []int64 `json:"timeDeltas"`
	StartTime  int64   `json:"startTime"`
	EndTime    int64   `json:"endTime"`
}

// Node is one node in the V8 profile call tree.
type Node struct {
	ID        int       `json:"id"`
	CallFrame CallFrame `json:"callFrame"`
	HitCount  int       `json:"hitCount"`
	Children  []int     `json:"children"`
	Parent    int       `json:"-"` // filled in by session.run, absent from the wire format
}

// CallFrame identifies a JS function activation.
type CallFrame struct {
	FunctionName string `json:"functionName"`
	ScriptID     any    `json:"scriptId"`
	URL          string `json:"url"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber"`
}

// Trace is the subset of a DevTools Performance trace this package reads:
// the flat traceEvents array. Profile/ProfileChunk events carry the
// embedded V8 CPU profile, chunked and stitched per-id.
type Trace struct {
	TraceEvents []TraceEvent `json:"traceEvents"`
}

// TraceEvent is one Chrome trace event (Trace Event Format). Only the
// fields needed to locate and stitch Profile/ProfileChunk payloads are
// modeled; everything else in a real trace is ignored.
type TraceEvent struct {
	Name string          `json:"name"`
	Ph   string          `json:"ph"`
	Ts   float64         `json:"ts"`
	PID  int             `json:"pid"`
	TID  int             `json:"tid"`
	ID   any             `json:"id"`
	Args json.RawMessage `json:"args"`
}

type profileChunkArgs struct {
	Data profileChunkData `json:"data"`
}

type profileChunkData struct {
	CPUProfile struct {
		Nodes      []Node  `json:"nodes"`
		Samples    []int   `json:"samples"`
		TimeDeltas []int64 `json:"timeDeltas"`
	} `json:"cpuProfile"`
	TimeDeltas []int64 `json:"timeDeltas"`
}

// Options configures one Chrome CPU conversion.
type Options struct {
	StackIDMode model.StackIDMode
}

func (o Options) defaulted() Options {
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
