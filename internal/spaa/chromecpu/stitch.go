package chromecpu

import (
	"encoding/json"
	"fmt"
)

const (
	phaseSample = "P"
)

// stitched accumulates one V8 profiler session's Profile + ProfileChunk
// events, in trace order, into a single node tree and flat sample stream
// (spec.md §4.6: "chunks carry incremental nodes, samples, and timeDeltas
// that extend the running profile").
type stitched struct {
	pid, tid int
	hasTID   bool
	nodes    []Node
	samples  []int
	deltas   []int64
}

// stitchTrace walks a DevTools trace's events and groups Profile/
// ProfileChunk payloads by their shared id into one stitched session per
// id. A Profile event (ph="P", name="Profile") names the pid/tid being
// profiled; the ProfileChunk events referencing the same id carry the
// actual node/sample data and may themselves run on a dedicated sampling
// thread distinct from the profiled one.
func stitchTrace(events []TraceEvent) map[string]*stitched {
	targets := make(map[string]struct{ pid, tid int })
	for _, evt := range events {
		if evt.Ph != phaseSample || evt.Name != "Profile" {
			continue
		}
		id := eventIDToString(evt.ID)
		if id == "" {
			continue
		}
		targets[id] = struct{ pid, tid int }{evt.PID, evt.TID}
	}

	sessions := make(map[string]*stitched)
	for _, evt := range events {
		if evt.Name != "ProfileChunk" {
			continue
		}
		id := eventIDToString(evt.ID)

		var args profileChunkArgs
		if err := json.Unmarshal(evt.Args, &args); err != nil {
			continue
		}
		cp := args.Data.CPUProfile
		if len(cp.Nodes) == 0 && len(cp.Samples) == 0 {
			continue
		}
		deltas := args.Data.TimeDeltas
		if len(deltas) == 0 {
			deltas = cp.TimeDeltas
		}

		s, ok := sessions[id]
		if !ok {
			pid, tid, hasTID := evt.PID, evt.TID, true
			if t, ok := targets[id]; ok {
				pid, tid = t.pid, t.tid
			}
			s = &stitched{pid: pid, tid: tid, hasTID: hasTID}
			sessions[id] = s
		}
		s.nodes = append(s.nodes, cp.Nodes...)
		s.samples = append(s.samples, cp.Samples...)
		s.deltas = append(s.deltas, deltas...)
	}
	return sessions
}

func eventIDToString(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%d", int64(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}
