package aggregator

import "strconv"

// Key is the aggregation key of spec.md §4.4: a context-tuple plus the
// ordered frame-ID sequence. Two samples with the same key accumulate into
// one stack record.
type Key struct {
	Event  string
	TID    int    // meaningful only when HasTID is set
	HasTID bool   // false means "no tid in context" (merged across threads)
	Frames string // frame IDs joined, used as a map key
}

// NewKey builds an aggregation key. tid/hasTID let callers that want
// per-thread aggregates include tid in the key (spec.md §4.4: "SHOULD
// include tid where present"); callers whose source tool already merged
// across threads can omit it.
func NewKey(event string, tid int, hasTID bool, frames []int) Key {
	return Key{Event: event, TID: tid, HasTID: hasTID, Frames: joinFrames(frames)}
}

func joinFrames(frames []int) string {
	if len(frames) == 0 {
		return ""
	}
	// strconv.AppendInt into a single buffer avoids per-frame allocations
	// from fmt.Sprintf in the hot aggregation path.
	buf := make([]byte, 0, len(frames)*6)
	for i, f := range frames {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(f), 10)
	}
	return string(buf)
}
