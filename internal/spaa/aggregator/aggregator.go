// Package aggregator implements the stack aggregator (spec.md §4.4): it
// maps a (context, frame-sequence) key to an accumulating weight vector,
// produces stack identifiers, and derives exclusive (self-time)
// attribution for the leaf frame of each unique stack.
package aggregator

import (
	"sort"

	"github.com/mabhi256/spaa/internal/spaa/model"
)

// partial is one not-yet-flushed aggregation bucket.
type partial struct {
	id        string
	seq       int
	frames    []int
	stackType model.StackType
	context   model.Context
	weights   model.Weights
	exclusive model.Weights
	related   map[string]bool
}

// Aggregator buffers keys, not samples: memory is bounded by the number of
// distinct stacks, not the number of raw samples (spec.md §9 design note).
type Aggregator struct {
	order   model.FrameOrder
	ider    StackIDer
	byKey   map[Key]*partial
	byID    map[string]*partial
	nextSeq int
}

func New(order model.FrameOrder, ider StackIDer) *Aggregator {
	return &Aggregator{
		order: order,
		ider:  ider,
		byKey: make(map[Key]*partial),
		byID:  make(map[string]*partial),
	}
}

// Observe records one occurrence of the given full stack, contributing
// weights to both the stack's total weight vector and to its exclusive
// (leaf) weight vector.
//
// Because the aggregation key is the complete ordered frame sequence, every
// occurrence of a given key is by construction a sample where the sampler's
// immediate execution position was the leaf: there is no other stack whose
// path could contribute to this key's exclusive weight. So exclusive always
// tracks total for the key currently being observed — the guard in spec.md
// §4.4 ("not for every appearance of that frame on some other stack's
// path") is automatically satisfied by keying on the full sequence rather
// than on the leaf frame alone.
func (a *Aggregator) Observe(ctx model.Context, tid int, hasTID bool, frames []int, frameKeys []model.FrameKey, stackType model.StackType, weights []model.Metric) string {
	key := NewKey(ctx.Event, tid, hasTID, frames)
	p, ok := a.byKey[key]
	if !ok {
		p = &partial{
			id:        a.ider.ID(frameKeys),
			seq:       a.nextSeq,
			frames:    append([]int(nil), frames...),
			stackType: stackType,
			context:   ctx,
			related:   make(map[string]bool),
		}
		a.nextSeq++
		a.byKey[key] = p
		a.byID[p.id] = p
	}
	for _, w := range weights {
		p.weights = p.weights.Add(w.Name, w.Value, w.Unit)
		p.exclusive = p.exclusive.Add(w.Name, w.Value, w.Unit)
	}
	return p.id
}

// Link records a bidirectional related_stacks relationship between two
// already-observed stack IDs, used for DTrace ustack()/kstack() pairing
// (spec.md §4.5).
func (a *Aggregator) Link(idA, idB string) {
	if pa, ok := a.byID[idA]; ok {
		pa.related[idB] = true
	}
	if pb, ok := a.byID[idB]; ok {
		pb.related[idA] = true
	}
}

// AddExtraWeight adds a metric that wasn't part of the original Observe
// call (e.g. a perf adapter's secondary "period" weight alongside
// "samples") to an already-known stack ID, without touching exclusive.
// Used only when a metric is genuinely not attributable to the leaf (rare);
// most callers should just pass every metric to Observe.
func (a *Aggregator) AddExtraWeight(id string, m model.Metric) {
	if p, ok := a.byID[id]; ok {
		p.weights = p.weights.Add(m.Name, m.Value, m.Unit)
	}
}

// DeriveCPUTimeNs adds an optional cpu_time_ns metric to every stack that
// carries a "samples" weight, computed as samples * 1e9 / frequencyHz, per
// the derivation spec.md §9 leaves as an open question and this
// implementation documents: see internal/spaa/chromecpu/convert.go.
func (a *Aggregator) DeriveCPUTimeNs(frequencyHz float64) {
	if frequencyHz <= 0 {
		return
	}
	for _, p := range a.byKey {
		samples, ok := p.weights.Get("samples")
		if !ok {
			continue
		}
		ns := samples * 1e9 / frequencyHz
		p.weights = p.weights.Add("cpu_time_ns", ns, "nanoseconds")
	}
}

// Flush returns every accumulated stack in first-observation order, ready
// for the output writer. It does not clear the aggregator; callers that
// reuse it across conversions should construct a new Aggregator instead
// (spec.md §5: the aggregator is owned by one conversion).
func (a *Aggregator) Flush() []*model.Stack {
	ordered := make([]*partial, len(a.byKey))
	for _, p := range a.byKey {
		ordered[p.seq] = p
	}
	out := make([]*model.Stack, 0, len(ordered))
	for _, p := range ordered {
		leaf := p.frames[0]
		if a.order == model.RootToLeaf {
			leaf = p.frames[len(p.frames)-1]
		}
		var related []string
		for id := range p.related {
			related = append(related, id)
		}
		sort.Strings(related)
		out = append(out, &model.Stack{
			Type:          model.RecordStack,
			ID:            p.id,
			Frames:        p.frames,
			StackType:     p.stackType,
			Context:       p.context,
			Weights:       p.weights,
			Exclusive:     &model.Exclusive{Frame: leaf, Weights: p.exclusive},
			RelatedStacks: related,
		})
	}
	return out
}

// Len reports the number of distinct stacks accumulated so far.
func (a *Aggregator) Len() int { return len(a.byKey) }
