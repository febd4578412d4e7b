package chromecpu

import (
	"io"
	"sort"

	gojson "github.com/goccy/go-json"

	"github.com/mabhi256/spaa/internal/spaa/aggregator"
	"github.com/mabhi256/spaa/internal/spaa/errs"
	"github.com/mabhi256/spaa/internal/spaa/model"
	"github.com/mabhi256/spaa/internal/spaa/registry"
)

// ParseProfile decodes a standalone V8 .cpuprofile document and returns its
// SPAA dictionaries and aggregated stacks. Unlike the line-delimited text
// formats, the cpuprofile schema is not streamable (spec.md §5 permits
// buffering JSON-native inputs whole).
func ParseProfile(r io.Reader, opts Options) (*Result, error) {
	opts = opts.defaulted()

	var cp CPUProfile
	if err := gojson.NewDecoder(r).Decode(&cp); err != nil {
		return nil, malformedJSON(err)
	}

	dsos := registry.NewDSOs()
	frames := registry.NewFrames()
	threads := registry.NewThreads()
	agg := aggregator.New(model.LeafToRoot, newIDer(opts, dsos))

	sess := newSession(dsos, frames, threads, agg)
	sess.run(cp.Nodes, cp.Samples, cp.TimeDeltas, 0, 0, false)

	freqHz, recoverable := estimateFrequency(cp.TimeDeltas)
	if recoverable {
		agg.DeriveCPUTimeNs(freqHz)
	}

	return &Result{
		Header:  buildHeader(freqHz, recoverable),
		DSOs:    dsos.All(),
		Frames:  frames.All(),
		Threads: threads.All(),
		Stacks:  agg.Flush(),
	}, nil
}

// ParseTrace decodes a DevTools Performance trace, stitches its Profile/
// ProfileChunk events per session, and reconstructs aggregated stacks for
// each profiled thread.
func ParseTrace(r io.Reader, opts Options) (*Result, error) {
	opts = opts.defaulted()

	var trace Trace
	if err := gojson.NewDecoder(r).Decode(&trace); err != nil {
		return nil, malformedJSON(err)
	}

	dsos := registry.NewDSOs()
	frames := registry.NewFrames()
	threads := registry.NewThreads()
	agg := aggregator.New(model.LeafToRoot, newIDer(opts, dsos))

	sessions := stitchTrace(trace.TraceEvents)
	ids := make([]string, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var allDeltas []int64
	for _, id := range ids {
		s := sessions[id]
		sess := newSession(dsos, frames, threads, agg)
		sess.run(s.nodes, s.samples, s.deltas, s.pid, s.tid, s.hasTID)
		allDeltas = append(allDeltas, s.deltas...)
	}

	freqHz, recoverable := estimateFrequency(allDeltas)
	if recoverable {
		agg.DeriveCPUTimeNs(freqHz)
	}

	return &Result{
		Header:  buildHeader(freqHz, recoverable),
		DSOs:    dsos.All(),
		Frames:  frames.All(),
		Threads: threads.All(),
		Stacks:  agg.Flush(),
	}, nil
}

func newIDer(opts Options, dsos *registry.DSOs) aggregator.StackIDer {
	if opts.StackIDMode == model.LocalIDs {
		return aggregator.NewLocalIDer()
	}
	return aggregator.NewContentAddressableIDer(func(dsoID int) string {
		for _, d := range dsos.All() {
			if d.ID == dsoID {
				return d.Name
			}
		}
		return ""
	})
}

func buildHeader(freqHz float64, recoverable bool) *model.Header {
	event := model.Event{
		Name:          "cpu",
		Kind:          model.EventTimer,
		PrimaryMetric: "samples",
	}
	if recoverable {
		hz := int64(freqHz)
		event.Sampling = model.Sampling{Mode: model.ModeFrequency, FrequencyHz: &hz}
	} else {
		event.Sampling = model.Sampling{Mode: model.ModeEvent}
	}
	return model.NewHeader("chrome-cpu", model.LeafToRoot, model.ContentAddressable, []model.Event{event})
}

// estimateFrequency derives an approximate sampling frequency from the
// mean inter-sample time delta, per spec.md §4.6's "mode = frequency when a
// sampling interval is recoverable" and §9's documented cpu_time_ns
// derivation (samples * 1e9 / frequency_hz).
func estimateFrequency(deltasMicros []int64) (hz float64, recoverable bool) {
	if len(deltasMicros) == 0 {
		return 0, false
	}
	var sum int64
	var n int
	for _, d := range deltasMicros {
		if d <= 0 {
			continue
		}
		sum += d
		n++
	}
	if n == 0 {
		return 0, false
	}
	meanMicros := float64(sum) / float64(n)
	return 1e6 / meanMicros, true
}

func malformedJSON(err error) error {
	return errs.Malformed("chromecpu: invalid JSON: %v", err)
}
