package perf

import (
	"io"

	"github.com/mabhi256/spaa/internal/spaa/aggregator"
	"github.com/mabhi256/spaa/internal/spaa/log"
	"github.com/mabhi256/spaa/internal/spaa/model"
	"github.com/mabhi256/spaa/internal/spaa/registry"
	"github.com/mabhi256/spaa/internal/spaa/symbolize"
)

// Parse reads a perf script text listing and returns the SPAA dictionaries
// and aggregated stacks. diag accumulates non-fatal warnings (spec.md §7);
// pass nil to discard them.
func Parse(r io.Reader, opts Options, diag *log.Diagnostics) (*Result, error) {
	opts = opts.defaulted()

	dsos := registry.NewDSOs()
	frameReg := registry.NewFrames()
	threads := registry.NewThreads()

	ider := aggregator.NewContentAddressableIDer(func(dsoID int) string {
		for _, d := range dsos.All() {
			if d.ID == dsoID {
				if d.BuildID != "" {
					return d.BuildID
				}
				return d.Name
			}
		}
		return ""
	})
	if opts.StackIDMode == model.LocalIDs {
		ider = aggregator.NewLocalIDer()
	}
	agg := aggregator.New(model.LeafToRoot, ider)

	nominalPeriod := int64(1)
	event := model.Event{
		Name:          opts.EventName,
		Kind:          model.EventTimer,
		PrimaryMetric: "period",
		Sampling: model.Sampling{
			Mode:         model.ModePeriod,
			SamplePeriod: &nominalPeriod,
		},
	}
	header := model.NewHeader("perf", model.LeafToRoot, opts.StackIDMode, []model.Event{event})

	err := scanBlocks(r, func(b block) error {
		observe(agg, dsos, frameReg, threads, opts, b, diag)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Header:  header,
		DSOs:    dsos.All(),
		Frames:  frameReg.All(),
		Threads: threads.All(),
		Stacks:  agg.Flush(),
	}, nil
}

func observe(agg *aggregator.Aggregator, dsos *registry.DSOs, frameReg *registry.Frames, threads *registry.Threads, opts Options, b block, diag *log.Diagnostics) {
	if len(b.frames) == 0 {
		return
	}

	ctx := model.Context{Event: opts.EventName}
	pid := b.pid
	ctx.PID = &pid
	tid := b.tid
	if b.hasTID {
		t := b.tid
		ctx.TID = &t
	}
	threads.Intern(b.pid, tid, b.comm)

	frameIDs := make([]int, 0, len(b.frames))
	frameKeys := make([]model.FrameKey, 0, len(b.frames))

	for i, pf := range b.frames {
		// perf lists a run of same-IP frames deepest-inlined first, with the
		// physical frame last. Each inlined frame's inline_depth is the
		// number of same-IP frames that follow it; the physical frame
		// itself carries no inline_depth (spec.md §4.9).
		depth := 0
		for j := i + 1; j < len(b.frames) && b.frames[j].IP == pf.IP; j++ {
			depth++
		}
		var inlineDepth *int
		inlined := depth > 0
		if inlined {
			d := depth
			inlineDepth = &d
		}

		module := pf.Module
		if module == "" {
			module = "(unknown)"
		}
		dsoID, _, _ := dsos.Intern(module, "", false)

		resolved := pf.Func != ""
		if !resolved && diag != nil {
			diag.UnresolvedSymbol()
		}
		ip := pf.IP
		funcName := pf.Func
		if resolved {
			if demangled, changed := symbolize.Demangle(funcName); changed {
				funcName = demangled
			}
		} else {
			funcName = ip
		}

		fid, fr, _ := frameReg.Intern(registry.FrameSpec{
			DSO:          dsoID,
			Func:         funcName,
			IP:           ip,
			SymbolOffset: pf.Offset,
			FuncResolved: resolved,
			Inlined:      inlined,
			InlineDepth:  inlineDepth,
			Kind:         model.KindUser,
		})
		frameIDs = append(frameIDs, fid)
		frameKeys = append(frameKeys, fr.Key())
	}

	agg.Observe(ctx, tid, b.hasTID, frameIDs, frameKeys, model.StackUser, []model.Metric{
		{Name: "samples", Value: 1},
		{Name: "period", Value: float64(b.period)},
	})
}
