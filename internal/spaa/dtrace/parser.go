// Package dtrace parses the three textual DTrace stack-aggregation layouts
// (spec.md §4.5) into SPAA dictionaries and aggregated stacks.
package dtrace

import (
	"io"

	"github.com/mabhi256/spaa/internal/spaa/aggregator"
	"github.com/mabhi256/spaa/internal/spaa/log"
	"github.com/mabhi256/spaa/internal/spaa/model"
	"github.com/mabhi256/spaa/internal/spaa/registry"
)

// Parse reads a DTrace text listing in the given layout and returns the
// SPAA dictionaries and aggregated stacks. diag accumulates non-fatal
// warnings (spec.md §7); pass nil to discard them.
func Parse(r io.Reader, opts Options, diag *log.Diagnostics) (*Result, error) {
	opts = opts.defaulted()

	dsos := registry.NewDSOs()
	frames := registry.NewFrames()
	threads := registry.NewThreads()

	var ider aggregator.StackIDer
	if opts.StackIDMode == model.LocalIDs {
		ider = aggregator.NewLocalIDer()
	} else {
		ider = aggregator.NewContentAddressableIDer(func(dsoID int) string {
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
	}
	agg := aggregator.New(model.LeafToRoot, ider)

	freq := opts.FrequencyHz
	var samplePeriod *int64
	var freqPtr *int64
	mode := model.ModeFrequency
	if freq > 0 {
		freqPtr = &freq
	} else {
		mode = model.ModePeriod
		one := int64(1)
		samplePeriod = &one
	}

	event := model.Event{
		Name:          opts.EventName,
		Kind:          model.EventTimer,
		PrimaryMetric: "samples",
		Sampling: model.Sampling{
			Mode:         mode,
			FrequencyHz:  freqPtr,
			SamplePeriod: samplePeriod,
		},
	}
	header := model.NewHeader("dtrace", model.LeafToRoot, opts.StackIDMode, []model.Event{event})

	err := scanBlocks(r, opts.Layout, func(b stackBlock) error {
		observe(agg, dsos, frames, threads, opts, b, diag)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Header:  header,
		DSOs:    dsos.All(),
		Frames:  frames.All(),
		Threads: threads.All(),
		Stacks:  agg.Flush(),
	}, nil
}

func observe(agg *aggregator.Aggregator, dsos *registry.DSOs, frameReg *registry.Frames, threads *registry.Threads, opts Options, b stackBlock, diag *log.Diagnostics) {
	if len(b.Frames) == 0 {
		return
	}

	ctx := model.Context{Event: opts.EventName}
	if b.HasPID {
		pid := b.PID
		ctx.PID = &pid
	}
	if b.HasTID {
		tid := b.TID
		ctx.TID = &tid
	}
	if b.Header != "" {
		ctx.Probe = b.Header
	}
	tid := 0
	if b.HasTID {
		tid = b.TID
	}
	if b.HasPID {
		threads.Intern(b.PID, tid, "")
	}

	// A single probe observation that fired ustack() and kstack() together
	// prints both in one block: the frames split into two contiguous
	// kind-homogeneous runs. spec.md §4.5 requires emitting these as two
	// linked stack records rather than one mixed stack.
	if segs := splitByKind(b.Frames); len(segs) == 2 && segs[0].kind != segs[1].kind {
		idA := observeSegment(agg, dsos, frameReg, ctx, tid, b.HasTID, segs[0], b.Count, diag)
		idB := observeSegment(agg, dsos, frameReg, ctx, tid, b.HasTID, segs[1], b.Count, diag)
		agg.Link(idA, idB)
		return
	}

	observeSegment(agg, dsos, frameReg, ctx, tid, b.HasTID, frameSegment{frames: b.Frames, kind: model.StackUnified}, b.Count, diag)
}

type frameSegment struct {
	frames []ParsedFrame
	kind   model.StackType
}

// splitByKind breaks a block's frames into contiguous same-kind runs. Most
// blocks are entirely user or entirely kernel frames (one run); a
// ustack()+kstack() pair produces exactly two.
func splitByKind(pfs []ParsedFrame) []frameSegment {
	var segs []frameSegment
	for _, pf := range pfs {
		want := model.StackUser
		if pf.Kind == model.KindKernel {
			want = model.StackKernel
		}
		if len(segs) > 0 && segs[len(segs)-1].kind == want {
			segs[len(segs)-1].frames = append(segs[len(segs)-1].frames, pf)
			continue
		}
		segs = append(segs, frameSegment{frames: []ParsedFrame{pf}, kind: want})
	}
	return segs
}

func observeSegment(agg *aggregator.Aggregator, dsos *registry.DSOs, frameReg *registry.Frames, ctx model.Context, tid int, hasTID bool, seg frameSegment, count int, diag *log.Diagnostics) string {
	frameIDs := make([]int, 0, len(seg.frames))
	frameKeys := make([]model.FrameKey, 0, len(seg.frames))

	for _, pf := range seg.frames {
		dsoID, _, _ := dsos.Intern(dsoModuleName(pf), "", pf.Kind == model.KindKernel)
		if !pf.FuncResolved && diag != nil {
			diag.UnresolvedSymbol()
		}
		fid, fr, _ := frameReg.Intern(registry.FrameSpec{
			DSO:          dsoID,
			Func:         pf.Func,
			IP:           ipOf(pf),
			SymbolOffset: pf.Offset,
			FuncResolved: pf.FuncResolved,
			Kind:         pf.Kind,
		})
		frameIDs = append(frameIDs, fid)
		frameKeys = append(frameKeys, fr.Key())
	}

	return agg.Observe(ctx, tid, hasTID, frameIDs, frameKeys, seg.kind, []model.Metric{
		{Name: "samples", Value: float64(count)},
	})
}

func dsoModuleName(pf ParsedFrame) string {
	if pf.Module == "" {
		return "(unknown)"
	}
	return pf.Module
}

func ipOf(pf ParsedFrame) string {
	if !pf.FuncResolved {
		return pf.Func
	}
	return pf.Func + pf.Offset
}
