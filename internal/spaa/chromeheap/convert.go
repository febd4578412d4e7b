package chromeheap

import (
	"github.com/mabhi256/spaa/internal/spaa/aggregator"
	"github.com/mabhi256/spaa/internal/spaa/model"
	"github.com/mabhi256/spaa/internal/spaa/registry"
)

// Options configures a graph-to-SPAA conversion.
type Options struct {
	StackIDMode model.StackIDMode
}

func (o Options) defaulted() Options {
	if o.StackIDMode == "" {
		o.StackIDMode = model.ContentAddressable
	}
	return o
}

// Result is a Graph reprojected as SPAA dictionaries and aggregated
// allocation stacks, per spec.md §4.7's "synthetic allocation event":
// one single-frame stack per constructor, aggregated across every node
// sharing it.
type Result struct {
	Header *model.Header
	DSOs   []*model.DSO
	Frames []*model.Frame
	Stacks []*model.Stack
}

// ToSPAA groups every node of g by Constructor and emits one aggregated
// allocation stack per constructor.
func ToSPAA(g *Graph, opts Options) *Result {
	opts = opts.defaulted()

	dsos := registry.NewDSOs()
	frames := registry.NewFrames()

	var ider aggregator.StackIDer
	if opts.StackIDMode == model.LocalIDs {
		ider = aggregator.NewLocalIDer()
	} else {
		ider = aggregator.NewContentAddressableIDer(func(dsoID int) string {
			for _, d := range dsos.All() {
				if d.ID == dsoID {
					return d.Name
				}
			}
			return ""
		})
	}
	agg := aggregator.New(model.LeafToRoot, ider)

	dsoID, _, _ := dsos.Intern("(heap)", "", false)
	frameIDFor := make(map[string]int)
	frameKeyFor := make(map[string]model.FrameKey)

	for _, n := range g.Nodes {
		ctor := Constructor(n)
		fid, ok := frameIDFor[ctor]
		if !ok {
			f, rec, _ := frames.Intern(registry.FrameSpec{
				DSO:          dsoID,
				Func:         ctor,
				IP:           "0x0",
				FuncResolved: true,
				Kind:         model.KindUnknown,
			})
			fid = f
			frameIDFor[ctor] = fid
			frameKeyFor[ctor] = rec.Key()
		}
		key := frameKeyFor[ctor]

		agg.Observe(model.Context{Event: "alloc"}, 0, false, []int{fid}, []model.FrameKey{key}, model.StackUnified, []model.Metric{
			{Name: "alloc_bytes", Value: float64(n.SelfSize)},
			{Name: "alloc_count", Value: 1},
		})
	}

	header := model.NewHeader("chrome-heap-snapshot", model.LeafToRoot, opts.StackIDMode, []model.Event{
		{Name: "alloc", Kind: model.EventAllocation, PrimaryMetric: "alloc_bytes", Sampling: model.Sampling{Mode: model.ModeEvent}},
	})

	return &Result{
		Header: header,
		DSOs:   dsos.All(),
		Frames: frames.All(),
		Stacks: agg.Flush(),
	}
}
