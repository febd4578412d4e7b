package heapdiff

import (
	"github.com/mabhi256/spaa/internal/spaa/chromeheap"
	"github.com/mabhi256/spaa/internal/spaa/model"
)

// Options configures one heap-diff run.
type Options struct {
	BaselinePath   string
	TargetPath     string
	CandidateBound int // 0 uses DefaultCandidateBound
}

// Result is a complete heap-diff conversion, ready for the output writer
// in the order spec.md §4.8 mandates: header, growth (size-descending),
// retained (natural BFS order).
type Result struct {
	Header   *model.HeapDiffHeader
	Growths  []*model.Growth
	Retained []*model.Retained
}

// Diff computes growth and retention records between two parsed heap
// snapshots.
func Diff(baseline, target *chromeheap.Graph, opts Options) *Result {
	growths := Growth(baseline, target)
	candidates := Candidates(baseline, target, growths, opts.CandidateBound)
	retained := retainedFor(target, candidates)

	return &Result{
		Header:   model.NewHeapDiffHeader(opts.BaselinePath, opts.TargetPath),
		Growths:  growths,
		Retained: retained,
	}
}
