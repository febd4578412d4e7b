// Package heapdiff computes per-constructor growth between two heap
// snapshots and walks newly-live objects back to a GC root (spec.md §4.8).
package heapdiff

import (
	"sort"

	"github.com/mabhi256/spaa/internal/spaa/chromeheap"
	"github.com/mabhi256/spaa/internal/spaa/model"
)

type constructorStats struct {
	countBefore, countAfter int
	sizeBefore, sizeAfter   int64
}

// Growth groups nodes of both graphs by chromeheap.Constructor and returns
// one growth record per constructor that grew in count or size, sorted
// descending by size_delta (spec.md §4.8 step 1).
func Growth(baseline, target *chromeheap.Graph) []*model.Growth {
	stats := make(map[string]*constructorStats)

	get := func(ctor string) *constructorStats {
		s, ok := stats[ctor]
		if !ok {
			s = &constructorStats{}
			stats[ctor] = s
		}
		return s
	}

	for _, n := range baseline.Nodes {
		s := get(chromeheap.Constructor(n))
		s.countBefore++
		s.sizeBefore += n.SelfSize
	}
	for _, n := range target.Nodes {
		s := get(chromeheap.Constructor(n))
		s.countAfter++
		s.sizeAfter += n.SelfSize
	}

	out := make([]*model.Growth, 0, len(stats))
	for ctor, s := range stats {
		countDelta := s.countAfter - s.countBefore
		sizeDelta := s.sizeAfter - s.sizeBefore
		if countDelta <= 0 && sizeDelta <= 0 {
			continue
		}
		out = append(out, &model.Growth{
			Type:        model.RecordGrowth,
			Constructor: ctor,
			CountBefore: s.countBefore,
			CountAfter:  s.countAfter,
			CountDelta:  countDelta,
			SizeBefore:  s.sizeBefore,
			SizeAfter:   s.sizeAfter,
			SizeDelta:   sizeDelta,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SizeDelta != out[j].SizeDelta {
			return out[i].SizeDelta > out[j].SizeDelta
		}
		return out[i].Constructor < out[j].Constructor // stable tie-break
	})
	return out
}
