package heapdiff

import (
	"github.com/mabhi256/spaa/internal/spaa/chromeheap"
	"github.com/mabhi256/spaa/internal/spaa/model"
)

// DefaultCandidateBound is the default cap on how many newly-live nodes are
// walked for retention, across all constructors (spec.md §4.8 step 2).
const DefaultCandidateBound = 100

// candidate is one newly-live node selected for a retention walk.
type candidate struct {
	node        chromeheap.Node
	constructor string
}

// Candidates selects nodes that are newly live in target (their id doesn't
// appear in baseline), restricted to the growth-ranked constructors growths
// names, up to bound total across all of them, sampled in growth's
// descending order.
func Candidates(baseline, target *chromeheap.Graph, growths []*model.Growth, bound int) []candidate {
	if bound <= 0 {
		bound = DefaultCandidateBound
	}

	baselineIDs := make(map[int64]bool, len(baseline.Nodes))
	for _, n := range baseline.Nodes {
		baselineIDs[n.ID] = true
	}

	// Every retained record's constructor must appear in a growth record
	// with size_delta > 0 (spec.md §8), so candidate selection is
	// restricted to that subset of growths, not every emitted one.
	wanted := make(map[string]bool, len(growths))
	for _, g := range growths {
		if g.SizeDelta > 0 {
			wanted[g.Constructor] = true
		}
	}

	byConstructor := make(map[string][]chromeheap.Node)
	for _, n := range target.Nodes {
		if baselineIDs[n.ID] {
			continue
		}
		ctor := chromeheap.Constructor(n)
		if !wanted[ctor] {
			continue
		}
		byConstructor[ctor] = append(byConstructor[ctor], n)
	}

	var out []candidate
	for _, g := range growths {
		if len(out) >= bound {
			break
		}
		for _, n := range byConstructor[g.Constructor] {
			if len(out) >= bound {
				break
			}
			out = append(out, candidate{node: n, constructor: g.Constructor})
		}
	}
	return out
}
