package heapdiff

import (
	"github.com/mabhi256/spaa/internal/spaa/chromeheap"
	"github.com/mabhi256/spaa/internal/spaa/model"
)

// maxPathSegments is the retention_path truncation bound (spec.md §4.8).
const maxPathSegments = 20

// walkBudget bounds the reverse-BFS work per candidate so a pathological
// graph can't stall an entire diff (spec.md §4.8: "if no root is reached
// within a bounded work budget, the path is emitted as empty").
const walkBudget = 200_000

// reverseEdge is one inbound holder->holdee edge from the holdee's
// perspective: who points at me, and under what label.
type reverseEdge struct {
	from  int
	label string
}

// reverseIndex is the lazily-built reverse adjacency structure spec.md §9
// describes: built once per diff, directly from the target graph's forward
// edges.
type reverseIndex struct {
	byNode [][]reverseEdge
}

func buildReverseIndex(g *chromeheap.Graph) *reverseIndex {
	idx := &reverseIndex{byNode: make([][]reverseEdge, len(g.Nodes))}
	for from, edges := range g.EdgesByNode {
		for _, e := range edges {
			if e.ToNode < 0 || e.ToNode >= len(idx.byNode) {
				continue
			}
			idx.byNode[e.ToNode] = append(idx.byNode[e.ToNode], reverseEdge{from: from, label: e.Label()})
		}
	}
	return idx
}

// retainedFor runs a retention walk for every candidate and returns one
// Retained record per candidate, in discovery order (spec.md §4.8 step 3,
// output order); candidates that never reach a root get an empty path.
func retainedFor(target *chromeheap.Graph, candidates []candidate) []*model.Retained {
	idx := buildReverseIndex(target)
	out := make([]*model.Retained, 0, len(candidates))

	for _, c := range candidates {
		path, found := reverseBFS(idx, c.node.Index, target)
		if !found || path == nil {
			path = []string{}
		}
		out = append(out, &model.Retained{
			Type:          model.RecordRetained,
			Constructor:   c.constructor,
			Size:          c.node.SelfSize,
			RetentionPath: path,
		})
	}
	return out
}

// reverseBFS walks backward from start toward any root, returning the
// root-to-candidate edge-label path. Paths longer than maxPathSegments are
// truncated with a trailing "...".
func reverseBFS(idx *reverseIndex, start int, g *chromeheap.Graph) ([]string, bool) {
	type queued struct {
		node int
		path []string // edge labels from this node down to the candidate, root-side first
	}

	visited := make(map[int]bool, 64)
	visited[start] = true
	queue := []queued{{node: start}}
	work := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if g.IsRoot(cur.node) {
			return finalizePath(cur.path), true
		}

		for _, re := range idx.byNode[cur.node] {
			work++
			if work > walkBudget {
				return nil, false
			}
			if visited[re.from] {
				continue
			}
			visited[re.from] = true
			next := append(append([]string(nil), re.label), cur.path...)
			queue = append(queue, queued{node: re.from, path: next})
		}
	}
	return nil, false
}

func finalizePath(path []string) []string {
	if len(path) <= maxPathSegments {
		return path
	}
	truncated := append([]string(nil), path[:maxPathSegments]...)
	return append(truncated, "...")
}
