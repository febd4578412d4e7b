package chromecpu

import (
	"fmt"

	"github.com/mabhi256/spaa/internal/spaa/aggregator"
	"github.com/mabhi256/spaa/internal/spaa/model"
	"github.com/mabhi256/spaa/internal/spaa/registry"
)

// session reconstructs the aggregated stacks for one V8 profiler session
// (one standalone .cpuprofile, or one Profile/ProfileChunk id's stitched
// chunks within a trace). Node IDs are scoped to the session; the shared
// dictionaries and aggregator are not.
type session struct {
	dsos    *registry.DSOs
	frames  *registry.Frames
	threads *registry.Threads
	agg     *aggregator.Aggregator

	byID     map[int]Node
	pathIDs  map[int][]int
	pathKeys map[int][]model.FrameKey
}

func newSession(dsos *registry.DSOs, frames *registry.Frames, threads *registry.Threads, agg *aggregator.Aggregator) *session {
	return &session{
		dsos:     dsos,
		frames:   frames,
		threads:  threads,
		agg:      agg,
		byID:     make(map[int]Node),
		pathIDs:  make(map[int][]int),
		pathKeys: make(map[int][]model.FrameKey),
	}
}

// run reconstructs each sample's stack and feeds it to the aggregator.
// pid/tid/hasTID attribute the samples to a thread when the caller (a
// trace's Profile event) identifies one; a standalone .cpuprofile carries
// none.
func (s *session) run(nodes []Node, samples []int, timeDeltas []int64, pid, tid int, hasTID bool) {
	for _, n := range nodes {
		s.byID[n.ID] = n
	}
	for _, n := range nodes {
		for _, childID := range n.Children {
			if child, ok := s.byID[childID]; ok {
				child.Parent = n.ID
				s.byID[childID] = child
			}
		}
	}

	// Assign frame IDs in node-tree order before walking any sample, so a
	// node's frame ID does not depend on which sample first reaches it.
	for _, n := range nodes {
		s.internNode(n)
	}

	if hasTID {
		s.threads.Intern(pid, tid, "")
	}

	for i, leafID := range samples {
		frameIDs, frameKeys := s.pathFor(leafID)
		if frameIDs == nil {
			continue
		}
		var delta int64
		if i < len(timeDeltas) {
			delta = timeDeltas[i]
		}
		ctx := model.Context{Event: "cpu"}
		if hasTID {
			t := tid
			ctx.TID = &t
			p := pid
			ctx.PID = &p
		}
		s.agg.Observe(ctx, tid, hasTID, frameIDs, frameKeys, model.StackUnified, []model.Metric{
			{Name: "samples", Value: float64(delta), Unit: "microseconds"},
		})
	}
}

// pathFor returns the leaf-to-root frame ID and key sequence for a node,
// memoized per session since the same leaf recurs across many samples.
func (s *session) pathFor(nodeID int) ([]int, []model.FrameKey) {
	if ids, ok := s.pathIDs[nodeID]; ok {
		return ids, s.pathKeys[nodeID]
	}
	n, ok := s.byID[nodeID]
	if !ok {
		return nil, nil
	}

	frameID, frameKey := s.internNode(n)

	var parentIDs []int
	var parentKeys []model.FrameKey
	if n.Parent != 0 {
		parentIDs, parentKeys = s.pathFor(n.Parent)
	}

	ids := make([]int, 0, len(parentIDs)+1)
	keys := make([]model.FrameKey, 0, len(parentKeys)+1)
	ids = append(ids, frameID)
	keys = append(keys, frameKey)
	ids = append(ids, parentIDs...)
	keys = append(keys, parentKeys...)

	s.pathIDs[nodeID] = ids
	s.pathKeys[nodeID] = keys
	return ids, keys
}

func (s *session) internNode(n Node) (int, model.FrameKey) {
	cf := n.CallFrame

	name := cf.FunctionName
	if name == "" {
		name = "(anonymous)"
	}

	dsoName := cf.URL
	kind := model.KindUser
	if cf.URL == "" || name == "(garbage collector)" {
		kind = model.KindNative
		if dsoName == "" {
			dsoName = "(native)"
		}
	}
	dsoID, _, _ := s.dsos.Intern(dsoName, "", false)

	srcline := fmt.Sprintf("%d:%d", cf.LineNumber, cf.ColumnNumber)
	// JS call frames have no native instruction pointer; synthesize one
	// from the source position so the frame key still carries an ip field.
	ip := fmt.Sprintf("0x%x", (cf.LineNumber<<16)|cf.ColumnNumber&0xffff)

	fid, fr, _ := s.frames.Intern(registry.FrameSpec{
		DSO:             dsoID,
		Func:            name,
		IP:              ip,
		SrcLine:         srcline,
		FuncResolved:    true,
		SrcLineResolved: cf.LineNumber > 0,
		Kind:            kind,
	})
	return fid, fr.Key()
}
