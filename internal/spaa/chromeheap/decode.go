package chromeheap

import (
	"fmt"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"

	"github.com/mabhi256/spaa/internal/spaa/errs"
)

// Node is one decoded heap-snapshot node, addressed by its index in the
// flat nodes array (spec.md §4.7 step 2: "nodes are addressed by integer
// index in the resulting graph").
type Node struct {
	Index        int
	TypeLabel    string
	Name         string
	ID           int64
	SelfSize     int64
	EdgeCount    int64
	TraceNodeID  int64
	Detachedness int64
}

// Edge is one decoded outgoing edge, with ToNode already normalized from a
// byte offset into the nodes array to a node index (spec.md §4.7 step 3).
type Edge struct {
	TypeLabel   string
	NameOrIndex int64
	NameStr     string
	HasNameStr  bool
	ToNode      int
}

// Graph is a heap-snapshot decoded into node and forward-edge arrays. It
// does not itself carry a reverse index; the heap-diff engine builds that
// lazily on top of a Graph only when it needs to walk toward GC roots
// (spec.md §9: "a separate flat array with a parallel reverse-index built
// on demand").
type Graph struct {
	Nodes       []Node
	EdgesByNode [][]Edge
	Strings     []string
}

// Label returns a human-readable string for an edge, matching the
// retention-path vocabulary of spec.md §4.8: a property name for named
// edges, "[n]" for indexed element edges, "(closure)" for closure-context
// edges, "(internal)" for internal edges.
func (e Edge) Label() string {
	switch e.TypeLabel {
	case "element":
		return fmt.Sprintf("[%d]", e.NameOrIndex)
	case "context":
		return "(closure)"
	case "internal", "hidden", "shortcut", "weak":
		return "(internal)"
	default:
		if e.HasNameStr {
			return e.NameStr
		}
		return strconv.FormatInt(e.NameOrIndex, 10)
	}
}

// ParseSnapshot decodes a .heapsnapshot JSON document. The schema is not
// line-delimited, so the whole document is buffered (spec.md §5 permits
// this for JSON-native inputs).
func ParseSnapshot(r io.Reader) (*Graph, error) {
	var raw rawSnapshot
	if err := gojson.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errs.Malformed("chromeheap: invalid JSON: %v", err)
	}

	nodeLayout := compileLayout(raw.Snapshot.Meta.NodeFields, raw.Snapshot.Meta.NodeTypes)
	edgeLayout := compileLayout(raw.Snapshot.Meta.EdgeFields, raw.Snapshot.Meta.EdgeTypes)

	if nodeLayout.stride == 0 || edgeLayout.stride == 0 {
		return nil, errs.Malformed("chromeheap: snapshot.meta declares no node_fields or edge_fields")
	}
	if len(raw.Nodes)%nodeLayout.stride != 0 {
		return nil, errs.Malformed("chromeheap: nodes array length %d is not a multiple of node stride %d", len(raw.Nodes), nodeLayout.stride)
	}
	if len(raw.Edges)%edgeLayout.stride != 0 {
		return nil, errs.Malformed("chromeheap: edges array length %d is not a multiple of edge stride %d", len(raw.Edges), edgeLayout.stride)
	}

	nodeCount := len(raw.Nodes) / nodeLayout.stride
	nodes := make([]Node, nodeCount)
	for i := 0; i < nodeCount; i++ {
		rec := raw.Nodes[i*nodeLayout.stride : (i+1)*nodeLayout.stride]
		n := Node{Index: i}
		if fi, ok := nodeLayout.fieldIndex("type"); ok {
			n.TypeLabel = decodeEnum(nodeLayout, fi, rec[fi])
		}
		if fi, ok := nodeLayout.fieldIndex("name"); ok {
			n.Name = stringAt(raw.Strings, rec[fi])
		}
		if fi, ok := nodeLayout.fieldIndex("id"); ok {
			n.ID = rec[fi]
		}
		if fi, ok := nodeLayout.fieldIndex("self_size"); ok {
			n.SelfSize = rec[fi]
		}
		if fi, ok := nodeLayout.fieldIndex("edge_count"); ok {
			n.EdgeCount = rec[fi]
		}
		if fi, ok := nodeLayout.fieldIndex("trace_node_id"); ok {
			n.TraceNodeID = rec[fi]
		}
		if fi, ok := nodeLayout.fieldIndex("detachedness"); ok {
			n.Detachedness = rec[fi]
		}
		nodes[i] = n
	}

	edgesByNode := make([][]Edge, nodeCount)
	cursor := 0
	edgeStride := edgeLayout.stride
	typeFI, _ := edgeLayout.fieldIndex("type")
	nameFI, _ := edgeLayout.fieldIndex("name_or_index")
	toFI, _ := edgeLayout.fieldIndex("to_node")
	for i := 0; i < nodeCount; i++ {
		count := int(nodes[i].EdgeCount)
		block := make([]Edge, 0, count)
		for j := 0; j < count; j++ {
			if cursor+edgeStride > len(raw.Edges) {
				return nil, errs.Malformed("chromeheap: edge block for node %d overruns the edges array", i)
			}
			rec := raw.Edges[cursor : cursor+edgeStride]
			e := Edge{
				TypeLabel:   decodeEnum(edgeLayout, typeFI, rec[typeFI]),
				NameOrIndex: rec[nameFI],
				ToNode:      int(rec[toFI]) / nodeLayout.stride,
			}
			// V8 declares name_or_index as "string_or_number" in meta: which
			// of the two it is depends on the edge's own type, not a fixed
			// field encoding. Named edges (property names, shortcuts,
			// context slot names) index the string table; element/internal/
			// hidden/weak edges carry a literal integer.
			if edgeLayout.isStr[nameFI] || isNamedEdgeType(e.TypeLabel) {
				e.NameStr = stringAt(raw.Strings, rec[nameFI])
				e.HasNameStr = true
			}
			block = append(block, e)
			cursor += edgeStride
		}
		edgesByNode[i] = block
	}

	return &Graph{Nodes: nodes, EdgesByNode: edgesByNode, Strings: raw.Strings}, nil
}

func isNamedEdgeType(typeLabel string) bool {
	switch typeLabel {
	case "property", "shortcut", "context":
		return true
	default:
		return false
	}
}

func decodeEnum(l fieldLayout, fieldIndex int, value int64) string {
	labels, ok := l.enums[fieldIndex]
	if !ok || value < 0 || int(value) >= len(labels) {
		return ""
	}
	return labels[value]
}

func stringAt(strings []string, idx int64) string {
	if idx < 0 || int(idx) >= len(strings) {
		return ""
	}
	return strings[idx]
}
