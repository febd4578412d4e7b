// Package chromeheap decodes DevTools heap-snapshot JSON documents into a
// navigable object graph (spec.md §4.7), and emits an allocation-event SPAA
// view of it grouped by constructor.
package chromeheap

// rawSnapshot is the on-disk shape of a .heapsnapshot document. nodes and
// edges are flat integer arrays whose field layout is declared by Meta, not
// fixed by this package (spec.md §9: "derive accessors at runtime rather
// than hard-coding strides" — V8's meta schema has changed across versions).
type rawSnapshot struct {
	Snapshot struct {
		Meta Meta `json:"meta"`
	} `json:"snapshot"`
	Nodes               []int64  `json:"nodes"`
	Edges               []int64  `json:"edges"`
	Strings             []string `json:"strings"`
	TraceFunctionInfos  []int64  `json:"trace_function_infos"`
	TraceTree           []any    `json:"trace_tree"`
}

// Meta describes the field layout of the nodes and edges arrays. Each
// *_fields entry names a field; the corresponding *_types entry at the same
// index describes how to decode it: a JSON array of strings is an enum (the
// node/edge value is an index into it), the literal string "string" means
// the value is an index into the snapshot's string table, and any other
// string ("number", "node") means the value is used as-is.
type Meta struct {
	NodeFields []string `json:"node_fields"`
	NodeTypes  []any    `json:"node_types"`
	EdgeFields []string `json:"edge_fields"`
	EdgeTypes  []any    `json:"edge_types"`
}

// fieldLayout is Meta compiled into direct field-index lookups plus decoded
// enum tables, built once per snapshot.
type fieldLayout struct {
	index  map[string]int
	stride int
	enums  map[int][]string // field index -> enum labels, for enum-typed fields
	isStr  map[int]bool     // field index -> decode via string table
}

func compileLayout(fields []string, types []any) fieldLayout {
	l := fieldLayout{
		index:  make(map[string]int, len(fields)),
		stride: len(fields),
		enums:  make(map[int][]string),
		isStr:  make(map[int]bool),
	}
	for i, name := range fields {
		l.index[name] = i
		if i >= len(types) {
			continue
		}
		switch t := types[i].(type) {
		case []any:
			labels := make([]string, len(t))
			for j, v := range t {
				if s, ok := v.(string); ok {
					labels[j] = s
				}
			}
			l.enums[i] = labels
		case string:
			if t == "string" {
				l.isStr[i] = true
			}
		}
	}
	return l
}

func (l fieldLayout) fieldIndex(name string) (int, bool) {
	i, ok := l.index[name]
	return i, ok
}
