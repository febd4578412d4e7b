package registry

import "github.com/mabhi256/spaa/internal/spaa/model"

// FrameSpec is the input describing a candidate frame; Frames.Intern turns
// it into a model.Frame the first time its natural key is seen.
type FrameSpec struct {
	DSO             int
	Func            string
	IP              string
	SymbolOffset    string
	SrcLine         string
	FuncResolved    bool
	SrcLineResolved bool
	Inlined         bool
	InlineDepth     *int
	Kind            model.FrameKind
}

func (s FrameSpec) key() model.FrameKey {
	depth := 0
	if s.InlineDepth != nil {
		depth = *s.InlineDepth
	}
	return model.FrameKey{DSO: s.DSO, IP: s.IP, Func: s.Func, SrcLine: s.SrcLine, InlineDepth: depth}
}

// Frames is the interning table for frame dictionary records, keyed on
// (dso_id, ip, func, srcline, inline_depth) per spec.md §4.3. Inlined
// virtual frames sharing an IP are distinct entries because their
// InlineDepth differs.
type Frames struct {
	table *Keyed[model.FrameKey, *model.Frame]
}

func NewFrames() *Frames {
	return &Frames{table: NewKeyed[model.FrameKey, *model.Frame]()}
}

// Intern returns the ID for spec, allocating and returning (id, true) on
// first sight.
func (f *Frames) Intern(spec FrameSpec) (int, *model.Frame, bool) {
	return f.table.Intern(spec.key(), func(id int) *model.Frame {
		return &model.Frame{
			Type:            model.RecordFrame,
			ID:              id,
			DSO:             spec.DSO,
			Func:            spec.Func,
			IP:              spec.IP,
			SymbolOffset:    spec.SymbolOffset,
			SrcLine:         spec.SrcLine,
			FuncResolved:    spec.FuncResolved,
			SrcLineResolved: spec.SrcLineResolved,
			Inlined:         spec.Inlined,
			InlineDepth:     spec.InlineDepth,
			Kind:            spec.Kind,
		}
	})
}

func (f *Frames) Len() int          { return f.table.Len() }
func (f *Frames) All() []*model.Frame { return f.table.All() }
