package model

// DSO is a loaded binary, shared library, or kernel image. Created on first
// reference by the interning tables; never mutated afterward.
type DSO struct {
	Type     RecordType `json:"type"`
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	BuildID  string     `json:"build_id,omitempty"`
	IsKernel bool       `json:"is_kernel"`
}

// DSOKey is the natural identity used for deduplication (spec.md §4.3): two
// DSOs with the same name but different build IDs are distinct entries.
type DSOKey struct {
	Name     string
	BuildID  string
	IsKernel bool
}

func (d *DSO) Key() DSOKey {
	return DSOKey{Name: d.Name, BuildID: d.BuildID, IsKernel: d.IsKernel}
}
