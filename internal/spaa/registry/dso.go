package registry

import "github.com/mabhi256/spaa/internal/spaa/model"

// DSOs is the interning table for DSO dictionary records, keyed on
// (name, build_id, is_kernel) per spec.md §4.3.
type DSOs struct {
	table *Keyed[model.DSOKey, *model.DSO]
}

func NewDSOs() *DSOs {
	return &DSOs{table: NewKeyed[model.DSOKey, *model.DSO]()}
}

// Intern returns the ID for (name, buildID, isKernel), allocating and
// returning (id, true) on first sight so the caller can emit the dictionary
// record exactly once.
func (d *DSOs) Intern(name, buildID string, isKernel bool) (int, *model.DSO, bool) {
	key := model.DSOKey{Name: name, BuildID: buildID, IsKernel: isKernel}
	return d.table.Intern(key, func(id int) *model.DSO {
		return &model.DSO{
			Type:     model.RecordDSO,
			ID:       id,
			Name:     name,
			BuildID:  buildID,
			IsKernel: isKernel,
		}
	})
}

func (d *DSOs) Len() int            { return d.table.Len() }
func (d *DSOs) All() []*model.DSO   { return d.table.All() }
