package registry

import "github.com/mabhi256/spaa/internal/spaa/model"

// Threads is the interning table for thread dictionary records, keyed on
// (pid, tid). Unlike DSOs and frames, threads are not content-addressed
// into stack IDs; they exist purely for lookup by pid/tid.
type Threads struct {
	table *Keyed[model.ThreadKey, *model.Thread]
}

func NewThreads() *Threads {
	return &Threads{table: NewKeyed[model.ThreadKey, *model.Thread]()}
}

func (t *Threads) Intern(pid, tid int, comm string) (*model.Thread, bool) {
	key := model.ThreadKey{PID: pid, TID: tid}
	_, value, inserted := t.table.Intern(key, func(int) *model.Thread {
		return &model.Thread{Type: model.RecordThread, PID: pid, TID: tid, Comm: comm}
	})
	return value, inserted
}

func (t *Threads) Len() int             { return t.table.Len() }
func (t *Threads) All() []*model.Thread { return t.table.All() }
