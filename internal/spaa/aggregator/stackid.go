package aggregator

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/mabhi256/spaa/internal/spaa/model"
)

// StackIDer assigns stack identifiers per the file's declared stack_id_mode
// (spec.md §4.4).
type StackIDer interface {
	ID(frameKeys []model.FrameKey) string
}

// localIDer hands out monotonically increasing integers, as strings, in
// first-sight order.
type localIDer struct {
	next int
}

func NewLocalIDer() StackIDer { return &localIDer{} }

func (l *localIDer) ID([]model.FrameKey) string {
	id := l.next
	l.next++
	return strconv.Itoa(id)
}

// contentAddressableIDer hashes a canonical byte encoding of the ordered
// frame natural keys, per spec.md's design note: the digest is computed
// over natural keys (dso identity, ip, func, srcline, inline_depth), not
// file-local frame IDs, so IDs survive dictionary re-interning and are
// stable across re-runs on identical input.
type contentAddressableIDer struct {
	dsoNaturalKey func(dsoID int) string
}

// NewContentAddressableIDer builds a StackIDer that hashes frame natural
// keys. dsoNaturalKey resolves a frame's DSO id to a stable string (its
// build_id if present, else its name) so the digest doesn't depend on the
// DSO's file-local integer id either.
func NewContentAddressableIDer(dsoNaturalKey func(dsoID int) string) StackIDer {
	return &contentAddressableIDer{dsoNaturalKey: dsoNaturalKey}
}

func (c *contentAddressableIDer) ID(frameKeys []model.FrameKey) string {
	h := xxhash.New()
	for _, fk := range frameKeys {
		fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1f%s\x1f%d\x1e",
			c.dsoNaturalKey(fk.DSO), fk.IP, fk.Func, fk.SrcLine, fk.InlineDepth)
	}
	return fmt.Sprintf("0x%016x", h.Sum64())
}
