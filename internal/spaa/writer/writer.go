// Package writer streams SPAA records as newline-delimited JSON, enforcing
// the two ordering rules of spec.md §4.1: the header comes first, and any
// record referenced by ID (DSO, frame, thread, stack) is emitted before any
// record that references it.
package writer

import (
	"bufio"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/mabhi256/spaa/internal/spaa/errs"
	"github.com/mabhi256/spaa/internal/spaa/model"
)

// Writer emits one JSON object per line and tracks which dictionary IDs
// have already been written so a caller mistake (writing a stack before its
// frames) is caught immediately rather than silently producing an invalid
// file.
type Writer struct {
	out         *bufio.Writer
	headerDone  bool
	dsoIDs      map[int]bool
	frameIDs    map[int]bool
	threadKeys  map[model.ThreadKey]bool
	events      map[string]model.Event
}

// New wraps w. Callers must call Flush when done.
func New(w io.Writer) *Writer {
	return &Writer{
		out:        bufio.NewWriter(w),
		dsoIDs:     make(map[int]bool),
		frameIDs:   make(map[int]bool),
		threadKeys: make(map[model.ThreadKey]bool),
		events:     make(map[string]model.Event),
	}
}

func (w *Writer) emit(v any) error {
	b, err := gojson.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.out.Write(b); err != nil {
		return err
	}
	return w.out.WriteByte('\n')
}

// Header writes the header record. It must be the first record written to
// a file (spec.md §4.1, rule 1).
func (w *Writer) Header(h *model.Header) error {
	if w.headerDone {
		return errs.Semantic("header already written for this file")
	}
	for _, ev := range h.Events {
		if err := ev.Validate(); err != nil {
			return err
		}
		w.events[ev.Name] = ev
	}
	w.headerDone = true
	return w.emit(h)
}

// DSO writes a DSO dictionary record. Returns a semantic-violation error
// on a duplicate ID, which indicates a programming error in the
// caller (the registry should never hand out a repeated ID).
func (w *Writer) DSO(d *model.DSO) error {
	if !w.headerDone {
		return errs.Semantic("DSO record written before header")
	}
	if w.dsoIDs[d.ID] {
		return errs.Semantic("DSO id %d emitted twice", d.ID)
	}
	w.dsoIDs[d.ID] = true
	return w.emit(d)
}

// Frame writes a frame dictionary record. The frame's DSO must already have
// been emitted (spec.md §3 invariant).
func (w *Writer) Frame(f *model.Frame) error {
	if !w.headerDone {
		return errs.Semantic("frame record written before header")
	}
	if !w.dsoIDs[f.DSO] {
		return errs.Semantic("frame %d references undeclared dso %d", f.ID, f.DSO)
	}
	if w.frameIDs[f.ID] {
		return errs.Semantic("frame id %d emitted twice", f.ID)
	}
	w.frameIDs[f.ID] = true
	return w.emit(f)
}

// Thread writes a thread dictionary record.
func (w *Writer) Thread(t *model.Thread) error {
	if !w.headerDone {
		return errs.Semantic("thread record written before header")
	}
	key := t.Key()
	if w.threadKeys[key] {
		return errs.Semantic("thread (pid=%d, tid=%d) emitted twice", t.PID, t.TID)
	}
	w.threadKeys[key] = true
	return w.emit(t)
}

// Stack writes a stack record. Every frame it references, and the event
// named in its context, must already be known (spec.md §3 invariants (i),
// (iii); §6 rejection rules).
func (w *Writer) Stack(s *model.Stack) error {
	if !w.headerDone {
		return errs.Semantic("stack record written before header")
	}
	ev, ok := w.events[s.Context.Event]
	if !ok {
		return errs.Semantic("stack %s references undeclared event %q", s.ID, s.Context.Event)
	}
	if _, ok := s.Weights.Get(ev.PrimaryMetric); !ok {
		return errs.Semantic("stack %s is missing primary metric %q for event %q", s.ID, ev.PrimaryMetric, ev.Name)
	}
	for _, fid := range s.Frames {
		if !w.frameIDs[fid] {
			return errs.Semantic("stack %s references undeclared frame %d", s.ID, fid)
		}
	}
	if s.Exclusive != nil && !w.frameIDs[s.Exclusive.Frame] {
		return errs.Semantic("stack %s exclusive references undeclared frame %d", s.ID, s.Exclusive.Frame)
	}
	return w.emit(s)
}

// Sample writes an optional raw-occurrence record.
func (w *Writer) Sample(s *model.Sample) error {
	if !w.headerDone {
		return errs.Semantic("sample record written before header")
	}
	return w.emit(s)
}

// Window writes an optional time-window metadata record.
func (w *Writer) Window(win *model.Window) error {
	if !w.headerDone {
		return errs.Semantic("window record written before header")
	}
	return w.emit(win)
}

// Flush flushes any buffered output to the underlying writer.
func (w *Writer) Flush() error {
	return w.out.Flush()
}

// WriteAll writes a full conversion result in the mandated dictionary-
// before-reference order: header, DSOs, frames, threads, stacks.
func WriteAll(w io.Writer, header *model.Header, dsos []*model.DSO, frames []*model.Frame, threads []*model.Thread, stacks []*model.Stack) error {
	out := New(w)
	if err := out.Header(header); err != nil {
		return err
	}
	for _, d := range dsos {
		if err := out.DSO(d); err != nil {
			return err
		}
	}
	for _, f := range frames {
		if err := out.Frame(f); err != nil {
			return err
		}
	}
	for _, t := range threads {
		if err := out.Thread(t); err != nil {
			return err
		}
	}
	for _, s := range stacks {
		if err := out.Stack(s); err != nil {
			return err
		}
	}
	return out.Flush()
}
