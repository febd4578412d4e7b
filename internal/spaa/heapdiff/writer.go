package heapdiff

import (
	"bufio"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/mabhi256/spaa/internal/spaa/errs"
	"github.com/mabhi256/spaa/internal/spaa/model"
)

// Writer streams a heap-diff file as newline-delimited JSON, enforcing the
// output order spec.md §4.8 mandates: header, then growth, then retained.
type Writer struct {
	out        *bufio.Writer
	headerDone bool
	growthDone bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(w)}
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

// Header writes the mandatory first record.
func (w *Writer) Header(h *model.HeapDiffHeader) error {
	if w.headerDone {
		return errs.Semantic("heap-diff header already written")
	}
	w.headerDone = true
	return w.emit(h)
}

// Growth writes a growth record. Growth records must all precede any
// retained record (spec.md §4.8 output order).
func (w *Writer) Growth(g *model.Growth) error {
	if !w.headerDone {
		return errs.Semantic("growth record written before header")
	}
	if w.growthDone {
		return errs.Semantic("growth record written after retained records began")
	}
	return w.emit(g)
}

// Retained writes a retained record.
func (w *Writer) Retained(r *model.Retained) error {
	if !w.headerDone {
		return errs.Semantic("retained record written before header")
	}
	w.growthDone = true
	return w.emit(r)
}

// WriteAll writes a full Result in the mandated order.
func (w *Writer) WriteAll(res *Result) error {
	if err := w.Header(res.Header); err != nil {
		return err
	}
	for _, g := range res.Growths {
		if err := w.Growth(g); err != nil {
			return err
		}
	}
	for _, r := range res.Retained {
		if err := w.Retained(r); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush flushes any buffered output to the underlying writer.
func (w *Writer) Flush() error {
	return w.out.Flush()
}
