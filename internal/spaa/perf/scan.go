package perf

import (
	"bufio"
	"io"
	"strings"

	"github.com/mabhi256/spaa/internal/spaa/errs"
)

// scanBlocks streams r line by line without buffering the whole input
// (spec.md §5): a block is a header line declaring comm/pid/tid/event/
// period, followed by indented frame lines, terminated by a blank line.
func scanBlocks(r io.Reader, emit func(block) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cur block
	haveHeader := false

	flush := func() error {
		if !haveHeader {
			return nil
		}
		err := emit(cur)
		cur = block{}
		haveHeader = false
		return err
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			if err := flush(); err != nil {
				return err
			}
			continue
		}

		if !strings.HasPrefix(raw, "\t") && !strings.HasPrefix(raw, " ") {
			if err := flush(); err != nil {
				return err
			}
			b, ok := parseHeaderLine(raw)
			if !ok {
				return errs.Malformed("perf: line %d: unparsable sample header %q", lineNo, raw)
			}
			cur = b
			haveHeader = true
			continue
		}

		if !haveHeader {
			return errs.Malformed("perf: line %d: frame line outside a sample block: %q", lineNo, raw)
		}
		pf, ok := parseFrameLine(raw)
		if !ok {
			return errs.Malformed("perf: line %d: unparsable frame line %q", lineNo, raw)
		}
		cur.frames = append(cur.frames, pf)
	}
	if err := scanner.Err(); err != nil {
		return errs.Malformed("perf: scan failed: %v", err)
	}
	return flush()
}
