package dtrace

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/mabhi256/spaa/internal/spaa/errs"
)

// stackBlock is one parsed frame-lines-plus-count unit, prior to interning.
// Frames are in on-disk order, which is leaf-to-root for every DTrace
// layout spec.md §4.5 describes.
type stackBlock struct {
	Header string // raw separator/probe-header text active when this block closed, if any
	PID    int
	TID    int
	HasPID bool
	HasTID bool
	Frames []ParsedFrame
	Count  int
}

var (
	countLine = regexp.MustCompile(`^\d+$`)
	pidTidRe  = regexp.MustCompile(`\bpid[:=]\s*(\d+)\b|\btid[:=]\s*(\d+)\b`)
)

// scanState is the parser state machine, generalizing the structure of
// bvisness/dtrace2spall's reader: a block is a run of frame lines
// terminated by a bare count line, and a blank line separates blocks.
type scanState int

const (
	stateExpectFrame scanState = iota
	stateInFrame
)

// scanBlocks streams r line by line without buffering the whole input
// (spec.md §5), invoking emit for every completed stack block. It does not
// interpret the blocks; DTrace text carries no dictionary of its own, so
// interning and aggregation happen one layer up in Parse.
func scanBlocks(r io.Reader, layout Layout, emit func(stackBlock) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	state := stateExpectFrame
	var header string
	var pid, tid int
	var hasPID, hasTID bool
	var frames []ParsedFrame

	resetBlock := func() {
		frames = nil
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
			state = stateExpectFrame

		case state == stateInFrame && countLine.MatchString(line):
			count, err := strconv.Atoi(line)
			if err != nil {
				return errs.Malformed("dtrace: line %d: invalid sample count %q", lineNo, line)
			}
			if err := emit(stackBlock{
				Header: header, PID: pid, TID: tid, HasPID: hasPID, HasTID: hasTID,
				Frames: frames, Count: count,
			}); err != nil {
				return err
			}
			resetBlock()
			state = stateExpectFrame

		case strings.Contains(line, "`") || strings.HasPrefix(strings.ToLower(line), "0x") || state == stateInFrame:
			// A frame line, or (per-probe/split layouts can omit the
			// module prefix on unresolved frames) any continuation line
			// once we're already inside a block.
			pf, ok := ParseFrameLine(line)
			if !ok {
				return errs.Malformed("dtrace: line %d: unparsable frame line %q", lineNo, raw)
			}
			frames = append(frames, pf)
			state = stateInFrame

		case layout == LayoutSplit || layout == LayoutPerProbe:
			// A separator/probe-header line: declares the context for the
			// block(s) that follow. spec.md §4.5 describes "split" as
			// carrying explicit separator lines and "per-probe" as
			// grouping under provider/module/function/name headers; both
			// declare context out-of-band from the frame lines.
			header = line
			if m := pidTidRe.FindAllStringSubmatch(line, -1); m != nil {
				for _, g := range m {
					if g[1] != "" {
						if v, err := strconv.Atoi(g[1]); err == nil {
							pid, hasPID = v, true
						}
					}
					if g[2] != "" {
						if v, err := strconv.Atoi(g[2]); err == nil {
							tid, hasTID = v, true
						}
					}
				}
			}

		default:
			return errs.Malformed("dtrace: line %d: unexpected line outside a stack block: %q", lineNo, raw)
		}
	}
	if err := scanner.Err(); err != nil {
		return errs.Malformed("dtrace: scan failed: %v", err)
	}
	if state == stateInFrame {
		return errs.Malformed("dtrace: unterminated stack at end of input (missing trailing count)")
	}
	return nil
}
