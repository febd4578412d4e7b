package perf

import (
	"regexp"
	"strconv"
	"strings"
)

// headerLine matches a perf script sample header:
//
//	comm   pid[/tid]  [cpu]  timestamp:  period event:
var headerLine = regexp.MustCompile(
	`^(\S+)\s+(\d+)(?:/(\d+))?\s+(?:\[\d+\]\s+)?([\d.]+):\s+(\d+)\s+(\S+?):?\s*$`,
)

// frameLine matches an indented stack-frame line:
//
//	ip  symbol[+offset]  (module)
var frameLine = regexp.MustCompile(
	`^\s*([0-9a-fA-F]+)\s+(.+?)\s+\(([^)]*)\)\s*(?:\(inlined\))?\s*$`,
)

func parseHeaderLine(line string) (block, bool) {
	m := headerLine.FindStringSubmatch(line)
	if m == nil {
		return block{}, false
	}
	b := block{comm: m[1], event: m[6]}
	if pid, err := strconv.Atoi(m[2]); err == nil {
		b.pid = pid
	}
	if m[3] != "" {
		if tid, err := strconv.Atoi(m[3]); err == nil {
			b.tid = tid
			b.hasTID = true
		}
	}
	if ts, err := strconv.ParseFloat(m[4], 64); err == nil {
		b.timestamp = ts
	}
	if period, err := strconv.ParseInt(m[5], 10, 64); err == nil {
		b.period = period
	}
	return b, true
}

func parseFrameLine(line string) (parsedFrame, bool) {
	m := frameLine.FindStringSubmatch(line)
	if m == nil {
		return parsedFrame{}, false
	}
	ip, symbol, module := "0x"+strings.ToLower(m[1]), m[2], m[3]
	name, offset := symbol, ""
	if i := strings.LastIndex(symbol, "+"); i >= 0 {
		name, offset = symbol[:i], symbol[i:]
	}
	return parsedFrame{IP: ip, Func: name, Offset: offset, Module: module}, true
}
