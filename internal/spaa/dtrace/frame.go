package dtrace

import (
	"strings"

	"github.com/mabhi256/spaa/internal/spaa/model"
	"github.com/mabhi256/spaa/internal/spaa/symbolize"
)

// kernelModules lists the module-name prefixes spec.md §4.5 names as
// kernel tags.
var kernelModules = []string{"unix", "genunix", "mach_kernel", "kernel"}

// ParsedFrame is one decoded `module`backtick`symbol+offset` line, prior to
// interning.
type ParsedFrame struct {
	Module       string
	Func         string
	Offset       string
	FuncResolved bool
	Kind         model.FrameKind
}

// ParseFrameLine decodes a single DTrace stack-frame line of the form
// module`symbol+offset (spec.md §4.5). A frame with no resolvable symbol
// presents only a hex address; that address becomes Func with
// FuncResolved = false.
func ParseFrameLine(line string) (ParsedFrame, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParsedFrame{}, false
	}
	idx := strings.Index(line, "`")
	var module, rest string
	if idx < 0 {
		// Some DTrace builds omit the module when it can't be resolved.
		module, rest = "", line
	} else {
		module, rest = line[:idx], line[idx+1:]
	}

	pf := ParsedFrame{Module: module, Kind: kindOf(module)}

	if rest == "" {
		pf.Func = "0x0"
		return pf, true
	}

	name, offset := splitOffset(rest)
	if looksHex(name) {
		pf.Func = name
		pf.FuncResolved = false
	} else {
		if demangled, changed := symbolize.Demangle(name); changed {
			pf.Func = demangled
		} else {
			pf.Func = name
		}
		pf.FuncResolved = true
	}
	pf.Offset = offset
	return pf, true
}

func splitOffset(rest string) (name, offset string) {
	if i := strings.LastIndex(rest, "+"); i >= 0 {
		return rest[:i], rest[i:]
	}
	return rest, ""
}

func looksHex(s string) bool {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "0x") {
		return false
	}
	digits := lower[2:]
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}

func kindOf(module string) model.FrameKind {
	for _, prefix := range kernelModules {
		if strings.HasPrefix(module, prefix) {
			return model.KindKernel
		}
	}
	return model.KindUser
}
