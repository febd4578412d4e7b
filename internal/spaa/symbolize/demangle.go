// Package symbolize applies C++/Rust symbol demangling to raw function
// names surfaced by text-based profilers (DTrace, perf) before a frame is
// recorded as unresolved.
package symbolize

import (
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// Demangle returns the demangled form of name if it looks like a mangled
// Itanium C++ or Rust symbol, or name unchanged otherwise. DTrace and perf
// frequently report raw linker symbols for C++ binaries; demangling them
// gives a readable func. It does not affect func_resolved, which callers
// set from whether the symbol is a bare hex address.
func Demangle(name string) (out string, changed bool) {
	if !looksMangled(name) {
		return name, false
	}
	result := demangle.Filter(name, demangle.NoClones)
	if result == name {
		return name, false
	}
	return result, true
}

func looksMangled(name string) bool {
	return strings.HasPrefix(name, "_Z") || strings.HasPrefix(name, "__Z") ||
		strings.HasPrefix(name, "_R") || strings.HasPrefix(name, "_ZN")
}
