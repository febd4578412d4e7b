// Package errs defines the sentinel errors for the taxonomy in spec.md §7,
// so callers can classify failures with errors.Is/errors.As instead of
// string-matching messages.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput covers unexpected tokens, stride mismatches, and
	// unterminated records: fatal for the current conversion.
	ErrMalformedInput = errors.New("malformed input")

	// ErrSemanticViolation covers forward references to undeclared
	// dictionary entries and missing required weights: fatal when writing,
	// a soft warning when parsing a foreign SPAA file.
	ErrSemanticViolation = errors.New("semantic violation")

	// ErrUnresolvedSymbol is non-fatal: the caller should fall back to a
	// frame with func_resolved = false rather than abort.
	ErrUnresolvedSymbol = errors.New("unresolved symbol")

	// ErrUnknownExtension is non-fatal: unrecognized context keys or
	// source_tool strings are preserved verbatim and parsing continues.
	ErrUnknownExtension = errors.New("unknown source-tool extension")
)

// Malformed formats a message and wraps it as ErrMalformedInput.
func Malformed(format string, args ...any) error {
	return wrap(ErrMalformedInput, format, args...)
}

// Semantic wraps a message as ErrSemanticViolation.
func Semantic(format string, args ...any) error {
	return wrap(ErrSemanticViolation, format, args...)
}

func wrap(sentinel error, format string, args ...any) error {
	return &taggedError{sentinel: sentinel, msg: fmt.Sprintf(format, args...)}
}

type taggedError struct {
	sentinel error
	msg      string
}

func (e *taggedError) Error() string { return e.msg }
func (e *taggedError) Unwrap() error { return e.sentinel }
