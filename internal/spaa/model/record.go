// Package model defines the SPAA and heap-diff record types: a closed sum
// over record variants, discriminated by a "type" tag, plus the shared
// dictionary and aggregation types each variant is built from.
package model

// RecordType is the discriminant carried by every NDJSON line's "type" field.
type RecordType string

const (
	RecordHeader   RecordType = "header"
	RecordDSO      RecordType = "dso"
	RecordFrame    RecordType = "frame"
	RecordThread   RecordType = "thread"
	RecordStack    RecordType = "stack"
	RecordSample   RecordType = "sample"
	RecordWindow   RecordType = "window"
	RecordGrowth   RecordType = "growth"
	RecordRetained RecordType = "retained"
)

// FrameOrder declares whether a stack's frame sequence runs leaf-first or
// root-first. One value is fixed for an entire file, set on the header.
type FrameOrder string

const (
	LeafToRoot FrameOrder = "leaf_to_root"
	RootToLeaf FrameOrder = "root_to_leaf"
)

// StackIDMode selects how stack identifiers are generated for a file.
type StackIDMode string

const (
	ContentAddressable StackIDMode = "content_addressable"
	LocalIDs           StackIDMode = "local"
)

// FrameKind classifies where a frame's code runs.
type FrameKind string

const (
	KindUser    FrameKind = "user"
	KindKernel  FrameKind = "kernel"
	KindNative  FrameKind = "native"
	KindUnknown FrameKind = "unknown"
)

// StackType distinguishes unified stacks from the user/kernel halves of a
// split DTrace ustack()/kstack() pair.
type StackType string

const (
	StackUnified StackType = "unified"
	StackUser    StackType = "user"
	StackKernel  StackType = "kernel"
)

// EventKind classifies a header event per spec.md §4.2.
type EventKind string

const (
	EventHardware    EventKind = "hardware"
	EventSoftware    EventKind = "software"
	EventAllocation  EventKind = "allocation"
	EventDealloc     EventKind = "deallocation"
	EventTimer       EventKind = "timer"
	EventProbe       EventKind = "probe"
)

// SamplingMode selects which of the mode-specific sampling fields applies.
type SamplingMode string

const (
	ModePeriod    SamplingMode = "period"
	ModeFrequency SamplingMode = "frequency"
	ModeEvent     SamplingMode = "event"
)
