package model

import "github.com/mabhi256/spaa/internal/spaa/errs"

// Header is the mandatory first record of a SPAA file.
type Header struct {
	Type        RecordType  `json:"type"`
	Format      string      `json:"format"`
	Version     string      `json:"version"`
	SourceTool  string      `json:"source_tool"`
	FrameOrder  FrameOrder  `json:"frame_order"`
	StackIDMode StackIDMode `json:"stack_id_mode"`
	Events      []Event     `json:"events"`
	TimeRange   *TimeRange  `json:"time_range,omitempty"`
	Provenance  *Provenance `json:"provenance,omitempty"`
}

// NewHeader builds a header with the mandatory "spaa"/"1.0" format tag.
func NewHeader(sourceTool string, frameOrder FrameOrder, stackIDMode StackIDMode, events []Event) *Header {
	return &Header{
		Type:        RecordHeader,
		Format:      "spaa",
		Version:     "1.0",
		SourceTool:  sourceTool,
		FrameOrder:  frameOrder,
		StackIDMode: stackIDMode,
		Events:      events,
	}
}

// Event describes one sampled event kind and its authoritative metric.
type Event struct {
	Name             string              `json:"name"`
	Kind             EventKind           `json:"kind"`
	Sampling         Sampling            `json:"sampling"`
	PrimaryMetric    string              `json:"primary_metric"`
	AllocTracking    *AllocationTracking `json:"allocation_tracking,omitempty"`
}

// Sampling carries the mode-specific sampling fields of spec.md §4.2.
type Sampling struct {
	Mode          SamplingMode `json:"mode"`
	SamplePeriod  *int64       `json:"sample_period,omitempty"`
	FrequencyHz   *int64       `json:"frequency_hz,omitempty"`
}

// AllocationTracking documents extra semantics of allocation/deallocation
// events; both fields are optional per spec.md §4.2.
type AllocationTracking struct {
	TracksFrees    bool `json:"tracks_frees"`
	HasTimestamps  bool `json:"has_timestamps"`
}

// TimeRange bounds the absolute timestamps carried by Sample records, if any
// were emitted.
type TimeRange struct {
	Start int64  `json:"start"`
	End   int64  `json:"end"`
	Unit  string `json:"unit"`
}

// Provenance records how the source artifact was produced, when known.
type Provenance struct {
	Command     string `json:"command,omitempty"`
	ToolVersion string `json:"tool_version,omitempty"`
}

// Validate checks the mode-specific required fields described in spec.md §4.2.
func (e Event) Validate() error {
	if e.PrimaryMetric == "" {
		return errs.Semantic("event %s must declare a primary_metric", e.Name)
	}
	switch e.Sampling.Mode {
	case ModePeriod:
		if e.Sampling.SamplePeriod == nil || *e.Sampling.SamplePeriod <= 0 {
			return errs.Semantic("period-mode event %s requires a positive sample_period", e.Name)
		}
	case ModeFrequency:
		if e.Sampling.FrequencyHz == nil || *e.Sampling.FrequencyHz <= 0 {
			return errs.Semantic("frequency-mode event %s requires a positive frequency_hz", e.Name)
		}
	case ModeEvent:
		// no fields beyond primary_metric
	default:
		return errs.Semantic("event %s declares unknown sampling mode %q", e.Name, e.Sampling.Mode)
	}
	return nil
}
