package model

import "encoding/json"

// Metric is one named entry of a stack's weight vector.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Weights is an ordered weight vector, one Metric per accumulated metric
// name. Order is insertion order, kept stable for deterministic output.
type Weights []Metric

// Add returns a copy of w with delta added to the named metric, inserting a
// new entry (with unit, if this is the metric's first observation) when the
// metric hasn't been seen yet.
func (w Weights) Add(name string, delta float64, unit string) Weights {
	for i := range w {
		if w[i].Name == name {
			w[i].Value += delta
			return w
		}
	}
	return append(w, Metric{Name: name, Value: delta, Unit: unit})
}

// Get returns the value of the named metric and whether it is present.
func (w Weights) Get(name string) (float64, bool) {
	for _, m := range w {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}

// Context is the aggregation context-tuple of a stack: at minimum an event
// name, optionally pid/tid/cpu/probe metadata. Unknown keys (per spec.md §6)
// are preserved verbatim in Extra.
type Context struct {
	Event string         `json:"event"`
	PID   *int           `json:"pid,omitempty"`
	TID   *int           `json:"tid,omitempty"`
	CPU   *int           `json:"cpu,omitempty"`
	Probe string         `json:"probe,omitempty"`
	Extra map[string]any `json:"-"`
}

// MarshalJSON flattens Extra alongside the named context fields so unknown
// source-tool keys round-trip instead of being nested under a sub-object.
func (c Context) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+5)
	for k, v := range c.Extra {
		out[k] = v
	}
	out["event"] = c.Event
	if c.PID != nil {
		out["pid"] = *c.PID
	}
	if c.TID != nil {
		out["tid"] = *c.TID
	}
	if c.CPU != nil {
		out["cpu"] = *c.CPU
	}
	if c.Probe != "" {
		out["probe"] = c.Probe
	}
	return json.Marshal(out)
}

// UnmarshalJSON captures named fields and preserves every remaining key in
// Extra, so a parsed-then-reemitted SPAA file is byte-identical modulo
// whitespace and key ordering (spec.md §8 round-trip property).
func (c *Context) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	known := map[string]bool{"event": true, "pid": true, "tid": true, "cpu": true, "probe": true}
	if v, ok := raw["event"]; ok {
		if err := json.Unmarshal(v, &c.Event); err != nil {
			return err
		}
	}
	if v, ok := raw["pid"]; ok {
		var pid int
		if err := json.Unmarshal(v, &pid); err != nil {
			return err
		}
		c.PID = &pid
	}
	if v, ok := raw["tid"]; ok {
		var tid int
		if err := json.Unmarshal(v, &tid); err != nil {
			return err
		}
		c.TID = &tid
	}
	if v, ok := raw["cpu"]; ok {
		var cpu int
		if err := json.Unmarshal(v, &cpu); err != nil {
			return err
		}
		c.CPU = &cpu
	}
	if v, ok := raw["probe"]; ok {
		if err := json.Unmarshal(v, &c.Probe); err != nil {
			return err
		}
	}
	c.Extra = make(map[string]any)
	for k, v := range raw {
		if known[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		c.Extra[k] = val
	}
	return nil
}

// Exclusive carries the leaf frame's own (self) weight vector.
type Exclusive struct {
	Frame   int     `json:"frame"`
	Weights Weights `json:"weights"`
}

// Stack is one aggregated, content-addressed (or locally-numbered) call
// stack with its accumulated weight vector.
type Stack struct {
	Type           RecordType `json:"type"`
	ID             string     `json:"id"`
	Frames         []int      `json:"frames"`
	StackType      StackType  `json:"stack_type"`
	Context        Context    `json:"context"`
	Weights        Weights    `json:"weights"`
	Exclusive      *Exclusive `json:"exclusive,omitempty"`
	RelatedStacks  []string   `json:"related_stacks,omitempty"`
}

// Leaf returns the leaf frame ID of the stack under the given frame order.
func (s *Stack) Leaf(order FrameOrder) int {
	if len(s.Frames) == 0 {
		return 0
	}
	if order == RootToLeaf {
		return s.Frames[len(s.Frames)-1]
	}
	return s.Frames[0]
}
