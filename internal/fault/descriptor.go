package fault

import (
	"fmt"
	"strings"
)

// Descriptor is the safe record of what a fixture's unsafe operation would
// have done. A nil *Descriptor means the input stayed within bounds.
//
// Which numeric fields are meaningful depends on Category:
//
//	OutOfBoundsWrite, UnboundedRead  Capacity, Offset, Extent (bytes past end)
//	FormatInjection                  Directives, Extent (arguments consumed), WritesMemory
//	IntegerOverflowAllocation        ComputedSize, Capacity, Offset, Extent
//	UseAfterFree                     Handle, Capacity, Extent (bytes written)
//	UnboundedResourceGrowth          Capacity (block size), Extent (bytes leaked)
type Descriptor struct {
	Fixture        string   `json:"fixture" yaml:"fixture" msgpack:"fixture"`
	Category       Category `json:"category" yaml:"category" msgpack:"category"`
	Threshold      uint64   `json:"threshold" yaml:"threshold" msgpack:"threshold"`
	ObservedLength uint64   `json:"observed_length" yaml:"observed_length" msgpack:"observed_length"`
	Capacity       uint64   `json:"capacity,omitempty" yaml:"capacity,omitempty" msgpack:"capacity,omitempty"`
	Offset         uint64   `json:"offset,omitempty" yaml:"offset,omitempty" msgpack:"offset,omitempty"`
	Extent         uint64   `json:"extent,omitempty" yaml:"extent,omitempty" msgpack:"extent,omitempty"`
	ComputedSize   uint64   `json:"computed_size,omitempty" yaml:"computed_size,omitempty" msgpack:"computed_size,omitempty"`
	Handle         uint64   `json:"handle,omitempty" yaml:"handle,omitempty" msgpack:"handle,omitempty"`
	Directives     []string `json:"directives,omitempty" yaml:"directives,omitempty" msgpack:"directives,omitempty"`
	WritesMemory   bool     `json:"writes_memory,omitempty" yaml:"writes_memory,omitempty" msgpack:"writes_memory,omitempty"`
	Detail         string   `json:"detail,omitempty" yaml:"detail,omitempty" msgpack:"detail,omitempty"`
}

// Summary renders a single line for terminal output.
func (d *Descriptor) Summary() string {
	if d == nil {
		return "no fault"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: threshold=%d observed=%d", d.Category, d.Threshold, d.ObservedLength)
	if d.Capacity > 0 {
		fmt.Fprintf(&b, " capacity=%d", d.Capacity)
	}
	if d.Offset > 0 {
		fmt.Fprintf(&b, " offset=%d", d.Offset)
	}
	if d.Extent > 0 {
		fmt.Fprintf(&b, " extent=%d", d.Extent)
	}
	if len(d.Directives) > 0 {
		fmt.Fprintf(&b, " directives=%s", strings.Join(d.Directives, ","))
	}
	return b.String()
}
