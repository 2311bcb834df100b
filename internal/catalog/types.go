package catalog

import (
	"strings"

	"github.com/gzhole/faultcorpus/internal/fault"
)

// FixtureCase documents one fixture: what it encodes, what triggers it,
// and a set of ground-truth probes a harness can replay.
//
// Every case carries exactly one category. Consumers score detectors on
// single-cause attribution, so a case never describes two defect kinds.
type FixtureCase struct {
	// ID is the fixture ID (e.g., "strcpy-overflow").
	ID string `yaml:"id" json:"id" msgpack:"id"`

	Category fault.Category `yaml:"category" json:"category" msgpack:"category"`

	// CWE lists the weakness identifiers the fixture instantiates.
	CWE []string `yaml:"cwe" json:"cwe" msgpack:"cwe"`

	// TriggerCondition is the input shape or size that provokes the defect.
	TriggerCondition string `yaml:"trigger_condition" json:"trigger_condition" msgpack:"trigger_condition"`

	// ObservableEffect is what a correct detector must flag.
	ObservableEffect string `yaml:"observable_effect" json:"observable_effect" msgpack:"observable_effect"`

	// Boundary is the largest safe value; nil when the defect does not
	// depend on input size.
	Boundary *uint64 `yaml:"boundary,omitempty" json:"boundary,omitempty" msgpack:"boundary,omitempty"`

	// Source is the original unsafe construct being modeled.
	Source string `yaml:"source" json:"source" msgpack:"source"`

	Description string `yaml:"description" json:"description" msgpack:"description"`

	Probes []Probe `yaml:"probes" json:"probes" msgpack:"probes"`
}

// Probe is a single input with its expected outcome.
type Probe struct {
	// Args are passed to the fixture's Invoke.
	Args []string `yaml:"args,omitempty" json:"args,omitempty" msgpack:"args,omitempty"`

	// Stdin is the console input for fixtures that read it.
	Stdin string `yaml:"stdin,omitempty" json:"stdin,omitempty" msgpack:"stdin,omitempty"`

	// Repeat expands the first argument (or Stdin when there are no
	// arguments) to that many copies, so long inputs stay readable.
	Repeat int `yaml:"repeat,omitempty" json:"repeat,omitempty" msgpack:"repeat,omitempty"`

	ExpectFault bool `yaml:"expect_fault" json:"expect_fault" msgpack:"expect_fault"`

	// ExpectObserved, when set, must equal the descriptor's ObservedLength.
	ExpectObserved *uint64 `yaml:"expect_observed,omitempty" json:"expect_observed,omitempty" msgpack:"expect_observed,omitempty"`
}

// Expand returns the concrete arguments and console input of p.
func (p Probe) Expand() ([]string, string) {
	args := append([]string(nil), p.Args...)
	stdin := p.Stdin
	if p.Repeat > 1 {
		if len(args) > 0 {
			args[0] = strings.Repeat(args[0], p.Repeat)
		} else {
			stdin = strings.Repeat(stdin, p.Repeat)
		}
	}
	return args, stdin
}

// Catalog is the full set of fixture cases.
type Catalog struct {
	Version string        `yaml:"version" json:"version" msgpack:"version"`
	Cases   []FixtureCase `yaml:"cases" json:"cases" msgpack:"cases"`

	byID map[string]*FixtureCase
}

// Case looks up a case by fixture ID.
func (c *Catalog) Case(id string) (FixtureCase, bool) {
	if c.byID == nil {
		c.index()
	}
	fc, ok := c.byID[id]
	if !ok {
		return FixtureCase{}, false
	}
	return *fc, true
}

// ByCategory returns the cases of one category.
func (c *Catalog) ByCategory(cat fault.Category) []FixtureCase {
	var out []FixtureCase
	for _, fc := range c.Cases {
		if fc.Category == cat {
			out = append(out, fc)
		}
	}
	return out
}

func (c *Catalog) index() {
	c.byID = make(map[string]*FixtureCase, len(c.Cases))
	for i := range c.Cases {
		c.byID[c.Cases[i].ID] = &c.Cases[i]
	}
}
