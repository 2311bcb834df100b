package fixture

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gzhole/faultcorpus/internal/fault"
)

// Fixture IDs, one per defect category.
const (
	IDStrcpyOverflow  = "strcpy-overflow"
	IDGetsOverflow    = "gets-overflow"
	IDFormatString    = "format-string"
	IDIntegerOverflow = "integer-overflow"
	IDUseAfterFree    = "use-after-free"
	IDMemoryLeak      = "memory-leak"
)

var (
	ErrUnknownFixture   = errors.New("unknown fixture")
	ErrBadArgs          = errors.New("bad fixture arguments")
	ErrCategoryMismatch = errors.New("descriptor category does not match fixture")
)

// Fixture adapts one defect operation to a string-driven harness.
type Fixture interface {
	// Name returns the fixture ID (e.g., "strcpy-overflow").
	Name() string

	// Category is the single defect category the fixture encodes.
	Category() fault.Category

	// Usage describes the arguments Invoke accepts.
	Usage() string

	// Invoke runs the fixture once. A nil descriptor means no fault.
	Invoke(env *Env, args []string) (*fault.Descriptor, error)
}

// Registry is an ordered collection of fixtures.
type Registry struct {
	fixtures []Fixture
	byName   map[string]Fixture
}

// NewRegistry registers fixtures in the order given. It panics on a
// duplicate name.
func NewRegistry(fixtures ...Fixture) *Registry {
	r := &Registry{byName: make(map[string]Fixture, len(fixtures))}
	for _, f := range fixtures {
		if _, dup := r.byName[f.Name()]; dup {
			panic(fmt.Sprintf("fixture %q registered twice", f.Name()))
		}
		r.fixtures = append(r.fixtures, f)
		r.byName[f.Name()] = f
	}
	return r
}

// Default returns the six corpus fixtures in category order.
func Default() *Registry {
	return NewRegistry(
		strcpyFixture{},
		getsFixture{},
		formatFixture{},
		intOverflowFixture{},
		uafFixture{},
		leakFixture{},
	)
}

// Fixtures returns the registered fixtures (for listing/testing).
func (r *Registry) Fixtures() []Fixture {
	return r.fixtures
}

func (r *Registry) Lookup(name string) (Fixture, error) {
	f, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFixture, name)
	}
	return f, nil
}

// Categories maps fixture IDs to their declared categories.
func (r *Registry) Categories() map[string]fault.Category {
	out := make(map[string]fault.Category, len(r.fixtures))
	for _, f := range r.fixtures {
		out[f.Name()] = f.Category()
	}
	return out
}

// Invoke runs the named fixture and checks that whatever it reports is
// attributed to the fixture's own category.
func (r *Registry) Invoke(name string, env *Env, args []string) (*fault.Descriptor, error) {
	f, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	desc, err := f.Invoke(env, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if desc == nil {
		return nil, nil
	}
	if desc.Fixture == "" {
		desc.Fixture = name
	}
	if desc.Category != f.Category() {
		return desc, fmt.Errorf("%w: %s reported %s, declared %s",
			ErrCategoryMismatch, name, desc.Category, f.Category())
	}
	return desc, nil
}

func wantArgs(args []string, lo, hi int, usage string) error {
	if len(args) < lo || len(args) > hi {
		return fmt.Errorf("%w: got %d argument(s), usage: %s", ErrBadArgs, len(args), usage)
	}
	return nil
}

type strcpyFixture struct{}

func (strcpyFixture) Name() string             { return IDStrcpyOverflow }
func (strcpyFixture) Category() fault.Category { return fault.OutOfBoundsWrite }
func (strcpyFixture) Usage() string            { return "[input]" }

func (f strcpyFixture) Invoke(env *Env, args []string) (*fault.Descriptor, error) {
	if err := wantArgs(args, 0, 1, f.Usage()); err != nil {
		return nil, err
	}
	var input string
	if len(args) == 1 {
		input = args[0]
	}
	return OutOfBoundsWrite(env, input), nil
}

type getsFixture struct{}

func (getsFixture) Name() string             { return IDGetsOverflow }
func (getsFixture) Category() fault.Category { return fault.UnboundedRead }
func (getsFixture) Usage() string            { return "(reads a line from stdin)" }

func (f getsFixture) Invoke(env *Env, args []string) (*fault.Descriptor, error) {
	if err := wantArgs(args, 0, 0, f.Usage()); err != nil {
		return nil, err
	}
	return UnboundedRead(env)
}

type formatFixture struct{}

func (formatFixture) Name() string             { return IDFormatString }
func (formatFixture) Category() fault.Category { return fault.FormatInjection }
func (formatFixture) Usage() string            { return "<template>" }

func (f formatFixture) Invoke(env *Env, args []string) (*fault.Descriptor, error) {
	if err := wantArgs(args, 1, 1, f.Usage()); err != nil {
		return nil, err
	}
	return FormatInjection(env, args[0]), nil
}

type intOverflowFixture struct{}

func (intOverflowFixture) Name() string             { return IDIntegerOverflow }
func (intOverflowFixture) Category() fault.Category { return fault.IntegerOverflowAllocation }
func (intOverflowFixture) Usage() string            { return "<size> [data]" }

func (f intOverflowFixture) Invoke(env *Env, args []string) (*fault.Descriptor, error) {
	if err := wantArgs(args, 1, 2, f.Usage()); err != nil {
		return nil, err
	}
	size, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: size %q: %v", ErrBadArgs, args[0], err)
	}
	var data []byte
	if len(args) == 2 {
		data = []byte(args[1])
	}
	return IntegerOverflowAllocation(env, uint32(size), data).Fault, nil
}

type uafFixture struct{}

func (uafFixture) Name() string             { return IDUseAfterFree }
func (uafFixture) Category() fault.Category { return fault.UseAfterFree }
func (uafFixture) Usage() string            { return "(no arguments)" }

func (f uafFixture) Invoke(env *Env, args []string) (*fault.Descriptor, error) {
	if err := wantArgs(args, 0, 0, f.Usage()); err != nil {
		return nil, err
	}
	return UseAfterFree(env), nil
}

type leakFixture struct{}

func (leakFixture) Name() string             { return IDMemoryLeak }
func (leakFixture) Category() fault.Category { return fault.UnboundedResourceGrowth }
func (leakFixture) Usage() string            { return "<count>" }

func (f leakFixture) Invoke(env *Env, args []string) (*fault.Descriptor, error) {
	if err := wantArgs(args, 1, 1, f.Usage()); err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: count %q: %v", ErrBadArgs, args[0], err)
	}
	return UnboundedResourceGrowth(env, count), nil
}
