package fixture

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gzhole/faultcorpus/internal/catalog"
	"github.com/gzhole/faultcorpus/internal/fault"
	"github.com/gzhole/faultcorpus/internal/heap"
)

// ProbeResult is the outcome of replaying one catalog probe.
type ProbeResult struct {
	CaseID   string
	Index    int
	Args     []string
	Stdin    string
	Want     bool
	Got      *fault.Descriptor
	Err      error
	Pass     bool
	Failures []string
}

// Verify replays every probe of every case against its fixture. Cases run
// concurrently; each probe gets a fresh Env whose heap is limited to
// heapLimit bytes (DefaultHeapLimit when 0), so nothing is shared.
func Verify(ctx context.Context, reg *Registry, cases []catalog.FixtureCase, heapLimit uint64) ([]ProbeResult, error) {
	if heapLimit == 0 {
		heapLimit = DefaultHeapLimit
	}
	perCase := make([][]ProbeResult, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	for i, fc := range cases {
		i, fc := i, fc
		g.Go(func() error {
			out := make([]ProbeResult, 0, len(fc.Probes))
			for j, p := range fc.Probes {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				out = append(out, runProbe(reg, fc, j, p, heapLimit))
			}
			perCase[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []ProbeResult
	for _, rs := range perCase {
		results = append(results, rs...)
	}
	return results, nil
}

func runProbe(reg *Registry, fc catalog.FixtureCase, index int, p catalog.Probe, heapLimit uint64) ProbeResult {
	args, stdin := p.Expand()
	res := ProbeResult{
		CaseID: fc.ID,
		Index:  index,
		Args:   args,
		Stdin:  stdin,
		Want:   p.ExpectFault,
	}

	env := &Env{
		Heap:   heap.New(heapLimit),
		Stdin:  strings.NewReader(stdin),
		Stdout: io.Discard,
	}
	res.Got, res.Err = reg.Invoke(fc.ID, env, args)

	if res.Err != nil {
		res.Failures = append(res.Failures, res.Err.Error())
	}
	if got := res.Got != nil; got != p.ExpectFault {
		res.Failures = append(res.Failures, fmt.Sprintf("fault=%t, want %t", got, p.ExpectFault))
	}
	if res.Got != nil {
		if res.Got.Category != fc.Category {
			res.Failures = append(res.Failures, fmt.Sprintf("category %s, want %s", res.Got.Category, fc.Category))
		}
		if p.ExpectObserved != nil && res.Got.ObservedLength != *p.ExpectObserved {
			res.Failures = append(res.Failures, fmt.Sprintf("observed %d, want %d", res.Got.ObservedLength, *p.ExpectObserved))
		}
	}
	res.Pass = len(res.Failures) == 0
	return res
}
