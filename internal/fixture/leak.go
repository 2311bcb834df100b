package fixture

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/gzhole/faultcorpus/internal/fault"
)

// LeakBlockSize is the size of each block that is never released.
const LeakBlockSize = 1024

// UnboundedResourceGrowth allocates count blocks on env.Heap and never
// frees them. The caller owns the heap, so the unreleased allocations
// remain observable after the call. Nothing is written, so the heap
// records growth and no corruption. The blocks are reserved past the heap
// limit: a leak keeps growing where a checked allocation would stop.
func UnboundedResourceGrowth(env *Env, count int) *fault.Descriptor {
	env = env.orDefault()

	before := env.Heap.LiveBytes()
	for i := 0; i < count; i++ {
		_ = env.Heap.Reserve(LeakBlockSize)
	}
	if count <= 0 {
		return nil
	}

	leaked := env.Heap.LiveBytes() - before
	return &fault.Descriptor{
		Fixture:        IDMemoryLeak,
		Category:       fault.UnboundedResourceGrowth,
		Threshold:      0,
		ObservedLength: safecast.MustConv[uint64](count),
		Capacity:       LeakBlockSize,
		Extent:         leaked,
		Detail:         fmt.Sprintf("%d block(s) of %d bytes allocated and never released", count, LeakBlockSize),
	}
}
