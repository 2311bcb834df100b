package fixture

import (
	"fmt"

	"github.com/gzhole/faultcorpus/internal/fault"
	"github.com/gzhole/faultcorpus/internal/heap"
)

// UAFBlockSize is the size of the block that is freed and then used.
const UAFBlockSize = 100

const danglingMessage = "Still using freed memory!"

// UseAfterFree allocates a block, frees it, writes a string through the
// stale handle and reads it back. It takes no input and faults on every
// call.
func UseAfterFree(env *Env) *fault.Descriptor {
	env = env.orDefault()
	h := env.Heap

	ptr := h.Alloc(UAFBlockSize)
	if ptr == 0 {
		// The caller's heap is exhausted; a freed pointer still needs a
		// block behind it.
		h = heap.New(0)
		ptr = h.Alloc(UAFBlockSize)
	}
	_ = h.Free(ptr)

	payload := append([]byte(danglingMessage), 0)
	wacc := h.Write(ptr, 0, payload)
	got, racc := h.Read(ptr, 0, uint64(len(payload)))
	fmt.Fprintf(env.Stdout, "%s\n", got)

	dangling := uint64(0)
	for _, acc := range []heap.Access{wacc, racc} {
		if acc.Kind == heap.ViolationUseAfterFree {
			dangling++
		}
	}

	return &fault.Descriptor{
		Fixture:        IDUseAfterFree,
		Category:       fault.UseAfterFree,
		Threshold:      0,
		ObservedLength: dangling,
		Capacity:       UAFBlockSize,
		Extent:         uint64(len(payload)),
		Handle:         uint64(ptr),
		Detail: fmt.Sprintf("%d-byte write and read through handle %d after it was freed",
			len(payload), ptr),
	}
}
