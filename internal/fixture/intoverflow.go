package fixture

import (
	"fmt"
	"math"

	"github.com/gzhole/faultcorpus/internal/fault"
	"github.com/gzhole/faultcorpus/internal/heap"
)

const (
	// AllocPadding is added to the requested size before allocating.
	AllocPadding = 10
	// OverflowThreshold is the largest size for which size+AllocPadding
	// still fits in 32 bits.
	OverflowThreshold = math.MaxUint32 - AllocPadding
)

// Allocation reports what IntegerOverflowAllocation did.
type Allocation struct {
	Size         uint32
	ComputedSize uint32 // size + AllocPadding, wrapped to 32 bits
	Handle       heap.Handle
	Allocated    bool
	Copied       bool
	Fault        *fault.Descriptor
}

// IntegerOverflowAllocation computes size+10 in 32-bit unsigned
// arithmetic, allocates that many bytes on env.Heap and copies size bytes
// of src into it. src stands for a buffer of the declared size; bytes
// past len(src) read as zero.
//
// When the allocation fails nothing is copied. For size greater than
// OverflowThreshold the sum wraps to a handful of bytes and the copy runs
// far past the block. The descriptor is emitted for every wrapping size;
// its Offset and Extent describe the simulated copy when one happened.
func IntegerOverflowAllocation(env *Env, size uint32, src []byte) Allocation {
	env = env.orDefault()

	total := size + AllocPadding
	res := Allocation{Size: size, ComputedSize: total}

	if size > OverflowThreshold {
		res.Fault = &fault.Descriptor{
			Fixture:        IDIntegerOverflow,
			Category:       fault.IntegerOverflowAllocation,
			Threshold:      OverflowThreshold,
			ObservedLength: uint64(size),
			ComputedSize:   uint64(total),
			Capacity:       uint64(total),
		}
	}

	buffer := env.Heap.Alloc(uint64(total))
	if buffer == 0 {
		if res.Fault != nil {
			res.Fault.Detail = fmt.Sprintf("size %d + %d wraps to %d; allocation failed, copy suppressed",
				size, AllocPadding, total)
		}
		return res
	}
	res.Handle = buffer
	res.Allocated = true

	acc := env.Heap.Copy(buffer, src, uint64(size))
	res.Copied = true
	if res.Fault != nil {
		res.Fault.Offset = acc.Offset
		res.Fault.Extent = acc.Overflow
		res.Fault.Detail = fmt.Sprintf("size %d + %d wraps to %d; copying %d bytes overruns the block by %d",
			size, AllocPadding, total, size, acc.Overflow)
	}

	_ = env.Heap.Free(buffer)
	return res
}
