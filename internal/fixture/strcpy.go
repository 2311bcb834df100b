package fixture

import (
	"fmt"

	"github.com/gzhole/faultcorpus/internal/fault"
)

const (
	// StrcpyCapacity is the size of the destination buffer.
	StrcpyCapacity = 64
	// StrcpyThreshold is the longest input that fits with its terminator.
	StrcpyThreshold = StrcpyCapacity - 1
)

// OutOfBoundsWrite copies input and its terminator into a 64-byte buffer
// without checking the length, then prints the buffer.
//
// Inputs of up to 63 bytes fit. Anything longer writes past the buffer;
// the returned descriptor records where the write left the buffer
// (offset 64) and how far it went. The input is treated as a C string
// without embedded terminators, so its length is len(input).
func OutOfBoundsWrite(env *Env, input string) *fault.Descriptor {
	env = env.orDefault()

	var buffer [StrcpyCapacity]byte
	n := copy(buffer[:StrcpyThreshold], input)
	fmt.Fprintf(env.Stdout, "Data: %s\n", buffer[:n])

	observed := uint64(len(input))
	if observed <= StrcpyThreshold {
		return nil
	}
	return &fault.Descriptor{
		Fixture:        IDStrcpyOverflow,
		Category:       fault.OutOfBoundsWrite,
		Threshold:      StrcpyThreshold,
		ObservedLength: observed,
		Capacity:       StrcpyCapacity,
		Offset:         StrcpyCapacity,
		Extent:         observed - StrcpyThreshold,
		Detail: fmt.Sprintf("unchecked copy writes %d bytes (input + terminator) into a %d-byte buffer",
			observed+1, StrcpyCapacity),
	}
}
