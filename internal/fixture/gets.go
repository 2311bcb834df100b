package fixture

import (
	"errors"
	"fmt"
	"io"

	"github.com/gzhole/faultcorpus/internal/fault"
)

const (
	GetsCapacity  = 32
	GetsThreshold = GetsCapacity - 1
)

// UnboundedRead prompts for a username and reads a line from env.Stdin
// into a 32-byte buffer. Reading stops only at a newline or end of input;
// there is no length parameter at all. Lines of 32 or more characters
// (33 bytes with the terminator) overflow the buffer.
func UnboundedRead(env *Env) (*fault.Descriptor, error) {
	env = env.orDefault()
	fmt.Fprint(env.Stdout, "Enter username: ")

	var username [GetsCapacity]byte
	r, ok := env.Stdin.(io.ByteReader)
	if !ok {
		r = &byteReader{r: env.Stdin}
	}
	var n uint64
	for {
		c, err := r.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading username: %w", err)
		}
		if c == '\n' {
			break
		}
		if n < GetsThreshold {
			username[n] = c
		}
		n++
	}
	fmt.Fprintf(env.Stdout, "Welcome, %s!\n", username[:min(n, GetsThreshold)])

	if n <= GetsThreshold {
		return nil, nil
	}
	return &fault.Descriptor{
		Fixture:        IDGetsOverflow,
		Category:       fault.UnboundedRead,
		Threshold:      GetsThreshold,
		ObservedLength: n,
		Capacity:       GetsCapacity,
		Offset:         GetsCapacity,
		Extent:         n - GetsThreshold,
		Detail:         fmt.Sprintf("unbounded line read stores %d bytes into a %d-byte buffer", n+1, GetsCapacity),
	}, nil
}

// byteReader reads one byte per call so nothing past the newline is
// consumed from the caller's reader.
type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}
