package fixture

import (
	"io"
	"strings"

	"github.com/gzhole/faultcorpus/internal/heap"
)

// DefaultHeapLimit bounds the private heap a fixture creates when the
// caller does not supply one.
const DefaultHeapLimit = 256 << 20

// Env is the state a fixture runs against. The caller owns it: the heap
// that records allocations, the console input and the console output.
// Every invocation should get its own Env.
type Env struct {
	Heap   *heap.Heap
	Stdin  io.Reader
	Stdout io.Writer
}

// NewEnv returns an Env with a fresh heap limited to heapLimit bytes
// (0 means unlimited), empty input and discarded output.
func NewEnv(heapLimit uint64) *Env {
	return &Env{
		Heap:   heap.New(heapLimit),
		Stdin:  strings.NewReader(""),
		Stdout: io.Discard,
	}
}

// orDefault fills in whatever the caller left unset. The caller's heap is
// kept so allocations stay observable to it.
func (e *Env) orDefault() *Env {
	var out Env
	if e != nil {
		out = *e
	}
	if out.Heap == nil {
		out.Heap = heap.New(DefaultHeapLimit)
	}
	if out.Stdin == nil {
		out.Stdin = strings.NewReader("")
	}
	if out.Stdout == nil {
		out.Stdout = io.Discard
	}
	return &out
}
