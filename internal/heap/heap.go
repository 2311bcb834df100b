// Package heap is a simulated allocator. It keeps the bookkeeping a real
// allocator would lose (liveness, extents, allocation order) so that
// dangling and out-of-bounds accesses are recorded instead of performed.
package heap

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// Handle identifies a block. Handles are monotonically increasing and
// never reused within a Heap; 0 is the null handle.
type Handle uint64

type ViolationKind string

const (
	ViolationNone          ViolationKind = ""
	ViolationUseAfterFree  ViolationKind = "use-after-free"
	ViolationOutOfBounds   ViolationKind = "out-of-bounds"
	ViolationDoubleFree    ViolationKind = "double-free"
	ViolationInvalidHandle ViolationKind = "invalid-handle"
)

var (
	ErrInvalidHandle = errors.New("invalid handle")
	ErrDoubleFree    = errors.New("double free")
)

// Access describes the outcome of a single read, write or copy.
type Access struct {
	Kind        ViolationKind
	Handle      Handle
	Offset      uint64 // requested offset, or first out-of-bounds offset on violation
	Overflow    uint64 // bytes requested past the end of the block
	Transferred uint64 // bytes actually read or written
}

// OK reports whether the access stayed inside a live block.
func (a Access) OK() bool {
	return a.Kind == ViolationNone
}

// Violation is an Access that went wrong, kept in the heap's log.
type Violation struct {
	Access
	Op      string // "write", "copy", "read", "free"
	AllocID uint64
	Size    uint64
}

func (v Violation) String() string {
	return fmt.Sprintf("%s on %s: handle %d (alloc=%d size=%d) offset=%d overflow=%d",
		v.Kind, v.Op, v.Handle, v.AllocID, v.Size, v.Offset, v.Overflow)
}

type block struct {
	size    uint64
	alive   bool
	allocID uint64
	// data backs the block up to the last byte ever written from a
	// source; everything past len(data) reads as zero.
	data []byte
}

// back grows the backing store to cover the first n bytes.
func (b *block) back(n uint64) {
	if uint64(len(b.data)) < n {
		b.data = append(b.data, make([]byte, safecast.MustConv[int](n)-len(b.data))...)
	}
}

// Heap is not safe for concurrent use; each fixture invocation owns one.
type Heap struct {
	next        Handle
	nextAllocID uint64
	blocks      map[Handle]*block

	limit      uint64
	inUse      uint64
	live       int
	violations []Violation
}

// New returns a heap that refuses allocations once more than limit bytes
// would be live. A limit of 0 means unlimited.
func New(limit uint64) *Heap {
	h := &Heap{limit: limit}
	h.initIfNeeded()
	return h
}

func (h *Heap) initIfNeeded() {
	if h.blocks == nil {
		h.blocks = make(map[Handle]*block, 16)
	}
	if h.next == 0 {
		h.next = 1
	}
	if h.nextAllocID == 0 {
		h.nextAllocID = 1
	}
}

// Alloc reserves size bytes and returns the null handle when the request
// cannot be satisfied, the way malloc returns NULL.
func (h *Heap) Alloc(size uint64) Handle {
	if h.limit > 0 && (size > h.limit || h.inUse > h.limit-size) {
		return 0
	}
	return h.reserve(size)
}

// Reserve allocates size bytes without checking the limit. It is meant for
// blocks that are held but never touched, such as leaked ones: they count
// toward LiveBytes and Live but are never backed.
func (h *Heap) Reserve(size uint64) Handle {
	return h.reserve(size)
}

func (h *Heap) reserve(size uint64) Handle {
	h.initIfNeeded()
	if _, err := safecast.Conv[int](size); err != nil {
		return 0
	}
	handle := h.next
	h.next++
	h.blocks[handle] = &block{
		size:    size,
		alive:   true,
		allocID: h.nextAllocID,
	}
	h.nextAllocID++
	h.inUse += size
	h.live++
	return handle
}

func (h *Heap) Free(handle Handle) error {
	h.initIfNeeded()
	b, ok := h.blocks[handle]
	if !ok {
		h.record("free", Access{Kind: ViolationInvalidHandle, Handle: handle}, nil)
		return fmt.Errorf("%w %d", ErrInvalidHandle, handle)
	}
	if !b.alive {
		h.record("free", Access{Kind: ViolationDoubleFree, Handle: handle}, b)
		return fmt.Errorf("%w: handle %d (alloc=%d)", ErrDoubleFree, handle, b.allocID)
	}
	b.alive = false
	b.data = nil
	h.inUse -= b.size
	h.live--
	return nil
}

// Write stores p at off. Bytes that fall inside the block are written;
// the remainder is counted as overflow and logged.
func (h *Heap) Write(handle Handle, off uint64, p []byte) Access {
	return h.store("write", handle, off, uint64(len(p)), p)
}

// Copy has memcpy semantics: n bytes are copied from src to the start of
// the block. src is read as if zero-extended to n bytes, so a caller may
// declare a source larger than the slice it actually holds.
func (h *Heap) Copy(handle Handle, src []byte, n uint64) Access {
	return h.store("copy", handle, 0, n, src)
}

func (h *Heap) store(op string, handle Handle, off, n uint64, src []byte) Access {
	b, acc := h.resolve(op, handle)
	if !acc.OK() {
		return acc
	}
	acc.Offset = off

	inBounds := span(b.size, off, n)
	if inBounds > 0 {
		// Only bytes taken from src are backed. The zero-extended tail
		// clears whatever was already backed and allocates nothing.
		explicit := min(uint64(len(src)), inBounds)
		if explicit > 0 {
			b.back(off + explicit)
			copy(b.data[off:off+explicit], src)
		}
		if tail := off + explicit; tail < uint64(len(b.data)) {
			clear(b.data[tail:min(off+inBounds, uint64(len(b.data)))])
		}
	}
	acc.Transferred = inBounds

	if n > inBounds {
		acc.Kind = ViolationOutOfBounds
		acc.Offset = max(off, b.size)
		acc.Overflow = n - inBounds
		h.record(op, acc, b)
	}
	return acc
}

// Read returns up to n bytes starting at off. Dangling reads return nil.
func (h *Heap) Read(handle Handle, off, n uint64) ([]byte, Access) {
	b, acc := h.resolve("read", handle)
	if !acc.OK() {
		return nil, acc
	}
	acc.Offset = off

	inBounds := span(b.size, off, n)
	out := make([]byte, safecast.MustConv[int](inBounds))
	if off < uint64(len(b.data)) {
		copy(out, b.data[off:])
	}
	acc.Transferred = inBounds

	if n > inBounds {
		acc.Kind = ViolationOutOfBounds
		acc.Offset = max(off, b.size)
		acc.Overflow = n - inBounds
		h.record("read", acc, b)
	}
	return out, acc
}

func (h *Heap) resolve(op string, handle Handle) (*block, Access) {
	h.initIfNeeded()
	acc := Access{Handle: handle}
	b, ok := h.blocks[handle]
	if !ok {
		acc.Kind = ViolationInvalidHandle
		h.record(op, acc, nil)
		return nil, acc
	}
	if !b.alive {
		acc.Kind = ViolationUseAfterFree
		h.record(op, acc, b)
		return nil, acc
	}
	return b, acc
}

func (h *Heap) record(op string, acc Access, b *block) {
	v := Violation{Access: acc, Op: op}
	if b != nil {
		v.AllocID = b.allocID
		v.Size = b.size
	}
	h.violations = append(h.violations, v)
}

// span is the number of the n bytes at off that fit in a block of size.
func span(size, off, n uint64) uint64 {
	if off >= size {
		return 0
	}
	return min(n, size-off)
}

// Size returns the requested size of a block, live or freed.
func (h *Heap) Size(handle Handle) (uint64, bool) {
	b, ok := h.blocks[handle]
	if !ok {
		return 0, false
	}
	return b.size, true
}

// Live is the number of allocated blocks that have not been freed.
func (h *Heap) Live() int {
	return h.live
}

// LiveBytes is the number of bytes held by live blocks.
func (h *Heap) LiveBytes() uint64 {
	return h.inUse
}

// Allocations is the number of successful allocations over the heap's life.
func (h *Heap) Allocations() uint64 {
	if h.nextAllocID == 0 {
		return 0
	}
	return h.nextAllocID - 1
}

// Violations returns a copy of the violation log.
func (h *Heap) Violations() []Violation {
	return append([]Violation(nil), h.violations...)
}
