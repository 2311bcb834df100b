package fixture

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gzhole/faultcorpus/internal/fault"
	"github.com/gzhole/faultcorpus/internal/heap"
)

func TestUnboundedResourceGrowth_CountsUnreleased(t *testing.T) {
	for _, count := range []int{1, 2, 10, 1000} {
		h := heap.New(0)
		desc := UnboundedResourceGrowth(&Env{Heap: h}, count)

		require.NotNil(t, desc)
		assert.Equal(t, fault.UnboundedResourceGrowth, desc.Category)
		assert.Equal(t, fault.ClassResourceAccounting, desc.Category.Class())
		assert.Equal(t, uint64(count), desc.ObservedLength)
		assert.Equal(t, uint64(count)*LeakBlockSize, desc.Extent)

		assert.Equal(t, count, h.Live(), "exactly count allocations stay unreleased")
		assert.Equal(t, uint64(count)*LeakBlockSize, h.LiveBytes())
		assert.Empty(t, h.Violations(), "growth must not corrupt anything")
	}
}

func TestUnboundedResourceGrowth_ZeroCount(t *testing.T) {
	h := heap.New(0)

	assert.Nil(t, UnboundedResourceGrowth(&Env{Heap: h}, 0))
	assert.Nil(t, UnboundedResourceGrowth(&Env{Heap: h}, -5))
	assert.Equal(t, 0, h.Live())
	assert.Equal(t, uint64(0), h.Allocations())
}

func TestUnboundedResourceGrowth_AccumulatesAcrossCalls(t *testing.T) {
	h := heap.New(0)
	env := &Env{Heap: h}

	UnboundedResourceGrowth(env, 3)
	desc := UnboundedResourceGrowth(env, 4)

	require.NotNil(t, desc)
	assert.Equal(t, uint64(4*LeakBlockSize), desc.Extent, "extent covers this call only")
	assert.Equal(t, 7, h.Live(), "the caller's tracker keeps growing")
}

func TestUnboundedResourceGrowth_PastHeapLimit(t *testing.T) {
	count := DefaultHeapLimit/LeakBlockSize + 37762
	env := NewEnv(DefaultHeapLimit)

	desc, err := Default().Invoke(IDMemoryLeak, env, []string{strconv.Itoa(count)})
	require.NoError(t, err)
	require.NotNil(t, desc)

	assert.Equal(t, uint64(count), desc.ObservedLength)
	assert.Equal(t, uint64(count)*LeakBlockSize, desc.Extent)
	assert.Equal(t, count, env.Heap.Live(), "every iteration leaks a block")

	// The limit still applies to checked allocations.
	assert.Equal(t, heap.Handle(0), env.Heap.Alloc(1))
}
