package fixture

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gzhole/faultcorpus/internal/fault"
)

func TestOutOfBoundsWrite_ExactBoundary(t *testing.T) {
	for n := 0; n <= 200; n++ {
		desc := OutOfBoundsWrite(nil, strings.Repeat("A", n))
		if n <= 63 {
			if desc != nil {
				t.Fatalf("len %d: unexpected fault %s", n, desc.Summary())
			}
			continue
		}
		if desc == nil {
			t.Fatalf("len %d: expected OutOfBoundsWrite fault", n)
		}
		if desc.Category != fault.OutOfBoundsWrite {
			t.Fatalf("len %d: category %s", n, desc.Category)
		}
		if desc.Offset != 64 {
			t.Errorf("len %d: offset %d, want 64", n, desc.Offset)
		}
		if want := uint64(n - 63); desc.Extent != want {
			t.Errorf("len %d: extent %d, want %d", n, desc.Extent, want)
		}
	}
}

func TestOutOfBoundsWrite_HundredBytes(t *testing.T) {
	var out bytes.Buffer
	desc := OutOfBoundsWrite(&Env{Stdout: &out}, strings.Repeat("A", 100))

	require.NotNil(t, desc)
	assert.Equal(t, fault.OutOfBoundsWrite, desc.Category)
	assert.Equal(t, uint64(63), desc.Threshold)
	assert.Equal(t, uint64(100), desc.ObservedLength)
	assert.Equal(t, uint64(64), desc.Capacity)
	assert.Equal(t, IDStrcpyOverflow, desc.Fixture)
	assert.Equal(t, "Data: "+strings.Repeat("A", 63)+"\n", out.String(),
		"only the in-bounds part of the buffer is printed")
}

func TestOutOfBoundsWrite_ShortInput(t *testing.T) {
	var out bytes.Buffer
	desc := OutOfBoundsWrite(&Env{Stdout: &out}, "hi")

	assert.Nil(t, desc)
	assert.Equal(t, "Data: hi\n", out.String())
}

func TestOutOfBoundsWrite_CountsBytesNotRunes(t *testing.T) {
	// 32 two-byte runes are 64 bytes.
	desc := OutOfBoundsWrite(nil, strings.Repeat("é", 32))
	require.NotNil(t, desc)
	assert.Equal(t, uint64(64), desc.ObservedLength)
}
