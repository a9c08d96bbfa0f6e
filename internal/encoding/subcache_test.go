package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPokemonKeyPermutationAtFixedStatus(t *testing.T) {
	seen := make(map[uint8]bool)
	for mask := uint8(0); mask < 16; mask++ {
		key := PackKey(StatusOK, mask)
		lowNibble := uint8(key) & 0x0F
		seen[lowNibble] = true
	}
	assert.Len(t, seen, 16, "the 16 has-pp combinations at status=ok must produce 16 distinct keys")
}

func TestPackUnpackRoundTrip(t *testing.T) {
	for status := Status(0); status < NumStatus; status++ {
		for mask := uint8(0); mask < 16; mask++ {
			key := PackKey(status, mask)
			gotStatus, gotMask := key.UnpackKey()
			assert.Equal(t, status, gotStatus)
			assert.Equal(t, mask, gotMask)
		}
	}
}

func TestSubCacheLookup(t *testing.T) {
	dim := 8
	calls := 0
	cache := NewSubCache(dim, func(status Status, mask uint8) []float32 {
		calls++
		v := make([]float32, dim)
		v[0] = float32(status)
		v[1] = float32(mask)
		return v
	})
	assert.Equal(t, SubspaceSize, calls)

	key := PackKey(StatusParalyzed, 0b1010)
	entry, err := cache.Lookup(key)
	require.NoError(t, err)
	assert.Equal(t, float32(StatusParalyzed), entry[0])
	assert.Equal(t, float32(0b1010), entry[1])
}
