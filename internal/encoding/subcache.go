package encoding

import "github.com/pkg/errors"

// MaxMoveSlots is the number of move slots a non-active unit's move-slot
// features track (spec.md §4.8: "each slot contributes its move's bit iff
// the slot still has usage points" -- Gen-1 battles cap move slots at 4).
const MaxMoveSlots = 4

// PokemonKey packs (status, has-pp bits) into the 8-bit cache key of
// spec.md §4.3/§4.8: a 4-bit status index combined with a 4-bit mask of
// which of up to 4 move slots still has usage points (PP).
//
// This is invertible by construction: PackKey/UnpackKey round-trip, which
// spec.md §8 requires to be checked by constructing all 16 has-pp
// combinations at a fixed status and verifying the keys form a permutation
// of 0..15 within that status's 16-entry block.
type PokemonKey uint8

// PackKey builds the 8-bit cache key from a status and a 4-bit has-pp
// mask (bit i set iff move slot i still has PP).
func PackKey(status Status, hasPPMask uint8) PokemonKey {
	return PokemonKey(uint8(status)<<4 | (hasPPMask & 0x0F))
}

// UnpackKey splits a PokemonKey back into its status and has-pp mask.
func (k PokemonKey) UnpackKey() (status Status, hasPPMask uint8) {
	return Status(uint8(k) >> 4), uint8(k) & 0x0F
}

// SubspaceSize is the number of distinct (status, has-pp) points the
// sub-embedding cache pre-computes per non-active unit: NumStatus status
// classes times 2^MaxMoveSlots has-pp combinations.
const SubspaceSize = int(NumStatus) * (1 << MaxMoveSlots)

// SubCache holds a pre-computed embedding for every point of the
// (status x has-pp) subspace of a single non-active unit, per spec.md
// §4.3 ("Sub-embedding cache"). Embed is supplied by the caller (the
// neural evaluator's non-active-unit sub-network) at game start; lookups
// during search never touch the network.
type SubCache struct {
	dim     int
	entries [][]float32 // indexed by PokemonKey, only the NumStatus*16 valid slots populated.
}

// NewSubCache precomputes embeddings for every (status, has-pp) point,
// using embed to compute each one from a synthetic unit carrying exactly
// that status and those PP bits (and otherwise identical base stats/
// species/moves to the real unit -- the caller is responsible for
// constructing that synthetic view).
func NewSubCache(dim int, embed func(status Status, hasPPMask uint8) []float32) *SubCache {
	c := &SubCache{dim: dim, entries: make([][]float32, 256)}
	for statusIdx := Status(0); statusIdx < NumStatus; statusIdx++ {
		for ppMask := uint8(0); ppMask < 1<<MaxMoveSlots; ppMask++ {
			key := PackKey(statusIdx, ppMask)
			c.entries[key] = embed(statusIdx, ppMask)
		}
	}
	return c
}

// Lookup returns the cached embedding for key, erroring if key falls
// outside the populated (status, has-pp) subspace.
func (c *SubCache) Lookup(key PokemonKey) ([]float32, error) {
	status, _ := key.UnpackKey()
	if status >= NumStatus {
		return nil, errors.Errorf("encoding: subcache key %d has out-of-range status %d", key, status)
	}
	entry := c.entries[key]
	if entry == nil {
		return nil, errors.Errorf("encoding: subcache key %d has no precomputed entry", key)
	}
	return entry, nil
}

// Dim returns the embedding dimension every cached vector has.
func (c *SubCache) Dim() int {
	return c.dim
}
