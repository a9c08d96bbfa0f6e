// Package encoding implements C8: converting an opaque engine-side unit
// view into the fixed-width feature vectors the neural evaluator consumes
// (spec.md §4.8), and the sub-embedding cache key derivation.
//
// Grounded on internal/features/features.go's table-driven FeatureSetter
// pattern from the teacher, generalized from Hive's piece-count features to
// per-unit stat/status/move-PP features for a Pokémon-shaped battle state.
package encoding

// Status is the compact status enumeration of spec.md §4.8: "one-hot over
// a compact {ok, four non-sleep status conditions, seven sleep-countdown
// states, three rested-countdown states} enumeration" -- 15 classes total.
type Status uint8

const (
	StatusOK Status = iota

	// Non-sleep status conditions (paralysis, poison, burn, freeze).
	StatusParalyzed
	StatusPoisoned
	StatusBurned
	StatusFrozen

	// Sleep, by remaining countdown (1..7 turns left).
	StatusSleep1
	StatusSleep2
	StatusSleep3
	StatusSleep4
	StatusSleep5
	StatusSleep6
	StatusSleep7

	// "Rested" countdown: turns since waking during which some moves
	// (e.g. a move that fails explicitly while drowsy) are still
	// constrained -- modeled here as a 3-step countdown.
	StatusRested1
	StatusRested2
	StatusRested3

	// NumStatus is the total enumeration size -- must stay 15 to match
	// spec.md §4.8 and the sub-embedding cache's status dimension.
	NumStatus
)

// NumStatusBits is how many bits the packed pokemon_key dedicates to the
// status index (spec.md §4.3: "a 4-bit status index").
const NumStatusBits = 4

func init() {
	if NumStatus > (1 << NumStatusBits) {
		panic("encoding: NumStatus exceeds the 4-bit status index budget")
	}
}

// OneHot writes a one-hot encoding of s into dst, which must have length
// NumStatus.
func (s Status) OneHot(dst []float32) {
	for i := range dst {
		dst[i] = 0
	}
	dst[s] = 1
}
