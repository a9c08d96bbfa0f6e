package encoding

import "github.com/janpfeifer/pkmn-mcts/internal/engine"

// Featurizer is implemented by concrete engine.State types that can expose
// their per-unit views for feature extraction (spec.md §4.8's "Feature
// extraction" step). The core and internal/bandit never need this; only
// internal/evaluator's heuristic and neural variants type-assert a state to
// Featurizer before evaluating it.
type Featurizer interface {
	// Active returns the feature view of player's currently active unit.
	Active(player engine.Player) ActiveView

	// Bench returns the feature views of player's non-active (benched,
	// including fainted) units, in a stable engine-defined order.
	Bench(player engine.Player) []UnitView
}

// Vocabulary sizes for the reference engine fixture (internal/engine/reference).
// A real engine/evaluator pair would size these to its own game; spec.md
// §4.8 commits only to the shapes below, not the exact vocabulary (see
// SPEC_FULL.md §6, "Engine/evaluator versions").
const (
	// TypeVocabSize is the number of distinct elemental types a unit can
	// have (up to 2 of them per unit, multi-hot encoded).
	TypeVocabSize = 15

	// MoveVocabSize is the size of the global move vocabulary multi-hot
	// over move slots (spec.md §4.8's "Move-slot features").
	MoveVocabSize = 32

	// StatsFeatureDim is the number of normalized numeric stats per unit
	// (hp fraction, attack, defense, speed, special).
	StatsFeatureDim = 5

	// BoostFeatureDim covers the 6 stat-boost stages (attack, defense,
	// special, speed, accuracy, evasion), normalized from [-6,+6] to [0,1].
	BoostFeatureDim = 6

	// VolatileFeatureDim is a fixed bit-vector of volatile battle flags:
	// confused, leech-seeded, substitute-up, reflect-up, light-screen-up,
	// flinched, using a multi-turn move, and taking-a-rest.
	VolatileFeatureDim = 8

	// DurationFeatureDim covers numeric countdowns not already captured by
	// Status: reflect turns remaining, light-screen turns remaining, toxic
	// poison counter.
	DurationFeatureDim = 3
)

// NonActiveDim is the feature width for a non-active (benched) unit:
// stats + moves + status + types (spec.md §4.8: "The non-active-unit
// encoder consumes (stats, moves, status, types).").
const NonActiveDim = StatsFeatureDim + MoveVocabSize + int(NumStatus) + TypeVocabSize

// ActiveDim is the feature width for the active unit: everything
// NonActiveDim has, plus boosts, volatiles and durations (spec.md §4.8:
// "The active-unit encoder consumes that plus (boosts, volatiles,
// duration).").
const ActiveDim = NonActiveDim + BoostFeatureDim + VolatileFeatureDim + DurationFeatureDim

// MoveSlot describes one of a unit's (up to MaxMoveSlots) moves.
type MoveSlot struct {
	// MoveID indexes into the global move vocabulary; -1 means the slot is
	// empty.
	MoveID int
	HasPP  bool
}

// UnitView is the subset of a non-active unit's state the encoder reads.
// The engine is opaque to the rest of the core (spec.md §1); only this
// package and internal/engine/reference know this shape.
type UnitView struct {
	Stats  [StatsFeatureDim]float32 // already normalized to [0,1] by the engine's known per-feature maxima.
	Types  [2]int                   // up to 2 type indices into [0, TypeVocabSize); -1 for unused slot.
	Moves  [MaxMoveSlots]MoveSlot
	Status Status
}

// ActiveView extends UnitView with the fields only the currently-active
// unit carries.
type ActiveView struct {
	UnitView
	Boosts    [BoostFeatureDim]float32 // raw stages in [-6,+6], normalized by EncodeActive.
	Volatiles [VolatileFeatureDim]bool
	Durations [DurationFeatureDim]float32 // already normalized to [0,1] by known maxima.
}

// PokemonKeyOf derives the sub-embedding cache key for a non-active unit
// (spec.md §4.8: "the 8-bit pokemon_key derived from the current status
// and move-PP bits").
func (u UnitView) PokemonKeyOf() PokemonKey {
	var mask uint8
	for i, slot := range u.Moves {
		if slot.HasPP {
			mask |= 1 << uint(i)
		}
	}
	return PackKey(u.Status, mask)
}

// EncodeNonActive writes u's non-active-unit features into dst, which must
// have length NonActiveDim.
func EncodeNonActive(u UnitView, dst []float32) {
	offset := 0
	copy(dst[offset:], u.Stats[:])
	offset += StatsFeatureDim

	moveBits := dst[offset : offset+MoveVocabSize]
	for i := range moveBits {
		moveBits[i] = 0
	}
	for _, slot := range u.Moves {
		if slot.MoveID >= 0 && slot.HasPP && slot.MoveID < MoveVocabSize {
			moveBits[slot.MoveID] = 1
		}
	}
	offset += MoveVocabSize

	u.Status.OneHot(dst[offset : offset+int(NumStatus)])
	offset += int(NumStatus)

	typeBits := dst[offset : offset+TypeVocabSize]
	for i := range typeBits {
		typeBits[i] = 0
	}
	for _, t := range u.Types {
		if t >= 0 && t < TypeVocabSize {
			typeBits[t] = 1
		}
	}
}

// EncodeActive writes a's full active-unit features (non-active features
// plus boosts/volatiles/durations) into dst, which must have length
// ActiveDim.
func EncodeActive(a ActiveView, dst []float32) {
	EncodeNonActive(a.UnitView, dst[:NonActiveDim])
	offset := NonActiveDim

	for i, boost := range a.Boosts {
		// Normalize a [-6, +6] stage to [0, 1].
		dst[offset+i] = (boost + 6) / 12
	}
	offset += BoostFeatureDim

	for i, v := range a.Volatiles {
		if v {
			dst[offset+i] = 1
		} else {
			dst[offset+i] = 0
		}
	}
	offset += VolatileFeatureDim

	copy(dst[offset:offset+DurationFeatureDim], a.Durations[:])
}
