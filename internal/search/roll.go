package search

import (
	"math/rand"

	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

// rollSteps is the granularity damage-roll indices are expressed in,
// matching internal/engine/reference's own 16-step roll table; any engine
// implementing the full 0-15 range can interpret these bytes directly, and
// an engine with fewer actual rolls can collapse adjacent indices itself.
const rollSteps = 16

// sampleRoll picks one damage-multiplier roll index per spec.md §4.5's
// "Damage-roll clamping": always the middle index for RollMiddle, one of
// {low, mid, high} for RollThree, or one of count evenly spaced indices for
// a general N-roll mode, drawn from rng (the worker's own RNG stands in for
// "the low bits of the engine RNG" the prose describes, since the core
// never reads the engine's internal RNG state directly).
func sampleRoll(rng *rand.Rand, count engine.RollCount) uint8 {
	switch {
	case count <= engine.RollMiddle:
		return rollSteps / 2
	case count == engine.RollThree:
		choices := [3]uint8{0, rollSteps / 2, rollSteps - 1}
		return choices[rng.Intn(3)]
	default:
		n := int(count)
		if n > rollSteps {
			n = rollSteps
		}
		idx := rng.Intn(n)
		return uint8(idx * (rollSteps - 1) / (n - 1))
	}
}
