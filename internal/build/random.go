package build

import (
	"math/rand"

	"github.com/janpfeifer/pkmn-mcts/internal/encoding"
	"github.com/janpfeifer/pkmn-mcts/internal/engine/reference"
)

// RandomProvider drafts a team by drawing TeamSize species uniformly from
// reference.Roster (without replacement) and MovesPerUnit moves uniformly
// from reference.MoveTable (without replacement) for each, recording every
// draw as a build.Step. It is the only concrete Provider this repo ships;
// a real system would replace it with a learned or curated draft policy
// without the worker loop noticing (spec.md §9: "the core treats it as a
// factory").
type RandomProvider struct {
	TeamSize     int
	MovesPerUnit int
}

// NewRandomProvider builds a RandomProvider for the reference engine's
// maximum team size and move-slot count.
func NewRandomProvider() *RandomProvider {
	return &RandomProvider{TeamSize: reference.MaxTeamSize, MovesPerUnit: encoding.MaxMoveSlots}
}

// Build implements Provider[reference.Team].
func (p *RandomProvider) Build(rng *rand.Rand) (reference.Team, Trajectory, error) {
	var traj Trajectory
	units := make([]reference.Pokemon, 0, p.TeamSize)

	speciesPool := indexRange(len(reference.Roster))
	for i := 0; i < p.TeamSize; i++ {
		idx, step := drawWithoutReplacement(rng, speciesPool)
		speciesPool = removeAt(speciesPool, idx)
		traj.Steps = append(traj.Steps, step)

		movePool := indexRange(len(reference.MoveTable))
		moveIDs := make([]int, 0, p.MovesPerUnit)
		for j := 0; j < p.MovesPerUnit && len(movePool) > 0; j++ {
			mIdx, mStep := drawWithoutReplacement(rng, movePool)
			movePool = removeAt(movePool, mIdx)
			traj.Steps = append(traj.Steps, mStep)
			moveIDs = append(moveIDs, mStep.Candidates[mStep.ChosenIndex])
		}
		units = append(units, reference.NewPokemon(step.Candidates[step.ChosenIndex], moveIDs...))
	}

	return reference.NewTeam(units...), traj, nil
}

func indexRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// drawWithoutReplacement picks a uniformly random element of pool, returning
// its position within pool (so the caller can remove it) and the Step
// recording the draw.
func drawWithoutReplacement(rng *rand.Rand, pool []int) (int, Step) {
	idx := rng.Intn(len(pool))
	candidates := append([]int(nil), pool...)
	return idx, Step{
		Candidates:  candidates,
		ChosenIndex: idx,
		Probability: 1 / float32(len(pool)),
	}
}

func removeAt(pool []int, idx int) []int {
	out := make([]int, 0, len(pool)-1)
	out = append(out, pool[:idx]...)
	out = append(out, pool[idx+1:]...)
	return out
}
