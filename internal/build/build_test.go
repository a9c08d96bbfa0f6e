package build

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/pkmn-mcts/internal/encoding"
	"github.com/janpfeifer/pkmn-mcts/internal/engine/reference"
)

func TestRandomProviderBuildsAFullTeam(t *testing.T) {
	p := NewRandomProvider()
	rng := rand.New(rand.NewSource(1))

	team, traj, err := p.Build(rng)
	require.NoError(t, err)
	assert.Equal(t, reference.MaxTeamSize, team.Size)

	for i := 0; i < team.Size; i++ {
		unit := team.Units[i]
		assert.GreaterOrEqual(t, unit.SpeciesIdx, 0)
		assert.Less(t, unit.SpeciesIdx, len(reference.Roster))
		assert.Equal(t, unit.MaxHP, unit.HP)
	}

	assert.Equal(t, reference.MaxTeamSize*(1+encoding.MaxMoveSlots), len(traj.Steps))
	assert.Nil(t, traj.Value)
}

func TestRandomProviderStepsRecordDistinctCandidates(t *testing.T) {
	p := NewRandomProvider()
	rng := rand.New(rand.NewSource(2))

	_, traj, err := p.Build(rng)
	require.NoError(t, err)
	for _, step := range traj.Steps {
		assert.GreaterOrEqual(t, step.ChosenIndex, 0)
		assert.Less(t, step.ChosenIndex, len(step.Candidates))
		assert.InDelta(t, 1/float32(len(step.Candidates)), step.Probability, 1e-6)
	}
}

func TestTrajectorySetValueAssignsPostHocLabel(t *testing.T) {
	var traj Trajectory
	assert.Nil(t, traj.Value)
	traj.SetValue(0.75)
	require.NotNil(t, traj.Value)
	assert.Equal(t, float32(0.75), *traj.Value)
}

func TestRandomProviderNeverPicksTheSameMoveTwiceForOneUnit(t *testing.T) {
	p := NewRandomProvider()
	rng := rand.New(rand.NewSource(3))
	team, _, err := p.Build(rng)
	require.NoError(t, err)
	for i := 0; i < team.Size; i++ {
		seen := map[int]bool{}
		for _, m := range team.Units[i].Moves {
			if m.MoveID < 0 {
				continue
			}
			assert.False(t, seen[m.MoveID], "duplicate move on unit %d", i)
			seen[m.MoveID] = true
		}
	}
}
