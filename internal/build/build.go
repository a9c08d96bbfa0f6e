// Package build implements the team-building Provider collaborator of
// spec.md §9 ("Team building"): the worker obtains its starting state from
// a Provider that produces (initial_team, build_trajectory) rather than
// drafting a team itself, so that build-time decisions can later be
// labeled and trained on the same way in-battle decisions are.
package build

import "math/rand"

// Step is one recorded drafting decision: the set of candidates available,
// which one was chosen, and under what probability it was chosen (spec.md
// §9: "a sequence of (legal_action_set, chosen_index, probability)").
// Candidates is the pool of concrete choices (e.g. roster or move-table
// indices); ChosenIndex indexes into Candidates, not into the underlying
// table directly, mirroring the engine's own legal-list/index convention.
type Step struct {
	Candidates  []int
	ChosenIndex int
	Probability float32
}

// Trajectory is the full record of one team-building episode: every
// drafting Step, plus an optional value label assigned post hoc (spec.md
// §9: "an optional value label assigned post hoc from the first turn's
// search value").
type Trajectory struct {
	Steps []Step
	Value *float32
}

// SetValue assigns the post-hoc value label. Called by the self-play
// worker once the first in-battle search has produced a value estimate.
func (t *Trajectory) SetValue(v float32) {
	t.Value = &v
}

// Provider is an external collaborator the core treats purely as a
// factory: it consumes only the team and (for output) the trajectory
// record, never the provider's internal drafting logic (spec.md §9).
type Provider[Team any] interface {
	Build(rng *rand.Rand) (Team, Trajectory, error)
}
