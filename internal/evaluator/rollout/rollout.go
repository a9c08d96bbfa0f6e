// Package rollout implements a dependency-free evaluator that estimates a
// leaf's value by playing it out to termination with uniformly random joint
// actions, averaging over a configurable number of playouts.
//
// Grounded on the teacher's internal/searchers/randomized.go: where that
// searcher perturbs a base scorer's action choice with a softmax over
// scores, this evaluator has no base scorer at all, so it specializes that
// pattern to the degenerate case of a uniform draw among legal actions
// (randomness -> infinity in randomizedSearcher's terms), repeated to a
// terminal state rather than one ply deep.
package rollout

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

// Evaluator plays NumPlayouts independent random games to termination from
// the given state and averages the outcome. It implements evaluator.Evaluator
// but not evaluator.PolicyEvaluator: random rollouts carry no useful prior,
// so it is meant to be paired with a prior-free bandit (UCB/UCB1/EXP3).
type Evaluator struct {
	// NumPlayouts is how many independent random games to average.
	NumPlayouts int

	// MaxPlies caps each playout's length, to guard against the engine
	// never reaching a terminal state (e.g. a perpetual-stall bug).
	MaxPlies int

	// Rand supplies both action-index draws and the per-playout RNG seed
	// handed to the engine (State.SetRNGSeed).
	Rand *rand.Rand
}

// New creates a rollout Evaluator with the given playout count, a generous
// default ply cap, and its own *rand.Rand seeded from seed.
func New(numPlayouts int, seed uint64) *Evaluator {
	return &Evaluator{
		NumPlayouts: numPlayouts,
		MaxPlies:    500,
		Rand:        rand.New(rand.NewSource(int64(seed))),
	}
}

func (e *Evaluator) String() string {
	return "rollout"
}

// Evaluate implements evaluator.Evaluator.
func (e *Evaluator) Evaluate(s engine.State) (float32, error) {
	if e.NumPlayouts <= 0 {
		return 0, errors.New("rollout: NumPlayouts must be positive")
	}
	var sum float32
	for i := 0; i < e.NumPlayouts; i++ {
		v, err := e.playout(s)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum / float32(e.NumPlayouts), nil
}

func (e *Evaluator) playout(s engine.State) (float32, error) {
	state := s.Clone()
	state.SetRNGSeed(e.Rand.Uint64())
	for ply := 0; ply < e.MaxPlies; ply++ {
		if done, result := state.IsTerminal(); done {
			return resultValue(result), nil
		}
		a1 := e.pickRandom(state.Legal(engine.Player1))
		a2 := e.pickRandom(state.Legal(engine.Player2))
		override := engine.CalcOverride{
			P1Roll: uint8(e.Rand.Intn(int(engine.RollThree))),
			P2Roll: uint8(e.Rand.Intn(int(engine.RollThree))),
		}
		if _, err := state.Advance(a1, a2, override); err != nil {
			return 0, errors.Wrap(err, "rollout: playout advance failed")
		}
	}
	// Ply cap reached without termination: treat as a tie, rather than
	// biasing the estimate toward either side.
	return 0, nil
}

func (e *Evaluator) pickRandom(tokens []engine.ActionToken) engine.ActionToken {
	return tokens[e.Rand.Intn(len(tokens))]
}

func resultValue(r engine.Result) float32 {
	switch r {
	case engine.Win:
		return 1
	case engine.Loss:
		return -1
	default:
		return 0
	}
}
