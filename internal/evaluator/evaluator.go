// Package evaluator implements C3: turning a game state (from the current
// player's perspective) into a leaf value estimate, and optionally a prior
// policy over each side's legal actions for the bandits of internal/bandit.
//
// Grounded on the teacher's internal/ai package: the BoardScorer/PolicyScorer
// split there is generalized here to the simultaneous-move, two-sided case --
// a leaf has one value (from the side-to-move's perspective is meaningless
// here since both sides move at once, so Evaluate returns player 1's
// perspective value and player 2's is its negation) and up to two separate
// policy vectors, one per player's legal-action list.
package evaluator

import "github.com/janpfeifer/pkmn-mcts/internal/engine"

// Evaluator produces a scalar value estimate for a state, from player 1's
// perspective (player 2's value is always its negation, since the game is
// zero-sum).
type Evaluator interface {
	// Evaluate returns a value in [-1, +1]: +1 means player 1 is certain to
	// win, -1 means player 1 is certain to lose.
	Evaluate(s engine.State) (float32, error)

	String() string
}

// PolicyEvaluator additionally produces a prior distribution over each
// player's legal actions, for bandits that use priors (e.g. PUCB, PEXP3).
type PolicyEvaluator interface {
	Evaluator

	// Policy returns, for the given player, one logit (unnormalized score,
	// higher is more preferred) per entry of legal. The bandit layer is
	// responsible for turning these into a probability distribution
	// (internal/bandit.AbsorbLogits).
	Policy(s engine.State, player engine.Player, legal []engine.ActionToken) ([]float32, error)
}

// BatchEvaluator is an optional capability: evaluators that can amortize
// work across many states at once (e.g. a single GoMLX graph call) should
// implement it. internal/search does not use it: the search driver calls
// Evaluate/Policy on one leaf state at a time.
type BatchEvaluator interface {
	EvaluateBatch(states []engine.State) ([]float32, error)
}
