// Package bandit implements the joint-action bandit algorithms of spec.md
// §4.1 (C1): one per-player bandit selects an index in [0, m) (resp. n) at
// every visited joint information set; a JointBandit composes two
// independent per-player instances.
//
// Grounded on internal/searchers/mcts/mcts.go's PUCB-shaped selection
// formula (Q + c*prior*sqrt(ΣV)/(1+V)) from the teacher, generalized to the
// five named variants spec.md requires and to the per-player split a
// simultaneous-move game needs.
package bandit

import "math/rand"

// Selection is what Select returns for one player: the chosen index, plus
// whatever auxiliary bookkeeping Update needs (only EXP3/PEXP3 use it, for
// importance-weighted gain updates).
type Selection struct {
	Index int
	Prob  float32 // probability the selected index had under the bandit's sampling distribution.
}

// Bandit is the per-player contract shared by all five variants. A
// JointBandit (joint.go) wraps two of these, one per player.
type Bandit interface {
	// Init sets the legal-action count k and zeroes all statistics. Per
	// spec.md §3's invariant, arrays beyond index k are never read once
	// Init(k) has run.
	Init(k int)

	// IsInit reports whether Init has been called.
	IsInit() bool

	// NumActions returns the k passed to Init, or 0 if not yet initialized.
	NumActions() int

	// Select picks an index in [0, k) along with the selection
	// probability/aux Update will need.
	Select(rng *rand.Rand) Selection

	// Update incorporates a leaf value v for the arm chosen in sel.
	Update(sel Selection, v float32)

	// AbsorbLogits loads policy-prior logits (aligned to legal-action
	// order) for bandits that use them (PUCB, PEXP3). A no-op for bandits
	// that don't (UCB, UCB1, EXP3).
	AbsorbLogits(logits []float32)
}

// Visits returns, for any Bandit, the per-arm visit counts -- used by the
// search driver to populate the root's empirical policy and the matrix-game
// solver's visit matrix. Every concrete bandit below exposes this via a
// type assertion to visitReporter, since EXP3-family bandits track gains
// rather than counts directly but still record visits for reporting.
type visitReporter interface {
	VisitCounts() []int
}

// Visits extracts per-arm visit counts from any Bandit implementation.
func Visits(b Bandit) []int {
	vr, ok := b.(visitReporter)
	if !ok {
		return nil
	}
	return vr.VisitCounts()
}

// valueReporter exposes the cumulative score sum per arm, used to build the
// root value matrix for Matrix-UCB (spec.md §4.5 "Root matrix solve").
type valueReporter interface {
	ValueSums() []float32
}

// Values extracts per-arm cumulative score sums from any Bandit
// implementation.
func Values(b Bandit) []float32 {
	vr, ok := b.(valueReporter)
	if !ok {
		return nil
	}
	return vr.ValueSums()
}
