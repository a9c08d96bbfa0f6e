// Package heuristic implements a pure-Go linear evaluator: one weight per
// extracted feature plus a bias, dot-producted against the flattened
// per-unit features of internal/encoding.
//
// Grounded on the teacher's internal/ai/linear.Scorer: same weights+bias
// shape and the same "sum starts with the bias, then one weight per
// feature" dot product, generalized from Hive's whole-board feature vector
// to the per-unit (active + bench) feature layout of spec.md §4.8.
package heuristic

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/janpfeifer/pkmn-mcts/internal/encoding"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

// Evaluator is a linear model over the concatenation of both players'
// active and bench unit features. It implements evaluator.Evaluator but not
// evaluator.PolicyEvaluator (it has no notion of per-action scores without
// re-running feature extraction on a hypothetical successor state, which
// would require undoing the joint-action coupling this engine embeds in
// Advance) -- it is meant to be paired with a prior-free bandit.
type Evaluator struct {
	weights      []float32 // len = 2*(encoding.ActiveDim + maxBenchSize*encoding.NonActiveDim) + 1 (bias).
	maxBenchSize int
}

// NewWithWeights builds an Evaluator for teams with at most maxBenchSize
// benched units per side, taking ownership of weights. len(weights) must be
// FeatureDim(maxBenchSize)+1 (the +1 is the bias term, stored last).
func NewWithWeights(maxBenchSize int, weights []float32) (*Evaluator, error) {
	want := FeatureDim(maxBenchSize) + 1
	if len(weights) != want {
		return nil, errors.Errorf("heuristic: expected %d weights (including bias) for maxBenchSize=%d, got %d", want, maxBenchSize, len(weights))
	}
	return &Evaluator{weights: weights, maxBenchSize: maxBenchSize}, nil
}

// FeatureDim returns the flattened feature width for a team with at most
// maxBenchSize benched units, before the bias term.
func FeatureDim(maxBenchSize int) int {
	return 2 * (encoding.ActiveDim + maxBenchSize*encoding.NonActiveDim)
}

func (e *Evaluator) String() string {
	return "heuristic-linear"
}

// Evaluate implements evaluator.Evaluator.
func (e *Evaluator) Evaluate(s engine.State) (float32, error) {
	fz, ok := s.(encoding.Featurizer)
	if !ok {
		return 0, errors.Errorf("heuristic: state type %T does not implement encoding.Featurizer", s)
	}

	feats := make([]float32, 0, FeatureDim(e.maxBenchSize))
	feats = e.appendSide(feats, fz, engine.Player1)
	feats = e.appendSide(feats, fz, engine.Player2)

	if len(feats) != FeatureDim(e.maxBenchSize) {
		return 0, errors.Errorf("heuristic: state produced %d features, expected %d (check maxBenchSize)", len(feats), FeatureDim(e.maxBenchSize))
	}

	sum := e.weights[len(e.weights)-1] // bias
	for i, f := range feats {
		sum += f * e.weights[i]
	}
	return math32.Tanh(sum), nil
}

func (e *Evaluator) appendSide(dst []float32, fz encoding.Featurizer, player engine.Player) []float32 {
	active := make([]float32, encoding.ActiveDim)
	encoding.EncodeActive(fz.Active(player), active)
	dst = append(dst, active...)

	bench := fz.Bench(player)
	for i := 0; i < e.maxBenchSize; i++ {
		slot := make([]float32, encoding.NonActiveDim)
		if i < len(bench) {
			encoding.EncodeNonActive(bench[i], slot)
		}
		dst = append(dst, slot...)
	}
	return dst
}
