package heuristic

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/pkmn-mcts/internal/encoding"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

// featurizedState is a minimal engine.State + encoding.Featurizer fixture
// that always reports the same unit views for both players, regardless of
// player -- enough to exercise dimension bookkeeping and the weights dot
// product without a real engine.
type featurizedState struct {
	active encoding.ActiveView
	bench  []encoding.UnitView
}

func (s *featurizedState) Clone() engine.State                  { c := *s; return &c }
func (s *featurizedState) IsTerminal() (bool, engine.Result)     { return false, engine.Ongoing }
func (s *featurizedState) Legal(engine.Player) []engine.ActionToken { return []engine.ActionToken{0} }
func (s *featurizedState) Advance(a1, a2 engine.ActionToken, o engine.CalcOverride) (engine.ChanceOutcome, error) {
	return engine.ChanceOutcome{}, nil
}
func (s *featurizedState) SetRNGSeed(uint64) {}
func (s *featurizedState) Hash() uint64      { return 0 }
func (s *featurizedState) TurnCount() int    { return 0 }

func (s *featurizedState) Active(engine.Player) encoding.ActiveView { return s.active }
func (s *featurizedState) Bench(engine.Player) []encoding.UnitView  { return s.bench }

func newFixture(maxBench int) *featurizedState {
	active := encoding.ActiveView{}
	active.Status = encoding.StatusOK
	active.Types[0], active.Types[1] = -1, -1
	for i := range active.Moves {
		active.Moves[i].MoveID = -1
	}
	bench := make([]encoding.UnitView, maxBench)
	for i := range bench {
		bench[i].Types[0], bench[i].Types[1] = -1, -1
		for j := range bench[i].Moves {
			bench[i].Moves[j].MoveID = -1
		}
	}
	return &featurizedState{active: active, bench: bench}
}

func TestNewWithWeightsValidatesLength(t *testing.T) {
	_, err := NewWithWeights(2, []float32{1, 2, 3})
	assert.Error(t, err)

	weights := make([]float32, FeatureDim(2)+1)
	_, err = NewWithWeights(2, weights)
	require.NoError(t, err)
}

func TestEvaluateZeroWeightsYieldsZero(t *testing.T) {
	maxBench := 2
	weights := make([]float32, FeatureDim(maxBench)+1)
	ev, err := NewWithWeights(maxBench, weights)
	require.NoError(t, err)

	v, err := ev.Evaluate(newFixture(maxBench))
	require.NoError(t, err)
	assert.Equal(t, float32(0), v)
}

func TestEvaluateRejectsNonFeaturizableState(t *testing.T) {
	maxBench := 1
	weights := make([]float32, FeatureDim(maxBench)+1)
	ev, err := NewWithWeights(maxBench, weights)
	require.NoError(t, err)

	_, err = ev.Evaluate(&nonFeaturizableState{})
	assert.Error(t, err)
}

type nonFeaturizableState struct{}

func (s *nonFeaturizableState) Clone() engine.State              { return s }
func (s *nonFeaturizableState) IsTerminal() (bool, engine.Result) { return false, engine.Ongoing }
func (s *nonFeaturizableState) Legal(engine.Player) []engine.ActionToken {
	return []engine.ActionToken{0}
}
func (s *nonFeaturizableState) Advance(a1, a2 engine.ActionToken, o engine.CalcOverride) (engine.ChanceOutcome, error) {
	return engine.ChanceOutcome{}, nil
}
func (s *nonFeaturizableState) SetRNGSeed(uint64) {}
func (s *nonFeaturizableState) Hash() uint64      { return 0 }
func (s *nonFeaturizableState) TurnCount() int     { return 0 }

func TestEvaluateBiasOnly(t *testing.T) {
	maxBench := 0
	weights := make([]float32, FeatureDim(maxBench)+1)
	weights[len(weights)-1] = 0.5
	ev, err := NewWithWeights(maxBench, weights)
	require.NoError(t, err)

	v, err := ev.Evaluate(newFixture(maxBench))
	require.NoError(t, err)
	assert.InDelta(t, float64(math32.Tanh(0.5)), float64(v), 1e-6)
}
