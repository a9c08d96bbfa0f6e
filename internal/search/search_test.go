package search

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/pkmn-mcts/internal/bandit"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

// matchingState is a minimal two-action zero-sum repeated game: P1 scores a
// point whenever both sides play action 0, P2 scores a point whenever they
// don't; after depth steps the accumulated score decides the winner. It
// exists only to exercise the search driver's descent and backup logic
// without depending on the reference engine.
type matchingState struct {
	depth, maxDepth int
	score           int
	seed            uint64
}

func (s *matchingState) Clone() engine.State {
	c := *s
	return &c
}

func (s *matchingState) IsTerminal() (bool, engine.Result) {
	if s.depth < s.maxDepth {
		return false, engine.Ongoing
	}
	switch {
	case s.score > 0:
		return true, engine.Win
	case s.score < 0:
		return true, engine.Loss
	default:
		return true, engine.Tie
	}
}

func (s *matchingState) Legal(engine.Player) []engine.ActionToken {
	return []engine.ActionToken{0, 1}
}

func (s *matchingState) Advance(a1, a2 engine.ActionToken, _ engine.CalcOverride) (engine.ChanceOutcome, error) {
	for _, tok := range []engine.ActionToken{a1, a2} {
		if tok != 0 && tok != 1 {
			return engine.ChanceOutcome{}, errors.Wrap(engine.ErrIllegalAction, "matchingState")
		}
	}
	if a1 == 0 && a2 == 0 {
		s.score++
	} else {
		s.score--
	}
	s.depth++
	return engine.ChanceOutcome{byte(a1), byte(a2)}, nil
}

func (s *matchingState) SetRNGSeed(seed uint64) { s.seed = seed }
func (s *matchingState) Hash() uint64           { return uint64(s.depth)<<32 | uint64(s.score+1000) }
func (s *matchingState) TurnCount() int         { return s.depth }

// illegalState always reports an illegal action, to exercise the hard-abort
// path of spec.md §7's "Engine invariant violation" row.
type illegalState struct{ matchingState }

func (s *illegalState) Clone() engine.State {
	c := *s
	return &c
}

func (s *illegalState) Advance(engine.ActionToken, engine.ActionToken, engine.CalcOverride) (engine.ChanceOutcome, error) {
	return engine.ChanceOutcome{}, errors.Wrap(engine.ErrIllegalAction, "illegalState always rejects")
}

type constEvaluator struct{ v float32 }

func (e constEvaluator) Evaluate(engine.State) (float32, error) { return e.v, nil }
func (e constEvaluator) String() string                         { return "const" }

type constPolicyEvaluator struct{ constEvaluator }

func (e constPolicyEvaluator) Policy(_ engine.State, _ engine.Player, legal []engine.ActionToken) ([]float32, error) {
	return make([]float32, len(legal)), nil
}

func newFactory(t *testing.T, spec string) *bandit.Factory {
	t.Helper()
	f, err := bandit.ParseSpec(spec)
	require.NoError(t, err)
	return f
}

func baseConfig(t *testing.T, useTable bool) Config {
	return Config{
		BanditFactory:  newFactory(t, "ucb-1.4"),
		Evaluator:      constEvaluator{v: 0},
		UseTable:       useTable,
		RootRollCount:  engine.RollMiddle,
		OtherRollCount: engine.RollMiddle,
	}
}

func TestSearchProducesNormalizedPolicies(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := New(baseConfig(t, false), rng)

	out, err := s.Search(context.Background(), &matchingState{maxDepth: 3}, Budget{Iterations: 200})
	require.NoError(t, err)

	assert.Equal(t, 2, out.M)
	assert.Equal(t, 2, out.N)
	assert.Equal(t, 200, out.Iterations)

	var sum1, sum2 float32
	for _, p := range out.P1Empirical {
		sum1 += p
	}
	for _, p := range out.P2Empirical {
		sum2 += p
	}
	assert.InDelta(t, 1, sum1, 1e-4)
	assert.InDelta(t, 1, sum2, 1e-4)
	assert.GreaterOrEqual(t, out.ValueEmpirical, float32(0))
	assert.LessOrEqual(t, out.ValueEmpirical, float32(1))
}

func TestSearchWithTableStoreSharesStatisticsAcrossPaths(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	s := New(baseConfig(t, true), rng)

	out, err := s.Search(context.Background(), &matchingState{maxDepth: 3}, Budget{Iterations: 200})
	require.NoError(t, err)
	assert.Equal(t, 200, out.Iterations)
}

func TestSearchRootAlreadyTerminalShortCircuits(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := New(baseConfig(t, false), rng)

	terminal := &matchingState{maxDepth: 0, score: 1}
	out, err := s.Search(context.Background(), terminal, Budget{Iterations: 100})
	require.NoError(t, err)
	assert.Equal(t, engine.Win, out.Result)
	assert.Equal(t, 0, out.Iterations)
}

func TestSearchAbortsOnIllegalAction(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	s := New(baseConfig(t, false), rng)

	_, err := s.Search(context.Background(), &illegalState{matchingState{maxDepth: 3}}, Budget{Iterations: 10})
	assert.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrIllegalAction)
}

func TestSearchRequiresAStoppingCondition(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	s := New(baseConfig(t, false), rng)

	_, err := s.Search(context.Background(), &matchingState{maxDepth: 3}, Budget{})
	assert.Error(t, err)
}

func TestSearchZeroDurationBudgetRunsZeroIterations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New(baseConfig(t, false), rng)

	out, err := s.Search(context.Background(), &matchingState{maxDepth: 3}, Budget{HasDuration: true, Duration: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Iterations)
}

func TestSearchStopsOnClearedFlag(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	s := New(baseConfig(t, false), rng)

	var flag atomic.Bool
	flag.Store(false)
	out, err := s.Search(context.Background(), &matchingState{maxDepth: 3}, Budget{Flag: &flag})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Iterations)
}

func TestSearchStopsOnContextCancellation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New(baseConfig(t, false), rng)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := s.Search(ctx, &matchingState{maxDepth: 3}, Budget{Iterations: 1_000_000})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Iterations)
}

func TestSearchWithDurationBudgetTerminates(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	s := New(baseConfig(t, false), rng)

	out, err := s.Search(context.Background(), &matchingState{maxDepth: 3}, Budget{HasDuration: true, Duration: 20 * time.Millisecond})
	require.NoError(t, err)
	assert.Greater(t, out.Iterations, 0)
}

func TestSearchWithMatrixUCBEnabledSolvesRootAfterDelay(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	cfg := baseConfig(t, false)
	cfg.MatrixUCB = MatrixUCBParams{Enabled: true, Delay: 5, Interval: 5, Minimum: 5, C: 0.5}
	s := New(cfg, rng)

	out, err := s.Search(context.Background(), &matchingState{maxDepth: 3}, Budget{Iterations: 50})
	require.NoError(t, err)
	assert.True(t, s.matrixUCBActive)
	assert.Equal(t, 50, out.Iterations)
	assert.Len(t, out.P1Nash, 2)
	assert.Len(t, out.P2Nash, 2)
}

func TestSearchWithPolicyBanditAbsorbsLogits(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	cfg := baseConfig(t, false)
	cfg.BanditFactory = newFactory(t, "pucb-1.5")
	cfg.Evaluator = constPolicyEvaluator{constEvaluator{v: 0}}
	s := New(cfg, rng)

	out, err := s.Search(context.Background(), &matchingState{maxDepth: 3}, Budget{Iterations: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, out.Iterations)
}

func TestRebaseIsNoOpInTableMode(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	s := New(baseConfig(t, true), rng)
	assert.False(t, s.Rebase(0, 0, engine.ChanceOutcome{}))
}

func TestResetClearsMatrixUCBState(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	s := New(baseConfig(t, false), rng)
	_, err := s.Search(context.Background(), &matchingState{maxDepth: 3}, Budget{Iterations: 10})
	require.NoError(t, err)
	s.Reset()
	assert.False(t, s.matrixUCBActive)
}
