package rollout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

// coinFlipState is a minimal engine.State fixture: each Advance call
// terminates immediately, with the winner determined by the RNG seed's
// parity. It exists only to drive rollout.Evaluator without depending on
// the reference engine.
type coinFlipState struct {
	seed     uint64
	terminal bool
	result   engine.Result
	turn     int
}

func (s *coinFlipState) Clone() engine.State {
	c := *s
	return &c
}

func (s *coinFlipState) IsTerminal() (bool, engine.Result) {
	if s.terminal {
		return true, s.result
	}
	return false, engine.Ongoing
}

func (s *coinFlipState) Legal(engine.Player) []engine.ActionToken {
	return []engine.ActionToken{0}
}

func (s *coinFlipState) Advance(a1, a2 engine.ActionToken, override engine.CalcOverride) (engine.ChanceOutcome, error) {
	s.terminal = true
	if s.seed%2 == 0 {
		s.result = engine.Win
	} else {
		s.result = engine.Loss
	}
	s.turn++
	return engine.ChanceOutcome{}, nil
}

func (s *coinFlipState) SetRNGSeed(seed uint64) { s.seed = seed }
func (s *coinFlipState) Hash() uint64           { return s.seed }
func (s *coinFlipState) TurnCount() int         { return s.turn }

func TestEvaluateAveragesOverPlayouts(t *testing.T) {
	e := New(64, 1)
	v, err := e.Evaluate(&coinFlipState{})
	require.NoError(t, err)
	assert.True(t, v >= -1 && v <= 1)
}

func TestEvaluateRequiresPositivePlayouts(t *testing.T) {
	e := New(0, 1)
	_, err := e.Evaluate(&coinFlipState{})
	assert.Error(t, err)
}

func TestPlyCapReturnsTieNotError(t *testing.T) {
	e := New(1, 2)
	e.MaxPlies = 0 // never advances, so IsTerminal never fires.
	v, err := e.Evaluate(&coinFlipState{})
	require.NoError(t, err)
	assert.Equal(t, float32(0), v)
}
