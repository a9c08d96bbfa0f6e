package matrixgame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumTo1(t *testing.T, p []float32) {
	t.Helper()
	var sum float32
	for _, v := range p {
		assert.GreaterOrEqual(t, v, float32(0))
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
}

func TestSolveMatchingPennies(t *testing.T) {
	// Matching pennies: P1 wants to match, P2 wants to mismatch.
	// Payoff to P1: +1 if same, -1 if different.
	m := [][]float32{
		{1, -1},
		{-1, 1},
	}
	result, err := Solve(m)
	require.NoError(t, err)
	sumTo1(t, result.X)
	sumTo1(t, result.Y)
	assert.InDelta(t, 0.5, result.X[0], 0.05)
	assert.InDelta(t, 0.5, result.Y[0], 0.05)
	assert.InDelta(t, 0.0, result.Value, 0.1)
}

func TestSolveDominantStrategy(t *testing.T) {
	// P1 always prefers row 0.
	m := [][]float32{
		{1, 1},
		{-1, -1},
	}
	result, err := Solve(m)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.X[0], 0.05)
	assert.InDelta(t, 1.0, result.Value, 0.05)
}

func TestSolveDegenerate(t *testing.T) {
	_, err := Solve(nil)
	assert.ErrorIs(t, err, ErrDegenerate)

	_, err = Solve([][]float32{{}})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestSolveOneByOne(t *testing.T) {
	result, err := Solve([][]float32{{0.5}})
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, result.X)
	assert.Equal(t, []float32{1}, result.Y)
}
