package search

import (
	"math/rand"

	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

// Output is the result of one Search call, per spec.md §4.5's "Final
// output assembly". If the root state handed to Search was already
// terminal, Result is the terminal result and every other field is zero.
type Output struct {
	Result engine.Result

	M, N       int
	Iterations int
	Errors     int // leaf evaluator/solver failures collapsed to a tie, per spec.md §7.

	Visits [][]int

	P1Empirical, P2Empirical []float32
	P1Nash, P2Nash           []float32

	ValueEmpirical float32 // overall average backed-up value, in [0,1], P1's perspective.
	ValueNash      float32
}

func newIntMatrix(m, n int) [][]int {
	rows := make([][]int, m)
	for i := range rows {
		rows[i] = make([]int, n)
	}
	return rows
}

func newFloatMatrix(m, n int) [][]float32 {
	rows := make([][]float32, m)
	for i := range rows {
		rows[i] = make([]float32, n)
	}
	return rows
}

// averageMatrix builds M[i][j] = values[i][j] / max(1, visits[i][j]), the
// root matrix spec.md §4.5 feeds to the matrix-game solver.
func averageMatrix(values [][]float32, visits [][]int) [][]float32 {
	m := len(values)
	if m == 0 {
		return nil
	}
	n := len(values[0])
	out := newFloatMatrix(m, n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v := visits[i][j]
			if v < 1 {
				v = 1
			}
			out[i][j] = values[i][j] / float32(v)
		}
	}
	return out
}

// marginal sums a visits matrix along one axis into an empirical policy.
func marginalP1(visits [][]int) []float32 {
	m := len(visits)
	if m == 0 {
		return nil
	}
	n := len(visits[0])
	sums := make([]float32, m)
	var total float32
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			sums[i] += float32(visits[i][j])
		}
		total += sums[i]
	}
	return normalizeOrUniform(sums, total)
}

func marginalP2(visits [][]int) []float32 {
	m := len(visits)
	if m == 0 {
		return nil
	}
	n := len(visits[0])
	sums := make([]float32, n)
	var total float32
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			sums[j] += float32(visits[i][j])
		}
		total += sums[j]
	}
	return normalizeOrUniform(sums, total)
}

func normalizeOrUniform(sums []float32, total float32) []float32 {
	out := make([]float32, len(sums))
	if total <= 0 {
		uniform := float32(1) / float32(len(sums))
		for i := range out {
			out[i] = uniform
		}
		return out
	}
	for i, v := range sums {
		out[i] = v / total
	}
	return out
}

// sampleFromDist draws an index from probs, a (near-)normalized
// distribution; used to sample the root's joint action from the Matrix-UCB
// Nash policies instead of a per-player bandit's own Select.
func sampleFromDist(rng *rand.Rand, probs []float32) int {
	if len(probs) == 0 {
		return 0
	}
	r := rng.Float32()
	var cum float32
	for i, p := range probs {
		cum += p
		if r <= cum {
			return i
		}
	}
	return len(probs) - 1
}
