// Package matrixgame implements C2: extracting a mixed-strategy Nash
// equilibrium (x, y, v) from an m×n zero-sum value matrix, per spec.md
// §4.2.
//
// spec.md calls for "an external LP routine"; no LP/simplex library is
// present anywhere in the example pack (only gonum.org/v1/gonum, which
// provides dense linear algebra but no simplex solver). Per SPEC_FULL.md
// §4/C2, Solve is implemented as iterated fictitious play (Brown 1951): a
// classic, simple, and provably convergent algorithm for 2-player zero-sum
// matrix games, built on gonum.org/v1/gonum/mat for the matrix
// representation instead of a hand-rolled slice-of-slices.
package matrixgame

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// MaxDim is the largest matrix dimension supported (K=9 from spec.md §3).
const MaxDim = 9

// Scale is the fixed integer discretization scale spec.md §4.2 requires
// inputs to be quantized to before solving.
const Scale = 256

// ErrDegenerate is returned when the matrix has a zero dimension (no rows,
// or a row with no columns) -- a solver-failure event per
// spec.md §7, never fatal; callers fall back to the empirical distribution.
var ErrDegenerate = errors.New("matrixgame: degenerate (zero-dimension) matrix")

// Result holds the solved mixed strategies and game value, all from
// Player 1's perspective (x is P1's strategy maximizing the worst case, y
// is P2's strategy minimizing it).
type Result struct {
	X     []float32 // length m, Σx = 1, x >= 0.
	Y     []float32 // length n, Σy = 1, y >= 0.
	Value float32   // game value under (x, y).
}

// Iterations is the number of fictitious-play rounds Solve runs. Chosen
// large enough that the time-averaged strategies converge to within
// quantization noise for the matrix sizes this package handles (m, n <= 9).
const Iterations = 2000

// Solve computes the mixed-strategy equilibrium of the m×n zero-sum payoff
// matrix m (payoffs to Player 1), discretizing to the fixed Scale before
// running fictitious play, then returning strategies in float32 + the
// average realized value.
func Solve(matrix [][]float32) (Result, error) {
	rows := len(matrix)
	if rows == 0 {
		return Result{}, ErrDegenerate
	}
	cols := len(matrix[0])
	if cols == 0 {
		return Result{}, ErrDegenerate
	}
	if rows > MaxDim || cols > MaxDim {
		return Result{}, errors.Errorf("matrixgame: matrix dimensions (%d, %d) exceed MaxDim=%d", rows, cols, MaxDim)
	}

	// Discretize to the fixed integer scale.
	payoff := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		if len(matrix[i]) != cols {
			return Result{}, errors.Errorf("matrixgame: ragged matrix row %d has %d columns, want %d", i, len(matrix[i]), cols)
		}
		for j := 0; j < cols; j++ {
			quantized := float64(int(matrix[i][j]*Scale+0.5)) / Scale
			payoff.Set(i, j, quantized)
		}
	}

	// Seed with one fictitious play of arm 0 on each side, so the first
	// real round has a non-degenerate opponent average to best-respond to.
	rowCounts := make([]float64, rows) // how many times P1 best-responded with row i.
	colCounts := make([]float64, cols)
	rowCounts[0] = 1
	colCounts[0] = 1
	var sumValue float64
	totalRounds := 1.0

	for t := 0; t < Iterations; t++ {
		// P1 best-responds to the running average of P2's play: pick the row
		// maximizing the expected payoff against colCounts/totalRounds.
		bestRow, bestRowVal := 0, negInf
		for i := 0; i < rows; i++ {
			var val float64
			for j := 0; j < cols; j++ {
				val += payoff.At(i, j) * colCounts[j]
			}
			val /= totalRounds
			if val > bestRowVal {
				bestRowVal = val
				bestRow = i
			}
		}

		// P2 best-responds to the running average of P1's play: pick the
		// column minimizing the expected payoff against rowCounts/totalRounds.
		bestCol, bestColVal := 0, posInf
		for j := 0; j < cols; j++ {
			var val float64
			for i := 0; i < rows; i++ {
				val += payoff.At(i, j) * rowCounts[i]
			}
			val /= totalRounds
			if val < bestColVal {
				bestColVal = val
				bestCol = j
			}
		}

		rowCounts[bestRow]++
		colCounts[bestCol]++
		totalRounds++
		sumValue += payoff.At(bestRow, bestCol)
	}

	x := make([]float32, rows)
	for i := range x {
		x[i] = float32(rowCounts[i] / totalRounds)
	}
	y := make([]float32, cols)
	for j := range y {
		y[j] = float32(colCounts[j] / totalRounds)
	}
	normalize(x)
	normalize(y)

	return Result{X: x, Y: y, Value: float32(sumValue / float64(Iterations))}, nil
}

const (
	negInf = -1e18
	posInf = 1e18
)

// normalize rescales p in place so it sums to exactly 1, correcting for
// float rounding; if p sums to zero (shouldn't happen for rows/cols >= 1
// after at least one iteration) it falls back to uniform.
func normalize(p []float32) {
	var sum float32
	for _, v := range p {
		sum += v
	}
	if sum <= 0 {
		uniform := float32(1) / float32(len(p))
		for i := range p {
			p[i] = uniform
		}
		return
	}
	for i := range p {
		p[i] /= sum
	}
}
