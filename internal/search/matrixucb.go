package search

import (
	"github.com/chewxy/math32"

	"github.com/janpfeifer/pkmn-mcts/internal/matrixgame"
)

// ucbMatrix builds an optimistic (sign=+1, for P1) or pessimistic (sign=-1,
// for P2) variant of the root average-value matrix, per spec.md §4.5's
// Matrix-UCB parameter "c (exploration constant for the two UCB matrices,
// one per player, that get solved)": each cell's raw average is adjusted by
// a UCB-style bonus/penalty scaled by how rarely that cell has been
// visited relative to the total, the same shape as the per-arm UCB formula
// in internal/bandit/ucb.go generalized to the joint (i,j) cell.
func ucbMatrix(values [][]float32, visits [][]int, c float32, sign float32) [][]float32 {
	m := len(values)
	if m == 0 {
		return nil
	}
	n := len(values[0])

	var total float32
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			total += float32(visits[i][j])
		}
	}
	logTotal := math32.Log(total + 1)

	out := newFloatMatrix(m, n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v := visits[i][j]
			mean := values[i][j] / float32(max(1, v))
			bonus := c * math32.Sqrt(logTotal/float32(v+1))
			out[i][j] = mean + sign*bonus
		}
	}
	return out
}

// solveMatrixUCB solves the two UCB-augmented matrices and returns the
// resulting per-player strategies to sample the root's joint action from.
// Any solver failure is reported via ok=false; the caller keeps whatever
// strategies (if any) it already had.
func solveMatrixUCB(values [][]float32, visits [][]int, c float32) (x, y []float32, ok bool) {
	p1Matrix := ucbMatrix(values, visits, c, +1)
	p2Matrix := ucbMatrix(values, visits, c, -1)

	p1Result, err := matrixgame.Solve(p1Matrix)
	if err != nil {
		return nil, nil, false
	}
	p2Result, err := matrixgame.Solve(p2Matrix)
	if err != nil {
		return nil, nil, false
	}
	return p1Result.X, p2Result.Y, true
}
