package bandit

import (
	"math"
	"math/rand"
)

// UCB implements spec.md §4.1's UCB and UCB1 variants: independent
// per-player arms, score q_i = S_i/V_i, exploration c·f(ΣV)/(V_i+1) where f
// is √x for UCB and ln(x) for UCB1. Unvisited arms are selected first, in
// index order.
type UCB struct {
	c      float32
	isUCB1 bool

	k         int
	scores    [9]float32
	visits    [9]int
	sumVisits int
}

// NewUCB creates a UCB bandit with exploration constant c.
func NewUCB(c float32) *UCB {
	return &UCB{c: c}
}

// NewUCB1 creates a UCB1 bandit (ln ΣV exploration term) with exploration
// constant c.
func NewUCB1(c float32) *UCB {
	return &UCB{c: c, isUCB1: true}
}

func (u *UCB) Init(k int) {
	u.k = k
	u.scores = [9]float32{}
	u.visits = [9]int{}
	u.sumVisits = 0
}

func (u *UCB) IsInit() bool     { return u.k > 0 }
func (u *UCB) NumActions() int  { return u.k }

func (u *UCB) AbsorbLogits(logits []float32) {
	// UCB and UCB1 ignore policy priors.
}

func (u *UCB) Select(rng *rand.Rand) Selection {
	// Unvisited arms are picked first, in index order.
	for i := 0; i < u.k; i++ {
		if u.visits[i] == 0 {
			return Selection{Index: i, Prob: 1}
		}
	}

	var explorationBase float32
	if u.isUCB1 {
		explorationBase = float32(math.Log(float64(u.sumVisits)))
	} else {
		explorationBase = float32(math.Sqrt(float64(u.sumVisits)))
	}

	best := 0
	bestScore := float32(math.Inf(-1))
	for i := 0; i < u.k; i++ {
		q := u.scores[i] / float32(u.visits[i])
		exploration := u.c * explorationBase / float32(u.visits[i]+1)
		score := q + exploration
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return Selection{Index: best, Prob: 1}
}

func (u *UCB) Update(sel Selection, v float32) {
	u.scores[sel.Index] += v
	u.visits[sel.Index]++
	u.sumVisits++
}

func (u *UCB) VisitCounts() []int {
	out := make([]int, u.k)
	copy(out, u.visits[:u.k])
	return out
}

func (u *UCB) ValueSums() []float32 {
	out := make([]float32, u.k)
	copy(out, u.scores[:u.k])
	return out
}

var (
	_ Bandit = &UCB{}
)
