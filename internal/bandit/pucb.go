package bandit

import (
	"math"
	"math/rand"

	"github.com/chewxy/math32"
)

// PUCB implements spec.md §4.1's policy-UCB: after AbsorbLogits, priors
// π_i = softmax(logits); exploration c·π_i·√ΣV/(V_i+1). Before
// AbsorbLogits is called, priors default to uniform (1/k), matching the
// teacher's PUCB-shaped formula in internal/searchers/mcts/mcts.go, which
// always has priors available because its scorer is called eagerly on
// node creation.
type PUCB struct {
	c float32

	k         int
	scores    [9]float32
	visits    [9]int
	priors    [9]float32
	sumVisits int
}

// NewPUCB creates a PUCB bandit with exploration constant c.
func NewPUCB(c float32) *PUCB {
	return &PUCB{c: c}
}

func (p *PUCB) Init(k int) {
	p.k = k
	p.scores = [9]float32{}
	p.visits = [9]int{}
	p.sumVisits = 0
	uniform := float32(1) / float32(k)
	for i := 0; i < k; i++ {
		p.priors[i] = uniform
	}
}

func (p *PUCB) IsInit() bool    { return p.k > 0 }
func (p *PUCB) NumActions() int { return p.k }

func (p *PUCB) AbsorbLogits(logits []float32) {
	softmax32(p.priors[:p.k], logits)
}

func (p *PUCB) Select(rng *rand.Rand) Selection {
	for i := 0; i < p.k; i++ {
		if p.visits[i] == 0 {
			return Selection{Index: i, Prob: 1}
		}
	}
	sqrtN := float32(math.Sqrt(float64(p.sumVisits)))
	best := 0
	bestScore := float32(math.Inf(-1))
	for i := 0; i < p.k; i++ {
		q := p.scores[i] / float32(p.visits[i])
		exploration := p.c * p.priors[i] * sqrtN / float32(p.visits[i]+1)
		score := q + exploration
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return Selection{Index: best, Prob: 1}
}

func (p *PUCB) Update(sel Selection, v float32) {
	p.scores[sel.Index] += v
	p.visits[sel.Index]++
	p.sumVisits++
}

// mixPriors implements bandit.priorMixer for root Dirichlet exploration
// noise (SPEC_FULL.md domain-stack addition).
func (p *PUCB) mixPriors(noise []float32, eps float32) {
	for i := 0; i < p.k; i++ {
		p.priors[i] = (1-eps)*p.priors[i] + eps*noise[i]
	}
}

func (p *PUCB) VisitCounts() []int {
	out := make([]int, p.k)
	copy(out, p.visits[:p.k])
	return out
}

func (p *PUCB) ValueSums() []float32 {
	out := make([]float32, p.k)
	copy(out, p.scores[:p.k])
	return out
}

// softmax32 writes softmax(logits) into dst, which must have the same
// length as logits. Numerically stabilized by subtracting the max logit.
func softmax32(dst, logits []float32) {
	if len(logits) == 0 {
		return
	}
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}
	var sum float32
	for i, l := range logits {
		e := math32.Exp(l - maxLogit)
		dst[i] = e
		sum += e
	}
	for i := range dst {
		dst[i] /= sum
	}
}

var _ Bandit = &PUCB{}
