package bandit

import (
	"math/rand"
)

// EXP3 implements spec.md §4.1's EXP3 (and, with usePolicyInit, PEXP3):
// real-valued gains g_i; policy p_i = (1-γ)·softmax(γ/m·g)_i + γ/m; sample
// i~p; on update add v/p_i to g_i; periodic rescale for numerical
// stability when any gain becomes non-negative.
//
// PEXP3 differs only in how gains are seeded: EXP3 starts at zero, PEXP3
// seeds gains from the absorbed policy logits (gains ← logits/(γ/m)) so its
// first-iteration policy matches the prior instead of being uniform.
type EXP3 struct {
	gamma         float32
	usePolicyInit bool // true for PEXP3.

	k      int
	gains  [9]float32
	visits [9]int
}

// NewEXP3 creates an EXP3 bandit with mixing parameter gamma in (0, 1].
func NewEXP3(gamma float32) *EXP3 {
	return &EXP3{gamma: gamma}
}

// NewPEXP3 creates a PEXP3 bandit with mixing parameter gamma in (0, 1].
func NewPEXP3(gamma float32) *EXP3 {
	return &EXP3{gamma: gamma, usePolicyInit: true}
}

func (e *EXP3) Init(k int) {
	e.k = k
	e.visits = [9]int{}
	for i := 0; i < k; i++ {
		e.gains[i] = 0
	}
}

func (e *EXP3) IsInit() bool    { return e.k > 0 }
func (e *EXP3) NumActions() int { return e.k }

func (e *EXP3) AbsorbLogits(logits []float32) {
	if !e.usePolicyInit {
		return
	}
	step := e.gamma / float32(e.k)
	for i := 0; i < e.k && i < len(logits); i++ {
		e.gains[i] = logits[i] / step
	}
}

// policy computes p_i = (1-γ)·softmax(γ/m·g)_i + γ/m over the k active
// arms.
func (e *EXP3) policy() []float32 {
	scaled := make([]float32, e.k)
	step := e.gamma / float32(e.k)
	for i := 0; i < e.k; i++ {
		scaled[i] = step * e.gains[i]
	}
	probs := make([]float32, e.k)
	softmax32(probs, scaled)
	uniform := e.gamma / float32(e.k)
	for i := range probs {
		probs[i] = (1-e.gamma)*probs[i] + uniform
	}
	return probs
}

func (e *EXP3) Select(rng *rand.Rand) Selection {
	if e.k == 1 {
		return Selection{Index: 0, Prob: 1}
	}
	probs := e.policy()
	if e.gamma >= 1 {
		// Spec.md §8: "EXP3 with γ=1 selects uniformly at random regardless of gains."
		// This falls out of the formula above (softmax term is multiplied by (1-γ)=0),
		// but we sample with the RNG directly here to avoid relying on float rounding.
		idx := rng.Intn(e.k)
		return Selection{Index: idx, Prob: probs[idx]}
	}
	r := rng.Float32()
	var cum float32
	for i, p := range probs {
		cum += p
		if r <= cum {
			return Selection{Index: i, Prob: p}
		}
	}
	return Selection{Index: e.k - 1, Prob: probs[e.k-1]}
}

func (e *EXP3) Update(sel Selection, v float32) {
	e.gains[sel.Index] += v / sel.Prob
	e.visits[sel.Index]++

	// Numerical-stability rescale: if any gain is >= 0, subtract it from all
	// gains so the running sum stays bounded and negative.
	var maxNonNeg float32
	found := false
	for i := 0; i < e.k; i++ {
		if e.gains[i] >= 0 {
			if !found || e.gains[i] > maxNonNeg {
				maxNonNeg = e.gains[i]
				found = true
			}
		}
	}
	if found {
		for i := 0; i < e.k; i++ {
			e.gains[i] -= maxNonNeg
		}
	}
}

func (e *EXP3) VisitCounts() []int {
	out := make([]int, e.k)
	copy(out, e.visits[:e.k])
	return out
}

var _ Bandit = &EXP3{}
