package bandit

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distmv"
)

// JointSelection is the pair of per-player Selections returned by
// JointBandit.Select -- spec.md §4: "select(rng, params) -> (i, j, aux)".
type JointSelection struct {
	P1, P2 Selection
}

// JointBandit composes two independent per-player Bandit instances, per
// spec.md §4.1: "Joint bandit is two independent instances (one per
// player) sharing the tie in that update receives both leaf values and
// dispatches each."
type JointBandit struct {
	P1, P2 Bandit
}

// NewJoint wraps two per-player bandits (typically built by the same
// Factory) into a JointBandit.
func NewJoint(p1, p2 Bandit) *JointBandit {
	return &JointBandit{P1: p1, P2: p2}
}

// Init initializes both sides with their respective legal-action counts
// (m, n) -- spec.md §3: "per-player legal-action count (m, n), 1 ≤ m,n ≤ K".
func (jb *JointBandit) Init(m, n int) {
	jb.P1.Init(m)
	jb.P2.Init(n)
}

// IsInit reports whether Init has run.
func (jb *JointBandit) IsInit() bool {
	return jb.P1.IsInit()
}

// Select returns a joint action (i, j) with 0 <= i < m, 0 <= j < n, per
// spec.md §3's invariant.
func (jb *JointBandit) Select(rng *rand.Rand) JointSelection {
	return JointSelection{P1: jb.P1.Select(rng), P2: jb.P2.Select(rng)}
}

// Update dispatches the two leaf values to each side's bandit, per
// spec.md §4.1.
func (jb *JointBandit) Update(sel JointSelection, v1, v2 float32) {
	jb.P1.Update(sel.P1, v1)
	jb.P2.Update(sel.P2, v2)
}

// AbsorbLogits loads policy priors into both sides, aligned to each
// player's own legal-action order.
func (jb *JointBandit) AbsorbLogits(logits1, logits2 []float32) {
	jb.P1.AbsorbLogits(logits1)
	jb.P2.AbsorbLogits(logits2)
}

// AddRootNoise mixes Dirichlet exploration noise into both sides' current
// priors, AlphaZero-style: prior_i <- (1-eps)*prior_i + eps*noise_i. This
// is a SPEC_FULL.md domain-stack addition (gonum.org/v1/gonum/stat/distmv,
// grounded on Elvenson-alphabeth/mcts/tree.go's root-noise handling),
// applied only at the search tree's root node, never at interior nodes.
// Only meaningful for bandits that hold an explicit prior vector (PUCB);
// it is a no-op for the others (UCB, UCB1, EXP3, PEXP3), the same way
// AbsorbLogits already is for UCB/UCB1.
func (jb *JointBandit) AddRootNoise(rng *rand.Rand, eps, alpha float32) error {
	if err := addNoise(jb.P1, rng, eps, alpha); err != nil {
		return errors.Wrap(err, "p1 root noise")
	}
	if err := addNoise(jb.P2, rng, eps, alpha); err != nil {
		return errors.Wrap(err, "p2 root noise")
	}
	return nil
}

// priorMixer is implemented by bandits that expose mixable policy priors
// (PUCB). Bandits that don't (UCB, UCB1, EXP3, PEXP3) are left alone.
type priorMixer interface {
	mixPriors(noise []float32, eps float32)
}

func addNoise(b Bandit, rng *rand.Rand, eps, alpha float32) error {
	mixer, ok := b.(priorMixer)
	if !ok {
		return nil
	}
	k := b.NumActions()
	if k <= 1 {
		return nil
	}
	alphaVec := make([]float64, k)
	for i := range alphaVec {
		alphaVec[i] = float64(alpha)
	}
	dirichlet, ok := distmv.NewDirichlet(alphaVec, rng)
	if !ok {
		return errors.New("bandit: invalid Dirichlet parameters for root noise")
	}
	sample := dirichlet.Rand(nil)
	noise := make([]float32, k)
	for i, v := range sample {
		noise[i] = float32(v)
	}
	mixer.mixPriors(noise, eps)
	return nil
}
