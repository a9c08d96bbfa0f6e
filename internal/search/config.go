package search

import (
	"sync/atomic"
	"time"

	"github.com/janpfeifer/pkmn-mcts/internal/bandit"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
	"github.com/janpfeifer/pkmn-mcts/internal/evaluator"
)

// Config configures a Searcher for the lifetime of one worker episode loop
// (spec.md §4.7: "Each worker owns ... a state store, an evaluator handle").
type Config struct {
	BanditFactory *bandit.Factory
	Evaluator     evaluator.Evaluator

	// UseTable selects the transposition-table store; the default is the
	// tree store (spec.md §4.4).
	UseTable bool

	// RootRollCount and OtherRollCount configure damage-roll clamping
	// (spec.md §4.5): the engine's calc-override byte is sampled from one
	// of RollMiddle/RollThree/N roll counts, separately at the root and at
	// every other depth.
	RootRollCount  engine.RollCount
	OtherRollCount engine.RollCount

	MatrixUCB MatrixUCBParams

	// RootNoise, if non-nil, mixes Dirichlet exploration noise into the
	// root's priors the first time it is initialized, AlphaZero-style
	// (bandit.JointBandit.AddRootNoise). Nil disables it.
	RootNoise *RootNoiseParams
}

// RootNoiseParams is the (eps, alpha) pair bandit.JointBandit.AddRootNoise
// takes.
type RootNoiseParams struct {
	Eps, Alpha float32
}

// MatrixUCBParams configures the Matrix-UCB root-solving variant of
// spec.md §4.5. Enabled defaults to false (plain bandit descent at every
// node, including the root).
type MatrixUCBParams struct {
	Enabled bool

	Delay    int     // skip Matrix-UCB for the first Delay iterations.
	Interval int     // re-solve every Interval iterations after Delay.
	Minimum  int     // require at least this many total root iterations before the first solve.
	C        float32 // exploration constant for the two per-player UCB matrices.
}

// Budget is the stopping condition for one Search call (spec.md §4.5,
// "Budget"). Exactly one of Iterations/Duration/Flag is normally set, but
// any combination is accepted -- the search stops as soon as any one of
// them is satisfied.
type Budget struct {
	Iterations int // 0 means unbounded by iteration count.

	// Duration is only consulted when HasDuration is true, so a caller can
	// configure a wall-clock budget of exactly zero (spec.md §8's boundary
	// test: the search must return Output{Iterations: 0} rather than run
	// unbounded) without it collapsing into the same bit pattern as an
	// entirely unconfigured Budget{}.
	Duration    time.Duration
	HasDuration bool

	Flag *atomic.Bool // caller-owned; nil means ignore. Cleared -> stop.
}
