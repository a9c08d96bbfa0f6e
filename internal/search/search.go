// Package search implements the MCTS search driver of spec.md §4.5 (C5):
// simultaneous-move descent through a joint (i,j) bandit at every visited
// node, terminating on a configurable budget and producing empirical and
// Nash-solved policies at the root.
//
// Grounded on the teacher's internal/searchers/mcts/mcts.go: searchImpl's
// iterate-until-budget loop and cacheNode-based recursive descent are
// generalized here from Hive's single-player turn structure to the joint
// two-player descent internal/bandit and internal/treestore/transposition
// already provide, with the board collaborator replaced by the engine
// package's opaque State contract and damage-roll clamping, Matrix-UCB root
// solving and the budget/error-collapse rules layered on top per
// SPEC_FULL.md's C5 expansion (grounded on
// original_source/cpp/include/search/mcts.h's SearchOptions/MatrixUCBParams
// templates, translated to runtime fields).
package search

import (
	"context"
	"math/rand"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/janpfeifer/pkmn-mcts/internal/bandit"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
	"github.com/janpfeifer/pkmn-mcts/internal/evaluator"
	"github.com/janpfeifer/pkmn-mcts/internal/matrixgame"
	"github.com/janpfeifer/pkmn-mcts/internal/transposition"
)

// Searcher owns one worker's state store across the lifetime of an episode
// (or longer, if the caller never calls Reset), and runs Search calls
// against it turn by turn.
type Searcher struct {
	cfg Config
	rng *rand.Rand

	store store

	// Root-only accounting, rebuilt at the start of every Search call.
	rootVisits [][]int
	rootValues [][]float32

	matrixUCBActive bool
	matrixUCBX      []float32
	matrixUCBY      []float32
}

// New builds a Searcher. rng is the worker's own RNG, used both to seed
// each iteration's engine RNG and to sample bandit/root actions; it is not
// safe for concurrent use, matching the rest of this package's "one
// Searcher per worker goroutine" assumption.
func New(cfg Config, rng *rand.Rand) *Searcher {
	s := &Searcher{cfg: cfg, rng: rng}
	if cfg.UseTable {
		s.store = newTableStore(cfg.BanditFactory)
	} else {
		s.store = newTreeStore(cfg.BanditFactory)
	}
	return s
}

// Reset discards all accumulated search statistics, starting a fresh
// episode (spec.md §4.7 step 2, used when keep_node isn't configured or
// doesn't apply).
func (s *Searcher) Reset() {
	s.store.reset()
	s.matrixUCBActive = false
}

// Rebase promotes the child reached by (i,j,outcome) from the current root
// to the new root, implementing the keep_node option of spec.md §4.7. Only
// meaningful in tree mode; returns false (no-op) for the transposition
// table, which has no notion of a "current root" to promote from, and for
// an unvisited child.
func (s *Searcher) Rebase(i, j int, outcome engine.ChanceOutcome) bool {
	ts, ok := s.store.(*treeStore)
	if !ok {
		return false
	}
	return ts.rebase(i, j, outcome)
}

// Search runs iterations against state (never mutated) until budget is
// exhausted, per spec.md §4.5.
func (s *Searcher) Search(ctx context.Context, state engine.State, budget Budget) (Output, error) {
	if ok, result := state.IsTerminal(); ok {
		return Output{Result: result}, nil
	}

	legal1 := state.Legal(engine.Player1)
	legal2 := state.Legal(engine.Player2)
	m, n := len(legal1), len(legal2)
	s.rootVisits = newIntMatrix(m, n)
	s.rootValues = newFloatMatrix(m, n)
	s.matrixUCBActive = false

	root := s.store.root(state)

	if budget.Iterations <= 0 && !budget.HasDuration && budget.Flag == nil {
		return Output{}, errors.New("search: budget has no stopping condition (iterations, duration, and flag are all unset)")
	}
	var deadline time.Time
	if budget.HasDuration {
		deadline = time.Now().Add(budget.Duration)
	}

	var errCount int
	iterations := 0
	for {
		select {
		case <-ctx.Done():
			goto done
		default:
		}
		if budget.Flag != nil && !budget.Flag.Load() {
			break
		}
		if budget.Iterations > 0 && iterations >= budget.Iterations {
			break
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			break
		}

		clone := state.Clone()
		clone.SetRNGSeed(s.rng.Uint64())
		// runIteration raises engine invariant violations (spec.md §7) via
		// exceptions.Panicf instead of an error return; this is the one
		// worker-episode boundary where that panic is caught and turned back
		// into a normal error, matching the teacher's
		// exceptions.TryCatch[error] idiom (cmd/a0trainer/ai.go).
		if err := exceptions.TryCatch[error](func() {
			s.runIteration(clone, root, 0, true, &errCount)
		}); err != nil {
			return Output{}, err
		}
		iterations++

		if s.cfg.MatrixUCB.Enabled && iterations >= s.cfg.MatrixUCB.Delay && iterations >= s.cfg.MatrixUCB.Minimum {
			interval := s.cfg.MatrixUCB.Interval
			if interval < 1 {
				interval = 1
			}
			if (iterations-s.cfg.MatrixUCB.Delay)%interval == 0 {
				if x, y, ok := solveMatrixUCB(s.rootValues, s.rootVisits, s.cfg.MatrixUCB.C); ok {
					s.matrixUCBX, s.matrixUCBY = x, y
					s.matrixUCBActive = true
				} else {
					errCount++
				}
			}
		}
	}
done:

	out := Output{
		Result:         engine.Ongoing,
		M:              m,
		N:              n,
		Iterations:     iterations,
		Errors:         errCount,
		Visits:         s.rootVisits,
		P1Empirical:    marginalP1(s.rootVisits),
		P2Empirical:    marginalP2(s.rootVisits),
		ValueEmpirical: meanValue(s.rootValues, s.rootVisits),
	}

	matrix := averageMatrix(s.rootValues, s.rootVisits)
	result, err := matrixgame.Solve(matrix)
	if err != nil {
		out.P1Nash = out.P1Empirical
		out.P2Nash = out.P2Empirical
		out.ValueNash = out.ValueEmpirical
	} else {
		out.P1Nash = result.X
		out.P2Nash = result.Y
		out.ValueNash = result.Value
	}
	return out, nil
}

func meanValue(values [][]float32, visits [][]int) float32 {
	var sumV float32
	var sumN float32
	for i := range values {
		for j := range values[i] {
			sumV += values[i][j]
			sumN += float32(visits[i][j])
		}
	}
	if sumN <= 0 {
		return 0.5
	}
	return sumV / sumN
}

// runIteration performs one recursive descent from node, returning the
// (v1, v2) pair backed up to the caller; isRoot gates the root-only
// bookkeeping and Matrix-UCB action sampling of spec.md §4.5 steps 6 and
// "Root matrix solve". Advance returning engine.ErrIllegalAction is an
// engine invariant violation (spec.md §7's "Engine invariant violation"
// row): it is raised via exceptions.Panicf rather than returned, since by
// construction Advance should never reject a token runIteration itself
// selected from state.Legal -- every other failure mode (evaluator/policy
// error, solver failure, depth limit) is handled internally and reported
// through errCount instead.
func (s *Searcher) runIteration(state engine.State, node any, depth int, isRoot bool, errCount *int) (v1, v2 float32) {
	if depth >= transposition.MaxDepth {
		*errCount++
		return 0.5, 0.5
	}
	if terminal, result := state.IsTerminal(); terminal {
		switch result {
		case engine.Win:
			return 1, 0
		case engine.Loss:
			return 0, 1
		default:
			return 0.5, 0.5
		}
	}

	jb := s.store.bandit(node)
	legal1 := state.Legal(engine.Player1)
	legal2 := state.Legal(engine.Player2)

	if !jb.IsInit() {
		jb.Init(len(legal1), len(legal2))

		if s.cfg.BanditFactory.UsesPolicy() {
			if pe, ok := s.cfg.Evaluator.(evaluator.PolicyEvaluator); ok {
				logits1, err1 := pe.Policy(state, engine.Player1, legal1)
				logits2, err2 := pe.Policy(state, engine.Player2, legal2)
				if err1 == nil && err2 == nil {
					jb.AbsorbLogits(logits1, logits2)
				} else {
					*errCount++
				}
			}
		}
		if isRoot && s.cfg.RootNoise != nil {
			if nerr := jb.AddRootNoise(s.rng, s.cfg.RootNoise.Eps, s.cfg.RootNoise.Alpha); nerr != nil {
				*errCount++
			}
		}

		value, everr := s.cfg.Evaluator.Evaluate(state)
		if everr != nil {
			*errCount++
			return 0.5, 0.5
		}
		v1 := (value + 1) / 2
		return v1, 1 - v1
	}

	var sel bandit.JointSelection
	if isRoot && s.matrixUCBActive {
		i := sampleFromDist(s.rng, s.matrixUCBX)
		j := sampleFromDist(s.rng, s.matrixUCBY)
		sel = bandit.JointSelection{
			P1: bandit.Selection{Index: i, Prob: s.matrixUCBX[i]},
			P2: bandit.Selection{Index: j, Prob: s.matrixUCBY[j]},
		}
	} else {
		sel = jb.Select(s.rng)
	}

	rollCount := s.cfg.OtherRollCount
	if isRoot {
		rollCount = s.cfg.RootRollCount
	}
	override := engine.CalcOverride{
		P1Roll: sampleRoll(s.rng, rollCount),
		P2Roll: sampleRoll(s.rng, rollCount),
	}

	tok1 := legal1[sel.P1.Index]
	tok2 := legal2[sel.P2.Index]
	outcome, advErr := state.Advance(tok1, tok2, override)
	if advErr != nil {
		exceptions.Panicf("search: engine invariant violation: %w", advErr)
	}

	child := s.store.child(node, sel.P1.Index, sel.P2.Index, outcome, state)
	childV1, childV2 := s.runIteration(state, child, depth+1, false, errCount)
	jb.Update(sel, childV1, childV2)

	if isRoot {
		s.rootVisits[sel.P1.Index][sel.P2.Index]++
		s.rootValues[sel.P1.Index][sel.P2.Index] += childV1
	}
	return childV1, childV2
}
