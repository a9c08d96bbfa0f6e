package selfplay

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/janpfeifer/pkmn-mcts/internal/build"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
	"github.com/janpfeifer/pkmn-mcts/internal/frame"
	"github.com/janpfeifer/pkmn-mcts/internal/search"
	"github.com/janpfeifer/pkmn-mcts/internal/status"
)

// pausePollInterval is how often Run rechecks a cleared Pause flag between
// episode boundaries (spec.md §5: "Workers poll a pause flag at episode
// boundaries; they never suspend mid-search").
const pausePollInterval = 50 * time.Millisecond

// EarlyTerminationParams configures spec.md §4.7's optional early-stop
// rule. Disabled by default, per spec.
type EarlyTerminationParams struct {
	Enabled bool

	// Threshold is compared against the inverse-sigmoid (logit) of the
	// search's empirical value estimate, in P1's perspective. Since the
	// evaluator produces one zero-sum value (player 2's is its negation,
	// internal/evaluator's doc comment), the "same sign from both players"
	// condition of spec.md §4.7 collapses to a single |logit| >= Threshold
	// check: whichever side the sign favors is the declared winner.
	Threshold float32
}

// check reports whether v (a [0,1] value estimate, P1's perspective)
// crosses the early-termination threshold, and if so which side wins.
func (e *EarlyTerminationParams) check(v float32) (bool, engine.Result) {
	logit := logitOf(v)
	if logit >= e.Threshold {
		return true, engine.Win
	}
	if logit <= -e.Threshold {
		return true, engine.Loss
	}
	return false, engine.Ongoing
}

func logitOf(v float32) float32 {
	const eps = 1e-6
	if v < eps {
		v = eps
	}
	if v > 1-eps {
		v = 1 - eps
	}
	return float32(math.Log(float64(v / (1 - v))))
}

// Config is the per-worker configuration shared by every episode a Worker
// plays (spec.md §4.7: "Each worker owns ... a frame buffer, and
// configuration").
type Config struct {
	Budget search.Budget

	// KeepNode enables the keep_node option of spec.md §4.7: when set, the
	// realized (i,j,chance_outcome) child is promoted to the new root
	// instead of discarding the search tree every turn. Only effective in
	// tree mode (internal/search.Searcher.Rebase is a no-op for the
	// transposition table).
	KeepNode bool

	Policy PolicyOptions

	// MaxTurns caps episode length as a safety net against a non-progressing
	// game (the reference engine always makes progress via residual/faint
	// damage, but a real engine need not), mirroring the teacher's
	// board.MaxMoves draw-by-move-limit convention. 0 means unbounded.
	MaxTurns int

	EarlyTermination *EarlyTerminationParams

	// RecordBuildTrajectories enables writing both sides' build.Trajectory
	// to Builds once the first in-battle search has labeled them (spec.md
	// §9). Ignored if Builds is nil.
	RecordBuildTrajectories bool
}

// Worker plays episodes against a single opaque engine.State-producing
// game, generic over the concrete team type its build.Provider drafts
// (spec.md §9: the Provider is an external collaborator the core only
// consumes the team and trajectory from).
type Worker[Team any] struct {
	Config

	RNG      *rand.Rand
	Provider build.Provider[Team]
	NewState func(p1, p2 Team) engine.State
	Searcher *search.Searcher

	Counters *status.Counters
	Frames   *Buffer[frame.Record]
	Builds   *Buffer[build.Trajectory] // nil disables build-trajectory output.

	// Pause, if non-nil, is polled between episodes; Run blocks while it is
	// true (spec.md §5 "Suspension points"). Terminate, if non-nil, is
	// polled the same way for a clean stop (spec.md §5 "Cancellation");
	// ctx cancellation covers the "between search iterations" half of that
	// requirement, since internal/search.Searcher.Search already selects on
	// ctx.Done() every iteration.
	Pause     *atomic.Bool
	Terminate *atomic.Bool
}

// Run plays episodes until ctx is cancelled or Terminate is set, flushing
// both buffers before returning (spec.md §5: "On cancellation, workers
// flush their frame buffer to disk before exiting").
func (w *Worker[Team]) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return w.flush()
		}
		if w.Terminate != nil && w.Terminate.Load() {
			return w.flush()
		}
		for w.Pause != nil && w.Pause.Load() {
			if ctx.Err() != nil {
				return w.flush()
			}
			time.Sleep(pausePollInterval)
		}

		if err := w.playEpisode(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return w.flush()
			}
			return err
		}
	}
}

func (w *Worker[Team]) flush() error {
	var err error
	if w.Frames != nil {
		if ferr := w.Frames.Flush(); ferr != nil {
			err = ferr
		}
	}
	if w.Builds != nil {
		if berr := w.Builds.Flush(); berr != nil && err == nil {
			err = berr
		}
	}
	return err
}

// playEpisode runs one full episode: draft both teams, search and sample a
// joint action every turn until terminal, then append the completed
// episode (and, if configured, both build trajectories) to their buffers.
func (w *Worker[Team]) playEpisode(ctx context.Context) error {
	p1Team, p1Traj, err := w.Provider.Build(w.RNG)
	if err != nil {
		return errors.Wrap(err, "selfplay: drafting player 1's team")
	}
	p2Team, p2Traj, err := w.Provider.Build(w.RNG)
	if err != nil {
		return errors.Wrap(err, "selfplay: drafting player 2's team")
	}

	state := w.NewState(p1Team, p2Team)
	serializer, ok := state.(engine.Serializer)
	if !ok {
		return errors.New("selfplay: engine.State does not implement engine.Serializer")
	}
	initialState := serializer.Serialize()

	w.Searcher.Reset()

	var updates []frame.Update
	var firstValue *float32
	result := engine.Ongoing
	turn := 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if done, res := state.IsTerminal(); done {
			result = res
			break
		}
		if w.MaxTurns > 0 && turn >= w.MaxTurns {
			result = engine.Tie
			break
		}

		out, err := w.Searcher.Search(ctx, state, w.Budget)
		if err != nil {
			return errors.Wrap(err, "selfplay: search")
		}
		w.Counters.Iterations.Add(int64(out.Iterations))
		w.Counters.Errors.Add(int64(out.Errors))

		if firstValue == nil {
			v := out.ValueEmpirical
			firstValue = &v
		}

		if w.EarlyTermination != nil && w.EarlyTermination.Enabled {
			if early, res := w.EarlyTermination.check(out.ValueEmpirical); early {
				result = res
				break
			}
		}

		p1Probs, err := w.Policy.resolve(out.P1Empirical, out.P1Nash)
		if err != nil {
			return errors.Wrap(err, "selfplay: resolving player 1's sampling policy")
		}
		p2Probs, err := w.Policy.resolve(out.P2Empirical, out.P2Nash)
		if err != nil {
			return errors.Wrap(err, "selfplay: resolving player 2's sampling policy")
		}
		i := sampleIndex(w.RNG, p1Probs)
		j := sampleIndex(w.RNG, p2Probs)

		legal1 := state.Legal(engine.Player1)
		legal2 := state.Legal(engine.Player2)
		tok1, tok2 := legal1[i], legal2[j]

		outcome, err := state.Advance(tok1, tok2, engine.CalcOverride{P1Roll: 0xFF, P2Roll: 0xFF})
		if err != nil {
			return errors.Wrap(err, "selfplay: advancing the real game state")
		}

		updates = append(updates, frame.Update{
			C1:          tok1,
			C2:          tok2,
			Iterations:  uint32(out.Iterations),
			EmpiricalV:  out.ValueEmpirical,
			NashV:       out.ValueNash,
			P1Empirical: out.P1Empirical,
			P1Nash:      out.P1Nash,
			P2Empirical: out.P2Empirical,
			P2Nash:      out.P2Nash,
		})

		if !w.KeepNode || !w.Searcher.Rebase(i, j, outcome) {
			w.Searcher.Reset()
		}
		turn++
	}

	w.Counters.Games.Add(1)
	w.Counters.RecordResult(result)

	if w.Frames != nil {
		w.Counters.Frames.Add(1)
		if err := w.Frames.Add(frame.Record{EngineState: initialState, Result: result, Updates: updates}); err != nil {
			return errors.Wrap(err, "selfplay: buffering frame")
		}
	}

	if w.Builds != nil && w.RecordBuildTrajectories && firstValue != nil {
		p1Traj.SetValue(*firstValue)
		p2Traj.SetValue(1 - *firstValue)
		if err := w.Builds.Add(p1Traj); err != nil {
			return errors.Wrap(err, "selfplay: buffering player 1's build trajectory")
		}
		if err := w.Builds.Add(p2Traj); err != nil {
			return errors.Wrap(err, "selfplay: buffering player 2's build trajectory")
		}
	}
	return nil
}
