package selfplay

import (
	"context"
	"math/rand"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/pkmn-mcts/internal/bandit"
	"github.com/janpfeifer/pkmn-mcts/internal/build"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
	"github.com/janpfeifer/pkmn-mcts/internal/engine/reference"
	"github.com/janpfeifer/pkmn-mcts/internal/evaluator/rollout"
	"github.com/janpfeifer/pkmn-mcts/internal/frame"
	"github.com/janpfeifer/pkmn-mcts/internal/search"
	"github.com/janpfeifer/pkmn-mcts/internal/status"
)

func newTestWorker(t *testing.T, dir string) *Worker[reference.Team] {
	t.Helper()
	banditFactory, err := bandit.ParseSpec("ucb-1.0")
	require.NoError(t, err)

	searchCfg := search.Config{
		BanditFactory: banditFactory,
		Evaluator:     rollout.New(2, 7),
	}
	searcher := search.New(searchCfg, rand.New(rand.NewSource(3)))

	var counter Counter
	codec := frame.NewCodec(reference.StateSize)

	return &Worker[reference.Team]{
		Config: Config{
			Budget:   search.Budget{Iterations: 4},
			Policy:   DefaultPolicyOptions(),
			MaxTurns: 50,
		},
		RNG:      rand.New(rand.NewSource(11)),
		Provider: &build.RandomProvider{TeamSize: 1, MovesPerUnit: 1},
		NewState: func(p1, p2 reference.Team) engine.State { return reference.NewBattle(p1, p2) },
		Searcher: searcher,
		Counters: &status.Counters{},
		Frames:   NewFrameBuffer(dir, 10, &counter, codec),
	}
}

func TestPlayEpisodeProducesOneFrameAndUpdatesCounters(t *testing.T) {
	dir := t.TempDir()
	w := newTestWorker(t, dir)

	require.NoError(t, w.playEpisode(context.Background()))

	assert.EqualValues(t, 1, w.Counters.Games.Load())
	assert.EqualValues(t, 1, w.Counters.Frames.Load())
	assert.Equal(t, 1, w.Frames.Len())

	sum := w.Counters.Player1Wins.Load() + w.Counters.Player2Wins.Load() + w.Counters.Ties.Load()
	assert.EqualValues(t, 1, sum)
}

func TestRunStopsOnCancelledContextAndFlushes(t *testing.T) {
	dir := t.TempDir()
	w := newTestWorker(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, w.Run(ctx))
	assert.Equal(t, 0, w.Frames.Len()) // flush drains whatever had accumulated, possibly zero.
}

func TestRunRespectsTerminateFlag(t *testing.T) {
	dir := t.TempDir()
	w := newTestWorker(t, dir)
	w.Terminate = &atomic.Bool{}
	w.Terminate.Store(true)

	require.NoError(t, w.Run(context.Background()))
}

func TestRunPlaysUntilCancelled(t *testing.T) {
	dir := t.TempDir()
	w := newTestWorker(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for w.Counters.Games.Load() < 3 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()
	require.NoError(t, w.Run(ctx))
	assert.GreaterOrEqual(t, w.Counters.Games.Load(), int64(3))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}
