package selfplay

import (
	"os"

	"github.com/janpfeifer/pkmn-mcts/internal/build"
	"github.com/janpfeifer/pkmn-mcts/internal/frame"
)

// frameWriter adapts *frame.Writer's WriteRecord to the recordWriter[T]
// shape Buffer needs.
type frameWriter struct{ w *frame.Writer }

func (a frameWriter) Write(rec frame.Record) error { return a.w.WriteRecord(rec) }
func (a frameWriter) Close() error                 { return a.w.Close() }

// NewFrameBuffer builds a Buffer of episode frames that flushes to
// "<dir>/<counter>.battle.data" files via codec, per spec.md §6's
// "<counter>.battle.data (episode frames)" naming.
func NewFrameBuffer(dir string, maxEpisodes int, counter *Counter, codec *frame.Codec) *Buffer[frame.Record] {
	return NewBuffer(dir, "battle", maxEpisodes, counter, func(f *os.File) (recordWriter[frame.Record], error) {
		w, err := codec.NewWriter(f)
		if err != nil {
			return nil, err
		}
		return frameWriter{w}, nil
	})
}

// buildWriter adapts *build.Writer's WriteTrajectory to recordWriter[T].
type buildWriter struct{ w *build.Writer }

func (a buildWriter) Write(t build.Trajectory) error { return a.w.WriteTrajectory(t) }
func (a buildWriter) Close() error                   { return a.w.Close() }

// NewBuildBuffer builds a Buffer of build trajectories that flushes to
// "<dir>/<counter>.build.data" files, per spec.md §6's "optionally
// <counter>.build.data (team-building trajectories)" naming.
func NewBuildBuffer(dir string, maxEpisodes int, counter *Counter, codec *build.Codec) *Buffer[build.Trajectory] {
	return NewBuffer(dir, "build", maxEpisodes, counter, func(f *os.File) (recordWriter[build.Trajectory], error) {
		w, err := codec.NewWriter(f)
		if err != nil {
			return nil, err
		}
		return buildWriter{w}, nil
	})
}
