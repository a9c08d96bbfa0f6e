package selfplay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/pkmn-mcts/internal/engine"
	"github.com/janpfeifer/pkmn-mcts/internal/frame"
)

func TestFrameBufferFlushesAtCapacityAndNamesSequentially(t *testing.T) {
	dir := t.TempDir()
	codec := frame.NewCodec(4)
	var counter Counter
	buf := NewFrameBuffer(dir, 2, &counter, codec)

	rec := frame.Record{EngineState: []byte{1, 2, 3, 4}, Result: engine.Tie}
	require.NoError(t, buf.Add(rec))
	assert.Equal(t, 1, buf.Len())
	require.NoError(t, buf.Add(rec)) // second add crosses maxEpisodes=2, triggers a flush.
	assert.Equal(t, 0, buf.Len())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "0.battle.data", entries[0].Name())

	require.NoError(t, buf.Add(rec))
	require.NoError(t, buf.Flush())
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	names := []string{entries[0].Name(), entries[1].Name()}
	assert.Contains(t, names, "0.battle.data")
	assert.Contains(t, names, "1.battle.data")
}

func TestFrameBufferFlushWritesReadableRecords(t *testing.T) {
	dir := t.TempDir()
	codec := frame.NewCodec(4)
	var counter Counter
	buf := NewFrameBuffer(dir, 10, &counter, codec)

	rec := frame.Record{
		EngineState: []byte{9, 9, 9, 9},
		Result:      engine.Win,
		Updates: []frame.Update{{
			C1: 0, C2: 1, Iterations: 5,
			EmpiricalV: 0.5, NashV: 0.5,
			P1Empirical: []float32{1}, P1Nash: []float32{1},
			P2Empirical: []float32{0.5, 0.5}, P2Nash: []float32{0.5, 0.5},
		}},
	}
	require.NoError(t, buf.Add(rec))
	require.NoError(t, buf.Flush())

	f, err := os.Open(filepath.Join(dir, "0.battle.data"))
	require.NoError(t, err)
	defer f.Close()
	r, err := codec.NewReader(f)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, rec.EngineState, got.EngineState)
	assert.Equal(t, rec.Result, got.Result)
	require.Len(t, got.Updates, 1)
	assert.Equal(t, rec.Updates[0].C1, got.Updates[0].C1)
}

func TestFrameBufferFlushNoopWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	codec := frame.NewCodec(4)
	var counter Counter
	buf := NewFrameBuffer(dir, 10, &counter, codec)
	require.NoError(t, buf.Flush())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 0)
}
