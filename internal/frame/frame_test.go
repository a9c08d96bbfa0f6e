package frame

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

func sampleRecord(stateSize int) Record {
	return Record{
		EngineState: bytes.Repeat([]byte{0xAB}, stateSize),
		Result:      engine.Win,
		Updates: []Update{
			{
				C1: 2, C2: 5, Iterations: 400,
				EmpiricalV: 0.625, NashV: 0.5,
				P1Empirical: []float32{0.25, 0.75},
				P1Nash:      []float32{0.4, 0.6},
				P2Empirical: []float32{1},
				P2Nash:      []float32{1},
			},
			{
				C1: 0, C2: 0, Iterations: 800,
				EmpiricalV: 1, NashV: 0.9,
				P1Empirical: []float32{0.1, 0.2, 0.7},
				P1Nash:      []float32{0.3, 0.3, 0.4},
				P2Empirical: []float32{0.5, 0.5},
				P2Nash:      []float32{0.5, 0.5},
			},
		},
	}
}

func TestWriteReadRoundTripsRecord(t *testing.T) {
	codec := NewCodec(16)
	var buf bytes.Buffer

	w, err := codec.NewWriter(&buf)
	require.NoError(t, err)
	rec := sampleRecord(16)
	require.NoError(t, w.WriteRecord(rec))
	require.NoError(t, w.Close())

	r, err := codec.NewReader(&buf)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, rec.EngineState, got.EngineState)
	assert.Equal(t, rec.Result, got.Result)
	require.Len(t, got.Updates, 2)
	for i, u := range rec.Updates {
		gotU := got.Updates[i]
		assert.Equal(t, u.C1, gotU.C1)
		assert.Equal(t, u.C2, gotU.C2)
		assert.Equal(t, u.Iterations, gotU.Iterations)
		assert.InDelta(t, u.EmpiricalV, gotU.EmpiricalV, 1e-4)
		assert.InDelta(t, u.NashV, gotU.NashV, 1e-4)
		for j := range u.P1Empirical {
			assert.InDelta(t, u.P1Empirical[j], gotU.P1Empirical[j], 1e-4)
			assert.InDelta(t, u.P1Nash[j], gotU.P1Nash[j], 1e-4)
		}
		for j := range u.P2Empirical {
			assert.InDelta(t, u.P2Empirical[j], gotU.P2Empirical[j], 1e-4)
			assert.InDelta(t, u.P2Nash[j], gotU.P2Nash[j], 1e-4)
		}
	}

	_, err = r.ReadRecord()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriteReadMultipleRecords(t *testing.T) {
	codec := NewCodec(4)
	var buf bytes.Buffer
	w, err := codec.NewWriter(&buf)
	require.NoError(t, err)

	rec1 := sampleRecord(4)
	rec2 := sampleRecord(4)
	rec2.Result = engine.Loss
	require.NoError(t, w.WriteRecord(rec1))
	require.NoError(t, w.WriteRecord(rec2))
	require.NoError(t, w.Close())

	r, err := codec.NewReader(&buf)
	require.NoError(t, err)
	defer r.Close()

	got1, err := r.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, engine.Win, got1.Result)

	got2, err := r.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, engine.Loss, got2.Result)

	_, err = r.ReadRecord()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSkipRecordAdvancesPastWithoutDecoding(t *testing.T) {
	codec := NewCodec(4)
	var buf bytes.Buffer
	w, err := codec.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord(sampleRecord(4)))
	rec2 := sampleRecord(4)
	rec2.Result = engine.Tie
	require.NoError(t, w.WriteRecord(rec2))
	require.NoError(t, w.Close())

	r, err := codec.NewReader(&buf)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.SkipRecord())
	got, err := r.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, engine.Tie, got.Result)
}

func TestEncodeRejectsWrongStateSize(t *testing.T) {
	codec := NewCodec(16)
	var buf bytes.Buffer
	w, err := codec.NewWriter(&buf)
	require.NoError(t, err)
	rec := sampleRecord(8)
	assert.Error(t, w.WriteRecord(rec))
}

func TestQuantizePositiveNeverRoundsToZero(t *testing.T) {
	v := quantize(1.0 / 70000.0)
	assert.Equal(t, uint16(1), v)
}

func TestQuantizeClampsToUnitRange(t *testing.T) {
	assert.Equal(t, uint16(0), quantize(-0.5))
	assert.Equal(t, uint16(quantScale), quantize(1.5))
}
