package build

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	value := float32(0.75)
	traj := Trajectory{
		Steps: []Step{
			{Candidates: []int{0, 1, 2}, ChosenIndex: 1, Probability: 1.0 / 3},
			{Candidates: []int{5, 6}, ChosenIndex: 0, Probability: 0.5},
		},
		Value: &value,
	}

	codec := NewCodec()
	var buf bytes.Buffer
	w, err := codec.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.WriteTrajectory(traj))
	require.NoError(t, w.WriteTrajectory(Trajectory{Steps: []Step{{Candidates: []int{0}, ChosenIndex: 0, Probability: 1}}}))
	require.NoError(t, w.Close())

	r, err := codec.NewReader(&buf)
	require.NoError(t, err)
	defer r.Close()

	got1, err := r.ReadTrajectory()
	require.NoError(t, err)
	assert.Equal(t, traj.Steps, got1.Steps)
	require.NotNil(t, got1.Value)
	assert.Equal(t, value, *got1.Value)

	got2, err := r.ReadTrajectory()
	require.NoError(t, err)
	assert.Nil(t, got2.Value)

	_, err = r.ReadTrajectory()
	assert.ErrorIs(t, err, io.EOF)
}
