package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeRoundTrip(t *testing.T) {
	b := starmieVsSnorlax([]int{MoveSeismicToss}, []int{MoveBodySlam})
	b.Teams[0].Units[0].Boosts[0] = -3
	b.Teams[1].Units[0].Confused = true
	b.turn = 7

	data := b.Serialize()
	assert.Len(t, data, StateSize)

	got, err := DeserializeBattle(data)
	require.NoError(t, err)
	assert.Equal(t, b.Teams, got.Teams)
	assert.Equal(t, b.turn, got.turn)
}

func TestDeserializeRejectsWrongLength(t *testing.T) {
	_, err := DeserializeBattle(make([]byte, StateSize-1))
	assert.Error(t, err)
}
