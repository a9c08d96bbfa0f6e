package transposition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/pkmn-mcts/internal/bandit"
)

func newFactory(t *testing.T) *bandit.Factory {
	t.Helper()
	f, err := bandit.ParseSpec("ucb1-2.0")
	require.NoError(t, err)
	return f
}

func TestLookupCreatesOnFirstVisit(t *testing.T) {
	table := New(newFactory(t))
	assert.Equal(t, 0, table.Len())
	jb := table.Lookup(42)
	require.NotNil(t, jb)
	assert.Equal(t, 1, table.Len())
}

func TestLookupIsMemoizedAcrossCalls(t *testing.T) {
	table := New(newFactory(t))
	a := table.Lookup(7)
	b := table.Lookup(7)
	assert.Same(t, a, b)
	assert.Equal(t, 1, table.Len())
}

func TestLookupOnCollisionReusesExistingEntry(t *testing.T) {
	// A "collision" here is simply two different game states that hashed
	// to the same value; the table has no way to distinguish them, so it
	// must return the one entry it already has (spec.md §3).
	table := New(newFactory(t))
	first := table.Lookup(99)
	first.P1.Init(3)
	second := table.Lookup(99)
	assert.Same(t, first, second)
	assert.True(t, second.P1.IsInit())
}

func TestResetClearsAllEntries(t *testing.T) {
	table := New(newFactory(t))
	table.Lookup(1)
	table.Lookup(2)
	require.Equal(t, 2, table.Len())
	table.Reset()
	assert.Equal(t, 0, table.Len())
}
