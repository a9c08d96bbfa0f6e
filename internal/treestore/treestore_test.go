package treestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/pkmn-mcts/internal/bandit"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

func newFactory(t *testing.T) *bandit.Factory {
	t.Helper()
	f, err := bandit.ParseSpec("ucb-1.0")
	require.NoError(t, err)
	return f
}

func TestChildIsCreatedLazilyAndMemoized(t *testing.T) {
	tree := New(newFactory(t))
	root := tree.Root()
	outcome := engine.ChanceOutcome{1, 2, 3}

	c1 := tree.Child(root, 0, 1, outcome)
	require.NotNil(t, c1)
	c2 := tree.Child(root, 0, 1, outcome)
	assert.Same(t, c1, c2, "revisiting the same (i,j,outcome) must return the same child")

	other := tree.Child(root, 0, 1, engine.ChanceOutcome{9})
	assert.NotSame(t, c1, other, "a different chance outcome must be a different child")
}

func TestRebasePromotesVisitedChild(t *testing.T) {
	tree := New(newFactory(t))
	root := tree.Root()
	outcome := engine.ChanceOutcome{5}
	child := tree.Child(root, 2, 3, outcome)

	ok := tree.Rebase(2, 3, outcome)
	require.True(t, ok)
	assert.Same(t, child, tree.Root())
}

func TestRebaseFailsOnUnvisitedChild(t *testing.T) {
	tree := New(newFactory(t))
	ok := tree.Rebase(0, 0, engine.ChanceOutcome{})
	assert.False(t, ok)
}

func TestResetDiscardsTree(t *testing.T) {
	tree := New(newFactory(t))
	root := tree.Root()
	tree.Child(root, 0, 0, engine.ChanceOutcome{})
	tree.Reset()
	assert.NotSame(t, root, tree.Root())
}
