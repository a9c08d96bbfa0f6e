package search

import (
	"github.com/janpfeifer/pkmn-mcts/internal/bandit"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
	"github.com/janpfeifer/pkmn-mcts/internal/transposition"
	"github.com/janpfeifer/pkmn-mcts/internal/treestore"
)

// store is the narrow interface the search driver needs from either C4
// implementation (spec.md §4.4): "Two interchangeable implementations
// behind the same interface." Node handles are opaque (any) since the two
// implementations key children completely differently -- by path in the
// tree, by post-advance state hash in the table -- and neither needs to
// know about the other's key shape.
type store interface {
	// root returns the node handle for the search's starting state.
	root(state engine.State) any
	// child returns the node handle reached from parent by joint action
	// (i,j,outcome); state is the already-advanced clone, used by
	// hash-keyed stores and ignored by path-keyed ones.
	child(parent any, i, j int, outcome engine.ChanceOutcome, state engine.State) any
	// bandit returns the joint bandit statistics owned by node.
	bandit(node any) *bandit.JointBandit
	// reset discards all state, for starting a fresh episode.
	reset()
}

// treeStore adapts *treestore.Tree to store.
type treeStore struct {
	tree *treestore.Tree
}

func newTreeStore(factory *bandit.Factory) *treeStore {
	return &treeStore{tree: treestore.New(factory)}
}

func (s *treeStore) root(engine.State) any { return s.tree.Root() }

func (s *treeStore) child(parent any, i, j int, outcome engine.ChanceOutcome, _ engine.State) any {
	return s.tree.Child(parent.(*treestore.Node), i, j, outcome)
}

func (s *treeStore) bandit(node any) *bandit.JointBandit {
	return node.(*treestore.Node).Bandit
}

func (s *treeStore) reset() { s.tree.Reset() }

// rebase exposes treestore.Tree.Rebase for the self-play worker's
// keep_node option (spec.md §4.7); only meaningful in tree mode, so it's
// not part of the store interface.
func (s *treeStore) rebase(i, j int, outcome engine.ChanceOutcome) bool {
	return s.tree.Rebase(i, j, outcome)
}

// tableStore adapts *transposition.Table to store.
type tableStore struct {
	table *transposition.Table
}

func newTableStore(factory *bandit.Factory) *tableStore {
	return &tableStore{table: transposition.New(factory)}
}

func (s *tableStore) root(state engine.State) any { return s.table.Lookup(state.Hash()) }

func (s *tableStore) child(_ any, _, _ int, _ engine.ChanceOutcome, state engine.State) any {
	return s.table.Lookup(state.Hash())
}

func (s *tableStore) bandit(node any) *bandit.JointBandit {
	return node.(*bandit.JointBandit)
}

func (s *tableStore) reset() { s.table.Reset() }
