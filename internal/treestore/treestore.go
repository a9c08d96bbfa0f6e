// Package treestore implements the tree-mode state store of spec.md §4.4
// (C4): a root node owned by one worker, with children created lazily on
// first visit and keyed by (p1_idx, p2_idx, chance_outcome).
//
// Grounded on the teacher's internal/searchers/mcts/mcts.go cacheNode: that
// struct's board/actionsProbs/cacheNodes/N/sumScores fields are the
// single-player analog of this package's Node, generalized to the joint
// (i,j) action pairs this package's bandit package already dispatches
// per-player, and additionally keyed by chance outcome since this engine's
// Advance is stochastic where Hive's is not.
package treestore

import (
	"github.com/janpfeifer/pkmn-mcts/internal/bandit"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

// childKey identifies one child of a Node: the joint action taken plus the
// chance outcome the engine produced advancing through it.
type childKey struct {
	i, j    int
	outcome engine.ChanceOutcome
}

// Node owns one joint information set's bandit statistics and its lazily
// created children (spec.md §3: "Node (tree mode) ... created on first
// visit; never destroyed before the containing search tree").
type Node struct {
	Bandit   *bandit.JointBandit
	children map[childKey]*Node
}

func newNode(jb *bandit.JointBandit) *Node {
	return &Node{Bandit: jb}
}

// Tree is one worker's search tree: a root Node plus the bandit.Factory
// used to mint fresh per-node JointBandits as children are first visited.
type Tree struct {
	factory *bandit.Factory
	root    *Node
}

// New creates a Tree holding a fresh, uninitialized root and no children
// (New calls Reset).
func New(factory *bandit.Factory) *Tree {
	t := &Tree{factory: factory}
	t.Reset()
	return t
}

// Reset discards the current tree and starts a fresh, uninitialized root
// (spec.md §4.7: "otherwise the tree is discarded and a new root created").
func (t *Tree) Reset() {
	t.root = newNode(t.factory.NewJoint())
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Child returns (creating if necessary) the child of n reached by joint
// action (i,j) producing chance outcome. This is the tree-mode descent
// step of spec.md §4.5's "Descend" (step 3).
func (t *Tree) Child(n *Node, i, j int, outcome engine.ChanceOutcome) *Node {
	key := childKey{i: i, j: j, outcome: outcome}
	if n.children == nil {
		n.children = make(map[childKey]*Node)
	}
	child, ok := n.children[key]
	if !ok {
		child = newNode(t.factory.NewJoint())
		n.children[key] = child
	}
	return child
}

// Rebase attempts to keep_node (spec.md §4.7): promote the existing child
// reached by (i,j,outcome) from the current root to the new root, instead
// of discarding the whole tree. Returns false (and leaves the tree
// untouched) if no such child has been visited yet, in which case the
// caller should call Reset.
func (t *Tree) Rebase(i, j int, outcome engine.ChanceOutcome) bool {
	key := childKey{i: i, j: j, outcome: outcome}
	if t.root.children == nil {
		return false
	}
	child, ok := t.root.children[key]
	if !ok {
		return false
	}
	t.root = child
	return true
}
