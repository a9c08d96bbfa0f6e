// Package transposition implements the table-mode state store of spec.md
// §4.4 (C4): bandit statistics keyed by a 64-bit Zobrist-style state hash
// instead of a position in an explicit tree, with collisions resolved by
// keeping whichever entry got there first (no chaining) and cycles bounded
// by a depth guard the search driver enforces using MaxDepth.
//
// Grounded on the teacher's internal/state board-hash cache (a
// uint64-keyed map used for a different purpose, transposition-style board
// memoization) generalized here to store bandit statistics rather than
// cached board derivations.
package transposition

import "github.com/janpfeifer/pkmn-mcts/internal/bandit"

// MaxDepth is spec.md §4.4's cycle-termination guard: "Cycles are bounded
// by max_depth = 100; on exceeding depth the search caps the engine turn
// counter and treats the node as terminal-tie."
const MaxDepth = 100

// Table is a worker-owned transposition table: a plain Go map, never
// locked, since spec.md §5 guarantees it is per-worker ("The
// transposition table has no mutex because it is per-worker").
type Table struct {
	factory *bandit.Factory
	entries map[uint64]*bandit.JointBandit
}

// New creates an empty Table that mints fresh JointBandits from factory on
// first lookup of a previously unseen hash.
func New(factory *bandit.Factory) *Table {
	return &Table{factory: factory, entries: make(map[uint64]*bandit.JointBandit)}
}

// Lookup returns the JointBandit for hash, creating one on first visit.
// On a collision -- a hash previously associated with statistics from
// what was, in fact, a different game state -- the existing entry is
// returned and reused, per spec.md §3: "on collision the existing entry is
// used (no chaining)". The stale entry is never invalidated.
func (t *Table) Lookup(hash uint64) *bandit.JointBandit {
	jb, ok := t.entries[hash]
	if !ok {
		jb = t.factory.NewJoint()
		t.entries[hash] = jb
	}
	return jb
}

// Len reports how many distinct hashes have been recorded.
func (t *Table) Len() int {
	return len(t.entries)
}

// Reset discards all entries, for reuse across episodes within one worker
// without reallocating the Table itself.
func (t *Table) Reset() {
	t.entries = make(map[uint64]*bandit.JointBandit)
}
