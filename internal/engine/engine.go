// Package engine defines the opaque game-engine contract the search core
// depends on (spec.md §6 "Engine contract (inbound)"). The core never
// inspects game state directly: it only calls Advance, Legal, the
// chance-outcome accessor and the damage-roll override setter.
//
// A concrete game (Gen-1 Pokémon battles, or anything else fitting the
// simultaneous-move/stochastic-transition shape) implements this interface.
// See internal/engine/reference for a small fixture implementation used by
// this repo's own tests.
package engine

import "github.com/pkg/errors"

// Player identifies one of the two sides. There are always exactly two.
type Player int

const (
	Player1 Player = 0
	Player2 Player = 1
)

// Other returns the opposing player.
func (p Player) Other() Player {
	return 1 - p
}

// MaxActions (K in spec.md §3): the maximum number of legal actions either
// player can have at any information set.
const MaxActions = 9

// ChanceOutcomeSize is the fixed width, in bytes, of the chance-outcome tag
// produced by Advance (spec.md §3: "a fixed-width byte string (16 bytes in
// the reference game)").
const ChanceOutcomeSize = 16

// ChanceOutcome is the deterministic tag distinguishing the stochastic
// branch taken by an Advance call. It must be comparable (used as a map
// key component by internal/treestore) and hashable (internal/transposition
// folds it into the Zobrist hash only indirectly, through the post-advance
// state hash).
type ChanceOutcome [ChanceOutcomeSize]byte

// Result reports the outcome of a terminal state, from the perspective of
// whichever player is asked (see State.Result).
type Result uint8

const (
	Ongoing Result = 0
	Win     Result = 1
	Loss    Result = 2
	Tie     Result = 3
)

// RollCount selects how many discrete damage-multiplier rolls the engine
// exposes for the "calc override" byte (spec.md §4.5 "Damage-roll
// clamping"). 1 means always the middle roll ("1-roll mode"), 3 means
// {low, mid, high}, and N means the low bits of the engine RNG pick among
// N evenly spaced rolls from low to high.
type RollCount int

const (
	RollMiddle RollCount = 1
	RollThree  RollCount = 3
)

// CalcOverride is the two-byte "calc override" input from spec.md §6,
// one roll selector per side.
type CalcOverride struct {
	P1Roll, P2Roll uint8
}

// State is the opaque, engine-owned game state. The core treats it as a
// handle: it clones it, advances it, and asks the engine for legal moves
// and chance outcomes, but never reads its fields.
type State interface {
	// Clone returns an independent deep copy; mutations to the clone must
	// never be visible through the original or vice versa (spec.md §4.5
	// step 1, "Clone the game state").
	Clone() State

	// IsTerminal reports whether the state is a terminal state, and if so,
	// the Result from Player1's perspective (Win/Loss/Tie). When false,
	// Result must be Ongoing.
	IsTerminal() (bool, Result)

	// Legal returns, in order, the engine's opaque action tokens available
	// to player at this state. len(tokens) <= MaxActions.
	Legal(player Player) (tokens []ActionToken)

	// Advance applies the joint action (a1 from Legal(Player1), a2 from
	// Legal(Player2)) plus the damage-roll override, mutating the state in
	// place and returning the chance outcome tag of the transition taken.
	//
	// Advance must return engine.ErrIllegalAction (wrapped with
	// errors.Wrapf for diagnostic context) if either token is not present
	// on the corresponding Legal() list — spec.md §7's "Engine invariant
	// violation" row.
	Advance(a1, a2 ActionToken, override CalcOverride) (ChanceOutcome, error)

	// SetRNGSeed overwrites the engine's internal RNG seed (spec.md §4.5
	// step 2, "Randomize hidden state"). Called once per search iteration
	// by the search driver, seeded from the worker's own RNG so iterations
	// sample different stochastic branches.
	SetRNGSeed(seed uint64)

	// Hash returns a 64-bit Zobrist-style digest of the current state, used
	// by internal/transposition as the table key (spec.md §4.4). Hash must
	// be invariant under no-op advances and must change under any stat,
	// status, species, or move-PP change (spec.md §8).
	Hash() uint64

	// TurnCount returns the number of Advance calls applied to reach this
	// state from the episode's initial state. The search driver's depth
	// guard (transposition.MaxDepth) counts its own descent depth and does
	// not read this value.
	TurnCount() int
}

// Serializer is an optional State capability: engines whose state can be
// flattened to a fixed-width byte string (spec.md §3 "engine state
// (opaque)", §6 "engine_state [S]") implement it so internal/selfplay can
// populate frame.Record.EngineState without the core knowing the engine's
// internal layout. The width must be constant across every State value a
// given engine produces; the frame codec is configured with that width
// once, out of band, via frame.NewCodec.
type Serializer interface {
	Serialize() []byte
}

// ActionToken is an opaque per-engine action identifier, as returned by
// State.Legal and consumed by State.Advance. The core never interprets its
// value; it only uses it as an index-free handle obtained at position
// token = Legal(player)[i].
type ActionToken uint8

// ErrIllegalAction is wrapped by State.Advance when a provided token does
// not appear on the legal list for its player (spec.md §7, "Engine
// invariant violation" -> "abort worker with diagnostic").
var ErrIllegalAction = errors.New("engine: action token not found on legal list")
