package reference

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/janpfeifer/pkmn-mcts/internal/encoding"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

var _ engine.Serializer = (*Battle)(nil)

// unitBytes is the fixed per-Pokemon width Serialize writes: SpeciesIdx(2)
// + MaxHP(2) + HP(2) + Status(1) + Moves[MaxMoveSlots]*(MoveID(2)+PP(1))(12)
// + Boosts[BoostFeatureDim](6) + Confused(1).
const unitBytes = 2 + 2 + 2 + 1 + 3*4 + 6 + 1

// teamBytes is one side's fixed width: Size(1) + Active(1) + MaxTeamSize units.
const teamBytes = 1 + 1 + MaxTeamSize*unitBytes

// StateSize is the fixed serialized byte width of a Battle (frame.Codec's
// S, spec.md §6): two teams plus a turn counter.
const StateSize = 2*teamBytes + 2

// Serialize implements the frame.Record.EngineState contract: a fixed-width,
// self-contained snapshot sufficient for DeserializeBattle to reconstruct
// the exact state NewBattle + the recorded Advance replay would reach.
// The engine's internal RNG is not part of the snapshot -- SetRNGSeed is
// always called before the first Advance of a replay, per spec.md §4.5.
func (b *Battle) Serialize() []byte {
	out := make([]byte, StateSize)
	off := 0
	for side := 0; side < 2; side++ {
		off = encodeTeam(out, off, &b.Teams[side])
	}
	binary.LittleEndian.PutUint16(out[off:], uint16(b.turn))
	return out
}

func encodeTeam(out []byte, off int, t *Team) int {
	out[off] = byte(t.Size)
	off++
	out[off] = byte(t.Active)
	off++
	for i := 0; i < MaxTeamSize; i++ {
		off = encodeUnit(out, off, &t.Units[i])
	}
	return off
}

func encodeUnit(out []byte, off int, u *Pokemon) int {
	binary.LittleEndian.PutUint16(out[off:], uint16(u.SpeciesIdx))
	off += 2
	binary.LittleEndian.PutUint16(out[off:], uint16(u.MaxHP))
	off += 2
	binary.LittleEndian.PutUint16(out[off:], uint16(u.HP))
	off += 2
	out[off] = byte(u.Status)
	off++
	for _, m := range u.Moves {
		binary.LittleEndian.PutUint16(out[off:], uint16(int16(m.MoveID)))
		off += 2
		out[off] = byte(m.PP)
		off++
	}
	for _, boost := range u.Boosts {
		out[off] = byte(boost)
		off++
	}
	if u.Confused {
		out[off] = 1
	}
	off++
	return off
}

// DeserializeBattle reconstructs a Battle from Serialize's output. The
// returned Battle's RNG is freshly seeded (callers always call SetRNGSeed
// before the first Advance, per the search driver's own contract).
func DeserializeBattle(data []byte) (*Battle, error) {
	if len(data) != StateSize {
		return nil, errors.Errorf("reference: serialized state is %d bytes, want %d", len(data), StateSize)
	}
	var b Battle
	off := 0
	for side := 0; side < 2; side++ {
		off = decodeTeam(data, off, &b.Teams[side])
	}
	b.turn = int(binary.LittleEndian.Uint16(data[off:]))
	b.SetRNGSeed(1)
	return &b, nil
}

func decodeTeam(data []byte, off int, t *Team) int {
	t.Size = int(data[off])
	off++
	t.Active = int(data[off])
	off++
	for i := 0; i < MaxTeamSize; i++ {
		off = decodeUnit(data, off, &t.Units[i])
	}
	return off
}

func decodeUnit(data []byte, off int, u *Pokemon) int {
	u.SpeciesIdx = int(binary.LittleEndian.Uint16(data[off:]))
	off += 2
	u.MaxHP = int(binary.LittleEndian.Uint16(data[off:]))
	off += 2
	u.HP = int(binary.LittleEndian.Uint16(data[off:]))
	off += 2
	u.Status = encoding.Status(data[off])
	off++
	for i := range u.Moves {
		u.Moves[i].MoveID = int(int16(binary.LittleEndian.Uint16(data[off:])))
		off += 2
		u.Moves[i].PP = int(data[off])
		off++
	}
	for i := range u.Boosts {
		u.Boosts[i] = int8(data[off])
		off++
	}
	u.Confused = data[off] != 0
	off++
	return off
}
