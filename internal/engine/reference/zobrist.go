package reference

import (
	"math/rand"

	"github.com/janpfeifer/pkmn-mcts/internal/encoding"
)

// zobristTables holds one independent random uint64 per (feature, value)
// pair Battle.Hash XORs together, per spec.md §4.4: "a Zobrist-style XOR
// combination of per-feature random tables (per-unit stats ratios,
// species, types, stat-boost levels, volatile flags, status×sleep-counter,
// PP buckets)". Filled once at package init from a fixed seed so hashes are
// reproducible across runs of the same binary (not across rebuilds with a
// different table -- that's fine, spec.md only requires the hash be stable
// within one engine instance's lifetime).
type zobristTables struct {
	species    [2][MaxTeamSize][]uint64
	hpBucket   [2][MaxTeamSize][18]uint64
	status     [2][MaxTeamSize][encoding.NumStatus]uint64
	ppBucket   [2][MaxTeamSize][encoding.MaxMoveSlots][5]uint64
	activeFlag [2][MaxTeamSize]uint64
	boost      [2][encoding.BoostFeatureDim][13]uint64
	confused   [2]uint64
}

var zobrist zobristTables

func init() {
	r := rand.New(rand.NewSource(0x706b6d6e))
	for side := 0; side < 2; side++ {
		for slot := 0; slot < MaxTeamSize; slot++ {
			zobrist.species[side][slot] = make([]uint64, len(Roster))
			for i := range zobrist.species[side][slot] {
				zobrist.species[side][slot][i] = r.Uint64()
			}
			for i := range zobrist.hpBucket[side][slot] {
				zobrist.hpBucket[side][slot][i] = r.Uint64()
			}
			for i := range zobrist.status[side][slot] {
				zobrist.status[side][slot][i] = r.Uint64()
			}
			for m := 0; m < encoding.MaxMoveSlots; m++ {
				for i := range zobrist.ppBucket[side][slot][m] {
					zobrist.ppBucket[side][slot][m][i] = r.Uint64()
				}
			}
			zobrist.activeFlag[side][slot] = r.Uint64()
		}
		for stat := 0; stat < encoding.BoostFeatureDim; stat++ {
			for i := range zobrist.boost[side][stat] {
				zobrist.boost[side][stat][i] = r.Uint64()
			}
		}
		zobrist.confused[side] = r.Uint64()
	}
}
