package reference

import "github.com/janpfeifer/pkmn-mcts/internal/encoding"

// NewPokemon builds a full-health Pokemon of the given roster species with
// the given moves (each starting at max PP), for tests and the build
// package's fixture team generator.
func NewPokemon(speciesIdx int, moveIDs ...int) Pokemon {
	species := Roster[speciesIdx]
	maxHP := species.Base[0]
	p := Pokemon{SpeciesIdx: speciesIdx, MaxHP: maxHP, HP: maxHP, Status: encoding.StatusOK}
	for i := range p.Moves {
		p.Moves[i].MoveID = -1
	}
	for i, id := range moveIDs {
		if i >= len(p.Moves) {
			break
		}
		p.Moves[i] = MoveInstance{MoveID: id, PP: MoveTable[id].MaxPP}
	}
	return p
}

// NewTeam builds a Team from 1..MaxTeamSize Pokemon, the first one active.
func NewTeam(units ...Pokemon) Team {
	t := Team{Size: len(units)}
	copy(t.Units[:], units)
	return t
}
