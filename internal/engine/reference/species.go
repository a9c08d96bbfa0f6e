package reference

// Species is a small fixed roster standing in for the real Gen-1 Pokédex
// (spec.md §1 treats the concrete game engine as out of scope; this is a
// fixture, not a faithful simulator -- see SPEC_FULL.md §5).
type Species struct {
	Name  string
	Types [2]int // index into typeChart; -1 for the unused second slot.
	// Base stats, in the order internal/encoding.UnitView.Stats expects:
	// hp, attack, defense, speed, special.
	Base [5]int
}

// Type indices into the small type chart below. Only a handful of the 15
// slots internal/encoding.TypeVocabSize reserves are actually used by this
// fixture roster; the rest stay neutral.
const (
	TypeNormal = iota
	TypeFire
	TypeWater
	TypeElectric
	TypeGrass
	TypePsychic
)

// typeChart[attacker][defender] is the damage multiplier. Unlisted pairs
// default to 1 (neutral).
var typeChart = map[[2]int]float32{
	{TypeWater, TypeFire}:      2,
	{TypeFire, TypeWater}:      0.5,
	{TypeFire, TypeGrass}:      2,
	{TypeGrass, TypeFire}:      0.5,
	{TypeGrass, TypeWater}:     2,
	{TypeWater, TypeGrass}:     0.5,
	{TypeElectric, TypeWater}:  2,
	{TypeElectric, TypeGrass}:  0.5,
	{TypePsychic, TypePsychic}: 0.5,
}

func typeEffectiveness(attackType int, defenderTypes [2]int) float32 {
	mult := float32(1)
	for _, def := range defenderTypes {
		if def < 0 {
			continue
		}
		if m, ok := typeChart[[2]int{attackType, def}]; ok {
			mult *= m
		}
	}
	return mult
}

// Roster is the fixed species table this fixture draws teams from.
var Roster = []Species{
	{Name: "Charmock", Types: [2]int{TypeFire, -1}, Base: [5]int{78, 84, 78, 100, 85}},
	{Name: "Aquabble", Types: [2]int{TypeWater, -1}, Base: [5]int{79, 83, 100, 78, 85}},
	{Name: "Voltikit", Types: [2]int{TypeElectric, -1}, Base: [5]int{60, 55, 50, 130, 95}},
	{Name: "Leaflit", Types: [2]int{TypeGrass, -1}, Base: [5]int{90, 82, 83, 80, 100}},
	{Name: "Mindrel", Types: [2]int{TypePsychic, -1}, Base: [5]int{65, 50, 45, 90, 135}},
	{Name: "Roundell", Types: [2]int{TypeNormal, -1}, Base: [5]int{250, 5, 5, 50, 50}},
}
