package reference

// Effect is a status/volatile a move inflicts on its target, beyond raw
// damage.
type Effect int

const (
	EffectNone Effect = iota
	EffectSleep
	EffectParalyze
	EffectBurn
	EffectPoison
	EffectConfuse
)

// MoveDef is a fixture move definition.
type MoveDef struct {
	Name       string
	Type       int
	Power      int // 0 for status moves.
	Accuracy   float32
	Effect     Effect
	EffectOnly bool // true for pure-status moves that deal no damage (e.g. Sleep Powder).
	// FixedCurrentHP marks moves whose damage equals the target's current
	// HP exactly, regardless of the damage-roll override (Seismic Toss,
	// Night Shade): spec.md §8 scenario 1 relies on this to express a
	// guaranteed one-shot KO.
	FixedCurrentHP bool
	// EffectChance is the probability Effect applies after a successful
	// hit, for damaging moves with a secondary effect (e.g. Body Slam's
	// 30% paralysis). Ignored for EffectOnly moves, whose Accuracy already
	// gates the effect.
	EffectChance float32
	MaxPP        int
}

// MoveTable is the fixed move roster, indexed by MoveID (also the index
// used by internal/encoding.MoveSlot.MoveID / the multi-hot move-slot
// feature).
var MoveTable = []MoveDef{
	{Name: "Ember", Type: TypeFire, Power: 40, Accuracy: 1.0, MaxPP: 25},
	{Name: "Water Gun", Type: TypeWater, Power: 40, Accuracy: 1.0, MaxPP: 25},
	{Name: "Thunderbolt", Type: TypeElectric, Power: 90, Accuracy: 1.0, MaxPP: 15},
	{Name: "Vine Whip", Type: TypeGrass, Power: 35, Accuracy: 1.0, MaxPP: 10},
	{Name: "Psybeam", Type: TypePsychic, Power: 65, Accuracy: 1.0, Effect: EffectConfuse, EffectChance: 0.1, MaxPP: 20},
	{Name: "Tackle", Type: TypeNormal, Power: 35, Accuracy: 1.0, MaxPP: 35},
	{Name: "Sleep Powder", Type: TypeGrass, Accuracy: 0.75, Effect: EffectSleep, EffectOnly: true, MaxPP: 15},
	{Name: "Thunder Wave", Type: TypeElectric, Accuracy: 1.0, Effect: EffectParalyze, EffectOnly: true, MaxPP: 20},
	{Name: "Will-O-Wisp", Type: TypeFire, Accuracy: 0.85, Effect: EffectBurn, EffectOnly: true, MaxPP: 15},
	{Name: "Poison Powder", Type: TypeGrass, Accuracy: 0.75, Effect: EffectPoison, EffectOnly: true, MaxPP: 35},
	{Name: "Seismic Toss", Type: TypeNormal, Power: 1, Accuracy: 1.0, FixedCurrentHP: true, MaxPP: 20},
	{Name: "Body Slam", Type: TypeNormal, Power: 85, Accuracy: 1.0, Effect: EffectParalyze, EffectChance: 0.3, MaxPP: 15},
}

// MoveID constants for the scenario-critical moves of spec.md §8's
// end-to-end table, so tests can reference them by name instead of a raw
// table index.
const (
	MoveEmber = iota
	MoveWaterGun
	MoveThunderbolt
	MoveVineWhip
	MovePsybeam
	MoveTackle
	MoveSleepPowder
	MoveThunderWave
	MoveWillOWisp
	MovePoisonPowder
	MoveSeismicToss
	MoveBodySlam
)
