// Package reference is a small, self-contained in-memory implementation of
// the internal/engine.State contract (spec.md §6). It is deliberately not a
// faithful Gen-1 simulator -- real damage formulas, move lists and battle
// rules live in the out-of-scope external engine (SPEC_FULL.md §5) -- but
// it is enough to drive internal/search and internal/selfplay end to end
// and to exercise the qualitative shape of spec.md §8's scenarios (a
// guaranteed one-shot KO, sleep-counter propagation, a symmetric mirror
// match).
package reference

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/janpfeifer/pkmn-mcts/internal/encoding"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

// MaxTeamSize is the number of Pokémon per side this fixture supports: one
// active slot plus up to two benched.
const MaxTeamSize = 3

// StruggleSlot is the reserved move-slot index used when every real move
// is out of PP -- the Gen-1 "Struggle" fallback.
const StruggleSlot = 4

// Pokemon is one unit of a team, mutable in place by Advance.
type Pokemon struct {
	SpeciesIdx int
	MaxHP      int
	HP         int
	Status     encoding.Status
	Moves      [encoding.MaxMoveSlots]MoveInstance

	// Boosts only matter while the unit is active; they reset to 0 on
	// switch-out, matching Gen-1's stat-boost-resets-on-switch rule.
	Boosts [encoding.BoostFeatureDim]int8

	// Confused is a volatile, independent of Status (which only tracks the
	// four non-sleep conditions plus sleep/rest countdowns).
	Confused bool
}

// MoveInstance is one learned move slot.
type MoveInstance struct {
	MoveID int // index into MoveTable, or -1 for an empty slot.
	PP     int
}

func (p *Pokemon) fainted() bool { return p.HP <= 0 }

// Team is one side's roster.
type Team struct {
	Units  [MaxTeamSize]Pokemon
	Size   int // how many of Units are populated; 0 < Size <= MaxTeamSize.
	Active int // index into Units of the currently active (non-fainted, until both faint simultaneously) unit.
}

func (t *Team) allFainted() bool {
	for i := 0; i < t.Size; i++ {
		if !t.Units[i].fainted() {
			return false
		}
	}
	return true
}

// Battle is the reference engine.State implementation.
type Battle struct {
	Teams [2]Team
	turn  int
	rng   *rand.Rand
}

var _ engine.State = (*Battle)(nil)
var _ encoding.Featurizer = (*Battle)(nil)

// NewBattle builds a Battle from two already-populated teams.
func NewBattle(p1, p2 Team) *Battle {
	return &Battle{Teams: [2]Team{p1, p2}, rng: rand.New(rand.NewSource(1))}
}

// Clone implements engine.State.
func (b *Battle) Clone() engine.State {
	c := *b
	// rand.Rand holds internal state; give the clone an independent copy
	// seeded off the original so iterations exploring the same clone
	// don't share the exact same random stream.
	c.rng = rand.New(rand.NewSource(b.rng.Int63()))
	return &c
}

// SetRNGSeed implements engine.State.
func (b *Battle) SetRNGSeed(seed uint64) {
	b.rng = rand.New(rand.NewSource(int64(seed)))
}

// TurnCount implements engine.State.
func (b *Battle) TurnCount() int { return b.turn }

// IsTerminal implements engine.State.
func (b *Battle) IsTerminal() (bool, engine.Result) {
	p1Down := b.Teams[0].allFainted()
	p2Down := b.Teams[1].allFainted()
	switch {
	case p1Down && p2Down:
		return true, engine.Tie
	case p1Down:
		return true, engine.Loss
	case p2Down:
		return true, engine.Win
	default:
		return false, engine.Ongoing
	}
}

// Legal implements engine.State: one token per move slot still carrying PP,
// in slot order, or a single Struggle token if none do.
func (b *Battle) Legal(player engine.Player) []engine.ActionToken {
	team := &b.Teams[player]
	active := &team.Units[team.Active]
	var tokens []engine.ActionToken
	for i, m := range active.Moves {
		if m.MoveID >= 0 && m.PP > 0 {
			tokens = append(tokens, engine.ActionToken(i))
		}
	}
	if len(tokens) == 0 {
		return []engine.ActionToken{StruggleSlot}
	}
	return tokens
}

// Hash implements engine.State via the package-level Zobrist tables.
func (b *Battle) Hash() uint64 {
	var h uint64
	for side := 0; side < 2; side++ {
		team := &b.Teams[side]
		for slot := 0; slot < team.Size; slot++ {
			u := &team.Units[slot]
			h ^= zobrist.species[side][slot][u.SpeciesIdx]
			h ^= zobrist.hpBucket[side][slot][hpBucket(u.HP, u.MaxHP)]
			h ^= zobrist.status[side][slot][u.Status]
			for m, mv := range u.Moves {
				h ^= zobrist.ppBucket[side][slot][m][ppBucket(mv.PP)]
			}
			if slot == team.Active {
				h ^= zobrist.activeFlag[side][slot]
				for stat, boost := range u.Boosts {
					h ^= zobrist.boost[side][stat][boost+6]
				}
				if u.Confused {
					h ^= zobrist.confused[side]
				}
			}
		}
	}
	return h
}

func hpBucket(hp, maxHP int) int {
	if hp <= 0 {
		return 0
	}
	if maxHP <= 0 {
		return 1
	}
	b := hp * 16 / maxHP
	if b > 16 {
		b = 16
	}
	return b + 1 // reserve bucket 0 for "fainted".
}

func ppBucket(pp int) int {
	if pp > 4 {
		return 4
	}
	if pp < 0 {
		return 0
	}
	return pp
}

// Advance implements engine.State: applies the joint action, the supplied
// damage-roll override, and returns the chance-outcome tag of whatever
// stochastic branches were taken (miss rolls, damage rolls, status-induced
// flinches, confusion self-hits).
func (b *Battle) Advance(a1, a2 engine.ActionToken, override engine.CalcOverride) (engine.ChanceOutcome, error) {
	if !tokenIsLegal(b.Legal(engine.Player1), a1) {
		return engine.ChanceOutcome{}, errors.Wrapf(engine.ErrIllegalAction, "p1 token %d not legal", a1)
	}
	if !tokenIsLegal(b.Legal(engine.Player2), a2) {
		return engine.ChanceOutcome{}, errors.Wrapf(engine.ErrIllegalAction, "p2 token %d not legal", a2)
	}

	var outcome engine.ChanceOutcome
	record := func(tag byte, v uint8) {
		// Fold each stochastic decision into successive bytes of the
		// 16-byte outcome, cycling if more than 16 decisions happen in a
		// single turn (a generous cap for a 2-move-per-turn engine).
		idx := int(tag) % engine.ChanceOutcomeSize
		outcome[idx] ^= v
	}

	order := [2]engine.Player{engine.Player1, engine.Player2}
	speed0 := b.effectiveSpeed(engine.Player1)
	speed1 := b.effectiveSpeed(engine.Player2)
	if speed1 > speed0 || (speed1 == speed0 && b.rng.Intn(2) == 1) {
		order[0], order[1] = engine.Player2, engine.Player1
		record(0, 1)
	} else {
		record(0, 0)
	}

	tokens := [2]engine.ActionToken{a1, a2}
	rolls := [2]uint8{override.P1Roll, override.P2Roll}

	for step, player := range order {
		if b.teamOf(player).allFainted() || b.teamOf(player.Other()).allFainted() {
			// A prior move already ended the battle; don't process the
			// second mover.
			continue
		}
		token := tokens[player]
		roll := rolls[player]
		b.applyMove(player, token, roll, record, byte(1+step))
	}

	b.handleFaints(record)
	b.turn++
	return outcome, nil
}

func tokenIsLegal(legal []engine.ActionToken, tok engine.ActionToken) bool {
	for _, t := range legal {
		if t == tok {
			return true
		}
	}
	return false
}

func (b *Battle) teamOf(p engine.Player) *Team { return &b.Teams[p] }

func (b *Battle) effectiveSpeed(p engine.Player) int {
	team := b.teamOf(p)
	u := &team.Units[team.Active]
	base := Roster[u.SpeciesIdx].Base[3]
	stage := int(u.Boosts[3])
	return boostedStat(base, stage)
}

// boostedStat applies Gen-1's stage multiplier table (2/(2-n) for n<0,
// (2+n)/2 for n>=0, stages clamped to [-6,6]).
func boostedStat(base, stage int) int {
	if stage > 6 {
		stage = 6
	}
	if stage < -6 {
		stage = -6
	}
	if stage >= 0 {
		return base * (2 + stage) / 2
	}
	return base * 2 / (2 - stage)
}

// applyMove executes one side's chosen move, including miss/effect/damage
// rolls, recording each stochastic draw into the chance outcome via record.
func (b *Battle) applyMove(player engine.Player, token engine.ActionToken, roll uint8, record func(byte, uint8), tag byte) {
	team := b.teamOf(player)
	opp := b.teamOf(player.Other())
	attacker := &team.Units[team.Active]
	defender := &opp.Units[opp.Active]

	if attacker.fainted() {
		return
	}

	// Status that prevents moving outright.
	if attacker.Status == encoding.StatusFrozen {
		return
	}
	if sleepTurns, asleep := sleepRemaining(attacker.Status); asleep {
		if sleepTurns <= 1 {
			attacker.Status = encoding.StatusOK
		} else {
			attacker.Status = encoding.Status(int(encoding.StatusSleep1) + sleepTurns - 2)
		}
		record(tag, uint8(sleepTurns))
		return
	}
	if attacker.Status == encoding.StatusParalyzed {
		if b.rng.Intn(4) == 0 { // classic Gen-1 25% full-paralysis chance.
			record(tag, 1)
			return
		}
		record(tag, 0)
	}
	if attacker.Confused {
		if b.rng.Intn(2) == 0 { // 50% self-hit while confused.
			dmg := 1 + b.rng.Intn(max(1, attacker.MaxHP/8))
			attacker.HP -= dmg
			if attacker.HP < 0 {
				attacker.HP = 0
			}
			record(tag, 1)
			return
		}
		record(tag, 0)
	}

	move, ok := b.moveFor(attacker, token)
	if !ok {
		return // Struggle or an emptied slot: no-op in this fixture.
	}
	if move.MaxPP > 0 {
		attacker.Moves[token].PP--
	}

	hitRoll := b.rng.Float32()
	record(tag+8, uint8(hitRoll*255))
	if hitRoll > move.Accuracy {
		return // miss.
	}

	if move.Power > 0 {
		dmg := b.computeDamage(attacker, defender, move, roll, record, tag)
		defender.HP -= dmg
		if defender.HP < 0 {
			defender.HP = 0
		}
	}

	if move.Effect != EffectNone && !defender.fainted() {
		if move.EffectOnly || b.rng.Float32() < move.EffectChance {
			b.applyEffect(defender, move.Effect, record, tag)
		}
	}
}

func (b *Battle) moveFor(attacker *Pokemon, token engine.ActionToken) (MoveDef, bool) {
	if int(token) >= len(attacker.Moves) {
		return MoveDef{}, false
	}
	slot := attacker.Moves[token]
	if slot.MoveID < 0 || slot.MoveID >= len(MoveTable) {
		return MoveDef{}, false
	}
	return MoveTable[slot.MoveID], true
}

// computeDamage applies a simplified Gen-1-shaped damage formula, honoring
// the calc-override roll selector (spec.md §4.5 "Damage-roll clamping").
func (b *Battle) computeDamage(attacker, defender *Pokemon, move MoveDef, roll uint8, record func(byte, uint8), tag byte) int {
	if move.EffectOnly {
		return 0
	}
	if move.FixedCurrentHP {
		return defender.HP // Seismic Toss / Night Shade: fixed damage equal to current HP.
	}
	atkBase := Roster[attacker.SpeciesIdx].Base[1]
	defBase := Roster[defender.SpeciesIdx].Base[2]
	atk := boostedStat(atkBase, int(attacker.Boosts[0]))
	def := boostedStat(defBase, int(defender.Boosts[1]))

	base := (2*move.Power*atk/def)/50 + 2
	stab := float32(1)
	if move.Type == Roster[attacker.SpeciesIdx].Types[0] || move.Type == Roster[attacker.SpeciesIdx].Types[1] {
		stab = 1.5
	}
	typeMult := typeEffectiveness(move.Type, Roster[defender.SpeciesIdx].Types)

	multiplier := rollMultiplier(roll, b.rng)
	record(tag+4, uint8(multiplier*100))

	dmg := float32(base) * stab * typeMult * multiplier
	if dmg < 1 {
		dmg = 1
	}
	return int(dmg)
}

// rollMultiplier maps a calc-override byte to a damage-roll fraction in
// [0.85, 1.0], per spec.md §4.5's low/mid/high (or N-roll) scheme. 0xFF is
// the sentinel meaning "let the engine's own RNG pick" (used when the
// search driver hasn't set an override for this depth).
func rollMultiplier(roll uint8, rng *rand.Rand) float32 {
	const low, high = 0.85, 1.0
	if roll == 0xFF {
		return low + rng.Float32()*(high-low)
	}
	n := int(roll)
	if n <= 0 {
		return low
	}
	const steps = 16 // Gen-1 actually has 16 discrete rolls, 217..255/255.
	if n >= steps-1 {
		return high
	}
	return low + float32(n)*(high-low)/float32(steps-1)
}

func (b *Battle) applyEffect(defender *Pokemon, effect Effect, record func(byte, uint8), tag byte) {
	secondaryRoll := b.rng.Float32()
	record(tag+12, uint8(secondaryRoll*255))
	switch effect {
	case EffectSleep:
		if defender.Status == encoding.StatusOK {
			turns := 1 + b.rng.Intn(7)
			defender.Status = encoding.Status(int(encoding.StatusSleep1) + turns - 1)
		}
	case EffectParalyze:
		if defender.Status == encoding.StatusOK {
			defender.Status = encoding.StatusParalyzed
		}
	case EffectBurn:
		if defender.Status == encoding.StatusOK {
			defender.Status = encoding.StatusBurned
		}
	case EffectPoison:
		if defender.Status == encoding.StatusOK {
			defender.Status = encoding.StatusPoisoned
		}
	case EffectConfuse:
		defender.Confused = true
	}
}

// sleepRemaining reports, for a StatusSleepN value, how many turns
// (including this one) of sleep remain.
func sleepRemaining(s encoding.Status) (int, bool) {
	if s < encoding.StatusSleep1 || s > encoding.StatusSleep7 {
		return 0, false
	}
	return int(s-encoding.StatusSleep1) + 1, true
}

// handleFaints applies end-of-turn residual damage (burn/poison) and
// auto-switches in the next available bench unit for any side whose
// active unit just fainted.
func (b *Battle) handleFaints(record func(byte, uint8)) {
	for side := 0; side < 2; side++ {
		team := &b.Teams[side]
		active := &team.Units[team.Active]
		if active.fainted() {
			continue
		}
		switch active.Status {
		case encoding.StatusBurned, encoding.StatusPoisoned:
			dmg := max(1, active.MaxHP/8)
			active.HP -= dmg
			if active.HP < 0 {
				active.HP = 0
			}
		}
	}
	for side := 0; side < 2; side++ {
		team := &b.Teams[side]
		if team.Units[team.Active].fainted() {
			for i := 0; i < team.Size; i++ {
				if !team.Units[i].fainted() {
					team.Active = i
					record(byte(20+side), uint8(i))
					break
				}
			}
		}
	}
}

// Active implements encoding.Featurizer.
func (b *Battle) Active(player engine.Player) encoding.ActiveView {
	team := &b.Teams[player]
	return unitActiveView(&team.Units[team.Active])
}

// Bench implements encoding.Featurizer.
func (b *Battle) Bench(player engine.Player) []encoding.UnitView {
	team := &b.Teams[player]
	var out []encoding.UnitView
	for i := 0; i < team.Size; i++ {
		if i == team.Active {
			continue
		}
		out = append(out, unitView(&team.Units[i]))
	}
	return out
}

func unitView(u *Pokemon) encoding.UnitView {
	species := Roster[u.SpeciesIdx]
	v := encoding.UnitView{Status: u.Status, Types: species.Types}
	maxHP := u.MaxHP
	if maxHP <= 0 {
		maxHP = 1
	}
	v.Stats[0] = float32(u.HP) / float32(maxHP)
	for i := 1; i < encoding.StatsFeatureDim; i++ {
		v.Stats[i] = float32(species.Base[i]) / 255
	}
	for i, m := range u.Moves {
		v.Moves[i] = encoding.MoveSlot{MoveID: m.MoveID, HasPP: m.MoveID >= 0 && m.PP > 0}
	}
	return v
}

func unitActiveView(u *Pokemon) encoding.ActiveView {
	av := encoding.ActiveView{UnitView: unitView(u)}
	for i, boost := range u.Boosts {
		av.Boosts[i] = float32(boost)
	}
	av.Volatiles[0] = u.Confused
	return av
}
