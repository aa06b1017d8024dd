package battle

import (
	"fmt"

	"github.com/WilliamJizh/dungeon-tactics/internal/game/dice"
	"github.com/WilliamJizh/dungeon-tactics/internal/game/grid"
)

// AttackableTargets returns every token the attacker could attack right now:
// alive, on an opposing faction, not an objective, and within the attacker's
// attack range by Chebyshev distance. Order follows the roster, so callers
// that take the first candidate are deterministic.
func AttackableTargets(attacker *Token, tokens []*Token) []*Token {
	var targets []*Token
	for _, t := range tokens {
		if t.ID == attacker.ID || !t.Alive() {
			continue
		}
		if t.Faction == attacker.Faction || t.Faction == FactionObjective {
			continue
		}
		if !grid.InAttackRange(attacker.Cell(), t.Cell(), attacker.AttackRange) {
			continue
		}
		targets = append(targets, t)
	}
	return targets
}

// AttackResult holds the full breakdown of one resolved attack, including a
// one-line narrative whose arithmetic matches the numeric fields exactly.
type AttackResult struct {
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
	Roll       int    `json:"roll"`     // raw d20 result
	Modifier   int    `json:"modifier"` // floor((attack - 10) / 2)
	Total      int    `json:"total"`    // Roll + Modifier
	Defense    int    `json:"defense"`  // target defense the total was checked against
	Hit        bool   `json:"hit"`
	Damage     int    `json:"damage"` // 0 on a miss, >= 1 on a hit
	Narrative  string `json:"narrative"`
}

// ResolveAttack rolls one attack from attacker against target.
//
// Attack roll: d20 + floor((attack - 10) / 2), a hit when the total meets or
// exceeds the target's defense. Damage on a hit: floor(attack / 2) + 1d4,
// minimum 1. This is the only randomized operation in the engine; callers
// must not assume determinism across calls with identical arguments.
//
// Precondition: attacker, target, and src must be non-nil.
// Postcondition: Damage == 0 iff Hit is false; Damage >= 1 when Hit is true.
func ResolveAttack(attacker, target *Token, src dice.Source) AttackResult {
	roll := dice.Die(src, 20)
	modifier := floorDiv(attacker.Attack-10, 2)
	total := roll + modifier
	hit := total >= target.Defense

	damage := 0
	if hit {
		damage = floorDiv(attacker.Attack, 2) + dice.Die(src, 4)
		if damage < 1 {
			damage = 1
		}
	}

	r := AttackResult{
		AttackerID: attacker.ID,
		TargetID:   target.ID,
		Roll:       roll,
		Modifier:   modifier,
		Total:      total,
		Defense:    target.Defense,
		Hit:        hit,
		Damage:     damage,
	}
	if hit {
		r.Narrative = fmt.Sprintf("%s attacks %s: d20 %d %+d = %d vs DEF %d, hit for %d damage!",
			attacker.Name, target.Name, roll, modifier, total, target.Defense, damage)
	} else {
		r.Narrative = fmt.Sprintf("%s attacks %s: d20 %d %+d = %d vs DEF %d, miss.",
			attacker.Name, target.Name, roll, modifier, total, target.Defense)
	}
	return r
}

// floorDiv divides a by b rounding toward negative infinity, matching the
// floor semantics of the stat formulas for negative attack scores.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
