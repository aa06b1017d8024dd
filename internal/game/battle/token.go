// Package battle implements the tactical combat state machine: the token and
// terrain model, attack resolution, combat-end detection, and the reducer
// that applies one discrete action at a time to a battle snapshot.
package battle

import "github.com/WilliamJizh/dungeon-tactics/internal/game/grid"

// Faction classifies a token's allegiance on the battle grid.
type Faction string

const (
	FactionPlayer    Faction = "player"
	FactionEnemy     Faction = "enemy"
	FactionAlly      Faction = "ally"
	FactionObjective Faction = "objective"
	FactionNPC       Faction = "npc"
)

// Valid reports whether f is one of the five known factions.
func (f Faction) Valid() bool {
	switch f {
	case FactionPlayer, FactionEnemy, FactionAlly, FactionObjective, FactionNPC:
		return true
	}
	return false
}

// Hostile reports whether this faction counts as an opposing side to other.
// Objective tokens are never hostile to anything.
func (f Faction) Hostile(other Faction) bool {
	if f == FactionObjective || other == FactionObjective {
		return false
	}
	return f != other
}

// AIPattern selects the opponent policy used to drive a non-player token.
// The empty pattern defaults to aggressive at dispatch time.
type AIPattern string

const (
	PatternAggressive     AIPattern = "aggressive"
	PatternDefensive      AIPattern = "defensive"
	PatternPatrol         AIPattern = "patrol"
	PatternGuardObjective AIPattern = "guard-objective"
)

// Token is one combatant on the battle grid. Identity is the stable string
// ID used for all cross-references: turn order, targeting, event payloads.
//
// Invariant: 0 <= HP <= MaxHP. HP == 0 means dead, but the token stays on
// the roster until an explicit removal event.
type Token struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Sprite  string  `json:"sprite,omitempty"`
	Faction Faction `json:"faction"`

	Col int `json:"col"`
	Row int `json:"row"`

	HP    int `json:"hp"`
	MaxHP int `json:"maxHp"`

	Attack      int `json:"attack"`
	Defense     int `json:"defense"`
	MoveRange   int `json:"moveRange"`
	AttackRange int `json:"attackRange"`

	// AIPattern is only meaningful for non-player factions.
	AIPattern AIPattern `json:"aiPattern,omitempty"`
	// PatrolPath is the ordered waypoint list for PatternPatrol tokens.
	PatrolPath []grid.Cell `json:"patrolPath,omitempty"`

	// HasMoved and HasActed gate repeat actions within a turn. They reset
	// only when this token becomes the active token again.
	HasMoved bool `json:"hasMoved"`
	HasActed bool `json:"hasActed"`
}

// Alive reports whether the token can still act or be targeted.
func (t *Token) Alive() bool { return t.HP > 0 }

// Cell returns the token's current grid cell.
func (t *Token) Cell() grid.Cell { return grid.Cell{Col: t.Col, Row: t.Row} }

// ApplyDamage reduces HP by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: HP >= 0.
func (t *Token) ApplyDamage(amount int) {
	t.HP -= amount
	if t.HP < 0 {
		t.HP = 0
	}
}

// Clone returns a deep copy of the token.
func (t *Token) Clone() *Token {
	cp := *t
	if t.PatrolPath != nil {
		cp.PatrolPath = make([]grid.Cell, len(t.PatrolPath))
		copy(cp.PatrolPath, t.PatrolPath)
	}
	return &cp
}
