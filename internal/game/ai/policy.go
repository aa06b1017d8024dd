// Package ai implements the opponent policy engine: a pure function mapping
// one non-player token plus the full battle state to one intended action.
//
// Dispatch is a closed switch over the token's AIPattern. Ties are never
// broken pseudo-randomly: candidate ordering follows the roster and the
// row-major reachable-cell order, so the first candidate found wins and the
// policy is fully deterministic.
package ai

import (
	"github.com/WilliamJizh/dungeon-tactics/internal/game/battle"
	"github.com/WilliamJizh/dungeon-tactics/internal/game/grid"
)

// guardRadius is how far a guard-objective token may drift from its
// objective before it moves back toward it.
const guardRadius = 2

// ComputeEnemyAction decides what the given non-player token does with its
// turn. It never mutates m.
//
// An unset pattern defaults to aggressive; an unrecognized pattern waits.
//
// Postcondition: the returned decision references only tokens and cells
// present in m at call time.
func ComputeEnemyAction(enemy *battle.Token, m *battle.TacticalMap) battle.EnemyDecision {
	pattern := enemy.AIPattern
	if pattern == "" {
		pattern = battle.PatternAggressive
	}

	switch pattern {
	case battle.PatternAggressive, battle.PatternDefensive:
		// Identical for now; defensive behavior diverges once terrain
		// modifiers land.
		return chaseNearest(enemy, m)
	case battle.PatternPatrol:
		return patrol(enemy)
	case battle.PatternGuardObjective:
		return guardObjective(enemy, m)
	default:
		return battle.EnemyDecision{Kind: battle.DecideWait}
	}
}

// chaseNearest attacks the first attackable target, or moves to the
// reachable cell closest to the nearest live opposing token, or waits when
// boxed in.
func chaseNearest(enemy *battle.Token, m *battle.TacticalMap) battle.EnemyDecision {
	if targets := battle.AttackableTargets(enemy, m.Tokens); len(targets) > 0 {
		return battle.EnemyDecision{Kind: battle.DecideAttack, TargetID: targets[0].ID}
	}

	nearest := nearestOpponent(enemy, m)
	if nearest == nil {
		return battle.EnemyDecision{Kind: battle.DecideWait}
	}

	if cell, ok := closestCellTo(m.ReachableCells(enemy), nearest.Cell()); ok {
		return battle.EnemyDecision{Kind: battle.DecideMove, Col: cell.Col, Row: cell.Row}
	}
	return battle.EnemyDecision{Kind: battle.DecideWait}
}

// patrol advances to the next waypoint on the token's patrol path. A token
// standing off-path heads for the first waypoint. Patrol tokens never
// attack, and they wait when the next waypoint is out of move range.
func patrol(enemy *battle.Token) battle.EnemyDecision {
	path := enemy.PatrolPath
	if len(path) == 0 {
		return battle.EnemyDecision{Kind: battle.DecideWait}
	}

	idx := -1
	for i, wp := range path {
		if wp == enemy.Cell() {
			idx = i
			break
		}
	}
	next := path[(idx+1)%len(path)]

	if grid.InMoveRange(enemy.Cell(), next, enemy.MoveRange) {
		return battle.EnemyDecision{Kind: battle.DecideMove, Col: next.Col, Row: next.Row}
	}
	return battle.EnemyDecision{Kind: battle.DecideWait}
}

// guardObjective attacks anything in range, otherwise stays within
// guardRadius of its objective, moving back toward it only when a reachable
// cell actually improves the distance.
func guardObjective(enemy *battle.Token, m *battle.TacticalMap) battle.EnemyDecision {
	var objective *battle.Token
	for _, t := range m.Tokens {
		if t.Faction == battle.FactionObjective {
			objective = t
			break
		}
	}
	if objective == nil {
		return battle.EnemyDecision{Kind: battle.DecideWait}
	}

	if targets := battle.AttackableTargets(enemy, m.Tokens); len(targets) > 0 {
		return battle.EnemyDecision{Kind: battle.DecideAttack, TargetID: targets[0].ID}
	}

	current := grid.ChebyshevDistance(enemy.Cell(), objective.Cell())
	if current > guardRadius {
		if cell, ok := closestCellTo(m.ReachableCells(enemy), objective.Cell()); ok {
			if grid.ChebyshevDistance(cell, objective.Cell()) < current {
				return battle.EnemyDecision{Kind: battle.DecideMove, Col: cell.Col, Row: cell.Row}
			}
		}
	}
	return battle.EnemyDecision{Kind: battle.DecideWait}
}

// nearestOpponent returns the live player or ally token closest to enemy by
// Chebyshev distance, first found on ties, or nil when none remain.
func nearestOpponent(enemy *battle.Token, m *battle.TacticalMap) *battle.Token {
	var nearest *battle.Token
	best := 0
	for _, t := range m.Tokens {
		if !t.Alive() {
			continue
		}
		if t.Faction != battle.FactionPlayer && t.Faction != battle.FactionAlly {
			continue
		}
		d := grid.ChebyshevDistance(enemy.Cell(), t.Cell())
		if nearest == nil || d < best {
			nearest = t
			best = d
		}
	}
	return nearest
}

// closestCellTo returns the cell in cells with minimum Chebyshev distance to
// goal, first found on ties. ok is false when cells is empty.
func closestCellTo(cells []grid.Cell, goal grid.Cell) (cell grid.Cell, ok bool) {
	best := 0
	for _, c := range cells {
		d := grid.ChebyshevDistance(c, goal)
		if !ok || d < best {
			cell = c
			best = d
			ok = true
		}
	}
	return cell, ok
}
