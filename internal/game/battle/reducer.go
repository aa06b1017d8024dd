package battle

import (
	"go.uber.org/zap"

	"github.com/WilliamJizh/dungeon-tactics/internal/game/dice"
)

// ActionType identifies one discrete reducer action.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown       ActionType = iota // zero value; intentionally invalid
	ActionMove                            // reposition the named token
	ActionAttack                          // resolve one attack between two tokens
	ActionEndTurn                         // advance the active token through the turn order
	ActionEnemyTurn                       // run the opponent policy for the active enemy token
	ActionApplyExternal                   // wholesale snapshot replacement (reconciliation)
)

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionEndTurn:
		return "end_turn"
	case ActionEnemyTurn:
		return "enemy_turn"
	case ActionApplyExternal:
		return "apply_external"
	default:
		return "unknown"
	}
}

// Action is one reducer dispatch. Only the fields for the given Type are
// read; the rest are ignored.
type Action struct {
	Type ActionType

	// ActionMove
	TokenID  string
	Col, Row int

	// ActionAttack
	AttackerID string
	TargetID   string

	// ActionApplyExternal
	Snapshot *TacticalMap
}

// DecisionKind is what an opponent policy chose to do with its turn.
type DecisionKind int

const (
	DecideWait DecisionKind = iota
	DecideMove
	DecideAttack
)

// EnemyDecision is one intended action for a non-player token.
type EnemyDecision struct {
	Kind     DecisionKind
	TargetID string // DecideAttack
	Col, Row int    // DecideMove
}

// EnemyPolicy maps one non-player token plus the full battle state to one
// intended action. Implementations must be pure and read-only over m.
type EnemyPolicy func(enemy *Token, m *TacticalMap) EnemyDecision

// Reducer applies discrete actions to battle snapshots. It holds the
// injected randomness source and the opponent policy; it holds no battle
// state of its own, so one Reducer may serve any number of encounters.
type Reducer struct {
	src    dice.Source
	policy EnemyPolicy
	logger *zap.Logger
}

// NewReducer creates a Reducer.
//
// Precondition: src must be non-nil. policy may be nil, in which case every
// enemy turn resolves as a wait. logger may be nil (no-op logger).
func NewReducer(src dice.Source, policy EnemyPolicy, logger *zap.Logger) *Reducer {
	if src == nil {
		panic("battle: NewReducer requires a non-nil dice source")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reducer{src: src, policy: policy, logger: logger}
}

// Reduce applies one action to s and returns the resulting snapshot. The
// input snapshot is never mutated: mutating paths clone first, and every
// no-op path returns s itself so callers can detect no-ops by pointer
// identity.
//
// No-op paths: an unknown action type, an action naming a token absent from
// the roster, any roster action dispatched after completion, ActionEnemyTurn
// while the active token is not an enemy, and ActionApplyExternal with a nil
// snapshot. Legality of moves and attack targets is advisory: the reducer
// does not validate dispatches against ReachableCells or AttackableTargets.
func (r *Reducer) Reduce(s *TacticalMap, a Action) *TacticalMap {
	if a.Type == ActionApplyExternal {
		if a.Snapshot == nil {
			return s
		}
		r.logger.Debug("reconciliation applied",
			zap.Int("round", a.Snapshot.Combat.Round),
			zap.Bool("complete", a.Snapshot.Combat.IsComplete),
		)
		return a.Snapshot.Clone()
	}

	// Terminal guard: once complete, no roster action mutates the state.
	if s.Combat.IsComplete {
		return s
	}

	switch a.Type {
	case ActionMove:
		if s.TokenByID(a.TokenID) == nil {
			return s
		}
		next := s.Clone()
		r.applyMove(next, next.TokenByID(a.TokenID), a.Col, a.Row)
		return next

	case ActionAttack:
		if s.TokenByID(a.AttackerID) == nil || s.TokenByID(a.TargetID) == nil {
			return s
		}
		next := s.Clone()
		r.applyAttack(next, next.TokenByID(a.AttackerID), next.TokenByID(a.TargetID))
		return next

	case ActionEndTurn:
		next := s.Clone()
		if !advanceTurn(next) {
			return s
		}
		return next

	case ActionEnemyTurn:
		active := s.ActiveToken()
		if active == nil || active.Faction != FactionEnemy {
			return s
		}
		next := s.Clone()
		r.applyEnemyTurn(next, next.TokenByID(active.ID))
		return next
	}

	return s
}

// applyMove repositions t and marks it moved. Movement alone cannot end
// combat, so no end check runs here.
func (r *Reducer) applyMove(m *TacticalMap, t *Token, col, row int) {
	t.Col = col
	t.Row = row
	t.HasMoved = true
	m.AppendLog("%s moves to (%d, %d).", t.Name, col, row)
	r.logger.Debug("token moved",
		zap.String("token", t.ID),
		zap.Int("col", col),
		zap.Int("row", row),
	)
}

// applyAttack resolves one attack, applies damage, and runs the combat-end
// check. When the check fires, the state becomes terminal immediately and no
// further turn advancement happens in the same dispatch.
func (r *Reducer) applyAttack(m *TacticalMap, attacker, target *Token) {
	result := ResolveAttack(attacker, target, r.src)
	target.ApplyDamage(result.Damage)
	attacker.HasActed = true
	m.AppendLog("%s", result.Narrative)
	r.logger.Debug("attack resolved",
		zap.String("attacker", attacker.ID),
		zap.String("target", target.ID),
		zap.Int("roll", result.Roll),
		zap.Int("total", result.Total),
		zap.Bool("hit", result.Hit),
		zap.Int("damage", result.Damage),
	)

	if outcome := CheckCombatEnd(m); outcome != "" {
		m.Combat.IsComplete = true
		m.Combat.Result = outcome
		switch outcome {
		case ResultVictory:
			m.AppendLog("Victory! All enemies have fallen.")
		case ResultDefeat:
			m.AppendLog("Defeat! The party has fallen.")
		}
	}
}

// applyEnemyTurn runs the opponent policy for the active enemy token,
// applies the chosen action exactly as ActionMove/ActionAttack would, and
// then advances the turn. If the attack ends combat the terminal state is
// left as-is and the turn does not advance.
func (r *Reducer) applyEnemyTurn(m *TacticalMap, enemy *Token) {
	decision := EnemyDecision{Kind: DecideWait}
	if r.policy != nil {
		decision = r.policy(enemy, m)
	}

	switch decision.Kind {
	case DecideMove:
		r.applyMove(m, enemy, decision.Col, decision.Row)
	case DecideAttack:
		if target := m.TokenByID(decision.TargetID); target != nil {
			r.applyAttack(m, enemy, target)
		}
	case DecideWait:
		m.AppendLog("%s waits.", enemy.Name)
	}

	if !m.Combat.IsComplete {
		advanceTurn(m)
	}
}

// advanceTurn moves ActiveTokenID to the next ID in TurnOrder, wrapping to
// index 0 and incrementing Round on wrap. IDs that no longer resolve to a
// roster token (left dangling by reconciliation) are skipped; the scan is
// bounded by the turn order length. The new active token's per-turn flags
// reset, and Phase follows its faction: enemy tokens get the enemy phase,
// every other faction acts in the player phase.
//
// Returns false, leaving m untouched aside from the scan, when TurnOrder is
// empty or no ID in it resolves.
func advanceTurn(m *TacticalMap) bool {
	order := m.Combat.TurnOrder
	if len(order) == 0 {
		return false
	}

	idx := -1
	for i, id := range order {
		if id == m.Combat.ActiveTokenID {
			idx = i
			break
		}
	}

	round := m.Combat.Round
	for range order {
		idx = (idx + 1) % len(order)
		if idx == 0 {
			round++
		}
		t := m.TokenByID(order[idx])
		if t == nil {
			continue
		}
		m.Combat.ActiveTokenID = t.ID
		m.Combat.Round = round
		t.HasMoved = false
		t.HasActed = false
		if t.Faction == FactionEnemy {
			m.Combat.Phase = PhaseEnemy
		} else {
			m.Combat.Phase = PhasePlayer
		}
		return true
	}
	return false
}
