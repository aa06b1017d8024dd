package battle

import (
	"fmt"
	"slices"

	"github.com/WilliamJizh/dungeon-tactics/internal/game/grid"
)

// TerrainType classifies a terrain cell. Blocked cells are impassable;
// difficult, hazard, and cover currently only annotate the grid and do not
// modify range or resolution math.
type TerrainType string

const (
	TerrainBlocked   TerrainType = "blocked"
	TerrainDifficult TerrainType = "difficult"
	TerrainHazard    TerrainType = "hazard"
	TerrainCover     TerrainType = "cover"
)

// Valid reports whether tt is one of the four known terrain types.
func (tt TerrainType) Valid() bool {
	switch tt {
	case TerrainBlocked, TerrainDifficult, TerrainHazard, TerrainCover:
		return true
	}
	return false
}

// TerrainCell annotates one grid cell with a terrain type.
type TerrainCell struct {
	Col  int         `json:"col"`
	Row  int         `json:"row"`
	Type TerrainType `json:"type"`
}

// Phase is the coarse turn phase shown to the host UI.
type Phase string

const (
	PhasePlayer   Phase = "player"
	PhaseEnemy    Phase = "enemy"
	PhaseCutscene Phase = "cutscene"
)

// Result is the terminal outcome of a battle. Empty means still running.
type Result string

const (
	ResultVictory Result = "victory"
	ResultDefeat  Result = "defeat"
	ResultEscape  Result = "escape"
)

// TurnRecord tracks whose turn it is, the round count, the append-only
// combat log, and completion status.
//
// Invariant: TurnOrder is fixed at battle start and never reordered or
// resized by turn progression. Only reconciliation may change the roster,
// and doing so does not repair TurnOrder; lookups tolerate dangling IDs.
// Invariant: ActiveTokenID advances strictly forward through TurnOrder,
// wrapping to index 0 and incrementing Round on wrap.
type TurnRecord struct {
	Round         int      `json:"round"`
	Phase         Phase    `json:"phase"`
	TurnOrder     []string `json:"turnOrder"`
	ActiveTokenID string   `json:"activeTokenId"`
	Log           []string `json:"log"`
	IsComplete    bool     `json:"isComplete"`
	Result        Result   `json:"result,omitempty"`
}

// Rules carries the movement and attack range defaults handed down by the
// battle initializer for player-side tokens.
type Rules struct {
	PlayerMoveRange   int `json:"playerMoveRange"`
	PlayerAttackRange int `json:"playerAttackRange"`
}

// TacticalMap is one complete battle snapshot: grid, roster, terrain, and
// turn record. It is the unit of ownership (one instance per encounter) and
// the unit of reconciliation (an external authority replaces it wholesale).
type TacticalMap struct {
	MapImage string        `json:"mapImage,omitempty"`
	GridCols int           `json:"gridCols"`
	GridRows int           `json:"gridRows"`
	Tokens   []*Token      `json:"tokens"`
	Terrain  []TerrainCell `json:"terrain"`
	Combat   TurnRecord    `json:"combat"`
	Rules    Rules         `json:"rules"`
}

// TokenByID returns the roster token with the given ID, or nil.
func (m *TacticalMap) TokenByID(id string) *Token {
	for _, t := range m.Tokens {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// ActiveToken returns the token named by Combat.ActiveTokenID, or nil when
// the ID dangles (for example after a remove_token reconciliation event).
func (m *TacticalMap) ActiveToken() *Token {
	return m.TokenByID(m.Combat.ActiveTokenID)
}

// IsBlocked reports whether c carries blocked terrain.
func (m *TacticalMap) IsBlocked(c grid.Cell) bool {
	for _, tc := range m.Terrain {
		if tc.Col == c.Col && tc.Row == c.Row && tc.Type == TerrainBlocked {
			return true
		}
	}
	return false
}

// IsOccupied reports whether any token other than excludeID sits on c.
// Dead tokens still occupy their cell until removed from the roster.
func (m *TacticalMap) IsOccupied(c grid.Cell, excludeID string) bool {
	for _, t := range m.Tokens {
		if t.ID == excludeID {
			continue
		}
		if t.Col == c.Col && t.Row == c.Row {
			return true
		}
	}
	return false
}

// ReachableCells returns every cell t could move to this turn: in bounds,
// within t.MoveRange Manhattan distance, not t's own cell, not occupied by
// any other token, and not blocked terrain.
func (m *TacticalMap) ReachableCells(t *Token) []grid.Cell {
	return grid.ReachableCells(t.Cell(), t.MoveRange, m.GridCols, m.GridRows, func(c grid.Cell) bool {
		return m.IsOccupied(c, t.ID) || m.IsBlocked(c)
	})
}

// AppendLog appends one human-readable line to the combat log.
func (m *TacticalMap) AppendLog(format string, args ...any) {
	m.Combat.Log = append(m.Combat.Log, fmt.Sprintf(format, args...))
}

// Clone returns a deep copy of the snapshot. The reducer clones before every
// mutation so callers holding the previous snapshot never observe changes.
// Nil slices stay nil so a clone compares deep-equal to its source.
func (m *TacticalMap) Clone() *TacticalMap {
	cp := *m
	if m.Tokens != nil {
		cp.Tokens = make([]*Token, len(m.Tokens))
		for i, t := range m.Tokens {
			cp.Tokens[i] = t.Clone()
		}
	}
	cp.Terrain = slices.Clone(m.Terrain)
	cp.Combat.TurnOrder = slices.Clone(m.Combat.TurnOrder)
	cp.Combat.Log = slices.Clone(m.Combat.Log)
	return &cp
}
