// Package events implements the authoritative side of the reconciliation
// channel: the narrative layer submits an ordered batch of semantic events,
// and Apply folds them into a copy of the current snapshot, returning a
// complete new snapshot rather than a diff. The engine then ingests that
// snapshot wholesale, discarding any local in-flight mutations.
package events

import "github.com/WilliamJizh/dungeon-tactics/internal/game/battle"

// Kind is the event discriminator. The wire names match what the narrative
// layer emits.
type Kind string

const (
	KindModifyHP    Kind = "modify_hp"
	KindAddToken    Kind = "add_token"
	KindRemoveToken Kind = "remove_token"
	KindAddTerrain  Kind = "add_terrain"
	KindLogMessage  Kind = "log_message"
	KindEndCombat   Kind = "end_combat"
)

// Event is one semantic mutation from the narrative layer. Only the fields
// for the given Kind are read.
type Event struct {
	Kind Kind `json:"type"`

	// KindModifyHP, KindRemoveToken
	TokenID string `json:"tokenId,omitempty"`
	// KindModifyHP
	Delta int `json:"delta,omitempty"`

	// KindAddToken
	Token *battle.Token `json:"token,omitempty"`

	// KindAddTerrain
	Col         int                `json:"col,omitempty"`
	Row         int                `json:"row,omitempty"`
	TerrainType battle.TerrainType `json:"terrainType,omitempty"`

	// KindLogMessage, KindEndCombat
	Message string `json:"message,omitempty"`
	// KindEndCombat
	Result battle.Result `json:"result,omitempty"`
}

// Apply folds batch into a copy of m in order and returns the new snapshot.
// The input snapshot is never mutated. Events naming a token absent from the
// roster, and events of unknown kind, are skipped.
//
// Per-kind semantics:
//   - modify_hp: adds Delta to the token's HP, clamped to [0, MaxHP].
//   - add_token: appends a copy of the token to the roster and its ID to the
//     turn order, so the newcomer gets turns once the order wraps to it.
//   - remove_token: deletes the token from the roster. The turn order is
//     left alone; turn advancement skips the dangling ID.
//   - add_terrain: appends one terrain cell.
//   - log_message: appends one line to the combat log.
//   - end_combat: sets the terminal result and appends Message to the log.
func Apply(m *battle.TacticalMap, batch []Event) *battle.TacticalMap {
	next := m.Clone()
	for _, ev := range batch {
		switch ev.Kind {
		case KindModifyHP:
			t := next.TokenByID(ev.TokenID)
			if t == nil {
				continue
			}
			t.HP += ev.Delta
			if t.HP < 0 {
				t.HP = 0
			}
			if t.HP > t.MaxHP {
				t.HP = t.MaxHP
			}

		case KindAddToken:
			if ev.Token == nil || ev.Token.ID == "" {
				continue
			}
			if next.TokenByID(ev.Token.ID) != nil {
				continue
			}
			next.Tokens = append(next.Tokens, ev.Token.Clone())
			next.Combat.TurnOrder = append(next.Combat.TurnOrder, ev.Token.ID)

		case KindRemoveToken:
			for i, t := range next.Tokens {
				if t.ID == ev.TokenID {
					next.Tokens = append(next.Tokens[:i], next.Tokens[i+1:]...)
					break
				}
			}

		case KindAddTerrain:
			if !ev.TerrainType.Valid() {
				continue
			}
			next.Terrain = append(next.Terrain, battle.TerrainCell{
				Col:  ev.Col,
				Row:  ev.Row,
				Type: ev.TerrainType,
			})

		case KindLogMessage:
			if ev.Message != "" {
				next.AppendLog("%s", ev.Message)
			}

		case KindEndCombat:
			next.Combat.IsComplete = true
			next.Combat.Result = ev.Result
			if ev.Message != "" {
				next.AppendLog("%s", ev.Message)
			}
		}
	}
	return next
}
