package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilliamJizh/dungeon-tactics/internal/game/battle"
	"github.com/WilliamJizh/dungeon-tactics/internal/game/events"
)

func fixture() *battle.TacticalMap {
	return &battle.TacticalMap{
		GridCols: 8,
		GridRows: 8,
		Tokens: []*battle.Token{
			{ID: "p1", Name: "Kara", Faction: battle.FactionPlayer, Col: 1, Row: 1, HP: 20, MaxHP: 20},
			{ID: "e1", Name: "Gnarl", Faction: battle.FactionEnemy, Col: 5, Row: 5, HP: 12, MaxHP: 12},
		},
		Combat: battle.TurnRecord{
			Round:         1,
			Phase:         battle.PhasePlayer,
			TurnOrder:     []string{"p1", "e1"},
			ActiveTokenID: "p1",
			Log:           []string{},
		},
	}
}

// TestApply_NeverMutatesInput: the snapshot handed in stays untouched no
// matter what the batch does.
func TestApply_NeverMutatesInput(t *testing.T) {
	m := fixture()
	before := m.Clone()

	events.Apply(m, []events.Event{
		{Kind: events.KindModifyHP, TokenID: "p1", Delta: -5},
		{Kind: events.KindRemoveToken, TokenID: "e1"},
		{Kind: events.KindEndCombat, Result: battle.ResultDefeat},
	})
	assert.Equal(t, before, m)
}

func TestApply_ModifyHP(t *testing.T) {
	m := fixture()

	next := events.Apply(m, []events.Event{{Kind: events.KindModifyHP, TokenID: "p1", Delta: -7}})
	assert.Equal(t, 13, next.TokenByID("p1").HP)
}

// TestApply_ModifyHPClamps: healing never exceeds MaxHP and damage never
// drops below zero.
func TestApply_ModifyHPClamps(t *testing.T) {
	m := fixture()

	next := events.Apply(m, []events.Event{
		{Kind: events.KindModifyHP, TokenID: "p1", Delta: 99},
		{Kind: events.KindModifyHP, TokenID: "e1", Delta: -99},
	})
	assert.Equal(t, 20, next.TokenByID("p1").HP)
	assert.Equal(t, 0, next.TokenByID("e1").HP)
}

func TestApply_ModifyHPUnknownTokenSkipped(t *testing.T) {
	m := fixture()

	next := events.Apply(m, []events.Event{{Kind: events.KindModifyHP, TokenID: "ghost", Delta: -5}})
	assert.Equal(t, m.Tokens[0].HP, next.Tokens[0].HP)
	assert.Equal(t, m.Tokens[1].HP, next.Tokens[1].HP)
}

// TestApply_AddToken: the newcomer joins the roster and the turn order.
func TestApply_AddToken(t *testing.T) {
	m := fixture()
	reinforcement := &battle.Token{
		ID: "e2", Name: "Gnash", Faction: battle.FactionEnemy,
		Col: 7, Row: 7, HP: 8, MaxHP: 8,
	}

	next := events.Apply(m, []events.Event{{Kind: events.KindAddToken, Token: reinforcement}})
	require.Len(t, next.Tokens, 3)
	assert.Equal(t, []string{"p1", "e1", "e2"}, next.Combat.TurnOrder)

	// The roster holds a copy, not the caller's pointer.
	reinforcement.HP = 1
	assert.Equal(t, 8, next.TokenByID("e2").HP)
}

func TestApply_AddTokenRejectsDuplicatesAndBlanks(t *testing.T) {
	m := fixture()

	next := events.Apply(m, []events.Event{
		{Kind: events.KindAddToken, Token: nil},
		{Kind: events.KindAddToken, Token: &battle.Token{ID: ""}},
		{Kind: events.KindAddToken, Token: &battle.Token{ID: "p1", HP: 1, MaxHP: 1}},
	})
	assert.Len(t, next.Tokens, 2)
	assert.Equal(t, []string{"p1", "e1"}, next.Combat.TurnOrder)
	assert.Equal(t, 20, next.TokenByID("p1").HP)
}

// TestApply_RemoveTokenLeavesTurnOrder: removal splices the roster only; the
// dangling turn-order entry is tolerated downstream.
func TestApply_RemoveTokenLeavesTurnOrder(t *testing.T) {
	m := fixture()

	next := events.Apply(m, []events.Event{{Kind: events.KindRemoveToken, TokenID: "e1"}})
	require.Len(t, next.Tokens, 1)
	assert.Equal(t, "p1", next.Tokens[0].ID)
	assert.Equal(t, []string{"p1", "e1"}, next.Combat.TurnOrder)
}

func TestApply_AddTerrain(t *testing.T) {
	m := fixture()

	next := events.Apply(m, []events.Event{
		{Kind: events.KindAddTerrain, Col: 3, Row: 3, TerrainType: battle.TerrainHazard},
		{Kind: events.KindAddTerrain, Col: 4, Row: 4, TerrainType: battle.TerrainType("lava")},
	})
	require.Len(t, next.Terrain, 1, "invalid terrain type must be skipped")
	assert.Equal(t, battle.TerrainCell{Col: 3, Row: 3, Type: battle.TerrainHazard}, next.Terrain[0])
}

func TestApply_LogMessage(t *testing.T) {
	m := fixture()

	next := events.Apply(m, []events.Event{
		{Kind: events.KindLogMessage, Message: "The ground trembles."},
		{Kind: events.KindLogMessage, Message: ""},
	})
	assert.Equal(t, []string{"The ground trembles."}, next.Combat.Log)
}

func TestApply_EndCombat(t *testing.T) {
	m := fixture()

	next := events.Apply(m, []events.Event{
		{Kind: events.KindEndCombat, Result: battle.ResultEscape, Message: "You slip away into the dark."},
	})
	assert.True(t, next.Combat.IsComplete)
	assert.Equal(t, battle.ResultEscape, next.Combat.Result)
	assert.Equal(t, []string{"You slip away into the dark."}, next.Combat.Log)
}

// TestApply_OrderMatters: events fold in batch order, so a kill followed by a
// heal lands on the healed value.
func TestApply_OrderMatters(t *testing.T) {
	m := fixture()

	next := events.Apply(m, []events.Event{
		{Kind: events.KindModifyHP, TokenID: "e1", Delta: -99},
		{Kind: events.KindModifyHP, TokenID: "e1", Delta: 3},
	})
	assert.Equal(t, 3, next.TokenByID("e1").HP)
}

func TestApply_UnknownKindSkipped(t *testing.T) {
	m := fixture()

	next := events.Apply(m, []events.Event{{Kind: events.Kind("teleport"), TokenID: "p1"}})
	assert.Equal(t, m, next)
	assert.NotSame(t, m, next)
}

// TestApply_EmptyBatchReturnsCopy: even a no-op batch yields a distinct
// snapshot, matching the wholesale-replacement contract.
func TestApply_EmptyBatchReturnsCopy(t *testing.T) {
	m := fixture()

	next := events.Apply(m, nil)
	assert.Equal(t, m, next)
	assert.NotSame(t, m, next)
}
