package scripting

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/WilliamJizh/dungeon-tactics/internal/game/battle"
	"github.com/WilliamJizh/dungeon-tactics/internal/game/events"
)

// Encounter owns one sandboxed VM loaded from a single encounter script.
//
// The script may define a global function
//
//	on_round_start(round) -> { event, ... } | nil
//
// where each event is a table with a "type" field matching the event kinds
// in the events package, plus that kind's payload fields (token_id, delta,
// message, result, col, row, terrain, token{...}).
//
// A mutex serializes hook calls; the VM itself is single-threaded.
type Encounter struct {
	mu        sync.Mutex
	state     *lua.LState
	cancel    context.CancelFunc
	instLimit int
	logger    *zap.Logger
}

// LoadEncounter executes the script at path inside a fresh sandboxed VM.
//
// Precondition: path must name a readable Lua file; logger must be non-nil.
// Postcondition: returns a ready Encounter or an error on load failure. The
// caller must Close() the Encounter when the battle is torn down.
func LoadEncounter(path string, instLimit int, logger *zap.Logger) (*Encounter, error) {
	L, cancel := newSandboxedState(instLimit)
	if err := L.DoFile(path); err != nil {
		cancel()
		L.Close()
		return nil, fmt.Errorf("scripting: loading %q: %w", path, err)
	}
	return &Encounter{state: L, cancel: cancel, instLimit: instLimit, logger: logger}, nil
}

// Close tears down the VM. Safe to call once.
func (e *Encounter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != nil {
		e.cancel()
		e.state.Close()
		e.state = nil
	}
}

// OnRoundStart calls the script's on_round_start hook for the given round
// and converts its return value into an event batch. Returns nil when the
// hook is undefined, returns nothing, or fails; Lua runtime errors are
// logged at warn level and never propagated, so a broken script cannot take
// down an encounter.
func (e *Encounter) OnRoundStart(round int) []events.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil
	}
	L := e.state

	fn := L.GetGlobal("on_round_start")
	if fn == lua.LNil {
		return nil
	}

	// Re-arm the opcode budget so a long battle cannot exhaust it.
	limit := e.instLimit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := newCountingContext(limit)
	e.cancel = cancel
	L.SetContext(ctx)

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LNumber(round)); err != nil {
		e.logger.Warn("scripting: on_round_start failed",
			zap.Int("round", round),
			zap.Error(err),
		)
		return nil
	}

	ret := L.Get(-1)
	L.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil
	}
	return eventsFromTable(tbl)
}

// eventsFromTable converts a Lua array of event tables into an event batch,
// skipping entries that are not tables.
func eventsFromTable(tbl *lua.LTable) []events.Event {
	var batch []events.Event
	tbl.ForEach(func(_, value lua.LValue) {
		entry, ok := value.(*lua.LTable)
		if !ok {
			return
		}
		ev := events.Event{
			Kind:        events.Kind(tableString(entry, "type")),
			TokenID:     tableString(entry, "token_id"),
			Delta:       tableInt(entry, "delta"),
			Col:         tableInt(entry, "col"),
			Row:         tableInt(entry, "row"),
			TerrainType: battle.TerrainType(tableString(entry, "terrain")),
			Message:     tableString(entry, "message"),
			Result:      battle.Result(tableString(entry, "result")),
		}
		if tokenTbl, ok := entry.RawGetString("token").(*lua.LTable); ok {
			ev.Token = tokenFromTable(tokenTbl)
		}
		batch = append(batch, ev)
	})
	return batch
}

// tokenFromTable builds a Token from a Lua token table. Missing fields stay
// zero; the events package applies its own defaults and skips invalid
// payloads.
func tokenFromTable(tbl *lua.LTable) *battle.Token {
	t := &battle.Token{
		ID:          tableString(tbl, "id"),
		Name:        tableString(tbl, "name"),
		Sprite:      tableString(tbl, "sprite"),
		Faction:     battle.Faction(tableString(tbl, "faction")),
		Col:         tableInt(tbl, "col"),
		Row:         tableInt(tbl, "row"),
		HP:          tableInt(tbl, "hp"),
		MaxHP:       tableInt(tbl, "max_hp"),
		Attack:      tableInt(tbl, "attack"),
		Defense:     tableInt(tbl, "defense"),
		MoveRange:   tableInt(tbl, "move_range"),
		AttackRange: tableInt(tbl, "attack_range"),
		AIPattern:   battle.AIPattern(tableString(tbl, "ai_pattern")),
	}
	if t.HP == 0 {
		t.HP = t.MaxHP
	}
	return t
}

func tableString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func tableInt(tbl *lua.LTable, key string) int {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}
