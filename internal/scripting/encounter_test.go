package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/WilliamJizh/dungeon-tactics/internal/game/battle"
	"github.com/WilliamJizh/dungeon-tactics/internal/game/events"
	"github.com/WilliamJizh/dungeon-tactics/internal/scripting"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "encounter.lua")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func load(t *testing.T, body string) *scripting.Encounter {
	t.Helper()
	enc, err := scripting.LoadEncounter(writeScript(t, body), 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(enc.Close)
	return enc
}

func TestLoadEncounter_MissingFile(t *testing.T) {
	_, err := scripting.LoadEncounter(
		filepath.Join(t.TempDir(), "nope.lua"), 0, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestLoadEncounter_SyntaxError(t *testing.T) {
	_, err := scripting.LoadEncounter(
		writeScript(t, "function on_round_start(round"), 0, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading")
}

// TestOnRoundStart_EventBatch: a hook returning an array of event tables
// yields the corresponding batch, in order.
func TestOnRoundStart_EventBatch(t *testing.T) {
	enc := load(t, `
function on_round_start(round)
  if round ~= 3 then return nil end
  return {
    { type = "log_message", message = "Reinforcements arrive!" },
    {
      type = "add_token",
      token = {
        id = "e9", name = "Straggler", faction = "enemy",
        col = 7, row = 0, max_hp = 8,
        attack = 10, defense = 10,
        move_range = 2, attack_range = 1,
        ai_pattern = "aggressive",
      },
    },
    { type = "add_terrain", col = 3, row = 4, terrain = "hazard" },
    { type = "modify_hp", token_id = "p1", delta = -2 },
  }
end
`)

	assert.Nil(t, enc.OnRoundStart(1))
	assert.Nil(t, enc.OnRoundStart(2))

	batch := enc.OnRoundStart(3)
	require.Len(t, batch, 4)

	assert.Equal(t, events.KindLogMessage, batch[0].Kind)
	assert.Equal(t, "Reinforcements arrive!", batch[0].Message)

	require.NotNil(t, batch[1].Token)
	tok := batch[1].Token
	assert.Equal(t, "e9", tok.ID)
	assert.Equal(t, battle.FactionEnemy, tok.Faction)
	assert.Equal(t, 8, tok.HP, "omitted hp must default to max_hp")
	assert.Equal(t, battle.PatternAggressive, tok.AIPattern)

	assert.Equal(t, events.KindAddTerrain, batch[2].Kind)
	assert.Equal(t, battle.TerrainHazard, batch[2].TerrainType)
	assert.Equal(t, 3, batch[2].Col)
	assert.Equal(t, 4, batch[2].Row)

	assert.Equal(t, events.KindModifyHP, batch[3].Kind)
	assert.Equal(t, "p1", batch[3].TokenID)
	assert.Equal(t, -2, batch[3].Delta)
}

func TestOnRoundStart_HookUndefined(t *testing.T) {
	enc := load(t, `x = 1`)
	assert.Nil(t, enc.OnRoundStart(1))
}

func TestOnRoundStart_NonTableReturn(t *testing.T) {
	enc := load(t, `function on_round_start(round) return 42 end`)
	assert.Nil(t, enc.OnRoundStart(1))
}

// TestOnRoundStart_RuntimeErrorIsContained: a broken hook logs a warning and
// yields nil rather than failing the battle.
func TestOnRoundStart_RuntimeErrorIsContained(t *testing.T) {
	enc := load(t, `function on_round_start(round) error("boom") end`)
	assert.Nil(t, enc.OnRoundStart(1))
}

func TestOnRoundStart_SkipsNonTableEntries(t *testing.T) {
	enc := load(t, `
function on_round_start(round)
  return { "not an event", { type = "log_message", message = "ok" } }
end
`)
	batch := enc.OnRoundStart(1)
	require.Len(t, batch, 1)
	assert.Equal(t, "ok", batch[0].Message)
}

// TestOnRoundStart_InstructionLimit: a runaway loop is cut off by the opcode
// budget instead of hanging the host.
func TestOnRoundStart_InstructionLimit(t *testing.T) {
	enc, err := scripting.LoadEncounter(writeScript(t, `
function on_round_start(round)
  while true do end
end
`), 10_000, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer enc.Close()

	assert.Nil(t, enc.OnRoundStart(1))
}

// TestOnRoundStart_BudgetPerCall: the opcode budget re-arms on every hook
// call, so many rounds of honest work never exhaust it.
func TestOnRoundStart_BudgetPerCall(t *testing.T) {
	enc, err := scripting.LoadEncounter(writeScript(t, `
function on_round_start(round)
  local sum = 0
  for i = 1, 1000 do sum = sum + i end
  return { { type = "log_message", message = "round " .. round } }
end
`), 20_000, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer enc.Close()

	for round := 1; round <= 50; round++ {
		batch := enc.OnRoundStart(round)
		require.Len(t, batch, 1, "round %d", round)
	}
}

// TestSandbox_DangerousGlobalsStripped: encounter scripts cannot touch the
// filesystem or process environment.
func TestSandbox_DangerousGlobalsStripped(t *testing.T) {
	enc := load(t, `
function on_round_start(round)
  if os ~= nil or io ~= nil or dofile ~= nil or loadfile ~= nil or require ~= nil then
    return { { type = "log_message", message = "leaked" } }
  end
  return { { type = "log_message", message = "sealed" } }
end
`)
	batch := enc.OnRoundStart(1)
	require.Len(t, batch, 1)
	assert.Equal(t, "sealed", batch[0].Message)
}

func TestClose_AfterCloseHookIsNil(t *testing.T) {
	enc := load(t, `function on_round_start(round) return {} end`)
	enc.Close()
	assert.Nil(t, enc.OnRoundStart(1))
	enc.Close() // second close is a no-op
}

// TestShippedScriptLoads: the reinforcement script shipped with the binary
// must load and fire on round 3.
func TestShippedScriptLoads(t *testing.T) {
	enc, err := scripting.LoadEncounter(
		filepath.Join("..", "..", "content", "scripts", "reinforcements.lua"),
		0, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer enc.Close()

	assert.Nil(t, enc.OnRoundStart(1))
	batch := enc.OnRoundStart(3)
	require.NotEmpty(t, batch)

	var added bool
	for _, ev := range batch {
		if ev.Kind == events.KindAddToken {
			added = true
		}
	}
	assert.True(t, added)
}
