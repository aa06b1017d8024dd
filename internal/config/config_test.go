package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilliamJizh/dungeon-tactics/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Logging: config.LoggingConfig{Level: "info", Format: "console"},
		Simulation: config.SimulationConfig{
			MaxRounds:    50,
			ScenarioPath: "content/scenarios/ambush.yaml",
		},
		Rules: config.RulesConfig{PlayerMoveRange: 3, PlayerAttackRange: 1},
	}
}

func TestValidate_AcceptsValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"zero max rounds", func(c *config.Config) { c.Simulation.MaxRounds = 0 }, "max_rounds"},
		{"negative instruction limit", func(c *config.Config) { c.Simulation.ScriptInstructionLimit = -1 }, "script_instruction_limit"},
		{"zero move range", func(c *config.Config) { c.Rules.PlayerMoveRange = 0 }, "player_move_range"},
		{"zero attack range", func(c *config.Config) { c.Rules.PlayerAttackRange = 0 }, "player_attack_range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// TestValidate_CollectsAllViolations: one pass reports every problem, not
// just the first.
func TestValidate_CollectsAllViolations(t *testing.T) {
	cfg := config.Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "logging.format")
	assert.Contains(t, err.Error(), "max_rounds")
	assert.Contains(t, err.Error(), "player_move_range")
	assert.Contains(t, err.Error(), "player_attack_range")
}

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 50, cfg.Simulation.MaxRounds)
	assert.Equal(t, int64(0), cfg.Simulation.Seed)
	assert.Equal(t, 3, cfg.Rules.PlayerMoveRange)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
logging:
  level: debug
  format: json
simulation:
  max_rounds: 20
  seed: 1337
  scenario_path: content/scenarios/ambush.yaml
  script_path: content/scripts/reinforcements.lua
rules:
  player_move_range: 4
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 20, cfg.Simulation.MaxRounds)
	assert.Equal(t, int64(1337), cfg.Simulation.Seed)
	assert.Equal(t, "content/scripts/reinforcements.lua", cfg.Simulation.ScriptPath)
	assert.Equal(t, 4, cfg.Rules.PlayerMoveRange)
	assert.Equal(t, 1, cfg.Rules.PlayerAttackRange, "omitted keys keep their defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: shouty\n"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

// TestLoad_EnvOverride: environment variables with the TACTICS_ prefix win
// over file values.
func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644))
	t.Setenv("TACTICS_LOGGING_LEVEL", "warn")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

// TestShippedConfigIsValid: the dev config shipped in the repo must load.
func TestShippedConfigIsValid(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "configs", "dev.yaml"))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}
