// Package config provides Viper-based configuration loading for the
// tactical combat simulator.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulationConfig holds the host battle-loop settings.
type SimulationConfig struct {
	// MaxRounds caps the battle loop so a stalemate cannot spin forever.
	MaxRounds int `mapstructure:"max_rounds"`
	// Seed selects a deterministic dice source when non-zero; zero uses
	// the crypto source.
	Seed int64 `mapstructure:"seed"`
	// ScenarioPath is the encounter YAML file to load.
	ScenarioPath string `mapstructure:"scenario_path"`
	// ScriptPath is an optional Lua encounter script; empty disables it.
	ScriptPath string `mapstructure:"script_path"`
	// ScriptInstructionLimit caps Lua opcodes per hook call; 0 uses the
	// scripting package default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// RulesConfig holds the fallback movement and attack ranges applied when a
// scenario omits its own rules block.
type RulesConfig struct {
	PlayerMoveRange   int `mapstructure:"player_move_range"`
	PlayerAttackRange int `mapstructure:"player_attack_range"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Rules      RulesConfig      `mapstructure:"rules"`
}

// Validate checks all configuration invariants.
//
// Postcondition: returns nil if the configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", c.Logging.Format))
	}

	if c.Simulation.MaxRounds < 1 {
		errs = append(errs, fmt.Sprintf("simulation.max_rounds must be >= 1, got %d", c.Simulation.MaxRounds))
	}
	if c.Simulation.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("simulation.script_instruction_limit must be >= 0, got %d", c.Simulation.ScriptInstructionLimit))
	}

	if c.Rules.PlayerMoveRange < 1 {
		errs = append(errs, fmt.Sprintf("rules.player_move_range must be >= 1, got %d", c.Rules.PlayerMoveRange))
	}
	if c.Rules.PlayerAttackRange < 1 {
		errs = append(errs, fmt.Sprintf("rules.player_attack_range must be >= 1, got %d", c.Rules.PlayerAttackRange))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Default returns the built-in configuration used when no config file is
// supplied.
//
// Postcondition: Default().Validate() == nil.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshalling defaults cannot fail; the panic guards a programming
	// error in setDefaults.
	if err := v.Unmarshal(&cfg); err != nil {
		panic("config: unmarshalling defaults: " + err.Error())
	}
	return cfg
}

// Load reads configuration from the given file path, applies environment
// variable overrides with the TACTICS_ prefix, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("TACTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("simulation.max_rounds", 50)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.scenario_path", "content/scenarios/ambush.yaml")
	v.SetDefault("simulation.script_path", "")
	v.SetDefault("simulation.script_instruction_limit", 0)

	v.SetDefault("rules.player_move_range", 3)
	v.SetDefault("rules.player_attack_range", 1)
}
