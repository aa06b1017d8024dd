// Package scenario implements battle initialization: declarative YAML
// encounter files validated and turned into the initial battle snapshot that
// seeds the reducer.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/WilliamJizh/dungeon-tactics/internal/game/battle"
	"github.com/WilliamJizh/dungeon-tactics/internal/game/grid"
)

// Default range rules applied when a scenario omits them.
const (
	DefaultPlayerMoveRange   = 3
	DefaultPlayerAttackRange = 1
)

// Waypoint is one patrol path entry.
type Waypoint struct {
	Col int `yaml:"col"`
	Row int `yaml:"row"`
}

// TokenSpec declares one combatant in a scenario file.
//
// Precondition after Validate: Name and Faction are set and the position is
// in bounds. ID may be empty (one is generated at build time); HP may be
// zero (defaults to MaxHP).
type TokenSpec struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Sprite      string     `yaml:"sprite"`
	Faction     string     `yaml:"faction"`
	Col         int        `yaml:"col"`
	Row         int        `yaml:"row"`
	HP          int        `yaml:"hp"`
	MaxHP       int        `yaml:"max_hp"`
	Attack      int        `yaml:"attack"`
	Defense     int        `yaml:"defense"`
	MoveRange   int        `yaml:"move_range"`
	AttackRange int        `yaml:"attack_range"`
	AIPattern   string     `yaml:"ai_pattern"`
	PatrolPath  []Waypoint `yaml:"patrol_path"`
}

// TerrainSpec declares one terrain cell in a scenario file.
type TerrainSpec struct {
	Col  int    `yaml:"col"`
	Row  int    `yaml:"row"`
	Type string `yaml:"type"`
}

// RulesSpec declares the movement and attack range defaults for player-side
// tokens. Zero values fall back to the package defaults.
type RulesSpec struct {
	PlayerMoveRange   int `yaml:"player_move_range"`
	PlayerAttackRange int `yaml:"player_attack_range"`
}

// Scenario is one declarative encounter definition.
//
// Invariant after Validate: token IDs are unique, factions and terrain types
// are known values, all positions are in bounds.
type Scenario struct {
	Name     string        `yaml:"name"`
	MapImage string        `yaml:"map_image"`
	GridCols int           `yaml:"grid_cols"`
	GridRows int           `yaml:"grid_rows"`
	Rules    RulesSpec     `yaml:"rules"`
	Tokens   []TokenSpec   `yaml:"tokens"`
	Terrain  []TerrainSpec `yaml:"terrain"`
}

// Load reads and validates a scenario YAML file.
//
// Precondition: path must name a readable YAML file.
// Postcondition: returns a validated Scenario or a non-nil error.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading %q: %w", path, err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario: parsing %q: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario: %q: %w", path, err)
	}
	return &sc, nil
}

// Validate checks all required fields and cross-field constraints.
//
// Postcondition: nil return guarantees a non-empty name, positive grid
// dimensions, at least one token, unique token IDs, known factions, known
// AI patterns, in-bounds positions and waypoints, non-negative stats, and
// patrol tokens carrying a non-empty patrol path.
func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return errors.New("scenario name must not be empty")
	}
	if sc.GridCols < 1 || sc.GridRows < 1 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", sc.GridCols, sc.GridRows)
	}
	if len(sc.Tokens) == 0 {
		return errors.New("scenario must declare at least one token")
	}

	seen := make(map[string]struct{}, len(sc.Tokens))
	for i, ts := range sc.Tokens {
		if ts.Name == "" {
			return fmt.Errorf("token %d: name must not be empty", i)
		}
		if !battle.Faction(ts.Faction).Valid() {
			return fmt.Errorf("token %q: unknown faction %q", ts.Name, ts.Faction)
		}
		if ts.ID != "" {
			if _, dup := seen[ts.ID]; dup {
				return fmt.Errorf("duplicate token id %q", ts.ID)
			}
			seen[ts.ID] = struct{}{}
		}
		if !sc.inBounds(ts.Col, ts.Row) {
			return fmt.Errorf("token %q: position (%d, %d) out of bounds", ts.Name, ts.Col, ts.Row)
		}
		if ts.MaxHP < 1 {
			return fmt.Errorf("token %q: max_hp must be >= 1, got %d", ts.Name, ts.MaxHP)
		}
		if ts.HP < 0 || ts.HP > ts.MaxHP {
			return fmt.Errorf("token %q: hp %d outside [0, %d]", ts.Name, ts.HP, ts.MaxHP)
		}
		if ts.Attack < 0 || ts.Defense < 0 || ts.MoveRange < 0 || ts.AttackRange < 0 {
			return fmt.Errorf("token %q: stats must not be negative", ts.Name)
		}
		switch battle.AIPattern(ts.AIPattern) {
		case "", battle.PatternAggressive, battle.PatternDefensive,
			battle.PatternPatrol, battle.PatternGuardObjective:
		default:
			return fmt.Errorf("token %q: unknown ai_pattern %q", ts.Name, ts.AIPattern)
		}
		if battle.AIPattern(ts.AIPattern) == battle.PatternPatrol && len(ts.PatrolPath) == 0 {
			return fmt.Errorf("token %q: patrol pattern requires a patrol_path", ts.Name)
		}
		for _, wp := range ts.PatrolPath {
			if !sc.inBounds(wp.Col, wp.Row) {
				return fmt.Errorf("token %q: waypoint (%d, %d) out of bounds", ts.Name, wp.Col, wp.Row)
			}
		}
	}

	for i, tc := range sc.Terrain {
		if !battle.TerrainType(tc.Type).Valid() {
			return fmt.Errorf("terrain %d: unknown type %q", i, tc.Type)
		}
		if !sc.inBounds(tc.Col, tc.Row) {
			return fmt.Errorf("terrain %d: position (%d, %d) out of bounds", i, tc.Col, tc.Row)
		}
	}
	return nil
}

func (sc *Scenario) inBounds(col, row int) bool {
	return col >= 0 && col < sc.GridCols && row >= 0 && row < sc.GridRows
}

// Build turns a validated scenario into the initial battle snapshot: round
// 1, the turn order fixed from roster order, the phase derived from the
// first token's faction, an empty log, and not complete.
//
// Tokens without an ID get a generated UUID; tokens with hp omitted start at
// full health; player and ally tokens with zero ranges inherit the rules
// defaults.
//
// Precondition: sc must have passed Validate.
func (sc *Scenario) Build() *battle.TacticalMap {
	rules := battle.Rules{
		PlayerMoveRange:   sc.Rules.PlayerMoveRange,
		PlayerAttackRange: sc.Rules.PlayerAttackRange,
	}
	if rules.PlayerMoveRange == 0 {
		rules.PlayerMoveRange = DefaultPlayerMoveRange
	}
	if rules.PlayerAttackRange == 0 {
		rules.PlayerAttackRange = DefaultPlayerAttackRange
	}

	m := &battle.TacticalMap{
		MapImage: sc.MapImage,
		GridCols: sc.GridCols,
		GridRows: sc.GridRows,
		Rules:    rules,
	}

	order := make([]string, 0, len(sc.Tokens))
	for _, ts := range sc.Tokens {
		t := &battle.Token{
			ID:          ts.ID,
			Name:        ts.Name,
			Sprite:      ts.Sprite,
			Faction:     battle.Faction(ts.Faction),
			Col:         ts.Col,
			Row:         ts.Row,
			HP:          ts.HP,
			MaxHP:       ts.MaxHP,
			Attack:      ts.Attack,
			Defense:     ts.Defense,
			MoveRange:   ts.MoveRange,
			AttackRange: ts.AttackRange,
			AIPattern:   battle.AIPattern(ts.AIPattern),
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.HP == 0 {
			t.HP = t.MaxHP
		}
		for _, wp := range ts.PatrolPath {
			t.PatrolPath = append(t.PatrolPath, grid.Cell{Col: wp.Col, Row: wp.Row})
		}
		if t.Faction == battle.FactionPlayer || t.Faction == battle.FactionAlly {
			if t.MoveRange == 0 {
				t.MoveRange = rules.PlayerMoveRange
			}
			if t.AttackRange == 0 {
				t.AttackRange = rules.PlayerAttackRange
			}
		}
		m.Tokens = append(m.Tokens, t)
		order = append(order, t.ID)
	}

	for _, tc := range sc.Terrain {
		m.Terrain = append(m.Terrain, battle.TerrainCell{
			Col:  tc.Col,
			Row:  tc.Row,
			Type: battle.TerrainType(tc.Type),
		})
	}

	phase := battle.PhasePlayer
	if m.Tokens[0].Faction == battle.FactionEnemy {
		phase = battle.PhaseEnemy
	}
	m.Combat = battle.TurnRecord{
		Round:         1,
		Phase:         phase,
		TurnOrder:     order,
		ActiveTokenID: order[0],
		Log:           []string{},
	}
	return m
}
