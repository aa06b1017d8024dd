// Package main provides the skirmish binary: an in-process host that loads
// an encounter scenario, drives the tactical combat engine on both sides,
// applies scripted narrative events at round boundaries, and prints the
// combat log.
package main

import (
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/WilliamJizh/dungeon-tactics/internal/config"
	"github.com/WilliamJizh/dungeon-tactics/internal/game/ai"
	"github.com/WilliamJizh/dungeon-tactics/internal/game/battle"
	"github.com/WilliamJizh/dungeon-tactics/internal/game/dice"
	"github.com/WilliamJizh/dungeon-tactics/internal/game/events"
	"github.com/WilliamJizh/dungeon-tactics/internal/game/grid"
	"github.com/WilliamJizh/dungeon-tactics/internal/game/scenario"
	"github.com/WilliamJizh/dungeon-tactics/internal/observability"
	"github.com/WilliamJizh/dungeon-tactics/internal/scripting"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty = built-in defaults")
	scenarioPath := flag.String("scenario", "", "path to scenario YAML; overrides config")
	scriptPath := flag.String("script", "", "path to Lua encounter script; overrides config")
	seed := flag.Int64("seed", 0, "dice seed; non-zero overrides config, zero keeps config or crypto dice")
	maxRounds := flag.Int("max-rounds", 0, "round cap; non-zero overrides config")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}
	if *scenarioPath != "" {
		cfg.Simulation.ScenarioPath = *scenarioPath
	}
	if *scriptPath != "" {
		cfg.Simulation.ScriptPath = *scriptPath
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *maxRounds != 0 {
		cfg.Simulation.MaxRounds = *maxRounds
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src dice.Source
	if cfg.Simulation.Seed != 0 {
		src = dice.NewSeededSource(cfg.Simulation.Seed)
		logger.Info("using seeded dice", zap.Int64("seed", cfg.Simulation.Seed))
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	sc, err := scenario.Load(cfg.Simulation.ScenarioPath)
	if err != nil {
		logger.Fatal("loading scenario", zap.Error(err))
	}
	logger.Info("scenario loaded",
		zap.String("name", sc.Name),
		zap.Int("tokens", len(sc.Tokens)),
		zap.Int("cols", sc.GridCols),
		zap.Int("rows", sc.GridRows),
	)

	var enc *scripting.Encounter
	if cfg.Simulation.ScriptPath != "" {
		enc, err = scripting.LoadEncounter(cfg.Simulation.ScriptPath, cfg.Simulation.ScriptInstructionLimit, logger)
		if err != nil {
			logger.Fatal("loading encounter script", zap.Error(err))
		}
		defer enc.Close()
	}

	reducer := battle.NewReducer(roller, ai.ComputeEnemyAction, logger)
	state := sc.Build()

	final := run(reducer, state, enc, cfg.Simulation.MaxRounds, logger)

	for _, line := range final.Combat.Log {
		fmt.Println(line)
	}
	if final.Combat.IsComplete {
		logger.Info("battle complete",
			zap.String("result", string(final.Combat.Result)),
			zap.Int("rounds", final.Combat.Round),
		)
	} else {
		logger.Warn("battle hit the round cap without resolving",
			zap.Int("rounds", final.Combat.Round),
		)
	}
}

// run drives the battle loop until completion or the round cap. Enemy turns
// go through the opponent policy inside the reducer; party turns use the
// host autopilot below. Scripted narrative events are applied once per round
// through the reconciliation channel.
func run(reducer *battle.Reducer, state *battle.TacticalMap, enc *scripting.Encounter, maxRounds int, logger *zap.Logger) *battle.TacticalMap {
	lastScripted := 0
	for !state.Combat.IsComplete && state.Combat.Round <= maxRounds {
		if enc != nil && state.Combat.Round != lastScripted {
			lastScripted = state.Combat.Round
			if batch := enc.OnRoundStart(state.Combat.Round); len(batch) > 0 {
				logger.Info("applying scripted events",
					zap.Int("round", state.Combat.Round),
					zap.Int("events", len(batch)),
				)
				next := events.Apply(state, batch)
				state = reducer.Reduce(state, battle.Action{Type: battle.ActionApplyExternal, Snapshot: next})
				continue
			}
		}

		active := state.ActiveToken()
		switch {
		case active == nil || !active.Alive():
			// Dangling or downed actor: pass the turn along.
			next := reducer.Reduce(state, battle.Action{Type: battle.ActionEndTurn})
			if next == state {
				logger.Warn("turn order exhausted, stopping")
				return state
			}
			state = next
		case active.Faction == battle.FactionEnemy:
			next := reducer.Reduce(state, battle.Action{Type: battle.ActionEnemyTurn})
			if next == state {
				logger.Warn("enemy turn made no progress, stopping")
				return state
			}
			state = next
		default:
			next := partyTurn(reducer, state, active)
			if next == state {
				logger.Warn("party turn made no progress, stopping")
				return state
			}
			state = next
		}
	}
	return state
}

// partyTurn is the host autopilot for player-phase actors: attack the first
// attackable enemy, otherwise close distance on the nearest live enemy, then
// end the turn.
func partyTurn(reducer *battle.Reducer, state *battle.TacticalMap, active *battle.Token) *battle.TacticalMap {
	if targets := battle.AttackableTargets(active, state.Tokens); len(targets) > 0 {
		state = reducer.Reduce(state, battle.Action{
			Type:       battle.ActionAttack,
			AttackerID: active.ID,
			TargetID:   targets[0].ID,
		})
		return reducer.Reduce(state, battle.Action{Type: battle.ActionEndTurn})
	}

	if goal, ok := nearestEnemyCell(state, active); ok {
		bestSet := false
		var best grid.Cell
		bestDist := 0
		for _, c := range state.ReachableCells(active) {
			d := grid.ChebyshevDistance(c, goal)
			if !bestSet || d < bestDist {
				best = c
				bestDist = d
				bestSet = true
			}
		}
		if bestSet {
			state = reducer.Reduce(state, battle.Action{
				Type:    battle.ActionMove,
				TokenID: active.ID,
				Col:     best.Col,
				Row:     best.Row,
			})
		}
	}
	return reducer.Reduce(state, battle.Action{Type: battle.ActionEndTurn})
}

// nearestEnemyCell returns the cell of the live enemy closest to t.
func nearestEnemyCell(state *battle.TacticalMap, t *battle.Token) (grid.Cell, bool) {
	var goal grid.Cell
	found := false
	best := 0
	for _, other := range state.Tokens {
		if other.Faction != battle.FactionEnemy || !other.Alive() {
			continue
		}
		d := grid.ChebyshevDistance(t.Cell(), other.Cell())
		if !found || d < best {
			goal = other.Cell()
			best = d
			found = true
		}
	}
	return goal, found
}
