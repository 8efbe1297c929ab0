package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/lox/deckforge/internal/simulator"
)

type SimulateCmd struct {
	Config    string   `help:"Path to an HCL simulation config" default:"deckforge.hcl"`
	Games     int      `help:"Number of games to play (overrides config)"`
	Players   []string `help:"Player ids (overrides config)"`
	Seed      int64    `help:"Base RNG seed (overrides config)"`
	MaxTurns  int      `help:"Turn cap per game (overrides config)"`
	Workers   int      `help:"Concurrent games (overrides config)"`
	RecordDir string   `help:"Directory to record game logs into"`
}

func (c *SimulateCmd) Run(cli *CLI) error {
	fileCfg, err := simulator.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Games > 0 {
		fileCfg.Simulation.Games = c.Games
	}
	if len(c.Players) > 0 {
		fileCfg.Simulation.Players = c.Players
	}
	if c.Seed != 0 {
		fileCfg.Simulation.Seed = c.Seed
	}
	if c.MaxTurns > 0 {
		fileCfg.Simulation.MaxTurns = c.MaxTurns
	}
	if c.Workers > 0 {
		fileCfg.Simulation.Workers = c.Workers
	}
	if c.RecordDir != "" {
		fileCfg.Simulation.RecordDir = c.RecordDir
	}
	if err := fileCfg.Validate(); err != nil {
		return err
	}

	cfg := fileCfg.SimulatorConfig()
	cfg.Logger = newLogger(cli)
	if cfg.RecordDir != "" {
		if err := os.MkdirAll(cfg.RecordDir, 0o755); err != nil {
			return fmt.Errorf("create record dir: %w", err)
		}
	}

	results, err := simulator.New(cfg).Run(context.Background())
	if err != nil {
		return err
	}
	printResults(results, cfg)
	return nil
}

func printResults(results *simulator.Results, cfg simulator.Config) {
	fmt.Printf("Played %d games (%d reached an end condition, %d hit the %d-turn cap)\n",
		len(results.Games), results.Finished, len(results.Games)-results.Finished, cfg.MaxTurns)

	players := append([]string(nil), cfg.Players...)
	sort.Slice(players, func(i, j int) bool {
		return results.Wins[players[i]] > results.Wins[players[j]]
	})
	fmt.Println("\nWins:")
	for _, p := range players {
		fmt.Printf("  %-12s %d\n", p, results.Wins[p])
	}

	totalTurns := 0
	totalEvents := 0
	for _, g := range results.Games {
		totalTurns += g.Turns
		totalEvents += g.Events
	}
	if n := len(results.Games); n > 0 {
		fmt.Printf("\nAverages: %.1f turns, %.1f events per game\n",
			float64(totalTurns)/float64(n), float64(totalEvents)/float64(n))
	}
	if cfg.RecordDir != "" {
		fmt.Printf("Game logs recorded to %s\n", cfg.RecordDir)
	}
}
