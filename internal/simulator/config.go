package simulator

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// FileConfig is the on-disk simulation configuration.
type FileConfig struct {
	Simulation SimulationSettings `hcl:"simulation,block"`
}

// SimulationSettings mirrors Config for HCL decoding.
type SimulationSettings struct {
	Games     int      `hcl:"games,optional"`
	Players   []string `hcl:"players,optional"`
	Seed      int64    `hcl:"seed,optional"`
	MaxTurns  int      `hcl:"max_turns,optional"`
	Workers   int      `hcl:"workers,optional"`
	RecordDir string   `hcl:"record_dir,optional"`
}

// DefaultConfig returns the default simulation configuration.
func DefaultConfig() *FileConfig {
	return &FileConfig{
		Simulation: SimulationSettings{
			Games:    10,
			Players:  []string{"p1", "p2"},
			Seed:     1,
			MaxTurns: 100,
			Workers:  4,
		},
	}
}

// LoadConfig loads simulation configuration from an HCL file. A missing
// file yields the defaults.
func LoadConfig(filename string) (*FileConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config FileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig().Simulation
	if config.Simulation.Games == 0 {
		config.Simulation.Games = defaults.Games
	}
	if len(config.Simulation.Players) == 0 {
		config.Simulation.Players = defaults.Players
	}
	if config.Simulation.Seed == 0 {
		config.Simulation.Seed = defaults.Seed
	}
	if config.Simulation.MaxTurns == 0 {
		config.Simulation.MaxTurns = defaults.MaxTurns
	}
	if config.Simulation.Workers == 0 {
		config.Simulation.Workers = defaults.Workers
	}
	return &config, nil
}

// Validate validates the simulation configuration.
func (c *FileConfig) Validate() error {
	s := c.Simulation
	if s.Games < 1 {
		return fmt.Errorf("games must be positive, got %d", s.Games)
	}
	if len(s.Players) < 2 || len(s.Players) > 4 {
		return fmt.Errorf("need 2-4 players, got %d", len(s.Players))
	}
	seen := map[string]bool{}
	for _, p := range s.Players {
		if p == "" || seen[p] {
			return fmt.Errorf("player ids must be unique and non-empty")
		}
		seen[p] = true
	}
	if s.MaxTurns < 1 {
		return fmt.Errorf("max_turns must be positive, got %d", s.MaxTurns)
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", s.Workers)
	}
	return nil
}

// SimulatorConfig converts the file configuration into a runtime Config.
func (c *FileConfig) SimulatorConfig() Config {
	return Config{
		Games:     c.Simulation.Games,
		Players:   c.Simulation.Players,
		Seed:      c.Simulation.Seed,
		MaxTurns:  c.Simulation.MaxTurns,
		Workers:   c.Simulation.Workers,
		RecordDir: c.Simulation.RecordDir,
	}
}
