// Package config loads the metapopulation engine's tunable constants
// (spec.md §6) from a TOML file, falling back to documented defaults exactly
// the way the pack's genetic-algorithm config loader does
// (config.LoadConfig / DefaultConfig / SaveConfig over BurntSushi/toml).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// EngineConfig holds the engine's configurable constants. The ignored-operator
// set is not among them (it is passed to deme.New directly), and the cap
// formula's coefficients are fixed in internal/merge.
type EngineConfig struct {
	MaxCandidates        int     `toml:"max_candidates"`         // -1 = unlimited
	ReduceAll            bool    `toml:"reduce_all"`              // reduce before evaluation
	Revisit              bool    `toml:"revisit"`                 // clear V when exhausted
	IncludeDominated     bool    `toml:"include_dominated"`       // skip Pareto filter
	UseDiversityPenalty  bool    `toml:"use_diversity_penalty"`
	ComplexityTemperature float64 `toml:"complexity_temperature"` // τ
	Jobs                 int     `toml:"jobs"`                    // fork-join worker budget
	ComplexityWeight     float64 `toml:"complexity_weight"`       // k in w = s - d - k*c

	MinPool int `toml:"min_pool"` // MIN_POOL
	Offset  int `toml:"offset"`   // OFFSET, protected leading entries
}

// DefaultConfig returns spec.md §6's documented defaults.
func DefaultConfig() EngineConfig {
	return EngineConfig{
		MaxCandidates:         -1,
		ReduceAll:             true,
		Revisit:               false,
		IncludeDominated:      true,
		UseDiversityPenalty:   false,
		ComplexityTemperature: 3,
		Jobs:                  1,
		ComplexityWeight:      0.01,
		MinPool:               250,
		Offset:                50,
	}
}

// Validate checks the invariants the rest of the engine assumes hold.
func (c EngineConfig) Validate() error {
	if c.ComplexityTemperature <= 0 {
		return fmt.Errorf("complexity_temperature must be > 0 (got %f)", c.ComplexityTemperature)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be >= 1 (got %d)", c.Jobs)
	}
	if c.MinPool < 1 {
		return fmt.Errorf("min_pool must be >= 1 (got %d)", c.MinPool)
	}
	if c.Offset < 0 {
		return fmt.Errorf("offset must be >= 0 (got %d)", c.Offset)
	}
	if c.ComplexityWeight < 0 {
		return fmt.Errorf("complexity_weight must be >= 0 (got %f)", c.ComplexityWeight)
	}
	return nil
}

// LoadConfig loads configuration from a TOML file. If the file doesn't
// exist, it returns DefaultConfig rather than an error.
func LoadConfig(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as TOML, creating parent directories as
// needed.
func SaveConfig(path string, cfg EngineConfig) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
