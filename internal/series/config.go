package series

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk description of a tournament series.
type Config struct {
	// Aliases maps a nickname a player used in some game to their
	// canonical name.
	Aliases map[string]string `yaml:"aliases"`

	Tournament struct {
		// StartAmount is the buy-in each player contributes per game.
		StartAmount float64 `yaml:"start_amount"`
		// Prizes maps finishing position to prize-pool fraction, e.g.
		// {1: 0.7, 2: 0.3}.
		Prizes map[int]float64 `yaml:"prizes"`
	} `yaml:"tournament"`
}

// LoadConfig reads and validates a series configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read series config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse series config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("series config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Tournament.StartAmount <= 0 {
		return fmt.Errorf("tournament.start_amount must be positive, got %v", c.Tournament.StartAmount)
	}
	total := 0.0
	for pos, frac := range c.Tournament.Prizes {
		if pos < 1 {
			return fmt.Errorf("prize position %d is invalid, positions start at 1", pos)
		}
		if frac < 0 || frac > 1 {
			return fmt.Errorf("prize fraction %v for position %d is out of [0, 1]", frac, pos)
		}
		total += frac
	}
	if total > 1+1e-9 {
		return fmt.Errorf("prize fractions sum to %v, must not exceed 1", total)
	}
	return nil
}

// Spec converts the config into the tournament payout description.
func (c *Config) Spec() TournamentSpec {
	return TournamentSpec{
		PrizeFractions: c.Tournament.Prizes,
		StartAmount:    c.Tournament.StartAmount,
	}
}

// Mapping converts the config's alias table.
func (c *Config) Mapping() *NameMapping {
	return NewNameMapping(c.Aliases)
}
