package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Balance holds the progression balance knobs.
type Balance struct {
	// Energy pool
	MaxEnergy     float64 `yaml:"max_energy" json:"max_energy"`
	RegenPerHour  float64 `yaml:"regen_per_hour" json:"regen_per_hour"`

	// Cap on energy restored by a single recovery-card execution. This
	// is a balancing decision, not validation: recovery cards with a
	// negative cost are intentional design, the cap just keeps a
	// malformed card from acting as an unbounded generator.
	RecoveryCapPerExecution float64 `yaml:"recovery_cap_per_execution" json:"recovery_cap_per_execution"`

	// Recommendation shortlist length served by default.
	ShortlistSize int `yaml:"shortlist_size" json:"shortlist_size"`

	// Quiet period before a changed snapshot is flushed to storage.
	SaveDebounceSeconds int `yaml:"save_debounce_seconds" json:"save_debounce_seconds"`

	Forge ForgeConfig `yaml:"forge" json:"forge"`
}

// ForgeConfig points at the external card-generation service. An empty
// URL disables the service; the local scorer covers recommendations.
type ForgeConfig struct {
	URL            string `yaml:"url" json:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Default returns the shipping balance configuration.
func Default() Balance {
	return Balance{
		MaxEnergy:               100,
		RegenPerHour:            10,
		RecoveryCapPerExecution: 50,
		ShortlistSize:           5,
		SaveDebounceSeconds:     2,
		Forge: ForgeConfig{
			TimeoutSeconds: 15,
		},
	}
}

// Load reads a YAML balance file over the defaults. A missing file is
// not an error; defaults apply.
func Load(path string) (Balance, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.normalize(), nil
}

func (b Balance) normalize() Balance {
	d := Default()
	if b.MaxEnergy <= 0 {
		b.MaxEnergy = d.MaxEnergy
	}
	if b.RegenPerHour < 0 {
		b.RegenPerHour = 0
	}
	if b.RecoveryCapPerExecution <= 0 {
		b.RecoveryCapPerExecution = d.RecoveryCapPerExecution
	}
	if b.ShortlistSize <= 0 {
		b.ShortlistSize = d.ShortlistSize
	}
	if b.SaveDebounceSeconds <= 0 {
		b.SaveDebounceSeconds = d.SaveDebounceSeconds
	}
	if b.Forge.TimeoutSeconds <= 0 {
		b.Forge.TimeoutSeconds = d.Forge.TimeoutSeconds
	}
	return b
}
