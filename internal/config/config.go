package config

import (
	"fmt"
	"os"

	"github.com/san-kum/odelab/internal/experiment"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel      = "nobr"
	DefaultIntegrator = "euler"
	DefaultT1         = 10.0
	DefaultPoints     = 50
)

// Config is the on-disk form of a run. Empty init_state or params select
// the model defaults.
type Config struct {
	Model      string    `yaml:"model"`
	Integrator string    `yaml:"integrator"`
	InitState  []float64 `yaml:"init_state,omitempty"`
	Params     []float64 `yaml:"params,omitempty"`
	T0         float64   `yaml:"t0"`
	T1         float64   `yaml:"t1"`
	Points     int       `yaml:"points"`
	RTol       float64   `yaml:"rtol,omitempty"`
	ATol       float64   `yaml:"atol,omitempty"`
	Seed       int64     `yaml:"seed,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		Integrator: DefaultIntegrator,
		T1:         DefaultT1,
		Points:     DefaultPoints,
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the file at path onto cfg. Keys absent from the file
// keep their current values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate catches settings that can never produce a run.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Integrator == "" {
		return fmt.Errorf("integrator is required")
	}
	if c.Points < 1 {
		return fmt.Errorf("points must be at least 1, got %d", c.Points)
	}
	if c.Points > 1 && c.T1 <= c.T0 {
		return fmt.Errorf("t1 (%g) must be greater than t0 (%g)", c.T1, c.T0)
	}
	if c.RTol < 0 || c.ATol < 0 {
		return fmt.Errorf("tolerances must not be negative")
	}
	return nil
}

func (c *Config) Experiment() experiment.Config {
	return experiment.Config{
		Model:      c.Model,
		Integrator: c.Integrator,
		InitState:  append([]float64(nil), c.InitState...),
		Params:     append([]float64(nil), c.Params...),
		T0:         c.T0,
		T1:         c.T1,
		Points:     c.Points,
		RTol:       c.RTol,
		ATol:       c.ATol,
		Seed:       c.Seed,
	}
}
