package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/odelab/internal/config"
	"github.com/san-kum/odelab/internal/experiment"
	"github.com/san-kum/odelab/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted batch of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Fields left at their zero value fall back to
// the preset, then to the defaults.
type ScenarioStep struct {
	config.Config `yaml:",inline"`

	Preset string `yaml:"preset,omitempty"`
	Save   bool   `yaml:"save"`
}

type StepResult struct {
	Index  int
	RunID  string
	Result *experiment.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Resolve merges the step over its preset and the defaults.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		p := config.GetPreset(s.Model, s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s/%s", s.Model, s.Preset)
		}
		cfg = p
	}

	over := s.Config
	if over.Model != "" {
		cfg.Model = over.Model
	}
	if over.Integrator != "" {
		cfg.Integrator = over.Integrator
	}
	if len(over.InitState) > 0 {
		cfg.InitState = over.InitState
	}
	if len(over.Params) > 0 {
		cfg.Params = over.Params
	}
	if over.T0 != 0 {
		cfg.T0 = over.T0
	}
	if over.T1 != 0 {
		cfg.T1 = over.T1
	}
	if over.Points != 0 {
		cfg.Points = over.Points
	}
	if over.RTol != 0 {
		cfg.RTol = over.RTol
	}
	if over.ATol != 0 {
		cfg.ATol = over.ATol
	}
	if over.Seed != 0 {
		cfg.Seed = over.Seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes the steps in order, storing those marked save. st
// may be nil when nothing is saved. The first failing step aborts the
// scenario; results of earlier steps are still returned.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i, err)
		}

		exp, err := experiment.Build(cfg.Experiment())
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i, err)
		}

		sr := StepResult{Index: i, Result: res}
		if step.Save {
			if st == nil {
				return results, fmt.Errorf("step %d: save requested without a store", i)
			}
			sr.RunID, err = st.Save(res, exp.Model().Labels())
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}
