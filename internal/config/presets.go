package config

import "sort"

// Presets are named starting points per model. nobr/default is the
// reference scenario: 50 points on [0, 10] with forward Euler.
var Presets = map[string]map[string]*Config{
	"nobr": {
		"default": {
			Model: "nobr", Integrator: "euler", T1: 10, Points: 50,
			InitState: []float64{1, 1, 0}, Params: []float64{0.42, 0.17},
		},
		"reference": {
			Model: "nobr", Integrator: "dopri5", T1: 10, Points: 50,
			InitState: []float64{1, 1, 0}, Params: []float64{0.42, 0.17},
			RTol: 1e-10, ATol: 1e-12,
		},
		"excess_br2": {
			Model: "nobr", Integrator: "rk4", T1: 20, Points: 201,
			InitState: []float64{1, 5, 0}, Params: []float64{0.42, 0.17},
		},
	},
	"decay": {
		"fine": {
			Model: "decay", Integrator: "euler", T1: 1, Points: 1001,
			InitState: []float64{3}, Params: []float64{2},
		},
		"coarse": {
			Model: "decay", Integrator: "euler", T1: 1, Points: 11,
			InitState: []float64{3}, Params: []float64{2},
		},
	},
	"decay_chain": {
		"default": {
			Model: "decay_chain", Integrator: "rk4", T1: 20, Points: 201,
			InitState: []float64{1, 0, 0}, Params: []float64{1.0, 0.3},
		},
	},
	"robertson": {
		"stiff": {
			Model: "robertson", Integrator: "dopri5", T1: 1, Points: 21,
			InitState: []float64{1, 0, 0}, Params: []float64{0.04, 3e7, 1e4},
			RTol: 1e-4, ATol: 1e-8,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	c.InitState = append([]float64(nil), cfg.InitState...)
	c.Params = append([]float64(nil), cfg.Params...)
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
