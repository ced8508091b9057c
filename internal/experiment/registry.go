package experiment

import (
	"math"

	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/kinetics"
	"github.com/san-kum/odelab/internal/metrics"
	"gonum.org/v1/gonum/floats"
)

// Build resolves cfg's model and integrator by name and returns an
// experiment wired with the default metrics.
func Build(cfg Config) (*Experiment, error) {
	model, err := kinetics.Lookup(cfg.Model)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.Lookup(cfg.Integrator, cfg.RTol, cfg.ATol)
	if err != nil {
		return nil, err
	}

	exp := New(cfg)
	y0 := cfg.InitState
	if len(y0) == 0 {
		y0 = model.DefaultState()
	}
	if err := exp.Setup(model, integ, DefaultMetrics(model, y0)); err != nil {
		return nil, err
	}
	return exp, nil
}

// DefaultMetrics bounds every concentration by the total initial amount.
func DefaultMetrics(model kinetics.Model, y0 []float64) []metrics.Metric {
	hi := 0.0
	if len(y0) > 0 {
		hi = floats.Norm(y0, 1)
	}
	if hi == 0 || math.IsNaN(hi) {
		hi = 1
	}
	return metrics.ForModel(model, hi*(1+1e-9))
}

func ListModels() []string { return kinetics.Names() }

func ListIntegrators() []string { return integrators.Names() }
