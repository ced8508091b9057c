package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/kinetics"
	"github.com/san-kum/odelab/internal/metrics"
)

// Config describes one integration run. Empty InitState or Params select the
// model defaults.
type Config struct {
	Model      string    `json:"model"`
	Integrator string    `json:"integrator"`
	InitState  []float64 `json:"init_state"`
	Params     []float64 `json:"params"`
	T0         float64   `json:"t0"`
	T1         float64   `json:"t1"`
	Points     int       `json:"points"`
	RTol       float64   `json:"rtol,omitempty"`
	ATol       float64   `json:"atol,omitempty"`
	Seed       int64     `json:"seed"`
}

// Grid returns Points evenly spaced times on [T0, T1].
func (c Config) Grid() []float64 {
	return dynamo.Linspace(c.T0, c.T1, c.Points)
}

type Result struct {
	Config     Config
	Trajectory *dynamo.Trajectory
	Metrics    map[string]float64
	Elapsed    time.Duration
}

type Experiment struct {
	cfg        Config
	model      kinetics.Model
	integrator dynamo.Integrator
	metrics    []metrics.Metric
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup binds the model and integrator and fills in model defaults for any
// missing initial state or parameters.
func (e *Experiment) Setup(model kinetics.Model, integrator dynamo.Integrator, ms []metrics.Metric) error {
	if len(e.cfg.InitState) == 0 {
		e.cfg.InitState = model.DefaultState()
	}
	if len(e.cfg.Params) == 0 {
		e.cfg.Params = model.DefaultParams()
	}
	if len(e.cfg.InitState) != model.Dim() {
		return fmt.Errorf("%w: %s needs %d initial values, got %d",
			dynamo.ErrDimensionMismatch, model.Name(), model.Dim(), len(e.cfg.InitState))
	}
	if len(e.cfg.Params) != len(model.ParamNames()) {
		return fmt.Errorf("%w: %s needs params %v, got %d values",
			dynamo.ErrDimensionMismatch, model.Name(), model.ParamNames(), len(e.cfg.Params))
	}

	e.cfg.Model = model.Name()
	e.cfg.Integrator = integrator.Name()
	e.model = model
	e.integrator = integrator
	e.metrics = ms
	return nil
}

func (e *Experiment) Config() Config { return e.cfg }

func (e *Experiment) Model() kinetics.Model { return e.model }

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	traj, err := e.Integrate(ctx, e.cfg.Grid())
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	return &Result{
		Config:     e.cfg,
		Trajectory: traj,
		Metrics:    metrics.Evaluate(traj, e.metrics),
		Elapsed:    elapsed,
	}, nil
}

// Integrate runs the bound model over an arbitrary grid instead of the
// configured one. Metrics are not evaluated.
func (e *Experiment) Integrate(ctx context.Context, ts []float64) (*dynamo.Trajectory, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := dynamo.ValidateGrid(ts); err != nil {
		return nil, err
	}

	y0 := dynamo.State(e.cfg.InitState).Clone()
	p := dynamo.Params(append([]float64(nil), e.cfg.Params...))

	traj, err := e.integrator.Integrate(e.model.Derive, y0, ts, p)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", e.cfg.Model, e.cfg.Integrator, err)
	}
	return traj, nil
}
