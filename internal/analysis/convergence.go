package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/kinetics"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoExactSolution is returned for models that do not implement
// kinetics.Analytic.
var ErrNoExactSolution = errors.New("analysis: model has no analytic solution")

// Level is one refinement of a convergence study.
type Level struct {
	Points      int
	Step        float64
	Error       float64
	Evaluations int
}

type Study struct {
	Integrator string
	Model      string
	Levels     []Level

	// Order is the least-squares slope of log(error) against log(step).
	Order float64
}

// IntegratorFactory builds a fresh integrator per refinement level so that
// stateful integrators can run concurrently.
type IntegratorFactory func() dynamo.Integrator

// Convergence integrates model on uniform grids over [t0, t1] starting at
// points and halving the spacing levels-1 times. Each level's error is the
// max-norm distance to the exact solution at t1. Levels run concurrently.
func Convergence(ctx context.Context, newIntegrator IntegratorFactory, model kinetics.Model, y0 dynamo.State, p dynamo.Params, t0, t1 float64, points, levels int) (*Study, error) {
	exact, ok := model.(kinetics.Analytic)
	if !ok {
		return nil, fmt.Errorf("%s: %w", model.Name(), ErrNoExactSolution)
	}
	if points < 2 || levels < 2 {
		return nil, fmt.Errorf("convergence needs at least 2 points and 2 levels, got %d and %d", points, levels)
	}

	want := exact.Exact(t1-t0, y0, p)
	study := &Study{
		Model:  model.Name(),
		Levels: make([]Level, levels),
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < levels; i++ {
		n := (points-1)<<i + 1
		integ := newIntegrator()
		if i == 0 {
			study.Integrator = integ.Name()
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ts := dynamo.Linspace(t0, t1, n)
			traj, err := integ.Integrate(model.Derive, y0, ts, p)
			if err != nil {
				return fmt.Errorf("level %d (%d points): %w", i, n, err)
			}
			study.Levels[i] = Level{
				Points:      n,
				Step:        (t1 - t0) / float64(n-1),
				Error:       floats.Distance(traj.Final(), want, math.Inf(1)),
				Evaluations: traj.Stats.Evaluations,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	study.Order = observedOrder(study.Levels)
	return study, nil
}

func observedOrder(levels []Level) float64 {
	xs := make([]float64, 0, len(levels))
	ys := make([]float64, 0, len(levels))
	for _, l := range levels {
		if l.Error <= 0 || math.IsNaN(l.Error) || math.IsInf(l.Error, 0) {
			continue
		}
		xs = append(xs, math.Log(l.Step))
		ys = append(ys, math.Log(l.Error))
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta
}
