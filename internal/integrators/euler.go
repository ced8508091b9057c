package integrators

import (
	"fmt"

	"github.com/san-kum/odelab/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Euler is the explicit first-order fixed-step method. It steps exactly on
// the caller's grid: no error control, no stability guard. Global error is
// O(h), so halving the spacing roughly halves the error.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

// Step returns y + h*f(y, t, p) without touching y.
func (e *Euler) Step(f dynamo.Func, y dynamo.State, t, h float64, p dynamo.Params) (dynamo.State, error) {
	dy, err := f(y, t, p)
	if err != nil {
		return nil, err
	}
	if len(dy) != len(y) {
		return nil, fmt.Errorf("%w: derivative has %d entries, state has %d", dynamo.ErrDimensionMismatch, len(dy), len(y))
	}
	result := make(dynamo.State, len(y))
	floats.AddScaledTo(result, y, h, dy)
	return result, nil
}

// Integrate reports y0 verbatim at ts[0] and one Euler step per grid
// transition after that. The grid is assumed strictly increasing; a
// derivative error aborts the run and is returned unchanged.
func (e *Euler) Integrate(f dynamo.Func, y0 dynamo.State, ts []float64, p dynamo.Params) (*dynamo.Trajectory, error) {
	traj := dynamo.NewTrajectory(len(ts))
	if len(ts) == 0 {
		return traj, nil
	}

	y := y0.Clone()
	traj.Append(ts[0], y)

	for i := 1; i < len(ts); i++ {
		next, err := e.Step(f, y, ts[i-1], ts[i]-ts[i-1], p)
		if err != nil {
			return nil, err
		}
		traj.Stats.Evaluations++
		traj.Stats.Steps++
		y = next
		traj.Append(ts[i], y)
	}

	return traj, nil
}
