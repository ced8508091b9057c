package integrators

import (
	"fmt"

	"github.com/san-kum/odelab/internal/dynamo"
)

// RK4 is the classical fourth-order Runge-Kutta method on a fixed grid.
// Stage buffers are reused between steps, so an RK4 value must not be
// shared between goroutines.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) stage(f dynamo.Func, dst, y dynamo.State, t float64, p dynamo.Params) error {
	k, err := f(y, t, p)
	if err != nil {
		return err
	}
	if len(k) != len(dst) {
		return fmt.Errorf("%w: derivative has %d entries, state has %d", dynamo.ErrDimensionMismatch, len(k), len(dst))
	}
	copy(dst, k)
	return nil
}

func (r *RK4) Step(f dynamo.Func, x dynamo.State, t, dt float64, p dynamo.Params) (dynamo.State, error) {
	n := len(x)
	r.ensureScratch(n)

	if err := r.stage(f, r.k1, x, t, p); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	if err := r.stage(f, r.k2, r.scratch, t+dt*0.5, p); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	if err := r.stage(f, r.k3, r.scratch, t+dt*0.5, p); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	if err := r.stage(f, r.k4, r.scratch, t+dt, p); err != nil {
		return nil, err
	}

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result, nil
}

func (r *RK4) Integrate(f dynamo.Func, y0 dynamo.State, ts []float64, p dynamo.Params) (*dynamo.Trajectory, error) {
	traj := dynamo.NewTrajectory(len(ts))
	if len(ts) == 0 {
		return traj, nil
	}

	y := y0.Clone()
	traj.Append(ts[0], y)

	for i := 1; i < len(ts); i++ {
		next, err := r.Step(f, y, ts[i-1], ts[i]-ts[i-1], p)
		if err != nil {
			return nil, &dynamo.StepError{Step: i - 1, Time: ts[i-1], State: y, Wrapped: err}
		}
		traj.Stats.Evaluations += 4
		traj.Stats.Steps++
		y = next
		traj.Append(ts[i], y)
	}

	return traj, nil
}
