// Package dynamo provides the core primitives for integrating ordinary
// differential equations of the form dy/dt = f(y, t, p).
//
// The package defines the types shared by every integrator and model:
//
//   - [State]: vector of tracked quantities (e.g. concentrations)
//   - [Params]: immutable parameter tuple passed to every evaluation
//   - [Func]: derivative callback f(y, t, p)
//   - [Integrator]: produces a [Trajectory] on a caller-supplied time grid
//   - [Trajectory]: one state per grid time, first row equal to y0
//
// # Example
//
//	ts := dynamo.Linspace(0, 10, 50)
//	traj, err := integrators.NewEuler().Integrate(model.Derive, y0, ts, params)
//
// # Preconditions
//
// Integrators do not validate the time grid. Callers that accept grids from
// users should run [ValidateGrid] first.
package dynamo
