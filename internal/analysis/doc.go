// Package analysis provides accuracy and stability diagnostics for
// integrated trajectories.
//
//   - [Convergence]: global error against an analytic solution on a
//     sequence of halved step sizes, plus the observed order of accuracy
//   - [Drift]: deviation of linear invariants along a trajectory
//   - [Compare]: component-wise difference between two trajectories
//   - [Assess]: Jacobian eigenvalue scan reporting stiffness and the forward
//     Euler stability limit
//   - [NewPhasePortrait]: 2D phase space view of two state components
//
// # Convergence
//
// A first-order method should report an order close to 1:
//
//	study, err := analysis.Convergence(ctx, func() dynamo.Integrator { return integrators.NewEuler() },
//		model, y0, p, 0, 1, 11, 5)
//	fmt.Printf("observed order %.2f\n", study.Order)
package analysis
