package metrics

import "github.com/san-kum/odelab/internal/dynamo"

// Metric accumulates a scalar over the rows of a trajectory.
type Metric interface {
	Name() string
	Observe(y dynamo.State, t float64)
	Value() float64
	Reset()
}

// Evaluate resets every metric, feeds it each row of traj and returns the
// values keyed by metric name.
func Evaluate(traj *dynamo.Trajectory, ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i := 0; i < traj.Len(); i++ {
			t, y := traj.At(i)
			m.Observe(y, t)
		}
		out[m.Name()] = m.Value()
	}
	return out
}
