package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, 2)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Params is the ordered parameter tuple handed unchanged to every
// derivative evaluation. Integrators never write to it.
type Params []float64

// Func evaluates dy/dt at (y, t). Implementations must not retain or modify
// y; the returned slice must have len(y) entries.
type Func func(y State, t float64, p Params) (State, error)

// Integrator advances y0 across the grid ts and reports the state at every
// grid time.
type Integrator interface {
	Name() string
	Integrate(f Func, y0 State, ts []float64, p Params) (*Trajectory, error)
}

// Stats counts the work an integrator did.
type Stats struct {
	Evaluations int `json:"evaluations"`
	Steps       int `json:"steps"`
	Rejected    int `json:"rejected"`
}

// Trajectory holds one state per grid time. States[0] is the initial
// condition exactly as supplied.
type Trajectory struct {
	Times  []float64
	States []State
	Stats  Stats
}

func NewTrajectory(capacity int) *Trajectory {
	return &Trajectory{
		Times:  make([]float64, 0, capacity),
		States: make([]State, 0, capacity),
	}
}

func (tr *Trajectory) Append(t float64, y State) {
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, y)
}

func (tr *Trajectory) Len() int { return len(tr.States) }

// Dim returns the state dimension, or 0 for an empty trajectory.
func (tr *Trajectory) Dim() int {
	if len(tr.States) == 0 {
		return 0
	}
	return len(tr.States[0])
}

func (tr *Trajectory) At(i int) (float64, State) {
	return tr.Times[i], tr.States[i]
}

// Final returns the last state, or nil when the trajectory is empty.
func (tr *Trajectory) Final() State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}

// Column extracts component i across every row.
func (tr *Trajectory) Column(i int) []float64 {
	col := make([]float64, len(tr.States))
	for k, s := range tr.States {
		if i < len(s) {
			col[k] = s[i]
		}
	}
	return col
}

// Matrix returns the trajectory as plain rows (time index x state index).
func (tr *Trajectory) Matrix() [][]float64 {
	rows := make([][]float64, len(tr.States))
	for i, s := range tr.States {
		rows[i] = s
	}
	return rows
}
