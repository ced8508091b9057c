package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/kinetics"
	"gonum.org/v1/gonum/floats"
)

type InvariantDrift struct {
	Name    string
	Initial float64

	// MaxAbs is the largest |I(y_k) - I(y_0)| over the trajectory.
	MaxAbs float64

	// Final is I(y_N) - I(y_0).
	Final float64
}

// Drift evaluates every invariant along the trajectory.
func Drift(traj *dynamo.Trajectory, invariants []kinetics.Invariant) []InvariantDrift {
	out := make([]InvariantDrift, 0, len(invariants))
	if traj.Len() == 0 {
		return out
	}
	for _, inv := range invariants {
		d := InvariantDrift{Name: inv.Name, Initial: inv.Eval(traj.States[0])}
		for _, y := range traj.States {
			dev := inv.Eval(y) - d.Initial
			d.MaxAbs = math.Max(d.MaxAbs, math.Abs(dev))
			d.Final = dev
		}
		out = append(out, d)
	}
	return out
}

type Difference struct {
	// MaxAbs[i] is the largest |a_k[i] - b_k[i]| over all rows.
	MaxAbs []float64

	// Final is the max-norm distance between the last rows.
	Final float64
}

// Compare measures how far trajectory a strays from reference b. Both must
// be reported on the same grid.
func Compare(a, b *dynamo.Trajectory) (*Difference, error) {
	if a.Len() != b.Len() {
		return nil, fmt.Errorf("%w: %d rows vs %d rows", dynamo.ErrDimensionMismatch, a.Len(), b.Len())
	}
	if a.Len() == 0 {
		return &Difference{}, nil
	}
	if a.Dim() != b.Dim() {
		return nil, fmt.Errorf("%w: dim %d vs %d", dynamo.ErrDimensionMismatch, a.Dim(), b.Dim())
	}
	for i := range a.Times {
		if a.Times[i] != b.Times[i] {
			return nil, fmt.Errorf("%w: grids differ at row %d (%v vs %v)", dynamo.ErrDimensionMismatch, i, a.Times[i], b.Times[i])
		}
	}

	d := &Difference{MaxAbs: make([]float64, a.Dim())}
	for k := range a.States {
		for i := range a.States[k] {
			d.MaxAbs[i] = math.Max(d.MaxAbs[i], math.Abs(a.States[k][i]-b.States[k][i]))
		}
	}
	d.Final = floats.Distance(a.Final(), b.Final(), math.Inf(1))
	return d, nil
}
