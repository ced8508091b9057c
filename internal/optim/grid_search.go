package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/experiment"
)

// GridSearch fits rate constants by evaluating every combination of the
// candidate values in Ranges, one slice per parameter in model order.
type GridSearch struct {
	Ranges [][]float64
}

func NewGridSearch(ranges [][]float64) *GridSearch {
	return &GridSearch{Ranges: ranges}
}

type Fit struct {
	Params []float64

	// RMS is the root mean square difference over every row and species.
	RMS       float64
	Evaluated int
}

// Candidates returns the cartesian product of the ranges, first parameter
// varying slowest.
func (g *GridSearch) Candidates() [][]float64 {
	if len(g.Ranges) == 0 {
		return nil
	}
	out := [][]float64{{}}
	for _, r := range g.Ranges {
		next := make([][]float64, 0, len(out)*len(r))
		for _, prefix := range out {
			for _, v := range r {
				c := make([]float64, len(prefix), len(prefix)+1)
				copy(c, prefix)
				next = append(next, append(c, v))
			}
		}
		out = next
	}
	return out
}

// Search integrates base once per candidate on the grid of data and returns
// the candidate whose trajectory is closest to data. base.InitState defaults
// to the first row of data. Candidates whose integration fails are skipped.
func (g *GridSearch) Search(ctx context.Context, base experiment.Config, data *dynamo.Trajectory) (*Fit, error) {
	if data.Len() < 2 {
		return nil, fmt.Errorf("fit needs at least 2 observations, got %d", data.Len())
	}
	if err := dynamo.ValidateGrid(data.Times); err != nil {
		return nil, err
	}
	candidates := g.Candidates()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidate parameters")
	}

	if len(base.InitState) == 0 {
		base.InitState = data.States[0].Clone()
	}

	best := &Fit{RMS: math.Inf(1)}
	for _, p := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cfg := base
		cfg.Params = p
		exp, err := experiment.Build(cfg)
		if err != nil {
			return nil, err
		}
		traj, err := exp.Integrate(ctx, data.Times)
		if err != nil {
			continue
		}
		best.Evaluated++

		rms := rmsDistance(traj, data)
		if rms < best.RMS {
			best.RMS = rms
			best.Params = p
		}
	}

	if best.Params == nil {
		return nil, fmt.Errorf("every candidate failed to integrate")
	}
	return best, nil
}

func rmsDistance(a, b *dynamo.Trajectory) float64 {
	sum, n := 0.0, 0
	for k := range a.States {
		for i := range a.States[k] {
			d := a.States[k][i] - b.States[k][i]
			sum += d * d
			n++
		}
	}
	if n == 0 || math.IsNaN(sum) {
		return math.Inf(1)
	}
	return math.Sqrt(sum / float64(n))
}
