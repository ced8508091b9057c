package metrics

import (
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/kinetics"
)

// InvariantDrift tracks the largest drift of a linear invariant from its
// value on the first observed row. The drift is relative unless the initial
// value is zero, in which case it is absolute.
type InvariantDrift struct {
	name     string
	inv      kinetics.Invariant
	initial  float64
	maxDrift float64
	samples  int
}

func NewInvariantDrift(inv kinetics.Invariant) *InvariantDrift {
	return &InvariantDrift{
		name: "invariant_drift:" + inv.Name,
		inv:  inv,
	}
}

func (d *InvariantDrift) Name() string { return d.name }

func (d *InvariantDrift) Observe(y dynamo.State, t float64) {
	v := d.inv.Eval(y)
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++

	drift := math.Abs(v - d.initial)
	if d.initial != 0 {
		drift /= math.Abs(d.initial)
	}
	if math.IsNaN(drift) {
		drift = math.Inf(1)
	}
	d.maxDrift = math.Max(d.maxDrift, drift)
}

func (d *InvariantDrift) Value() float64 {
	return d.maxDrift
}

func (d *InvariantDrift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}

// ForModel returns the default metric set for m: finite, bounds on
// [0, hi] and one drift metric per invariant when m conserves anything.
func ForModel(m kinetics.Model, hi float64) []Metric {
	ms := []Metric{NewFinite(), NewBounds(0, hi)}
	if c, ok := m.(kinetics.Conserving); ok {
		for _, inv := range c.Invariants() {
			ms = append(ms, NewInvariantDrift(inv))
		}
	}
	return ms
}
