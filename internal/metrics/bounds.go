package metrics

import (
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
)

// Bounds is the fraction of observed rows with every component in [lo, hi].
// Concentrations are expected to stay in [0, total mass].
type Bounds struct {
	name       string
	lo, hi     float64
	violations int
	samples    int
}

func NewBounds(lo, hi float64) *Bounds {
	return &Bounds{
		name: "bounds",
		lo:   lo,
		hi:   hi,
	}
}

func (b *Bounds) Name() string {
	return b.name
}

func (b *Bounds) Observe(y dynamo.State, t float64) {
	b.samples++
	for _, v := range y {
		if v < b.lo || v > b.hi || math.IsNaN(v) {
			b.violations++
			break
		}
	}
}

func (b *Bounds) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounds) Reset() {
	b.violations = 0
	b.samples = 0
}
