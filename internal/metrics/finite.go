package metrics

import (
	"github.com/san-kum/odelab/internal/dynamo"
)

type Finite struct {
	name    string
	valid   int
	samples int
}

func NewFinite() *Finite {
	return &Finite{
		name: "finite",
	}
}

func (f *Finite) Name() string {
	return f.name
}

func (f *Finite) Observe(y dynamo.State, t float64) {
	if y.IsValid() {
		f.valid++
	}
	f.samples++
}

func (f *Finite) Value() float64 {
	if f.samples == 0 {
		return 1
	}
	return float64(f.valid) / float64(f.samples)
}

func (f *Finite) Reset() {
	f.valid = 0
	f.samples = 0
}
