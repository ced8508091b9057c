package kinetics

import (
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
)

// Decay is dy/dt = -λy with params [λ].
type Decay struct{}

func NewDecay() *Decay { return &Decay{} }

func (d *Decay) Name() string                 { return "decay" }
func (d *Decay) Dim() int                     { return 1 }
func (d *Decay) DefaultState() dynamo.State   { return dynamo.State{3} }
func (d *Decay) DefaultParams() dynamo.Params { return dynamo.Params{2} }
func (d *Decay) ParamNames() []string         { return []string{"lambda"} }
func (d *Decay) Labels() []string             { return []string{"y"} }

func (d *Decay) Derive(y dynamo.State, _ float64, p dynamo.Params) (dynamo.State, error) {
	if err := checkDims("decay", y, p, 1, 1); err != nil {
		return nil, err
	}
	return dynamo.State{-p[0] * y[0]}, nil
}

func (d *Decay) Exact(t float64, y0 dynamo.State, p dynamo.Params) dynamo.State {
	return dynamo.State{y0[0] * math.Exp(-p[0]*t)}
}

// DecayChain is A -> B -> C with first-order rates [k1, k2].
type DecayChain struct{}

func NewDecayChain() *DecayChain { return &DecayChain{} }

func (d *DecayChain) Name() string                 { return "decay_chain" }
func (d *DecayChain) Dim() int                     { return 3 }
func (d *DecayChain) DefaultState() dynamo.State   { return dynamo.State{1, 0, 0} }
func (d *DecayChain) DefaultParams() dynamo.Params { return dynamo.Params{1.0, 0.3} }
func (d *DecayChain) ParamNames() []string         { return []string{"k1", "k2"} }
func (d *DecayChain) Labels() []string             { return []string{"A", "B", "C"} }

func (d *DecayChain) Derive(y dynamo.State, _ float64, p dynamo.Params) (dynamo.State, error) {
	if err := checkDims("decay_chain", y, p, 3, 2); err != nil {
		return nil, err
	}
	ra := p[0] * y[0]
	rb := p[1] * y[1]
	return dynamo.State{-ra, ra - rb, rb}, nil
}

// Exact is the Bateman solution. Equal rates take the degenerate limit
// B(t) = B0 e^{-kt} + k A0 t e^{-kt}.
func (d *DecayChain) Exact(t float64, y0 dynamo.State, p dynamo.Params) dynamo.State {
	k1, k2 := p[0], p[1]
	a0, b0, c0 := y0[0], y0[1], y0[2]

	a := a0 * math.Exp(-k1*t)
	var b float64
	if math.Abs(k1-k2) < 1e-12*math.Max(1, math.Abs(k1)) {
		b = (b0 + k1*a0*t) * math.Exp(-k2*t)
	} else {
		b = b0*math.Exp(-k2*t) + k1*a0/(k2-k1)*(math.Exp(-k1*t)-math.Exp(-k2*t))
	}
	return dynamo.State{a, b, a0 + b0 + c0 - a - b}
}

func (d *DecayChain) Invariants() []Invariant {
	return []Invariant{{Name: "total", Weights: []float64{1, 1, 1}}}
}
