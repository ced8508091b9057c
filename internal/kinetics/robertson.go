package kinetics

import "github.com/san-kum/odelab/internal/dynamo"

// Robertson is the stiff autocatalytic benchmark
//
//	A -> B        (k1)
//	B + B -> C + B (k2)
//	B + C -> A + C (k3)
//
// with the classic rates k1=0.04, k2=3e7, k3=1e4. The fast and slow time
// scales differ by many orders of magnitude, so explicit methods need
// tiny steps to stay stable.
type Robertson struct{}

func NewRobertson() *Robertson { return &Robertson{} }

func (r *Robertson) Name() string                 { return "robertson" }
func (r *Robertson) Dim() int                     { return 3 }
func (r *Robertson) DefaultState() dynamo.State   { return dynamo.State{1, 0, 0} }
func (r *Robertson) DefaultParams() dynamo.Params { return dynamo.Params{0.04, 3e7, 1e4} }
func (r *Robertson) ParamNames() []string         { return []string{"k1", "k2", "k3"} }
func (r *Robertson) Labels() []string             { return []string{"A", "B", "C"} }

func (r *Robertson) Derive(y dynamo.State, _ float64, p dynamo.Params) (dynamo.State, error) {
	if err := checkDims("robertson", y, p, 3, 3); err != nil {
		return nil, err
	}
	k1, k2, k3 := p[0], p[1], p[2]
	r1 := k1 * y[0]
	r2 := k2 * y[1] * y[1]
	r3 := k3 * y[1] * y[2]
	return dynamo.State{-r1 + r3, r1 - r2 - r3, r2}, nil
}

func (r *Robertson) Invariants() []Invariant {
	return []Invariant{{Name: "total", Weights: []float64{1, 1, 1}}}
}
