package kinetics

import "github.com/san-kum/odelab/internal/dynamo"

// NOBr models 2NO + Br2 <=> 2NOBr under mass action. State is
// [NO, Br2, NOBr], params are [kf, kb]:
//
//	rf = kf * NO^2 * Br2
//	rb = kb * NOBr^2
type NOBr struct{}

func NewNOBr() *NOBr { return &NOBr{} }

func (n *NOBr) Name() string                 { return "nobr" }
func (n *NOBr) Dim() int                     { return 3 }
func (n *NOBr) DefaultState() dynamo.State   { return dynamo.State{1, 1, 0} }
func (n *NOBr) DefaultParams() dynamo.Params { return dynamo.Params{0.42, 0.17} }
func (n *NOBr) ParamNames() []string         { return []string{"kf", "kb"} }
func (n *NOBr) Labels() []string             { return []string{"NO", "Br2", "NOBr"} }

// Rates returns the forward and backward reaction rates at y.
func (n *NOBr) Rates(y dynamo.State, p dynamo.Params) (rf, rb float64) {
	rf = p[0] * y[0] * y[0] * y[1]
	rb = p[1] * y[2] * y[2]
	return rf, rb
}

func (n *NOBr) Derive(y dynamo.State, _ float64, p dynamo.Params) (dynamo.State, error) {
	if err := checkDims("nobr", y, p, 3, 2); err != nil {
		return nil, err
	}
	rf, rb := n.Rates(y, p)
	return dynamo.State{2 * (rb - rf), rb - rf, 2 * (rf - rb)}, nil
}

func (n *NOBr) Invariants() []Invariant {
	return []Invariant{
		{Name: "nitrogen", Weights: []float64{1, 0, 1}},
		{Name: "bromine", Weights: []float64{0, 1, 0.5}},
	}
}
