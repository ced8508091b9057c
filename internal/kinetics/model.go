package kinetics

import (
	"fmt"
	"sort"

	"github.com/san-kum/odelab/internal/dynamo"
)

type Model interface {
	Name() string
	Dim() int
	Derive(y dynamo.State, t float64, p dynamo.Params) (dynamo.State, error)
	DefaultState() dynamo.State
	DefaultParams() dynamo.Params
	ParamNames() []string
	Labels() []string
}

// Analytic is implemented by models with a closed-form solution.
type Analytic interface {
	Exact(t float64, y0 dynamo.State, p dynamo.Params) dynamo.State
}

// Invariant is a linear combination sum(Weights[i]*y[i]) that the exact
// dynamics keep constant.
type Invariant struct {
	Name    string
	Weights []float64
}

func (inv Invariant) Eval(y dynamo.State) float64 {
	v := 0.0
	for i, w := range inv.Weights {
		if i < len(y) {
			v += w * y[i]
		}
	}
	return v
}

type Conserving interface {
	Invariants() []Invariant
}

func checkDims(name string, y dynamo.State, p dynamo.Params, dim, nParams int) error {
	if len(y) != dim {
		return fmt.Errorf("%s: %w: state has %d entries, want %d", name, dynamo.ErrDimensionMismatch, len(y), dim)
	}
	if len(p) != nParams {
		return fmt.Errorf("%s: %w: got %d params, want %d", name, dynamo.ErrDimensionMismatch, len(p), nParams)
	}
	return nil
}

var registry = map[string]func() Model{
	"decay":       func() Model { return NewDecay() },
	"decay_chain": func() Model { return NewDecayChain() },
	"nobr":        func() Model { return NewNOBr() },
	"robertson":   func() Model { return NewRobertson() },
}

// Lookup returns a fresh model by name.
func Lookup(name string) (Model, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", dynamo.ErrUnknownModel, name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
