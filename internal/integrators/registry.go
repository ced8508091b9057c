package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/odelab/internal/dynamo"
)

var registry = map[string]func(rtol, atol float64) dynamo.Integrator{
	"euler":  func(_, _ float64) dynamo.Integrator { return NewEuler() },
	"rk4":    func(_, _ float64) dynamo.Integrator { return NewRK4() },
	"dopri5": func(rtol, atol float64) dynamo.Integrator { return NewDormandPrince(rtol, atol) },
}

var aliases = map[string]string{
	"rk45": "dopri5",
}

// Lookup returns a fresh integrator by name. Tolerances only apply to
// adaptive methods; non-positive values select the defaults.
func Lookup(name string, rtol, atol float64) (dynamo.Integrator, error) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", dynamo.ErrUnknownIntegrator, name, Names())
	}
	return fn(rtol, atol), nil
}

// Names lists the canonical integrator names, aliases excluded.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
