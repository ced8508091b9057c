package integrators

import (
	"testing"

	"github.com/san-kum/odelab/internal/dynamo"
)

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	ts := dynamo.Linspace(0, 10, 1000)
	y0 := dynamo.State{1, 1, 0}
	p := dynamo.Params{0.42, 0.17}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := integrator.Integrate(nobr, y0, ts, p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	ts := dynamo.Linspace(0, 10, 1000)
	y0 := dynamo.State{1, 1, 0}
	p := dynamo.Params{0.42, 0.17}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := integrator.Integrate(nobr, y0, ts, p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDormandPrince(b *testing.B) {
	integrator := NewDormandPrince(1e-6, 1e-9)
	ts := dynamo.Linspace(0, 10, 50)
	y0 := dynamo.State{1, 1, 0}
	p := dynamo.Params{0.42, 0.17}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := integrator.Integrate(nobr, y0, ts, p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEulerStep(b *testing.B) {
	integrator := NewEuler()
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integrator.Step(oscillator, x, 0, 0.01, nil)
	}
}
