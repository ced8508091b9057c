package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Linspace returns n evenly spaced points on [start, stop], both ends
// included. n == 1 yields {start}; n < 1 yields an empty grid.
func Linspace(start, stop float64, n int) []float64 {
	switch {
	case n < 1:
		return []float64{}
	case n == 1:
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, stop)
}

// ValidateGrid checks the precondition integrators rely on: at least one
// point, all finite, strictly increasing.
func ValidateGrid(ts []float64) error {
	if len(ts) == 0 {
		return ErrEmptyGrid
	}
	for i, t := range ts {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: t[%d]=%v", ErrGridNotIncreasing, i, t)
		}
		if i > 0 && t <= ts[i-1] {
			return fmt.Errorf("%w: t[%d]=%v <= t[%d]=%v", ErrGridNotIncreasing, i, t, i-1, ts[i-1])
		}
	}
	return nil
}

// MaxStep returns the largest spacing between consecutive grid points.
func MaxStep(ts []float64) float64 {
	h := 0.0
	for i := 1; i < len(ts); i++ {
		h = math.Max(h, ts[i]-ts[i-1])
	}
	return h
}
