package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates a derivative or parameter tuple whose
	// length does not match what the system expects.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrEmptyGrid indicates a time grid without points.
	ErrEmptyGrid = errors.New("dynamo: time grid is empty")

	// ErrGridNotIncreasing indicates a time grid that is not strictly increasing.
	ErrGridNotIncreasing = errors.New("dynamo: time grid is not strictly increasing")

	// ErrStepTooSmall indicates the adaptive step fell below its minimum.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrMaxSteps indicates the adaptive step budget was exhausted.
	ErrMaxSteps = errors.New("dynamo: maximum number of steps exceeded")

	ErrUnknownModel      = errors.New("dynamo: unknown model")
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")
)

// StepError wraps an error with the integration step it happened on.
type StepError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
