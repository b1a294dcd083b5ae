package physics

import (
	"errors"
	"fmt"
)

// Domain errors for world operations.
var (
	// ErrInvalidBody indicates a body with a degenerate shape or negative mass.
	ErrInvalidBody = errors.New("physics: invalid body")

	// ErrInvalidTimestep indicates a non-positive or non-finite step.
	ErrInvalidTimestep = errors.New("physics: timestep must be positive and finite")

	// ErrUnstable indicates the solver produced NaN or Inf; the step was rolled back.
	ErrUnstable = errors.New("physics: simulation unstable (state diverged)")
)

// StepError wraps a step failure with the world clock at which it happened.
type StepError struct {
	Step    uint64
	Time    float64
	Body    ID
	Wrapped error
}

func (e *StepError) Error() string {
	if e.Body != 0 {
		return fmt.Sprintf("step %d (t=%.4f) body %d: %v", e.Step, e.Time, e.Body, e.Wrapped)
	}
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
