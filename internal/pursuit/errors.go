package pursuit

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration indicates parameters rejected before any step
	// runs: a <= 1, D0 < 1, a non-positive step count or digit count.
	ErrInvalidConfiguration = errors.New("pursuit: invalid configuration")

	// ErrDegenerateStep indicates a cycle length below 1, for which the
	// geometric update is undefined.
	ErrDegenerateStep = errors.New("pursuit: degenerate step (cycle length below 1)")

	// ErrInternalInvariant indicates an arithmetic state that correct
	// operation never reaches, such as a negative radicand.
	ErrInternalInvariant = errors.New("pursuit: internal invariant violated")

	// ErrNonFinite indicates a cycle length or separation the active
	// backend cannot represent, such as float64 overflow for a huge a.
	ErrNonFinite = errors.New("pursuit: value out of range for the active precision")
)

// StepError wraps a failure with the index of the cycle that produced it.
type StepError struct {
	Step    int64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
