package pursuit

import (
	"fmt"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
)

// Stepper advances the separation by one cycle. It holds no mutable state
// and is safe for concurrent use when its backend is.
type Stepper[T any] struct {
	b      precision.Backend[T]
	a      T
	policy Policy
	one    T
}

func NewStepper[T any](b precision.Backend[T], a T, policy Policy) *Stepper[T] {
	return &Stepper[T]{b: b, a: a, policy: policy, one: b.FromFloat(1)}
}

func (s *Stepper[T]) Policy() Policy { return s.policy }

func (s *Stepper[T]) CycleLength(d T) T {
	return CycleLength(s.b, s.policy, s.a, d)
}

// Step returns the separation after one cycle started at d, and the cycle
// length used.
func (s *Stepper[T]) Step(d T) (next, l T, err error) {
	var zero T
	l = s.CycleLength(d)
	if !s.b.Finite(l) {
		return zero, l, fmt.Errorf("%w: L = a·D with D=%s", ErrNonFinite, s.b.Text(d, 12))
	}
	if s.b.Cmp(l, s.one) < 0 {
		return zero, l, fmt.Errorf("%w: L=%s", ErrDegenerateStep, s.b.Text(l, 12))
	}
	if next, err = s.Advance(d, l); err != nil {
		return zero, l, err
	}
	if !s.b.Finite(next) {
		return zero, l, fmt.Errorf("%w: D' from L=%s", ErrNonFinite, s.b.Text(l, 12))
	}
	return next, l, nil
}

// Advance applies D' = sqrt((sqrt(L²-1) - L + D)² + 1) for a given L >= 1,
// evaluated as x = D - 1/(sqrt(L-1)·sqrt(L+1) + L) so that neither L² nor
// x² is ever formed at full size.
func (s *Stepper[T]) Advance(d, l T) (T, error) {
	b := s.b
	var zero T

	lo, err := b.Sqrt(b.Sub(l, s.one))
	if err != nil {
		return zero, fmt.Errorf("%w: sqrt(L-1) with L=%s: %v", ErrInternalInvariant, b.Text(l, 12), err)
	}
	hi, err := b.Sqrt(b.Add(l, s.one))
	if err != nil {
		return zero, fmt.Errorf("%w: sqrt(L+1) with L=%s: %v", ErrInternalInvariant, b.Text(l, 12), err)
	}
	x := b.Sub(d, b.Div(s.one, b.Add(b.Mul(lo, hi), l)))

	// sqrt(x²+1), as x·sqrt(1+(1/x)²) once x >= 1.
	if b.Cmp(x, s.one) < 0 {
		next, err := b.Sqrt(b.Add(b.Mul(x, x), s.one))
		if err != nil {
			return zero, fmt.Errorf("%w: sqrt(x²+1): %v", ErrInternalInvariant, err)
		}
		return next, nil
	}
	inv := b.Div(s.one, x)
	root, err := b.Sqrt(b.Add(s.one, b.Mul(inv, inv)))
	if err != nil {
		return zero, fmt.Errorf("%w: sqrt(1+1/x²): %v", ErrInternalInvariant, err)
	}
	return b.Mul(x, root), nil
}
