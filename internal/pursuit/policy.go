package pursuit

import (
	"fmt"
	"strings"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
)

// Policy chooses the cycle length from the separation.
type Policy int

const (
	// Continuous uses L = a·D.
	Continuous Policy = iota
	// Quantized uses L = ceil(a·D); integral products are kept as is.
	Quantized
)

func (p Policy) String() string {
	switch p {
	case Continuous:
		return "continuous"
	case Quantized:
		return "quantized"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "continuous", "modified":
		return Continuous, nil
	case "quantized", "ceil", "original":
		return Quantized, nil
	}
	return Continuous, fmt.Errorf("%w: unknown rounding %q", ErrInvalidConfiguration, s)
}

// CycleLength evaluates the policy in backend b.
func CycleLength[T any](b precision.Backend[T], p Policy, a, d T) T {
	l := b.Mul(a, d)
	if p == Quantized {
		return b.Ceil(l)
	}
	return l
}
