package precision

import (
	"fmt"
	"math/big"
	"strings"
)

// Backend is the arithmetic the recurrence is written against. T is the
// backend's value representation.
type Backend[T any] interface {
	Name() string

	FromFloat(f float64) T
	Parse(s string) (T, error)

	Add(x, y T) T
	Sub(x, y T) T
	Mul(x, y T) T
	Div(x, y T) T
	Sqrt(x T) (T, error)
	Ceil(x T) T
	Asin(x T) (T, error)
	Pi() T

	Cmp(x, y T) int
	// Finite reports whether x is neither infinite nor NaN.
	Finite(x T) bool
	Float64(x T) float64
	// Big returns an exact copy of x as a big.Float.
	Big(x T) *big.Float
	// Text formats x with the given number of significant digits; digits <= 0
	// selects the backend's natural precision.
	Text(x T, digits int) string
}

type Kind int

const (
	KindStandard Kind = iota
	KindHigh
)

func (k Kind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindHigh:
		return "high"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "float", "float64":
		return KindStandard, nil
	case "high", "hp", "big":
		return KindHigh, nil
	}
	return KindStandard, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Mode selects a backend. Digits is only meaningful for KindHigh.
type Mode struct {
	Kind   Kind
	Digits int
}

func StandardMode() Mode { return Mode{Kind: KindStandard} }

func HighMode(digits int) Mode { return Mode{Kind: KindHigh, Digits: digits} }

func (m Mode) Validate() error {
	switch m.Kind {
	case KindStandard:
		return nil
	case KindHigh:
		if m.Digits <= 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidDigits, m.Digits)
		}
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownKind, int(m.Kind))
}

func (m Mode) String() string {
	if m.Kind == KindHigh {
		return fmt.Sprintf("high(%d)", m.Digits)
	}
	return m.Kind.String()
}

var (
	_ Backend[float64]    = Native{}
	_ Backend[*big.Float] = (*Big)(nil)
)
