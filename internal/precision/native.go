package precision

import (
	"cmp"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Native is the float64 backend.
type Native struct{}

func (Native) Name() string { return "standard" }

func (Native) FromFloat(f float64) float64 { return f }

func (Native) Parse(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func (Native) Add(x, y float64) float64 { return x + y }
func (Native) Sub(x, y float64) float64 { return x - y }
func (Native) Mul(x, y float64) float64 { return x * y }
func (Native) Div(x, y float64) float64 { return x / y }

func (Native) Sqrt(x float64) (float64, error) {
	if x < 0 || math.IsNaN(x) {
		return math.NaN(), ErrNegativeRadicand
	}
	return math.Sqrt(x), nil
}

func (Native) Ceil(x float64) float64 { return math.Ceil(x) }

func (Native) Asin(x float64) (float64, error) {
	if x < -1 || x > 1 || math.IsNaN(x) {
		return math.NaN(), ErrDomain
	}
	return math.Asin(x), nil
}

func (Native) Pi() float64 { return math.Pi }

func (Native) Cmp(x, y float64) int { return cmp.Compare(x, y) }

func (Native) Finite(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }

func (Native) Float64(x float64) float64 { return x }

// Big panics on NaN, which the recurrence never produces without an error.
func (Native) Big(x float64) *big.Float { return new(big.Float).SetFloat64(x) }

func (Native) Text(x float64, digits int) string {
	if digits <= 0 {
		digits = -1
	}
	return strconv.FormatFloat(x, 'g', digits, 64)
}
