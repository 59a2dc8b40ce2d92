package precision

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// guardBits are carried on top of the requested decimal digits.
const guardBits = 8

// workBits is the extra precision used inside Asin and Pi.
const workBits = 32

// atanReduce is the argument below which the atan series is summed directly.
var atanReduce = big.NewFloat(1.0 / 64)

// Big is the arbitrary precision backend. Values are *big.Float rounded to
// the backend's precision after every operation.
type Big struct {
	digits int
	prec   uint
	pi     *big.Float
}

// NewBig returns a backend carrying digits significant decimal digits.
func NewBig(digits int) (*Big, error) {
	if digits <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDigits, digits)
	}
	b := &Big{digits: digits, prec: BitsForDigits(digits)}
	b.pi = machinPi(b.prec + workBits)
	return b, nil
}

// BitsForDigits converts significant decimal digits to a binary mantissa size.
func BitsForDigits(digits int) uint {
	return uint(math.Ceil(float64(digits)*math.Log2(10))) + guardBits
}

func (b *Big) Name() string { return fmt.Sprintf("high(%d)", b.digits) }

func (b *Big) Digits() int { return b.digits }

func (b *Big) Prec() uint { return b.prec }

func (b *Big) alloc() *big.Float { return new(big.Float).SetPrec(b.prec) }

func (b *Big) FromFloat(f float64) *big.Float { return b.alloc().SetFloat64(f) }

func (b *Big) Parse(s string) (*big.Float, error) {
	x, _, err := big.ParseFloat(strings.TrimSpace(s), 10, b.prec, big.ToNearestEven)
	if err != nil {
		return nil, fmt.Errorf("precision: parse %q: %w", s, err)
	}
	return x, nil
}

func (b *Big) Add(x, y *big.Float) *big.Float { return b.alloc().Add(x, y) }
func (b *Big) Sub(x, y *big.Float) *big.Float { return b.alloc().Sub(x, y) }
func (b *Big) Mul(x, y *big.Float) *big.Float { return b.alloc().Mul(x, y) }
func (b *Big) Div(x, y *big.Float) *big.Float { return b.alloc().Quo(x, y) }

func (b *Big) Sqrt(x *big.Float) (*big.Float, error) {
	if x.Sign() < 0 {
		return nil, ErrNegativeRadicand
	}
	return b.alloc().Sqrt(x), nil
}

// Ceil returns the smallest integer >= x. Integral values are returned
// unchanged.
func (b *Big) Ceil(x *big.Float) *big.Float {
	if x.IsInt() || x.IsInf() {
		return b.alloc().Set(x)
	}
	i, _ := x.Int(nil)
	if x.Sign() > 0 {
		i.Add(i, big.NewInt(1))
	}
	return b.alloc().SetInt(i)
}

// Asin evaluates asin(x) = atan(x / sqrt((1-x)(1+x))) with extra working
// precision.
func (b *Big) Asin(x *big.Float) (*big.Float, error) {
	if x.Sign() < 0 {
		r, err := b.Asin(new(big.Float).Neg(x))
		if err != nil {
			return nil, err
		}
		return r.Neg(r), nil
	}

	one := big.NewFloat(1)
	switch x.Cmp(one) {
	case 1:
		return nil, ErrDomain
	case 0:
		half := b.alloc().Set(b.pi)
		return half.SetMantExp(half, -1), nil
	}

	p := b.prec + workBits
	w := func() *big.Float { return new(big.Float).SetPrec(p) }

	lo := w().Sub(one, x)
	hi := w().Add(one, x)
	r := w().Sqrt(w().Mul(lo, hi))
	if r.Sign() == 0 {
		half := b.alloc().Set(b.pi)
		return half.SetMantExp(half, -1), nil
	}
	return b.alloc().Set(atan(w().Quo(x, r), p)), nil
}

func (b *Big) Pi() *big.Float { return b.alloc().Set(b.pi) }

func (b *Big) Cmp(x, y *big.Float) int { return x.Cmp(y) }

func (b *Big) Finite(x *big.Float) bool { return !x.IsInf() }

func (b *Big) Float64(x *big.Float) float64 {
	f, _ := x.Float64()
	return f
}

func (b *Big) Big(x *big.Float) *big.Float { return new(big.Float).Copy(x) }

func (b *Big) Text(x *big.Float, digits int) string {
	if digits <= 0 {
		digits = b.digits
	}
	return x.Text('g', digits)
}

// atan computes atan(y) for y >= 0 at precision p. The argument is halved
// with atan(y) = 2 atan(y / (1 + sqrt(1 + y²))) until the Taylor series
// converges quickly.
func atan(y *big.Float, p uint) *big.Float {
	w := func() *big.Float { return new(big.Float).SetPrec(p) }
	one := big.NewFloat(1)

	z := w().Set(y)
	k := 0
	for z.Cmp(atanReduce) > 0 {
		s := w().Sqrt(w().Add(one, w().Mul(z, z)))
		z = w().Quo(z, s.Add(s, one))
		k++
	}

	sum := w().Set(z)
	if z.Sign() == 0 {
		return sum
	}
	z2 := w().Mul(z, z)
	term := w().Set(z)
	for n := int64(1); ; n++ {
		term.Mul(term, z2)
		term.Neg(term)
		delta := w().Quo(term, w().SetInt64(2*n+1))
		if delta.Sign() == 0 || delta.MantExp(nil) < sum.MantExp(nil)-int(p)-2 {
			break
		}
		sum.Add(sum, delta)
	}
	return sum.SetMantExp(sum, k)
}

// machinPi evaluates π = 16 atan(1/5) - 4 atan(1/239).
func machinPi(p uint) *big.Float {
	w := func() *big.Float { return new(big.Float).SetPrec(p) }
	a := atan(w().Quo(w().SetInt64(1), w().SetInt64(5)), p)
	c := atan(w().Quo(w().SetInt64(1), w().SetInt64(239)), p)
	a.Mul(a, w().SetInt64(16))
	c.Mul(c, w().SetInt64(4))
	return a.Sub(a, c)
}
