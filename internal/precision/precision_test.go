package precision

import (
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBig(t *testing.T, digits int) *Big {
	t.Helper()
	b, err := NewBig(digits)
	require.NoError(t, err)
	return b
}

func TestNewBig_InvalidDigits(t *testing.T) {
	for _, d := range []int{0, -1, -60} {
		_, err := NewBig(d)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidDigits), "digits=%d: %v", d, err)
	}
}

func TestBitsForDigits(t *testing.T) {
	assert.Equal(t, uint(200)+guardBits, BitsForDigits(60))
	assert.Greater(t, BitsForDigits(80), BitsForDigits(60))
}

func TestMode_Validate(t *testing.T) {
	require.NoError(t, StandardMode().Validate())
	require.NoError(t, HighMode(50).Validate())
	require.ErrorIs(t, HighMode(0).Validate(), ErrInvalidDigits)
	require.ErrorIs(t, Mode{Kind: Kind(7)}.Validate(), ErrUnknownKind)
	assert.Equal(t, "high(50)", HighMode(50).String())
	assert.Equal(t, "standard", StandardMode().String())
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"standard", KindStandard},
		{"", KindStandard},
		{"Float", KindStandard},
		{"high", KindHigh},
		{"HP", KindHigh},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseKind("quad")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestNative_Arithmetic(t *testing.T) {
	var n Native
	assert.Equal(t, 5.0, n.Add(2, 3))
	assert.Equal(t, -1.0, n.Sub(2, 3))
	assert.Equal(t, 6.0, n.Mul(2, 3))
	assert.Equal(t, 1.5, n.Div(3, 2))
	assert.Equal(t, 3.0, n.Ceil(2.01))
	assert.Equal(t, 2.0, n.Ceil(2))

	r, err := n.Sqrt(9)
	require.NoError(t, err)
	assert.Equal(t, 3.0, r)

	_, err = n.Sqrt(-1e-300)
	require.ErrorIs(t, err, ErrNegativeRadicand)

	_, err = n.Asin(1.5)
	require.ErrorIs(t, err, ErrDomain)

	v, err := n.Parse(" 1.01 ")
	require.NoError(t, err)
	assert.Equal(t, 1.01, v)
}

func TestBig_Arithmetic(t *testing.T) {
	b := mustBig(t, 60)

	x, err := b.Parse("1.01")
	require.NoError(t, err)
	y := b.FromFloat(2)

	assert.Equal(t, "3.01", b.Text(b.Add(x, y), 10))
	assert.Equal(t, "-0.99", b.Text(b.Sub(x, y), 10))
	assert.Equal(t, "2.02", b.Text(b.Mul(x, y), 10))
	assert.Equal(t, "0.505", b.Text(b.Div(x, y), 10))

	_, err = b.Parse("abc")
	require.Error(t, err)
}

func TestBig_Ceil(t *testing.T) {
	b := mustBig(t, 40)
	tests := []struct {
		in   string
		want string
	}{
		{"2", "2"},
		{"2.0000000000000000000000000000001", "3"},
		{"1.01", "2"},
		{"0.5", "1"},
		{"-1.5", "-1"},
		{"100", "100"},
	}
	for _, tt := range tests {
		x, err := b.Parse(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, b.Text(b.Ceil(x), 10), tt.in)
	}
}

func TestBig_Sqrt(t *testing.T) {
	b := mustBig(t, 60)

	r, err := b.Sqrt(b.FromFloat(2))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b.Text(r, 50), "1.414213562373095048801688724209698078569671875376"))

	_, err = b.Sqrt(b.FromFloat(-1))
	require.ErrorIs(t, err, ErrNegativeRadicand)

	z, err := b.Sqrt(b.FromFloat(0))
	require.NoError(t, err)
	assert.Equal(t, 0, z.Sign())
}

func TestBig_Pi(t *testing.T) {
	b := mustBig(t, 60)
	assert.Equal(t, "3.14159265358979323846264338327950288419716939937510582097494", b.Text(b.Pi(), 60))
}

func TestBig_Asin(t *testing.T) {
	b := mustBig(t, 60)

	half, err := b.Asin(b.FromFloat(0.5))
	require.NoError(t, err)
	sixth := b.Div(b.Pi(), b.FromFloat(6))
	diff := new(big.Float).Sub(half, sixth)
	f, _ := diff.Float64()
	assert.Less(t, math.Abs(f), 1e-55)

	right, err := b.Asin(b.FromFloat(1))
	require.NoError(t, err)
	assert.Equal(t, b.Text(b.Div(b.Pi(), b.FromFloat(2)), 50), b.Text(right, 50))

	neg, err := b.Asin(b.FromFloat(-0.5))
	require.NoError(t, err)
	assert.InDelta(t, -math.Pi/6, b.Float64(neg), 1e-15)

	small, err := b.Asin(b.FromFloat(1e-3))
	require.NoError(t, err)
	assert.InDelta(t, math.Asin(1e-3), b.Float64(small), 1e-18)

	_, err = b.Asin(b.FromFloat(1.0000001))
	require.ErrorIs(t, err, ErrDomain)
}

func TestBig_AsinMatchesNative(t *testing.T) {
	b := mustBig(t, 30)
	for _, x := range []float64{0.01, 0.1, 0.3, 0.7, 0.9, 0.99, 0.999999} {
		got, err := b.Asin(b.FromFloat(x))
		require.NoError(t, err)
		assert.InDelta(t, math.Asin(x), b.Float64(got), 1e-14, "x=%v", x)
	}
}

func TestBig_BigIsCopy(t *testing.T) {
	b := mustBig(t, 20)
	x := b.FromFloat(3)
	c := b.Big(x)
	c.SetInt64(7)
	assert.Equal(t, "3", b.Text(x, 5))
}

func TestFinite(t *testing.T) {
	var n Native
	assert.True(t, n.Finite(1e308))
	assert.False(t, n.Finite(math.Inf(1)))
	assert.False(t, n.Finite(math.NaN()))
	assert.False(t, n.Finite(n.Mul(1e200, 1e200)))

	b := mustBig(t, 30)
	huge := b.Mul(b.FromFloat(1e200), b.FromFloat(1e200))
	assert.True(t, b.Finite(huge), "big floats do not overflow at 1e400")
	assert.False(t, b.Finite(new(big.Float).SetInf(false)))
}
