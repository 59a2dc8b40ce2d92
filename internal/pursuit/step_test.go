package pursuit

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
)

func TestStep_FirstCycle(t *testing.T) {
	s := NewStepper[float64](precision.Native{}, 2, Continuous)

	next, l, err := s.Step(1)
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if l != 2 {
		t.Errorf("expected L=2, got %v", l)
	}

	expected := math.Sqrt(math.Pow(math.Sqrt(3)-1, 2) + 1)
	if math.Abs(next-expected) > 1e-12 {
		t.Errorf("expected D'=%.12f, got %.12f", expected, next)
	}
	if math.Abs(next-1.2393) > 1e-4 {
		t.Errorf("expected D' near 1.2393, got %f", next)
	}
}

func TestStep_Monotonic(t *testing.T) {
	var b precision.Native
	for _, a := range []float64{1.0001, 1.01, 1.1, 1.5, 2, 3.7, 10} {
		for _, d := range []float64{1, 1.5, 2, 10, 123.456, 1e4} {
			cont := NewStepper[float64](b, a, Continuous)
			quant := NewStepper[float64](b, a, Quantized)

			dc, lc, err := cont.Step(d)
			if err != nil {
				t.Fatalf("a=%v d=%v: %v", a, d, err)
			}
			dq, lq, err := quant.Step(d)
			if err != nil {
				t.Fatalf("a=%v d=%v: %v", a, d, err)
			}

			if !(dc > d) {
				t.Errorf("a=%v d=%v: continuous D'=%v not above D", a, d, dc)
			}
			if dq < d {
				t.Errorf("a=%v d=%v: quantized D'=%v below D", a, d, dq)
			}
			if lq < lc {
				t.Errorf("a=%v d=%v: quantized L=%v below continuous L=%v", a, d, lq, lc)
			}
			if dq < dc {
				t.Errorf("a=%v d=%v: quantized D'=%v below continuous D'=%v", a, d, dq, dc)
			}
		}
	}
}

func TestStep_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		a, d float64
	}{
		{"a below one", 0.5, 1},
		{"tiny product", 1.5, 0.1},
		{"NaN", math.NaN(), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStepper[float64](precision.Native{}, tt.a, Continuous)
			_, _, err := s.Step(tt.d)
			if !errors.Is(err, ErrDegenerateStep) {
				t.Errorf("expected ErrDegenerateStep, got %v", err)
			}
		})
	}
}

func TestStep_QuantizedLiftsDegenerateProduct(t *testing.T) {
	s := NewStepper[float64](precision.Native{}, 0.5, Quantized)
	_, l, err := s.Step(1)
	if err != nil {
		t.Fatalf("ceil(0.5) should give L=1, got error %v", err)
	}
	if l != 1 {
		t.Errorf("expected L=1, got %v", l)
	}
}

func TestStep_BoundaryNearOne(t *testing.T) {
	s := NewStepper[float64](precision.Native{}, 1.0000001, Continuous)
	next, l, err := s.Step(1)
	if err != nil {
		t.Fatalf("step failed at the boundary: %v", err)
	}
	if l < 1 {
		t.Errorf("L=%v below 1", l)
	}
	if math.Abs(next-1) > 1e-6 {
		t.Errorf("expected D' close to 1, got %v", next)
	}

	exact := NewStepper[float64](precision.Native{}, 1, Continuous)
	next, _, err = exact.Step(1)
	if err != nil {
		t.Fatalf("L=1 must be accepted: %v", err)
	}
	if next != 1 {
		t.Errorf("L=1, D=1 should keep D'=1, got %v", next)
	}
}

func TestAdvance_NegativeRadicand(t *testing.T) {
	s := NewStepper[float64](precision.Native{}, 2, Continuous)
	_, err := s.Advance(1, 0.5)
	if !errors.Is(err, ErrInternalInvariant) {
		t.Errorf("expected ErrInternalInvariant, got %v", err)
	}
}

func TestCycleLength_Quantized(t *testing.T) {
	var b precision.Native
	tests := []struct {
		a, d, want float64
	}{
		{2, 1, 2},
		{1.01, 1, 2},
		{1.5, 2, 3},
		{1.5, 3, 5},
		{3, 4, 12},
	}
	for _, tt := range tests {
		if got := CycleLength(b, Quantized, tt.a, tt.d); got != tt.want {
			t.Errorf("ceil(%v*%v) = %v, want %v", tt.a, tt.d, got, tt.want)
		}
	}
}

func TestStep_BigMatchesNative(t *testing.T) {
	hp, err := precision.NewBig(50)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := hp.Parse("1.5")

	bs := NewStepper[*big.Float](hp, a, Continuous)
	ns := NewStepper[float64](precision.Native{}, 1.5, Continuous)

	db, dn := hp.FromFloat(1), 1.0
	for i := 0; i < 20; i++ {
		if db, _, err = bs.Step(db); err != nil {
			t.Fatal(err)
		}
		if dn, _, err = ns.Step(dn); err != nil {
			t.Fatal(err)
		}
	}
	if got := hp.Float64(db); math.Abs(got-dn)/got > 1e-13 {
		t.Errorf("backends disagree: big=%v native=%v", got, dn)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
	}{
		{"continuous", Continuous},
		{"", Continuous},
		{"Quantized", Quantized},
		{"ceil", Quantized},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParsePolicy("floor"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestStepError(t *testing.T) {
	err := &StepError{Step: 42, Wrapped: ErrDegenerateStep}
	if !errors.Is(err, ErrDegenerateStep) {
		t.Error("StepError should unwrap to its cause")
	}
	want := "step 42: pursuit: degenerate step (cycle length below 1)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestStep_HugeAStaysFinite(t *testing.T) {
	for _, a := range []float64{1e155, 1e200, 1e300} {
		for _, policy := range []Policy{Continuous, Quantized} {
			s := NewStepper[float64](precision.Native{}, a, policy)
			d := 1.0
			for i, want := range []float64{math.Sqrt2, math.Sqrt(3), 2} {
				next, l, err := s.Step(d)
				if err != nil {
					t.Fatalf("a=%g %s step %d: %v", a, policy, i+1, err)
				}
				if math.IsInf(l, 0) || math.Abs(next-want) > 1e-12 {
					t.Errorf("a=%g %s step %d: L=%v D'=%v, want %v", a, policy, i+1, l, next, want)
				}
				d = next
			}
		}
	}
}

func TestStep_OverflowIsReported(t *testing.T) {
	s := NewStepper[float64](precision.Native{}, 1e308, Continuous)
	_, _, err := s.Step(2)
	if !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}
	if errors.Is(err, ErrInternalInvariant) {
		t.Errorf("overflow reported as an invariant violation: %v", err)
	}
}
