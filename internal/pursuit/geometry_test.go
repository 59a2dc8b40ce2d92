package pursuit

import (
	"math"
	"math/big"
	"testing"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
)

// Positions rebuilt from the headings must reproduce the scalar recurrence.
func TestHeading_TrackReproducesSeparation(t *testing.T) {
	tests := []struct {
		name   string
		a, d0  float64
		policy Policy
		steps  int
	}{
		{"a=2", 2, 1, Continuous, 50},
		{"a=1.3", 1.3, 1, Continuous, 200},
		{"a=1.3 far start", 1.3, 3.5, Continuous, 200},
		{"quantized a=1.01", 1.01, 1, Quantized, 200},
	}

	var b precision.Native
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStepper[float64](b, tt.a, tt.policy)
			h := NewHeading[float64](b)
			track := NewTrack(tt.d0)

			d := tt.d0
			for i := 1; i <= tt.steps; i++ {
				next, l, err := s.Step(d)
				if err != nil {
					t.Fatal(err)
				}
				rabbit, hunter, err := h.Turn(d, l)
				if err != nil {
					t.Fatal(err)
				}
				if rabbit < -math.Pi || rabbit >= math.Pi {
					t.Fatalf("step %d: rabbit heading %v not wrapped", i, rabbit)
				}
				track.Advance(l, rabbit, hunter)
				if diff := math.Abs(track.Separation() - next); diff > 1e-8 {
					t.Fatalf("step %d: track separation off by %g", i, diff)
				}
				d = next
			}
		})
	}
}

func TestHeading_FirstCycle(t *testing.T) {
	h := NewHeading[float64](precision.Native{})
	rabbit, hunter, err := h.Turn(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rabbit-math.Pi/6) > 1e-15 {
		t.Errorf("expected rabbit heading π/6, got %v", rabbit)
	}
	if hunter != 0 {
		t.Errorf("expected hunter heading 0, got %v", hunter)
	}

	h.Reset()
	rabbit, _, _ = h.Turn(1, 1)
	if math.Abs(rabbit-math.Pi/2) > 1e-15 {
		t.Errorf("after reset expected π/2, got %v", rabbit)
	}
}

func TestHeading_BigMatchesNative(t *testing.T) {
	hp, err := precision.NewBig(40)
	if err != nil {
		t.Fatal(err)
	}
	hb := NewHeading[*big.Float](hp)
	hn := NewHeading[float64](precision.Native{})

	ds := []float64{1, 1.2, 1.5, 1.9}
	ls := []float64{2, 2.4, 3, 3.8}
	for i := range ds {
		rb, hub, err := hb.Turn(hp.FromFloat(ds[i]), hp.FromFloat(ls[i]))
		if err != nil {
			t.Fatal(err)
		}
		rn, hun, _ := hn.Turn(ds[i], ls[i])
		if math.Abs(hp.Float64(rb)-rn) > 1e-14 || math.Abs(hp.Float64(hub)-hun) > 1e-14 {
			t.Errorf("cycle %d: big (%v, %v) vs native (%v, %v)", i, hp.Float64(rb), hp.Float64(hub), rn, hun)
		}
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, -math.Pi},
		{-math.Pi, -math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
	}
	for _, tt := range tests {
		if got := WrapAngle(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
