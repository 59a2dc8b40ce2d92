package metrics

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/pursuit"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

func TestTotalLength(t *testing.T) {
	m := NewTotalLength()
	m.Observe(sim.Sample{Step: 0, D: 1})
	m.Observe(sim.Sample{Step: 1, D: 1.2, L: 2})
	m.Observe(sim.Sample{Step: 2, D: 1.4, L: 2.5})

	if m.Value() != 4.5 {
		t.Errorf("expected 4.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestThreshold(t *testing.T) {
	m := NewThreshold(2)
	if m.Value() != -1 {
		t.Errorf("expected -1 before crossing, got %f", m.Value())
	}
	for i, d := range []float64{1, 1.5, 2, 2.5} {
		m.Observe(sim.Sample{Step: int64(i), D: d})
	}
	if m.Value() != 3 {
		t.Errorf("expected crossing at step 3, got %f", m.Value())
	}
	if m.Name() != "steps_to_2" {
		t.Errorf("unexpected name %s", m.Name())
	}
}

func TestStalls(t *testing.T) {
	m := NewStalls()
	for i, d := range []float64{1, 2, 2, 3, 2.5} {
		m.Observe(sim.Sample{Step: int64(i), D: d})
	}
	if m.Value() != 2 {
		t.Errorf("expected 2 stalls, got %f", m.Value())
	}
}

func TestGrowthApproachesLimit(t *testing.T) {
	tests := []struct {
		a   float64
		tol float64
	}{
		{2, 0.01},
		{1.5, 0.01},
		{1.1, 0.005},
	}

	for _, tt := range tests {
		cfg := sim.Config{
			A:         tt.a,
			D0:        1,
			Steps:     20000,
			Precision: precision.StandardMode(),
			Rounding:  pursuit.Continuous,
		}
		g := NewGrowth()
		s, err := sim.New[float64](precision.Native{}, cfg,
			sim.WithLogger(log.New(io.Discard)),
			sim.WithMetrics(g),
		)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Stream(context.Background(), 0); err != nil {
			t.Fatal(err)
		}

		want := 1 - 1/tt.a
		if math.Abs(g.Value()-want) > tt.tol {
			t.Errorf("a=%v: growth %f, expected about %f", tt.a, g.Value(), want)
		}
	}
}
