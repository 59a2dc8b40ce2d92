package metrics

import (
	"fmt"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

// Threshold records the first step at which D exceeded level, or -1.
type Threshold struct {
	name  string
	level float64
	step  int64
}

func NewThreshold(level float64) *Threshold {
	return &Threshold{
		name:  fmt.Sprintf("steps_to_%g", level),
		level: level,
		step:  -1,
	}
}

func (t *Threshold) Name() string { return t.name }

func (t *Threshold) Observe(s sim.Sample) {
	if t.step < 0 && s.D > t.level {
		t.step = s.Step
	}
}

func (t *Threshold) Value() float64 { return float64(t.step) }

func (t *Threshold) Reset() { t.step = -1 }

// Stalls counts cycles whose float64 view of D did not grow. It catches
// the point where the standard backend can no longer resolve the increment
// even when a high precision run itself is fine.
type Stalls struct {
	name    string
	prev    float64
	stalls  int
	samples int
}

func NewStalls() *Stalls {
	return &Stalls{name: "stalls"}
}

func (s *Stalls) Name() string {
	return s.name
}

func (s *Stalls) Observe(x sim.Sample) {
	if s.samples > 0 && x.D <= s.prev {
		s.stalls++
	}
	s.prev = x.D
	s.samples++
}

func (s *Stalls) Value() float64 {
	return float64(s.stalls)
}

func (s *Stalls) Reset() {
	s.prev = 0
	s.stalls = 0
	s.samples = 0
}

// Defaults is the metric set attached to CLI runs.
func Defaults(limit float64) []sim.Metric {
	ms := []sim.Metric{
		NewTotalLength(),
		NewGrowth(),
		NewStalls(),
	}
	if limit > 0 {
		ms = append(ms, NewThreshold(limit))
	}
	return ms
}
