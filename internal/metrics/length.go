package metrics

import (
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

// TotalLength sums the cycle lengths, the distance each party has travelled.
type TotalLength struct {
	name string
	sum  float64
}

func NewTotalLength() *TotalLength {
	return &TotalLength{name: "total_length"}
}

func (t *TotalLength) Name() string { return t.name }

func (t *TotalLength) Observe(s sim.Sample) {
	t.sum += s.L
}

func (t *TotalLength) Value() float64 { return t.sum }

func (t *TotalLength) Reset() { t.sum = 0 }

// Growth is the mean per-cycle increase of D², (D_n² - D_0²) / n. In the
// continuous model it approaches 1 - 1/a.
type Growth struct {
	name    string
	first   float64
	last    float64
	samples int64
}

func NewGrowth() *Growth {
	return &Growth{name: "growth"}
}

func (g *Growth) Name() string { return g.name }

func (g *Growth) Observe(s sim.Sample) {
	sq := s.D * s.D
	if g.samples == 0 {
		g.first = sq
	}
	g.last = sq
	g.samples++
}

func (g *Growth) Value() float64 {
	if g.samples < 2 {
		return 0
	}
	return (g.last - g.first) / float64(g.samples-1)
}

func (g *Growth) Reset() {
	g.first = 0
	g.last = 0
	g.samples = 0
}
