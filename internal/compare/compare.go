// Package compare aligns two runs step by step and measures how far their
// separations drift apart.
package compare

import (
	"fmt"
	"iter"
	"math"
	"math/big"

	"github.com/charmbracelet/log"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/pursuit"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

// extraBits is the headroom used when subtracting the two separations.
const extraBits = 64

// Source replays a run. *sim.Run and *sim.Result both satisfy it.
type Source[T any] interface {
	All() iter.Seq[sim.State[T]]
	Err() error
}

// Record is one aligned step. AngleErr is the wrapped difference of the
// rabbit headings and is only set when HasAngle is.
type Record struct {
	Step     int64
	DA       float64
	DB       float64
	AbsErr   float64
	RelErr   float64
	AngleErr float64
	HasAngle bool
}

type Option func(*options)

type options struct {
	logger *log.Logger
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

type Comparison[A, B any] struct {
	ba   precision.Backend[A]
	sa   Source[A]
	bb   precision.Backend[B]
	sb   Source[B]
	opts options

	warning *TruncationWarning
	err     error

	lastA          sim.State[A]
	lastB          sim.State[B]
	aligned        int64
	endedA, endedB bool
}

func New[A, B any](ba precision.Backend[A], sa Source[A], bb precision.Backend[B], sb Source[B], opts ...Option) *Comparison[A, B] {
	c := &Comparison[A, B]{ba: ba, sa: sa, bb: bb, sb: sb}
	for _, opt := range opts {
		opt(&c.opts)
	}
	if c.opts.logger == nil {
		c.opts.logger = log.Default()
	}
	return c
}

// Warning reports a truncated comparison after Records has been drained.
func (c *Comparison[A, B]) Warning() *TruncationWarning { return c.warning }

// Err is set only when the two sides were misaligned.
func (c *Comparison[A, B]) Err() error { return c.err }

// Aligned is the number of records yielded by the last Records pass.
func (c *Comparison[A, B]) Aligned() int64 { return c.aligned }

// LastA is the final state of side A that was paired with side B. It is
// the zero state when nothing was aligned.
func (c *Comparison[A, B]) LastA() sim.State[A] { return c.lastA }

// LastB is the final state of side B that was paired with side A.
func (c *Comparison[A, B]) LastB() sim.State[B] { return c.lastB }

// Ended reports which sides ran out during the last Records pass. A side
// that was still producing when the other ran out has not ended, even if
// its source later would have.
func (c *Comparison[A, B]) Ended() (a, b bool) { return c.endedA, c.endedB }

// Records pulls both sides in lockstep. It stops at the shorter side and
// records a TruncationWarning instead of failing.
func (c *Comparison[A, B]) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		c.warning, c.err = nil, nil
		c.lastA, c.lastB = sim.State[A]{}, sim.State[B]{}
		c.aligned, c.endedA, c.endedB = 0, false, false

		nextA, stopA := iter.Pull(c.sa.All())
		defer stopA()
		nextB, stopB := iter.Pull(c.sb.All())
		defer stopB()

		var n int64
		for {
			a, okA := nextA()
			b, okB := nextB()
			if !okA || !okB {
				c.finish(okA, okB, n)
				return
			}
			if a.Step != b.Step {
				c.err = fmt.Errorf("%w: step %d aligned with step %d", pursuit.ErrInternalInvariant, a.Step, b.Step)
				return
			}
			n++
			c.lastA, c.lastB, c.aligned = a, b, n
			if !yield(c.record(a, b)) {
				return
			}
		}
	}
}

func (c *Comparison[A, B]) finish(okA, okB bool, n int64) {
	c.endedA, c.endedB = !okA, !okB
	var w *TruncationWarning
	switch {
	case !okA && okB:
		w = &TruncationWarning{Side: SideA, Index: n, Cause: c.sa.Err()}
	case okA && !okB:
		w = &TruncationWarning{Side: SideB, Index: n, Cause: c.sb.Err()}
	default:
		errA, errB := c.sa.Err(), c.sb.Err()
		switch {
		case errA != nil && errB != nil:
			w = &TruncationWarning{Side: SideBoth, Index: n, Cause: errA}
		case errA != nil:
			w = &TruncationWarning{Side: SideA, Index: n, Cause: errA}
		case errB != nil:
			w = &TruncationWarning{Side: SideB, Index: n, Cause: errB}
		}
	}
	if w == nil {
		return
	}
	c.warning = w
	c.opts.logger.Warn("comparison truncated", "side", w.Side, "index", w.Index, "cause", w.Cause)
}

func (c *Comparison[A, B]) record(a sim.State[A], b sim.State[B]) Record {
	x := c.ba.Big(a.D)
	y := c.bb.Big(b.D)
	p := max(x.Prec(), y.Prec()) + extraBits

	diff := new(big.Float).SetPrec(p).Sub(x, y)
	diff.Abs(diff)

	rec := Record{Step: a.Step}
	rec.DA, _ = x.Float64()
	rec.DB, _ = y.Float64()
	rec.AbsErr, _ = diff.Float64()
	if y.Sign() == 0 {
		rec.RelErr = math.Inf(1)
	} else {
		rec.RelErr, _ = new(big.Float).SetPrec(p).Quo(diff, y).Float64()
	}

	if a.Tracked && b.Tracked {
		ha := c.ba.Big(a.Angle)
		hb := c.bb.Big(b.Angle)
		d, _ := new(big.Float).SetPrec(p).Sub(ha, hb).Float64()
		rec.AngleErr = math.Abs(pursuit.WrapAngle(d))
		rec.HasAngle = true
	}
	return rec
}
