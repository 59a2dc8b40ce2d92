package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/compare"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/pursuit"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

// SideReport summarizes one side of a comparison.
type SideReport struct {
	Label     string `json:"label"`
	Backend   string `json:"backend"`
	Rounding  string `json:"rounding"`
	Steps     int64  `json:"steps"`
	FinalText string `json:"final_d"`
	Stopped   bool   `json:"stopped"`
	Error     string `json:"error,omitempty"`
}

// CompareReport holds every aligned record for collected comparisons and
// the trailing window for streamed ones; Stats always covers all of them.
type CompareReport struct {
	ID      string                     `json:"id"`
	A       SideReport                 `json:"a"`
	B       SideReport                 `json:"b"`
	Records []compare.Record           `json:"-"`
	Stats   compare.Stats              `json:"stats"`
	Warning *compare.TruncationWarning `json:"-"`
	Elapsed time.Duration              `json:"elapsed_ns"`
}

// Compare runs a against b step by step. With a window the two runs are
// pulled in lockstep and never materialized; without one both sides are
// collected concurrently first.
func Compare(ctx context.Context, a, b sim.Config, opts ...Option) (*CompareReport, error) {
	ea, eb := New(a, opts...), New(b, opts...)
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("side A: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("side B: %w", err)
	}

	ka, kb := a.Precision.Kind, b.Precision.Kind
	switch {
	case ka == precision.KindStandard && kb == precision.KindStandard:
		return compareWith(ctx, ea, precision.Native{}, eb, precision.Native{})
	case ka == precision.KindStandard && kb == precision.KindHigh:
		bb, err := precision.NewBig(b.Precision.Digits)
		if err != nil {
			return nil, err
		}
		return compareWith(ctx, ea, precision.Native{}, eb, bb)
	case ka == precision.KindHigh && kb == precision.KindStandard:
		ba, err := precision.NewBig(a.Precision.Digits)
		if err != nil {
			return nil, err
		}
		return compareWith(ctx, ea, ba, eb, precision.Native{})
	case ka == precision.KindHigh && kb == precision.KindHigh:
		ba, err := precision.NewBig(a.Precision.Digits)
		if err != nil {
			return nil, err
		}
		bb, err := precision.NewBig(b.Precision.Digits)
		if err != nil {
			return nil, err
		}
		return compareWith(ctx, ea, ba, eb, bb)
	}
	return nil, fmt.Errorf("%w: %w", pursuit.ErrInvalidConfiguration, precision.ErrUnknownKind)
}

func compareWith[A, B any](ctx context.Context, ea *Experiment, ba precision.Backend[A], eb *Experiment, bb precision.Backend[B]) (*CompareReport, error) {
	optsA, err := ea.simOptions()
	if err != nil {
		return nil, err
	}
	optsB, err := eb.simOptions()
	if err != nil {
		return nil, err
	}
	sa, err := sim.New(ba, ea.cfg, optsA...)
	if err != nil {
		return nil, err
	}
	sb, err := sim.New(bb, eb.cfg, optsB...)
	if err != nil {
		return nil, err
	}

	rep := &CompareReport{ID: uuid.NewString()}
	start := time.Now()

	var c *compare.Comparison[A, B]
	var srcA, srcB outcome

	if ea.window > 0 {
		ra, rb := sa.Run(ctx), sb.Run(ctx)
		c = compare.New(ba, compare.Source[A](ra), bb, compare.Source[B](rb), compare.WithLogger(ea.logger))
		w := sim.NewWindow[compare.Record](ea.window)
		for r := range c.Records() {
			rep.Stats.Observe(r)
			w.Push(r)
		}
		rep.Records = w.Values()
		srcA = outcome{stopped: ra.Stopped(), err: ra.Err()}
		srcB = outcome{stopped: rb.Stopped(), err: rb.Err()}
	} else {
		var resA *sim.Result[A]
		var resB *sim.Result[B]
		err := sim.Parallel(ctx, 2,
			func(ctx context.Context) error {
				resA, _ = sa.Collect(ctx)
				return nil
			},
			func(ctx context.Context) error {
				resB, _ = sb.Collect(ctx)
				return nil
			},
		)
		if err != nil {
			return nil, err
		}
		c = compare.New(ba, compare.Source[A](resA), bb, compare.Source[B](resB), compare.WithLogger(ea.logger))
		for r := range c.Records() {
			rep.Stats.Observe(r)
			rep.Records = append(rep.Records, r)
		}
		srcA = outcome{stopped: resA.Stopped, err: resA.Err()}
		srcB = outcome{stopped: resB.Stopped, err: resB.Err()}
	}

	rep.Elapsed = time.Since(start)
	rep.Warning = c.Warning()
	endA, endB := c.Ended()
	aligned := c.Aligned() > 0
	rep.A = side("A", ba, ea.cfg, c.LastA(), aligned, srcA.seen(endA))
	rep.B = side("B", bb, eb.cfg, c.LastB(), aligned, srcB.seen(endB))

	if err := c.Err(); err != nil {
		return rep, err
	}
	// A cancelled context is a failure of the comparison, not a truncation.
	if w := rep.Warning; w != nil && (errors.Is(w.Cause, context.Canceled) || errors.Is(w.Cause, context.DeadlineExceeded)) {
		return rep, w.Cause
	}
	return rep, nil
}

// outcome is how a source finished on its own.
type outcome struct {
	stopped bool
	err     error
}

// seen hides the source's ending when the comparison stopped pulling
// before reaching it, so both sides report only the aligned prefix.
func (o outcome) seen(ended bool) outcome {
	if !ended {
		return outcome{}
	}
	return o
}

func side[T any](label string, b precision.Backend[T], cfg sim.Config, last sim.State[T], aligned bool, o outcome) SideReport {
	sr := SideReport{
		Label:    label,
		Backend:  b.Name(),
		Rounding: cfg.Rounding.String(),
		Steps:    last.Step,
		Stopped:  o.stopped,
	}
	if aligned {
		sr.FinalText = b.Text(last.D, 0)
	}
	if o.err != nil {
		sr.Error = o.err.Error()
	}
	return sr
}
