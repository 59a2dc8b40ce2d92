package sim

import (
	"context"
	"fmt"
	"iter"

	"github.com/charmbracelet/log"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/pursuit"
)

// ctxCheckMask sets how often the loop polls its context.
const ctxCheckMask = 1<<10 - 1

// maxPrealloc caps the capacity reserved by Collect.
const maxPrealloc = 1 << 20

type options struct {
	logger    *log.Logger
	metrics   []Metric
	observers []Observer
	stop      StopFunc
	progress  int64
}

type Option func(*options)

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m ...Metric) Option {
	return func(o *options) { o.metrics = append(o.metrics, m...) }
}

func WithObserver(obs Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// WithStop adds a caller predicate checked once per step, after the
// config's Limit.
func WithStop(fn StopFunc) Option {
	return func(o *options) { o.stop = fn }
}

// WithProgress logs a debug line every n cycles.
func WithProgress(n int64) Option {
	return func(o *options) { o.progress = n }
}

// Simulator drives the recurrence for one configuration in backend b.
// Every Run owns its own mutable state; a Simulator with metrics or
// observers attached must not be run concurrently.
type Simulator[T any] struct {
	b        precision.Backend[T]
	cfg      Config
	stepper  *pursuit.Stepper[T]
	d0       T
	limit    T
	hasLimit bool
	opts     options
}

func New[T any](b precision.Backend[T], cfg Config, opts ...Option) (*Simulator[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator[T]{b: b, cfg: cfg}
	for _, opt := range opts {
		opt(&s.opts)
	}
	if s.opts.logger == nil {
		s.opts.logger = log.Default()
	}

	a, err := b.Parse(decimal(cfg.A))
	if err != nil {
		return nil, fmt.Errorf("%w: a: %w", pursuit.ErrInvalidConfiguration, err)
	}
	if s.d0, err = b.Parse(decimal(cfg.D0)); err != nil {
		return nil, fmt.Errorf("%w: d0: %w", pursuit.ErrInvalidConfiguration, err)
	}
	if cfg.Limit > 0 {
		if s.limit, err = b.Parse(decimal(cfg.Limit)); err != nil {
			return nil, fmt.Errorf("%w: limit: %w", pursuit.ErrInvalidConfiguration, err)
		}
		s.hasLimit = true
	}
	s.stepper = pursuit.NewStepper(b, a, cfg.Rounding)
	return s, nil
}

func (s *Simulator[T]) Config() Config { return s.cfg }

func (s *Simulator[T]) Backend() precision.Backend[T] { return s.b }

func (s *Simulator[T]) AddMetric(m Metric)       { s.opts.metrics = append(s.opts.metrics, m) }
func (s *Simulator[T]) AddObserver(obs Observer) { s.opts.observers = append(s.opts.observers, obs) }

func (s *Simulator[T]) needSample() bool {
	return len(s.opts.metrics) > 0 || len(s.opts.observers) > 0 || s.opts.stop != nil
}

func (s *Simulator[T]) metricValues() map[string]float64 {
	out := make(map[string]float64, len(s.opts.metrics))
	for _, m := range s.opts.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Run returns a lazy producer of the run's states.
func (s *Simulator[T]) Run(ctx context.Context) *Run[T] {
	return &Run[T]{s: s, ctx: ctx}
}

// Collect materializes every state. Use Stream for long runs.
func (s *Simulator[T]) Collect(ctx context.Context) (*Result[T], error) {
	hint := s.cfg.Steps + 1
	if hint > maxPrealloc {
		hint = maxPrealloc
	}

	run := s.Run(ctx)
	res := &Result[T]{States: make([]State[T], 0, hint)}
	for st := range run.All() {
		res.States = append(res.States, st)
	}

	res.Total = run.Total()
	res.Stopped = run.Stopped()
	res.Violations = run.Violations()
	res.Metrics = s.metricValues()
	res.last = run.Last()
	res.err = run.Err()
	return res, res.err
}

// Stream runs without materializing states; memory stays O(window).
func (s *Simulator[T]) Stream(ctx context.Context, window int) (*Summary[T], error) {
	run := s.Run(ctx)
	w := NewWindow[State[T]](window)
	for st := range run.All() {
		w.Push(st)
	}

	last := run.Last()
	sum := &Summary[T]{
		Steps:      last.Step,
		Final:      last,
		Window:     w.Values(),
		Total:      run.Total(),
		Stopped:    run.Stopped(),
		Violations: run.Violations(),
		Metrics:    s.metricValues(),
	}
	return sum, run.Err()
}

// Run is a restartable producer: every range over All starts again from D0.
// Err and the accessors describe the most recent iteration.
type Run[T any] struct {
	s          *Simulator[T]
	ctx        context.Context
	last       State[T]
	total      T
	stopped    bool
	violations int64
	err        error
}

func (r *Run[T]) Err() error { return r.err }

// Last is the most recent state produced; before the first state it holds
// D0 only.
func (r *Run[T]) Last() State[T]    { return r.last }
func (r *Run[T]) Total() T          { return r.total }
func (r *Run[T]) Stopped() bool     { return r.stopped }
func (r *Run[T]) Violations() int64 { return r.violations }

func (r *Run[T]) reset() {
	r.last = State[T]{D: r.s.d0}
	r.total = r.s.b.FromFloat(0)
	r.stopped = false
	r.violations = 0
	r.err = nil
	for _, m := range r.s.opts.metrics {
		m.Reset()
	}
}

func (r *Run[T]) All() iter.Seq[State[T]] {
	return func(yield func(State[T]) bool) {
		r.reset()
		if err := r.ctx.Err(); err != nil {
			r.err = err
			return
		}

		s := r.s
		b := s.b
		cfg := s.cfg

		var heading *pursuit.Heading[T]
		var track pursuit.Track
		cur := State[T]{D: s.d0, Tracked: cfg.Angles}
		if cfg.Angles {
			heading = pursuit.NewHeading(b)
			track = pursuit.NewTrack(cfg.D0)
			cur.Angle = b.FromFloat(0)
			cur.HunterAngle = b.FromFloat(0)
			cur.Rabbit, cur.Hunter = track.Rabbit, track.Hunter
		}

		r.last = cur
		if !r.emit(cur, yield) {
			return
		}

		for i := int64(1); i <= cfg.Steps; i++ {
			if i&ctxCheckMask == 0 {
				if err := r.ctx.Err(); err != nil {
					r.err = err
					return
				}
			}

			next, l, err := s.stepper.Step(cur.D)
			if err != nil {
				r.err = &pursuit.StepError{Step: i, Wrapped: err}
				return
			}

			st := State[T]{Step: i, D: next, L: l, Tracked: cfg.Angles}
			if heading != nil {
				rabbit, hunter, err := heading.Turn(cur.D, l)
				if err != nil {
					r.err = &pursuit.StepError{Step: i, Wrapped: err}
					return
				}
				track.Advance(b.Float64(l), b.Float64(rabbit), b.Float64(hunter))
				st.Angle, st.HunterAngle = rabbit, hunter
				st.Rabbit, st.Hunter = track.Rabbit, track.Hunter
			}

			r.checkGrowth(cur, st)
			r.total = b.Add(r.total, l)
			r.last = st
			if !r.emit(st, yield) {
				return
			}
			cur = st
		}
	}
}

// emit hands st to observers and the consumer. It returns false when the
// iteration must end.
func (r *Run[T]) emit(st State[T], yield func(State[T]) bool) bool {
	s := r.s
	stop := false

	if s.needSample() {
		smp := st.Sample(s.b)
		for _, m := range s.opts.metrics {
			m.Observe(smp)
		}
		for _, obs := range s.opts.observers {
			obs.OnStep(smp)
		}
		if s.opts.stop != nil && s.opts.stop(smp) {
			stop = true
		}
	}
	if s.hasLimit && s.b.Cmp(st.D, s.limit) > 0 {
		stop = true
	}
	if s.opts.progress > 0 && st.Step > 0 && st.Step%s.opts.progress == 0 {
		s.opts.logger.Debug("cycle", "step", st.Step, "d", s.b.Text(st.D, 12), "precision", s.b.Name())
	}

	if !yield(st) {
		return false
	}
	if stop {
		r.stopped = true
		return false
	}
	return true
}

// checkGrowth counts steps where D failed to grow. Under Continuous rounding
// D must strictly increase, under Quantized it must not decrease; a
// violation means the backend ran out of precision. Only the first one is
// logged.
func (r *Run[T]) checkGrowth(prev, cur State[T]) {
	b := r.s.b
	c := b.Cmp(cur.D, prev.D)
	if c > 0 || (c == 0 && r.s.cfg.Rounding == pursuit.Quantized) {
		return
	}
	r.violations++
	if r.violations == 1 {
		r.s.opts.logger.Warn("separation did not grow, precision may be exhausted",
			"step", cur.Step,
			"d", b.Text(cur.D, 17),
			"prev", b.Text(prev.D, 17),
			"precision", b.Name())
	}
}
