// Package experiment turns a plain sim.Config into a run on the matching
// precision backend and reduces the result to backend-free reports.
package experiment

import (
	"context"
	"iter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

// Report is the outcome of one run. Samples holds every state for
// collected runs and only the trailing window for streamed ones.
type Report struct {
	ID         string             `json:"id"`
	Config     sim.Config         `json:"-"`
	Backend    string             `json:"backend"`
	Rounding   string             `json:"rounding"`
	Samples    []sim.Sample       `json:"-"`
	Final      sim.Sample         `json:"final"`
	FinalText  string             `json:"final_d"`
	TotalText  string             `json:"total_length"`
	Steps      int64              `json:"steps"`
	Stopped    bool               `json:"stopped"`
	Violations int64              `json:"violations"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Elapsed    time.Duration      `json:"elapsed_ns"`
	Error      string             `json:"error,omitempty"`
}

type Experiment struct {
	cfg       sim.Config
	logger    *log.Logger
	window    int
	progress  int64
	metrics   []string
	observers []sim.Observer
	registry  *Registry
}

type Option func(*Experiment)

func WithLogger(l *log.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

// WithWindow streams the run, keeping only the last n states. Zero
// collects every state.
func WithWindow(n int) Option {
	return func(e *Experiment) { e.window = n }
}

func WithProgress(n int64) Option {
	return func(e *Experiment) { e.progress = n }
}

// WithMetrics selects registered metrics by name.
func WithMetrics(names ...string) Option {
	return func(e *Experiment) { e.metrics = names }
}

func WithObserver(obs sim.Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, obs) }
}

func New(cfg sim.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		logger:   log.Default(),
		registry: NewRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Experiment) Config() sim.Config { return e.cfg }

func (e *Experiment) simOptions() ([]sim.Option, error) {
	ms, err := e.registry.Metrics(e.metrics, e.cfg.Limit)
	if err != nil {
		return nil, err
	}
	opts := []sim.Option{
		sim.WithLogger(e.logger),
		sim.WithProgress(e.progress),
		sim.WithMetrics(ms...),
	}
	for _, obs := range e.observers {
		opts = append(opts, sim.WithObserver(obs))
	}
	return opts, nil
}

// Run validates the config, picks the backend and runs to completion, to
// the stop limit or to the first failure. A failed run still returns its
// partial report.
func (e *Experiment) Run(ctx context.Context) (*Report, error) {
	r, err := e.registry.lookup(e.cfg.Precision)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, e)
}

// Samples starts a lazy run and returns its float64 view together with a
// function reporting the run's error once the sequence is drained.
func (e *Experiment) Samples(ctx context.Context) (iter.Seq[sim.Sample], func() error, error) {
	r, err := e.registry.lookup(e.cfg.Precision)
	if err != nil {
		return nil, nil, err
	}
	return r.samples(ctx, e)
}

type runner interface {
	run(ctx context.Context, e *Experiment) (*Report, error)
	samples(ctx context.Context, e *Experiment) (iter.Seq[sim.Sample], func() error, error)
}

type backendRunner[T any] struct {
	b precision.Backend[T]
}

func (r backendRunner[T]) simulator(e *Experiment) (*sim.Simulator[T], error) {
	opts, err := e.simOptions()
	if err != nil {
		return nil, err
	}
	return sim.New(r.b, e.cfg, opts...)
}

func (r backendRunner[T]) run(ctx context.Context, e *Experiment) (*Report, error) {
	s, err := r.simulator(e)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		ID:       uuid.NewString(),
		Config:   e.cfg,
		Backend:  r.b.Name(),
		Rounding: e.cfg.Rounding.String(),
	}
	start := time.Now()

	var (
		final   sim.State[T]
		total   T
		runErr  error
		metrics map[string]float64
	)
	if e.window > 0 {
		sum, err := s.Stream(ctx, e.window)
		runErr = err
		final, total = sum.Final, sum.Total
		rep.Stopped, rep.Violations, metrics = sum.Stopped, sum.Violations, sum.Metrics
		rep.Samples = samplesOf(r.b, sum.Window)
	} else {
		res, err := s.Collect(ctx)
		runErr = err
		final, total = res.Last(), res.Total
		rep.Stopped, rep.Violations, metrics = res.Stopped, res.Violations, res.Metrics
		rep.Samples = samplesOf(r.b, res.States)
	}

	rep.Elapsed = time.Since(start)
	rep.Final = final.Sample(r.b)
	rep.Steps = final.Step
	rep.FinalText = r.b.Text(final.D, 0)
	rep.TotalText = r.b.Text(total, 0)
	rep.Metrics = metrics
	if runErr != nil {
		rep.Error = runErr.Error()
	}

	e.logger.Debug("run finished", "id", rep.ID, "backend", rep.Backend, "steps", rep.Steps, "elapsed", rep.Elapsed)
	return rep, runErr
}

func (r backendRunner[T]) samples(ctx context.Context, e *Experiment) (iter.Seq[sim.Sample], func() error, error) {
	s, err := r.simulator(e)
	if err != nil {
		return nil, nil, err
	}
	run := s.Run(ctx)
	seq := func(yield func(sim.Sample) bool) {
		for st := range run.All() {
			if !yield(st.Sample(r.b)) {
				return
			}
		}
	}
	return seq, run.Err, nil
}

func samplesOf[T any](b precision.Backend[T], states []sim.State[T]) []sim.Sample {
	out := make([]sim.Sample, len(states))
	for i, st := range states {
		out[i] = st.Sample(b)
	}
	return out
}
