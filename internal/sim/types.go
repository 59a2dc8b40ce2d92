package sim

import (
	"fmt"
	"iter"
	"math"
	"strconv"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/pursuit"
)

// State is one cycle of a run. L is the cycle length that produced D and is
// the zero value of T at step 0. The heading and position fields are only
// filled when Tracked is set.
type State[T any] struct {
	Step        int64
	D           T
	L           T
	Angle       T
	HunterAngle T
	Rabbit      pursuit.Point
	Hunter      pursuit.Point
	Tracked     bool
}

// Sample is the float64 view of a State handed to metrics, observers and
// reporting.
type Sample struct {
	Step        int64
	D           float64
	L           float64
	Angle       float64
	HunterAngle float64
	Rabbit      pursuit.Point
	Hunter      pursuit.Point
	Tracked     bool
}

func (s State[T]) Sample(b precision.Backend[T]) Sample {
	out := Sample{
		Step:    s.Step,
		D:       b.Float64(s.D),
		Rabbit:  s.Rabbit,
		Hunter:  s.Hunter,
		Tracked: s.Tracked,
	}
	if s.Step > 0 {
		out.L = b.Float64(s.L)
	}
	if s.Tracked {
		out.Angle = b.Float64(s.Angle)
		out.HunterAngle = b.Float64(s.HunterAngle)
	}
	return out
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

// StopFunc ends a run after the sample it returns true for.
type StopFunc func(s Sample) bool

// Config is immutable once a run starts.
type Config struct {
	A         float64
	D0        float64
	Steps     int64
	Precision precision.Mode
	Rounding  pursuit.Policy
	// Limit stops the run at the first D > Limit; zero disables it.
	Limit float64
	// Angles enables heading and position tracking.
	Angles bool
}

func DefaultConfig() Config {
	return Config{
		A:         2,
		D0:        1,
		Steps:     1000,
		Precision: precision.StandardMode(),
		Rounding:  pursuit.Continuous,
	}
}

func (c Config) Validate() error {
	if !(c.A > 1) || math.IsInf(c.A, 0) {
		return fmt.Errorf("%w: a must be > 1, got %v", pursuit.ErrInvalidConfiguration, c.A)
	}
	if !(c.D0 >= 1) || math.IsInf(c.D0, 0) {
		return fmt.Errorf("%w: d0 must be >= 1, got %v", pursuit.ErrInvalidConfiguration, c.D0)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", pursuit.ErrInvalidConfiguration, c.Steps)
	}
	if c.Limit < 0 || math.IsNaN(c.Limit) {
		return fmt.Errorf("%w: limit must be non-negative, got %v", pursuit.ErrInvalidConfiguration, c.Limit)
	}
	if err := c.Precision.Validate(); err != nil {
		return fmt.Errorf("%w: %w", pursuit.ErrInvalidConfiguration, err)
	}
	switch c.Rounding {
	case pursuit.Continuous, pursuit.Quantized:
	default:
		return fmt.Errorf("%w: unknown rounding %v", pursuit.ErrInvalidConfiguration, c.Rounding)
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("a=%s d0=%s steps=%d precision=%s rounding=%s",
		decimal(c.A), decimal(c.D0), c.Steps, c.Precision, c.Rounding)
}

// decimal is the shortest decimal form of f; high precision backends parse
// parameters from it so that a=1.01 means exactly 101/100.
func decimal(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

type Result[T any] struct {
	States     []State[T]
	Total      T
	Stopped    bool
	Violations int64
	Metrics    map[string]float64
	last       State[T]
	err        error
}

// Last is the final state produced, or the initial state when the run was
// cancelled before producing any.
func (r *Result[T]) Last() State[T] { return r.last }

// Err reports why the run ended early; nil when it ran to completion or was
// stopped by its stop condition.
func (r *Result[T]) Err() error { return r.err }

// All replays the collected states.
func (r *Result[T]) All() iter.Seq[State[T]] {
	return func(yield func(State[T]) bool) {
		for _, s := range r.States {
			if !yield(s) {
				return
			}
		}
	}
}

// Summary is what a streaming run retains: the final state, the last
// window states and running aggregates.
type Summary[T any] struct {
	Steps      int64
	Final      State[T]
	Window     []State[T]
	Total      T
	Stopped    bool
	Violations int64
	Metrics    map[string]float64
}
