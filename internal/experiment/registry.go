package experiment

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/metrics"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/pursuit"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

type Registry struct {
	backends map[precision.Kind]func(precision.Mode) (runner, error)
	metrics  map[string]func(limit float64) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		backends: make(map[precision.Kind]func(precision.Mode) (runner, error)),
		metrics:  make(map[string]func(float64) sim.Metric),
	}

	r.backends[precision.KindStandard] = func(precision.Mode) (runner, error) {
		return backendRunner[float64]{b: precision.Native{}}, nil
	}
	r.backends[precision.KindHigh] = func(m precision.Mode) (runner, error) {
		b, err := precision.NewBig(m.Digits)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", pursuit.ErrInvalidConfiguration, err)
		}
		return backendRunner[*big.Float]{b: b}, nil
	}

	r.metrics["total_length"] = func(float64) sim.Metric { return metrics.NewTotalLength() }
	r.metrics["growth"] = func(float64) sim.Metric { return metrics.NewGrowth() }
	r.metrics["stalls"] = func(float64) sim.Metric { return metrics.NewStalls() }
	r.metrics["threshold"] = func(limit float64) sim.Metric {
		if limit <= 0 {
			limit = DefaultThreshold
		}
		return metrics.NewThreshold(limit)
	}

	return r
}

// DefaultThreshold is the level the threshold metric watches when the run
// has no stop limit.
const DefaultThreshold = 100

func (r *Registry) lookup(m precision.Mode) (runner, error) {
	fn, ok := r.backends[m.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %v", pursuit.ErrInvalidConfiguration, precision.ErrUnknownKind, m.Kind)
	}
	return fn(m)
}

// Metrics builds fresh instances of the named metrics. A nil list selects
// the defaults.
func (r *Registry) Metrics(names []string, limit float64) ([]sim.Metric, error) {
	if names == nil {
		return metrics.Defaults(limit), nil
	}
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		fn, ok := r.metrics[name]
		if !ok {
			return nil, fmt.Errorf("unknown metric: %s", name)
		}
		out = append(out, fn(limit))
	}
	return out, nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
