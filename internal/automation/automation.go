package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/config"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/experiment"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/export"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run of a scenario. Preset names a starting point
// that the inline config fields override.
type ScenarioStep struct {
	Preset        string `yaml:"preset"`
	config.Config `yaml:",inline"`
	SaveAs        string `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}

	return &scenario, nil
}

// stepConfig resolves a step's preset and overlays the fields it sets.
func stepConfig(step ScenarioStep) (*config.Config, error) {
	base := config.DefaultConfig()
	if step.Preset != "" {
		p := config.GetPreset(step.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", step.Preset)
		}
		base = p
	}
	return base.Merge(&step.Config), nil
}

// RunScenario executes every step in order. A step whose run fails is
// reported and the scenario moves on; a cancelled context ends it.
func RunScenario(ctx context.Context, scenario *Scenario, logger *log.Logger) ([]*experiment.Report, error) {
	results := make([]*experiment.Report, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := stepConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		simCfg, err := cfg.ToSim()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "config", simCfg)

		exp := experiment.New(simCfg,
			experiment.WithLogger(logger),
			experiment.WithWindow(cfg.Window),
			experiment.WithProgress(cfg.Progress),
		)
		rep, err := exp.Run(ctx)
		if rep == nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return append(results, rep), err
		}
		if err != nil {
			logger.Warn("scenario step failed", "step", i+1, "err", err)
		}
		results = append(results, rep)

		if step.SaveAs != "" {
			if err := export.WriteCSV(step.SaveAs, rep.Samples); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
	}

	return results, nil
}

// ParameterSweep runs the same configuration across evenly spaced values
// of a.
type ParameterSweep struct {
	Base    sim.Config
	AMin    float64
	AMax    float64
	Points  int
	Workers int
}

// SweepResult is one point of a sweep. Steps is the cycle at which the
// stop limit was reached when Reached is set.
type SweepResult struct {
	A       float64       `json:"a"`
	Steps   int64         `json:"steps"`
	Reached bool          `json:"reached"`
	FinalD  float64       `json:"final_d"`
	Total   string        `json:"total_length"`
	Growth  float64       `json:"growth"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Error   string        `json:"error,omitempty"`
}

func (s *ParameterSweep) Values() []float64 {
	if s.Points <= 1 {
		return []float64{s.AMin}
	}
	step := (s.AMax - s.AMin) / float64(s.Points-1)
	vals := make([]float64, s.Points)
	for i := range vals {
		vals[i] = s.AMin + float64(i)*step
	}
	vals[len(vals)-1] = s.AMax
	return vals
}

// RunSweep runs every point concurrently, at most Workers at a time. Each
// run keeps no states beyond the final one.
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *log.Logger) ([]SweepResult, error) {
	vals := sweep.Values()
	for _, a := range vals {
		cfg := sweep.Base
		cfg.A = a
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	workers := sweep.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]SweepResult, len(vals))
	jobs := make([]func(context.Context) error, len(vals))
	for i, a := range vals {
		jobs[i] = func(ctx context.Context) error {
			cfg := sweep.Base
			cfg.A = a
			exp := experiment.New(cfg,
				experiment.WithLogger(logger),
				experiment.WithWindow(1),
				experiment.WithMetrics("growth"),
			)
			rep, err := exp.Run(ctx)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if rep == nil {
				results[i] = SweepResult{A: a, Error: err.Error()}
				return nil
			}
			results[i] = SweepResult{
				A:       a,
				Steps:   rep.Steps,
				Reached: rep.Stopped,
				FinalD:  rep.Final.D,
				Total:   rep.TotalText,
				Growth:  rep.Metrics["growth"],
				Elapsed: rep.Elapsed,
				Error:   rep.Error,
			}
			logger.Debug("sweep point", "a", a, "steps", rep.Steps, "reached", rep.Stopped)
			return nil
		}
	}

	if err := sim.Parallel(ctx, workers, jobs...); err != nil {
		return nil, err
	}
	return results, nil
}
