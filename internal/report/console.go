// Package report renders run and comparison results as console text,
// terminal plots and PNG charts.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/automation"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/compare"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/experiment"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/viz"
)

// DefaultTolerance is the relative error above which the less precise side
// of a comparison is flagged as precision exhausted.
const DefaultTolerance = 1e-6

const plotPoints = 72

func Summary(rep *experiment.Report) string {
	var s strings.Builder
	s.WriteString(viz.Title.Render("RUN "+shortID(rep.ID)) + "\n")
	s.WriteString(viz.Row("config", rep.Config.String()) + "\n")
	s.WriteString(viz.Row("backend", rep.Backend) + "\n")
	s.WriteString(viz.Row("cycles", fmt.Sprintf("%d", rep.Steps)) + "\n")
	s.WriteString(viz.Row("final D", rep.FinalText) + "\n")
	s.WriteString(viz.Row("total length", rep.TotalText) + "\n")
	if rep.Config.Limit > 0 {
		reached := "not reached"
		if rep.Stopped {
			reached = fmt.Sprintf("reached at cycle %d", rep.Steps)
		}
		s.WriteString(viz.Row(fmt.Sprintf("D > %g", rep.Config.Limit), reached) + "\n")
	}
	if rep.Violations > 0 {
		s.WriteString(viz.Row("stalled", viz.StatusPaused.Render(fmt.Sprintf("%d cycles", rep.Violations))) + "\n")
	}
	for _, name := range sortedKeys(rep.Metrics) {
		s.WriteString(viz.Row(name, fmt.Sprintf("%.6g", rep.Metrics[name])) + "\n")
	}
	s.WriteString(viz.Row("elapsed", rep.Elapsed.String()))
	if rep.Error != "" {
		s.WriteString("\n" + viz.StatusFailed.Render(rep.Error))
	}
	return viz.Panel.Render(s.String())
}

// CompareSummary flags the comparison when the maximum relative error
// exceeds tol.
func CompareSummary(rep *experiment.CompareReport, tol float64) string {
	st := rep.Stats

	var s strings.Builder
	s.WriteString(viz.Title.Render("COMPARE "+shortID(rep.ID)) + "\n")
	for _, side := range []experiment.SideReport{rep.A, rep.B} {
		line := fmt.Sprintf("%s %s, %d cycles, D = %s", side.Backend, side.Rounding, side.Steps, side.FinalText)
		if side.Error != "" {
			line += " " + viz.StatusFailed.Render(side.Error)
		}
		s.WriteString(viz.Row("side "+side.Label, line) + "\n")
	}
	s.WriteString(viz.Row("records", fmt.Sprintf("%d", st.Count)) + "\n")
	s.WriteString(viz.Row("max abs", fmt.Sprintf("%.6e", st.MaxAbs)) + "\n")
	s.WriteString(viz.Row("max rel", fmt.Sprintf("%.6e at cycle %d", st.MaxRel, st.MaxRelStep)) + "\n")
	s.WriteString(viz.Row("mean abs", fmt.Sprintf("%.6e", st.MeanAbs)) + "\n")
	s.WriteString(viz.Row("mean rel", fmt.Sprintf("%.6e", st.MeanRel)) + "\n")
	s.WriteString(viz.Row("final rel", fmt.Sprintf("%.6e", st.Final.RelErr)) + "\n")
	if n := len(rep.Records); n > 1 {
		rel := make([]float64, n)
		for i, r := range rep.Records {
			rel[i] = r.RelErr
		}
		s.WriteString(viz.Row("rel trend", viz.Sparkline(rel, 32)) + "\n")
		s.WriteString(viz.Subtle.Render(fmt.Sprintf("%14scycles %d to %d", "", rep.Records[0].Step, rep.Records[n-1].Step)) + "\n")
	}
	if st.Final.HasAngle {
		s.WriteString(viz.Row("max angle", fmt.Sprintf("%.6e rad", st.MaxAngle)) + "\n")
	}
	if st.MaxRel > tol {
		s.WriteString(viz.StatusPaused.Render(fmt.Sprintf("relative error above %g: the less precise side is precision exhausted", tol)) + "\n")
	}
	if w := rep.Warning; w != nil {
		s.WriteString(viz.StatusPaused.Render(w.Error()) + "\n")
	}
	s.WriteString(viz.Row("elapsed", rep.Elapsed.String()))
	return viz.Panel.Render(s.String())
}

func SweepTable(results []automation.SweepResult) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	var s strings.Builder
	s.WriteString(header.Render(fmt.Sprintf("%-12s %12s %8s %14s %10s", "a", "cycles", "reached", "final D", "growth")) + "\n")
	for _, r := range results {
		line := fmt.Sprintf("%-12.6g %12d %8t %14.8g %10.6f", r.A, r.Steps, r.Reached, r.FinalD, r.Growth)
		if r.Error != "" {
			line += " " + viz.StatusFailed.Render(r.Error)
		}
		s.WriteString(line + "\n")
	}
	return viz.Panel.Render(strings.TrimRight(s.String(), "\n"))
}

// PlotD is a terminal chart of D per cycle.
func PlotD(samples []sim.Sample, height int) string {
	ds := make([]float64, len(samples))
	for i, s := range samples {
		ds[i] = s.D
	}
	if len(ds) < 2 {
		return ""
	}
	return asciigraph.Plot(Downsample(ds, plotPoints),
		asciigraph.Height(height),
		asciigraph.Caption(fmt.Sprintf("D, cycles %d..%d", samples[0].Step, samples[len(samples)-1].Step)))
}

// PlotErrors is a terminal chart of the relative error per aligned cycle.
func PlotErrors(recs []compare.Record, height int) string {
	errs := make([]float64, len(recs))
	for i, r := range recs {
		errs[i] = r.RelErr
	}
	if len(errs) < 2 {
		return ""
	}
	return asciigraph.Plot(Downsample(errs, plotPoints),
		asciigraph.Height(height),
		asciigraph.Caption("relative error"))
}

// Downsample keeps at most n evenly spaced values, always including the
// last one.
func Downsample(vals []float64, n int) []float64 {
	if n <= 0 || len(vals) <= n {
		return vals
	}
	if n == 1 {
		return vals[len(vals)-1:]
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = vals[i*(len(vals)-1)/(n-1)]
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
