package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/automation"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/config"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/experiment"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/export"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/report"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/storage"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	a         float64
	d0        float64
	steps     int64
	precision string
	digits    int
	rounding  string
	limit     float64
	angles    bool
	window    int
	progress  int64
	metrics   []string

	// Compare side overrides
	aPrecision string
	bPrecision string
	aDigits    int
	bDigits    int
	aRounding  string
	bRounding  string
	tolerance  float64

	// Sweep range
	aMin    float64
	aMax    float64
	points  int
	workers int

	csvOut   string
	jsonOut  string
	pngOut   string
	svgOut   string
	trajOut  string
	save     bool
	fromCSV  string
	plotRows int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "hunter",
		Short:        "hunter and rabbit pursuit simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hunter", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the recurrence until the step count or the stop limit",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	simFlags(runCmd)
	runCmd.Flags().StringSliceVar(&metrics, "metrics", nil, "metrics to record (default: all)")
	runCmd.Flags().BoolVar(&save, "save", false, "store the run under the data directory")
	outputFlags(runCmd)
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write the trajectory as SVG (needs --angles)")
	runCmd.Flags().StringVar(&trajOut, "trajectory", "", "write the trajectory as PNG (needs --angles)")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run two configurations in lockstep and compare D per cycle",
		Args:  cobra.NoArgs,
		RunE:  compareRuns,
	}
	simFlags(compareCmd)
	outputFlags(compareCmd)
	compareCmd.Flags().StringVar(&aPrecision, "a-precision", "", "side A precision")
	compareCmd.Flags().StringVar(&bPrecision, "b-precision", "", "side B precision")
	compareCmd.Flags().IntVar(&aDigits, "a-digits", 0, "side A digits")
	compareCmd.Flags().IntVar(&bDigits, "b-digits", 0, "side B digits")
	compareCmd.Flags().StringVar(&aRounding, "a-rounding", "", "side A rounding")
	compareCmd.Flags().StringVar(&bRounding, "b-rounding", "", "side B rounding")
	compareCmd.Flags().Float64Var(&tolerance, "tolerance", report.DefaultTolerance, "flag relative errors above this")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the same configuration over a range of a",
		Args:  cobra.NoArgs,
		RunE:  sweepA,
	}
	simFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&aMin, "a-min", 1.1, "smallest a")
	sweepCmd.Flags().Float64Var(&aMax, "a-max", 3, "largest a")
	sweepCmd.Flags().IntVar(&points, "points", 10, "number of values of a")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default: CPUs)")
	sweepCmd.Flags().StringVar(&csvOut, "csv", "", "write the table as CSV")
	sweepCmd.Flags().StringVar(&jsonOut, "json", "", "write the table as JSON")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	simFlags(liveCmd)

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run or a states CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&fromCSV, "csv", "", "read states from a CSV file instead of the store")
	plotCmd.Flags().IntVar(&plotRows, "height", 12, "terminal chart height")
	plotCmd.Flags().StringVar(&pngOut, "png", "", "write the D chart as PNG")
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "write the trajectory as SVG")
	plotCmd.Flags().StringVar(&trajOut, "trajectory", "", "write the trajectory as PNG")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(runCmd, compareCmd, sweepCmd, liveCmd, plotCmd, runsCmd, presetsCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func simFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&a, "a", config.DefaultA, "rabbit jump over hunter step, > 1")
	f.Float64Var(&d0, "d0", config.DefaultD0, "initial separation, >= 1")
	f.Int64Var(&steps, "steps", config.DefaultSteps, "maximum number of cycles")
	f.StringVar(&precision, "precision", "standard", "standard or high")
	f.IntVar(&digits, "digits", config.DefaultDigits, "significant digits for high precision")
	f.StringVar(&rounding, "rounding", "continuous", "continuous (modified rules) or quantized (original rules)")
	f.Float64Var(&limit, "limit", 0, "stop once D reaches this, 0 disables")
	f.BoolVar(&angles, "angles", false, "track headings and positions")
	f.IntVar(&window, "window", 0, "stream the run, keeping only the last n states")
	f.Int64Var(&progress, "progress", config.DefaultProgress, "log every n cycles with --verbose")
}

func outputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&csvOut, "csv", "", "write rows as CSV")
	f.StringVar(&jsonOut, "json", "", "write the report as JSON")
	f.StringVar(&pngOut, "png", "", "write a chart as PNG")
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "hunter",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// loadConfig layers defaults, the preset, the config file and then every
// flag set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = cfg.Merge(loaded)
	}

	flags := cmd.Flags()
	if flags.Changed("a") {
		cfg.A = a
	}
	if flags.Changed("d0") {
		cfg.D0 = d0
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("precision") {
		cfg.Precision = precision
	}
	if flags.Changed("digits") {
		cfg.Digits = digits
	}
	if flags.Changed("rounding") {
		cfg.Rounding = rounding
	}
	if flags.Changed("limit") {
		cfg.Limit = limit
	}
	if flags.Changed("angles") {
		cfg.Angles = angles
	}
	if flags.Changed("window") {
		cfg.Window = window
	}
	if flags.Changed("progress") {
		cfg.Progress = progress
	}

	overrides := []struct {
		name string
		set  func()
	}{
		{"a-precision", func() { cfg.Compare.A.Precision = aPrecision }},
		{"b-precision", func() { cfg.Compare.B.Precision = bPrecision }},
		{"a-digits", func() { cfg.Compare.A.Digits = aDigits }},
		{"b-digits", func() { cfg.Compare.B.Digits = bDigits }},
		{"a-rounding", func() { cfg.Compare.A.Rounding = aRounding }},
		{"b-rounding", func() { cfg.Compare.B.Rounding = bRounding }},
	}
	for _, o := range overrides {
		if flags.Lookup(o.name) != nil && flags.Changed(o.name) {
			o.set()
		}
	}
	return cfg, nil
}

func experimentOptions(cfg *config.Config, logger *log.Logger) []experiment.Option {
	opts := []experiment.Option{
		experiment.WithLogger(logger),
		experiment.WithWindow(cfg.Window),
		experiment.WithProgress(cfg.Progress),
	}
	if len(metrics) > 0 {
		opts = append(opts, experiment.WithMetrics(metrics...))
	}
	return opts
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	simCfg, err := cfg.ToSim()
	if err != nil {
		return err
	}

	logger := newLogger()
	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("running", "config", simCfg)
	rep, runErr := experiment.New(simCfg, experimentOptions(cfg, logger)...).Run(ctx)
	if rep == nil {
		return runErr
	}

	fmt.Println(report.Summary(rep))
	if chart := report.PlotD(rep.Samples, 10); chart != "" {
		fmt.Println(chart)
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(rep)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	if err := writeSampleOutputs(rep.Samples, rep.Config.Rounding.String(), logger); err != nil {
		return err
	}
	if jsonOut != "" {
		if err := export.WriteJSON(jsonOut, rep); err != nil {
			return err
		}
		logger.Info("wrote report", "path", jsonOut)
	}
	return runErr
}

// writeSampleOutputs handles the --csv, --png, --svg and --trajectory
// flags shared by run and plot.
func writeSampleOutputs(samples []sim.Sample, label string, logger *log.Logger) error {
	if csvOut != "" {
		if err := export.WriteCSV(csvOut, samples); err != nil {
			return err
		}
		logger.Info("wrote states", "path", csvOut, "rows", len(samples))
	}
	if pngOut != "" {
		if err := report.DistanceChart(pngOut, report.Series{Label: label, Samples: samples}); err != nil {
			return err
		}
		logger.Info("wrote chart", "path", pngOut)
	}
	if svgOut != "" {
		svg := export.TrajectorySVG(samples, 800, 800)
		if svg == "" {
			return errors.New("no tracked samples for the trajectory, run with --angles")
		}
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		logger.Info("wrote trajectory", "path", svgOut)
	}
	if trajOut != "" {
		if err := report.TrajectoryChart(trajOut, samples); err != nil {
			return err
		}
		logger.Info("wrote trajectory", "path", trajOut)
	}
	return nil
}

func compareRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sa, sb, err := cfg.Sides()
	if err != nil {
		return err
	}

	logger := newLogger()
	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("comparing", "a", sa, "b", sb)
	rep, err := experiment.Compare(ctx, sa, sb, experimentOptions(cfg, logger)...)
	if err != nil {
		return err
	}

	fmt.Println(report.CompareSummary(rep, tolerance))
	if chart := report.PlotErrors(rep.Records, 10); chart != "" {
		fmt.Println(chart)
	}

	if csvOut != "" {
		if err := export.WriteComparisonCSV(csvOut, rep.Records); err != nil {
			return err
		}
		logger.Info("wrote records", "path", csvOut, "rows", len(rep.Records))
	}
	if jsonOut != "" {
		if err := export.WriteJSON(jsonOut, rep); err != nil {
			return err
		}
		logger.Info("wrote report", "path", jsonOut)
	}
	if pngOut != "" {
		if err := report.DifferenceChart(pngOut, rep.Records); err != nil {
			return err
		}
		logger.Info("wrote chart", "path", pngOut)
	}
	return nil
}

func sweepA(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	base, err := cfg.ToSim()
	if err != nil {
		return err
	}

	logger := newLogger()
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:    base,
		AMin:    aMin,
		AMax:    aMax,
		Points:  points,
		Workers: workers,
	}, logger)
	if err != nil {
		return err
	}

	fmt.Println(report.SweepTable(results))

	if csvOut != "" {
		rows := make([][]string, len(results))
		for i, r := range results {
			rows[i] = []string{
				strconv.FormatFloat(r.A, 'g', -1, 64),
				strconv.FormatInt(r.Steps, 10),
				strconv.FormatBool(r.Reached),
				strconv.FormatFloat(r.FinalD, 'g', -1, 64),
				r.Total,
				strconv.FormatFloat(r.Growth, 'g', -1, 64),
			}
		}
		header := []string{"a", "steps", "reached", "final_d", "total_length", "growth"}
		if err := export.WriteTableCSV(csvOut, header, rows); err != nil {
			return err
		}
	}
	if jsonOut != "" {
		return export.WriteJSON(jsonOut, results)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("angles") {
		cfg.Angles = true
	}
	simCfg, err := cfg.ToSim()
	if err != nil {
		return err
	}

	// The view owns the terminal; only warnings get through.
	logger := newLogger()
	logger.SetLevel(log.WarnLevel)
	ctx, cancel := signalContext()
	defer cancel()

	seq, errf, err := experiment.New(simCfg, experiment.WithLogger(logger)).Samples(ctx)
	if err != nil {
		return err
	}

	m := viz.NewModel(simCfg.String(), seq, errf, simCfg.Steps, simCfg.Limit)
	defer m.Close()

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok {
		last := fm.Last()
		fmt.Printf("cycle %d, D = %.12g\n", last.Step, last.D)
		return fm.Err()
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	var (
		samples []sim.Sample
		label   string
	)
	switch {
	case fromCSV != "":
		f, err := os.Open(fromCSV)
		if err != nil {
			return err
		}
		defer f.Close()
		if samples, err = export.ReadSamples(f); err != nil {
			return err
		}
		label = fromCSV
	case len(args) == 1:
		st := storage.New(dataDir)
		meta, err := st.Load(args[0])
		if err != nil {
			return err
		}
		if samples, err = st.LoadSamples(args[0]); err != nil {
			return err
		}
		label = meta.Rounding
		fmt.Printf("run: %s\n", meta.ID)
		fmt.Printf("a=%g d0=%g precision=%s rounding=%s\n", meta.A, meta.D0, meta.Precision, meta.Rounding)
	default:
		return errors.New("need a run id or --csv")
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}
	fmt.Printf("samples: %d\n\n", len(samples))
	if chart := report.PlotD(samples, plotRows); chart != "" {
		fmt.Println(chart)
	}
	return writeSampleOutputs(samples, label, newLogger())
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tA\tPRECISION\tROUNDING\tCYCLES\tSTOPPED\tFINAL D")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%g\t%s\t%s\t%d\t%t\t%.16s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.A,
			run.Precision,
			run.Rounding,
			run.Reached,
			run.Stopped,
			run.FinalD,
		)
	}

	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		sa, sb, err := p.Sides()
		if err != nil {
			fmt.Fprintf(w, "%s\t%v\n", name, err)
			continue
		}
		if p.Compare == (config.CompareConfig{}) {
			fmt.Fprintf(w, "%s\t%s\n", name, sa)
		} else {
			fmt.Fprintf(w, "%s\tA: %s\n\tB: %s\n", name, sa, sb)
		}
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	logger := newLogger()
	ctx, cancel := signalContext()
	defer cancel()

	if scenario.Name != "" {
		fmt.Printf("scenario: %s\n", scenario.Name)
	}
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}
	reports, err := automation.RunScenario(ctx, scenario, logger)
	for _, rep := range reports {
		fmt.Println(report.Summary(rep))
	}
	return err
}
