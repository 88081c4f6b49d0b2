package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/automation"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/export"
	"github.com/san-kum/springsim/internal/logging"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/optim"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/server"
	"github.com/san-kum/springsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	noColor  bool

	mass      float64
	stiffness float64
	damping   float64
	dt        float64
	duration  float64
	maxSteps  int

	configFile string
	preset     string

	outFile     string
	svgWidth    int
	svgHeight   int
	strokeColor string

	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	sweepSteps   int
	sweepWorkers int
	metricNames  []string

	refine int
	addr   string

	saveConfig string
	inputFile  string
	windowFrom float64
	windowTo   float64

	axes       []string
	tuneMetric string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "springsim",
		Short: "damped spring simulator",
		Long:  "Simulates a mass on a damped spring tied to a fixed anchor. With no subcommand it opens the interactive slider UI.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(os.Stderr, logLevel, noColor))
		},
		RunE:         runInteractive,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
	addParamFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one simulation and plot the elongation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addParamFlags(runCmd)
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved configuration to this yaml file")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "peaks, decay rate, dominant frequency and metrics",
		Args:  cobra.NoArgs,
		RunE:  analyzeRun,
	}
	addParamFlags(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "analyze a series from a CSV written by export-csv instead of simulating")
	analyzeCmd.Flags().Float64Var(&windowFrom, "from", 0, "analyze samples from this time on")
	analyzeCmd.Flags().Float64Var(&windowTo, "to", 0, "analyze samples before this time (default end of series)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv",
		Short: "write the elongation series as CSV",
		Args:  cobra.NoArgs,
		RunE:  exportCSV,
	}
	addParamFlags(exportCSVCmd)
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json",
		Short: "write parameters, series and metrics as JSON",
		Args:  cobra.NoArgs,
		RunE:  exportJSON,
	}
	addParamFlags(exportJSONCmd)
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "svg",
		Short: "render the elongation series as SVG",
		Args:  cobra.NoArgs,
		RunE:  exportSVG,
	}
	addParamFlags(svgCmd)
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")
	svgCmd.Flags().StringVar(&strokeColor, "color", "#00ff88", "line color")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter and tabulate metrics",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addParamFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", dynamo.ParamDamping, "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "parallel runs (default GOMAXPROCS)")
	sweepCmd.Flags().StringSliceVar(&metricNames, "metrics", nil, "metrics to report (default all)")

	convergeCmd := &cobra.Command{
		Use:   "converge",
		Short: "compare against a run with a finer step",
		Args:  cobra.NoArgs,
		RunE:  runConverge,
	}
	addParamFlags(convergeCmd)
	convergeCmd.Flags().IntVar(&refine, "refine", 10, "reference step is dt/refine")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted batch of simulations from YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addParamFlags(scenarioCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search for the parameters minimising a metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addParamFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&axes, "axis", nil, "searched parameter as name=min:max:steps (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "rms_elongation", "metric to minimise")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list parameter presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve simulations over HTTP",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	addParamFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")

	rootCmd.AddCommand(runCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, svgCmd, sweepCmd, convergeCmd, scenarioCmd, tuneCmd, presetsCmd, serveCmd)
	return rootCmd
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "mass m")
	cmd.Flags().Float64Var(&stiffness, "stiffness", config.DefaultStiffness, "spring constant k")
	cmd.Flags().Float64Var(&damping, "damping", config.DefaultDamping, "damping coefficient c")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time step")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated duration")
	cmd.Flags().IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "refuse runs longer than this many steps (0 disables)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset parameters")
}

// resolveConfig applies preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: %s (available: %v)", config.ErrUnknownPreset, preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("mass") {
		cfg.Params.Mass = mass
	}
	if flags.Changed("stiffness") {
		cfg.Params.Stiffness = stiffness
	}
	if flags.Changed("damping") {
		cfg.Params.Damping = damping
	}
	if flags.Changed("dt") {
		cfg.Params.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Params.Duration = duration
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if configFile != "" && !flags.Changed("log-level") {
		slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, cfg.Log.NoColor || noColor))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg.Params,
		experiment.WithMaxSteps(cfg.MaxSteps),
		experiment.WithLogger(logging.Discard()),
	)
	if err != nil {
		return err
	}
	return viz.Run(exp, cfg.Plot)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		slog.Info("config saved", "path", saveConfig)
	}

	ms, err := experiment.NewRegistry().GetMetrics()
	if err != nil {
		return err
	}

	start := time.Now()
	ts, positions := physics.Trajectory(cfg.Params)
	elapsed := time.Since(start)

	render := experiment.RendererFunc(func(p dynamo.Params, ts dynamo.TimeSeries, m map[string]float64) {
		fmt.Fprintf(out, "m=%g k=%g c=%g dt=%g T=%g\n", p.Mass, p.Stiffness, p.Damping, p.Dt, p.Duration)
		fmt.Fprintf(out, "completed in %v\n", elapsed)
		fmt.Fprintf(out, "samples: %d\n\n", ts.Len())
		fmt.Fprintln(out, viz.Plot(ts, cfg.Plot.Width, cfg.Plot.Height, "elongation vs sample"))
		fmt.Fprintln(out, "\nmetrics:")
		printMetrics(out, m)
	})
	render.Render(cfg.Params, ts, metrics.Evaluate(ts, ms...))
	slog.Debug("simulation complete", "samples", ts.Len(), "elapsed", elapsed)

	if n := len(positions); n > 0 {
		last := positions[n-1]
		fmt.Fprintf(out, "\nfinal position: (%.6f, %.6f, %.6f)\n", last.X, last.Y, last.Z)
	}
	return nil
}

// loadSeries reads the series to analyze from --input, or simulates cfg and
// reports the energy lost along the way.
func loadSeries(cfg *config.Config) (dynamo.TimeSeries, string, map[string]float64, error) {
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return dynamo.TimeSeries{}, "", nil, err
		}
		defer f.Close()
		ts, err := export.ReadCSV(f)
		if err != nil {
			return dynamo.TimeSeries{}, "", nil, fmt.Errorf("read %s: %w", inputFile, err)
		}
		if err := ts.Validate(); err != nil {
			return dynamo.TimeSeries{}, "", nil, err
		}
		return ts, inputFile, nil, nil
	}

	p := cfg.Params
	energy := metrics.NewEnergyLoss(p.Mass, p.Stiffness)
	ts, err := physics.DefaultSpring().Run(p, energy)
	if err != nil {
		return dynamo.TimeSeries{}, "", nil, err
	}
	label := fmt.Sprintf("m=%g k=%g c=%g dt=%g T=%g", p.Mass, p.Stiffness, p.Damping, p.Dt, p.Duration)
	return ts, label, map[string]float64{energy.Name(): energy.Value()}, nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	ts, label, extra, err := loadSeries(cfg)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("from") || flags.Changed("to") {
		to := windowTo
		if !flags.Changed("to") {
			to = math.Inf(1)
		}
		ts = ts.Window(windowFrom, to)
	}

	ms, err := experiment.NewRegistry().GetMetrics()
	if err != nil {
		return err
	}
	values := metrics.Evaluate(ts, ms...)
	for name, v := range extra {
		values[name] = v
	}

	fmt.Fprintf(out, "analysis: %s (%d samples)\n\n", label, ts.Len())

	ps := analysis.PowerSpectrum(ts)
	if len(ps) > 4 {
		plotData := ps[:len(ps)/4]
		fmt.Fprintln(out, asciigraph.Plot(plotData,
			asciigraph.Height(cfg.Plot.Height),
			asciigraph.Width(cfg.Plot.Width),
			asciigraph.Caption("power spectrum (elongation)"),
		))
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "peaks: %d\n", len(analysis.Peaks(ts)))
	period := analysis.Period(ts)
	if period > 0 {
		fmt.Fprintf(out, "period: %.4f s\n", period)
	}
	printPeakToPeak(out, analysis.PeakToPeak(ts, period))
	if rate, err := analysis.DecayRate(ts); err == nil {
		fmt.Fprintf(out, "decay rate: %.4f 1/s\n", rate)
	} else {
		fmt.Fprintf(out, "decay rate: n/a (%v)\n", err)
	}
	if freq, err := analysis.DominantFrequency(ts); err == nil {
		fmt.Fprintf(out, "dominant frequency: %.4f hz\n", freq)
	}

	fmt.Fprintln(out, "\nmetrics:")
	printMetrics(out, values)
	return nil
}

const maxPeakToPeak = 10

func printPeakToPeak(w io.Writer, amps []float64) {
	if len(amps) == 0 {
		fmt.Fprintln(w, "peak-to-peak per period: n/a")
		return
	}
	shown := amps
	if len(shown) > maxPeakToPeak {
		shown = shown[:maxPeakToPeak]
	}
	parts := make([]string, len(shown))
	for i, a := range shown {
		parts[i] = fmt.Sprintf("%.4g", a)
	}
	line := strings.Join(parts, " ")
	if len(amps) > len(shown) {
		line += fmt.Sprintf(" ... (%d periods)", len(amps))
	}
	fmt.Fprintf(w, "peak-to-peak per period: %s\n", line)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ts := physics.Simulate(cfg.Params)
	return writeOutput(cmd, func(w io.Writer) error {
		return export.WriteCSV(w, ts)
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ms, err := experiment.NewRegistry().GetMetrics()
	if err != nil {
		return err
	}
	ts := physics.Simulate(cfg.Params)
	data := export.NewData(cfg.Params, ts, metrics.Evaluate(ts, ms...))
	return writeOutput(cmd, func(w io.Writer) error {
		return export.WriteJSON(w, data)
	})
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ts := physics.Simulate(cfg.Params)
	return writeOutput(cmd, func(w io.Writer) error {
		return export.WriteSVG(w, ts, svgWidth, svgHeight, strokeColor)
	})
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := experiment.NewRegistry()
	sweep := &experiment.ParameterSweep{
		Base:     cfg.Params,
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
		Metrics:  metricNames,
		Workers:  sweepWorkers,
		MaxSteps: cfg.MaxSteps,
	}

	start := time.Now()
	results, err := experiment.RunSweep(ctx, sweep, registry, slog.Default())
	if err != nil {
		return err
	}
	slog.Info("sweep finished", "param", sweepParam, "points", len(results), "elapsed", time.Since(start))

	names := metricNames
	if len(names) == 0 {
		names = registry.ListMetrics()
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tsamples\t%s\n", sweepParam, strings.Join(names, "\t"))
	for _, r := range results {
		row := make([]string, len(names))
		for i, name := range names {
			row[i] = fmt.Sprintf("%.6f", r.Metrics[name])
		}
		fmt.Fprintf(w, "%.4f\t%d\t%s\n", r.ParamValue, r.Samples, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func runConverge(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if refine < 2 {
		return fmt.Errorf("refine must be at least 2, got %d", refine)
	}

	coarse := cfg.Params
	fine := coarse
	fine.Dt = coarse.Dt / float64(refine)
	if err := config.CheckSteps(fine, cfg.MaxSteps); err != nil {
		return err
	}

	ref := physics.Simulate(fine)
	run := physics.Simulate(coarse)
	diff, err := analysis.Convergence(ref, run)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "run\tdt\tsamples")
	fmt.Fprintf(w, "coarse\t%g\t%d\n", coarse.Dt, run.Len())
	fmt.Fprintf(w, "reference\t%g\t%d\n", fine.Dt, ref.Len())
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nmax |difference|: %.3e\n", diff)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := automation.RunScenario(ctx, sc, cfg.Params, cfg.MaxSteps, experiment.NewRegistry(), slog.Default())
	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "%s (m=%g k=%g c=%g dt=%g T=%g, %d samples)\n",
			r.Name, r.Params.Mass, r.Params.Stiffness, r.Params.Damping, r.Params.Dt, r.Params.Duration, r.Samples)
		printMetrics(out, r.Metrics)
	}
	return err
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(axes) == 0 {
		return fmt.Errorf("at least one --axis is required")
	}

	grid := make([]optim.Axis, 0, len(axes))
	for _, s := range axes {
		axis, err := optim.ParseAxis(s)
		if err != nil {
			return err
		}
		grid = append(grid, axis)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	best, err := optim.NewGridSearch(cfg.Params, cfg.MaxSteps, grid...).Minimize(ctx, experiment.NewRegistry(), tuneMetric)
	if err != nil {
		return err
	}

	p := best.Params
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "evaluated %d points (%d skipped)\n", best.Evaluated, best.Skipped)
	fmt.Fprintf(out, "best %s: %.6f\n", tuneMetric, best.Value)
	fmt.Fprintf(out, "  m=%g k=%g c=%g dt=%g T=%g\n", p.Mass, p.Stiffness, p.Damping, p.Dt, p.Duration)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "preset\tmass\tstiffness\tdamping\tdt\tduration")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\n", name, p.Mass, p.Stiffness, p.Damping, p.Dt, p.Duration)
	}
	return w.Flush()
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") || cfg.Server.Addr == "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, slog.Default()).ListenAndServe(ctx)
}

func printMetrics(w io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, m[name])
	}
}

// writeOutput sends fn's output to --out, or to the command's stdout.
func writeOutput(cmd *cobra.Command, fn func(io.Writer) error) error {
	if outFile == "" {
		return fn(cmd.OutOrStdout())
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("exported", "path", outFile)
	return nil
}
