package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rk4box/internal/automation"
	"github.com/san-kum/rk4box/internal/config"
	"github.com/san-kum/rk4box/internal/experiment"
	"github.com/san-kum/rk4box/internal/export"
	"github.com/san-kum/rk4box/internal/sim"
	"github.com/san-kum/rk4box/internal/storage"
	"github.com/san-kum/rk4box/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	logger     *log.Logger
	configFile string
	preset     string
	integrator string
	boundary   string
	dt         float64
	duration   float64
	mass       float64
	gravity    float64
	forceMax   float64
	increment  float64
	initX      float64
	initY      float64
	initVX     float64
	initVY     float64
	noSave     bool
	outFile    string
	svgWidth   int
	svgHeight  int
	svgStroke  string
	dtList     string
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rk4box",
		Short: "fixed-step RK4 point-mass simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				Prefix:          "rk4box",
				Level:           level,
			})
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rk4box", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a batch simulation and store the trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drive the body from the keyboard",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().Float64Var(&increment, "increment", config.DefaultForceIncrement, "force added per key press")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 600, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	exportSVGCmd.Flags().StringVar(&svgStroke, "stroke", "#00ff88", "trajectory color")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "replay one configuration through several integrators",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	convergeCmd := &cobra.Command{
		Use:   "converge",
		Short: "free-fall error against the closed form for several dt",
		Args:  cobra.NoArgs,
		RunE:  convergeSweep,
	}
	addSimFlags(convergeCmd)
	convergeCmd.Flags().StringVar(&dtList, "dts", "0.1,0.05,0.02,0.01,0.005", "comma separated step sizes")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run and store every step of a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one force-model parameter over a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  runParamSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "gravity", "parameter name (gravity, or friction_g and mu on friction presets)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 50, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().Float64Var(&duration, "time", 0, "duration override")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportSVGCmd, presetsCmd, compareCmd, convergeCmd, scenarioCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	reg := experiment.NewRegistry()
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator ("+strings.Join(reg.ListIntegrators(), ", ")+")")
	cmd.Flags().StringVar(&boundary, "boundary", "reflective", "boundary ("+strings.Join(reg.ListBoundaries(), ", ")+")")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "body mass")
	cmd.Flags().Float64Var(&gravity, "gravity", 0, "gravitational acceleration")
	cmd.Flags().Float64Var(&forceMax, "force-max", 0, "applied force limit per axis")
	cmd.Flags().Float64Var(&initX, "x", 0, "initial x")
	cmd.Flags().Float64Var(&initY, "y", 0, "initial y")
	cmd.Flags().Float64Var(&initVX, "vx", 0, "initial x velocity")
	cmd.Flags().Float64Var(&initVY, "vy", 0, "initial y velocity")
}

// resolveConfig layers defaults, then the preset, then the config file,
// then any flag the user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "custom"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg, name = p, preset
	}

	if configFile != "" {
		c, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		if preset == "" {
			base := filepath.Base(configFile)
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("boundary") {
		cfg.Boundary = boundary
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("mass") {
		cfg.Mass = mass
	}
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("force-max") {
		cfg.ForceMax = forceMax
	}
	if flags.Changed("increment") {
		cfg.ForceIncrement = increment
	}
	if flags.Changed("x") {
		cfg.Init.X = initX
	}
	if flags.Changed("y") {
		cfg.Init.Y = initY
	}
	if flags.Changed("vx") {
		cfg.Init.VX = initVX
	}
	if flags.Changed("vy") {
		cfg.Init.VY = initVY
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), sim.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running", "preset", name, "steps", cfg.Steps())
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		logger.Warn("run stopped early", "err", e)
	}

	elapsed := time.Since(start)
	final := result.Snapshots[len(result.Snapshots)-1]

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("final: pos=(%.4f, %.4f) vel=(%.4f, %.4f)\n",
		final.Position[0], final.Position[1], final.Velocity[0], final.Velocity[1])

	if !noSave {
		st, err := storage.Open(dataDir)
		if err != nil {
			return err
		}
		defer st.Close()

		runID, err := st.Save(storage.RunMetadata{
			Preset:     name,
			Integrator: cfg.Integrator,
			Boundary:   cfg.Boundary,
			Dt:         cfg.Dt,
			Duration:   cfg.Duration,
			Domain:     cfg.Domain,
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// The terminal belongs to the view; only errors reach the log.
	logger.SetLevel(log.ErrorLevel)
	exp, err := experiment.New(cfg, experiment.NewRegistry(), sim.WithLogger(logger))
	if err != nil {
		return err
	}
	return viz.Run(exp.GetSimulator(), name, cfg.ForceIncrement)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tDT\tINTEG\tBOUNDARY\tTICKS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Boundary,
			run.Ticks,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *sim.Result, error) {
	st, err := storage.Open(dataDir)
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	snaps, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, &sim.Result{Snapshots: snaps, Metrics: meta.Metrics, StepsTaken: meta.Ticks}, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(result.Snapshots) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s (%s, %s)\n", meta.Preset, meta.Integrator, meta.Boundary)
	fmt.Printf("samples: %d\n\n", len(result.Snapshots))

	series := []struct {
		caption string
		value   func(i int) float64
	}{
		{"x position", func(i int) float64 { return result.Snapshots[i].Position[0] }},
		{"y position", func(i int) float64 { return result.Snapshots[i].Position[1] }},
		{"speed", func(i int) float64 { return result.Snapshots[i].Velocity.Len() }},
	}

	for _, s := range series {
		data := make([]float64, len(result.Snapshots))
		for i := range data {
			data[i] = s.value(i)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return storage.ExportJSON(w, *meta, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	svg := export.TrajectoryToSVG(export.Positions(result.Snapshots), meta.Domain, svgWidth, svgHeight, svgStroke)
	if svg == "" {
		return fmt.Errorf("run %s has too few samples to draw", meta.ID)
	}

	path := outFile
	if path == "" {
		path = meta.ID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBOUNDARY\tFORCE\tDOMAIN\tDT\tEVENTS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		force := fmt.Sprintf("gravity %.2f", p.Gravity)
		if p.Friction {
			force = fmt.Sprintf("friction mu=%.2f", p.FrictionCoefficient)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%gx%g\t%.4f\t%d\n",
			name, p.Boundary, force, p.Domain.Width, p.Domain.Height, p.Dt, len(p.Events))
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators on %s (dt=%.4f, duration=%.1fs)\n\n", name, cfg.Dt, cfg.Duration)

	start := time.Now()
	out, err := experiment.Compare(context.Background(), cfg, args)
	if err != nil {
		return err
	}
	logger.Debug("compare finished", "elapsed", time.Since(start))

	fmt.Printf("%-10s  %-24s  %-24s  %-12s\n", "integrator", "final position", "final velocity", "energy_drift")
	fmt.Println(strings.Repeat("-", 76))
	for _, c := range out {
		drift := "n/a"
		if v, ok := c.Metrics["energy_drift"]; ok {
			drift = fmt.Sprintf("%.2e", v)
		}
		fmt.Printf("%-10s  (%10.4f, %10.4f)  (%10.4f, %10.4f)  %12s\n",
			c.Integrator,
			c.Final.Position[0], c.Final.Position[1],
			c.Final.Velocity[0], c.Final.Velocity[1],
			drift,
		)
	}
	return nil
}

func convergeSweep(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	dts, err := parseDts(dtList)
	if err != nil {
		return err
	}

	points, err := experiment.Sweep(context.Background(), cfg, dts)
	if err != nil {
		return err
	}

	fmt.Printf("free fall, %s, g=%.3f, T=%.1fs\n\n", cfg.Integrator, cfg.Gravity, cfg.Duration)
	fmt.Printf("%-10s  %-8s  %-14s  %-14s\n", "dt", "steps", "pos_error", "vel_error")
	fmt.Println(strings.Repeat("-", 52))
	errs := make([]float64, len(points))
	for i, p := range points {
		fmt.Printf("%-10.5f  %-8d  %-14.3e  %-14.3e\n", p.Dt, p.Steps, p.PositionError, p.VelocityError)
		errs[i] = p.PositionError
	}

	if len(errs) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(errs,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("position error (largest dt first)"),
		))
	}
	return nil
}

func parseDts(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	dts := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid dt %q: %w", f, err)
		}
		dts = append(dts, v)
	}
	if len(dts) == 0 {
		return nil, fmt.Errorf("no step sizes given")
	}
	return dts, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st, err := storage.Open(dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.NewRunner(experiment.NewRegistry(), logger).RunScenario(ctx, sc)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tTICKS\tFINAL X\tFINAL Y")
	for _, r := range results {
		runID, err := st.Save(storage.RunMetadata{
			Preset:     r.Name,
			Integrator: r.Config.Integrator,
			Boundary:   r.Config.Boundary,
			Dt:         r.Config.Dt,
			Duration:   r.Config.Duration,
			Domain:     r.Config.Domain,
		}, r.Result)
		if err != nil {
			return err
		}
		final := r.Result.Snapshots[len(r.Result.Snapshots)-1]
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3f\t%.3f\n", r.Name, runID, r.Result.StepsTaken, final.Position[0], final.Position[1])
	}
	return w.Flush()
}

func runParamSweep(cmd *cobra.Command, args []string) error {
	sweep := &automation.ParameterSweep{
		Preset:    args[0],
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
		Duration:  duration,
	}

	results, err := automation.NewRunner(experiment.NewRegistry(), logger).RunSweep(context.Background(), sweep)
	if err != nil {
		return err
	}

	fmt.Printf("%-10s  %-24s  %-12s\n", sweepParam, "final position", "peak speed")
	fmt.Println(strings.Repeat("-", 50))
	peaks := make([]float64, len(results))
	for i, r := range results {
		fmt.Printf("%-10.4f  (%10.4f, %10.4f)  %12.4f\n", r.ParamValue, r.Final.Position[0], r.Final.Position[1], r.PeakSpeed)
		peaks[i] = r.PeakSpeed
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(peaks, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("peak speed")))
	return nil
}
