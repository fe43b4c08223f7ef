package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/hydrosim/internal/aircraft"
	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/experiment"
	"github.com/san-kum/hydrosim/internal/metrics"
	"github.com/san-kum/hydrosim/internal/storage"
	"github.com/san-kum/hydrosim/internal/telemetry"
	"github.com/san-kum/hydrosim/internal/viz"
)

const defaultPresetFamily = "a320"

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	scripts    []string
	scenarios  *experiment.Registry

	dt       float64
	duration float64
	seed     int64
	failures []string
	record   []string
	addr     string

	series   []string
	height   int
	width    int
	overlay  bool
	output   string
	numRuns  int
	parallel int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "hydrosim",
		Short:        "A320 hydraulic system testbed",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogger(); err != nil {
				return err
			}
			return loadScenarios()
		},
		// Without a subcommand, pick a scenario and fly it live.
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			build := func(scenario string) (*experiment.Experiment, error) {
				c := *cfg
				c.Scenario = scenario
				return newExperiment(&c)
			}
			return viz.RunInteractive(scenarios, build, cfg.Dt)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hydrosim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "preset as family/name, family defaults to a320")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringArrayVar(&scripts, "scenario-file", nil, "load a YAML scenario script, repeatable")
	addSimFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario and save the trace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addSimFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "fly a scenario on the live dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve [scenario]",
		Short: "run a scenario in real time behind the telemetry server",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServe,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultTelemetryAddr, "listen address")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "run a scenario over many seeds and summarise the metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&numRuns, "runs", 16, "number of seeds")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs, 0 for unbounded")

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
	plotCmd.Flags().StringSliceVar(&series, "series", nil, "series to plot, defaults to the system pressures")
	plotCmd.Flags().IntVar(&height, "height", 10, "chart height")
	plotCmd.Flags().IntVar(&width, "width", 80, "chart width")
	plotCmd.Flags().BoolVar(&overlay, "overlay", false, "draw all series on one chart")

	pngCmd := &cobra.Command{
		Use:   "png [run_id]",
		Short: "save a run plot as an image",
		Args:  cobra.ExactArgs(1),
		RunE:  pngRun,
	}
	pngCmd.Flags().StringSliceVar(&series, "series", nil, "series to plot, defaults to the system pressures")
	pngCmd.Flags().StringVarP(&output, "output", "o", "", "output file, defaults to <run_id>.png")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDURATION\tDESCRIPTION")
			for _, name := range scenarios.List() {
				s, _ := scenarios.Get(name)
				fmt.Fprintf(w, "%s\t%.0fs\t%s\n", s.Name, s.Duration, s.Description)
			}
			return w.Flush()
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [family]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			families := config.ListFamilies()
			if len(args) > 0 {
				families = args
			}
			for _, family := range families {
				presets := config.ListPresets(family)
				if len(presets) == 0 {
					fmt.Printf("no presets for family: %s\n", family)
					continue
				}
				fmt.Printf("%s:\n", family)
				for _, p := range presets {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, sweepCmd, listCmd, plotCmd, pngCmd,
		exportJSONCmd, exportCSVCmd, scenariosCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "frame length in seconds")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration, 0 keeps the scenario length")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().StringArrayVar(&failures, "failure", nil, "initial failure as kind:target, repeatable")
	cmd.Flags().StringSliceVar(&record, "record", nil, "series to keep, empty keeps all")
}

func setupLogger() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadScenarios registers the scripted scenarios next to the built-in
// ones. A script may replace a built-in scenario of the same name.
func loadScenarios() error {
	scenarios = experiment.NewRegistry()
	for _, path := range scripts {
		s, err := experiment.LoadScenario(path)
		if err != nil {
			return fmt.Errorf("failed to load scenario: %w", err)
		}
		scenarios.Register(s)
		slog.Debug("scenario loaded", "name", s.Name, "path", path)
	}
	return nil
}

// loadConfig layers defaults, the preset, the config file and finally the
// flags the user actually set.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		family, name, ok := strings.Cut(preset, "/")
		if !ok {
			family, name = defaultPresetFamily, preset
		}
		cfg = config.GetPreset(family, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available in %s: %v)", preset, family, config.ListPresets(family))
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
	if len(args) > 0 {
		cfg.Scenario = args[0]
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("failure") {
		cfg.Failures = append(cfg.Failures, failures...)
	}
	if flags.Changed("record") {
		cfg.Record = record
	}
	if flags.Changed("addr") {
		cfg.Telemetry.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newExperiment(cfg *config.Config) (*experiment.Experiment, error) {
	ec, err := cfg.Experiment()
	if err != nil {
		return nil, err
	}
	exp := experiment.New(ec, experiment.WithLogger(slog.Default()))
	if err := exp.Setup(scenarios, metrics.Standard(aircraft.Colors)); err != nil {
		return nil, err
	}
	return exp, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := newExperiment(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s...\n", cfg.Scenario)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	simTime := 0.0
	if len(result.Times) > 0 {
		simTime = result.Times[len(result.Times)-1]
	}
	runID, err := st.Save(storage.RunMetadata{
		Scenario: cfg.Scenario,
		Preset:   preset,
		Seed:     cfg.Seed,
		Dt:       cfg.Dt,
		Duration: simTime,
		Failures: cfg.Failures,
	}, result)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-28s %10.3f\n", name, result.Metrics[name])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cfg)
	if err != nil {
		return err
	}
	return viz.RunDashboard(exp, cfg.Dt)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cfg)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	registry := telemetry.NewRegistry()
	server := telemetry.NewServer(exp.Aircraft(), registry,
		telemetry.WithLogger(slog.Default()),
		telemetry.WithPushInterval(time.Duration(cfg.Telemetry.PushInterval*float64(time.Second))))
	exp.Runner().AddObserver(registry)
	exp.Runner().AddObserver(server)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("serving %s on %s, ctrl+c to stop\n", cfg.Scenario, cfg.Telemetry.Addr)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Start(gctx, cfg.Telemetry.Addr) })
	g.Go(func() error {
		err := exp.RunRealtime(gctx, nil)
		if err == nil {
			slog.Info("scenario finished, telemetry stays up", "scenario", cfg.Scenario)
		}
		return err
	})

	err = g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tSEED\tFAILURES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%.3fs\t%d\t%s\n",
			run.ShortID(),
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Seed,
			strings.Join(run.Failures, ","),
		)
	}

	return w.Flush()
}

func loadRun(prefix string) (*storage.RunMetadata, []string, error) {
	st := storage.New(dataDir)
	id, err := st.Resolve(prefix)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	names := series
	if len(names) == 0 {
		for _, c := range aircraft.Colors {
			names = append(names, metrics.SystemPressureSeries(c))
		}
	}
	return meta, names, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, names, err := loadRun(args[0])
	if err != nil {
		return err
	}
	result, err := storage.New(dataDir).LoadTrace(meta.ID)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %s, %.1fs\n\n", meta.ShortID(), meta.Scenario, meta.Duration)
	if overlay {
		chart, err := viz.PlotMany(result, names, height, width)
		if err != nil {
			return err
		}
		fmt.Println(chart)
		return nil
	}
	for _, name := range names {
		chart, err := viz.PlotSeries(result, name, height, width)
		if err != nil {
			return err
		}
		fmt.Println(chart)
		fmt.Println()
	}
	return nil
}

func pngRun(cmd *cobra.Command, args []string) error {
	meta, names, err := loadRun(args[0])
	if err != nil {
		return err
	}
	result, err := storage.New(dataDir).LoadTrace(meta.ID)
	if err != nil {
		return err
	}

	path := output
	if path == "" {
		path = meta.ShortID() + ".png"
	}
	title := fmt.Sprintf("%s (seed %d)", meta.Scenario, meta.Seed)
	if err := viz.SavePNG(path, result, names, title); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	fmt.Printf("saved %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	id, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	result, err := st.LoadTrace(id)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	id, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	result, err := st.LoadTrace(id)
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, result)
}
