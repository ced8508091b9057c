package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/san-kum/odelab/internal/config"
	"github.com/san-kum/odelab/internal/logutil"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string

	// run configuration
	integratorName string
	t0             float64
	t1             float64
	points         int
	y0             []float64
	params         []float64
	rtol           float64
	atol           float64
	seed           int64
	configFile     string
	preset         string
	showPlot       bool

	// plotting
	xAxis     int
	yAxis     int
	asciiMode bool
	split     bool
	themeName string

	// studies
	levels        int
	samples       int
	threshold     float64
	paramSets     []string
	runs          int
	jitter        float64
	tickMillis    int
	gridRanges    []string
	fitIntegrator string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "odelab",
		Short:         "ode integration lab for chemical kinetics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odelab", "data directory (env ODELAB_DATA)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error (env ODELAB_LOG_LEVEL)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a model and store the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runModel,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot the trajectory after the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot species against time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&split, "split", false, "one chart per species")
	plotCmd.Flags().StringVar(&themeName, "theme", "cyberpunk", "color theme")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot one species against another",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x", 0, "state index for the x axis")
	phaseCmd.Flags().IntVar(&yAxis, "y", 2, "state index for the y axis")
	phaseCmd.Flags().BoolVar(&asciiMode, "ascii", false, "plain ascii instead of braille")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a run's trajectory as csv to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a run's metadata and trajectory as json to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	watchCmd := &cobra.Command{
		Use:   "watch [run_id]",
		Short: "replay a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  watchRun,
	}
	watchCmd.Flags().IntVar(&tickMillis, "tick", 50, "milliseconds per row")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [integrator...]",
		Short: "compare integrators against a tight dopri5 reference",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)

	convergeCmd := &cobra.Command{
		Use:   "converge [model] [integrator...]",
		Short: "measure the observed order of accuracy",
		Args:  cobra.MinimumNArgs(1),
		RunE:  convergenceStudy,
	}
	addRunFlags(convergeCmd)
	convergeCmd.Flags().IntVar(&levels, "levels", 5, "number of grid refinements")

	stiffnessCmd := &cobra.Command{
		Use:   "stiffness [model]",
		Short: "estimate stiffness along a reference trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  stiffnessReport,
	}
	addRunFlags(stiffnessCmd)
	stiffnessCmd.Flags().IntVar(&samples, "samples", 20, "trajectory rows to linearise")
	stiffnessCmd.Flags().Float64Var(&threshold, "threshold", 0, "stiffness ratio threshold (0 = default)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run one integration per parameter set",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepParams,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&paramSets, "set", nil, "comma separated parameter tuple (repeatable)")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "run perturbed initial states and summarise the spread",
		Args:  cobra.ExactArgs(1),
		RunE:  ensembleRun,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 16, "number of members")
	ensembleCmd.Flags().Float64Var(&jitter, "jitter", 0.05, "relative perturbation of the initial state")

	fitCmd := &cobra.Command{
		Use:   "fit [run_id]",
		Short: "recover rate constants from a stored run by grid search",
		Args:  cobra.ExactArgs(1),
		RunE:  fitRates,
	}
	fitCmd.Flags().StringArrayVar(&gridRanges, "grid", nil, "comma separated candidates for one parameter (repeat in parameter order)")
	fitCmd.Flags().StringVar(&fitIntegrator, "integrator", "", "integrator for the candidates (default: the run's)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml batch of experiments",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, exportCSVCmd, exportJSONCmd, watchCmd,
		compareCmd, convergeCmd, stiffnessCmd, sweepCmd, ensembleCmd, fitCmd, scenarioCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&integratorName, "integrator", config.DefaultIntegrator, "integrator: euler, rk4, dopri5")
	cmd.Flags().Float64Var(&t0, "t0", 0, "start time")
	cmd.Flags().Float64Var(&t1, "t1", config.DefaultT1, "end time")
	cmd.Flags().IntVar(&points, "points", config.DefaultPoints, "number of grid points, both ends included")
	cmd.Flags().Float64SliceVar(&y0, "y0", nil, "initial state (default: model default)")
	cmd.Flags().Float64SliceVar(&params, "params", nil, "rate constants (default: model default)")
	cmd.Flags().Float64Var(&rtol, "rtol", 0, "relative tolerance for dopri5")
	cmd.Flags().Float64Var(&atol, "atol", 0, "absolute tolerance for dopri5")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
}

// setupLogging installs the default slog logger. Flags win over the
// environment.
func setupLogging(cmd *cobra.Command) error {
	env, err := config.ParseEnv()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("data") {
		dataDir = env.DataDir
	}
	if !cmd.Flags().Changed("log-level") {
		logLevel = env.LogLevel
	}

	level, err := logutil.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logutil.NewLogger(os.Stderr, level))
	return nil
}
