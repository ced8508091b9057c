package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/san-kum/odelab/internal/analysis"
	"github.com/san-kum/odelab/internal/config"
	"github.com/san-kum/odelab/internal/experiment"
	"github.com/san-kum/odelab/internal/storage"
	"github.com/san-kum/odelab/internal/viz"
	"github.com/spf13/cobra"
)

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg.Model = model

	flags := cmd.Flags()
	if flags.Changed("integrator") || (preset == "" && configFile == "") {
		cfg.Integrator = integratorName
	}
	if flags.Changed("t0") {
		cfg.T0 = t0
	}
	if flags.Changed("t1") {
		cfg.T1 = t1
	}
	if flags.Changed("points") {
		cfg.Points = points
	}
	if flags.Changed("y0") {
		cfg.InitState = y0
	}
	if flags.Changed("params") {
		cfg.Params = params
	}
	if flags.Changed("rtol") {
		cfg.RTol = rtol
	}
	if flags.Changed("atol") {
		cfg.ATol = atol
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runModel(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.Build(cfg.Experiment())
	if err != nil {
		return err
	}

	slog.Info("running", "model", cfg.Model, "integrator", cfg.Integrator, "points", cfg.Points, "t0", cfg.T0, "t1", cfg.T1)
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	labels := exp.Model().Labels()
	runID, err := st.Save(result, labels)
	if err != nil {
		return err
	}
	slog.Info("run stored", "id", runID, "elapsed", result.Elapsed, "evaluations", result.Trajectory.Stats.Evaluations)

	warnIfStiff(exp, result)

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("rows: %d  steps: %d  evaluations: %d  rejected: %d\n",
		result.Trajectory.Len(), result.Trajectory.Stats.Steps, result.Trajectory.Stats.Evaluations, result.Trajectory.Stats.Rejected)

	_, final := result.Trajectory.At(result.Trajectory.Len() - 1)
	fmt.Println("\nfinal state:")
	for i, v := range final {
		fmt.Printf("  %-6s %.6g\n", labels[i], v)
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}

	if showPlot {
		fmt.Println()
		fmt.Println(viz.PlotComponents(result.Trajectory, labels, viz.GetTheme(themeName), 80, 12, cfg.Model))
	}
	return nil
}

// warnIfStiff logs when the run's system looks stiff, and when forward
// Euler ran with steps past its stability limit.
func warnIfStiff(exp *experiment.Experiment, result *experiment.Result) {
	cfg := exp.Config()
	a, err := analysis.Assess(exp.Model().Derive, result.Trajectory, cfg.Params, 10, 0)
	if err != nil {
		slog.Debug("stiffness check skipped", "error", err)
		return
	}
	if a.Stiff {
		slog.Warn("system is stiff; consider dopri5 with loose tolerances or a shorter span",
			"ratio", a.Worst.Ratio, "at", a.Worst.Time)
	}
	if cfg.Integrator == "euler" && a.EulerUnstable {
		slog.Warn("grid spacing exceeds the forward euler stability limit",
			"max_step", a.MaxGridStep, "euler_limit", a.EulerLimit)
	}
}
