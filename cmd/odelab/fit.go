package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/odelab/internal/automation"
	"github.com/san-kum/odelab/internal/experiment"
	"github.com/san-kum/odelab/internal/kinetics"
	"github.com/san-kum/odelab/internal/logutil"
	"github.com/san-kum/odelab/internal/optim"
	"github.com/san-kum/odelab/internal/storage"
	"github.com/spf13/cobra"
)

// fitRates recovers rate constants from a stored run by grid search.
func fitRates(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}
	model, err := kinetics.Lookup(meta.Model)
	if err != nil {
		return err
	}
	names := model.ParamNames()
	if len(gridRanges) != len(names) {
		return fmt.Errorf("%s has %d parameters (%s), got %d --grid values",
			model.Name(), len(names), strings.Join(names, ", "), len(gridRanges))
	}

	ranges := make([][]float64, len(gridRanges))
	for i, s := range gridRanges {
		if ranges[i], err = parseTuple(s); err != nil {
			return err
		}
	}

	base := experiment.Config{
		Model:      meta.Model,
		Integrator: meta.Integrator,
		RTol:       meta.RTol,
		ATol:       meta.ATol,
	}
	if fitIntegrator != "" {
		base.Integrator = fitIntegrator
	}

	start := time.Now()
	fit, err := optim.NewGridSearch(ranges).Search(cmd.Context(), base, traj)
	if err != nil {
		return err
	}
	slog.Info("fit finished", "run", meta.ID, "candidates", fit.Evaluated, "elapsed", time.Since(start))

	table := newTable([]string{"PARAM", "FIT", "RECORDED"})
	for i, name := range names {
		recorded := "-"
		if i < len(meta.Params) {
			recorded = strconv.FormatFloat(meta.Params[i], 'g', 6, 64)
		}
		table.Append([]string{name, strconv.FormatFloat(fit.Params[i], 'g', 6, 64), recorded})
	}
	table.Render()
	fmt.Printf("rms %s over %d candidates\n", sci(fit.RMS), fit.Evaluated)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	slog.Info("running scenario", "name", scenario.Name, "steps", len(scenario.Steps))
	results, err := automation.RunScenario(cmd.Context(), scenario, st)

	table := newTable([]string{"STEP", "MODEL", "INTEGRATOR", "POINTS", "EVALS", "RUN"})
	for _, r := range results {
		cfg := r.Result.Config
		logutil.Trace("scenario step", "scenario", scenario.Name, "step", r.Index,
			"model", cfg.Model, "integrator", cfg.Integrator, "evals", r.Result.Trajectory.Stats.Evaluations,
			"elapsed", r.Result.Elapsed, "run", r.RunID)
		run := r.RunID
		if run == "" {
			run = "-"
		}
		table.Append([]string{
			strconv.Itoa(r.Index),
			cfg.Model,
			cfg.Integrator,
			strconv.Itoa(cfg.Points),
			strconv.Itoa(r.Result.Trajectory.Stats.Evaluations),
			run,
		})
	}
	table.Render()
	return err
}
