package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/san-kum/odelab/internal/analysis"
	"github.com/san-kum/odelab/internal/config"
	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/experiment"
	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/kinetics"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

const (
	referenceRTol = 1e-10
	referenceATol = 1e-12
)

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

func sci(v float64) string { return strconv.FormatFloat(v, 'e', 3, 64) }

func integratorArgs(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return integrators.Names()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	refCfg := cfg.Experiment()
	refCfg.Integrator, refCfg.RTol, refCfg.ATol = "dopri5", referenceRTol, referenceATol
	refExp, err := experiment.Build(refCfg)
	if err != nil {
		return err
	}
	ref, err := refExp.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("reference run: %w", err)
	}

	var invariants []kinetics.Invariant
	if c, ok := refExp.Model().(kinetics.Conserving); ok {
		invariants = c.Invariants()
	}

	fmt.Printf("comparing integrators for %s on %d points over [%g, %g]\n", cfg.Model, cfg.Points, cfg.T0, cfg.T1)
	fmt.Printf("reference: dopri5 rtol=%g atol=%g (%d evaluations)\n\n", referenceRTol, referenceATol, ref.Trajectory.Stats.Evaluations)

	table := newTable([]string{"INTEGRATOR", "EVALS", "MAX ERR", "FINAL ERR", "MAX DRIFT", "TIME"})
	for _, name := range integratorArgs(args[1:]) {
		runCfg := cfg.Experiment()
		runCfg.Integrator = name
		exp, err := experiment.Build(runCfg)
		if err != nil {
			table.Append([]string{name, "error: " + err.Error(), "", "", "", ""})
			continue
		}
		res, err := exp.Run(cmd.Context())
		if err != nil {
			slog.Warn("integration failed", "integrator", name, "error", err)
			table.Append([]string{name, "error: " + err.Error(), "", "", "", ""})
			continue
		}

		diff, err := analysis.Compare(res.Trajectory, ref.Trajectory)
		if err != nil {
			return err
		}
		maxErr := 0.0
		for _, v := range diff.MaxAbs {
			maxErr = math.Max(maxErr, v)
		}
		drift := 0.0
		for _, d := range analysis.Drift(res.Trajectory, invariants) {
			drift = math.Max(drift, d.MaxAbs)
		}

		table.Append([]string{
			res.Config.Integrator,
			strconv.Itoa(res.Trajectory.Stats.Evaluations),
			sci(maxErr),
			sci(diff.Final),
			sci(drift),
			res.Elapsed.Round(time.Microsecond).String(),
		})
	}
	table.Render()
	return nil
}

func convergenceStudy(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	model, err := kinetics.Lookup(cfg.Model)
	if err != nil {
		return err
	}

	y := dynamo.State(cfg.InitState)
	if len(y) == 0 {
		y = model.DefaultState()
	}
	p := dynamo.Params(cfg.Params)
	if len(p) == 0 {
		p = model.DefaultParams()
	}

	for _, name := range integratorArgs(args[1:]) {
		if _, err := integrators.Lookup(name, cfg.RTol, cfg.ATol); err != nil {
			return err
		}
		factory := func() dynamo.Integrator {
			integ, _ := integrators.Lookup(name, cfg.RTol, cfg.ATol)
			return integ
		}

		study, err := analysis.Convergence(cmd.Context(), factory, model, y, p, cfg.T0, cfg.T1, cfg.Points, levels)
		if err != nil {
			return err
		}

		fmt.Printf("%s on %s\n", study.Integrator, study.Model)
		table := newTable([]string{"POINTS", "STEP", "ERROR", "EVALS"})
		for _, l := range study.Levels {
			table.Append([]string{strconv.Itoa(l.Points), sci(l.Step), sci(l.Error), strconv.Itoa(l.Evaluations)})
		}
		table.Render()
		fmt.Printf("observed order: %.3f\n\n", study.Order)
	}
	return nil
}

func stiffnessReport(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	refCfg := cfg.Experiment()
	refCfg.Integrator = "dopri5"
	exp, err := experiment.Build(refCfg)
	if err != nil {
		return err
	}
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	a, err := analysis.Assess(exp.Model().Derive, res.Trajectory, res.Config.Params, samples, threshold)
	if err != nil {
		return err
	}

	fmt.Printf("model: %s over [%g, %g], %d samples\n", cfg.Model, cfg.T0, cfg.T1, a.Samples)
	fmt.Printf("worst stiffness ratio: %.4g at t=%.4g\n", a.Worst.Ratio, a.Worst.Time)
	fmt.Printf("eigenvalues there:\n")
	for _, lam := range a.Worst.Eigenvalues {
		fmt.Printf("  %.6g %+.6gi\n", real(lam), imag(lam))
	}
	fmt.Printf("forward euler stability limit: %.4g\n", a.EulerLimit)
	fmt.Printf("largest grid step: %.4g\n", a.MaxGridStep)
	fmt.Printf("dopri5 work: %d steps, %d rejected\n", res.Trajectory.Stats.Steps, res.Trajectory.Stats.Rejected)

	if a.Stiff {
		slog.Warn("system is stiff", "model", cfg.Model, "ratio", a.Worst.Ratio)
	}
	if a.EulerUnstable {
		slog.Warn("forward euler on this grid would be unstable", "max_step", a.MaxGridStep, "limit", a.EulerLimit)
	}
	return nil
}

func parseTuple(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("parameter set %q: %w", s, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func finalRow(res *experiment.Result) []string {
	_, y := res.Trajectory.At(res.Trajectory.Len() - 1)
	row := make([]string, len(y))
	for i, v := range y {
		row[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return row
}

func sweepParams(cmd *cobra.Command, args []string) error {
	if len(paramSets) == 0 {
		return fmt.Errorf("at least one --set is required")
	}
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	model, err := kinetics.Lookup(cfg.Model)
	if err != nil {
		return err
	}

	sets := make([][]float64, len(paramSets))
	for i, s := range paramSets {
		if sets[i], err = parseTuple(s); err != nil {
			return err
		}
	}

	start := time.Now()
	results, err := experiment.Sweep(cmd.Context(), cfg.Experiment(), sets)
	if err != nil {
		return err
	}
	slog.Info("sweep finished", "runs", len(results), "elapsed", time.Since(start))

	header := append([]string{strings.Join(model.ParamNames(), ",")}, model.Labels()...)
	table := newTable(header)
	for i, res := range results {
		table.Append(append([]string{paramSets[i]}, finalRow(res)...))
	}
	fmt.Printf("final state at t=%g\n", cfg.T1)
	table.Render()
	return nil
}

func ensembleRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	model, err := kinetics.Lookup(cfg.Model)
	if err != nil {
		return err
	}

	results, err := experiment.Ensemble(cmd.Context(), cfg.Experiment(), runs, jitter)
	if err != nil {
		return err
	}

	fmt.Printf("%d members, initial state jitter ±%g%%, seeds %d..%d\n", len(results), 100*jitter, cfg.Seed, cfg.Seed+int64(len(results)-1))
	table := newTable([]string{"SPECIES", "MEAN", "STD", "MIN", "MAX"})
	finals := make([]float64, len(results))
	for i, label := range model.Labels() {
		lo, hi := math.Inf(1), math.Inf(-1)
		for k, res := range results {
			v := res.Trajectory.Final()[i]
			finals[k] = v
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		mean, std := stat.MeanStdDev(finals, nil)
		table.Append([]string{label, sci(mean), sci(std), sci(lo), sci(hi)})
	}
	table.Render()
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := kinetics.Names()
	if len(args) == 1 {
		models = args
	}

	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			if len(args) == 1 {
				fmt.Printf("no presets for %s\n", model)
			}
			continue
		}
		fmt.Printf("%s:\n", model)
		for _, name := range presets {
			p := config.GetPreset(model, name)
			fmt.Printf("  %-10s %s, %d points on [%g, %g]\n", name, p.Integrator, p.Points, p.T0, p.T1)
		}
	}
	return nil
}
