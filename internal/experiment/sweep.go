package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// Sweep runs base once per parameter tuple, concurrently. The first failure
// cancels the remaining runs.
func Sweep(ctx context.Context, base Config, paramSets [][]float64) ([]*Result, error) {
	configs := make([]Config, len(paramSets))
	for i, p := range paramSets {
		cfg := base
		cfg.Params = append([]float64(nil), p...)
		configs[i] = cfg
	}
	return runAll(ctx, configs)
}

// Ensemble runs n copies of base whose initial states are scaled by
// independent factors in [1-jitter, 1+jitter]. Run i draws from seed
// base.Seed+i, so ensembles are reproducible.
func Ensemble(ctx context.Context, base Config, n int, jitter float64) ([]*Result, error) {
	if n < 1 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", n)
	}
	if len(base.InitState) == 0 {
		exp, err := Build(base)
		if err != nil {
			return nil, err
		}
		base.InitState = exp.Config().InitState
	}

	configs := make([]Config, n)
	for i := range configs {
		cfg := base
		cfg.Seed = base.Seed + int64(i)
		rng := rand.New(rand.NewSource(cfg.Seed))

		cfg.InitState = make([]float64, len(base.InitState))
		for j, v := range base.InitState {
			cfg.InitState[j] = v * (1 + jitter*(2*rng.Float64()-1))
		}
		configs[i] = cfg
	}
	return runAll(ctx, configs)
}

func runAll(ctx context.Context, configs []Config) ([]*Result, error) {
	results := make([]*Result, len(configs))

	g, ctx := errgroup.WithContext(ctx)
	for i, cfg := range configs {
		g.Go(func() error {
			exp, err := Build(cfg)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
