package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/odelab/internal/config"
	"github.com/san-kum/odelab/internal/experiment"
	"github.com/san-kum/odelab/internal/storage"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTuple(t *testing.T) {
	got, err := parseTuple("0.42, 0.17")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.42, 0.17}, got)

	_, err = parseTuple("0.42,fast")
	assert.Error(t, err)
}

func newRunCmd(t *testing.T, flags ...string) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "run"}
	addRunFlags(cmd)
	require.NoError(t, cmd.Flags().Parse(flags))
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(newRunCmd(t), "nobr")
	require.NoError(t, err)

	assert.Equal(t, "nobr", cfg.Model)
	assert.Equal(t, "euler", cfg.Integrator)
	assert.Equal(t, 50, cfg.Points)
	assert.Equal(t, 10.0, cfg.T1)
}

func TestResolveConfigPresetThenFlags(t *testing.T) {
	cmd := newRunCmd(t, "--points", "21", "--params", "0.5,0.1")
	preset = "default"
	defer func() { preset = "" }()

	cfg, err := resolveConfig(cmd, "decay_chain")
	require.NoError(t, err)

	assert.Equal(t, "rk4", cfg.Integrator, "preset integrator kept when the flag is untouched")
	assert.Equal(t, 21, cfg.Points)
	assert.Equal(t, []float64{0.5, 0.1}, cfg.Params)
	assert.Equal(t, []float64{1, 0, 0}, cfg.InitState)
}

func TestResolveConfigFileOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("points: 21\n"), 0644))

	cmd := newRunCmd(t, "--atol", "1e-9")
	preset, configFile = "reference", path
	defer func() { preset, configFile = "", "" }()

	cfg, err := resolveConfig(cmd, "nobr")
	require.NoError(t, err)

	assert.Equal(t, "dopri5", cfg.Integrator)
	assert.Equal(t, 1e-10, cfg.RTol)
	assert.Equal(t, 1e-9, cfg.ATol)
	assert.Equal(t, []float64{0.42, 0.17}, cfg.Params)
	assert.Equal(t, 21, cfg.Points)
}

func TestResolveConfigUnknownPreset(t *testing.T) {
	cmd := newRunCmd(t)
	preset = "nope"
	defer func() { preset = "" }()

	_, err := resolveConfig(cmd, "nobr")
	assert.ErrorContains(t, err, "unknown preset")
}

func TestResolveConfigRejectsBadGrid(t *testing.T) {
	_, err := resolveConfig(newRunCmd(t, "--t0", "5", "--t1", "1"), "decay")
	assert.Error(t, err)
}

func TestFitRatesRecoversStoredRun(t *testing.T) {
	dataDir = t.TempDir()
	st := storage.New(dataDir)
	require.NoError(t, st.Init())

	cfg := config.GetPreset("nobr", "excess_br2").Experiment()
	exp, err := experiment.Build(cfg)
	require.NoError(t, err)
	res, err := exp.Run(context.Background())
	require.NoError(t, err)
	id, err := st.Save(res, exp.Model().Labels())
	require.NoError(t, err)

	cmd := &cobra.Command{Use: "fit"}
	cmd.SetContext(context.Background())

	gridRanges = []string{"0.4,0.42", "0.17,0.2"}
	defer func() { gridRanges = nil }()
	assert.NoError(t, fitRates(cmd, []string{id}))

	gridRanges = []string{"0.42"}
	assert.ErrorContains(t, fitRates(cmd, []string{id}), "2 parameters")
}

func TestRunScenarioCommand(t *testing.T) {
	dataDir = t.TempDir()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: batch\nsteps:\n  - model: decay\n    t1: 1\n    points: 11\n    save: true\n"), 0644))

	cmd := &cobra.Command{Use: "scenario"}
	cmd.SetContext(context.Background())
	require.NoError(t, runScenario(cmd, []string{path}))

	runs, err := storage.New(dataDir).List()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
