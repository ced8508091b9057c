package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/experiment"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Integrator string             `json:"integrator"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	T0         float64            `json:"t0"`
	T1         float64            `json:"t1"`
	Points     int                `json:"points"`
	RTol       float64            `json:"rtol,omitempty"`
	ATol       float64            `json:"atol,omitempty"`
	InitState  []float64          `json:"init_state"`
	Params     []float64          `json:"params"`
	Labels     []string           `json:"labels"`
	Stats      dynamo.Stats       `json:"stats"`
	Elapsed    time.Duration      `json:"elapsed_ns"`
	Metrics    map[string]float64 `json:"metrics"`

	// NonFinite names metrics whose value was NaN or Inf; JSON cannot
	// carry them.
	NonFinite []string `json:"non_finite,omitempty"`
}

func newRunID(model string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", model, now.Unix(), uuid.NewString()[:8])
}

// Save writes the run's metadata and trajectory under a fresh run id.
// labels name the state columns; nil falls back to x0, x1, ...
func (s *Store) Save(result *experiment.Result, labels []string) (string, error) {
	now := time.Now()
	runID := newRunID(result.Config.Model, now)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	traj := result.Trajectory
	if len(labels) != traj.Dim() {
		labels = make([]string, traj.Dim())
		for i := range labels {
			labels[i] = fmt.Sprintf("x%d", i)
		}
	}

	cfg := result.Config
	meta := RunMetadata{
		ID:         runID,
		Model:      cfg.Model,
		Integrator: cfg.Integrator,
		Timestamp:  now,
		Seed:       cfg.Seed,
		T0:         cfg.T0,
		T1:         cfg.T1,
		Points:     cfg.Points,
		RTol:       cfg.RTol,
		ATol:       cfg.ATol,
		InitState:  cfg.InitState,
		Params:     cfg.Params,
		Labels:     labels,
		Stats:      traj.Stats,
		Elapsed:    result.Elapsed,
		Metrics:    make(map[string]float64, len(result.Metrics)),
	}
	for name, v := range result.Metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			meta.NonFinite = append(meta.NonFinite, name)
			continue
		}
		meta.Metrics[name] = v
	}
	sort.Strings(meta.NonFinite)

	if err := writeMetadata(filepath.Join(runDir, "metadata.json"), &meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), labels, traj); err != nil {
		return "", err
	}
	return runID, nil
}

func writeMetadata(path string, meta *RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeStates(path string, labels []string, traj *dynamo.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"time"}, labels...)); err != nil {
		return err
	}

	row := make([]string, 1+traj.Dim())
	for i := 0; i < traj.Len(); i++ {
		t, y := traj.At(i)
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for j, v := range y {
			row[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", metaPath, err)
	}
	return &meta, nil
}

// LoadStates reads a run's trajectory back from states.csv. Solver stats
// are not part of the CSV; use Load for them.
func (s *Store) LoadStates(runID string) (*dynamo.Trajectory, error) {
	csvPath := filepath.Join(s.baseDir, runID, "states.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", csvPath, err)
	}
	if len(records) < 2 {
		return dynamo.NewTrajectory(0), nil
	}

	traj := dynamo.NewTrajectory(len(records) - 1)
	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", csvPath, i+1, err)
			}
			vals[j] = v
		}
		traj.Append(vals[0], dynamo.State(vals[1:]))
	}
	return traj, nil
}
