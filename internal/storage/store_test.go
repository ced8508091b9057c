package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/experiment"
)

func testResult() *experiment.Result {
	traj := dynamo.NewTrajectory(2)
	traj.Append(0, dynamo.State{1, 1, 0})
	traj.Append(0.2040816326530612, dynamo.State{0.9142857142857143, 0.9571428571428572, 0.08571428571428572})
	traj.Stats = dynamo.Stats{Evaluations: 1, Steps: 1}

	return &experiment.Result{
		Config: experiment.Config{
			Model:      "nobr",
			Integrator: "euler",
			InitState:  []float64{1, 1, 0},
			Params:     []float64{0.42, 0.17},
			T1:         10,
			Points:     2,
			Seed:       42,
		},
		Trajectory: traj,
		Metrics:    map[string]float64{"finite": 1, "invariant_drift:nitrogen": math.Inf(1)},
		Elapsed:    3 * time.Millisecond,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	result := testResult()
	runID, err := st.Save(result, []string{"NO", "Br2", "NOBr"})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(runID, "nobr_") {
		t.Errorf("expected run id prefixed with model, got %s", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Model != "nobr" || meta.Integrator != "euler" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Metrics["finite"] != 1 {
		t.Errorf("expected finite 1, got %f", meta.Metrics["finite"])
	}
	if len(meta.NonFinite) != 1 || meta.NonFinite[0] != "invariant_drift:nitrogen" {
		t.Errorf("expected non-finite drift to be listed, got %v", meta.NonFinite)
	}
	if meta.Stats.Steps != 1 {
		t.Errorf("expected stats to be stored, got %+v", meta.Stats)
	}

	traj, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}

	if traj.Len() != 2 {
		t.Fatalf("expected 2 states, got %d", traj.Len())
	}
	want := result.Trajectory
	for i := range want.States {
		if traj.Times[i] != want.Times[i] {
			t.Errorf("row %d: time %v, want %v", i, traj.Times[i], want.Times[i])
		}
		for j := range want.States[i] {
			if traj.States[i][j] != want.States[i][j] {
				t.Errorf("row %d col %d: %v, want %v (csv must round-trip exactly)", i, j, traj.States[i][j], want.States[i][j])
			}
		}
	}
}

func TestStoreUniqueIDs(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		id, err := st.Save(testResult(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if seen[id] {
			t.Fatalf("duplicate run id %s", id)
		}
		seen[id] = true
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(testResult(), nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testResult(), nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	metaPath := filepath.Join(runDir, "metadata.json")
	csvPath := filepath.Join(runDir, "states.csv")

	if _, err := os.Stat(metaPath); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("states.csv not created: %v", err)
	}
	if !strings.HasPrefix(string(data), "time,x0,x1,x2\n") {
		t.Errorf("unexpected header: %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nobr_0_deadbeef"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadStates("nobr_0_deadbeef"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestExportRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	result := testResult()
	result.Trajectory.States[1][2] = math.NaN()
	runID, err := st.Save(result, nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportRun(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var decoded struct {
		Run    RunMetadata  `json:"run"`
		Steps  int          `json:"steps"`
		States [][]*float64 `json:"states"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("export is not valid json: %v", err)
	}
	if decoded.Run.ID != runID || decoded.Steps != 2 {
		t.Errorf("unexpected export header: %+v", decoded.Run)
	}
	if decoded.States[1][2] != nil {
		t.Errorf("NaN should export as null, got %v", *decoded.States[1][2])
	}
	if decoded.States[0][0] == nil || *decoded.States[0][0] != 1 {
		t.Error("finite values must survive export")
	}
}
