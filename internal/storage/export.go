package storage

import (
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/odelab/internal/dynamo"
)

// jsonFloat encodes NaN and Inf as null instead of failing the encode.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Steps  int           `json:"steps"`
	Times  []float64     `json:"times"`
	States [][]jsonFloat `json:"states"`
}

// ExportJSON writes a run's metadata and full trajectory as one document.
func ExportJSON(w io.Writer, meta *RunMetadata, traj *dynamo.Trajectory) error {
	data := ExportData{
		Run:    *meta,
		Steps:  traj.Len(),
		Times:  traj.Times,
		States: make([][]jsonFloat, traj.Len()),
	}
	for i, y := range traj.States {
		row := make([]jsonFloat, len(y))
		for j, v := range y {
			row[j] = jsonFloat(v)
		}
		data.States[i] = row
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportRun loads runID from the store and writes it with ExportJSON.
func (s *Store) ExportRun(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	traj, err := s.LoadStates(runID)
	if err != nil {
		return err
	}
	return ExportJSON(w, meta, traj)
}
