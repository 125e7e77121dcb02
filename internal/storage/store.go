// Package storage persists simulation runs as per-run directories holding
// metadata.json and a states.csv trajectory.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/trunklab/trunksim/internal/engine"
)

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
	ID          string    `json:"id"`
	Potential   string    `json:"potential"`
	Timestamp   time.Time `json:"timestamp"`
	Seed        int64     `json:"seed"`
	Dt          float64   `json:"dt"`
	Steps       int       `json:"steps"`
	Scheme      string    `json:"scheme"`
	Omega       float64   `json:"omega"`
	Gamma       float64   `json:"gamma"`
	Temperature float64   `json:"temperature"`
	FinalEnergy float64   `json:"final_energy"`
	EnergyDrift float64   `json:"energy_drift"`
}

// Save writes one run directory and returns its ID.
func (s *Store) Save(meta RunMetadata, traj *engine.Trajectory) (string, error) {
	runID := fmt.Sprintf("%s_%s", meta.Potential, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Steps = len(traj.Times) - 1
	if n := len(traj.Energies); n > 0 {
		meta.FinalEnergy = traj.Energies[n-1]
	}
	meta.EnergyDrift = traj.FinalDrift()

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(traj.States) == 0 {
		return runID, nil
	}

	header := []string{"time"}
	half := len(traj.States[0]) / 2
	for i := 0; i < half; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	for i := 0; i < half; i++ {
		header = append(header, fmt.Sprintf("v%d", i))
	}
	header = append(header, "energy")
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range traj.States {
		row := []string{strconv.FormatFloat(traj.Times[i], 'f', 6, 64)}
		for _, val := range traj.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		row = append(row, strconv.FormatFloat(traj.Energies[i], 'f', 6, 64))
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

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
		meta, err := s.LoadMetadata(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) LoadMetadata(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory reads a run's states.csv back into a trajectory.
func (s *Store) LoadTrajectory(runID string) (*engine.Trajectory, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return &engine.Trajectory{}, nil
	}

	traj := &engine.Trajectory{}
	for _, rec := range records[1:] {
		if len(rec) < 3 {
			continue
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bad time value %q: %w", rec[0], err)
		}
		vec := make([]float64, 0, len(rec)-2)
		for _, field := range rec[1 : len(rec)-1] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("bad state value %q: %w", field, err)
			}
			vec = append(vec, v)
		}
		energy, err := strconv.ParseFloat(rec[len(rec)-1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad energy value %q: %w", rec[len(rec)-1], err)
		}
		traj.Times = append(traj.Times, t)
		traj.States = append(traj.States, vec)
		traj.Energies = append(traj.Energies, energy)
	}
	return traj, nil
}

// ExportJSON writes a run's full trajectory as one JSON document.
func (s *Store) ExportJSON(runID, outPath string) error {
	meta, err := s.LoadMetadata(runID)
	if err != nil {
		return err
	}
	traj, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	doc := struct {
		Meta     *RunMetadata `json:"meta"`
		Times    []float64    `json:"times"`
		States   [][]float64  `json:"states"`
		Energies []float64    `json:"energies"`
	}{
		Meta:     meta,
		Times:    traj.Times,
		Energies: traj.Energies,
		States:   make([][]float64, len(traj.States)),
	}
	for i, st := range traj.States {
		doc.States[i] = st
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
