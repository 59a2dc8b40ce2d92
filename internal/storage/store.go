package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/experiment"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/export"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

// Store keeps one directory per run holding metadata.json and states.csv.
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
	Timestamp  time.Time          `json:"timestamp"`
	A          float64            `json:"a"`
	D0         float64            `json:"d0"`
	Steps      int64              `json:"steps"`
	Precision  string             `json:"precision"`
	Rounding   string             `json:"rounding"`
	Limit      float64            `json:"limit,omitempty"`
	Reached    int64              `json:"reached_step"`
	Stopped    bool               `json:"stopped"`
	FinalD     string             `json:"final_d"`
	Total      string             `json:"total_length"`
	Violations int64              `json:"violations"`
	Metrics    map[string]float64 `json:"metrics"`
	Error      string             `json:"error,omitempty"`
}

func (s *Store) Save(rep *experiment.Report) (string, error) {
	runID := rep.ID
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	cfg := rep.Config
	meta := RunMetadata{
		ID:         runID,
		Timestamp:  time.Now(),
		A:          cfg.A,
		D0:         cfg.D0,
		Steps:      cfg.Steps,
		Precision:  rep.Backend,
		Rounding:   rep.Rounding,
		Limit:      cfg.Limit,
		Reached:    rep.Steps,
		Stopped:    rep.Stopped,
		FinalD:     rep.FinalText,
		Total:      rep.TotalText,
		Violations: rep.Violations,
		Metrics:    rep.Metrics,
		Error:      rep.Error,
	}

	if err := export.WriteJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := export.WriteCSV(filepath.Join(runDir, "states.csv"), rep.Samples); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns the stored runs, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return export.ReadSamples(file)
}
