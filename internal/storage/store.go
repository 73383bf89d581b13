package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/phil-mansfield/table"

	"github.com/san-kum/massim/internal/dynamo"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	energyFile     = "energy.dat"
)

var ErrCorruptRun = errors.New("storage: corrupt run")

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
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Substeps   int                `json:"substeps"`
	Steps      int                `json:"steps"`
	Integrator string             `json:"integrator"`
	Names      []string           `json:"names,omitempty"`
	Masses     []float64          `json:"masses"`
	Metrics    map[string]float64 `json:"metrics"`
}

// now is replaced in tests to make run IDs predictable.
var now = time.Now

// Save writes a run directory holding the metadata, the trajectory and the
// energy series, and returns the new run ID. ID, Timestamp and Masses of meta
// are filled in. The files are written to a hidden temporary directory that
// is renamed into place only when all of them succeed, so a failed save
// leaves nothing behind.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	ts := now()
	scene := strings.ReplaceAll(meta.Scene, string(filepath.Separator), "-")
	scene = strings.ReplaceAll(scene, "/", "-")
	runID := fmt.Sprintf("%s_%d", scene, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}
	tmpDir, err := os.MkdirTemp(s.baseDir, "."+runID+"-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	meta.ID = runID
	meta.Timestamp = ts
	meta.Masses = result.Masses()

	if err := writeJSON(filepath.Join(tmpDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(tmpDir, trajectoryFile), func(f *os.File) error {
		return WriteCSV(f, result)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(tmpDir, energyFile), func(f *os.File) error {
		return WriteEnergy(f, result)
	}); err != nil {
		return "", err
	}

	if _, err := os.Stat(runDir); err == nil {
		return "", fmt.Errorf("storage: run %s already exists", runID)
	}
	if err := os.Chmod(tmpDir, 0755); err != nil {
		return "", err
	}
	if err := os.Rename(tmpDir, runDir); err != nil {
		return "", err
	}

	return runID, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// List returns the metadata of every readable run, oldest first.
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
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadResult reconstructs the recorded trajectory of a run.
func (s *Store) LoadResult(runID string) (*dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	runDir := filepath.Join(s.baseDir, runID)

	f, err := os.Open(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	times, positions, velocities, err := ReadCSV(f, len(meta.Masses))
	if err != nil {
		return nil, err
	}

	energyTimes, energies, err := readEnergy(filepath.Join(runDir, energyFile))
	if err != nil {
		return nil, err
	}
	if len(meta.Masses) == 0 {
		times = energyTimes
		positions = make([][]dynamo.Vec2, len(times))
		velocities = make([][]dynamo.Vec2, len(times))
	}
	if len(energies) != len(times) {
		return nil, fmt.Errorf("%w: %s has %d energies for %d frames", ErrCorruptRun, runID, len(energies), len(times))
	}

	return dynamo.NewResult(times, positions, velocities, meta.Masses, energies)
}

func readEnergy(path string) (times, energies []float64, err error) {
	cols, err := table.ReadTable(path, []int{0, 1}, nil)
	if err != nil {
		return nil, nil, err
	}
	return cols[0], cols[1], nil
}
