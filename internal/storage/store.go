package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	meshFile     = "mesh.json"
	configFile   = "config.yaml"
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

func (s *Store) Dir(runID string) string { return filepath.Join(s.baseDir, runID) }

type RunMetadata struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Timestamp    time.Time          `json:"timestamp"`
	Dt           float64            `json:"dt"`
	Duration     float64            `json:"duration"`
	Width        int                `json:"width"`
	Height       int                `json:"height"`
	Steps        int                `json:"steps"`
	Asleep       bool               `json:"asleep"`
	NotConverged int                `json:"not_converged"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Mesh is the final vertex buffer of a run with its triangle indices.
type Mesh struct {
	Stride    int       `json:"stride"`
	Vertices  []float32 `json:"vertices"`
	Triangles []uint32  `json:"triangles"`
}

var seriesHeader = []string{
	"step", "time", "kinetic_energy", "mean_height", "min_height",
	"max_speed", "iterations", "converged", "residual", "awake",
}

// Save writes a run directory holding the metadata, the per-step series,
// the final mesh and the config that produced it.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.Unix())
	for n := 1; ; n++ {
		if _, err := os.Stat(s.Dir(runID)); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("%s_%d_%d", name, now.Unix(), n)
	}
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Name:         name,
		Timestamp:    now,
		Dt:           cfg.Dt,
		Duration:     cfg.Duration,
		Width:        cfg.Grid.Width,
		Height:       cfg.Grid.Height,
		Steps:        result.StepsTaken,
		Asleep:       result.Asleep,
		NotConverged: result.NotConverged(),
		Metrics:      result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	mesh := Mesh{Stride: cloth.VertexStride, Vertices: result.Vertices, Triangles: result.Triangles}
	if err := writeJSON(filepath.Join(runDir, meshFile), mesh); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, seriesFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteSeries(f, result.Samples); err != nil {
		return "", err
	}

	return runID, nil
}

// WriteSeries writes samples as CSV with a header row.
func WriteSeries(out io.Writer, samples []sim.Sample) error {
	w := csv.NewWriter(out)

	if err := w.Write(seriesHeader); err != nil {
		return err
	}

	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, sm := range samples {
		row := []string{
			strconv.Itoa(sm.Step),
			ff(sm.Time),
			ff(sm.KineticEnergy),
			ff(sm.MeanHeight),
			ff(sm.MinHeight),
			ff(sm.MaxSpeed),
			strconv.Itoa(sm.Iterations),
			strconv.FormatBool(sm.Converged),
			ff(sm.Residual),
			strconv.Itoa(sm.Awake),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, filepath.Base(filepath.Dir(path)))
		}
		return err
	}
	return json.Unmarshal(data, v)
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

		var meta RunMetadata
		if err := readJSON(filepath.Join(s.baseDir, entry.Name(), metadataFile), &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := readJSON(filepath.Join(s.Dir(runID), metadataFile), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadMesh(runID string) (*Mesh, error) {
	var m Mesh
	if err := readJSON(filepath.Join(s.Dir(runID), meshFile), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.Dir(runID), configFile))
}

func (s *Store) LoadSeries(runID string) ([]sim.Sample, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), seriesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return ReadSeries(f)
}

// ReadSeries parses the CSV written by WriteSeries. Rows that fail to
// parse are skipped.
func ReadSeries(in io.Reader) ([]sim.Sample, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for _, rec := range records[1:] {
		sm, err := parseSample(rec)
		if err != nil {
			continue
		}
		samples = append(samples, sm)
	}
	return samples, nil
}

func parseSample(rec []string) (sim.Sample, error) {
	var sm sim.Sample
	if len(rec) != len(seriesHeader) {
		return sm, fmt.Errorf("storage: expected %d fields, got %d", len(seriesHeader), len(rec))
	}

	var errs []error
	atoi := func(s string) int {
		v, err := strconv.Atoi(s)
		errs = append(errs, err)
		return v
	}
	atof := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		errs = append(errs, err)
		return v
	}

	sm.Step = atoi(rec[0])
	sm.Time = atof(rec[1])
	sm.KineticEnergy = atof(rec[2])
	sm.MeanHeight = atof(rec[3])
	sm.MinHeight = atof(rec[4])
	sm.MaxSpeed = atof(rec[5])
	sm.Iterations = atoi(rec[6])
	conv, err := strconv.ParseBool(rec[7])
	errs = append(errs, err)
	sm.Converged = conv
	sm.Residual = atof(rec[8])
	sm.Awake = atoi(rec[9])

	return sm, errors.Join(errs...)
}
