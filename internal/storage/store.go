package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dicebox/internal/physics"
	"github.com/san-kum/dicebox/internal/scene"
	"github.com/san-kum/dicebox/internal/sim"
)

const (
	metadataFile = "metadata.json"
	bodiesFile   = "bodies.csv"
)

// ErrRunExists is returned when saving under an ID that is already taken.
var ErrRunExists = errors.New("storage: run already exists")

var bodiesHeader = []string{"time", "id", "kind", "px", "py", "pz", "qw", "qx", "qy", "qz", "hx", "hy", "hz"}

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
	Preset     string             `json:"preset,omitempty"`
	Seed       int64              `json:"seed"`
	ThrowSeed  int64              `json:"throw_seed"`
	Boxes      int                `json:"boxes"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Settled    bool               `json:"settled"`
	SettleTime float64            `json:"settle_time"`
	Params     scene.Params       `json:"params"`
	Metrics    map[string]float64 `json:"metrics"`
}

// createRunDir makes a fresh directory for meta. Generated IDs take a
// numeric suffix on collision; an explicit ID that already exists is an error.
func (s *Store) createRunDir(meta *RunMetadata, now time.Time) (string, error) {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}
	if meta.ID != "" {
		dir := filepath.Join(s.baseDir, meta.ID)
		if err := os.Mkdir(dir, 0755); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return "", fmt.Errorf("%w: %s", ErrRunExists, meta.ID)
			}
			return "", err
		}
		return dir, nil
	}

	base := fmt.Sprintf("throw_%d_%d", now.Unix(), meta.ThrowSeed%100000)
	for n := 1; ; n++ {
		id := base
		if n > 1 {
			id = fmt.Sprintf("%s_%d", base, n)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			meta.ID = id
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
}

// Save writes meta and the recorded frames under a new run directory and
// returns the run ID.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	runDir, err := s.createRunDir(&meta, now)
	if err != nil {
		return "", err
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = now
	}
	meta.Steps = result.StepsTaken
	meta.Settled = result.Settled
	meta.SettleTime = result.SettleTime
	meta.Metrics = result.Metrics

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, bodiesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(bodiesHeader); err != nil {
		return "", err
	}
	for _, f := range result.Frames {
		for _, b := range f.Bodies {
			if err := w.Write(bodyRow(f.Time, b)); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func bodyRow(t float64, b physics.BodyState) []string {
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	q := b.Orientation
	h := b.HalfExtents
	if b.Kind == physics.KindPlane {
		h = b.Normal
	}
	return []string{
		ff(t), strconv.FormatUint(uint64(b.ID), 10), b.Kind.String(),
		ff(b.Position.X()), ff(b.Position.Y()), ff(b.Position.Z()),
		ff(q.W), ff(q.V.X()), ff(q.V.Y()), ff(q.V.Z()),
		ff(h.X()), ff(h.Y()), ff(h.Z()),
	}
}

// List returns every readable run, newest first.
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

// LoadFrames reads the recorded bodies back, grouped into frames by time.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, bodiesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(bodiesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	frames := make([]sim.Frame, 0)
	for i, record := range records {
		if i == 0 {
			continue
		}
		t, b, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", bodiesFile, i+1, err)
		}
		if n := len(frames); n == 0 || frames[n-1].Time != t {
			frames = append(frames, sim.Frame{Time: t})
		}
		last := &frames[len(frames)-1]
		last.Bodies = append(last.Bodies, b)
	}

	return frames, nil
}

func parseRow(record []string) (float64, physics.BodyState, error) {
	var vals [13]float64
	for j, field := range record {
		if j == 1 || j == 2 {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, physics.BodyState{}, err
		}
		vals[j] = v
	}
	id, err := strconv.ParseUint(record[1], 10, 32)
	if err != nil {
		return 0, physics.BodyState{}, err
	}

	b := physics.BodyState{
		ID:          physics.ID(id),
		Position:    mgl64.Vec3{vals[3], vals[4], vals[5]},
		Orientation: mgl64.Quat{W: vals[6], V: mgl64.Vec3{vals[7], vals[8], vals[9]}},
	}
	shape := mgl64.Vec3{vals[10], vals[11], vals[12]}
	switch record[2] {
	case physics.KindBox.String():
		b.Kind = physics.KindBox
		b.HalfExtents = shape
	case physics.KindPlane.String():
		b.Kind = physics.KindPlane
		b.Normal = shape
		b.Static = true
	default:
		return 0, physics.BodyState{}, fmt.Errorf("unknown body kind %q", record[2])
	}
	return vals[0], b, nil
}
