// Package storage persists batch runs: an SQLite index of run metadata
// plus one CSV trajectory per run directory.
package storage

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rk4box/internal/dynamo"
	"github.com/san-kum/rk4box/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	indexFile  = "runs.db"
	statesFile = "states.csv"
)

type Store struct {
	baseDir string
	db      *sql.DB
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Integrator string             `json:"integrator"`
	Boundary   string             `json:"boundary"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Domain     dynamo.Domain      `json:"domain"`
	Ticks      int                `json:"ticks"`
	Timestamp  time.Time          `json:"timestamp"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Open creates baseDir if needed and opens the run index inside it.
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", baseDir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(baseDir, indexFile))
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	s := &Store{baseDir: baseDir, db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			preset TEXT NOT NULL,
			integrator TEXT NOT NULL,
			boundary TEXT NOT NULL,
			dt REAL NOT NULL,
			duration REAL NOT NULL,
			width REAL NOT NULL,
			height REAL NOT NULL,
			ticks INTEGER NOT NULL,
			metrics TEXT NOT NULL DEFAULT '{}',
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save writes the trajectory and indexes the run. meta.ID and
// meta.Timestamp are filled in and the ID is returned.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Preset, now.UnixNano())
	meta.Timestamp = now
	meta.Ticks = result.StepsTaken
	meta.Metrics = result.Metrics
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("storage: cannot create run directory: %w", err)
	}
	if err := writeStates(filepath.Join(runDir, statesFile), result.Snapshots); err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("storage: cannot write states: %w", err)
	}

	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	_, err = s.db.Exec(
		`INSERT INTO runs (id, preset, integrator, boundary, dt, duration, width, height, ticks, metrics, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Preset, meta.Integrator, meta.Boundary,
		meta.Dt, meta.Duration, meta.Domain.Width, meta.Domain.Height,
		meta.Ticks, string(metrics), now.UnixNano(),
	)
	if err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}
	return meta.ID, nil
}

var header = []string{"tick", "time", "x", "y", "vx", "vy", "fx", "fy"}

func writeStates(path string, snaps []dynamo.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, snap := range snaps {
		row := []string{
			strconv.FormatUint(snap.Tick, 10),
			strconv.FormatFloat(snap.Time, 'g', -1, 64),
		}
		for _, v := range []mgl64.Vec2{snap.Position, snap.Velocity, snap.AppliedForce} {
			row = append(row,
				strconv.FormatFloat(v[0], 'g', -1, 64),
				strconv.FormatFloat(v[1], 'g', -1, 64),
			)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	rows, err := s.db.Query(
		`SELECT id, preset, integrator, boundary, dt, duration, width, height, ticks, metrics, created_at
		 FROM runs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	row := s.db.QueryRow(
		`SELECT id, preset, integrator, boundary, dt, duration, width, height, ticks, metrics, created_at
		 FROM runs WHERE id = ?`, runID,
	)
	meta, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunMetadata, error) {
	var (
		meta    RunMetadata
		metrics string
		created int64
	)
	err := row.Scan(&meta.ID, &meta.Preset, &meta.Integrator, &meta.Boundary,
		&meta.Dt, &meta.Duration, &meta.Domain.Width, &meta.Domain.Height,
		&meta.Ticks, &metrics, &created)
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal([]byte(metrics), &meta.Metrics); err != nil {
		return meta, fmt.Errorf("storage: corrupt metrics for %s: %w", meta.ID, err)
	}
	meta.Timestamp = time.Unix(0, created)
	return meta, nil
}

// LoadStates reads back the trajectory written by Save.
func (s *Store) LoadStates(runID string) ([]dynamo.Snapshot, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(header)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: cannot read states: %w", err)
	}
	if len(records) < 2 {
		return []dynamo.Snapshot{}, nil
	}

	snaps := make([]dynamo.Snapshot, 0, len(records)-1)
	for i, record := range records[1:] {
		snap, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("storage: %s row %d: %w", runID, i+1, err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func parseRow(record []string) (dynamo.Snapshot, error) {
	var snap dynamo.Snapshot
	tick, err := strconv.ParseUint(record[0], 10, 64)
	if err != nil {
		return snap, err
	}
	snap.Tick = tick

	vals := make([]float64, len(record)-1)
	for j, field := range record[1:] {
		vals[j], err = strconv.ParseFloat(field, 64)
		if err != nil {
			return snap, err
		}
	}
	snap.Time = vals[0]
	snap.Position = mgl64.Vec2{vals[1], vals[2]}
	snap.Velocity = mgl64.Vec2{vals[3], vals[4]}
	snap.AppliedForce = mgl64.Vec2{vals[5], vals[6]}
	return snap, nil
}
