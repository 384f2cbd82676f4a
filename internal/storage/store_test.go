package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rk4box/internal/dynamo"
	"github.com/san-kum/rk4box/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Snapshots: []dynamo.Snapshot{
			{Tick: 0, Time: 0, Position: mgl64.Vec2{100, 0}, Velocity: mgl64.Vec2{0, 50}},
			{Tick: 1, Time: 1.0 / 30, Position: mgl64.Vec2{100, 1.6612}, Velocity: mgl64.Vec2{0, 49.6733}, AppliedForce: mgl64.Vec2{-100, 0}},
		},
		Metrics:    map[string]float64{"energy": 1.5},
		StepsTaken: 1,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer st.Close()

	runID, err := st.Save(RunMetadata{Preset: "toss", Integrator: "rk4", Boundary: "elastic", Dt: 1.0 / 30, Duration: 20, Domain: dynamo.Domain{Width: 200, Height: 500}}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Preset != "toss" || meta.Boundary != "elastic" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Domain.Height != 500 {
		t.Errorf("expected domain height 500, got %v", meta.Domain.Height)
	}
	if meta.Ticks != 1 {
		t.Errorf("expected 1 tick, got %d", meta.Ticks)
	}
	if meta.Metrics["energy"] != 1.5 {
		t.Errorf("expected energy 1.5, got %f", meta.Metrics["energy"])
	}

	snaps, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	want := testResult().Snapshots
	if len(snaps) != len(want) {
		t.Fatalf("expected %d snapshots, got %d", len(want), len(snaps))
	}
	for i := range want {
		if snaps[i] != want[i] {
			t.Errorf("snapshot %d: got %+v, want %+v", i, snaps[i], want[i])
		}
	}
}

func TestStoreSaveFailureRemovesRunDir(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	st.db.Close()

	if _, err := st.Save(RunMetadata{Preset: "toss"}, testResult()); err == nil {
		t.Fatal("expected save to fail on a closed database")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.IsDir() {
			t.Errorf("run directory %s left behind", e.Name())
		}
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty list, got %d", len(runs))
	}

	first, _ := st.Save(RunMetadata{Preset: "bounce"}, testResult())
	second, _ := st.Save(RunMetadata{Preset: "drift"}, testResult())
	st.Close()

	st, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreNotFound(t *testing.T) {
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	if _, err := st.Load("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadStates("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestLoadStatesCorrupt(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	runDir := filepath.Join(dir, "broken")
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		t.Fatal(err)
	}
	data := "tick,time,x,y,vx,vy,fx,fy\n0,0,abc,0,0,0,0,0\n"
	if err := os.WriteFile(filepath.Join(runDir, statesFile), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := st.LoadStates("broken"); err == nil {
		t.Error("expected parse error")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, RunMetadata{Preset: "toss", Dt: 1.0 / 30}, testResult()); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Steps != 2 || data.Preset != "toss" {
		t.Errorf("unexpected export: %+v", data)
	}
	if math.Abs(data.Velocities[1][1]-49.6733) > 1e-12 || data.Forces[1][0] != -100 {
		t.Errorf("trajectory mismatch: %+v", data)
	}
}
