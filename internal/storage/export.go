package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/rk4box/internal/dynamo"
	"github.com/san-kum/rk4box/internal/sim"
)

type ExportData struct {
	Preset     string             `json:"preset"`
	Integrator string             `json:"integrator"`
	Boundary   string             `json:"boundary"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Domain     dynamo.Domain      `json:"domain"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	Positions  [][2]float64       `json:"positions"`
	Velocities [][2]float64       `json:"velocities"`
	Forces     [][2]float64       `json:"forces"`
	Metrics    map[string]float64 `json:"metrics"`
}

func NewExportData(meta RunMetadata, snaps []dynamo.Snapshot) ExportData {
	data := ExportData{
		Preset:     meta.Preset,
		Integrator: meta.Integrator,
		Boundary:   meta.Boundary,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Domain:     meta.Domain,
		Steps:      len(snaps),
		Times:      make([]float64, len(snaps)),
		Positions:  make([][2]float64, len(snaps)),
		Velocities: make([][2]float64, len(snaps)),
		Forces:     make([][2]float64, len(snaps)),
		Metrics:    meta.Metrics,
	}
	for i, s := range snaps {
		data.Times[i] = s.Time
		data.Positions[i] = s.Position
		data.Velocities[i] = s.Velocity
		data.Forces[i] = s.AppliedForce
	}
	return data
}

// ExportJSON writes an indented JSON dump of a finished run.
func ExportJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	meta.Metrics = result.Metrics
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, result.Snapshots))
}
