package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/massim/internal/dynamo"
)

type ExportData struct {
	Scene      string                  `json:"scene"`
	Integrator string                  `json:"integrator"`
	Dt         float64                 `json:"dt"`
	Substeps   int                     `json:"substeps"`
	Steps      int                     `json:"steps"`
	Names      []string                `json:"names,omitempty"`
	Metrics    map[string]float64      `json:"metrics"`
	Data       dynamo.Data             `json:"data"`
	Particles  []dynamo.ParticleSeries `json:"particles"`
}

func newExportData(meta RunMetadata, result *dynamo.Result) ExportData {
	d := result.Extract()
	return ExportData{
		Scene:      meta.Scene,
		Integrator: meta.Integrator,
		Dt:         meta.Dt,
		Substeps:   meta.Substeps,
		Steps:      meta.Steps,
		Names:      meta.Names,
		Metrics:    meta.Metrics,
		Data:       d,
		Particles:  dynamo.SeparateByParticle(d),
	}
}

func ExportJSON(path string, meta RunMetadata, result *dynamo.Result) error {
	return writeFile(path, func(f *os.File) error {
		return EncodeJSON(f, meta, result)
	})
}

// EncodeJSON writes both the frame-major and the per-particle views of a run.
func EncodeJSON(w io.Writer, meta RunMetadata, result *dynamo.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, result))
}

// ExportCSV writes the trajectory of a run to path.
func ExportCSV(path string, result *dynamo.Result) error {
	return writeFile(path, func(f *os.File) error {
		return WriteCSV(f, result)
	})
}
