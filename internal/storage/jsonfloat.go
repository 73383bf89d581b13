package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/san-kum/massim/internal/dynamo"
)

// jsonFloat spells NaN and the infinities as the strings "NaN", "+Inf" and
// "-Inf", which encoding/json otherwise refuses. Runs that blow up record
// exactly those values.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte(strconv.Quote(formatFloat(v))), nil
	}
	return json.Marshal(v)
}

func (f *jsonFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: bad number %q", ErrCorruptRun, s)
		}
		*f = jsonFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

type jsonVec struct {
	X jsonFloat `json:"x"`
	Y jsonFloat `json:"y"`
}

func toFloats(fs []float64) []jsonFloat {
	if fs == nil {
		return nil
	}
	out := make([]jsonFloat, len(fs))
	for i, v := range fs {
		out[i] = jsonFloat(v)
	}
	return out
}

func fromFloats(fs []jsonFloat) []float64 {
	if fs == nil {
		return nil
	}
	out := make([]float64, len(fs))
	for i, v := range fs {
		out[i] = float64(v)
	}
	return out
}

func toVecs(vs []dynamo.Vec2) []jsonVec {
	if vs == nil {
		return nil
	}
	out := make([]jsonVec, len(vs))
	for i, v := range vs {
		out[i] = jsonVec{X: jsonFloat(v.X), Y: jsonFloat(v.Y)}
	}
	return out
}

func fromVecs(vs []jsonVec) []dynamo.Vec2 {
	if vs == nil {
		return nil
	}
	out := make([]dynamo.Vec2, len(vs))
	for i, v := range vs {
		out[i] = dynamo.V(float64(v.X), float64(v.Y))
	}
	return out
}

func toFrames(frames [][]dynamo.Vec2) [][]jsonVec {
	if frames == nil {
		return nil
	}
	out := make([][]jsonVec, len(frames))
	for f, row := range frames {
		out[f] = toVecs(row)
	}
	return out
}

func fromFrames(frames [][]jsonVec) [][]dynamo.Vec2 {
	if frames == nil {
		return nil
	}
	out := make([][]dynamo.Vec2, len(frames))
	for f, row := range frames {
		out[f] = fromVecs(row)
	}
	return out
}

func toMetrics(m map[string]float64) map[string]jsonFloat {
	if m == nil {
		return nil
	}
	out := make(map[string]jsonFloat, len(m))
	for k, v := range m {
		out[k] = jsonFloat(v)
	}
	return out
}

func fromMetrics(m map[string]jsonFloat) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = float64(v)
	}
	return out
}

// MarshalJSON writes non-finite metrics as strings.
func (m RunMetadata) MarshalJSON() ([]byte, error) {
	type plain RunMetadata
	return json.Marshal(struct {
		plain
		Metrics map[string]jsonFloat `json:"metrics"`
	}{plain(m), toMetrics(m.Metrics)})
}

func (m *RunMetadata) UnmarshalJSON(b []byte) error {
	type plain RunMetadata
	aux := struct {
		*plain
		Metrics map[string]jsonFloat `json:"metrics"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	m.Metrics = fromMetrics(aux.Metrics)
	return nil
}

type jsonData struct {
	Time       []jsonFloat `json:"time"`
	Positions  [][]jsonVec `json:"positions"`
	Velocities [][]jsonVec `json:"velocities"`
	Masses     []jsonFloat `json:"masses"`
	Energies   []jsonFloat `json:"energies"`
}

type jsonSeries struct {
	Index      int       `json:"index"`
	Mass       jsonFloat `json:"mass"`
	Positions  []jsonVec `json:"positions"`
	Velocities []jsonVec `json:"velocities"`
}

type jsonExport struct {
	Scene      string               `json:"scene"`
	Integrator string               `json:"integrator"`
	Dt         float64              `json:"dt"`
	Substeps   int                  `json:"substeps"`
	Steps      int                  `json:"steps"`
	Names      []string             `json:"names,omitempty"`
	Metrics    map[string]jsonFloat `json:"metrics"`
	Data       jsonData             `json:"data"`
	Particles  []jsonSeries         `json:"particles"`
}

// MarshalJSON writes non-finite metrics, positions, velocities and energies
// as strings.
func (e ExportData) MarshalJSON() ([]byte, error) {
	out := jsonExport{
		Scene:      e.Scene,
		Integrator: e.Integrator,
		Dt:         e.Dt,
		Substeps:   e.Substeps,
		Steps:      e.Steps,
		Names:      e.Names,
		Metrics:    toMetrics(e.Metrics),
		Data: jsonData{
			Time:       toFloats(e.Data.Time),
			Positions:  toFrames(e.Data.Positions),
			Velocities: toFrames(e.Data.Velocities),
			Masses:     toFloats(e.Data.Masses),
			Energies:   toFloats(e.Data.Energies),
		},
	}
	if e.Particles != nil {
		out.Particles = make([]jsonSeries, len(e.Particles))
		for i, p := range e.Particles {
			out.Particles[i] = jsonSeries{
				Index:      p.Index,
				Mass:       jsonFloat(p.Mass),
				Positions:  toVecs(p.Positions),
				Velocities: toVecs(p.Velocities),
			}
		}
	}
	return json.Marshal(out)
}

func (e *ExportData) UnmarshalJSON(b []byte) error {
	var in jsonExport
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*e = ExportData{
		Scene:      in.Scene,
		Integrator: in.Integrator,
		Dt:         in.Dt,
		Substeps:   in.Substeps,
		Steps:      in.Steps,
		Names:      in.Names,
		Metrics:    fromMetrics(in.Metrics),
		Data: dynamo.Data{
			Time:       fromFloats(in.Data.Time),
			Positions:  fromFrames(in.Data.Positions),
			Velocities: fromFrames(in.Data.Velocities),
			Masses:     fromFloats(in.Data.Masses),
			Energies:   fromFloats(in.Data.Energies),
		},
	}
	if in.Particles != nil {
		e.Particles = make([]dynamo.ParticleSeries, len(in.Particles))
		for i, p := range in.Particles {
			e.Particles[i] = dynamo.ParticleSeries{
				Index:      p.Index,
				Mass:       float64(p.Mass),
				Positions:  fromVecs(p.Positions),
				Velocities: fromVecs(p.Velocities),
			}
		}
	}
	return nil
}
