package metrics

import "github.com/san-kum/massim/internal/dynamo"

// Metric accumulates a summary value over the frames of a run.
type Metric interface {
	Name() string
	Observe(f dynamo.Frame)
	Value() float64
	Reset()
}

// Evaluate resets each metric, feeds it every frame of r and returns the
// values by name.
func Evaluate(r *dynamo.Result, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for f := 0; f < r.Len(); f++ {
		frame, err := r.Frame(f)
		if err != nil {
			break
		}
		for _, m := range ms {
			m.Observe(frame)
		}
	}

	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Defaults returns a fresh set of the standard metrics.
func Defaults() []Metric {
	return []Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewMomentumDrift(),
		NewStability(0),
	}
}
