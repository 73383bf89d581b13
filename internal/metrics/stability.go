package metrics

import (
	"math"

	"github.com/san-kum/massim/internal/dynamo"
)

// Stability is the fraction of frames whose state is finite and, when a
// threshold is set, whose positions all lie within threshold of the origin.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f dynamo.Frame) {
	s.samples++
	if !stable(f, s.threshold) {
		s.violations++
	}
}

func stable(f dynamo.Frame, threshold float64) bool {
	if math.IsNaN(f.Energy) || math.IsInf(f.Energy, 0) {
		return false
	}
	for i, p := range f.Positions {
		if !p.IsFinite() || !f.Velocities[i].IsFinite() {
			return false
		}
		if threshold > 0 && p.Len() > threshold {
			return false
		}
	}
	return true
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
