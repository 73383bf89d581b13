package metrics

import (
	"math"

	"github.com/san-kum/massim/internal/dynamo"
)

// MomentumDrift is the largest change in total linear momentum relative to
// the first frame. Anchors carry no momentum.
type MomentumDrift struct {
	name     string
	initial  dynamo.Vec2
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string {
	return m.name
}

func (m *MomentumDrift) Observe(f dynamo.Frame) {
	p := Momentum(f)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++

	drift := p.Sub(m.initial).Len()
	if math.IsNaN(drift) {
		drift = math.Inf(1)
	}
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *MomentumDrift) Value() float64 {
	return m.maxDrift
}

func (m *MomentumDrift) Reset() {
	m.initial = dynamo.Vec2{}
	m.maxDrift = 0
	m.samples = 0
}

// Momentum is the total linear momentum of a frame.
func Momentum(f dynamo.Frame) dynamo.Vec2 {
	var p dynamo.Vec2
	for i, v := range f.Velocities {
		if i < len(f.Masses) {
			p = p.Add(v.Scale(f.Masses[i]))
		}
	}
	return p
}
