package dynamo

// Mass is a point particle. Index is assigned by the owning Scene and never
// changes. A zero Mass value marks an anchor.
type Mass struct {
	Position Vec2
	Velocity Vec2
	Mass     float64
	Index    int
}

// Anchor reports whether the particle is exempt from integration.
func (m Mass) Anchor() bool { return m.Mass == 0 }

// System evaluates particle accelerations for a configuration. Anchors always
// receive zero acceleration. acc has the same length as ps.
type System interface {
	Accelerations(ps []Mass, acc []Vec2)
}

// Integrator advances particle state by one inner step of length h. It must
// leave anchors untouched.
type Integrator interface {
	Name() string
	Step(sys System, ps []Mass, h float64)
}

// Frame is the scene state at the end of one outer step.
type Frame struct {
	Time       float64
	Positions  []Vec2
	Velocities []Vec2
	Masses     []float64
	Energy     float64
}
