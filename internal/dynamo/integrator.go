package dynamo

// SymplecticEuler is the semi-implicit Euler scheme: velocities are updated
// from the current accelerations, then positions from the new velocities.
type SymplecticEuler struct {
	acc []Vec2
}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (e *SymplecticEuler) Name() string { return "symplectic" }

func (e *SymplecticEuler) Step(sys System, ps []Mass, h float64) {
	if len(e.acc) != len(ps) {
		e.acc = make([]Vec2, len(ps))
	}
	sys.Accelerations(ps, e.acc)

	for i := range ps {
		p := &ps[i]
		if p.Anchor() {
			continue
		}
		p.Velocity = p.Velocity.Add(e.acc[i].Scale(h))
		p.Position = p.Position.Add(p.Velocity.Scale(h))
	}
}
