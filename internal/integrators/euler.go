package integrators

import "github.com/san-kum/massim/internal/dynamo"

// Euler is the explicit forward Euler scheme. Positions advance with the
// velocities from the start of the step. It drifts in energy and is kept for
// comparison runs.
type Euler struct {
	acc []dynamo.Vec2
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(sys dynamo.System, ps []dynamo.Mass, h float64) {
	e.acc = ensure(e.acc, len(ps))
	sys.Accelerations(ps, e.acc)

	for i := range ps {
		p := &ps[i]
		if p.Anchor() {
			continue
		}
		p.Position = p.Position.Add(p.Velocity.Scale(h))
		p.Velocity = p.Velocity.Add(e.acc[i].Scale(h))
	}
}

func ensure(buf []dynamo.Vec2, n int) []dynamo.Vec2 {
	if len(buf) != n {
		return make([]dynamo.Vec2, n)
	}
	return buf
}
