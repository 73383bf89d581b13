package integrators

import "github.com/san-kum/massim/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme applied to the
// (position, velocity) state of every free particle.
type RK4 struct {
	dx, dv  [4][]dynamo.Vec2
	scratch []dynamo.Mass
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) != n {
		for k := 0; k < 4; k++ {
			r.dx[k] = make([]dynamo.Vec2, n)
			r.dv[k] = make([]dynamo.Vec2, n)
		}
		r.scratch = make([]dynamo.Mass, n)
	}
}

// stage evaluates the derivative at ps offset by c times stage k-1.
func (r *RK4) stage(sys dynamo.System, ps []dynamo.Mass, k int, c float64) {
	copy(r.scratch, ps)
	if k > 0 {
		for i := range r.scratch {
			s := &r.scratch[i]
			if s.Anchor() {
				continue
			}
			s.Position = s.Position.Add(r.dx[k-1][i].Scale(c))
			s.Velocity = s.Velocity.Add(r.dv[k-1][i].Scale(c))
		}
	}
	for i, s := range r.scratch {
		r.dx[k][i] = s.Velocity
	}
	sys.Accelerations(r.scratch, r.dv[k])
}

func (r *RK4) Step(sys dynamo.System, ps []dynamo.Mass, h float64) {
	r.ensureScratch(len(ps))

	r.stage(sys, ps, 0, 0)
	r.stage(sys, ps, 1, 0.5*h)
	r.stage(sys, ps, 2, 0.5*h)
	r.stage(sys, ps, 3, h)

	h6 := h / 6.0
	for i := range ps {
		p := &ps[i]
		if p.Anchor() {
			continue
		}
		dx := r.dx[0][i].Add(r.dx[1][i].Scale(2)).Add(r.dx[2][i].Scale(2)).Add(r.dx[3][i])
		dv := r.dv[0][i].Add(r.dv[1][i].Scale(2)).Add(r.dv[2][i].Scale(2)).Add(r.dv[3][i])
		p.Position = p.Position.Add(dx.Scale(h6))
		p.Velocity = p.Velocity.Add(dv.Scale(h6))
	}
}
