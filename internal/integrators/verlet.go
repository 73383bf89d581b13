package integrators

import "github.com/san-kum/massim/internal/dynamo"

// Verlet is velocity Verlet: two acceleration evaluations per step.
type Verlet struct {
	acc    []dynamo.Vec2
	accNew []dynamo.Vec2
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Step(sys dynamo.System, ps []dynamo.Mass, h float64) {
	n := len(ps)
	v.acc = ensure(v.acc, n)
	v.accNew = ensure(v.accNew, n)

	sys.Accelerations(ps, v.acc)
	h2 := 0.5 * h * h
	for i := range ps {
		p := &ps[i]
		if p.Anchor() {
			continue
		}
		p.Position = p.Position.Add(p.Velocity.Scale(h)).Add(v.acc[i].Scale(h2))
	}

	sys.Accelerations(ps, v.accNew)
	halfH := 0.5 * h
	for i := range ps {
		p := &ps[i]
		if p.Anchor() {
			continue
		}
		p.Velocity = p.Velocity.Add(v.acc[i].Add(v.accNew[i]).Scale(halfH))
	}
}

// Leapfrog is the kick-drift-kick form of leapfrog.
type Leapfrog struct {
	acc []dynamo.Vec2
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(sys dynamo.System, ps []dynamo.Mass, h float64) {
	l.acc = ensure(l.acc, len(ps))
	halfH := h * 0.5

	sys.Accelerations(ps, l.acc)
	for i := range ps {
		p := &ps[i]
		if p.Anchor() {
			continue
		}
		p.Velocity = p.Velocity.Add(l.acc[i].Scale(halfH))
		p.Position = p.Position.Add(p.Velocity.Scale(h))
	}

	sys.Accelerations(ps, l.acc)
	for i := range ps {
		p := &ps[i]
		if p.Anchor() {
			continue
		}
		p.Velocity = p.Velocity.Add(l.acc[i].Scale(halfH))
	}
}
