package dynamo

import (
	"context"
	"fmt"
)

// Scene owns the particles and forces of one simulation.
type Scene struct {
	masses     []Mass
	forces     []Force
	gravity    Vec2
	integrator Integrator
	time       float64

	forceBuf []Vec2
}

type Option func(*Scene)

func WithGravity(g Vec2) Option {
	return func(s *Scene) { s.gravity = g }
}

func WithIntegrator(i Integrator) Option {
	return func(s *Scene) { s.integrator = i }
}

// NewScene returns an empty scene with zero gravity and the SymplecticEuler
// integrator unless overridden.
func NewScene(opts ...Option) *Scene {
	s := &Scene{integrator: NewSymplecticEuler()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddMass appends a particle and returns its index.
func (s *Scene) AddMass(pos, vel Vec2, m float64) (int, error) {
	if !pos.IsFinite() {
		return 0, invalidArg("position %v", pos)
	}
	if !vel.IsFinite() {
		return 0, invalidArg("velocity %v", vel)
	}
	if err := checkMass(m); err != nil {
		return 0, err
	}
	idx := len(s.masses)
	s.masses = append(s.masses, Mass{Position: pos, Velocity: vel, Mass: m, Index: idx})
	return idx, nil
}

func checkMass(m float64) error {
	if !isFinite(m) || m < 0 {
		return invalidArg("mass %v", m)
	}
	return nil
}

// AddForce validates f against the current particles and appends it. On error
// the scene is left unchanged.
func (s *Scene) AddForce(f Force) error {
	if f == nil {
		return invalidArg("nil force")
	}
	resolved, err := s.resolve(f)
	if err != nil {
		return &ForceError{Kind: Kind(f), Index: len(s.forces), Wrapped: err}
	}
	s.forces = append(s.forces, resolved)
	return nil
}

func (s *Scene) resolve(f Force) (Force, error) {
	switch f := f.(type) {
	case Spring:
		if err := s.checkIndex(f.A); err != nil {
			return nil, err
		}
		if err := s.checkIndex(f.B); err != nil {
			return nil, err
		}
		if f.A == f.B {
			return nil, invalidArg("spring endpoints are the same particle %d", f.A)
		}
		if !isFinite(f.K) {
			return nil, invalidArg("stiffness %v", f.K)
		}
		if f.autoRest {
			f.RestLength = s.masses[f.A].Position.Sub(s.masses[f.B].Position).Len()
			f.autoRest = false
		}
		if !isFinite(f.RestLength) || f.RestLength < 0 {
			return nil, invalidArg("rest length %v", f.RestLength)
		}
		return f, nil
	case *Spring:
		if f == nil {
			return nil, invalidArg("nil spring")
		}
		return s.resolve(*f)
	case Gravity:
		if !isFinite(f.G) {
			return nil, invalidArg("gravitational constant %v", f.G)
		}
		seen := make(map[int]bool, len(f.Participants))
		for _, idx := range f.Participants {
			if err := s.checkIndex(idx); err != nil {
				return nil, err
			}
			if seen[idx] {
				return nil, invalidArg("duplicate gravity participant %d", idx)
			}
			seen[idx] = true
		}
		f.Participants = append([]int(nil), f.Participants...)
		return f, nil
	case *Gravity:
		if f == nil {
			return nil, invalidArg("nil gravity")
		}
		return s.resolve(*f)
	case UniformGravity:
		if !f.Acceleration.IsFinite() {
			return nil, invalidArg("acceleration %v", f.Acceleration)
		}
		return f, nil
	case *UniformGravity:
		if f == nil {
			return nil, invalidArg("nil uniform gravity")
		}
		return s.resolve(*f)
	}
	return nil, invalidArg("unsupported force %T", f)
}

func (s *Scene) checkIndex(i int) error {
	if i < 0 || i >= len(s.masses) {
		return fmt.Errorf("%w: %d (scene has %d particles)", ErrInvalidReference, i, len(s.masses))
	}
	return nil
}

func (s *Scene) Len() int { return len(s.masses) }

// Time is the total simulated time advanced by Step and Simulate.
func (s *Scene) Time() float64 { return s.time }

func (s *Scene) Gravity() Vec2 { return s.gravity }

func (s *Scene) SetGravity(g Vec2) error {
	if !g.IsFinite() {
		return invalidArg("gravity %v", g)
	}
	s.gravity = g
	return nil
}

func (s *Scene) Integrator() Integrator { return s.integrator }

func (s *Scene) SetIntegrator(i Integrator) {
	if i == nil {
		i = NewSymplecticEuler()
	}
	s.integrator = i
}

// Particle returns a copy of particle i.
func (s *Scene) Particle(i int) (Mass, error) {
	if err := s.checkIndex(i); err != nil {
		return Mass{}, err
	}
	return s.masses[i], nil
}

// Positions returns a snapshot of the current particle positions.
func (s *Scene) Positions() []Vec2 {
	out := make([]Vec2, len(s.masses))
	for i, m := range s.masses {
		out[i] = m.Position
	}
	return out
}

func (s *Scene) Velocities() []Vec2 {
	out := make([]Vec2, len(s.masses))
	for i, m := range s.masses {
		out[i] = m.Velocity
	}
	return out
}

func (s *Scene) Masses() []float64 {
	out := make([]float64, len(s.masses))
	for i, m := range s.masses {
		out[i] = m.Mass
	}
	return out
}

// Forces returns a copy of the force list in declaration order.
func (s *Scene) Forces() []Force {
	out := make([]Force, len(s.forces))
	copy(out, s.forces)
	return out
}

// Accelerations implements System for the scene's forces.
func (s *Scene) Accelerations(ps []Mass, acc []Vec2) {
	if len(s.forceBuf) != len(ps) {
		s.forceBuf = make([]Vec2, len(ps))
	}
	f := s.forceBuf
	s.accumulate(ps, f)
	for i, p := range ps {
		if p.Anchor() {
			acc[i] = Vec2{}
			continue
		}
		acc[i] = f[i].Scale(1 / p.Mass)
	}
}

// accumulate writes the net force on every particle into f. Forces are summed
// in declaration order so results are reproducible.
func (s *Scene) accumulate(ps []Mass, f []Vec2) {
	for i, p := range ps {
		f[i] = s.gravity.Scale(p.Mass)
	}
	for _, force := range s.forces {
		switch force := force.(type) {
		case Spring:
			fa := force.force(ps[force.A].Position, ps[force.B].Position)
			f[force.A] = f[force.A].Add(fa)
			f[force.B] = f[force.B].Sub(fa)
		case Gravity:
			idx := force.Participants
			for a := 0; a < len(idx); a++ {
				i := idx[a]
				for b := a + 1; b < len(idx); b++ {
					j := idx[b]
					fij := force.pairForce(ps[i].Position, ps[j].Position, ps[i].Mass, ps[j].Mass)
					f[i] = f[i].Add(fij)
					f[j] = f[j].Sub(fij)
				}
			}
		case UniformGravity:
			for i, p := range ps {
				f[i] = f[i].Add(force.Acceleration.Scale(p.Mass))
			}
		}
	}
}

// NetForces returns the net force on each particle for the current state.
func (s *Scene) NetForces() []Vec2 {
	f := make([]Vec2, len(s.masses))
	s.accumulate(s.masses, f)
	return f
}

// Energy is kinetic energy plus spring potential minus pairwise gravitational
// binding energy. Potential energy of the uniform field is not included.
func (s *Scene) Energy() float64 {
	return energy(s.masses, s.forces)
}

func energy(ps []Mass, forces []Force) float64 {
	e := 0.0
	for _, p := range ps {
		e += 0.5 * p.Mass * p.Velocity.Len2()
	}
	for _, force := range forces {
		switch force := force.(type) {
		case Spring:
			e += force.energy(ps[force.A].Position, ps[force.B].Position)
		case Gravity:
			idx := force.Participants
			for a := 0; a < len(idx); a++ {
				for b := a + 1; b < len(idx); b++ {
					i, j := idx[a], idx[b]
					e -= force.pairEnergy(ps[i].Position, ps[j].Position, ps[i].Mass, ps[j].Mass)
				}
			}
		}
	}
	return e
}

// Momentum is the total linear momentum of all particles.
func (s *Scene) Momentum() Vec2 {
	var p Vec2
	for _, m := range s.masses {
		p = p.Add(m.Velocity.Scale(m.Mass))
	}
	return p
}

func validateStep(dt float64, substeps int) error {
	if !isFinite(dt) || dt <= 0 {
		return invalidArg("dt must be positive and finite, got %v", dt)
	}
	if substeps < 1 {
		return invalidArg("substeps must be at least 1, got %d", substeps)
	}
	return nil
}

// Step advances the scene by dt using substeps inner steps and returns the
// resulting frame.
func (s *Scene) Step(dt float64, substeps int) (Frame, error) {
	if err := validateStep(dt, substeps); err != nil {
		return Frame{}, err
	}
	s.advance(dt, substeps)
	s.time += dt
	return s.frame(s.time, s.Masses()), nil
}

func (s *Scene) advance(dt float64, substeps int) {
	h := dt / float64(substeps)
	for i := 0; i < substeps; i++ {
		s.integrator.Step(s, s.masses, h)
	}
}

func (s *Scene) frame(t float64, masses []float64) Frame {
	return Frame{
		Time:       t,
		Positions:  s.Positions(),
		Velocities: s.Velocities(),
		Masses:     masses,
		Energy:     s.Energy(),
	}
}

// Simulate runs steps outer steps and records the initial state plus one
// frame per step.
func (s *Scene) Simulate(steps, substeps int, dt float64) (*Result, error) {
	return s.SimulateContext(context.Background(), steps, substeps, dt)
}

// SimulateContext is Simulate with cancellation checked between outer steps.
// On cancellation the frames recorded so far are returned with ctx.Err().
func (s *Scene) SimulateContext(ctx context.Context, steps, substeps int, dt float64) (*Result, error) {
	if err := validateStep(dt, substeps); err != nil {
		return nil, err
	}
	if steps < 0 {
		return nil, invalidArg("steps must be non-negative, got %d", steps)
	}

	masses := s.Masses()
	r := &Result{
		times:      make([]float64, 0, steps+1),
		positions:  make([][]Vec2, 0, steps+1),
		velocities: make([][]Vec2, 0, steps+1),
		energies:   make([]float64, 0, steps+1),
		masses:     masses,
	}
	r.append(s.frame(0, masses))

	for f := 1; f <= steps; f++ {
		select {
		case <-ctx.Done():
			return r, ctx.Err()
		default:
		}

		s.advance(dt, substeps)
		s.time += dt
		r.append(s.frame(float64(f)*dt, masses))
	}

	return r, nil
}
