package dynamo

import "math"

// MassRef is a chainable handle to a particle in a Scene. It refers to the
// particle by index, so it stays valid as the scene grows.
//
// The particle exists as soon as Scene.Mass returns. A setter that fails
// records its error on the handle and changes nothing, and every later setter
// on that handle is a no-op, so the particle keeps whatever was set before
// the failure (at worst the unit mass at rest at the origin). Check Err before
// relying on the particle, or use Scene.AddMass to add it atomically.
type MassRef struct {
	scene *Scene
	index int
	err   error
}

// Mass appends a particle at rest at the origin with unit mass and returns a
// handle for configuring it.
func (s *Scene) Mass() *MassRef {
	idx, _ := s.AddMass(Vec2{}, Vec2{}, 1)
	return &MassRef{scene: s, index: idx}
}

// Ref returns a handle to an existing particle.
func (s *Scene) Ref(i int) (*MassRef, error) {
	if err := s.checkIndex(i); err != nil {
		return nil, err
	}
	return &MassRef{scene: s, index: i}, nil
}

func (r *MassRef) Index() int { return r.index }

// Err returns the first error recorded by a setter on this handle.
func (r *MassRef) Err() error { return r.err }

func (r *MassRef) particle() *Mass {
	return &r.scene.masses[r.index]
}

// At sets the position.
func (r *MassRef) At(p Vec2) *MassRef {
	if r.err != nil {
		return r
	}
	if !p.IsFinite() {
		r.err = invalidArg("position %v", p)
		return r
	}
	r.particle().Position = p
	return r
}

// Vel sets the velocity.
func (r *MassRef) Vel(v Vec2) *MassRef {
	if r.err != nil {
		return r
	}
	if !v.IsFinite() {
		r.err = invalidArg("velocity %v", v)
		return r
	}
	r.particle().Velocity = v
	return r
}

// Mass sets the scalar mass. Zero makes the particle an anchor.
func (r *MassRef) Mass(m float64) *MassRef {
	if r.err != nil {
		return r
	}
	if err := checkMass(m); err != nil {
		r.err = err
		return r
	}
	r.particle().Mass = m
	return r
}

// AtAngle places the particle distance away from origin at angleDeg degrees
// counterclockwise from the +x axis.
func (r *MassRef) AtAngle(origin Vec2, angleDeg, distance float64) *MassRef {
	sin, cos := math.Sincos(angleDeg * math.Pi / 180)
	return r.At(origin.Add(V(cos, sin).Scale(distance)))
}

func (r *MassRef) Position() Vec2 { return r.particle().Position }
func (r *MassRef) Velocity() Vec2 { return r.particle().Velocity }
