package dynamo

import "math"

const (
	// DefaultStiffness is the spring constant used when none is given.
	DefaultStiffness = 1.0

	// DefaultG is the pairwise gravitational constant used when none is given.
	DefaultG = 6.73e-5

	// SpringEpsilon is the separation below which a spring exerts no force.
	SpringEpsilon = 1e-9

	// GravityEpsilon is the minimum separation used in the gravity law.
	GravityEpsilon = 1e-6
)

// Force is one of Spring, Gravity or UniformGravity. The set is closed; the
// scene dispatches on the concrete type when accumulating forces.
type Force interface {
	isForce()
}

// Spring is a Hooke's law link between particles A and B. A spring made by
// NewSpring without WithRestLength takes the separation of its endpoints at
// the time it is added to a scene as its rest length.
type Spring struct {
	A, B       int
	K          float64
	RestLength float64

	autoRest bool
}

// Gravity applies Newtonian attraction to every unordered pair of Participants.
type Gravity struct {
	Participants []int
	G            float64
}

// UniformGravity applies Mass*Acceleration to every particle.
type UniformGravity struct {
	Acceleration Vec2
}

func (Spring) isForce()         {}
func (Gravity) isForce()        {}
func (UniformGravity) isForce() {}

// Kind names the variant of f.
func Kind(f Force) string {
	switch f.(type) {
	case Spring, *Spring:
		return "spring"
	case Gravity, *Gravity:
		return "gravity"
	case UniformGravity, *UniformGravity:
		return "uniform gravity"
	}
	return "unknown"
}

type SpringOption func(*Spring)

func WithStiffness(k float64) SpringOption {
	return func(s *Spring) { s.K = k }
}

func WithRestLength(l float64) SpringOption {
	return func(s *Spring) {
		s.RestLength = l
		s.autoRest = false
	}
}

// NewSpring links particles a and b with DefaultStiffness and an automatic
// rest length unless overridden.
func NewSpring(a, b int, opts ...SpringOption) Spring {
	s := Spring{A: a, B: b, K: DefaultStiffness, autoRest: true}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

type GravityOption func(*Gravity)

func WithG(g float64) GravityOption {
	return func(gr *Gravity) { gr.G = g }
}

func NewGravity(participants []int, opts ...GravityOption) Gravity {
	g := Gravity{Participants: append([]int(nil), participants...), G: DefaultG}
	for _, opt := range opts {
		opt(&g)
	}
	return g
}

// force returns the force exerted on A (B receives the negation).
func (s Spring) force(pa, pb Vec2) Vec2 {
	d := pa.Sub(pb)
	r := d.Len()
	if r < SpringEpsilon {
		return Vec2{}
	}
	return d.Scale(-s.K * (r - s.RestLength) / r)
}

func (s Spring) energy(pa, pb Vec2) float64 {
	stretch := pa.Sub(pb).Len() - s.RestLength
	return 0.5 * s.K * stretch * stretch
}

// pairForce returns the force exerted on particle i by particle j.
func (g Gravity) pairForce(pi, pj Vec2, mi, mj float64) Vec2 {
	d := pj.Sub(pi)
	l := d.Len()
	if l == 0 {
		return Vec2{}
	}
	r := math.Max(l, GravityEpsilon)
	mag := g.G * mi * mj / (r * r)
	return d.Scale(mag / l)
}

func (g Gravity) pairEnergy(pi, pj Vec2, mi, mj float64) float64 {
	r := math.Max(pj.Sub(pi).Len(), GravityEpsilon)
	return g.G * mi * mj / r
}
