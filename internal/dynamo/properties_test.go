package dynamo_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/massim/internal/dynamo"
)

func twoBodySpring() *dynamo.Scene {
	s := dynamo.NewScene()
	a := s.Mass().Mass(1).At(dynamo.V(-1, 0))
	b := s.Mass().Mass(1).At(dynamo.V(1, 0))
	Expect(s.AddForce(dynamo.NewSpring(a.Index(), b.Index(), dynamo.WithRestLength(1)))).To(Succeed())
	return s
}

func anchoredOscillator() *dynamo.Scene {
	s := dynamo.NewScene(dynamo.WithGravity(dynamo.V(0, -9.81)))
	left := s.Mass().Mass(0).At(dynamo.V(-7.5, 0))
	right := s.Mass().Mass(0).At(dynamo.V(7.5, 0)).Vel(dynamo.V(0.5, 0))
	m0 := s.Mass().Mass(1).At(dynamo.V(-2.5, 0))
	m1 := s.Mass().Mass(1).At(dynamo.V(5.5, 0))
	Expect(s.AddForce(dynamo.NewSpring(m0.Index(), left.Index(), dynamo.WithStiffness(2), dynamo.WithRestLength(5)))).To(Succeed())
	Expect(s.AddForce(dynamo.NewSpring(m1.Index(), right.Index(), dynamo.WithStiffness(2), dynamo.WithRestLength(5)))).To(Succeed())
	Expect(s.AddForce(dynamo.NewSpring(m0.Index(), m1.Index(), dynamo.WithStiffness(2), dynamo.WithRestLength(5)))).To(Succeed())
	Expect(s.AddForce(dynamo.NewGravity([]int{left.Index(), m0.Index(), m1.Index()}, dynamo.WithG(0.5)))).To(Succeed())
	return s
}

func allFinite(r *dynamo.Result) bool {
	d := r.Extract()
	for f := range d.Positions {
		for i := range d.Positions[f] {
			if !d.Positions[f][i].IsFinite() || !d.Velocities[f][i].IsFinite() {
				return false
			}
		}
		if math.IsNaN(d.Energies[f]) || math.IsInf(d.Energies[f], 0) {
			return false
		}
	}
	return true
}

var _ = Describe("Scene simulation", func() {
	Describe("anchors", func() {
		It("never move regardless of the forces acting on them", func() {
			s := anchoredOscillator()
			r, err := s.Simulate(300, 50, 1.0/60)
			Expect(err).NotTo(HaveOccurred())

			for _, anchor := range []int{0, 1} {
				pos, err := r.PositionsOf(anchor)
				Expect(err).NotTo(HaveOccurred())
				vel, err := r.VelocitiesOf(anchor)
				Expect(err).NotTo(HaveOccurred())
				for f := range pos {
					Expect(pos[f]).To(Equal(pos[0]))
					Expect(vel[f]).To(Equal(vel[0]))
				}
			}

			vel, _ := r.VelocitiesOf(1)
			Expect(vel[0]).To(Equal(dynamo.V(0.5, 0)))
		})
	})

	Describe("frame bookkeeping", func() {
		It("records the initial state plus one frame per outer step", func() {
			s := twoBodySpring()
			dt := 0.1
			r, err := s.Simulate(25, 7, dt)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Len()).To(Equal(26))

			times := r.Times()
			Expect(times[0]).To(Equal(0.0))
			for f, t := range times {
				Expect(t).To(Equal(float64(f) * dt))
			}
			Expect(r.Energies()).To(HaveLen(26))
			Expect(r.Masses()).To(Equal([]float64{1, 1}))
		})

		It("stores the pre-simulation state as frame 0", func() {
			s := twoBodySpring()
			initial := s.Positions()
			r, err := s.Simulate(5, 2, 0.1)
			Expect(err).NotTo(HaveOccurred())

			first, err := r.PositionsAt(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(Equal(initial))
		})

		It("matches repeated Step calls", func() {
			stepped := twoBodySpring()
			var last dynamo.Frame
			for i := 0; i < 10; i++ {
				var err error
				last, err = stepped.Step(0.05, 20)
				Expect(err).NotTo(HaveOccurred())
			}

			r, err := twoBodySpring().Simulate(10, 20, 0.05)
			Expect(err).NotTo(HaveOccurred())
			final, _ := r.Frame(10)
			Expect(last.Positions).To(Equal(final.Positions))
			Expect(last.Velocities).To(Equal(final.Velocities))
			Expect(last.Energy).To(Equal(final.Energy))
		})
	})

	Describe("two-body spring", func() {
		It("conserves energy and momentum", func() {
			s := twoBodySpring()
			r, err := s.Simulate(2000, 10, 0.01)
			Expect(err).NotTo(HaveOccurred())

			energies := r.Energies()
			e0 := energies[0]
			Expect(e0).To(BeNumerically("~", 0.5, 1e-12))

			maxEarly, maxLate := 0.0, 0.0
			for f, e := range energies {
				drift := math.Abs(e-e0) / e0
				Expect(drift).To(BeNumerically("<", 1e-2), "frame %d", f)
				if f < len(energies)/2 {
					maxEarly = math.Max(maxEarly, drift)
				} else {
					maxLate = math.Max(maxLate, drift)
				}
			}
			Expect(maxLate).To(BeNumerically("<", 2*maxEarly+1e-6))

			d := r.Extract()
			for f := range d.Velocities {
				var p dynamo.Vec2
				for i, v := range d.Velocities[f] {
					p = p.Add(v.Scale(d.Masses[i]))
				}
				Expect(p.Len()).To(BeNumerically("<", 1e-9), "frame %d", f)
			}
		})
	})

	Describe("two-body orbit", func() {
		It("keeps the light body on a circle around the heavy one", func() {
			const (
				heavy = 1e5
				g     = 1e-4
				r0    = 10.0
			)
			s := dynamo.NewScene()
			sun := s.Mass().Mass(heavy)
			planet := s.Mass().Mass(1).At(dynamo.V(r0, 0)).Vel(dynamo.V(0, math.Sqrt(g*heavy/r0)))
			Expect(s.AddForce(dynamo.NewGravity([]int{sun.Index(), planet.Index()}, dynamo.WithG(g)))).To(Succeed())

			period := 2 * math.Pi * r0 / math.Sqrt(g*heavy/r0)
			dt := 0.01
			steps := int(math.Ceil(period / dt))

			r, err := s.Simulate(steps, 10, dt)
			Expect(err).NotTo(HaveOccurred())

			d := r.Extract()
			for f := range d.Positions {
				dist := d.Positions[f][1].Sub(d.Positions[f][0]).Len()
				Expect(dist).To(BeNumerically("~", r0, 0.01*r0), "frame %d", f)
			}
		})
	})

	Describe("reshaping", func() {
		It("round-trips losslessly through SeparateByParticle", func() {
			r, err := anchoredOscillator().Simulate(50, 5, 0.02)
			Expect(err).NotTo(HaveOccurred())

			data := r.Extract()
			series := dynamo.SeparateByParticle(data)
			Expect(series).To(HaveLen(4))
			for i, ps := range series {
				Expect(ps.Index).To(Equal(i))
				Expect(ps.Positions).To(HaveLen(51))
			}

			positions, velocities, masses := dynamo.JoinParticles(series)
			Expect(positions).To(Equal(data.Positions))
			Expect(velocities).To(Equal(data.Velocities))
			Expect(masses).To(Equal(data.Masses))
		})
	})

	Describe("determinism", func() {
		It("produces bit-identical trajectories for identical input", func() {
			a, err := anchoredOscillator().Simulate(200, 30, 0.02)
			Expect(err).NotTo(HaveOccurred())
			b, err := anchoredOscillator().Simulate(200, 30, 0.02)
			Expect(err).NotTo(HaveOccurred())

			Expect(a.Extract()).To(Equal(b.Extract()))
		})
	})

	Describe("chain topology", func() {
		It("stays finite for a 50-particle spring chain", func() {
			rng := rand.New(rand.NewSource(7))
			s := dynamo.NewScene()
			prev := -1
			for i := 0; i < 50; i++ {
				m := s.Mass().Mass(1).
					At(dynamo.V(float64(i)*10, 0)).
					Vel(dynamo.V(rng.Float64()-0.5, rng.Float64()-0.5))
				Expect(m.Err()).NotTo(HaveOccurred())
				if prev >= 0 {
					Expect(s.AddForce(dynamo.NewSpring(prev, m.Index(), dynamo.WithRestLength(10)))).To(Succeed())
				}
				prev = m.Index()
			}

			r, err := s.Simulate(500, 500, 0.1)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Len()).To(Equal(501))
			Expect(allFinite(r)).To(BeTrue())
		})
	})

	Describe("numerical blow-up", func() {
		It("surfaces as data rather than an error", func() {
			s := dynamo.NewScene()
			a := s.Mass().Mass(1)
			b := s.Mass().Mass(1).At(dynamo.V(2, 0))
			Expect(s.AddForce(dynamo.NewSpring(a.Index(), b.Index(), dynamo.WithStiffness(1e6), dynamo.WithRestLength(1)))).To(Succeed())

			r, err := s.Simulate(200, 1, 0.1)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Len()).To(Equal(201))

			energies := r.Energies()
			last := energies[len(energies)-1]
			Expect(math.IsNaN(last) || math.IsInf(last, 0) || last > 1e12*energies[0]).To(BeTrue())
		})
	})
})
