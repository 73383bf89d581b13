package integrators

import (
	"testing"

	"github.com/san-kum/massim/internal/dynamo"
)

func benchScene(n int) *dynamo.Scene {
	s := dynamo.NewScene(dynamo.WithGravity(dynamo.V(0, -9.81)))
	all := make([]int, 0, n)
	prev := s.Mass().Mass(0)
	all = append(all, prev.Index())
	for i := 1; i < n; i++ {
		m := s.Mass().Mass(1).At(dynamo.V(float64(i), 0))
		_ = s.AddForce(dynamo.NewSpring(prev.Index(), m.Index(), dynamo.WithStiffness(50)))
		all = append(all, m.Index())
		prev = m
	}
	_ = s.AddForce(dynamo.NewGravity(all))
	return s
}

func benchmarkIntegrator(b *testing.B, name string, n int) {
	integ, _ := New(name)
	s := benchScene(n)
	s.SetIntegrator(integ)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Step(0.001, 1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSymplectic(b *testing.B) { benchmarkIntegrator(b, "symplectic", 10) }
func BenchmarkEuler(b *testing.B)      { benchmarkIntegrator(b, "euler", 10) }
func BenchmarkVerlet(b *testing.B)     { benchmarkIntegrator(b, "verlet", 10) }
func BenchmarkLeapfrog(b *testing.B)   { benchmarkIntegrator(b, "leapfrog", 10) }
func BenchmarkRK4(b *testing.B)        { benchmarkIntegrator(b, "rk4", 10) }

func BenchmarkSymplectic_Chain50(b *testing.B) { benchmarkIntegrator(b, "symplectic", 50) }
func BenchmarkRK4_Chain50(b *testing.B)        { benchmarkIntegrator(b, "rk4", 50) }
