package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/massim/internal/dynamo"
)

// harmonic pulls every particle towards the origin with unit stiffness.
type harmonic struct{}

func (harmonic) Accelerations(ps []dynamo.Mass, acc []dynamo.Vec2) {
	for i, p := range ps {
		if p.Anchor() {
			acc[i] = dynamo.Vec2{}
			continue
		}
		acc[i] = p.Position.Scale(-1)
	}
}

func oscillatorEnergy(p dynamo.Mass) float64 {
	return 0.5 * (p.Position.Len2() + p.Velocity.Len2())
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		integ, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if integ.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, integ.Name())
		}
	}

	if integ, err := New(""); err != nil || integ.Name() != "symplectic" {
		t.Errorf("New(\"\") = %v, %v", integ, err)
	}
	if _, err := New("rk45"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestIntegrators_SkipAnchors(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			integ, _ := New(name)
			ps := []dynamo.Mass{
				{Position: dynamo.V(3, 4), Velocity: dynamo.V(1, -1), Mass: 0, Index: 0},
				{Position: dynamo.V(1, 0), Mass: 1, Index: 1},
			}
			for i := 0; i < 100; i++ {
				integ.Step(harmonic{}, ps, 0.01)
			}
			if ps[0].Position != dynamo.V(3, 4) || ps[0].Velocity != dynamo.V(1, -1) {
				t.Errorf("anchor moved: %+v", ps[0])
			}
			if ps[1].Position == dynamo.V(1, 0) {
				t.Error("free particle did not move")
			}
		})
	}
}

func TestIntegrators_Accuracy(t *testing.T) {
	tests := []struct {
		name string
		tol  float64
	}{
		{"euler", 2e-2},
		{"symplectic", 1e-2},
		{"verlet", 1e-4},
		{"leapfrog", 1e-4},
		{"rk4", 1e-8},
	}

	const (
		h     = 0.01
		steps = 100
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			integ, _ := New(tt.name)
			ps := []dynamo.Mass{{Position: dynamo.V(1, 0), Mass: 1}}
			for i := 0; i < steps; i++ {
				integ.Step(harmonic{}, ps, h)
			}

			tEnd := float64(steps) * h
			if got, want := ps[0].Position.X, math.Cos(tEnd); math.Abs(got-want) > tt.tol {
				t.Errorf("position error too large: got %.8f, expected %.8f", got, want)
			}
			if got, want := ps[0].Velocity.X, -math.Sin(tEnd); math.Abs(got-want) > tt.tol {
				t.Errorf("velocity error too large: got %.8f, expected %.8f", got, want)
			}
		})
	}
}

func TestIntegrators_EnergyBehaviour(t *testing.T) {
	run := func(name string) float64 {
		integ, _ := New(name)
		ps := []dynamo.Mass{{Position: dynamo.V(1, 0), Mass: 1}}
		e0 := oscillatorEnergy(ps[0])
		for i := 0; i < 10000; i++ {
			integ.Step(harmonic{}, ps, 0.01)
		}
		return math.Abs(oscillatorEnergy(ps[0])-e0) / e0
	}

	if drift := run("euler"); drift < 0.5 {
		t.Errorf("explicit euler should gain energy, drift %e", drift)
	}
	for _, name := range []string{"symplectic", "verlet", "leapfrog"} {
		if drift := run(name); drift > 1e-2 {
			t.Errorf("%s energy drift too high: %e", name, drift)
		}
	}
	if drift := run("rk4"); drift > 1e-6 {
		t.Errorf("rk4 energy drift too high: %e", drift)
	}
}

func TestIntegrators_Scene(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			integ, _ := New(name)
			s := dynamo.NewScene(dynamo.WithIntegrator(integ))
			a := s.Mass().Mass(1).At(dynamo.V(-1, 0))
			b := s.Mass().Mass(1).At(dynamo.V(1, 0))
			if err := s.AddForce(dynamo.NewSpring(a.Index(), b.Index(), dynamo.WithRestLength(1))); err != nil {
				t.Fatal(err)
			}

			r, err := s.Simulate(200, 10, 0.01)
			if err != nil {
				t.Fatal(err)
			}
			e := r.Energies()
			if drift := math.Abs(e[len(e)-1]-e[0]) / e[0]; drift > 1e-2 {
				t.Errorf("energy drift %e", drift)
			}
			if p := s.Momentum(); p.Len() > 1e-9 {
				t.Errorf("momentum not conserved: %v", p)
			}
		})
	}
}
