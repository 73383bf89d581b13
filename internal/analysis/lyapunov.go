package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/massim/internal/dynamo"
)

// SceneBuilder constructs a fresh, identical scene on every call.
type SceneBuilder func() (*dynamo.Scene, error)

// LyapunovExponent estimates the largest Lyapunov exponent of a scene using
// two nearby trajectories. The x position of particle is shifted by
// perturbation in the second copy; after every outer step the separation in
// phase space is measured and the copy is pulled back to the initial
// distance. A positive value indicates chaos.
func LyapunovExponent(build SceneBuilder, particle int, perturbation, dt float64, substeps, steps int) (float64, error) {
	if perturbation <= 0 {
		return 0, fmt.Errorf("perturbation must be positive, got %v", perturbation)
	}

	a, err := build()
	if err != nil {
		return 0, err
	}
	b, err := build()
	if err != nil {
		return 0, err
	}

	ref, err := b.Ref(particle)
	if err != nil {
		return 0, err
	}
	ref.At(ref.Position().Add(dynamo.V(perturbation, 0)))

	d0 := perturbation
	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		if _, err := a.Step(dt, substeps); err != nil {
			return 0, err
		}
		if _, err := b.Step(dt, substeps); err != nil {
			return 0, err
		}

		sep := separation(a, b)
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			continue
		}
		sumLog += math.Log(sep / d0)
		count++

		if err := renormalize(a, b, d0/sep); err != nil {
			return 0, err
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(count) * dt), nil
}

func separation(a, b *dynamo.Scene) float64 {
	pa, pb := a.Positions(), b.Positions()
	va, vb := a.Velocities(), b.Velocities()

	sum := 0.0
	for i := range pa {
		sum += pb[i].Sub(pa[i]).Len2() + vb[i].Sub(va[i]).Len2()
	}
	return math.Sqrt(sum)
}

// renormalize moves every particle of b towards a so the phase space
// separation is scaled by scale.
func renormalize(a, b *dynamo.Scene, scale float64) error {
	pa, pb := a.Positions(), b.Positions()
	va, vb := a.Velocities(), b.Velocities()

	for i := range pa {
		ref, err := b.Ref(i)
		if err != nil {
			return err
		}
		ref.At(pa[i].Add(pb[i].Sub(pa[i]).Scale(scale))).
			Vel(va[i].Add(vb[i].Sub(va[i]).Scale(scale)))
		if err := ref.Err(); err != nil {
			return err
		}
	}
	return nil
}
