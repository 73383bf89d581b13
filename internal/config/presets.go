package config

import (
	"fmt"
	"math"
	"sort"
)

func f64(v float64) *float64 { return &v }

// Presets are the built-in example scenes. Each call returns a fresh Config.
var Presets = map[string]func() *Config{
	"orbit":             orbitPreset,
	"double_oscillator": doubleOscillatorPreset,
	"triangle":          trianglePreset,
	"chain":             chainPreset,
}

// orbitPreset puts a light body on a circular orbit around a heavy one.
func orbitPreset() *Config {
	const (
		heavy    = 50.0
		distance = 10.0
		g        = 0.2
	)
	return &Config{
		Name: "orbit", Integrator: "symplectic",
		Dt: 1.0 / 60, Substeps: 200, Steps: 3600,
		Masses: []MassConfig{
			{Name: "sun", Mass: f64(heavy)},
			{Name: "planet", Mass: f64(1), Position: [2]float64{distance, 0},
				Velocity: [2]float64{0, math.Sqrt(g * heavy / distance)}},
		},
		Groups: []GravityConfig{{Participants: []string{"sun", "planet"}, G: f64(g)}},
	}
}

// doubleOscillatorPreset is two masses between two anchors, the right one
// displaced from equilibrium.
func doubleOscillatorPreset() *Config {
	const distance = 5.0
	k, rest := f64(2), f64(distance)
	return &Config{
		Name: "double_oscillator", Integrator: "symplectic",
		Dt: 1.0 / 60, Substeps: 200, Steps: 600,
		Masses: []MassConfig{
			{Name: "anchor_left", Mass: f64(0), Position: [2]float64{-distance * 1.5, 0}},
			{Name: "m0", Mass: f64(1), Position: [2]float64{-distance * 0.5, 0}},
			{Name: "m1", Mass: f64(1), Position: [2]float64{distance*0.5 + 3, 0}},
			{Name: "anchor_right", Mass: f64(0), Position: [2]float64{distance * 1.5, 0}},
		},
		Springs: []SpringConfig{
			{A: "m0", B: "anchor_left", K: k, Rest: rest},
			{A: "m1", B: "anchor_right", K: k, Rest: rest},
			{A: "m0", B: "m1", K: k, Rest: rest},
		},
	}
}

// trianglePreset is three masses in a triangle of springs, each tied to an
// anchor outside the triangle, with the top-left mass and bottom mass offset.
func trianglePreset() *Config {
	const distance = 5.0
	r := distance / math.Sqrt(3)
	angles := []float64{150, 30, -90}
	offsets := [][2]float64{{1, 1}, {0, 0}, {-1, 0}}
	anchorAngles := []float64{135, 45, -90}

	cfg := &Config{
		Name: "triangle", Integrator: "symplectic",
		Dt: 1.0 / 30, Substeps: 500, Steps: 1800,
	}
	for i, a := range angles {
		cfg.Masses = append(cfg.Masses, MassConfig{
			Name:    fmt.Sprintf("m%d", i),
			Mass:    f64(1),
			AtAngle: &PolarPlace{Origin: offsets[i], Angle: a, Distance: r},
		})
	}
	for i, a := range angles {
		rad := a * math.Pi / 180
		home := [2]float64{r * math.Cos(rad), r * math.Sin(rad)}
		cfg.Masses = append(cfg.Masses, MassConfig{
			Name:    fmt.Sprintf("anchor%d", i),
			Mass:    f64(0),
			AtAngle: &PolarPlace{Origin: home, Angle: anchorAngles[i], Distance: distance},
		})
	}

	k, rest := f64(1), f64(distance)
	for i := range angles {
		cfg.Springs = append(cfg.Springs, SpringConfig{
			A: fmt.Sprintf("m%d", i), B: fmt.Sprintf("anchor%d", i), K: k, Rest: rest,
		})
	}
	for i := range angles {
		cfg.Springs = append(cfg.Springs, SpringConfig{
			A: fmt.Sprintf("m%d", i), B: fmt.Sprintf("m%d", (i+1)%len(angles)), K: k, Rest: rest,
		})
	}
	return cfg
}

// chainPreset is a 50-particle chain hanging from an anchor under gravity.
func chainPreset() *Config {
	const (
		n       = 50
		spacing = 1.0
	)
	cfg := &Config{
		Name: "chain", Integrator: "symplectic",
		Dt: 1.0 / 60, Substeps: 100, Steps: 600,
		Gravity: [2]float64{0, -9.81},
	}
	for i := 0; i < n; i++ {
		m := f64(0.1)
		if i == 0 {
			m = f64(0)
		}
		cfg.Masses = append(cfg.Masses, MassConfig{
			Name:     fmt.Sprintf("m%d", i),
			Mass:     m,
			Position: [2]float64{float64(i) * spacing, 0},
		})
		if i > 0 {
			cfg.Springs = append(cfg.Springs, SpringConfig{
				A: fmt.Sprintf("m%d", i-1), B: fmt.Sprintf("m%d", i), K: f64(200), Rest: f64(spacing),
			})
		}
	}
	return cfg
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
