package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/gcfg.v1"
)

// iniFile mirrors the INI layout:
//
//	[simulation]
//	name = orbit
//	dt = 0.0166
//	gravityx = 0
//	gravityy = -9.81
//
//	[mass "sun"]
//	order = 0
//	mass = 50
//
//	[spring "left"]
//	a = m0
//	b = anchor
//	rest = 5
//
//	[gravity "pair"]
//	participant = sun
//	participant = planet
//	g = 0.2
type iniFile struct {
	Simulation iniSimulation
	Mass       map[string]*iniMass
	Spring     map[string]*iniSpring
	Gravity    map[string]*iniGravity
	Field      map[string]*iniField
}

type iniSimulation struct {
	Name       string
	Dt         float64
	Substeps   int
	Steps      int
	Integrator string
	GravityX   float64
	GravityY   float64
}

type iniMass struct {
	Order    int
	Mass     string
	X, Y     float64
	VX, VY   float64
	Angle    string
	Distance float64
}

type iniSpring struct {
	A, B string
	K    string
	Rest string
}

type iniGravity struct {
	Participant []string
	G           string
}

type iniField struct {
	X, Y float64
}

// LoadINI reads a scene in gcfg INI format. Masses are ordered by their
// order value, then by name.
func LoadINI(path string) (*Config, error) {
	def := DefaultConfig()
	f := iniFile{Simulation: iniSimulation{
		Dt:         def.Dt,
		Substeps:   def.Substeps,
		Steps:      def.Steps,
		Integrator: def.Integrator,
	}}
	if err := gcfg.ReadFileInto(&f, path); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	sim := f.Simulation
	cfg := &Config{
		Name:       sim.Name,
		Dt:         sim.Dt,
		Substeps:   sim.Substeps,
		Steps:      sim.Steps,
		Integrator: sim.Integrator,
		Gravity:    [2]float64{sim.GravityX, sim.GravityY},
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	names := make([]string, 0, len(f.Mass))
	for name := range f.Mass {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, oj := f.Mass[names[i]].Order, f.Mass[names[j]].Order
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		m := f.Mass[name]
		mc := MassConfig{
			Name:     name,
			Position: [2]float64{m.X, m.Y},
			Velocity: [2]float64{m.VX, m.VY},
		}
		var err error
		if mc.Mass, err = optionalFloat(m.Mass); err != nil {
			return nil, fmt.Errorf("config: mass %q: %w", name, err)
		}
		angle, err := optionalFloat(m.Angle)
		if err != nil {
			return nil, fmt.Errorf("config: mass %q angle: %w", name, err)
		}
		if angle != nil {
			mc.AtAngle = &PolarPlace{Origin: mc.Position, Angle: *angle, Distance: m.Distance}
		}
		cfg.Masses = append(cfg.Masses, mc)
	}

	for _, name := range sortedKeys(f.Spring) {
		sp := f.Spring[name]
		sc := SpringConfig{A: sp.A, B: sp.B}
		var err error
		if sc.K, err = optionalFloat(sp.K); err != nil {
			return nil, fmt.Errorf("config: spring %q k: %w", name, err)
		}
		if sc.Rest, err = optionalFloat(sp.Rest); err != nil {
			return nil, fmt.Errorf("config: spring %q rest: %w", name, err)
		}
		cfg.Springs = append(cfg.Springs, sc)
	}

	for _, name := range sortedKeys(f.Gravity) {
		g := f.Gravity[name]
		gc := GravityConfig{Participants: append([]string(nil), g.Participant...)}
		var err error
		if gc.G, err = optionalFloat(g.G); err != nil {
			return nil, fmt.Errorf("config: gravity %q g: %w", name, err)
		}
		cfg.Groups = append(cfg.Groups, gc)
	}

	for _, name := range sortedKeys(f.Field) {
		fd := f.Field[name]
		cfg.Fields = append(cfg.Fields, [2]float64{fd.X, fd.Y})
	}

	return cfg, nil
}

func optionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func sortedKeys[T any](m map[string]*T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
