package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/integrators"
)

const (
	DefaultDt       = 1.0 / 60
	DefaultSubsteps = 200
	DefaultSteps    = 600
	DefaultMass     = 1.0
)

var ErrUnknownMass = errors.New("config: unknown mass")

// Config describes a scene and how to run it.
type Config struct {
	Name       string          `yaml:"name"`
	Dt         float64         `yaml:"dt"`
	Substeps   int             `yaml:"substeps"`
	Steps      int             `yaml:"steps"`
	Integrator string          `yaml:"integrator"`
	Gravity    [2]float64      `yaml:"gravity,flow"`
	Masses     []MassConfig    `yaml:"masses"`
	Springs    []SpringConfig  `yaml:"springs,omitempty"`
	Groups     []GravityConfig `yaml:"gravity_groups,omitempty"`
	Fields     [][2]float64    `yaml:"uniform_fields,omitempty,flow"`
}

// MassConfig places one particle. A mass of 0 makes it an anchor; an omitted
// mass defaults to DefaultMass. When AtAngle is set it overrides Position.
type MassConfig struct {
	Name     string      `yaml:"name"`
	Mass     *float64    `yaml:"mass,omitempty"`
	Position [2]float64  `yaml:"position,flow"`
	Velocity [2]float64  `yaml:"velocity,flow"`
	AtAngle  *PolarPlace `yaml:"at_angle,omitempty"`
}

// PolarPlace positions a particle at Distance from Origin, Angle degrees
// counter-clockwise from +x.
type PolarPlace struct {
	Origin   [2]float64 `yaml:"origin,flow"`
	Angle    float64    `yaml:"angle"`
	Distance float64    `yaml:"distance"`
}

// SpringConfig links two named masses. Nil K or Rest use the engine defaults.
type SpringConfig struct {
	A    string   `yaml:"a"`
	B    string   `yaml:"b"`
	K    *float64 `yaml:"k,omitempty"`
	Rest *float64 `yaml:"rest,omitempty"`
}

type GravityConfig struct {
	Participants []string `yaml:"participants,flow"`
	G            *float64 `yaml:"g,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:         DefaultDt,
		Substeps:   DefaultSubsteps,
		Steps:      DefaultSteps,
		Integrator: "symplectic",
	}
}

// Load reads a scene file. The format is chosen by extension: .ini and .gcfg
// are read with LoadINI, everything else as YAML.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".gcfg":
		return LoadINI(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Build constructs the scene described by c. Masses are added in list order,
// so the n-th entry has index n.
func (c *Config) Build() (*dynamo.Scene, error) {
	integ, err := integrators.New(c.Integrator)
	if err != nil {
		return nil, err
	}

	s := dynamo.NewScene(dynamo.WithIntegrator(integ))
	if err := s.SetGravity(dynamo.V(c.Gravity[0], c.Gravity[1])); err != nil {
		return nil, err
	}

	names := make(map[string]int, len(c.Masses))
	for i, mc := range c.Masses {
		name := mc.Name
		if name == "" {
			name = fmt.Sprintf("m%d", i)
		}
		if _, dup := names[name]; dup {
			return nil, fmt.Errorf("config: duplicate mass name %q", name)
		}

		m := DefaultMass
		if mc.Mass != nil {
			m = *mc.Mass
		}
		ref := s.Mass().Mass(m).At(dynamo.V(mc.Position[0], mc.Position[1])).Vel(dynamo.V(mc.Velocity[0], mc.Velocity[1]))
		if mc.AtAngle != nil {
			ref.AtAngle(dynamo.V(mc.AtAngle.Origin[0], mc.AtAngle.Origin[1]), mc.AtAngle.Angle, mc.AtAngle.Distance)
		}
		if err := ref.Err(); err != nil {
			return nil, fmt.Errorf("config: mass %q: %w", name, err)
		}
		names[name] = ref.Index()
	}

	lookup := func(name string) (int, error) {
		idx, ok := names[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownMass, name)
		}
		return idx, nil
	}

	for _, sc := range c.Springs {
		a, err := lookup(sc.A)
		if err != nil {
			return nil, err
		}
		b, err := lookup(sc.B)
		if err != nil {
			return nil, err
		}
		var opts []dynamo.SpringOption
		if sc.K != nil {
			opts = append(opts, dynamo.WithStiffness(*sc.K))
		}
		if sc.Rest != nil {
			opts = append(opts, dynamo.WithRestLength(*sc.Rest))
		}
		if err := s.AddForce(dynamo.NewSpring(a, b, opts...)); err != nil {
			return nil, err
		}
	}

	for _, gc := range c.Groups {
		idx := make([]int, 0, len(gc.Participants))
		for _, name := range gc.Participants {
			i, err := lookup(name)
			if err != nil {
				return nil, err
			}
			idx = append(idx, i)
		}
		var opts []dynamo.GravityOption
		if gc.G != nil {
			opts = append(opts, dynamo.WithG(*gc.G))
		}
		if err := s.AddForce(dynamo.NewGravity(idx, opts...)); err != nil {
			return nil, err
		}
	}

	for _, f := range c.Fields {
		if err := s.AddForce(dynamo.UniformGravity{Acceleration: dynamo.V(f[0], f[1])}); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// MassNames returns the particle names in index order.
func (c *Config) MassNames() []string {
	out := make([]string, len(c.Masses))
	for i, mc := range c.Masses {
		out[i] = mc.Name
		if out[i] == "" {
			out[i] = fmt.Sprintf("m%d", i)
		}
	}
	return out
}
