package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/massim/internal/dynamo"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "symplectic", cfg.Integrator)
	assert.Greater(t, cfg.Dt, 0.0, "dt should be positive")
	assert.GreaterOrEqual(t, cfg.Substeps, 1)
}

const yamlScene = `
name: pair
dt: 0.01
substeps: 4
steps: 10
integrator: verlet
gravity: [0, -9.81]
masses:
  - name: anchor
    mass: 0
  - name: bob
    position: [3, 4]
    velocity: [1, 0]
springs:
  - a: anchor
    b: bob
    k: 10
gravity_groups:
  - participants: [anchor, bob]
    g: 0.5
uniform_fields:
  - [1, 0]
`

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "pair.yaml", yamlScene))
	require.NoError(t, err)

	assert.Equal(t, "pair", cfg.Name)
	assert.Equal(t, 0.01, cfg.Dt)
	assert.Equal(t, 4, cfg.Substeps)
	assert.Equal(t, [2]float64{0, -9.81}, cfg.Gravity)
	require.Len(t, cfg.Masses, 2)
	assert.Nil(t, cfg.Masses[1].Mass, "omitted mass stays nil")
	require.Len(t, cfg.Springs, 1)
	assert.Nil(t, cfg.Springs[0].Rest)

	s, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "verlet", s.Integrator().Name())
	assert.Equal(t, []float64{0, DefaultMass}, s.Masses())

	forces := s.Forces()
	require.Len(t, forces, 3)
	spring := forces[0].(dynamo.Spring)
	assert.Equal(t, 10.0, spring.K)
	assert.Equal(t, 5.0, spring.RestLength, "rest length resolved from separation")
	assert.Equal(t, 0.5, forces[1].(dynamo.Gravity).G)
	assert.Equal(t, dynamo.V(1, 0), forces[2].(dynamo.UniformGravity).Acceleration)
}

func TestLoad_NameFromFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "unnamed.yml", "masses:\n  - position: [1, 1]\n"))
	require.NoError(t, err)
	assert.Equal(t, "unnamed", cfg.Name)
	assert.Equal(t, DefaultSubsteps, cfg.Substeps)
	assert.Equal(t, []string{"m0"}, cfg.MassNames())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "masses: {not: [a list"))
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.yaml")
	want := GetPreset("orbit")
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		target error
	}{
		{
			name:   "unknown spring endpoint",
			cfg:    Config{Masses: []MassConfig{{Name: "a"}}, Springs: []SpringConfig{{A: "a", B: "b"}}},
			target: ErrUnknownMass,
		},
		{
			name:   "unknown gravity participant",
			cfg:    Config{Masses: []MassConfig{{Name: "a"}}, Groups: []GravityConfig{{Participants: []string{"a", "z"}}}},
			target: ErrUnknownMass,
		},
		{
			name:   "negative mass",
			cfg:    Config{Masses: []MassConfig{{Name: "a", Mass: f64(-1)}}},
			target: dynamo.ErrInvalidArgument,
		},
		{
			name:   "self spring",
			cfg:    Config{Masses: []MassConfig{{Name: "a"}}, Springs: []SpringConfig{{A: "a", B: "a"}}},
			target: dynamo.ErrInvalidArgument,
		},
		{
			name:   "non-finite gravity",
			cfg:    Config{Gravity: [2]float64{math.Inf(1), 0}},
			target: dynamo.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Build()
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}

	_, err := (&Config{Integrator: "rk45"}).Build()
	assert.Error(t, err)

	_, err = (&Config{Masses: []MassConfig{{Name: "a"}, {Name: "a"}}}).Build()
	assert.Error(t, err)
}

const iniScene = `
[simulation]
name = ini-pair
dt = 0.02
substeps = 8
steps = 5
integrator = rk4
gravityy = -1

[mass "b"]
order = 1
x = 2
vy = 0.5

[mass "a"]
order = 0
mass = 0

[spring "link"]
a = a
b = b
k = 3

[gravity "pair"]
participant = a
participant = b
g = 0.1

[field "wind"]
x = 0.25
`

func TestLoadINI(t *testing.T) {
	cfg, err := Load(writeFile(t, "pair.ini", iniScene))
	require.NoError(t, err)

	assert.Equal(t, "ini-pair", cfg.Name)
	assert.Equal(t, 0.02, cfg.Dt)
	assert.Equal(t, 8, cfg.Substeps)
	assert.Equal(t, "rk4", cfg.Integrator)
	assert.Equal(t, [2]float64{0, -1}, cfg.Gravity)
	assert.Equal(t, []string{"a", "b"}, cfg.MassNames())
	require.NotNil(t, cfg.Masses[0].Mass)
	assert.Equal(t, 0.0, *cfg.Masses[0].Mass)
	assert.Nil(t, cfg.Masses[1].Mass)
	assert.Equal(t, [2]float64{0, 0.5}, cfg.Masses[1].Velocity)
	require.Len(t, cfg.Springs, 1)
	assert.Equal(t, 3.0, *cfg.Springs[0].K)
	assert.Nil(t, cfg.Springs[0].Rest)
	require.Len(t, cfg.Groups, 1)
	assert.Equal(t, []string{"a", "b"}, cfg.Groups[0].Participants)
	assert.Equal(t, [][2]float64{{0.25, 0}}, cfg.Fields)

	s, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Len(t, s.Forces(), 3)
}

func TestLoadINI_Defaults(t *testing.T) {
	cfg, err := LoadINI(writeFile(t, "tiny.gcfg", "[mass \"only\"]\nx = 1\n"))
	require.NoError(t, err)

	assert.Equal(t, "tiny", cfg.Name)
	assert.Equal(t, DefaultDt, cfg.Dt)
	assert.Equal(t, DefaultSubsteps, cfg.Substeps)
	assert.Equal(t, "symplectic", cfg.Integrator)
}

func TestLoadINI_BadNumber(t *testing.T) {
	_, err := LoadINI(writeFile(t, "bad.ini", "[spring \"s\"]\na = x\nb = y\nk = stiff\n"))
	assert.Error(t, err)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("orbit")
	require.NotNil(t, cfg)
	assert.Equal(t, "orbit", cfg.Name)

	cfg.Masses[0].Name = "changed"
	assert.Equal(t, "sun", GetPreset("orbit").Masses[0].Name, "presets are fresh copies")

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"chain", "double_oscillator", "orbit", "triangle"}, ListPresets())
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			s, err := GetPreset(name).Build()
			require.NoError(t, err)
			assert.Greater(t, s.Len(), 1)
			assert.NotEmpty(t, s.Forces())
		})
	}
}

func TestTrianglePresetGeometry(t *testing.T) {
	s, err := GetPreset("triangle").Build()
	require.NoError(t, err)
	require.Equal(t, 6, s.Len())

	bottom, err := s.Particle(2)
	require.NoError(t, err)
	r := 5 / math.Sqrt(3)
	assert.InDelta(t, -1.0, bottom.Position.X, 1e-9)
	assert.InDelta(t, -r, bottom.Position.Y, 1e-9)

	masses := s.Masses()
	assert.Equal(t, []float64{1, 1, 1, 0, 0, 0}, masses)
}
