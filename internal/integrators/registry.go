package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/massim/internal/dynamo"
)

var constructors = map[string]func() dynamo.Integrator{
	"symplectic": func() dynamo.Integrator { return dynamo.NewSymplecticEuler() },
	"euler":      func() dynamo.Integrator { return NewEuler() },
	"verlet":     func() dynamo.Integrator { return NewVerlet() },
	"leapfrog":   func() dynamo.Integrator { return NewLeapfrog() },
	"rk4":        func() dynamo.Integrator { return NewRK4() },
}

// New returns a fresh integrator by name. An empty name selects the default
// semi-implicit Euler scheme.
func New(name string) (dynamo.Integrator, error) {
	if name == "" {
		name = "symplectic"
	}
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// Names lists the registered integrators in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
