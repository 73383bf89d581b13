package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for scene construction and result access.
var (
	// ErrInvalidReference indicates a force names a particle index not present in the scene.
	ErrInvalidReference = errors.New("dynamo: invalid particle reference")

	// ErrInvalidArgument indicates a non-finite or out-of-domain construction parameter.
	ErrInvalidArgument = errors.New("dynamo: invalid argument")

	// ErrOutOfRange indicates a frame or particle index outside a recorded result.
	ErrOutOfRange = errors.New("dynamo: index out of range")
)

// ForceError wraps a force rejected by Scene.AddForce.
type ForceError struct {
	Kind    string
	Index   int
	Wrapped error
}

func (e *ForceError) Error() string {
	return fmt.Sprintf("%s (force %d): %v", e.Kind, e.Index, e.Wrapped)
}

func (e *ForceError) Unwrap() error {
	return e.Wrapped
}

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
