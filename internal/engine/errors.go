package engine

import (
	"errors"
	"fmt"
)

// ErrNoContainer is returned by New when Options.Container is nil.
var ErrNoContainer = errors.New("engine: no container")

// ContextCreationError is returned when the canvas cannot provide a graphics
// context. There is no recovery from it.
type ContextCreationError struct {
	Err error
}

func (e *ContextCreationError) Error() string {
	return fmt.Sprintf("engine: was not able to create graphics context: %v", e.Err)
}

func (e *ContextCreationError) Unwrap() error {
	return e.Err
}
