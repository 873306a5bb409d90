package shader

import (
	"errors"
	"fmt"

	"github.com/Faultbox/slime-engine/internal/engine/gpu"
)

// ErrParameterArity is returned when SetParameter gets the wrong number of
// values for the parameter's shape.
var ErrParameterArity = errors.New("shader: wrong number of values for parameter")

// ShaderCompileError carries the driver's log for a stage that failed to compile.
type ShaderCompileError struct {
	Stage string
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("%s shader: compile failed: %s", e.Stage, e.Log)
}

// ProgramLinkError carries the driver's link log.
type ProgramLinkError struct {
	Log string
}

func (e *ProgramLinkError) Error() string {
	return fmt.Sprintf("program link failed: %s", e.Log)
}

// UnknownParameterError is returned for a name the program does not expose.
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("shader parameter %q not found", e.Name)
}

// UnsupportedParameterTypeError is returned when a parameter's declared type has
// no upload path.
type UnsupportedParameterTypeError struct {
	Name string
	Kind Kind
	Type gpu.Enum
}

func (e *UnsupportedParameterTypeError) Error() string {
	return fmt.Sprintf("%s parameter %q of type 0x%04X is not supported", e.Kind, e.Name, e.Type)
}
