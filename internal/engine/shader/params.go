package shader

import (
	"fmt"

	"github.com/Faultbox/slime-engine/internal/engine/gpu"
)

// Kind tells uniforms and vertex attributes apart.
type Kind int

const (
	KindUniform Kind = iota
	KindAttribute
)

func (k Kind) String() string {
	if k == KindAttribute {
		return "attribute"
	}
	return "uniform"
}

// Shape is the closed set of parameter layouts the material can upload.
type Shape int

const (
	ShapeUnsupported Shape = iota
	ShapeFloat
	ShapeVec2
	ShapeVec3
	ShapeVec4
	ShapeMat3
	ShapeMat4
	ShapeSampler
)

var shapeNames = [...]string{"unsupported", "float", "vec2", "vec3", "vec4", "mat3", "mat4", "sampler"}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Components returns how many float values one upload of the shape takes.
func (s Shape) Components() int {
	switch s {
	case ShapeFloat, ShapeSampler:
		return 1
	case ShapeVec2:
		return 2
	case ShapeVec3:
		return 3
	case ShapeVec4:
		return 4
	case ShapeMat3:
		return 9
	case ShapeMat4:
		return 16
	}
	return 0
}

// shapeOf maps a GPU-reported type to its shape. Attributes only accept the
// float scalar and vector types.
func shapeOf(kind Kind, typ gpu.Enum) Shape {
	switch typ {
	case gpu.Float:
		return ShapeFloat
	case gpu.FloatVec2:
		return ShapeVec2
	case gpu.FloatVec3:
		return ShapeVec3
	case gpu.FloatVec4:
		return ShapeVec4
	}
	if kind == KindAttribute {
		return ShapeUnsupported
	}
	switch typ {
	case gpu.FloatMat3:
		return ShapeMat3
	case gpu.FloatMat4:
		return ShapeMat4
	case gpu.Sampler2D:
		return ShapeSampler
	}
	return ShapeUnsupported
}

// uniformUploader returns the upload call for a uniform shape. The values have
// already been checked against Shape.Components.
func uniformUploader(s Shape) func(ctx gpu.Context, l gpu.UniformLocation, v []float32) {
	switch s {
	case ShapeFloat:
		return func(ctx gpu.Context, l gpu.UniformLocation, v []float32) { ctx.Uniform1f(l, v[0]) }
	case ShapeVec2:
		return func(ctx gpu.Context, l gpu.UniformLocation, v []float32) { ctx.Uniform2f(l, v[0], v[1]) }
	case ShapeVec3:
		return func(ctx gpu.Context, l gpu.UniformLocation, v []float32) { ctx.Uniform3f(l, v[0], v[1], v[2]) }
	case ShapeVec4:
		return func(ctx gpu.Context, l gpu.UniformLocation, v []float32) { ctx.Uniform4f(l, v[0], v[1], v[2], v[3]) }
	case ShapeMat3:
		return func(ctx gpu.Context, l gpu.UniformLocation, v []float32) { ctx.UniformMatrix3fv(l, v) }
	case ShapeMat4:
		return func(ctx gpu.Context, l gpu.UniformLocation, v []float32) { ctx.UniformMatrix4fv(l, v) }
	case ShapeSampler:
		return func(ctx gpu.Context, l gpu.UniformLocation, v []float32) { ctx.Uniform1i(l, int32(v[0])) }
	}
	return nil
}

// AttribPointer describes how an attribute reads the bound vertex buffer.
type AttribPointer struct {
	Type       gpu.Enum
	Normalized bool
	Stride     int32
	Offset     int32
}

// DefaultAttribPointer is tightly packed, unnormalized float data from offset 0.
func DefaultAttribPointer() AttribPointer {
	return AttribPointer{Type: gpu.Float}
}

// Parameter is one active uniform or attribute of a linked program.
type Parameter struct {
	Name  string
	Kind  Kind
	Type  gpu.Enum
	Shape Shape

	uniform gpu.UniformLocation
	attrib  gpu.AttribLocation
	upload  func(ctx gpu.Context, l gpu.UniformLocation, v []float32)
}

// UniformLocation returns the location of a uniform parameter.
func (p *Parameter) UniformLocation() gpu.UniformLocation {
	return p.uniform
}

// AttribLocation returns the location of an attribute parameter.
func (p *Parameter) AttribLocation() gpu.AttribLocation {
	return p.attrib
}

func (p *Parameter) unsupported() error {
	return &UnsupportedParameterTypeError{Name: p.Name, Kind: p.Kind, Type: p.Type}
}
