// Package shader compiles GLSL programs and binds their parameters by name.
package shader

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/slime-engine/internal/engine/gpu"
	"github.com/Faultbox/slime-engine/internal/logger"
)

// MaterialDef holds the sources of a vertex and fragment shader pair.
type MaterialDef struct {
	VertexSource   string
	FragmentSource string
}

// Material is a linked program plus a table of its active parameters.
// The table is built once after linking and never changes.
type Material struct {
	ctx     gpu.Context
	program gpu.Program
	params  map[string]*Parameter
}

// NewMaterial compiles and links def. On failure every object created along
// the way is deleted and the error is a *ShaderCompileError or *ProgramLinkError.
func NewMaterial(ctx gpu.Context, def MaterialDef) (*Material, error) {
	program, err := compileProgram(ctx, def.VertexSource, def.FragmentSource)
	if err != nil {
		return nil, err
	}

	m := &Material{
		ctx:     ctx,
		program: program,
		params:  make(map[string]*Parameter),
	}
	m.gatherParameters()
	ctx.UseProgram(0)

	logger.Debug("material created",
		zap.Uint32("program", uint32(program)),
		zap.Strings("parameters", m.names()),
	)
	return m, nil
}

// compileProgram compiles both stages and links them into a program.
func compileProgram(ctx gpu.Context, vertexSrc, fragmentSrc string) (gpu.Program, error) {
	vertShader, err := compileShader(ctx, vertexSrc, gpu.VertexShader, "vertex")
	if err != nil {
		return 0, err
	}
	defer ctx.DeleteShader(vertShader)

	fragShader, err := compileShader(ctx, fragmentSrc, gpu.FragmentShader, "fragment")
	if err != nil {
		return 0, err
	}
	defer ctx.DeleteShader(fragShader)

	program := ctx.CreateProgram()
	ctx.AttachShader(program, vertShader)
	ctx.AttachShader(program, fragShader)
	ctx.LinkProgram(program)

	if !ctx.ProgramLinked(program) {
		log := ctx.ProgramInfoLog(program)
		ctx.DeleteProgram(program)
		return 0, &ProgramLinkError{Log: strings.TrimSpace(log)}
	}

	ctx.DetachShader(program, vertShader)
	ctx.DetachShader(program, fragShader)
	return program, nil
}

// compileShader compiles a single shader of the given stage.
func compileShader(ctx gpu.Context, source string, stage gpu.Enum, name string) (gpu.Shader, error) {
	shader := ctx.CreateShader(stage)
	ctx.ShaderSource(shader, source)
	ctx.CompileShader(shader)

	if !ctx.ShaderCompiled(shader) {
		log := ctx.ShaderInfoLog(shader)
		ctx.DeleteShader(shader)
		return 0, &ShaderCompileError{Stage: name, Log: strings.TrimSpace(log)}
	}
	return shader, nil
}

// gatherParameters records every active uniform and attribute together with
// its upload strategy.
func (m *Material) gatherParameters() {
	for _, info := range m.ctx.ActiveUniforms(m.program) {
		loc, ok := m.ctx.UniformLocation(m.program, info.Name)
		if !ok {
			continue
		}
		shape := shapeOf(KindUniform, info.Type)
		m.params[info.Name] = &Parameter{
			Name:    info.Name,
			Kind:    KindUniform,
			Type:    info.Type,
			Shape:   shape,
			uniform: loc,
			upload:  uniformUploader(shape),
		}
	}

	for _, info := range m.ctx.ActiveAttribs(m.program) {
		loc := m.ctx.AttribLocation(m.program, info.Name)
		if loc < 0 {
			continue
		}
		m.params[info.Name] = &Parameter{
			Name:   info.Name,
			Kind:   KindAttribute,
			Type:   info.Type,
			Shape:  shapeOf(KindAttribute, info.Type),
			attrib: loc,
		}
	}
}

func (m *Material) names() []string {
	names := make([]string, 0, len(m.params))
	for name := range m.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Program returns the linked program handle.
func (m *Material) Program() gpu.Program {
	return m.program
}

// Use makes the material's program current.
func (m *Material) Use() {
	m.ctx.UseProgram(m.program)
}

// Parameter returns the named parameter, or nil.
func (m *Material) Parameter(name string) *Parameter {
	return m.params[name]
}

// Parameters returns all parameters sorted by name.
func (m *Material) Parameters() []*Parameter {
	out := make([]*Parameter, 0, len(m.params))
	for _, name := range m.names() {
		out = append(out, m.params[name])
	}
	return out
}

func (m *Material) lookup(name string) (*Parameter, error) {
	p, ok := m.params[name]
	if !ok {
		return nil, &UnknownParameterError{Name: name}
	}
	return p, nil
}

// SetParameter uploads values to a uniform, or binds an attribute to the
// currently bound buffer with DefaultAttribPointer. The program must be in use.
//
// Uniforms take as many values as their shape has components; a sampler takes
// the texture unit. Attributes take no values.
func (m *Material) SetParameter(name string, values ...float32) error {
	p, err := m.lookup(name)
	if err != nil {
		return err
	}

	if p.Kind == KindAttribute {
		if len(values) != 0 {
			return fmt.Errorf("%w: attribute %q takes no values, got %d", ErrParameterArity, name, len(values))
		}
		return m.bindAttribute(p, DefaultAttribPointer())
	}

	if p.upload == nil {
		return p.unsupported()
	}
	if want := p.Shape.Components(); len(values) != want {
		return fmt.Errorf("%w: %s %q wants %d, got %d", ErrParameterArity, p.Shape, name, want, len(values))
	}
	p.upload(m.ctx, p.uniform, values)
	return nil
}

// SetAttribute binds an attribute to the currently bound buffer using ptr.
func (m *Material) SetAttribute(name string, ptr AttribPointer) error {
	p, err := m.lookup(name)
	if err != nil {
		return err
	}
	if p.Kind != KindAttribute {
		return fmt.Errorf("shader parameter %q is a %s, not an attribute", name, p.Kind)
	}
	return m.bindAttribute(p, ptr)
}

func (m *Material) bindAttribute(p *Parameter, ptr AttribPointer) error {
	size := int32(p.Shape.Components())
	if size == 0 {
		return p.unsupported()
	}
	m.ctx.EnableVertexAttribArray(p.attrib)
	m.ctx.VertexAttribPointer(p.attrib, size, ptr.Type, ptr.Normalized, ptr.Stride, ptr.Offset)
	return nil
}

// Close deletes the program. It is safe to call more than once.
func (m *Material) Close() {
	if m.program != 0 {
		m.ctx.DeleteProgram(m.program)
		m.program = 0
	}
}
