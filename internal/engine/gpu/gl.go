//go:build !js

package gpu

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/slime-engine/internal/logger"
)

// GL is a Context backed by the desktop OpenGL 4.1 core profile.
type GL struct {
	// core profile refuses attribute pointers without a bound vertex array
	vao uint32
}

// NewGL loads the OpenGL function pointers for the current context.
// IMPORTANT: must be called after the window's GL context is made current.
func NewGL() (*GL, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	g := &GL{}
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)
	return g, nil
}

// Close deletes the vertex array created by NewGL.
func (g *GL) Close() {
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
		g.vao = 0
	}
}

// CreateShader implements Context.
func (g *GL) CreateShader(stage Enum) Shader {
	return Shader(gl.CreateShader(stage))
}

// ShaderSource implements Context.
func (g *GL) ShaderSource(s Shader, source string) {
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(uint32(s), 1, csource, nil)
	free()
}

// CompileShader implements Context.
func (g *GL) CompileShader(s Shader) {
	gl.CompileShader(uint32(s))
}

// ShaderCompiled implements Context.
func (g *GL) ShaderCompiled(s Shader) bool {
	var status int32
	gl.GetShaderiv(uint32(s), gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

// ShaderInfoLog implements Context.
func (g *GL) ShaderInfoLog(s Shader) string {
	var logLen int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := make([]byte, logLen)
	gl.GetShaderInfoLog(uint32(s), logLen, nil, &log[0])
	return strings.TrimRight(string(log), "\x00")
}

// DeleteShader implements Context.
func (g *GL) DeleteShader(s Shader) {
	gl.DeleteShader(uint32(s))
}

// CreateProgram implements Context.
func (g *GL) CreateProgram() Program {
	return Program(gl.CreateProgram())
}

// AttachShader implements Context.
func (g *GL) AttachShader(p Program, s Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

// DetachShader implements Context.
func (g *GL) DetachShader(p Program, s Shader) {
	gl.DetachShader(uint32(p), uint32(s))
}

// LinkProgram implements Context.
func (g *GL) LinkProgram(p Program) {
	gl.LinkProgram(uint32(p))
}

// ProgramLinked implements Context.
func (g *GL) ProgramLinked(p Program) bool {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

// ProgramInfoLog implements Context.
func (g *GL) ProgramInfoLog(p Program) string {
	var logLen int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := make([]byte, logLen)
	gl.GetProgramInfoLog(uint32(p), logLen, nil, &log[0])
	return strings.TrimRight(string(log), "\x00")
}

// UseProgram implements Context.
func (g *GL) UseProgram(p Program) {
	gl.UseProgram(uint32(p))
}

// DeleteProgram implements Context.
func (g *GL) DeleteProgram(p Program) {
	gl.DeleteProgram(uint32(p))
}

type activeQuery func(program, index uint32, bufSize int32, length, size *int32, xtype *uint32, name *uint8)

func activeInfos(p Program, countParam, maxLenParam uint32, query activeQuery) []ActiveInfo {
	var count, maxLen int32
	gl.GetProgramiv(uint32(p), countParam, &count)
	gl.GetProgramiv(uint32(p), maxLenParam, &maxLen)

	infos := make([]ActiveInfo, 0, count)
	buf := make([]uint8, maxLen+1)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		query(uint32(p), uint32(i), int32(len(buf)), &length, &size, &xtype, &buf[0])
		infos = append(infos, ActiveInfo{
			Name: string(buf[:length]),
			Size: size,
			Type: xtype,
		})
	}
	return infos
}

// ActiveUniforms implements Context.
func (g *GL) ActiveUniforms(p Program) []ActiveInfo {
	return activeInfos(p, gl.ACTIVE_UNIFORMS, gl.ACTIVE_UNIFORM_MAX_LENGTH, gl.GetActiveUniform)
}

// ActiveAttribs implements Context.
func (g *GL) ActiveAttribs(p Program) []ActiveInfo {
	return activeInfos(p, gl.ACTIVE_ATTRIBUTES, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, gl.GetActiveAttrib)
}

// UniformLocation implements Context.
func (g *GL) UniformLocation(p Program, name string) (UniformLocation, bool) {
	loc := gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
	return UniformLocation(loc), loc >= 0
}

// AttribLocation implements Context.
func (g *GL) AttribLocation(p Program, name string) AttribLocation {
	return AttribLocation(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

// Uniform1f implements Context.
func (g *GL) Uniform1f(l UniformLocation, x float32) {
	gl.Uniform1f(int32(l), x)
}

// Uniform2f implements Context.
func (g *GL) Uniform2f(l UniformLocation, x, y float32) {
	gl.Uniform2f(int32(l), x, y)
}

// Uniform3f implements Context.
func (g *GL) Uniform3f(l UniformLocation, x, y, z float32) {
	gl.Uniform3f(int32(l), x, y, z)
}

// Uniform4f implements Context.
func (g *GL) Uniform4f(l UniformLocation, x, y, z, w float32) {
	gl.Uniform4f(int32(l), x, y, z, w)
}

// Uniform1i implements Context.
func (g *GL) Uniform1i(l UniformLocation, v int32) {
	gl.Uniform1i(int32(l), v)
}

// UniformMatrix3fv implements Context.
func (g *GL) UniformMatrix3fv(l UniformLocation, m []float32) {
	gl.UniformMatrix3fv(int32(l), int32(len(m)/9), false, &m[0])
}

// UniformMatrix4fv implements Context.
func (g *GL) UniformMatrix4fv(l UniformLocation, m []float32) {
	gl.UniformMatrix4fv(int32(l), int32(len(m)/16), false, &m[0])
}

// EnableVertexAttribArray implements Context.
func (g *GL) EnableVertexAttribArray(a AttribLocation) {
	gl.EnableVertexAttribArray(uint32(a))
}

// VertexAttribPointer implements Context.
func (g *GL) VertexAttribPointer(a AttribLocation, size int32, typ Enum, normalized bool, stride, offset int32) {
	gl.VertexAttribPointerWithOffset(uint32(a), size, typ, normalized, stride, uintptr(offset))
}

// CreateTexture implements Context.
func (g *GL) CreateTexture() Texture {
	var t uint32
	gl.GenTextures(1, &t)
	return Texture(t)
}

// ActiveTexture implements Context.
func (g *GL) ActiveTexture(unit Enum) {
	gl.ActiveTexture(unit)
}

// BindTexture implements Context.
func (g *GL) BindTexture(target Enum, t Texture) {
	gl.BindTexture(target, uint32(t))
}

// TexParameteri implements Context.
func (g *GL) TexParameteri(target, pname Enum, param int32) {
	gl.TexParameteri(target, pname, param)
}

// TexImage2D implements Context.
func (g *GL) TexImage2D(target Enum, img *image.NRGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	gl.TexImage2D(target, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(tightPixels(img)))
}

// DeleteTexture implements Context.
func (g *GL) DeleteTexture(t Texture) {
	id := uint32(t)
	gl.DeleteTextures(1, &id)
}

// CreateBuffer implements Context.
func (g *GL) CreateBuffer() Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return Buffer(b)
}

// BindBuffer implements Context.
func (g *GL) BindBuffer(target Enum, b Buffer) {
	gl.BindBuffer(target, uint32(b))
}

// BufferData implements Context.
func (g *GL) BufferData(target Enum, data []float32, usage Enum) {
	gl.BufferData(target, len(data)*4, gl.Ptr(data), usage)
}

// DeleteBuffer implements Context.
func (g *GL) DeleteBuffer(b Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

// Viewport implements Context.
func (g *GL) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

// ClearColor implements Context.
func (g *GL) ClearColor(r, gr, b, a float32) {
	gl.ClearColor(r, gr, b, a)
}

// Clear implements Context.
func (g *GL) Clear(mask Enum) {
	gl.Clear(mask)
}

// Enable implements Context.
func (g *GL) Enable(capability Enum) {
	gl.Enable(capability)
}

// BlendFunc implements Context.
func (g *GL) BlendFunc(src, dst Enum) {
	gl.BlendFunc(src, dst)
}

// DrawArrays implements Context.
func (g *GL) DrawArrays(mode Enum, first, count int32) {
	gl.DrawArrays(mode, first, count)
}

// Flush implements Context.
func (g *GL) Flush() {
	gl.Flush()
}

var _ Context = (*GL)(nil)
