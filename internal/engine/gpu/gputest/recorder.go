// Package gputest provides a recording gpu.Context for tests.
package gputest

import (
	"fmt"
	"image"
	"regexp"
	"sort"

	"github.com/Faultbox/slime-engine/internal/engine/gpu"
)

// Call is one recorded API call.
type Call struct {
	Name string
	Args []any
}

type shaderState struct {
	stage    gpu.Enum
	source   string
	compiled bool
}

type programState struct {
	shaders  []gpu.Shader
	linked   bool
	uniforms []gpu.ActiveInfo
	attribs  []gpu.ActiveInfo
}

// Recorder implements gpu.Context without a driver. Shader sources are scanned
// for uniform and input declarations so introspection reports what a real
// driver would for simple shaders.
type Recorder struct {
	// FailCompile makes compilation of that stage fail with CompileLog.
	FailCompile gpu.Enum
	CompileLog  string
	// FailLink makes LinkProgram fail with LinkLog.
	FailLink bool
	LinkLog  string

	// Types overrides the reported type of a parameter by name.
	Types map[string]gpu.Enum

	Calls []Call

	// Uniforms holds the last value uploaded to each uniform location.
	Uniforms map[gpu.UniformLocation][]float32

	// DoubleDeletes counts deletes of handles that were not live.
	DoubleDeletes int

	next     uint32
	shaders  map[gpu.Shader]*shaderState
	programs map[gpu.Program]*programState
	textures map[gpu.Texture]*image.NRGBA
	buffers  map[gpu.Buffer][]float32

	boundBuffer gpu.Buffer
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Types:    make(map[string]gpu.Enum),
		Uniforms: make(map[gpu.UniformLocation][]float32),
		shaders:  make(map[gpu.Shader]*shaderState),
		programs: make(map[gpu.Program]*programState),
		textures: make(map[gpu.Texture]*image.NRGBA),
		buffers:  make(map[gpu.Buffer][]float32),
	}
}

func (r *Recorder) record(name string, args ...any) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

func (r *Recorder) handle() uint32 {
	r.next++
	return r.next
}

// Count returns how many times the named call was recorded.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Last returns the most recent call with the given name.
func (r *Recorder) Last(name string) (Call, bool) {
	for i := len(r.Calls) - 1; i >= 0; i-- {
		if r.Calls[i].Name == name {
			return r.Calls[i], true
		}
	}
	return Call{}, false
}

// Names returns the recorded call names in order.
func (r *Recorder) Names() []string {
	names := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		names[i] = c.Name
	}
	return names
}

// Reset forgets recorded calls but keeps object state.
func (r *Recorder) Reset() {
	r.Calls = nil
}

// Live reports how many shaders, programs, textures and buffers are allocated.
func (r *Recorder) Live() (shaders, programs, textures, buffers int) {
	return len(r.shaders), len(r.programs), len(r.textures), len(r.buffers)
}

// TextureImage returns the image uploaded to t.
func (r *Recorder) TextureImage(t gpu.Texture) *image.NRGBA {
	return r.textures[t]
}

// BufferContents returns the data uploaded to b.
func (r *Recorder) BufferContents(b gpu.Buffer) []float32 {
	return r.buffers[b]
}

// UniformValue returns the last value uploaded to the named uniform of p.
func (r *Recorder) UniformValue(p gpu.Program, name string) ([]float32, bool) {
	loc, ok := r.UniformLocation(p, name)
	if !ok {
		return nil, false
	}
	v, ok := r.Uniforms[loc]
	return v, ok
}

func (r *Recorder) CreateShader(stage gpu.Enum) gpu.Shader {
	s := gpu.Shader(r.handle())
	r.shaders[s] = &shaderState{stage: stage}
	r.record("CreateShader", stage)
	return s
}

func (r *Recorder) ShaderSource(s gpu.Shader, source string) {
	if st, ok := r.shaders[s]; ok {
		st.source = source
	}
	r.record("ShaderSource", s)
}

func (r *Recorder) CompileShader(s gpu.Shader) {
	if st, ok := r.shaders[s]; ok {
		st.compiled = st.stage != r.FailCompile
	}
	r.record("CompileShader", s)
}

func (r *Recorder) ShaderCompiled(s gpu.Shader) bool {
	st, ok := r.shaders[s]
	return ok && st.compiled
}

func (r *Recorder) ShaderInfoLog(s gpu.Shader) string {
	if r.ShaderCompiled(s) {
		return ""
	}
	return r.CompileLog
}

func (r *Recorder) DeleteShader(s gpu.Shader) {
	if _, ok := r.shaders[s]; !ok {
		r.DoubleDeletes++
	}
	delete(r.shaders, s)
	r.record("DeleteShader", s)
}

func (r *Recorder) CreateProgram() gpu.Program {
	p := gpu.Program(r.handle())
	r.programs[p] = &programState{}
	r.record("CreateProgram")
	return p
}

func (r *Recorder) AttachShader(p gpu.Program, s gpu.Shader) {
	if ps, ok := r.programs[p]; ok {
		ps.shaders = append(ps.shaders, s)
	}
	r.record("AttachShader", p, s)
}

func (r *Recorder) DetachShader(p gpu.Program, s gpu.Shader) {
	if ps, ok := r.programs[p]; ok {
		for i, attached := range ps.shaders {
			if attached == s {
				ps.shaders = append(ps.shaders[:i], ps.shaders[i+1:]...)
				break
			}
		}
	}
	r.record("DetachShader", p, s)
}

var (
	uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*;`)
	inputDecl   = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?(?:in|attribute)\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*;`)
)

var glslTypes = map[string]gpu.Enum{
	"float":       gpu.Float,
	"int":         gpu.Int,
	"bool":        gpu.Bool,
	"vec2":        gpu.FloatVec2,
	"vec3":        gpu.FloatVec3,
	"vec4":        gpu.FloatVec4,
	"ivec2":       gpu.IntVec2,
	"mat2":        gpu.FloatMat2,
	"mat3":        gpu.FloatMat3,
	"mat4":        gpu.FloatMat4,
	"sampler2D":   gpu.Sampler2D,
	"samplerCube": gpu.SamplerCube,
}

func (r *Recorder) LinkProgram(p gpu.Program) {
	r.record("LinkProgram", p)
	ps, ok := r.programs[p]
	if !ok {
		return
	}
	ps.linked = false
	if r.FailLink {
		return
	}

	uniforms := map[string]gpu.Enum{}
	attribs := map[string]gpu.Enum{}
	for _, s := range ps.shaders {
		st, ok := r.shaders[s]
		if !ok || !st.compiled {
			return
		}
		for _, m := range uniformDecl.FindAllStringSubmatch(st.source, -1) {
			uniforms[m[2]] = r.typeOf(m[2], m[1])
		}
		if st.stage == gpu.VertexShader {
			for _, m := range inputDecl.FindAllStringSubmatch(st.source, -1) {
				attribs[m[2]] = r.typeOf(m[2], m[1])
			}
		}
	}

	ps.uniforms = sortedInfos(uniforms)
	ps.attribs = sortedInfos(attribs)
	ps.linked = true
}

func (r *Recorder) typeOf(name, glsl string) gpu.Enum {
	if t, ok := r.Types[name]; ok {
		return t
	}
	return glslTypes[glsl]
}

func sortedInfos(m map[string]gpu.Enum) []gpu.ActiveInfo {
	infos := make([]gpu.ActiveInfo, 0, len(m))
	for name, typ := range m {
		infos = append(infos, gpu.ActiveInfo{Name: name, Size: 1, Type: typ})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func (r *Recorder) ProgramLinked(p gpu.Program) bool {
	ps, ok := r.programs[p]
	return ok && ps.linked
}

func (r *Recorder) ProgramInfoLog(p gpu.Program) string {
	if r.ProgramLinked(p) {
		return ""
	}
	return r.LinkLog
}

func (r *Recorder) UseProgram(p gpu.Program) {
	r.record("UseProgram", p)
}

func (r *Recorder) DeleteProgram(p gpu.Program) {
	if _, ok := r.programs[p]; !ok {
		r.DoubleDeletes++
	}
	delete(r.programs, p)
	r.record("DeleteProgram", p)
}

func (r *Recorder) ActiveUniforms(p gpu.Program) []gpu.ActiveInfo {
	if ps, ok := r.programs[p]; ok && ps.linked {
		return ps.uniforms
	}
	return nil
}

func (r *Recorder) ActiveAttribs(p gpu.Program) []gpu.ActiveInfo {
	if ps, ok := r.programs[p]; ok && ps.linked {
		return ps.attribs
	}
	return nil
}

// Locations are the program handle times 100 plus the parameter's index, so
// locations from different programs never collide.
func (r *Recorder) UniformLocation(p gpu.Program, name string) (gpu.UniformLocation, bool) {
	for i, u := range r.ActiveUniforms(p) {
		if u.Name == name {
			return gpu.UniformLocation(int(p)*100 + i), true
		}
	}
	return -1, false
}

func (r *Recorder) AttribLocation(p gpu.Program, name string) gpu.AttribLocation {
	for i, a := range r.ActiveAttribs(p) {
		if a.Name == name {
			return gpu.AttribLocation(i)
		}
	}
	return -1
}

func (r *Recorder) upload(name string, l gpu.UniformLocation, v ...float32) {
	r.Uniforms[l] = v
	r.record(name, l, v)
}

func (r *Recorder) Uniform1f(l gpu.UniformLocation, x float32) {
	r.upload("Uniform1f", l, x)
}

func (r *Recorder) Uniform2f(l gpu.UniformLocation, x, y float32) {
	r.upload("Uniform2f", l, x, y)
}

func (r *Recorder) Uniform3f(l gpu.UniformLocation, x, y, z float32) {
	r.upload("Uniform3f", l, x, y, z)
}

func (r *Recorder) Uniform4f(l gpu.UniformLocation, x, y, z, w float32) {
	r.upload("Uniform4f", l, x, y, z, w)
}

func (r *Recorder) Uniform1i(l gpu.UniformLocation, v int32) {
	r.upload("Uniform1i", l, float32(v))
}

func (r *Recorder) UniformMatrix3fv(l gpu.UniformLocation, m []float32) {
	r.upload("UniformMatrix3fv", l, append([]float32(nil), m...)...)
}

func (r *Recorder) UniformMatrix4fv(l gpu.UniformLocation, m []float32) {
	r.upload("UniformMatrix4fv", l, append([]float32(nil), m...)...)
}

func (r *Recorder) EnableVertexAttribArray(a gpu.AttribLocation) {
	r.record("EnableVertexAttribArray", a)
}

// VertexAttribPointer records the buffer bound at the time of the call as the
// last argument.
func (r *Recorder) VertexAttribPointer(a gpu.AttribLocation, size int32, typ gpu.Enum, normalized bool, stride, offset int32) {
	r.record("VertexAttribPointer", a, size, typ, normalized, stride, offset, r.boundBuffer)
}

func (r *Recorder) CreateTexture() gpu.Texture {
	t := gpu.Texture(r.handle())
	r.textures[t] = nil
	r.record("CreateTexture")
	return t
}

func (r *Recorder) ActiveTexture(unit gpu.Enum) {
	r.record("ActiveTexture", unit)
}

func (r *Recorder) BindTexture(target gpu.Enum, t gpu.Texture) {
	r.record("BindTexture", target, t)
}

func (r *Recorder) TexParameteri(target, pname gpu.Enum, param int32) {
	r.record("TexParameteri", target, pname, param)
}

// TexImage2D stores the image against the last bound texture.
func (r *Recorder) TexImage2D(target gpu.Enum, img *image.NRGBA) {
	if c, ok := r.Last("BindTexture"); ok {
		if t := c.Args[1].(gpu.Texture); t != 0 {
			r.textures[t] = img
		}
	}
	r.record("TexImage2D", target, img.Rect.Dx(), img.Rect.Dy())
}

func (r *Recorder) DeleteTexture(t gpu.Texture) {
	if _, ok := r.textures[t]; !ok {
		r.DoubleDeletes++
	}
	delete(r.textures, t)
	r.record("DeleteTexture", t)
}

func (r *Recorder) CreateBuffer() gpu.Buffer {
	b := gpu.Buffer(r.handle())
	r.buffers[b] = nil
	r.record("CreateBuffer")
	return b
}

func (r *Recorder) BindBuffer(target gpu.Enum, b gpu.Buffer) {
	r.boundBuffer = b
	r.record("BindBuffer", target, b)
}

func (r *Recorder) BufferData(target gpu.Enum, data []float32, usage gpu.Enum) {
	if r.boundBuffer != 0 {
		r.buffers[r.boundBuffer] = append([]float32(nil), data...)
	}
	r.record("BufferData", target, len(data), usage)
}

func (r *Recorder) DeleteBuffer(b gpu.Buffer) {
	if _, ok := r.buffers[b]; !ok {
		r.DoubleDeletes++
	}
	delete(r.buffers, b)
	r.record("DeleteBuffer", b)
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.record("Viewport", x, y, width, height)
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.record("ClearColor", red, green, blue, alpha)
}

func (r *Recorder) Clear(mask gpu.Enum) {
	r.record("Clear", mask)
}

func (r *Recorder) Enable(capability gpu.Enum) {
	r.record("Enable", capability)
}

func (r *Recorder) BlendFunc(src, dst gpu.Enum) {
	r.record("BlendFunc", src, dst)
}

func (r *Recorder) DrawArrays(mode gpu.Enum, first, count int32) {
	r.record("DrawArrays", mode, first, count)
}

func (r *Recorder) Flush() {
	r.record("Flush")
}

// String summarises the recorder for test failure messages.
func (r *Recorder) String() string {
	s, p, t, b := r.Live()
	return fmt.Sprintf("Recorder{calls:%d shaders:%d programs:%d textures:%d buffers:%d}", len(r.Calls), s, p, t, b)
}

var _ gpu.Context = (*Recorder)(nil)
