//go:build js && wasm

package gpu

import (
	"encoding/binary"
	"image"
	gomath "math"
	"syscall/js"
)

const (
	compileStatus    Enum = 0x8B81
	linkStatus       Enum = 0x8B82
	activeUniforms   Enum = 0x8B86
	activeAttributes Enum = 0x8B89
)

type uniformKey struct {
	program Program
	name    string
}

// WebGL is a Context backed by a browser WebGL2 rendering context.
// JavaScript objects are kept in a table and handed out as integer handles.
type WebGL struct {
	gl js.Value

	next    uint32
	objects map[uint32]js.Value

	uniforms     []js.Value
	uniformIndex map[uniformKey]UniformLocation
}

// NewWebGL wraps a WebGL2RenderingContext.
func NewWebGL(gl js.Value) *WebGL {
	return &WebGL{
		gl:           gl,
		objects:      make(map[uint32]js.Value),
		uniformIndex: make(map[uniformKey]UniformLocation),
	}
}

func (w *WebGL) put(v js.Value) uint32 {
	if v.IsNull() || v.IsUndefined() {
		return 0
	}
	w.next++
	w.objects[w.next] = v
	return w.next
}

func (w *WebGL) get(h uint32) js.Value {
	if h == 0 {
		return js.Null()
	}
	if v, ok := w.objects[h]; ok {
		return v
	}
	return js.Null()
}

func (w *WebGL) drop(h uint32) js.Value {
	v := w.get(h)
	delete(w.objects, h)
	return v
}

func float32Array(data []float32) js.Value {
	buf := make([]byte, 4*len(data))
	for i, f := range data {
		binary.LittleEndian.PutUint32(buf[4*i:], gomath.Float32bits(f))
	}
	u8 := js.Global().Get("Uint8Array").New(len(buf))
	js.CopyBytesToJS(u8, buf)
	return js.Global().Get("Float32Array").New(u8.Get("buffer"), 0, len(data))
}

// CreateShader implements Context.
func (w *WebGL) CreateShader(stage Enum) Shader {
	return Shader(w.put(w.gl.Call("createShader", stage)))
}

// ShaderSource implements Context.
func (w *WebGL) ShaderSource(s Shader, source string) {
	w.gl.Call("shaderSource", w.get(uint32(s)), source)
}

// CompileShader implements Context.
func (w *WebGL) CompileShader(s Shader) {
	w.gl.Call("compileShader", w.get(uint32(s)))
}

// ShaderCompiled implements Context.
func (w *WebGL) ShaderCompiled(s Shader) bool {
	return w.gl.Call("getShaderParameter", w.get(uint32(s)), compileStatus).Truthy()
}

// ShaderInfoLog implements Context.
func (w *WebGL) ShaderInfoLog(s Shader) string {
	v := w.gl.Call("getShaderInfoLog", w.get(uint32(s)))
	if v.IsNull() {
		return ""
	}
	return v.String()
}

// DeleteShader implements Context.
func (w *WebGL) DeleteShader(s Shader) {
	w.gl.Call("deleteShader", w.drop(uint32(s)))
}

// CreateProgram implements Context.
func (w *WebGL) CreateProgram() Program {
	return Program(w.put(w.gl.Call("createProgram")))
}

// AttachShader implements Context.
func (w *WebGL) AttachShader(p Program, s Shader) {
	w.gl.Call("attachShader", w.get(uint32(p)), w.get(uint32(s)))
}

// DetachShader implements Context.
func (w *WebGL) DetachShader(p Program, s Shader) {
	w.gl.Call("detachShader", w.get(uint32(p)), w.get(uint32(s)))
}

// LinkProgram implements Context.
func (w *WebGL) LinkProgram(p Program) {
	w.gl.Call("linkProgram", w.get(uint32(p)))
}

// ProgramLinked implements Context.
func (w *WebGL) ProgramLinked(p Program) bool {
	return w.gl.Call("getProgramParameter", w.get(uint32(p)), linkStatus).Truthy()
}

// ProgramInfoLog implements Context.
func (w *WebGL) ProgramInfoLog(p Program) string {
	v := w.gl.Call("getProgramInfoLog", w.get(uint32(p)))
	if v.IsNull() {
		return ""
	}
	return v.String()
}

// UseProgram implements Context.
func (w *WebGL) UseProgram(p Program) {
	w.gl.Call("useProgram", w.get(uint32(p)))
}

// DeleteProgram implements Context.
func (w *WebGL) DeleteProgram(p Program) {
	for key := range w.uniformIndex {
		if key.program == p {
			delete(w.uniformIndex, key)
		}
	}
	w.gl.Call("deleteProgram", w.drop(uint32(p)))
}

func (w *WebGL) activeInfos(p Program, countParam Enum, method string) []ActiveInfo {
	prog := w.get(uint32(p))
	count := w.gl.Call("getProgramParameter", prog, countParam).Int()
	infos := make([]ActiveInfo, 0, count)
	for i := 0; i < count; i++ {
		info := w.gl.Call(method, prog, i)
		if info.IsNull() {
			continue
		}
		infos = append(infos, ActiveInfo{
			Name: info.Get("name").String(),
			Size: int32(info.Get("size").Int()),
			Type: Enum(info.Get("type").Int()),
		})
	}
	return infos
}

// ActiveUniforms implements Context.
func (w *WebGL) ActiveUniforms(p Program) []ActiveInfo {
	return w.activeInfos(p, activeUniforms, "getActiveUniform")
}

// ActiveAttribs implements Context.
func (w *WebGL) ActiveAttribs(p Program) []ActiveInfo {
	return w.activeInfos(p, activeAttributes, "getActiveAttrib")
}

// UniformLocation implements Context.
func (w *WebGL) UniformLocation(p Program, name string) (UniformLocation, bool) {
	key := uniformKey{program: p, name: name}
	if loc, ok := w.uniformIndex[key]; ok {
		return loc, true
	}
	v := w.gl.Call("getUniformLocation", w.get(uint32(p)), name)
	if v.IsNull() {
		return -1, false
	}
	loc := UniformLocation(len(w.uniforms))
	w.uniforms = append(w.uniforms, v)
	w.uniformIndex[key] = loc
	return loc, true
}

// AttribLocation implements Context.
func (w *WebGL) AttribLocation(p Program, name string) AttribLocation {
	return AttribLocation(w.gl.Call("getAttribLocation", w.get(uint32(p)), name).Int())
}

func (w *WebGL) uniform(l UniformLocation) js.Value {
	if l < 0 || int(l) >= len(w.uniforms) {
		return js.Null()
	}
	return w.uniforms[l]
}

// Uniform1f implements Context.
func (w *WebGL) Uniform1f(l UniformLocation, x float32) {
	w.gl.Call("uniform1f", w.uniform(l), x)
}

// Uniform2f implements Context.
func (w *WebGL) Uniform2f(l UniformLocation, x, y float32) {
	w.gl.Call("uniform2f", w.uniform(l), x, y)
}

// Uniform3f implements Context.
func (w *WebGL) Uniform3f(l UniformLocation, x, y, z float32) {
	w.gl.Call("uniform3f", w.uniform(l), x, y, z)
}

// Uniform4f implements Context.
func (w *WebGL) Uniform4f(l UniformLocation, x, y, z, v float32) {
	w.gl.Call("uniform4f", w.uniform(l), x, y, z, v)
}

// Uniform1i implements Context.
func (w *WebGL) Uniform1i(l UniformLocation, v int32) {
	w.gl.Call("uniform1i", w.uniform(l), v)
}

// UniformMatrix3fv implements Context.
func (w *WebGL) UniformMatrix3fv(l UniformLocation, m []float32) {
	w.gl.Call("uniformMatrix3fv", w.uniform(l), false, float32Array(m))
}

// UniformMatrix4fv implements Context.
func (w *WebGL) UniformMatrix4fv(l UniformLocation, m []float32) {
	w.gl.Call("uniformMatrix4fv", w.uniform(l), false, float32Array(m))
}

// EnableVertexAttribArray implements Context.
func (w *WebGL) EnableVertexAttribArray(a AttribLocation) {
	w.gl.Call("enableVertexAttribArray", int(a))
}

// VertexAttribPointer implements Context.
func (w *WebGL) VertexAttribPointer(a AttribLocation, size int32, typ Enum, normalized bool, stride, offset int32) {
	w.gl.Call("vertexAttribPointer", int(a), size, typ, normalized, stride, offset)
}

// CreateTexture implements Context.
func (w *WebGL) CreateTexture() Texture {
	return Texture(w.put(w.gl.Call("createTexture")))
}

// ActiveTexture implements Context.
func (w *WebGL) ActiveTexture(unit Enum) {
	w.gl.Call("activeTexture", unit)
}

// BindTexture implements Context.
func (w *WebGL) BindTexture(target Enum, t Texture) {
	w.gl.Call("bindTexture", target, w.get(uint32(t)))
}

// TexParameteri implements Context.
func (w *WebGL) TexParameteri(target, pname Enum, param int32) {
	w.gl.Call("texParameteri", target, pname, param)
}

// TexImage2D implements Context.
func (w *WebGL) TexImage2D(target Enum, img *image.NRGBA) {
	pix := tightPixels(img)
	arr := js.Global().Get("Uint8Array").New(len(pix))
	js.CopyBytesToJS(arr, pix)
	w.gl.Call("texImage2D", target, 0, RGBA, img.Rect.Dx(), img.Rect.Dy(), 0, RGBA, UnsignedByte, arr)
}

// DeleteTexture implements Context.
func (w *WebGL) DeleteTexture(t Texture) {
	w.gl.Call("deleteTexture", w.drop(uint32(t)))
}

// CreateBuffer implements Context.
func (w *WebGL) CreateBuffer() Buffer {
	return Buffer(w.put(w.gl.Call("createBuffer")))
}

// BindBuffer implements Context.
func (w *WebGL) BindBuffer(target Enum, b Buffer) {
	w.gl.Call("bindBuffer", target, w.get(uint32(b)))
}

// BufferData implements Context.
func (w *WebGL) BufferData(target Enum, data []float32, usage Enum) {
	w.gl.Call("bufferData", target, float32Array(data), usage)
}

// DeleteBuffer implements Context.
func (w *WebGL) DeleteBuffer(b Buffer) {
	w.gl.Call("deleteBuffer", w.drop(uint32(b)))
}

// Viewport implements Context.
func (w *WebGL) Viewport(x, y, width, height int32) {
	w.gl.Call("viewport", x, y, width, height)
}

// ClearColor implements Context.
func (w *WebGL) ClearColor(r, g, b, a float32) {
	w.gl.Call("clearColor", r, g, b, a)
}

// Clear implements Context.
func (w *WebGL) Clear(mask Enum) {
	w.gl.Call("clear", mask)
}

// Enable implements Context.
func (w *WebGL) Enable(capability Enum) {
	w.gl.Call("enable", capability)
}

// BlendFunc implements Context.
func (w *WebGL) BlendFunc(src, dst Enum) {
	w.gl.Call("blendFunc", src, dst)
}

// DrawArrays implements Context.
func (w *WebGL) DrawArrays(mode Enum, first, count int32) {
	w.gl.Call("drawArrays", mode, first, count)
}

// Flush implements Context.
func (w *WebGL) Flush() {
	w.gl.Call("flush")
}

var _ Context = (*WebGL)(nil)
