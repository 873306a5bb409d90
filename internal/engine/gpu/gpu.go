// Package gpu defines the low-level graphics API the engine draws through.
//
// The surface mirrors WebGL2 / OpenGL ES: opaque object handles, explicit
// bind points and typed uniform uploads. Handle value 0 means "none" and
// unbinds when passed to a Bind or Use call.
package gpu

import "image"

// Enum is a GL enumerant. Values match the OpenGL and WebGL constants.
type Enum = uint32

// Object handles.
type (
	Shader  uint32
	Program uint32
	Texture uint32
	Buffer  uint32
)

// UniformLocation identifies a uniform in a linked program.
type UniformLocation int32

// AttribLocation identifies a vertex attribute in a linked program.
// A negative value means the attribute is not active.
type AttribLocation int32

// ActiveInfo describes an active uniform or attribute of a linked program.
type ActiveInfo struct {
	Name string
	Size int32
	Type Enum
}

// Shader stages.
const (
	FragmentShader Enum = 0x8B30
	VertexShader   Enum = 0x8B31
)

// Data and parameter types reported by introspection.
const (
	Byte          Enum = 0x1400
	UnsignedByte  Enum = 0x1401
	Short         Enum = 0x1402
	UnsignedShort Enum = 0x1403
	Int           Enum = 0x1404
	UnsignedInt   Enum = 0x1405
	Float         Enum = 0x1406
	FloatVec2     Enum = 0x8B50
	FloatVec3     Enum = 0x8B51
	FloatVec4     Enum = 0x8B52
	IntVec2       Enum = 0x8B53
	Bool          Enum = 0x8B56
	FloatMat2     Enum = 0x8B5A
	FloatMat3     Enum = 0x8B5B
	FloatMat4     Enum = 0x8B5C
	Sampler2D     Enum = 0x8B5E
	SamplerCube   Enum = 0x8B60
)

// Textures.
const (
	Texture2D        Enum = 0x0DE1
	Texture0         Enum = 0x84C0
	TextureMagFilter Enum = 0x2800
	TextureMinFilter Enum = 0x2801
	TextureWrapS     Enum = 0x2802
	TextureWrapT     Enum = 0x2803
	Nearest          Enum = 0x2600
	Linear           Enum = 0x2601
	Repeat           Enum = 0x2901
	ClampToEdge      Enum = 0x812F
	MirroredRepeat   Enum = 0x8370
	RGBA             Enum = 0x1908
)

// Buffers.
const (
	ArrayBuffer Enum = 0x8892
	StaticDraw  Enum = 0x88E4
	DynamicDraw Enum = 0x88E8
)

// Draw modes, capabilities and blending.
const (
	Points           Enum = 0x0000
	Triangles        Enum = 0x0004
	TriangleStrip    Enum = 0x0005
	Blend            Enum = 0x0BE2
	SrcAlpha         Enum = 0x0302
	OneMinusSrcAlpha Enum = 0x0303
	ColorBufferBit   Enum = 0x4000
)

// Context is a graphics API context bound to one drawing surface.
// All methods must be called from the thread that owns the surface.
type Context interface {
	CreateShader(stage Enum) Shader
	ShaderSource(s Shader, source string)
	CompileShader(s Shader)
	ShaderCompiled(s Shader) bool
	ShaderInfoLog(s Shader) string
	DeleteShader(s Shader)

	CreateProgram() Program
	AttachShader(p Program, s Shader)
	DetachShader(p Program, s Shader)
	LinkProgram(p Program)
	ProgramLinked(p Program) bool
	ProgramInfoLog(p Program) string
	UseProgram(p Program)
	DeleteProgram(p Program)

	ActiveUniforms(p Program) []ActiveInfo
	ActiveAttribs(p Program) []ActiveInfo
	UniformLocation(p Program, name string) (UniformLocation, bool)
	AttribLocation(p Program, name string) AttribLocation

	Uniform1f(l UniformLocation, x float32)
	Uniform2f(l UniformLocation, x, y float32)
	Uniform3f(l UniformLocation, x, y, z float32)
	Uniform4f(l UniformLocation, x, y, z, w float32)
	Uniform1i(l UniformLocation, v int32)
	UniformMatrix3fv(l UniformLocation, m []float32)
	UniformMatrix4fv(l UniformLocation, m []float32)

	EnableVertexAttribArray(a AttribLocation)
	VertexAttribPointer(a AttribLocation, size int32, typ Enum, normalized bool, stride, offset int32)

	CreateTexture() Texture
	ActiveTexture(unit Enum)
	BindTexture(target Enum, t Texture)
	TexParameteri(target, pname Enum, param int32)
	TexImage2D(target Enum, img *image.NRGBA)
	DeleteTexture(t Texture)

	CreateBuffer() Buffer
	BindBuffer(target Enum, b Buffer)
	BufferData(target Enum, data []float32, usage Enum)
	DeleteBuffer(b Buffer)

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask Enum)
	Enable(capability Enum)
	BlendFunc(src, dst Enum)
	DrawArrays(mode Enum, first, count int32)
	Flush()
}

// tightPixels returns img's pixels with rows packed back to back, as
// TexImage2D expects. It copies only when img is a sub-image.
func tightPixels(img *image.NRGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == 4*w && len(img.Pix) == 4*w*h {
		return img.Pix
	}
	out := make([]byte, 0, 4*w*h)
	for y := 0; y < h; y++ {
		row := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		out = append(out, img.Pix[row:row+4*w]...)
	}
	return out
}
