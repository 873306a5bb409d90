package shader

import (
	"errors"
	"testing"

	"github.com/Faultbox/slime-engine/internal/engine/gpu"
	"github.com/Faultbox/slime-engine/internal/engine/gpu/gputest"
	"github.com/Faultbox/slime-engine/internal/engine/shaders"
)

func spriteDef() MaterialDef {
	vs, fs := shaders.Sprite(shaders.Desktop)
	return MaterialDef{VertexSource: vs, FragmentSource: fs}
}

func newSpriteMaterial(t *testing.T, rec *gputest.Recorder) *Material {
	t.Helper()
	m, err := NewMaterial(rec, spriteDef())
	if err != nil {
		t.Fatalf("NewMaterial() error = %v", err)
	}
	return m
}

func TestNewMaterialIntrospection(t *testing.T) {
	rec := gputest.NewRecorder()
	m := newSpriteMaterial(t, rec)

	tests := []struct {
		name  string
		kind  Kind
		shape Shape
	}{
		{"a_position", KindAttribute, ShapeVec2},
		{"a_texCoord", KindAttribute, ShapeVec2},
		{"u_frame", KindUniform, ShapeVec2},
		{"u_image", KindUniform, ShapeSampler},
		{"u_object", KindUniform, ShapeMat3},
		{"u_world", KindUniform, ShapeMat3},
	}

	params := m.Parameters()
	if len(params) != len(tests) {
		t.Fatalf("Parameters() len = %d, want %d", len(params), len(tests))
	}
	for i, tt := range tests {
		p := params[i]
		if p.Name != tt.name || p.Kind != tt.kind || p.Shape != tt.shape {
			t.Errorf("param %d = {%s %s %s}, want {%s %s %s}", i, p.Name, p.Kind, p.Shape, tt.name, tt.kind, tt.shape)
		}
	}

	if m.Parameter("u_missing") != nil {
		t.Error("Parameter(u_missing) should be nil")
	}
	if m.Program() == 0 {
		t.Error("Program() = 0")
	}
}

func TestNewMaterialReleasesShaders(t *testing.T) {
	rec := gputest.NewRecorder()
	m := newSpriteMaterial(t, rec)

	shadersLive, programs, _, _ := rec.Live()
	if shadersLive != 0 {
		t.Errorf("live shaders = %d, want 0", shadersLive)
	}
	if programs != 1 {
		t.Errorf("live programs = %d, want 1", programs)
	}
	if got := rec.Count("DetachShader"); got != 2 {
		t.Errorf("DetachShader count = %d, want 2", got)
	}
	last, _ := rec.Last("UseProgram")
	if last.Args[0] != gpu.Program(0) {
		t.Errorf("last UseProgram = %v, want 0", last.Args[0])
	}
	_ = m
}

func TestNewMaterialCompileError(t *testing.T) {
	tests := []struct {
		name  string
		stage gpu.Enum
		want  string
	}{
		{"vertex", gpu.VertexShader, "vertex"},
		{"fragment", gpu.FragmentShader, "fragment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := gputest.NewRecorder()
			rec.FailCompile = tt.stage
			rec.CompileLog = "  0:3: syntax error\n"

			m, err := NewMaterial(rec, spriteDef())
			if m != nil {
				t.Error("expected nil material")
			}
			var ce *ShaderCompileError
			if !errors.As(err, &ce) {
				t.Fatalf("error = %v, want *ShaderCompileError", err)
			}
			if ce.Stage != tt.want {
				t.Errorf("Stage = %q, want %q", ce.Stage, tt.want)
			}
			if ce.Log != "0:3: syntax error" {
				t.Errorf("Log = %q", ce.Log)
			}

			s, p, _, _ := rec.Live()
			if s != 0 || p != 0 {
				t.Errorf("leaked shaders=%d programs=%d", s, p)
			}
			if rec.DoubleDeletes != 0 {
				t.Errorf("DoubleDeletes = %d", rec.DoubleDeletes)
			}
		})
	}
}

func TestNewMaterialLinkError(t *testing.T) {
	rec := gputest.NewRecorder()
	rec.FailLink = true
	rec.LinkLog = "varying mismatch"

	_, err := NewMaterial(rec, spriteDef())
	var le *ProgramLinkError
	if !errors.As(err, &le) {
		t.Fatalf("error = %v, want *ProgramLinkError", err)
	}
	if le.Log != "varying mismatch" {
		t.Errorf("Log = %q", le.Log)
	}

	s, p, _, _ := rec.Live()
	if s != 0 || p != 0 {
		t.Errorf("leaked shaders=%d programs=%d", s, p)
	}
}

func TestSetParameterUniforms(t *testing.T) {
	rec := gputest.NewRecorder()
	m := newSpriteMaterial(t, rec)
	m.Use()

	identity := []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}

	tests := []struct {
		name   string
		values []float32
		call   string
	}{
		{"u_frame", []float32{0.25, 1}, "Uniform2f"},
		{"u_image", []float32{0}, "Uniform1i"},
		{"u_world", identity, "UniformMatrix3fv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.SetParameter(tt.name, tt.values...); err != nil {
				t.Fatalf("SetParameter() error = %v", err)
			}
			last, ok := rec.Last(tt.call)
			if !ok {
				t.Fatalf("%s not called", tt.call)
			}
			if last.Args[0] != m.Parameter(tt.name).UniformLocation() {
				t.Errorf("%s location = %v", tt.call, last.Args[0])
			}
			got, _ := rec.UniformValue(m.Program(), tt.name)
			if len(got) != len(tt.values) {
				t.Fatalf("uploaded %v, want %v", got, tt.values)
			}
			for i := range got {
				if got[i] != tt.values[i] {
					t.Errorf("value[%d] = %v, want %v", i, got[i], tt.values[i])
				}
			}
		})
	}
}

func TestSetParameterErrors(t *testing.T) {
	rec := gputest.NewRecorder()
	m := newSpriteMaterial(t, rec)

	var unknown *UnknownParameterError
	if err := m.SetParameter("u_color", 1); !errors.As(err, &unknown) {
		t.Errorf("unknown name: error = %v", err)
	} else if unknown.Name != "u_color" {
		t.Errorf("Name = %q", unknown.Name)
	}

	if err := m.SetParameter("u_frame", 1); !errors.Is(err, ErrParameterArity) {
		t.Errorf("short vec2: error = %v, want ErrParameterArity", err)
	}
	if err := m.SetParameter("u_world", 1, 2, 3); !errors.Is(err, ErrParameterArity) {
		t.Errorf("short mat3: error = %v, want ErrParameterArity", err)
	}
	if err := m.SetParameter("a_position", 1); !errors.Is(err, ErrParameterArity) {
		t.Errorf("attribute with values: error = %v, want ErrParameterArity", err)
	}
	if err := m.SetAttribute("u_frame", DefaultAttribPointer()); err == nil {
		t.Error("SetAttribute on a uniform should fail")
	}
}

func TestSetParameterUnsupportedType(t *testing.T) {
	rec := gputest.NewRecorder()
	rec.Types["u_frame"] = gpu.IntVec2
	rec.Types["a_texCoord"] = gpu.FloatMat3
	m := newSpriteMaterial(t, rec)

	var ue *UnsupportedParameterTypeError
	if err := m.SetParameter("u_frame", 1, 2); !errors.As(err, &ue) {
		t.Fatalf("uniform error = %v, want *UnsupportedParameterTypeError", err)
	}
	if ue.Type != gpu.IntVec2 || ue.Kind != KindUniform {
		t.Errorf("error = %+v", ue)
	}

	if err := m.SetParameter("a_texCoord"); !errors.As(err, &ue) {
		t.Fatalf("attribute error = %v, want *UnsupportedParameterTypeError", err)
	}
	if ue.Kind != KindAttribute {
		t.Errorf("Kind = %s, want attribute", ue.Kind)
	}
}

func TestSetParameterAttribute(t *testing.T) {
	rec := gputest.NewRecorder()
	m := newSpriteMaterial(t, rec)
	m.Use()

	buf := rec.CreateBuffer()
	rec.BindBuffer(gpu.ArrayBuffer, buf)
	if err := m.SetParameter("a_position"); err != nil {
		t.Fatalf("SetParameter() error = %v", err)
	}

	loc := m.Parameter("a_position").AttribLocation()
	enable, _ := rec.Last("EnableVertexAttribArray")
	if enable.Args[0] != loc {
		t.Errorf("enabled %v, want %v", enable.Args[0], loc)
	}
	ptr, _ := rec.Last("VertexAttribPointer")
	want := []any{loc, int32(2), gpu.Float, false, int32(0), int32(0), buf}
	for i := range want {
		if ptr.Args[i] != want[i] {
			t.Errorf("VertexAttribPointer arg %d = %v, want %v", i, ptr.Args[i], want[i])
		}
	}

	custom := AttribPointer{Type: gpu.Float, Stride: 16, Offset: 8}
	if err := m.SetAttribute("a_texCoord", custom); err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}
	ptr, _ = rec.Last("VertexAttribPointer")
	if ptr.Args[4] != int32(16) || ptr.Args[5] != int32(8) {
		t.Errorf("stride/offset = %v/%v, want 16/8", ptr.Args[4], ptr.Args[5])
	}
}

func TestMaterialCloseOnce(t *testing.T) {
	rec := gputest.NewRecorder()
	m := newSpriteMaterial(t, rec)

	m.Close()
	m.Close()

	if got := rec.Count("DeleteProgram"); got != 1 {
		t.Errorf("DeleteProgram count = %d, want 1", got)
	}
	if rec.DoubleDeletes != 0 {
		t.Errorf("DoubleDeletes = %d", rec.DoubleDeletes)
	}
	if m.Program() != 0 {
		t.Errorf("Program() after Close = %d", m.Program())
	}
}
