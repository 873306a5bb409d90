package sprite

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/Faultbox/slime-engine/internal/assets"
	"github.com/Faultbox/slime-engine/internal/engine/gpu"
	"github.com/Faultbox/slime-engine/internal/engine/gpu/gputest"
	"github.com/Faultbox/slime-engine/internal/engine/loop"
	"github.com/Faultbox/slime-engine/pkg/math"
)

func imageLoader(w, h int) assets.Loader {
	return assets.LoaderFunc(func(context.Context, string) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, w, h)), nil
	})
}

// completeLoad waits for the loader goroutine to post its result and runs it.
func completeLoad(t *testing.T, q *loop.Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Wait(ctx); err != nil {
		t.Fatalf("load never completed: %v", err)
	}
	q.RunTasks()
}

func newSprite(t *testing.T, rec *gputest.Recorder, q *loop.Queue, loader assets.Loader, opts Options) *Sprite {
	t.Helper()
	s, err := New(rec, q, loader, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestRectArray(t *testing.T) {
	got := RectArray(1, 2, 3, 4)
	want := []float32{1, 2, 4, 2, 1, 6, 1, 6, 4, 2, 4, 6}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSpriteUV(t *testing.T) {
	tests := []struct {
		name   string
		w, h   float64
		imgW   int
		imgH   int
		wantUV math.Vector2
	}{
		{"sheet of six columns", 32, 32, 256, 32, math.Vector2{X: 0.125, Y: 1}},
		{"single frame", 32, 32, 32, 32, math.Vector2{X: 1, Y: 1}},
		{"default size", 0, 0, 128, 256, math.Vector2{X: 0.5, Y: 0.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := gputest.NewRecorder()
			q := loop.NewQueue()
			s := newSprite(t, rec, q, imageLoader(tt.imgW, tt.imgH), Options{Width: tt.w, Height: tt.h})
			defer s.Close()

			completeLoad(t, q)

			if s.State() != StateReady {
				t.Fatalf("State() = %s, want ready (err %v)", s.State(), s.Err())
			}
			if got := s.UV(); !got.Equals(tt.wantUV) {
				t.Errorf("UV() = %+v, want %+v", got, tt.wantUV)
			}
			if err := s.Wait(context.Background()); err != nil {
				t.Errorf("Wait() error = %v", err)
			}
		})
	}
}

func TestSpriteSetupUploads(t *testing.T) {
	rec := gputest.NewRecorder()
	q := loop.NewQueue()
	s := newSprite(t, rec, q, imageLoader(256, 32), Options{Width: 32, Height: 32})
	defer s.Close()
	completeLoad(t, q)

	if img := rec.TextureImage(s.texture); img == nil || img.Rect.Dx() != 256 {
		t.Errorf("texture image = %v, want 256 wide", img)
	}

	wantParams := map[[2]gpu.Enum]int32{
		{gpu.Texture2D, gpu.TextureWrapS}:     int32(gpu.MirroredRepeat),
		{gpu.Texture2D, gpu.TextureWrapT}:     int32(gpu.MirroredRepeat),
		{gpu.Texture2D, gpu.TextureMagFilter}: int32(gpu.Nearest),
		{gpu.Texture2D, gpu.TextureMinFilter}: int32(gpu.Nearest),
	}
	for _, c := range rec.Calls {
		if c.Name != "TexParameteri" {
			continue
		}
		key := [2]gpu.Enum{c.Args[0].(gpu.Enum), c.Args[1].(gpu.Enum)}
		if want, ok := wantParams[key]; ok {
			if c.Args[2] != want {
				t.Errorf("TexParameteri(%#x) = %v, want %v", key[1], c.Args[2], want)
			}
			delete(wantParams, key)
		}
	}
	if len(wantParams) != 0 {
		t.Errorf("texture parameters never set: %v", wantParams)
	}

	geo := rec.BufferContents(s.geoBuffer)
	if len(geo) != 12 || geo[10] != 32 || geo[11] != 32 {
		t.Errorf("geometry buffer = %v", geo)
	}
	tex := rec.BufferContents(s.texBuffer)
	if len(tex) != 12 || tex[10] != 0.125 || tex[11] != 1 {
		t.Errorf("texcoord buffer = %v", tex)
	}
}

func TestRenderBeforeLoadDrawsNothing(t *testing.T) {
	rec := gputest.NewRecorder()
	q := loop.NewQueue()
	s := newSprite(t, rec, q, imageLoader(64, 64), Options{})
	defer s.Close()

	rec.Reset()
	if err := s.Render(RenderParams{World: math.NewMatrix3()}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(rec.Calls) != 0 {
		t.Errorf("Render before load issued %v", rec.Names())
	}
}

func TestSpriteUploadsStraightAlpha(t *testing.T) {
	sheet := image.NewRGBA(image.Rect(0, 0, 2, 1))
	sheet.SetRGBA(0, 0, color.RGBA{128, 128, 128, 128})
	sheet.SetRGBA(1, 0, color.RGBA{0, 0, 0, 0})
	loader := assets.LoaderFunc(func(context.Context, string) (image.Image, error) {
		return sheet, nil
	})

	rec := gputest.NewRecorder()
	q := loop.NewQueue()
	s := newSprite(t, rec, q, loader, Options{Width: 1, Height: 1})
	defer s.Close()
	completeLoad(t, q)

	img := rec.TextureImage(s.texture)
	if img == nil {
		t.Fatal("no texture uploaded")
	}
	tests := []struct {
		x    int
		want color.NRGBA
	}{
		{0, color.NRGBA{255, 255, 255, 128}},
		{1, color.NRGBA{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		if got := img.NRGBAAt(tt.x, 0); got != tt.want {
			t.Errorf("texel %d = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestRenderFloorsFrameCell(t *testing.T) {
	rec := gputest.NewRecorder()
	q := loop.NewQueue()
	s := newSprite(t, rec, q, imageLoader(256, 128), Options{Width: 32, Height: 32})
	defer s.Close()
	completeLoad(t, q)

	tests := []struct {
		name  string
		frame math.Vector2
		want  [2]float32
	}{
		{"whole cell", math.Vector2{X: 2, Y: 1}, [2]float32{0.25, 0.25}},
		{"fractional column and row", math.Vector2{X: 2.9, Y: 1.6}, [2]float32{0.25, 0.25}},
		{"fractional row only", math.Vector2{X: 0, Y: 3.99}, [2]float32{0, 0.75}},
		{"origin", math.Vector2{X: 0.4, Y: 0.4}, [2]float32{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Render(RenderParams{World: math.NewMatrix3(), Frame: tt.frame}); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			got, _ := rec.UniformValue(s.Material().Program(), "u_frame")
			if len(got) != 2 || got[0] != tt.want[0] || got[1] != tt.want[1] {
				t.Errorf("u_frame = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderUploads(t *testing.T) {
	rec := gputest.NewRecorder()
	q := loop.NewQueue()
	s := newSprite(t, rec, q, imageLoader(256, 32), Options{Width: 32, Height: 32})
	defer s.Close()
	completeLoad(t, q)

	world := math.NewMatrix3().SetTranslation(-1, 1).Scale(0.5, -0.25)
	rec.Reset()
	err := s.Render(RenderParams{
		World:    world,
		Position: math.Vector2{X: 10, Y: 20},
		Frame:    math.Vector2{X: 3.7, Y: 1},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	program := s.Material().Program()

	frame, _ := rec.UniformValue(program, "u_frame")
	if len(frame) != 2 || frame[0] != 0.375 || frame[1] != 1 {
		t.Errorf("u_frame = %v, want [0.375 1]", frame)
	}

	object, _ := rec.UniformValue(program, "u_object")
	if len(object) != 9 || object[6] != 10 || object[7] != 20 {
		t.Errorf("u_object = %v, want translation (10,20)", object)
	}

	wantWorld := world.FloatArray()
	got, _ := rec.UniformValue(program, "u_world")
	for i := range wantWorld {
		if got[i] != wantWorld[i] {
			t.Errorf("u_world[%d] = %v, want %v", i, got[i], wantWorld[i])
		}
	}

	sampler, _ := rec.UniformValue(program, "u_image")
	if len(sampler) != 1 || sampler[0] != 0 {
		t.Errorf("u_image = %v, want [0]", sampler)
	}

	draw, ok := rec.Last("DrawArrays")
	if !ok {
		t.Fatal("DrawArrays not called")
	}
	if draw.Args[0] != gpu.TriangleStrip || draw.Args[2] != int32(6) {
		t.Errorf("DrawArrays%v, want TriangleStrip with 6 vertices", draw.Args)
	}

	// Attributes read from their own buffers.
	bound := map[gpu.AttribLocation]gpu.Buffer{}
	for _, c := range rec.Calls {
		if c.Name == "VertexAttribPointer" {
			bound[c.Args[0].(gpu.AttribLocation)] = c.Args[6].(gpu.Buffer)
		}
	}
	m := s.Material()
	if b := bound[m.Parameter("a_position").AttribLocation()]; b != s.geoBuffer {
		t.Errorf("a_position bound to buffer %d, want %d", b, s.geoBuffer)
	}
	if b := bound[m.Parameter("a_texCoord").AttribLocation()]; b != s.texBuffer {
		t.Errorf("a_texCoord bound to buffer %d, want %d", b, s.texBuffer)
	}

	names := rec.Names()
	if names[0] != "UseProgram" || names[len(names)-1] != "UseProgram" {
		t.Errorf("calls should start and end with UseProgram: %v", names)
	}
	last, _ := rec.Last("UseProgram")
	if last.Args[0] != gpu.Program(0) {
		t.Errorf("program left in use: %v", last.Args[0])
	}
}

func TestLoadFailure(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		loader  assets.Loader
		wantErr error
	}{
		{"loader error", assets.LoaderFunc(func(context.Context, string) (image.Image, error) {
			return nil, boom
		}), boom},
		{"zero size image", imageLoader(0, 0), ErrEmptyImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := gputest.NewRecorder()
			q := loop.NewQueue()
			s := newSprite(t, rec, q, tt.loader, Options{})
			defer s.Close()
			completeLoad(t, q)

			if s.State() != StateFailed {
				t.Fatalf("State() = %s, want failed", s.State())
			}
			if err := s.Wait(context.Background()); !errors.Is(err, tt.wantErr) {
				t.Errorf("Wait() error = %v, want %v", err, tt.wantErr)
			}
			_, _, textures, buffers := rec.Live()
			if textures != 0 || buffers != 0 {
				t.Errorf("allocated textures=%d buffers=%d on failure", textures, buffers)
			}
			rec.Reset()
			if err := s.Render(RenderParams{}); err != nil || len(rec.Calls) != 0 {
				t.Errorf("Render on failed sprite: err=%v calls=%v", err, rec.Names())
			}
		})
	}
}

func TestCloseReleasesOnce(t *testing.T) {
	rec := gputest.NewRecorder()
	q := loop.NewQueue()
	s := newSprite(t, rec, q, imageLoader(64, 64), Options{})
	completeLoad(t, q)

	s.Close()
	s.Close()

	if got := rec.Count("DeleteTexture"); got != 1 {
		t.Errorf("DeleteTexture count = %d, want 1", got)
	}
	if got := rec.Count("DeleteBuffer"); got != 2 {
		t.Errorf("DeleteBuffer count = %d, want 2", got)
	}
	if got := rec.Count("DeleteProgram"); got != 1 {
		t.Errorf("DeleteProgram count = %d, want 1", got)
	}
	if rec.DoubleDeletes != 0 {
		t.Errorf("DoubleDeletes = %d", rec.DoubleDeletes)
	}
	s2, p, tex, b := rec.Live()
	if s2+p+tex+b != 0 {
		t.Errorf("live objects after Close: %v", rec)
	}
	if s.State() != StateClosed {
		t.Errorf("State() = %s, want closed", s.State())
	}
}

func TestCloseBeforeLoad(t *testing.T) {
	rec := gputest.NewRecorder()
	q := loop.NewQueue()

	release := make(chan struct{})
	loader := assets.LoaderFunc(func(ctx context.Context, _ string) (image.Image, error) {
		<-release
		return image.NewRGBA(image.Rect(0, 0, 64, 64)), nil
	})
	s := newSprite(t, rec, q, loader, Options{})

	s.Close()
	if err := s.Wait(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Wait() error = %v, want ErrClosed", err)
	}

	close(release)
	completeLoad(t, q)

	if got := rec.Count("CreateTexture") + rec.Count("CreateBuffer"); got != 0 {
		t.Errorf("late load allocated %d objects", got)
	}
	if s.State() != StateClosed {
		t.Errorf("State() = %s, want closed", s.State())
	}
}

func TestNewMaterialFailure(t *testing.T) {
	rec := gputest.NewRecorder()
	rec.FailLink = true
	q := loop.NewQueue()

	called := false
	loader := assets.LoaderFunc(func(context.Context, string) (image.Image, error) {
		called = true
		return nil, nil
	})
	if _, err := New(rec, q, loader, Options{}); err == nil {
		t.Fatal("New() should fail when the program does not link")
	}
	time.Sleep(10 * time.Millisecond)
	if called {
		t.Error("loader started despite material failure")
	}
}

func TestWaitContext(t *testing.T) {
	rec := gputest.NewRecorder()
	q := loop.NewQueue()
	block := make(chan struct{})
	defer close(block)
	loader := assets.LoaderFunc(func(ctx context.Context, _ string) (image.Image, error) {
		<-block
		return nil, ctx.Err()
	})
	s := newSprite(t, rec, q, loader, Options{})
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}
}
