// Package sprite draws one frame of an animated sprite sheet.
package sprite

import (
	"context"
	"errors"
	"fmt"
	"image"
	gomath "math"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/slime-engine/internal/assets"
	"github.com/Faultbox/slime-engine/internal/engine/gpu"
	"github.com/Faultbox/slime-engine/internal/engine/loop"
	"github.com/Faultbox/slime-engine/internal/engine/shader"
	"github.com/Faultbox/slime-engine/internal/engine/shaders"
	"github.com/Faultbox/slime-engine/internal/logger"
	"github.com/Faultbox/slime-engine/pkg/math"
)

// Default frame size in pixels.
const (
	DefaultWidth  = 64
	DefaultHeight = 64
)

// Sentinel errors.
var (
	ErrClosed     = errors.New("sprite: closed")
	ErrEmptyImage = errors.New("sprite: image has zero size")
)

// Options configures a sprite.
type Options struct {
	// ImageURL is passed to the loader.
	ImageURL string
	// Shader sources. Empty means the built-in desktop sprite shaders.
	VertexSource   string
	FragmentSource string
	// Frame size in pixels. Zero means the default.
	Width  float64
	Height float64
}

// RenderParams carries the per-frame inputs of Render.
type RenderParams struct {
	World    *math.Matrix3
	Position math.Vector2
	// Frame is the sheet cell as (column, row); both are floored.
	Frame math.Vector2
}

// Sprite is a textured quad showing one cell of a sprite sheet.
// Render and Close must be called on the render thread.
type Sprite struct {
	ctx   gpu.Context
	sched loop.Scheduler
	url   string

	size math.Vector2
	uv   math.Vector2

	material  *shader.Material
	texture   gpu.Texture
	texBuffer gpu.Buffer
	geoBuffer gpu.Buffer

	object math.Matrix3

	mu     sync.Mutex
	state  State
	err    error
	ready  chan struct{}
	cancel context.CancelFunc
}

// New compiles the sprite material and starts loading the image. The GPU
// resources for the image are created on the render thread once the load
// completes; until then Render draws nothing.
func New(ctx gpu.Context, sched loop.Scheduler, loader assets.Loader, opts Options) (*Sprite, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.VertexSource == "" || opts.FragmentSource == "" {
		opts.VertexSource, opts.FragmentSource = shaders.Sprite(shaders.Desktop)
	}

	material, err := shader.NewMaterial(ctx, shader.MaterialDef{
		VertexSource:   opts.VertexSource,
		FragmentSource: opts.FragmentSource,
	})
	if err != nil {
		return nil, fmt.Errorf("sprite material: %w", err)
	}

	loadCtx, cancel := context.WithCancel(context.Background())
	s := &Sprite{
		ctx:      ctx,
		sched:    sched,
		url:      opts.ImageURL,
		size:     math.Vector2{X: opts.Width, Y: opts.Height},
		material: material,
		state:    StateLoading,
		ready:    make(chan struct{}),
		cancel:   cancel,
	}

	go s.load(loadCtx, loader)
	return s, nil
}

func (s *Sprite) load(ctx context.Context, loader assets.Loader) {
	img, err := loader.Load(ctx, s.url)
	s.sched.Post(func() { s.finishLoad(img, err) })
}

// finishLoad runs on the render thread.
func (s *Sprite) finishLoad(img image.Image, err error) {
	if s.State() != StateLoading {
		return
	}
	if err == nil {
		err = s.setup(img)
	}

	s.mu.Lock()
	if err != nil {
		s.state = StateFailed
		s.err = fmt.Errorf("sprite %q: %w", s.url, err)
	} else {
		s.state = StateReady
	}
	close(s.ready)
	s.mu.Unlock()

	if err != nil {
		logger.Error("sprite load failed", zap.String("url", s.url), zap.Error(err))
		return
	}
	logger.Info("sprite ready",
		zap.String("url", s.url),
		zap.Float64("uv_x", s.uv.X),
		zap.Float64("uv_y", s.uv.Y),
	)
}

// setup uploads the image and builds both vertex buffers.
func (s *Sprite) setup(img image.Image) error {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return ErrEmptyImage
	}

	ctx := s.ctx
	s.texture = ctx.CreateTexture()
	ctx.BindTexture(gpu.Texture2D, s.texture)
	ctx.TexParameteri(gpu.Texture2D, gpu.TextureWrapS, int32(gpu.MirroredRepeat))
	ctx.TexParameteri(gpu.Texture2D, gpu.TextureWrapT, int32(gpu.MirroredRepeat))
	ctx.TexParameteri(gpu.Texture2D, gpu.TextureMagFilter, int32(gpu.Nearest))
	ctx.TexParameteri(gpu.Texture2D, gpu.TextureMinFilter, int32(gpu.Nearest))
	ctx.TexImage2D(gpu.Texture2D, assets.ToNRGBA(img))
	ctx.BindTexture(gpu.Texture2D, 0)

	s.uv = math.Vector2{
		X: s.size.X / float64(b.Dx()),
		Y: s.size.Y / float64(b.Dy()),
	}

	s.texBuffer = s.staticBuffer(RectArray(0, 0, s.uv.X, s.uv.Y))
	s.geoBuffer = s.staticBuffer(RectArray(0, 0, s.size.X, s.size.Y))
	return nil
}

func (s *Sprite) staticBuffer(data []float32) gpu.Buffer {
	buf := s.ctx.CreateBuffer()
	s.ctx.BindBuffer(gpu.ArrayBuffer, buf)
	s.ctx.BufferData(gpu.ArrayBuffer, data, gpu.StaticDraw)
	s.ctx.BindBuffer(gpu.ArrayBuffer, 0)
	return buf
}

// Render draws the current frame. It does nothing until the sprite is ready.
func (s *Sprite) Render(p RenderParams) error {
	if s.State() != StateReady {
		return nil
	}

	fx := gomath.Floor(p.Frame.X) * s.uv.X
	fy := gomath.Floor(p.Frame.Y) * s.uv.Y

	s.object.Identity().TranslateByVector(p.Position)
	world := p.World
	if world == nil {
		world = math.NewMatrix3()
	}
	worldArr := world.FloatArray()
	objectArr := s.object.FloatArray()

	ctx := s.ctx
	m := s.material
	m.Use()
	defer ctx.UseProgram(0)

	ctx.ActiveTexture(gpu.Texture0)
	ctx.BindTexture(gpu.Texture2D, s.texture)

	steps := []struct {
		name   string
		buffer gpu.Buffer
		values []float32
	}{
		{name: "u_image", values: []float32{0}},
		{name: "a_texCoord", buffer: s.texBuffer},
		{name: "a_position", buffer: s.geoBuffer},
		{name: "u_frame", values: []float32{float32(fx), float32(fy)}},
		{name: "u_world", values: worldArr[:]},
		{name: "u_object", values: objectArr[:]},
	}
	for _, step := range steps {
		if step.buffer != 0 {
			ctx.BindBuffer(gpu.ArrayBuffer, step.buffer)
		}
		if err := m.SetParameter(step.name, step.values...); err != nil {
			return fmt.Errorf("sprite render: %w", err)
		}
	}

	ctx.DrawArrays(gpu.TriangleStrip, 0, 6)
	return nil
}

// Close releases the texture, both buffers and the material exactly once.
// A load still in flight is cancelled and its result discarded.
func (s *Sprite) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	wasLoading := s.state == StateLoading
	s.state = StateClosed
	if wasLoading {
		close(s.ready)
	}
	s.mu.Unlock()

	s.cancel()

	if s.texture != 0 {
		s.ctx.DeleteTexture(s.texture)
		s.texture = 0
	}
	if s.texBuffer != 0 {
		s.ctx.DeleteBuffer(s.texBuffer)
		s.texBuffer = 0
	}
	if s.geoBuffer != 0 {
		s.ctx.DeleteBuffer(s.geoBuffer)
		s.geoBuffer = 0
	}
	s.material.Close()
}

// Ready is closed when the sprite leaves the loading state.
func (s *Sprite) Ready() <-chan struct{} {
	return s.ready
}

// Wait blocks until loading finishes or ctx is done. It returns the load
// error, ErrClosed if the sprite was closed before becoming ready, or ctx's error.
//
// The load completes on the render thread, so Wait must not be called from it.
func (s *Sprite) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed && s.err == nil {
		return ErrClosed
	}
	return s.err
}

// State returns the lifecycle state.
func (s *Sprite) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the load error of a failed sprite.
func (s *Sprite) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Size returns the frame size in pixels.
func (s *Sprite) Size() math.Vector2 {
	return s.size
}

// UV returns the frame size as a fraction of the sheet. It is zero until ready.
func (s *Sprite) UV() math.Vector2 {
	return s.uv
}

// Material returns the sprite's material.
func (s *Sprite) Material() *shader.Material {
	return s.material
}
