// Package engine drives the sprite render loop on a host canvas.
package engine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/slime-engine/internal/assets"
	"github.com/Faultbox/slime-engine/internal/engine/gpu"
	"github.com/Faultbox/slime-engine/internal/engine/loop"
	"github.com/Faultbox/slime-engine/internal/engine/shaders"
	"github.com/Faultbox/slime-engine/internal/engine/sprite"
	"github.com/Faultbox/slime-engine/internal/logger"
	"github.com/Faultbox/slime-engine/pkg/math"
)

// Canvas size used when the container has none yet.
const (
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 600
)

// LogicalHeight is the vertical extent of sprite space, whatever the canvas
// height in pixels.
const LogicalHeight = 240

// DefaultImageURL is the walk sheet shipped with the engine.
const DefaultImageURL = "/sprites/SlimeWalkSheet.png"

// DefaultClearColor is the sky-blue background.
var DefaultClearColor = [4]float32{0.4, 0.6, 1.0, 1.0}

// Options configures an Engine.
type Options struct {
	Container Container
	Scheduler loop.Scheduler
	Loader    assets.Loader

	// Profile selects the shader dialect when Sprite carries no sources.
	Profile shaders.Profile
	// Sprite configures the sprite. An empty ImageURL means DefaultImageURL and
	// a zero size means 32x32.
	Sprite    sprite.Options
	Animation Animation
	// ClearColor defaults to DefaultClearColor when all zero.
	ClearColor [4]float32

	// Now is the clock used by Start. Defaults to time.Now.
	Now func() time.Time
}

func (o *Options) setDefaults() {
	if o.Sprite.ImageURL == "" {
		o.Sprite.ImageURL = DefaultImageURL
	}
	if o.Sprite.Width <= 0 {
		o.Sprite.Width = 32
	}
	if o.Sprite.Height <= 0 {
		o.Sprite.Height = 32
	}
	if o.Sprite.VertexSource == "" || o.Sprite.FragmentSource == "" {
		o.Sprite.VertexSource, o.Sprite.FragmentSource = shaders.Sprite(o.Profile)
	}
	if o.Animation == (Animation{}) {
		o.Animation = DefaultAnimation()
	}
	if o.ClearColor == ([4]float32{}) {
		o.ClearColor = DefaultClearColor
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Engine owns one canvas, its graphics context and one animated sprite.
// Everything except Running, Err and Done must be called on the render thread.
type Engine struct {
	opts   Options
	canvas Canvas
	gl     gpu.Context
	sched  loop.Scheduler

	world    *math.Matrix3
	sprite   *sprite.Sprite
	position math.Vector2
	frame    math.Vector2

	removeResize func()

	mu      sync.Mutex
	frameID loop.FrameID
	running bool
	closed  bool
	err     error
	done    chan struct{}
}

// New mounts the engine into the container, reusing its canvas when one is
// already there, and starts loading the sprite. The loop does not run until Start.
func New(opts Options) (*Engine, error) {
	if opts.Container == nil {
		return nil, ErrNoContainer
	}
	if opts.Scheduler == nil || opts.Loader == nil {
		return nil, fmt.Errorf("engine: scheduler and loader are required")
	}
	opts.setDefaults()

	e := &Engine{
		opts:  opts,
		sched: opts.Scheduler,
		world: math.NewMatrix3(),
		done:  make(chan struct{}),
	}

	if err := e.initialize(); err != nil {
		return nil, err
	}

	var err error
	e.sprite, err = sprite.New(e.gl, e.sched, opts.Loader, opts.Sprite)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e.removeResize = opts.Container.OnResize(e.Resize)
	e.Resize(opts.Container.ClientSize())

	w, h := e.canvas.Size()
	logger.Info("engine created",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.String("image", opts.Sprite.ImageURL),
	)
	return e, nil
}

func (e *Engine) initialize() error {
	e.Stop()

	canvas := e.opts.Container.FirstCanvas()
	if canvas == nil {
		var err error
		canvas, err = e.opts.Container.CreateCanvas(DefaultCanvasWidth, DefaultCanvasHeight)
		if err != nil {
			return fmt.Errorf("engine: creating canvas: %w", err)
		}
		logger.Debug("canvas created")
	} else {
		logger.Debug("reusing canvas")
	}

	ctx, err := canvas.Context()
	if err != nil {
		return &ContextCreationError{Err: err}
	}

	c := e.opts.ClearColor
	ctx.ClearColor(c[0], c[1], c[2], c[3])

	e.canvas = canvas
	e.gl = ctx
	return nil
}

// Resize sets the canvas size and rebuilds the world matrix so that sprite
// space has its origin at the top-left corner, y pointing down, and exactly
// LogicalHeight units from top to bottom. Non-positive sizes are ignored.
func (e *Engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.canvas.SetSize(width, height)

	wRatio := float64(width) / (float64(height) / LogicalHeight)
	e.world.Identity()
	e.world.SetTranslation(-1, 1)
	e.world.Scale(2/wRatio, -2/LogicalHeight)

	logger.Debug("engine resized", zap.Int("width", width), zap.Int("height", height))
}

// Start draws a frame immediately and keeps drawing one per scheduler frame
// until Stop. Starting a running engine does nothing.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running || e.closed || e.err != nil {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.tick(e.opts.Now())
}

func (e *Engine) tick(now time.Time) {
	e.mu.Lock()
	e.frameID = 0
	running := e.running
	e.mu.Unlock()
	if !running {
		return
	}

	if err := e.update(now); err != nil {
		e.fail(err)
		return
	}

	e.mu.Lock()
	if e.running {
		e.frameID = e.sched.RequestFrame(e.tick)
	}
	e.mu.Unlock()
}

// Stop cancels the pending frame. It is safe to call at any time.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.frameID != 0 {
		e.sched.CancelFrame(e.frameID)
		e.frameID = 0
	}
	e.running = false
}

// update draws one frame at time now. A sprite that is not ready, including
// one whose image failed to load, draws nothing and the frame is still cleared
// and presented.
func (e *Engine) update(now time.Time) error {
	w, h := e.canvas.Size()
	ctx := e.gl
	ctx.Viewport(0, 0, int32(w), int32(h))
	ctx.Clear(gpu.ColorBufferBit)

	ctx.Enable(gpu.Blend)
	ctx.BlendFunc(gpu.SrcAlpha, gpu.OneMinusSrcAlpha)

	anim := e.opts.Animation
	e.frame.X = anim.Column(now.UnixMilli())
	e.frame.Y = anim.Row
	e.position.X = anim.Advance(e.position.X)

	err := e.sprite.Render(sprite.RenderParams{
		World:    e.world,
		Position: e.position,
		Frame:    e.frame,
	})

	ctx.Flush()
	e.canvas.Present()
	return err
}

func (e *Engine) fail(err error) {
	logger.Error("render loop stopped", zap.Error(err))

	e.Stop()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err == nil {
		e.err = err
		e.closeDone()
	}
}

// closeDone must be called with mu held.
func (e *Engine) closeDone() {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}

// Close stops the loop, unregisters the resize listener and releases the
// sprite. The canvas stays in the container for the next Engine.
func (e *Engine) Close() {
	e.Stop()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.closeDone()
	e.mu.Unlock()

	if e.removeResize != nil {
		e.removeResize()
		e.removeResize = nil
	}
	e.sprite.Close()
	logger.Info("engine closed")
}

// Running reports whether a frame is scheduled.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Err returns the error that stopped the loop, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Done is closed when the loop stops for good, on a render error or Close.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// World returns the world matrix.
func (e *Engine) World() *math.Matrix3 {
	return e.world
}

// Sprite returns the engine's sprite.
func (e *Engine) Sprite() *sprite.Sprite {
	return e.sprite
}

// Position returns the sprite position after the last frame.
func (e *Engine) Position() math.Vector2 {
	return e.position
}

// Frame returns the sheet cell shown in the last frame.
func (e *Engine) Frame() math.Vector2 {
	return e.frame
}

// Canvas returns the canvas the engine draws to.
func (e *Engine) Canvas() Canvas {
	return e.canvas
}
