//go:build !js

// Package window hosts the engine in an SDL2 window with an OpenGL context.
package window

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/slime-engine/internal/engine"
	"github.com/Faultbox/slime-engine/internal/engine/gpu"
	"github.com/Faultbox/slime-engine/internal/engine/input"
	"github.com/Faultbox/slime-engine/internal/engine/loop"
	"github.com/Faultbox/slime-engine/internal/logger"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// idleDelay is how long Run sleeps when no frame is scheduled.
const idleDelay = 16 * time.Millisecond

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Host is an engine.Container backed by SDL2. It owns at most one window,
// which survives engines being closed and recreated.
type Host struct {
	config    Config
	canvas    *Canvas
	input     *input.Input
	listeners map[int]func(width, height int)
	nextID    int
}

// New initializes SDL2. The window is created on the first CreateCanvas.
func New(cfg Config) (*Host, error) {
	logger.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	return &Host{
		config:    cfg,
		input:     input.New(),
		listeners: make(map[int]func(width, height int)),
	}, nil
}

// FirstCanvas implements engine.Container.
func (h *Host) FirstCanvas() engine.Canvas {
	if h.canvas == nil {
		return nil
	}
	return h.canvas
}

// CreateCanvas implements engine.Container. The configured size wins over the
// requested one when set.
func (h *Host) CreateCanvas(width, height int) (engine.Canvas, error) {
	if h.canvas != nil {
		return nil, fmt.Errorf("window already open")
	}
	if h.config.Width > 0 && h.config.Height > 0 {
		width, height = h.config.Width, h.config.Height
	}

	c, err := newCanvas(h.config, width, height)
	if err != nil {
		return nil, err
	}
	h.canvas = c
	return c, nil
}

// ClientSize implements engine.Container.
func (h *Host) ClientSize() (int, int) {
	if h.canvas == nil {
		return h.config.Width, h.config.Height
	}
	w, ht := h.canvas.sdlWindow.GetSize()
	return int(w), int(ht)
}

// OnResize implements engine.Container.
func (h *Host) OnResize(fn func(width, height int)) func() {
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	return func() { delete(h.listeners, id) }
}

func (h *Host) dispatchResize(width, height int) {
	ids := make([]int, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := h.listeners[id]; ok {
			fn(width, height)
		}
	}
}

// Run pumps window events and drives q until ctx is done or the user closes
// the window or presses Escape. It must be called on the main thread.
func (h *Host) Run(ctx context.Context, q *loop.Queue) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		if h.input.Update() {
			logger.Info("quit requested")
			return nil
		}
		if w, ht, ok := h.input.LastResize(); ok {
			h.dispatchResize(w, ht)
		}

		q.RunTasks()
		if q.RunFrame(time.Now()) == 0 {
			sdl.Delay(uint32(idleDelay / time.Millisecond))
		}
	}
}

// Close destroys the window and cleans up SDL2.
func (h *Host) Close() {
	logger.Info("closing window")

	if h.canvas != nil {
		h.canvas.close()
		h.canvas = nil
	}
	sdl.Quit()
}

// Canvas is an SDL window with an OpenGL context.
type Canvas struct {
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	gl        *gpu.GL
	width     int
	height    int
}

func newCanvas(cfg Config, width, height int) (*Canvas, error) {
	// Set OpenGL attributes BEFORE creating window
	// We want OpenGL 4.1 Core Profile (max supported on macOS)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	win, err := sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(width),
		int32(height),
		flags,
	)
	if err != nil {
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	glContext, err := win.GLCreateContext()
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	if cfg.VSync {
		if err := sdl.GLSetSwapInterval(1); err != nil {
			logger.Warn("failed to enable VSync", zap.Error(err))
		}
	} else {
		sdl.GLSetSwapInterval(0)
	}

	w, h := win.GLGetDrawableSize()
	logger.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int32("width", w),
		zap.Int32("height", h),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)

	return &Canvas{
		sdlWindow: win,
		glContext: glContext,
		width:     int(w),
		height:    int(h),
	}, nil
}

// Size implements engine.Canvas.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// SetSize implements engine.Canvas. The drawing buffer follows the window;
// the window itself is only resized when the size differs.
func (c *Canvas) SetSize(width, height int) {
	if w, h := c.sdlWindow.GetSize(); int(w) != width || int(h) != height {
		c.sdlWindow.SetSize(int32(width), int32(height))
	}
	dw, dh := c.sdlWindow.GLGetDrawableSize()
	c.width, c.height = int(dw), int(dh)
}

// Context implements engine.Canvas. The GL function pointers are loaded on
// first use.
func (c *Canvas) Context() (gpu.Context, error) {
	if c.gl != nil {
		return c.gl, nil
	}
	if err := c.sdlWindow.GLMakeCurrent(c.glContext); err != nil {
		return nil, fmt.Errorf("SDL_GL_MakeCurrent failed: %w", err)
	}
	g, err := gpu.NewGL()
	if err != nil {
		return nil, err
	}
	c.gl = g
	return g, nil
}

// Present implements engine.Canvas.
func (c *Canvas) Present() {
	c.sdlWindow.GLSwap()
}

// SetTitle sets the window title.
func (c *Canvas) SetTitle(title string) {
	c.sdlWindow.SetTitle(title)
}

func (c *Canvas) close() {
	if c.gl != nil {
		c.gl.Close()
		c.gl = nil
	}
	if c.glContext != nil {
		sdl.GLDeleteContext(c.glContext)
	}
	if c.sdlWindow != nil {
		c.sdlWindow.Destroy()
	}
}

var (
	_ engine.Container = (*Host)(nil)
	_ engine.Canvas    = (*Canvas)(nil)
)
