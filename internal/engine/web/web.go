//go:build js && wasm

// Package web hosts the engine in a browser page.
package web

import (
	"errors"
	"strings"
	"syscall/js"
	"time"

	"github.com/Faultbox/slime-engine/internal/engine"
	"github.com/Faultbox/slime-engine/internal/engine/gpu"
	"github.com/Faultbox/slime-engine/internal/engine/loop"
)

// ErrWebGL2Unavailable is returned when the browser has no WebGL2 support.
var ErrWebGL2Unavailable = errors.New("webgl2 context unavailable")

// ErrNoElement is returned when the container element does not exist.
var ErrNoElement = errors.New("container element not found")

// Container is a DOM element that holds the engine canvas.
type Container struct {
	el js.Value
}

// NewContainer looks up the element with the given id.
func NewContainer(id string) (*Container, error) {
	el := js.Global().Get("document").Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return nil, ErrNoElement
	}
	return &Container{el: el}, nil
}

// FirstCanvas implements engine.Container. It returns the element's first
// child when that child is a canvas.
func (c *Container) FirstCanvas() engine.Canvas {
	child := c.el.Get("firstElementChild")
	if child.IsNull() || !strings.EqualFold(child.Get("tagName").String(), "canvas") {
		return nil
	}
	return &Canvas{el: child}
}

// CreateCanvas implements engine.Container.
func (c *Container) CreateCanvas(width, height int) (engine.Canvas, error) {
	el := js.Global().Get("document").Call("createElement", "canvas")
	el.Set("width", width)
	el.Set("height", height)
	c.el.Call("append", el)
	return &Canvas{el: el}, nil
}

// ClientSize implements engine.Container.
func (c *Container) ClientSize() (int, int) {
	return c.el.Get("clientWidth").Int(), c.el.Get("clientHeight").Int()
}

// OnResize implements engine.Container. Listeners receive the browser
// window's inner size.
func (c *Container) OnResize(fn func(width, height int)) func() {
	win := js.Global()
	cb := js.FuncOf(func(js.Value, []js.Value) any {
		fn(win.Get("innerWidth").Int(), win.Get("innerHeight").Int())
		return nil
	})
	win.Call("addEventListener", "resize", cb)
	return func() {
		win.Call("removeEventListener", "resize", cb)
		cb.Release()
	}
}

// Canvas is an HTML canvas element.
type Canvas struct {
	el js.Value
	gl *gpu.WebGL
}

// Size implements engine.Canvas.
func (c *Canvas) Size() (int, int) {
	return c.el.Get("width").Int(), c.el.Get("height").Int()
}

// SetSize implements engine.Canvas.
func (c *Canvas) SetSize(width, height int) {
	c.el.Set("width", width)
	c.el.Set("height", height)
}

// Context implements engine.Canvas.
func (c *Canvas) Context() (gpu.Context, error) {
	if c.gl != nil {
		return c.gl, nil
	}
	ctx := c.el.Call("getContext", "webgl2")
	if ctx.IsNull() || ctx.IsUndefined() {
		return nil, ErrWebGL2Unavailable
	}
	c.gl = gpu.NewWebGL(ctx)
	return c.gl, nil
}

// Present implements engine.Canvas. The browser composites the canvas itself.
func (c *Canvas) Present() {}

type pendingFrame struct {
	handle js.Value
	fn     js.Func
}

// Scheduler runs frames on requestAnimationFrame and tasks on setTimeout.
type Scheduler struct {
	nextID loop.FrameID
	frames map[loop.FrameID]pendingFrame
}

// NewScheduler returns a Scheduler for the current page.
func NewScheduler() *Scheduler {
	return &Scheduler{frames: make(map[loop.FrameID]pendingFrame)}
}

// RequestFrame implements loop.Scheduler.
func (s *Scheduler) RequestFrame(fn loop.FrameFunc) loop.FrameID {
	s.nextID++
	id := s.nextID

	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		delete(s.frames, id)
		cb.Release()
		fn(time.Now())
		return nil
	})
	handle := js.Global().Call("requestAnimationFrame", cb)
	s.frames[id] = pendingFrame{handle: handle, fn: cb}
	return id
}

// CancelFrame implements loop.Scheduler.
func (s *Scheduler) CancelFrame(id loop.FrameID) {
	f, ok := s.frames[id]
	if !ok {
		return
	}
	delete(s.frames, id)
	js.Global().Call("cancelAnimationFrame", f.handle)
	f.fn.Release()
}

// Post implements loop.Scheduler.
func (s *Scheduler) Post(fn func()) {
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		cb.Release()
		fn()
		return nil
	})
	js.Global().Call("setTimeout", cb, 0)
}

var (
	_ engine.Container = (*Container)(nil)
	_ engine.Canvas    = (*Canvas)(nil)
	_ loop.Scheduler   = (*Scheduler)(nil)
)
