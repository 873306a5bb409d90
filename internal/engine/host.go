package engine

import "github.com/Faultbox/slime-engine/internal/engine/gpu"

// Canvas is a drawable surface with its own graphics context.
type Canvas interface {
	// Size returns the drawing buffer size in pixels.
	Size() (width, height int)
	SetSize(width, height int)
	// Context returns the surface's graphics context, creating it on first use.
	Context() (gpu.Context, error)
	// Present shows the frame drawn since the last call.
	Present()
}

// Container hosts canvases and outlives any single Engine, so a canvas left
// behind by a stopped engine can be picked up by the next one.
type Container interface {
	// FirstCanvas returns the canvas already mounted in the container, or nil.
	FirstCanvas() Canvas
	// CreateCanvas mounts a new canvas of the given size.
	CreateCanvas(width, height int) (Canvas, error)
	// ClientSize returns the container's current size in pixels.
	ClientSize() (width, height int)
	// OnResize registers fn for size changes and returns its removal func.
	OnResize(fn func(width, height int)) (remove func())
}
