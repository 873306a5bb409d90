package sprite

// State is the sprite lifecycle.
type State int

const (
	StateConstructing State = iota
	StateLoading
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConstructing:
		return "constructing"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// RectArray returns two triangles covering the rectangle as x, y pairs.
func RectArray(x, y, w, h float64) []float32 {
	x1, y1 := float32(x), float32(y)
	x2, y2 := float32(x+w), float32(y+h)
	return []float32{
		x1, y1,
		x2, y1,
		x1, y2,
		x1, y2,
		x2, y1,
		x2, y2,
	}
}
