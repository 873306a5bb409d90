package engine

import gomath "math"

// Animation drives the walk cycle: the sheet column follows wall-clock time,
// the row is fixed and the sprite slides right, wrapping around.
type Animation struct {
	// Columns is the number of frames in the cycle.
	Columns float64
	// Row is the sheet row to show.
	Row float64
	// Rate is columns advanced per millisecond.
	Rate float64
	// Step is the horizontal distance moved per frame.
	Step float64
	// Wrap is where the horizontal position returns to zero.
	Wrap float64
}

// DefaultAnimation is the six-frame slime walk.
func DefaultAnimation() Animation {
	return Animation{
		Columns: 6,
		Row:     1,
		Rate:    0.006,
		Step:    0.3,
		Wrap:    256,
	}
}

// Column returns the fractional sheet column at ms milliseconds.
func (a Animation) Column(ms int64) float64 {
	return gomath.Mod(float64(ms)*a.Rate, a.Columns)
}

// Advance returns the horizontal position one frame after x.
func (a Animation) Advance(x float64) float64 {
	return gomath.Mod(x+a.Step, a.Wrap)
}
