// Package math provides the 2D vector and affine matrix types used by the engine.
package math

import "math"

// Vector2 is a mutable 2D point or vector.
// Mutating methods modify v in place and return it for chaining.
type Vector2 struct {
	X, Y float64
}

// NewVector2 returns a new vector.
func NewVector2(x, y float64) *Vector2 {
	return &Vector2{X: x, Y: y}
}

// AddVectors returns a + b as a new vector.
func AddVectors(a, b Vector2) *Vector2 {
	return &Vector2{a.X + b.X, a.Y + b.Y}
}

// SubVectors returns a - b as a new vector.
func SubVectors(a, b Vector2) *Vector2 {
	return &Vector2{a.X - b.X, a.Y - b.Y}
}

// LerpVectors returns the point alpha of the way from v1 to v2.
func LerpVectors(v1, v2 Vector2, alpha float64) *Vector2 {
	return SubVectors(v2, v1).MultiplyScalar(alpha).Add(v1)
}

// Set assigns both components.
func (v *Vector2) Set(x, y float64) *Vector2 {
	v.X = x
	v.Y = y
	return v
}

// Clone returns a copy of v.
func (v *Vector2) Clone() *Vector2 {
	return &Vector2{v.X, v.Y}
}

// Copy assigns the components of other to v.
func (v *Vector2) Copy(other Vector2) *Vector2 {
	v.X = other.X
	v.Y = other.Y
	return v
}

// IsEmpty reports whether both components are zero.
func (v *Vector2) IsEmpty() bool {
	return v.X == 0 && v.Y == 0
}

// Equals reports whether v and other have identical components.
func (v *Vector2) Equals(other Vector2) bool {
	return v.X == other.X && v.Y == other.Y
}

// Add adds other to v.
func (v *Vector2) Add(other Vector2) *Vector2 {
	v.X += other.X
	v.Y += other.Y
	return v
}

// AddScalar adds s to both components.
func (v *Vector2) AddScalar(s float64) *Vector2 {
	v.X += s
	v.Y += s
	return v
}

// AddScalars adds x and y to the respective components.
func (v *Vector2) AddScalars(x, y float64) *Vector2 {
	v.X += x
	v.Y += y
	return v
}

// Sub subtracts other from v.
func (v *Vector2) Sub(other Vector2) *Vector2 {
	v.X -= other.X
	v.Y -= other.Y
	return v
}

// SubScalars subtracts x and y from the respective components.
func (v *Vector2) SubScalars(x, y float64) *Vector2 {
	v.X -= x
	v.Y -= y
	return v
}

// Multiply multiplies v component-wise by other.
func (v *Vector2) Multiply(other Vector2) *Vector2 {
	v.X *= other.X
	v.Y *= other.Y
	return v
}

// MultiplyScalar scales v by s.
func (v *Vector2) MultiplyScalar(s float64) *Vector2 {
	v.X *= s
	v.Y *= s
	return v
}

// DivideScalar divides v by s.
func (v *Vector2) DivideScalar(s float64) *Vector2 {
	return v.MultiplyScalar(1 / s)
}

// Negate flips the sign of both components.
func (v *Vector2) Negate() *Vector2 {
	v.X = -v.X
	v.Y = -v.Y
	return v
}

// Min keeps the component-wise minimum of v and other.
func (v *Vector2) Min(other Vector2) *Vector2 {
	v.X = math.Min(v.X, other.X)
	v.Y = math.Min(v.Y, other.Y)
	return v
}

// Max keeps the component-wise maximum of v and other.
func (v *Vector2) Max(other Vector2) *Vector2 {
	v.X = math.Max(v.X, other.X)
	v.Y = math.Max(v.Y, other.Y)
	return v
}

// Clamp restricts each component to the range given by lo and hi.
func (v *Vector2) Clamp(lo, hi Vector2) *Vector2 {
	v.X = math.Max(lo.X, math.Min(hi.X, v.X))
	v.Y = math.Max(lo.Y, math.Min(hi.Y, v.Y))
	return v
}

// ClampLength rescales v so its length lies within [lo, hi].
func (v *Vector2) ClampLength(lo, hi float64) *Vector2 {
	l := v.Length()
	return v.MultiplyScalar(math.Max(lo, math.Min(hi, l)) / l)
}

// Length returns the magnitude.
func (v *Vector2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSq returns the squared magnitude.
func (v *Vector2) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize scales v to unit length.
// A zero vector produces NaN components.
func (v *Vector2) Normalize() *Vector2 {
	return v.DivideScalar(v.Length())
}

// Angle returns the angle of v in radians, in [0, 2π).
func (v *Vector2) Angle() float64 {
	angle := math.Atan2(v.Y, v.X)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}

// Dot returns the dot product.
func (v *Vector2) Dot(other Vector2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product.
func (v *Vector2) Cross(other Vector2) float64 {
	return v.X*other.Y - v.Y*other.X
}

// DistanceTo returns the distance to other.
func (v *Vector2) DistanceTo(other Vector2) float64 {
	return math.Sqrt(v.DistanceToSquared(other))
}

// DistanceToSquared returns the squared distance to other.
func (v *Vector2) DistanceToSquared(other Vector2) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return dx*dx + dy*dy
}

// Lerp moves v toward target by alpha. Alpha is not clamped.
func (v *Vector2) Lerp(target Vector2, alpha float64) *Vector2 {
	v.X += (target.X - v.X) * alpha
	v.Y += (target.Y - v.Y) * alpha
	return v
}
