package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const degrees = 180 / math.Pi

// Matrix3 is a 2D affine transform.
// Layout:
//
//	[A C TX]
//	[B D TY]
//	[0 0 1 ]
type Matrix3 struct {
	A, B, C, D float64
	TX, TY     float64
}

// Decomposition holds the parts extracted by Matrix3.Decompose.
// Rotation and Skewing are in degrees.
type Decomposition struct {
	Translation Vector2
	Rotation    float64
	Scaling     Vector2
	Skewing     Vector2
}

// NewMatrix3 returns an identity matrix.
func NewMatrix3() *Matrix3 {
	return &Matrix3{A: 1, D: 1}
}

// Set assigns all six components.
func (m *Matrix3) Set(a, b, c, d, tx, ty float64) *Matrix3 {
	m.A, m.B, m.C, m.D, m.TX, m.TY = a, b, c, d, tx, ty
	return m
}

// Copy assigns the components of other to m.
func (m *Matrix3) Copy(other *Matrix3) *Matrix3 {
	*m = *other
	return m
}

// Clone returns a copy of m.
func (m *Matrix3) Clone() *Matrix3 {
	c := *m
	return &c
}

// Identity resets m to the identity transform.
func (m *Matrix3) Identity() *Matrix3 {
	return m.Set(1, 0, 0, 1, 0, 0)
}

// IsIdentity reports whether m is exactly the identity transform.
func (m *Matrix3) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 && m.D == 1 && m.TX == 0 && m.TY == 0
}

// SetTranslation overwrites the translation column.
func (m *Matrix3) SetTranslation(x, y float64) *Matrix3 {
	m.TX = x
	m.TY = y
	return m
}

// Translate moves m by (x, y) expressed in its current linear basis.
func (m *Matrix3) Translate(x, y float64) *Matrix3 {
	m.TX += x*m.A + y*m.C
	m.TY += x*m.B + y*m.D
	return m
}

// TranslateByVector is Translate with a vector argument.
func (m *Matrix3) TranslateByVector(v Vector2) *Matrix3 {
	return m.Translate(v.X, v.Y)
}

// Scale scales the linear part.
func (m *Matrix3) Scale(x, y float64) *Matrix3 {
	m.A *= x
	m.B *= x
	m.C *= y
	m.D *= y
	return m
}

// ScaleByCenter scales around center.
func (m *Matrix3) ScaleByCenter(x, y float64, center Vector2) *Matrix3 {
	m.Translate(center.X, center.Y)
	m.Scale(x, y)
	return m.Translate(-center.X, -center.Y)
}

// Rotate rotates the linear part by angle degrees.
func (m *Matrix3) Rotate(angle float64) *Matrix3 {
	return m.RotateRad(angle / degrees)
}

// RotateRad rotates the linear part by rad radians.
func (m *Matrix3) RotateRad(rad float64) *Matrix3 {
	sin, cos := math.Sincos(rad)
	a, b, c, d := m.A, m.B, m.C, m.D
	m.A = cos*a + sin*c
	m.B = cos*b + sin*d
	m.C = -sin*a + cos*c
	m.D = -sin*b + cos*d
	return m
}

// RotateByCenter rotates by angle degrees around center.
func (m *Matrix3) RotateByCenter(angle float64, center Vector2) *Matrix3 {
	sin, cos := math.Sincos(angle / degrees)
	x, y := center.X, center.Y
	tx := x - x*cos + y*sin
	ty := y - x*sin - y*cos
	a, b, c, d := m.A, m.B, m.C, m.D
	m.A = cos*a + sin*c
	m.B = cos*b + sin*d
	m.C = -sin*a + cos*c
	m.D = -sin*b + cos*d
	m.TX += tx*a + ty*c
	m.TY += tx*b + ty*d
	return m
}

// Multiply composes mx into m, so that m = m ∘ mx.
//
// The cross terms are read transposed (b2 from mx.C, c2 from mx.B); the world and
// object matrices uploaded to the sprite shader depend on this exact mapping.
func (m *Matrix3) Multiply(mx *Matrix3) *Matrix3 {
	a1, b1, c1, d1 := m.A, m.B, m.C, m.D
	a2 := mx.A
	b2 := mx.C
	c2 := mx.B
	d2 := mx.D

	m.A = a2*a1 + c2*c1
	m.C = b2*a1 + d2*c1
	m.B = a2*b1 + c2*d1
	m.D = b2*b1 + d2*d1
	m.TX += mx.TX*a1 + mx.TY*c1
	m.TY += mx.TX*b1 + mx.TY*d1
	return m
}

func (m *Matrix3) det() float64 {
	return m.A*m.D - m.B*m.C
}

// IsInvertible reports whether Invert would succeed.
func (m *Matrix3) IsInvertible() bool {
	det := m.det()
	return det != 0 && !math.IsNaN(det) && finite(m.TX) && finite(m.TY)
}

// IsSingular is the negation of IsInvertible.
func (m *Matrix3) IsSingular() bool {
	return !m.IsInvertible()
}

// Invert inverts m in place and returns it.
// It returns nil and leaves m untouched when m has no inverse.
func (m *Matrix3) Invert() *Matrix3 {
	if !m.IsInvertible() {
		return nil
	}
	a, b, c, d, tx, ty := m.A, m.B, m.C, m.D, m.TX, m.TY
	det := m.det()
	m.A = d / det
	m.B = -b / det
	m.C = -c / det
	m.D = a / det
	m.TX = (c*ty - d*tx) / det
	m.TY = (b*tx - a*ty) / det
	return m
}

// TransformVector applies m to v in place.
func (m *Matrix3) TransformVector(v *Vector2) *Vector2 {
	x, y := v.X, v.Y
	return v.Set(x*m.A+y*m.C+m.TX, x*m.B+y*m.D+m.TY)
}

// InverseTransform maps point through the inverse of m without modifying m.
// ok is false when m has no inverse.
func (m *Matrix3) InverseTransform(point Vector2) (out Vector2, ok bool) {
	if !m.IsInvertible() {
		return Vector2{}, false
	}
	det := m.det()
	x := point.X - m.TX
	y := point.Y - m.TY
	return Vector2{(x*m.D - y*m.C) / det, (y*m.A - x*m.B) / det}, true
}

// Decompose splits m into translation, rotation, scale and skew.
func (m *Matrix3) Decompose() Decomposition {
	a, b, c, d := m.A, m.B, m.C, m.D
	det := m.det()

	var rotate float64
	var scale, skew [2]float64

	switch {
	case a != 0 || b != 0:
		r := math.Sqrt(a*a + b*b)
		rotate = math.Acos(a / r)
		if b <= 0 {
			rotate = -rotate
		}
		scale = [2]float64{r, det / r}
		skew = [2]float64{math.Atan2(a*c+b*d, r*r), 0}
	case c != 0 || d != 0:
		s := math.Sqrt(c*c + d*d)
		rotate = math.Asin(c / s)
		if d <= 0 {
			rotate = -rotate
		}
		scale = [2]float64{det / s, s}
		skew = [2]float64{0, math.Atan2(a*c+b*d, s*s)}
	}

	return Decomposition{
		Translation: m.Translation(),
		Rotation:    rotate * degrees,
		Scaling:     Vector2{scale[0], scale[1]},
		Skewing:     Vector2{skew[0] * degrees, skew[1] * degrees},
	}
}

// Values returns the six components in (A, B, C, D, TX, TY) order.
func (m *Matrix3) Values() [6]float64 {
	return [6]float64{m.A, m.B, m.C, m.D, m.TX, m.TY}
}

// Translation returns the translation column.
func (m *Matrix3) Translation() Vector2 {
	return Vector2{m.TX, m.TY}
}

// Scaling returns the scale part of Decompose.
func (m *Matrix3) Scaling() Vector2 {
	return m.Decompose().Scaling
}

// Rotation returns the rotation part of Decompose, in degrees.
func (m *Matrix3) Rotation() float64 {
	return m.Decompose().Rotation
}

// FloatArray returns m as a column-major 3x3 matrix for a mat3 uniform.
func (m *Matrix3) FloatArray() mgl32.Mat3 {
	return mgl32.Mat3FromCols(
		mgl32.Vec3{float32(m.A), float32(m.B), 0},
		mgl32.Vec3{float32(m.C), float32(m.D), 0},
		mgl32.Vec3{float32(m.TX), float32(m.TY), 1},
	)
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
