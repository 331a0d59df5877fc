package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Matrix2D is an affine transform stored column-major as [a b c d e f]:
//
//	x' = a*x + c*y + e
//	y' = b*x + d*y + f
type Matrix2D [6]float64

// singularEpsilon is the smallest determinant Invert accepts.
const singularEpsilon = 1e-12

func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a counter-clockwise rotation by degrees (clockwise on a
// y-down canvas).
func Rotate(degrees float64) Matrix2D {
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// Multiply returns m·n, the transform that applies n and then m.
func (m Matrix2D) Multiply(n Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*n[0] + m[2]*n[1],
		m[1]*n[0] + m[3]*n[1],
		m[0]*n[2] + m[2]*n[3],
		m[1]*n[2] + m[3]*n[3],
		m[0]*n[4] + m[2]*n[5] + m[4],
		m[1]*n[4] + m[3]*n[5] + m[5],
	}
}

// Apply maps p as a point, translation included.
func (m Matrix2D) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// TransformRect maps the four corners of r and returns their bounding box.
func (m Matrix2D) TransformRect(r Rect) Rect {
	out, _ := RectFromPoints([]r2.Vec{
		m.Apply(r2.Vec{X: r.X, Y: r.Y}),
		m.Apply(r2.Vec{X: r.X + r.Width, Y: r.Y}),
		m.Apply(r2.Vec{X: r.X + r.Width, Y: r.Y + r.Height}),
		m.Apply(r2.Vec{X: r.X, Y: r.Y + r.Height}),
	})
	return out
}

// Invert returns the inverse transform. ok is false when m collapses the
// plane (a zero scale factor) and has no inverse.
func (m Matrix2D) Invert() (inv Matrix2D, ok bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < singularEpsilon {
		return Matrix2D{}, false
	}
	return Matrix2D{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, true
}

// Compose builds the local-to-world matrix of a shape: scale first, then
// rotate by degrees, then translate to position. Rendering, hit testing and
// snapping all go through it; a parent transform would be applied as
// parent.Multiply(Compose(...)).
func Compose(position r2.Vec, degrees float64, scale r2.Vec) Matrix2D {
	return Translate(position.X, position.Y).
		Multiply(Rotate(degrees)).
		Multiply(Scale(scale.X, scale.Y))
}

// ToSlice returns the six coefficients for JSON.
func (m Matrix2D) ToSlice() []float64 {
	return m[:]
}
