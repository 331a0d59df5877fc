package geometry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

const eps = 1e-9

func near(a, b r2.Vec) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

func TestComposeOrder(t *testing.T) {
	tests := []struct {
		name     string
		position r2.Vec
		degrees  float64
		scale    r2.Vec
		in       r2.Vec
		want     r2.Vec
	}{
		{"identity", r2.Vec{}, 0, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 3, Y: 4}, r2.Vec{X: 3, Y: 4}},
		{"translate only", r2.Vec{X: 5, Y: -2}, 0, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 6, Y: -1}},
		{"rotate 90", r2.Vec{}, 90, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 1, Y: 0}, r2.Vec{X: 0, Y: 1}},
		{"scale then rotate", r2.Vec{}, 90, r2.Vec{X: 2, Y: 1}, r2.Vec{X: 1, Y: 0}, r2.Vec{X: 0, Y: 2}},
		{"mirror x", r2.Vec{}, 0, r2.Vec{X: -1, Y: 1}, r2.Vec{X: 4, Y: 2}, r2.Vec{X: -4, Y: 2}},
		{"all three", r2.Vec{X: 10, Y: 10}, 180, r2.Vec{X: 2, Y: 2}, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 8, Y: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(tt.position, tt.degrees, tt.scale).Apply(tt.in)
			if !near(got, tt.want) {
				t.Errorf("Compose(%v, %v, %v).Apply(%v) = %v, want %v", tt.position, tt.degrees, tt.scale, tt.in, got, tt.want)
			}
		})
	}
}

func TestComposeMatchesExplicitCoefficients(t *testing.T) {
	pos := r2.Vec{X: 3, Y: -7}
	scale := r2.Vec{X: 1.5, Y: -0.5}
	sin, cos := math.Sincos(33 * math.Pi / 180)
	want := Matrix2D{cos * scale.X, sin * scale.X, -sin * scale.Y, cos * scale.Y, pos.X, pos.Y}
	got := Compose(pos, 33, scale)
	for i := range got {
		if math.Abs(got[i]-want[i]) > eps {
			t.Fatalf("Compose = %v, want %v", got, want)
		}
	}
}

func TestInvert(t *testing.T) {
	m := Compose(r2.Vec{X: 4, Y: 5}, 30, r2.Vec{X: 2, Y: 3})
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("Invert reported a singular matrix")
	}
	for _, p := range []r2.Vec{{}, {X: 7, Y: -1}, {X: -100, Y: 42}} {
		if back := inv.Apply(m.Apply(p)); !near(back, p) {
			t.Errorf("round trip of %v = %v", p, back)
		}
		if id := m.Multiply(inv).Apply(p); !near(id, p) {
			t.Errorf("m * m^-1 moved %v to %v", p, id)
		}
	}

	if _, ok := Scale(0, 2).Invert(); ok {
		t.Error("zero scale should not be invertible")
	}
}

func TestTransformRect(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 4}
	tests := []struct {
		name string
		m    Matrix2D
		want Rect
	}{
		{"view zoom and pan", Translate(5, 5).Multiply(Scale(2, 2)), Rect{X: 5, Y: 5, Width: 20, Height: 8}},
		{"rotate 90", Rotate(90), Rect{X: -4, Y: 0, Width: 4, Height: 10}},
		{"mirror", Scale(-1, 1), Rect{X: -10, Y: 0, Width: 10, Height: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformRect(r)
			if !near(r2.Vec{X: got.X, Y: got.Y}, r2.Vec{X: tt.want.X, Y: tt.want.Y}) ||
				!near(r2.Vec{X: got.Width, Y: got.Height}, r2.Vec{X: tt.want.Width, Y: tt.want.Height}) {
				t.Errorf("TransformRect = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectOps(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: 5, Width: 10, Height: 10}
	c := Rect{X: 20, Y: 20, Width: 1, Height: 1}

	if !a.Intersects(b) || a.Intersects(c) {
		t.Errorf("Intersects mismatch")
	}
	if !a.ContainsRect(Rect{X: 1, Y: 1, Width: 2, Height: 2}) || a.ContainsRect(b) {
		t.Errorf("ContainsRect mismatch")
	}
	u := a.Union(b)
	if u != (Rect{X: 0, Y: 0, Width: 15, Height: 15}) {
		t.Errorf("Union = %+v", u)
	}
	line := Rect{X: -5, Y: 20, Width: 10, Height: 0}
	if got := a.Union(line); got != (Rect{X: -5, Y: 0, Width: 15, Height: 20}) {
		t.Errorf("Union with a flat rect = %+v", got)
	}
	if got := u.Center(); !near(got, r2.Vec{X: 7.5, Y: 7.5}) {
		t.Errorf("Center = %v", got)
	}
	r := RectFromCorners(r2.Vec{X: 4, Y: -1}, r2.Vec{X: -2, Y: 3})
	if r != (Rect{X: -2, Y: -1, Width: 6, Height: 4}) {
		t.Errorf("RectFromCorners = %+v", r)
	}
	if _, ok := RectFromPoints(nil); ok {
		t.Errorf("RectFromPoints(nil) should report false")
	}
}
