package snap

import (
	"math"
	"slices"
	"testing"

	"github.com/inamate/vecedit/internal/shape"
	"gonum.org/v1/gonum/spatial/r2"
)

func line(id int64, x0, y0, x1, y1 float64) *shape.Shape {
	s := shape.New(id)
	s.Append(shape.MoveTo(x0, y0))
	s.Append(shape.LineTo(x1, y1))
	return s
}

func square(id int64, size float64) *shape.Shape {
	s := shape.New(id)
	s.Append(shape.MoveTo(0, 0))
	s.Append(shape.LineTo(size, 0))
	s.Append(shape.LineTo(size, size))
	s.Append(shape.LineTo(0, size))
	s.Close()
	return s
}

func TestNearestWithinRadius(t *testing.T) {
	shapes := []*shape.Shape{line(1, 0, 0, 10, 0)}
	query := r2.Vec{X: 10.2, Y: 0.1}

	tests := []struct {
		name   string
		radius float64
		found  bool
	}{
		{"radius 1 finds endpoint", 1, true},
		{"radius 0.1 finds nothing", 0.1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.radius)
			f, ok := e.Nearest(query, shapes)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && (f.Type != EndPoint || f.Point != (r2.Vec{X: 10, Y: 0}) || f.ShapeID != 1) {
				t.Errorf("feature = %+v", f)
			}
		})
	}
}

func TestRadiusIsInclusive(t *testing.T) {
	e := New(5)
	if _, ok := e.Nearest(r2.Vec{X: 3, Y: 4}, []*shape.Shape{line(1, 0, 0, -10, 0)}); !ok {
		t.Error("feature at exactly the radius should match")
	}
}

func TestTieBreakFirstFound(t *testing.T) {
	a := line(1, 0, 0, 10, 0)
	b := line(2, 10, 0, 20, 0)
	e := New(1)

	f, ok := e.Nearest(r2.Vec{X: 10, Y: 0.5}, []*shape.Shape{a, b})
	if !ok || f.ShapeID != 1 {
		t.Errorf("got %+v, want shape 1", f)
	}
	f, _ = e.Nearest(r2.Vec{X: 10, Y: 0.5}, []*shape.Shape{b, a})
	if f.ShapeID != 2 {
		t.Errorf("got %+v, want shape 2 when listed first", f)
	}
}

func TestNearestPicksClosest(t *testing.T) {
	e := New(10)
	f, ok := e.Nearest(r2.Vec{X: 8, Y: 1}, []*shape.Shape{line(1, 0, 0, 10, 0)})
	if !ok || f.Point != (r2.Vec{X: 10, Y: 0}) {
		t.Errorf("got %+v", f)
	}
}

func TestFeaturesFollowTransform(t *testing.T) {
	s := line(1, 0, 0, 10, 0)
	s.SetTransform(r2.Vec{X: 100, Y: 0}, 90, r2.Vec{X: 2, Y: 2})
	e := New(0.5)

	f, ok := e.Nearest(r2.Vec{X: 100, Y: 20.1}, []*shape.Shape{s})
	if !ok || math.Abs(f.Point.X-100) > 1e-9 || math.Abs(f.Point.Y-20) > 1e-9 {
		t.Errorf("got %+v, %v; want endpoint at (100, 20)", f, ok)
	}

	// features are recomputed, so a move is visible to the next query
	s.Translate(r2.Vec{X: 50, Y: 0})
	if _, ok := e.Nearest(r2.Vec{X: 100, Y: 20}, []*shape.Shape{s}); ok {
		t.Error("stale feature returned after move")
	}
}

func TestDetectFeaturesOrderAndTypes(t *testing.T) {
	e := New(1)
	e.SetActive(EndPoint, MidPoint, Center, Centroid)
	got := slices.Collect(e.DetectFeatures(square(7, 10)))

	var types []FeatureType
	for _, f := range got {
		types = append(types, f.Type)
		if f.ShapeID != 7 {
			t.Errorf("feature %+v has wrong shape id", f)
		}
	}
	want := []FeatureType{
		EndPoint, EndPoint, EndPoint, EndPoint,
		MidPoint, MidPoint, MidPoint, MidPoint,
		Center, Centroid,
	}
	if !slices.Equal(types, want) {
		t.Fatalf("types = %v, want %v", types, want)
	}
	if got[7].Point != (r2.Vec{X: 0, Y: 5}) {
		t.Errorf("closing midpoint = %v, want (0, 5)", got[7].Point)
	}
	if got[8].Point != (r2.Vec{X: 5, Y: 5}) || got[9].Point != (r2.Vec{X: 5, Y: 5}) {
		t.Errorf("center/centroid = %v / %v", got[8].Point, got[9].Point)
	}
}

func TestCentroidOnlyForClosedShapes(t *testing.T) {
	e := New(100)
	e.SetActive(Centroid)
	if _, ok := e.Nearest(r2.Vec{X: 5, Y: 0}, []*shape.Shape{line(1, 0, 0, 10, 0)}); ok {
		t.Error("open shape should have no centroid feature")
	}
	f, ok := e.Nearest(r2.Vec{X: 5, Y: 6}, []*shape.Shape{square(2, 10)})
	if !ok || f.Type != Centroid {
		t.Errorf("got %+v, %v", f, ok)
	}
}

func TestActiveSet(t *testing.T) {
	e := New(0)
	if e.Radius() != DefaultRadius {
		t.Errorf("Radius = %v, want %v", e.Radius(), DefaultRadius)
	}
	if got := e.Active(); !slices.Equal(got, []FeatureType{EndPoint, Centroid}) {
		t.Errorf("Active = %v", got)
	}
	e.Disable(EndPoint)
	e.Enable(MidPoint)
	if got := e.Active(); !slices.Equal(got, []FeatureType{MidPoint, Centroid}) {
		t.Errorf("Active = %v", got)
	}

	f, ok := e.Nearest(r2.Vec{X: 1, Y: 0}, []*shape.Shape{line(1, 0, 0, 10, 0)})
	if !ok || f.Type != MidPoint || f.Point != (r2.Vec{X: 5, Y: 0}) {
		t.Errorf("got %+v, %v", f, ok)
	}
}

func TestArcEndpoints(t *testing.T) {
	s := shape.New(1)
	s.Append(shape.ArcTo(0, 0, 10, 0, 90, false))
	e := New(0.01)
	e.SetActive(EndPoint)
	for _, p := range []r2.Vec{{X: 10, Y: 0}, {X: 0, Y: 10}} {
		if _, ok := e.Nearest(p, []*shape.Shape{s}); !ok {
			t.Errorf("no endpoint at %v", p)
		}
	}
}

func TestSnapAndRadiusForZoom(t *testing.T) {
	e := New(RadiusForZoom(10, 4))
	if e.Radius() != 2.5 {
		t.Fatalf("Radius = %v, want 2.5", e.Radius())
	}
	shapes := []*shape.Shape{line(1, 0, 0, 10, 0)}
	if got := e.Snap(r2.Vec{X: 11, Y: 1}, shapes); got != (r2.Vec{X: 10, Y: 0}) {
		t.Errorf("Snap = %v", got)
	}
	far := r2.Vec{X: 50, Y: 50}
	if got := e.Snap(far, shapes); got != far {
		t.Errorf("Snap(far) = %v, want unchanged", got)
	}
	if got := RadiusForZoom(10, 0); got != 10 {
		t.Errorf("RadiusForZoom zero zoom = %v", got)
	}
}
