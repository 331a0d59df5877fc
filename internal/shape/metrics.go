package shape

import (
	"log/slog"
	"math"

	"github.com/inamate/vecedit/internal/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

// Area returns the enclosed world-space area using the shoelace formula over
// the effective points at DefaultResolution. Curved segments make the result
// an approximation; use AreaAt with a finer resolution to tighten it.
func (s *Shape) Area() (float64, error) {
	return s.AreaAt(DefaultResolution)
}

// AreaAt is Area sampled at the given resolution.
func (s *Shape) AreaAt(resolution float64) (float64, error) {
	pts, err := s.closedPoints("area", resolution)
	if err != nil {
		return 0, err
	}
	return math.Abs(signedArea(pts)), nil
}

// Centroid returns the arithmetic mean of the effective points. This is the
// centre of the sampled outline, not of the enclosed surface; the two agree
// for regular polygons and drift apart as sampling becomes uneven.
func (s *Shape) Centroid() (r2.Vec, error) {
	return s.CentroidAt(DefaultResolution)
}

func (s *Shape) CentroidAt(resolution float64) (r2.Vec, error) {
	pts, err := s.closedPoints("centroid", resolution)
	if err != nil {
		return r2.Vec{}, err
	}
	var sum r2.Vec
	for _, p := range pts {
		sum = r2.Add(sum, p)
	}
	return r2.Scale(1/float64(len(pts)), sum), nil
}

const closeEpsilon = 1e-9

func (s *Shape) closedPoints(metric string, resolution float64) ([]r2.Vec, error) {
	if !s.IsClosed() {
		slog.Warn("metric requested on open contour", "metric", metric, "shape", s.id)
		return nil, ErrOpenContour
	}
	pts := s.Points(resolution)
	if len(pts) == 0 {
		return nil, ErrEmptyContour
	}
	// The closing segment is implicit; drop an explicit duplicate of the
	// start. A full-circle arc ends within rounding error of where it began.
	if len(pts) > 1 && r2.Norm(r2.Sub(pts[len(pts)-1], pts[0])) < closeEpsilon {
		pts = pts[:len(pts)-1]
	}
	return pts, nil
}

func signedArea(pts []r2.Vec) float64 {
	var sum float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// Bounds returns the world-space bounding box of the effective points. The
// second result is false for an empty contour.
func (s *Shape) Bounds() (geometry.Rect, bool) {
	return s.BoundsAt(DefaultResolution)
}

func (s *Shape) BoundsAt(resolution float64) (geometry.Rect, bool) {
	return geometry.RectFromPoints(s.Points(resolution))
}

// Contains reports whether p lies inside the closed contour (even-odd rule).
// Open contours contain nothing.
func (s *Shape) Contains(p r2.Vec) bool {
	return s.ContainsAt(p, DefaultResolution)
}

// ContainsAt tests p against the contour sampled at resolution.
func (s *Shape) ContainsAt(p r2.Vec, resolution float64) bool {
	if !s.IsClosed() {
		return false
	}
	pts := s.Points(resolution)
	inside := false
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// DistanceToOutline returns the world distance from p to the nearest point
// of the outline, including the closing segment of a closed contour. An
// empty contour reports +Inf.
func (s *Shape) DistanceToOutline(p r2.Vec) float64 {
	return s.DistanceToOutlineAt(p, DefaultResolution)
}

func (s *Shape) DistanceToOutlineAt(p r2.Vec, resolution float64) float64 {
	pts := s.Points(resolution)
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return r2.Norm(r2.Sub(p, pts[0]))
	}
	best := math.Inf(1)
	n := len(pts) - 1
	if s.IsClosed() {
		n = len(pts)
	}
	for i := 0; i < n; i++ {
		best = min(best, segmentDistance(p, pts[i], pts[(i+1)%len(pts)]))
	}
	return best
}

func segmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Dot(ab, ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	t = min(max(t, 0), 1)
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}
