// Package snap finds alignment features on shapes and answers nearest-feature
// queries for precise placement during editing gestures.
package snap

import (
	"iter"
	"math"
	"slices"

	"github.com/inamate/vecedit/internal/shape"
	"gonum.org/v1/gonum/spatial/r2"
)

// FeatureType identifies a kind of snap feature.
type FeatureType string

const (
	EndPoint FeatureType = "endPoint"
	MidPoint FeatureType = "midPoint"
	Center   FeatureType = "center"
	Centroid FeatureType = "centroid"
)

// emission order of DetectFeatures, also the tie-break order within a shape
var featureOrder = []FeatureType{EndPoint, MidPoint, Center, Centroid}

// DefaultRadius is the snap tolerance in world units at zoom 1.
const DefaultRadius = 10.0

// Feature is a world-space point on a shape eligible as a snap target.
type Feature struct {
	Type    FeatureType
	Point   r2.Vec
	ShapeID int64
}

// Engine holds the snap tolerance and the set of active feature types.
// Features are derived from shape state on every query and never cached.
type Engine struct {
	radius float64
	active map[FeatureType]bool
}

// New creates an engine with EndPoint and Centroid active. A non-positive
// radius selects DefaultRadius.
func New(radius float64) *Engine {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Engine{
		radius: radius,
		active: map[FeatureType]bool{EndPoint: true, Centroid: true},
	}
}

// RadiusForZoom converts a screen-space tolerance in pixels to world units.
func RadiusForZoom(screenPx, zoom float64) float64 {
	if zoom <= 0 {
		return screenPx
	}
	return screenPx / zoom
}

func (e *Engine) Radius() float64 { return e.radius }

// SetRadius changes the tolerance. Negative values are treated as zero.
func (e *Engine) SetRadius(r float64) { e.radius = max(r, 0) }

// SetActive replaces the active feature set.
func (e *Engine) SetActive(types ...FeatureType) {
	e.active = make(map[FeatureType]bool, len(types))
	for _, t := range types {
		e.active[t] = true
	}
}

func (e *Engine) Enable(t FeatureType)  { e.active[t] = true }
func (e *Engine) Disable(t FeatureType) { delete(e.active, t) }

func (e *Engine) IsActive(t FeatureType) bool { return e.active[t] }

// Active returns the active types in emission order.
func (e *Engine) Active() []FeatureType {
	var out []FeatureType
	for _, t := range featureOrder {
		if e.active[t] {
			out = append(out, t)
		}
	}
	return out
}

// DetectFeatures yields the active features of s in world coordinates:
// endpoints of every command in contour order, then midpoints of straight
// segments, then the bounds centre, then the centroid of a closed contour.
func (e *Engine) DetectFeatures(s *shape.Shape) iter.Seq[Feature] {
	return func(yield func(Feature) bool) {
		m := s.WorldMatrix()
		emit := func(t FeatureType, local r2.Vec) bool {
			return yield(Feature{Type: t, Point: m.Apply(local), ShapeID: s.ID()})
		}
		cmds := s.Commands()

		if e.active[EndPoint] {
			for _, c := range cmds {
				if c.Type == shape.CmdArcTo {
					if !emit(EndPoint, c.ArcStart()) {
						return
					}
				}
				if p, ok := c.End(); ok {
					if !emit(EndPoint, p) {
						return
					}
				}
			}
		}

		if e.active[MidPoint] {
			for a, b := range straightSegments(cmds) {
				if !emit(MidPoint, r2.Scale(0.5, r2.Add(a, b))) {
					return
				}
			}
		}

		if e.active[Center] {
			if b, ok := s.Bounds(); ok {
				if !yield(Feature{Type: Center, Point: b.Center(), ShapeID: s.ID()}) {
					return
				}
			}
		}

		if e.active[Centroid] && s.IsClosed() {
			if c, err := s.Centroid(); err == nil {
				yield(Feature{Type: Centroid, Point: c, ShapeID: s.ID()})
			}
		}
	}
}

// Nearest scans the features of every shape and returns the closest one
// within the radius (inclusive). On equal distance the first feature found
// wins: shapes in the given order, features in emission order.
func (e *Engine) Nearest(p r2.Vec, shapes []*shape.Shape) (Feature, bool) {
	var (
		best  Feature
		bestD = math.Inf(1)
		found bool
	)
	for _, s := range shapes {
		for f := range e.DetectFeatures(s) {
			d := r2.Norm(r2.Sub(f.Point, p))
			if d <= e.radius && d < bestD {
				best, bestD, found = f, d, true
			}
		}
	}
	return best, found
}

// Snap returns the nearest feature point, or p unchanged when nothing is
// within reach.
func (e *Engine) Snap(p r2.Vec, shapes []*shape.Shape) r2.Vec {
	if f, ok := e.Nearest(p, shapes); ok {
		return f.Point
	}
	return p
}

// Features collects the features of all shapes, mostly for display.
func (e *Engine) Features(shapes []*shape.Shape) []Feature {
	var out []Feature
	for _, s := range shapes {
		out = slices.AppendSeq(out, e.DetectFeatures(s))
	}
	return out
}

// straightSegments yields the local endpoints of lineTo segments and of the
// closing segment of each subpath.
func straightSegments(cmds []shape.PathCommand) iter.Seq2[r2.Vec, r2.Vec] {
	return func(yield func(r2.Vec, r2.Vec) bool) {
		var pen, start r2.Vec
		hasPen := false
		for _, c := range cmds {
			switch c.Type {
			case shape.CmdMoveTo:
				pen, start, hasPen = r2.Vec{X: c.X, Y: c.Y}, r2.Vec{X: c.X, Y: c.Y}, true
			case shape.CmdLineTo:
				p := r2.Vec{X: c.X, Y: c.Y}
				if hasPen && p != pen {
					if !yield(pen, p) {
						return
					}
				}
				if !hasPen {
					start, hasPen = p, true
				}
				pen = p
			case shape.CmdArcTo:
				if !hasPen {
					start, hasPen = c.ArcStart(), true
				}
				pen, _ = c.End()
			case shape.CmdBezierTo:
				if !hasPen {
					start, hasPen = r2.Vec{X: c.CP1X, Y: c.CP1Y}, true
				}
				pen, _ = c.End()
			case shape.CmdClose:
				if hasPen && pen != start {
					if !yield(pen, start) {
						return
					}
				}
				pen = start
			}
		}
	}
}
