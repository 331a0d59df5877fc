package shape

import (
	"iter"
	"math"
	"slices"

	"github.com/inamate/vecedit/internal/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// DefaultResolution is the target distance in world units between two
	// consecutive samples of a curve.
	DefaultResolution = 1.0
	// MaxCurveSteps caps the samples produced for a single arc or bezier.
	MaxCurveSteps = 256
)

// ResolutionForZoom returns the sampling resolution giving roughly one
// sample per screen pixel at the given zoom factor.
func ResolutionForZoom(zoom float64) float64 {
	if zoom <= 0 {
		return DefaultResolution
	}
	return DefaultResolution / zoom
}

// EffectivePoints yields the contour as world-space points. Straight
// segments contribute their endpoints, arcs and beziers are sampled so that
// consecutive samples are about resolution apart. Consecutive duplicates are
// skipped and close yields nothing. The sequence can be ranged over any
// number of times; each pass reflects the shape at the time of that pass.
func (s *Shape) EffectivePoints(resolution float64) iter.Seq[r2.Vec] {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return func(yield func(r2.Vec) bool) {
		w := walker{
			m:     s.WorldMatrix(),
			res:   resolution / max(math.Abs(s.scale.X), math.Abs(s.scale.Y), 1e-12),
			yield: yield,
		}
		for _, c := range s.commands {
			if !w.step(c) {
				return
			}
		}
	}
}

// Points collects EffectivePoints into a slice.
func (s *Shape) Points(resolution float64) []r2.Vec {
	return slices.Collect(s.EffectivePoints(resolution))
}

// walker tracks pen state while turning commands into points. res is in
// local units.
type walker struct {
	m     geometry.Matrix2D
	res   float64
	yield func(r2.Vec) bool

	pen, start r2.Vec
	hasPen     bool
	last       r2.Vec
	hasLast    bool
}

func (w *walker) emit(local r2.Vec) bool {
	p := w.m.Apply(local)
	if w.hasLast && p == w.last {
		return true
	}
	w.last, w.hasLast = p, true
	return w.yield(p)
}

func (w *walker) moveTo(p r2.Vec) bool {
	w.pen, w.start, w.hasPen = p, p, true
	return w.emit(p)
}

func (w *walker) step(c PathCommand) bool {
	switch c.Type {
	case CmdMoveTo:
		return w.moveTo(r2.Vec{X: c.X, Y: c.Y})

	case CmdLineTo:
		p := r2.Vec{X: c.X, Y: c.Y}
		if !w.hasPen {
			return w.moveTo(p)
		}
		w.pen = p
		return w.emit(p)

	case CmdArcTo:
		sweep := ArcSweep(c.StartAngle, c.EndAngle, c.Clockwise)
		first := arcPoint(c, c.StartAngle)
		if !w.hasPen {
			w.start, w.hasPen = first, true
		}
		n := curveSteps(math.Abs(sweep)*math.Pi/180*c.Radius, w.res)
		for i := 0; i <= n; i++ {
			if !w.emit(arcPoint(c, c.StartAngle+sweep*float64(i)/float64(n))) {
				return false
			}
		}
		w.pen = arcPoint(c, c.StartAngle+sweep)
		return true

	case CmdBezierTo:
		c1 := r2.Vec{X: c.CP1X, Y: c.CP1Y}
		c2 := r2.Vec{X: c.CP2X, Y: c.CP2Y}
		end := r2.Vec{X: c.X, Y: c.Y}
		if !w.hasPen {
			if !w.moveTo(c1) {
				return false
			}
		}
		p0 := w.pen
		hull := r2.Norm(r2.Sub(c1, p0)) + r2.Norm(r2.Sub(c2, c1)) + r2.Norm(r2.Sub(end, c2))
		n := curveSteps(hull, w.res)
		for i := 1; i <= n; i++ {
			if !w.emit(cubic(p0, c1, c2, end, float64(i)/float64(n))) {
				return false
			}
		}
		w.pen = end
		return true

	case CmdClose:
		if w.hasPen {
			w.pen = w.start
		}
	}
	return true
}

func curveSteps(length, res float64) int {
	n := int(math.Ceil(length / res))
	return min(max(n, 1), MaxCurveSteps)
}

func cubic(p0, p1, p2, p3 r2.Vec, t float64) r2.Vec {
	u := 1 - t
	p := r2.Scale(u*u*u, p0)
	p = r2.Add(p, r2.Scale(3*u*u*t, p1))
	p = r2.Add(p, r2.Scale(3*u*t*t, p2))
	return r2.Add(p, r2.Scale(t*t*t, p3))
}
