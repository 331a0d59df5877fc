package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/inamate/vecedit/internal/geometry"
	"github.com/inamate/vecedit/internal/shape"
	"github.com/inamate/vecedit/internal/snap"
	"gonum.org/v1/gonum/spatial/r2"
)

var ErrShapeNotFound = errors.New("shape not found")

// DefaultHitTolerance is the outline pick distance in screen pixels.
const DefaultHitTolerance = 3.0

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	// SnapRadius is the snap tolerance in screen pixels.
	SnapRadius float64
	// HistoryLimit caps the undo stack; 0 keeps everything.
	HistoryLimit int
	// HitTolerance is the outline pick distance in screen pixels.
	HitTolerance float64
	// DisableSnapping turns off snapping of move gestures.
	DisableSnapping bool
}

// Engine is one editing session: the shape registry, the selection, the
// undo history and the snap engine. It is not safe for concurrent use.
type Engine struct {
	registry  *Registry
	selection *Selection
	history   *History
	snap      *snap.Engine

	snapping     bool
	snapPx       float64
	hitPx        float64
	zoom         float64
	pan          r2.Vec
	move         *moveGesture
	onChangeHook func()
}

// NewEngine creates an empty session.
func NewEngine(opts Options) *Engine {
	sel := NewSelection()
	if opts.SnapRadius <= 0 {
		opts.SnapRadius = snap.DefaultRadius
	}
	if opts.HitTolerance <= 0 {
		opts.HitTolerance = DefaultHitTolerance
	}
	return &Engine{
		registry:  NewRegistry(sel),
		selection: sel,
		history:   NewHistory(opts.HistoryLimit),
		snap:      snap.New(opts.SnapRadius),
		snapping:  !opts.DisableSnapping,
		snapPx:    opts.SnapRadius,
		hitPx:     opts.HitTolerance,
		zoom:      1,
	}
}

func (e *Engine) Registry() *Registry   { return e.registry }
func (e *Engine) Selection() *Selection { return e.selection }
func (e *Engine) History() *History     { return e.history }
func (e *Engine) Snapper() *snap.Engine { return e.snap }

// OnChange registers fn to be called after every edit that changes shapes.
func (e *Engine) OnChange(fn func()) { e.onChangeHook = fn }

func (e *Engine) changed() {
	if e.onChangeHook != nil {
		e.onChangeHook()
	}
}

// SetZoom rescales the snap radius, hit tolerance and curve sampling so
// they stay constant on screen.
func (e *Engine) SetZoom(zoom float64) {
	if zoom <= 0 {
		zoom = 1
	}
	e.zoom = zoom
	e.snap.SetRadius(snap.RadiusForZoom(e.snapPx, zoom))
}

func (e *Engine) Zoom() float64 { return e.zoom }

// SetPan sets the screen position of the world origin.
func (e *Engine) SetPan(p r2.Vec) { e.pan = p }

func (e *Engine) Pan() r2.Vec { return e.pan }

// Resolution is the curve sampling step used for picking at the current
// zoom, about one sample per screen pixel.
func (e *Engine) Resolution() float64 { return shape.ResolutionForZoom(e.zoom) }

// View returns the world-to-screen transform: zoom about the origin, then
// pan.
func (e *Engine) View() geometry.Matrix2D {
	return geometry.Translate(e.pan.X, e.pan.Y).Multiply(geometry.Scale(e.zoom, e.zoom))
}

// ScreenToWorld maps a canvas pixel position to world coordinates.
func (e *Engine) ScreenToWorld(p r2.Vec) r2.Vec {
	inv, ok := e.View().Invert()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// ScreenRectToWorld maps a brush rectangle drawn on the canvas to world
// coordinates.
func (e *Engine) ScreenRectToWorld(r geometry.Rect) geometry.Rect {
	inv, ok := e.View().Invert()
	if !ok {
		return r
	}
	return inv.TransformRect(r)
}

func (e *Engine) SetSnapping(on bool) { e.snapping = on }

// --- Commands ---

// AddShape creates a shape from data at position and records it.
func (e *Engine) AddShape(data ShapeData, position r2.Vec) (*shape.Shape, error) {
	cmd, err := NewAddShapeCommand(e.registry, data, position)
	if err != nil {
		return nil, fmt.Errorf("add shape: %w", err)
	}
	e.execute(cmd)
	return cmd.Shape(), nil
}

// RemoveShape deletes the selected shapes. It does nothing and reports
// false when the selection is empty.
func (e *Engine) RemoveShape() bool {
	if e.selection.IsEmpty() {
		return false
	}
	e.execute(NewRemoveShapeCommand(e.registry, e.selection.Items()))
	return true
}

// MoveShape translates the selected shapes by last - first. Identical points
// or an empty selection record nothing.
func (e *Engine) MoveShape(first, last r2.Vec) bool {
	if first == last || e.selection.IsEmpty() {
		return false
	}
	e.execute(NewMoveShapeCommand(e.registry, e.selection.Items(), first, last))
	return true
}

func (e *Engine) execute(cmd Command) {
	e.CancelMove()
	e.history.Execute(cmd)
	e.changed()
}

func (e *Engine) Undo() bool {
	e.CancelMove()
	if !e.history.Undo() {
		return false
	}
	e.changed()
	return true
}

func (e *Engine) Redo() bool {
	e.CancelMove()
	if !e.history.Redo() {
		return false
	}
	e.changed()
	return true
}

// --- Selection ---

// Shapes returns the live shapes back to front.
func (e *Engine) Shapes() []*shape.Shape { return e.registry.Shapes() }

func (e *Engine) ShapeByID(id int64) (*shape.Shape, bool) { return e.registry.ByID(id) }

// HitTest returns the topmost shape at p, or nil.
func (e *Engine) HitTest(p r2.Vec) *shape.Shape {
	return hitTest(e.registry.shapes, p, e.hitPx/e.zoom, e.Resolution())
}

// ClickAt selects the shape under p the way a pointer click does and
// returns it. Clicking empty canvas clears the selection.
func (e *Engine) ClickAt(p r2.Vec, multi bool) *shape.Shape {
	s := e.HitTest(p)
	e.selection.SelectAt(s, multi)
	return s
}

// Select applies SelectAt to the shape with the given id.
func (e *Engine) Select(id int64, multi bool) error {
	s, ok := e.registry.ByID(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrShapeNotFound, id)
	}
	e.selection.SelectAt(s, multi)
	return nil
}

// SelectIDs replaces the selection. Unknown ids are ignored.
func (e *Engine) SelectIDs(ids []int64) {
	var shapes []*shape.Shape
	for _, id := range ids {
		if s, ok := e.registry.ByID(id); ok {
			shapes = append(shapes, s)
		}
	}
	e.selection.Set(shapes)
}

func (e *Engine) ClearSelection() { e.selection.Clear() }

func (e *Engine) SelectedIDs() []int64 { return e.selection.IDs() }

// SelectInRect replaces the selection with the shapes picked by a brush
// rectangle. In window mode a shape must lie entirely inside r; in crossing
// mode touching r is enough.
func (e *Engine) SelectInRect(r geometry.Rect, crossing bool) []int64 {
	var picked []*shape.Shape
	res := e.Resolution()
	for _, s := range e.registry.shapes {
		b, ok := s.BoundsAt(res)
		if !ok {
			continue
		}
		if crossing && r.Intersects(b) || !crossing && r.ContainsRect(b) {
			picked = append(picked, s)
		}
	}
	e.selection.Set(picked)
	return e.selection.IDs()
}

// SelectionBounds returns the world bounds of the selection.
func (e *Engine) SelectionBounds() (geometry.Rect, bool) {
	return shapesBounds(e.selection.items, e.Resolution())
}

// BringToFront moves the selected shapes to the top, keeping their relative
// order. Z-order changes are not recorded in history.
func (e *Engine) BringToFront() {
	if e.selection.IsEmpty() {
		return
	}
	for _, s := range e.selectedByZ() {
		e.registry.MoveToIndex(s, e.registry.Len())
	}
	e.changed()
}

// SendToBack moves the selected shapes to the bottom, keeping their
// relative order.
func (e *Engine) SendToBack() {
	if e.selection.IsEmpty() {
		return
	}
	for i, s := range e.selectedByZ() {
		e.registry.MoveToIndex(s, i)
	}
	e.changed()
}

func (e *Engine) selectedByZ() []*shape.Shape {
	var out []*shape.Shape
	for _, s := range e.registry.shapes {
		if e.selection.Contains(s) {
			out = append(out, s)
		}
	}
	return out
}

// --- Snapping ---

// SnapPoint returns the nearest snap feature to p. With excludeSelected the
// selected shapes are not considered.
func (e *Engine) SnapPoint(p r2.Vec, excludeSelected bool) (snap.Feature, bool) {
	shapes := e.registry.shapes
	if excludeSelected {
		shapes = slices.DeleteFunc(e.registry.Shapes(), e.selection.Contains)
	}
	return e.snap.Nearest(p, shapes)
}

func (e *Engine) snapTo(p r2.Vec, excludeSelected bool) r2.Vec {
	if !e.snapping {
		return p
	}
	if f, ok := e.SnapPoint(p, excludeSelected); ok {
		return f.Point
	}
	return p
}

// --- Rendering and persistence ---

// DrawList returns the render commands for all shapes, back to front.
func (e *Engine) DrawList() []DrawCommand {
	var overlay *r2.Vec
	if e.move != nil {
		d := e.move.offset()
		overlay = &d
	}
	return compileDrawCommands(e.registry.shapes, e.selection, overlay)
}

// Render returns DrawList as JSON.
func (e *Engine) Render() string {
	out, _ := DrawCommandsToJSON(e.DrawList())
	return out
}

// Snapshot serializes every shape in registry order.
func (e *Engine) Snapshot() []shape.Record {
	records := make([]shape.Record, 0, e.registry.Len())
	for _, s := range e.registry.shapes {
		records = append(records, s.Serialize())
	}
	return records
}

// Load replaces the session contents with records, in stored order, and
// regenerates each contour. History and selection are cleared. On error
// the session is left untouched.
func (e *Engine) Load(records []shape.Record) error {
	shapes := make([]*shape.Shape, 0, len(records))
	seen := make(map[int64]bool, len(records))
	for _, r := range records {
		if seen[r.ID] {
			return fmt.Errorf("load: duplicate shape id %d", r.ID)
		}
		seen[r.ID] = true
		s, err := shape.Deserialize(r)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		if err := s.Regenerate(); err != nil {
			return fmt.Errorf("load shape %d: %w", r.ID, err)
		}
		shapes = append(shapes, s)
	}

	e.CancelMove()
	e.registry.Clear()
	e.history.Clear()
	for _, s := range shapes {
		e.registry.Insert(s)
	}
	return nil
}
