// Package dispatch maps named editing operations with JSON arguments onto
// an engine.Engine. The server and the wasm bridge share it.
package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/inamate/vecedit/internal/engine"
	"github.com/inamate/vecedit/internal/geometry"
	"github.com/inamate/vecedit/internal/shape"
	"github.com/inamate/vecedit/internal/snap"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrUnknownOp = errors.New("unknown operation")
	ErrBadArgs   = errors.New("invalid arguments")
)

// Point is a coordinate pair on the wire. Points are in world units unless
// the arguments carry "screen": true.
type Point [2]float64

func (p Point) vec() r2.Vec { return r2.Vec{X: p[0], Y: p[1]} }

func pointOf(v r2.Vec) Point { return Point{v.X, v.Y} }

// DrawResult is what a client needs to repaint the canvas.
type DrawResult struct {
	Commands  []engine.DrawCommand `json:"commands"`
	Selection []int64              `json:"selection"`
	Bounds    *geometry.Rect       `json:"bounds,omitempty"`
	CanUndo   bool                 `json:"canUndo"`
	CanRedo   bool                 `json:"canRedo"`
}

func Draw(e *engine.Engine) DrawResult {
	res := DrawResult{
		Commands:  e.DrawList(),
		Selection: e.SelectedIDs(),
		CanUndo:   e.History().CanUndo(),
		CanRedo:   e.History().CanRedo(),
	}
	if res.Selection == nil {
		res.Selection = []int64{}
	}
	if b, ok := e.SelectionBounds(); ok {
		res.Bounds = &b
	}
	return res
}

type SnapResult struct {
	Found   bool             `json:"found"`
	Type    snap.FeatureType `json:"type,omitempty"`
	Point   Point            `json:"point"`
	ShapeID int64            `json:"shapeId,omitempty"`
}

type addShapeArgs struct {
	engine.ShapeData
	Position *Point `json:"position,omitempty"`
}

type moveArgs struct {
	First *Point `json:"first"`
	Last  *Point `json:"last"`
}

type pointArgs struct {
	Point  *Point `json:"point"`
	Multi  bool   `json:"multi,omitempty"`
	Screen bool   `json:"screen,omitempty"`
}

// world returns the point in world coordinates.
func (a pointArgs) world(e *engine.Engine) (r2.Vec, error) {
	p, err := requirePoint(a.Point, "point")
	if err != nil || !a.Screen {
		return p, err
	}
	return e.ScreenToWorld(p), nil
}

type selectArgs struct {
	ID    *int64  `json:"id,omitempty"`
	IDs   []int64 `json:"ids,omitempty"`
	Multi bool    `json:"multi,omitempty"`
}

// selectRectArgs takes either rect or the two drag corners from and to.
type selectRectArgs struct {
	Rect     *geometry.Rect `json:"rect,omitempty"`
	From     *Point         `json:"from,omitempty"`
	To       *Point         `json:"to,omitempty"`
	Crossing bool           `json:"crossing,omitempty"`
	Screen   bool           `json:"screen,omitempty"`
}

type snapArgs struct {
	Point           *Point `json:"point"`
	ExcludeSelected bool   `json:"excludeSelected,omitempty"`
}

type zoomArgs struct {
	Zoom float64 `json:"zoom"`
}

type viewArgs struct {
	Zoom *float64 `json:"zoom,omitempty"`
	Pan  *Point   `json:"pan,omitempty"`
}

type opFunc func(e *engine.Engine, args json.RawMessage) (any, error)

type opSpec struct {
	run opFunc
	// sync marks operations after which connected clients must redraw.
	sync bool
}

var operations = map[string]opSpec{
	"addShape":       {run: opAddShape, sync: true},
	"removeShape":    {run: opRemoveShape, sync: true},
	"moveShape":      {run: opMoveShape, sync: true},
	"undo":           {run: opUndo, sync: true},
	"redo":           {run: opRedo, sync: true},
	"select":         {run: opSelect, sync: true},
	"clickAt":        {run: opClickAt, sync: true},
	"selectRect":     {run: opSelectRect, sync: true},
	"clearSelection": {run: opClearSelection, sync: true},
	"bringToFront":   {run: opBringToFront, sync: true},
	"sendToBack":     {run: opSendToBack, sync: true},
	"beginMove":      {run: opBeginMove, sync: true},
	"updateMove":     {run: opUpdateMove, sync: true},
	"commitMove":     {run: opCommitMove, sync: true},
	"cancelMove":     {run: opCancelMove, sync: true},
	"snap":           {run: opSnap},
	"hitTest":        {run: opHitTest},
	"setZoom":        {run: opSetZoom},
	"setView":        {run: opSetView},
	"draw":           {run: opDraw},
}

// Operations lists the names Run accepts, sorted.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Run executes the named operation against e. It returns the operation's
// result and whether clients viewing e should redraw.
func Run(e *engine.Engine, op string, args json.RawMessage) (any, bool, error) {
	spec, ok := operations[op]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownOp, op)
	}
	res, err := spec.run(e, args)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return res, spec.sync, nil
}

// IsRequestError reports whether err was caused by the request rather than
// the server.
func IsRequestError(err error) bool {
	for _, target := range []error{
		ErrUnknownOp,
		ErrBadArgs,
		engine.ErrShapeNotFound,
		shape.ErrUnknownCommand,
		shape.ErrInvalidCommand,
		shape.ErrUnknownProfile,
		shape.ErrInvalidProfile,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func decodeArgs[T any](args json.RawMessage) (T, error) {
	var v T
	if len(args) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(args, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	return v, nil
}

func requirePoint(p *Point, name string) (r2.Vec, error) {
	if p == nil {
		return r2.Vec{}, fmt.Errorf("%w: %s is required", ErrBadArgs, name)
	}
	return p.vec(), nil
}

func opAddShape(e *engine.Engine, args json.RawMessage) (any, error) {
	a, err := decodeArgs[addShapeArgs](args)
	if err != nil {
		return nil, err
	}
	var pos r2.Vec
	if a.Position != nil {
		pos = a.Position.vec()
	}
	s, err := e.AddShape(a.ShapeData, pos)
	if err != nil {
		return nil, err
	}
	return map[string]int64{"id": s.ID()}, nil
}

func opRemoveShape(e *engine.Engine, _ json.RawMessage) (any, error) {
	return map[string]bool{"removed": e.RemoveShape()}, nil
}

func opMoveShape(e *engine.Engine, args json.RawMessage) (any, error) {
	a, err := decodeArgs[moveArgs](args)
	if err != nil {
		return nil, err
	}
	first, err := requirePoint(a.First, "first")
	if err != nil {
		return nil, err
	}
	last, err := requirePoint(a.Last, "last")
	if err != nil {
		return nil, err
	}
	return map[string]bool{"moved": e.MoveShape(first, last)}, nil
}

func opUndo(e *engine.Engine, _ json.RawMessage) (any, error) {
	return map[string]bool{"applied": e.Undo()}, nil
}

func opRedo(e *engine.Engine, _ json.RawMessage) (any, error) {
	return map[string]bool{"applied": e.Redo()}, nil
}

func opSelect(e *engine.Engine, args json.RawMessage) (any, error) {
	a, err := decodeArgs[selectArgs](args)
	if err != nil {
		return nil, err
	}
	switch {
	case a.ID != nil:
		if err := e.Select(*a.ID, a.Multi); err != nil {
			return nil, err
		}
	case a.IDs != nil:
		e.SelectIDs(a.IDs)
	default:
		return nil, fmt.Errorf("%w: id or ids is required", ErrBadArgs)
	}
	return map[string][]int64{"selection": e.SelectedIDs()}, nil
}

func opClickAt(e *engine.Engine, args json.RawMessage) (any, error) {
	a, err := decodeArgs[pointArgs](args)
	if err != nil {
		return nil, err
	}
	p, err := a.world(e)
	if err != nil {
		return nil, err
	}
	var hit int64
	if s := e.ClickAt(p, a.Multi); s != nil {
		hit = s.ID()
	}
	return map[string]any{"hit": hit, "selection": e.SelectedIDs()}, nil
}

func opSelectRect(e *engine.Engine, args json.RawMessage) (any, error) {
	a, err := decodeArgs[selectRectArgs](args)
	if err != nil {
		return nil, err
	}
	var r geometry.Rect
	switch {
	case a.Rect != nil:
		r = *a.Rect
	case a.From != nil && a.To != nil:
		r = geometry.RectFromCorners(a.From.vec(), a.To.vec())
	default:
		return nil, fmt.Errorf("%w: rect or from and to are required", ErrBadArgs)
	}
	if a.Screen {
		r = e.ScreenRectToWorld(r)
	}
	ids := e.SelectInRect(r, a.Crossing)
	if ids == nil {
		ids = []int64{}
	}
	return map[string][]int64{"selection": ids}, nil
}

func opClearSelection(e *engine.Engine, _ json.RawMessage) (any, error) {
	e.ClearSelection()
	return nil, nil
}

func opBringToFront(e *engine.Engine, _ json.RawMessage) (any, error) {
	e.BringToFront()
	return nil, nil
}

func opSendToBack(e *engine.Engine, _ json.RawMessage) (any, error) {
	e.SendToBack()
	return nil, nil
}

func gestureResult(p r2.Vec, active bool) any {
	return map[string]any{"point": pointOf(p), "active": active}
}

func opBeginMove(e *engine.Engine, args json.RawMessage) (any, error) {
	a, err := decodeArgs[pointArgs](args)
	if err != nil {
		return nil, err
	}
	p, err := a.world(e)
	if err != nil {
		return nil, err
	}
	return gestureResult(e.BeginMove(p)), nil
}

func opUpdateMove(e *engine.Engine, args json.RawMessage) (any, error) {
	a, err := decodeArgs[pointArgs](args)
	if err != nil {
		return nil, err
	}
	p, err := a.world(e)
	if err != nil {
		return nil, err
	}
	return gestureResult(e.UpdateMove(p)), nil
}

func opCommitMove(e *engine.Engine, args json.RawMessage) (any, error) {
	a, err := decodeArgs[pointArgs](args)
	if err != nil {
		return nil, err
	}
	p, err := a.world(e)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"moved": e.CommitMove(p)}, nil
}

func opCancelMove(e *engine.Engine, _ json.RawMessage) (any, error) {
	e.CancelMove()
	return nil, nil
}

func opSnap(e *engine.Engine, args json.RawMessage) (any, error) {
	a, err := decodeArgs[snapArgs](args)
	if err != nil {
		return nil, err
	}
	p, err := requirePoint(a.Point, "point")
	if err != nil {
		return nil, err
	}
	f, ok := e.SnapPoint(p, a.ExcludeSelected)
	if !ok {
		return SnapResult{Point: pointOf(p)}, nil
	}
	return SnapResult{Found: true, Type: f.Type, Point: pointOf(f.Point), ShapeID: f.ShapeID}, nil
}

func opHitTest(e *engine.Engine, args json.RawMessage) (any, error) {
	a, err := decodeArgs[pointArgs](args)
	if err != nil {
		return nil, err
	}
	p, err := a.world(e)
	if err != nil {
		return nil, err
	}
	var hit int64
	if s := e.HitTest(p); s != nil {
		hit = s.ID()
	}
	return map[string]int64{"hit": hit}, nil
}

func opSetZoom(e *engine.Engine, args json.RawMessage) (any, error) {
	a, err := decodeArgs[zoomArgs](args)
	if err != nil {
		return nil, err
	}
	if a.Zoom <= 0 {
		return nil, fmt.Errorf("%w: zoom must be positive", ErrBadArgs)
	}
	e.SetZoom(a.Zoom)
	return viewResult(e), nil
}

func opSetView(e *engine.Engine, args json.RawMessage) (any, error) {
	a, err := decodeArgs[viewArgs](args)
	if err != nil {
		return nil, err
	}
	if a.Zoom != nil {
		if *a.Zoom <= 0 {
			return nil, fmt.Errorf("%w: zoom must be positive", ErrBadArgs)
		}
		e.SetZoom(*a.Zoom)
	}
	if a.Pan != nil {
		e.SetPan(a.Pan.vec())
	}
	return viewResult(e), nil
}

func viewResult(e *engine.Engine) map[string]any {
	return map[string]any{
		"zoom":       e.Zoom(),
		"pan":        pointOf(e.Pan()),
		"snapRadius": e.Snapper().Radius(),
		"resolution": e.Resolution(),
		"view":       e.View().ToSlice(),
	}
}

func opDraw(e *engine.Engine, _ json.RawMessage) (any, error) {
	return Draw(e), nil
}
