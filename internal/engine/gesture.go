package engine

import "gonum.org/v1/gonum/spatial/r2"

// moveGesture is the state of a two-point move between BeginMove and
// CommitMove. Nothing in the registry changes until commit.
type moveGesture struct {
	start   r2.Vec
	current r2.Vec
}

func (g *moveGesture) offset() r2.Vec { return r2.Sub(g.current, g.start) }

// BeginMove starts moving the selection from p. The start point snaps to
// any shape, including the selected ones. It returns the effective start
// and false when the selection is empty.
func (e *Engine) BeginMove(p r2.Vec) (r2.Vec, bool) {
	if e.selection.IsEmpty() {
		return p, false
	}
	start := e.snapTo(p, false)
	e.move = &moveGesture{start: start, current: start}
	return start, true
}

// UpdateMove moves the drag overlay to p, snapped to unselected shapes, and
// returns the effective point.
func (e *Engine) UpdateMove(p r2.Vec) (r2.Vec, bool) {
	if e.move == nil {
		return p, false
	}
	e.move.current = e.snapTo(p, true)
	return e.move.current, true
}

// CommitMove ends the gesture at p and records a MoveShapeCommand. It
// reports whether anything moved.
func (e *Engine) CommitMove(p r2.Vec) bool {
	if e.move == nil {
		return false
	}
	start := e.move.start
	end := e.snapTo(p, true)
	e.move = nil
	return e.MoveShape(start, end)
}

// CancelMove drops a gesture in progress without touching the shapes or the
// history.
func (e *Engine) CancelMove() {
	e.move = nil
}

func (e *Engine) MoveInProgress() bool { return e.move != nil }

// MoveOffset returns the current drag overlay offset.
func (e *Engine) MoveOffset() (r2.Vec, bool) {
	if e.move == nil {
		return r2.Vec{}, false
	}
	return e.move.offset(), true
}
