package shape

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// CommandType tags the variant held by a PathCommand.
type CommandType string

const (
	CmdMoveTo   CommandType = "moveTo"
	CmdLineTo   CommandType = "lineTo"
	CmdArcTo    CommandType = "arcTo"
	CmdBezierTo CommandType = "bezierTo"
	CmdClose    CommandType = "close"
)

// PathCommand is a single contour segment in local coordinates.
//
// Field use per type:
//   - moveTo, lineTo: X, Y is the target point
//   - arcTo: CX, CY, Radius, StartAngle, EndAngle (degrees), Clockwise
//   - bezierTo: CP1X, CP1Y, CP2X, CP2Y control points, X, Y end point
//   - close: no fields
type PathCommand struct {
	Type       CommandType `json:"type"`
	X          float64     `json:"x,omitempty"`
	Y          float64     `json:"y,omitempty"`
	CX         float64     `json:"cx,omitempty"`
	CY         float64     `json:"cy,omitempty"`
	Radius     float64     `json:"radius,omitempty"`
	StartAngle float64     `json:"startAngle,omitempty"`
	EndAngle   float64     `json:"endAngle,omitempty"`
	Clockwise  bool        `json:"clockwise,omitempty"`
	CP1X       float64     `json:"cp1x,omitempty"`
	CP1Y       float64     `json:"cp1y,omitempty"`
	CP2X       float64     `json:"cp2x,omitempty"`
	CP2Y       float64     `json:"cp2y,omitempty"`
}

func MoveTo(x, y float64) PathCommand {
	return PathCommand{Type: CmdMoveTo, X: x, Y: y}
}

func LineTo(x, y float64) PathCommand {
	return PathCommand{Type: CmdLineTo, X: x, Y: y}
}

// ArcTo describes a circular arc around (cx, cy). Angles are in degrees with
// 0 on the +X axis; the arc runs counter-clockwise unless clockwise is set.
func ArcTo(cx, cy, radius, startAngle, endAngle float64, clockwise bool) PathCommand {
	return PathCommand{
		Type:       CmdArcTo,
		CX:         cx,
		CY:         cy,
		Radius:     radius,
		StartAngle: startAngle,
		EndAngle:   endAngle,
		Clockwise:  clockwise,
	}
}

func BezierTo(cp1x, cp1y, cp2x, cp2y, x, y float64) PathCommand {
	return PathCommand{
		Type: CmdBezierTo,
		CP1X: cp1x, CP1Y: cp1y,
		CP2X: cp2x, CP2Y: cp2y,
		X: x, Y: y,
	}
}

func Close() PathCommand {
	return PathCommand{Type: CmdClose}
}

// End returns the local point where the pen rests after the command.
// For close the result is meaningless and ok is false.
func (c PathCommand) End() (p r2.Vec, ok bool) {
	switch c.Type {
	case CmdMoveTo, CmdLineTo, CmdBezierTo:
		return r2.Vec{X: c.X, Y: c.Y}, true
	case CmdArcTo:
		sweep := ArcSweep(c.StartAngle, c.EndAngle, c.Clockwise)
		return arcPoint(c, c.StartAngle+sweep), true
	}
	return r2.Vec{}, false
}

// ArcStart returns the local point where an arc begins.
func (c PathCommand) ArcStart() r2.Vec {
	return arcPoint(c, c.StartAngle)
}

// Validate checks the command type and that every coordinate is finite.
func (c PathCommand) Validate() error {
	switch c.Type {
	case CmdMoveTo, CmdLineTo, CmdArcTo, CmdBezierTo, CmdClose:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
	for _, v := range [...]float64{c.X, c.Y, c.CX, c.CY, c.Radius, c.StartAngle, c.EndAngle, c.CP1X, c.CP1Y, c.CP2X, c.CP2Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value in %s", ErrInvalidCommand, c.Type)
		}
	}
	if c.Type == CmdArcTo && c.Radius < 0 {
		return fmt.Errorf("%w: negative arc radius %v", ErrInvalidCommand, c.Radius)
	}
	return nil
}

// ArcSweep returns the signed sweep in degrees travelled from start to end.
// Both directions are normalized the same way: the distance is taken modulo
// 360 in the direction of travel, so it lies in [0, 360). A zero remainder
// with distinct angles is a full turn. Clockwise sweeps are negative.
func ArcSweep(start, end float64, clockwise bool) float64 {
	delta := end - start
	if clockwise {
		delta = -delta
	}
	sweep := math.Mod(delta, 360)
	if sweep < 0 {
		sweep += 360
	}
	if sweep == 0 && delta != 0 {
		sweep = 360
	}
	if clockwise {
		return -sweep
	}
	return sweep
}

func arcPoint(c PathCommand, degrees float64) r2.Vec {
	rad := degrees * math.Pi / 180
	return r2.Vec{
		X: c.CX + c.Radius*math.Cos(rad),
		Y: c.CY + c.Radius*math.Sin(rad),
	}
}
