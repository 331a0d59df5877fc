package engine

import (
	"encoding/json"

	"github.com/inamate/vecedit/internal/geometry"
	"github.com/inamate/vecedit/internal/shape"
	"gonum.org/v1/gonum/spatial/r2"
)

// DrawCommand is one shape as the renderer needs it. The path stays in
// local coordinates; Transform maps it to the world.
type DrawCommand struct {
	Op        string    `json:"op"`
	ObjectID  int64     `json:"objectId"`
	Transform []float64 `json:"transform"`

	// Committed transform triple. Transform also carries the drag overlay.
	Position [2]float64 `json:"position"`
	Angle    float64    `json:"angle"`
	Scale    [2]float64 `json:"scale"`

	Path        []shape.PathCommand `json:"path"`
	Fill        string              `json:"fill,omitempty"`
	Stroke      string              `json:"stroke,omitempty"`
	StrokeWidth float64             `json:"strokeWidth,omitempty"`
	Opacity     float64             `json:"opacity,omitempty"`
	Closed      bool                `json:"closed"`
	Selected    bool                `json:"selected,omitempty"`
	Preview     bool                `json:"preview,omitempty"`
}

// compileDrawCommands builds the draw list in painter's order (back to
// front). Selected shapes are offset by overlay while a move is in
// progress.
func compileDrawCommands(shapes []*shape.Shape, sel *Selection, overlay *r2.Vec) []DrawCommand {
	commands := make([]DrawCommand, 0, len(shapes))
	for _, s := range shapes {
		m := s.WorldMatrix()
		selected := sel.Contains(s)
		preview := selected && overlay != nil
		if preview {
			m = geometry.Translate(overlay.X, overlay.Y).Multiply(m)
		}
		style := s.Style()
		pos, scale := s.Position(), s.Scale()
		cmd := DrawCommand{
			Op:          "path",
			ObjectID:    s.ID(),
			Transform:   m.ToSlice(),
			Position:    [2]float64{pos.X, pos.Y},
			Angle:       s.Angle(),
			Scale:       [2]float64{scale.X, scale.Y},
			Path:        s.Commands(),
			Stroke:      style.Stroke,
			StrokeWidth: style.StrokeWidth,
			Opacity:     style.Opacity,
			Closed:      s.IsClosed(),
			Selected:    selected,
			Preview:     preview,
		}
		if cmd.Closed {
			cmd.Fill = style.Fill
		}
		commands = append(commands, cmd)
	}
	return commands
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// hitTest returns the topmost shape under p. Closed shapes are hit inside
// their contour, any shape is hit within tolerance of its outline. Curves
// are sampled at res.
func hitTest(shapes []*shape.Shape, p r2.Vec, tolerance, res float64) *shape.Shape {
	for i := len(shapes) - 1; i >= 0; i-- {
		s := shapes[i]
		b, ok := s.BoundsAt(res)
		if !ok {
			continue
		}
		tol := max(tolerance, s.Style().StrokeWidth/2)
		if !b.Inflate(tol).Contains(p.X, p.Y) {
			continue
		}
		if s.ContainsAt(p, res) || s.DistanceToOutlineAt(p, res) <= tol {
			return s
		}
	}
	return nil
}

// shapesBounds returns the combined world bounds of the given shapes. The
// second result is false when none of them has a contour.
func shapesBounds(shapes []*shape.Shape, res float64) (geometry.Rect, bool) {
	var out geometry.Rect
	found := false
	for _, s := range shapes {
		b, ok := s.BoundsAt(res)
		if !ok {
			continue
		}
		if found {
			out = out.Union(b)
		} else {
			out, found = b, true
		}
	}
	return out, found
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r geometry.Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
