// Package shape implements the editable vector contour: a sequence of path
// commands placed in the world by a single position/rotation/scale transform.
package shape

import (
	"slices"

	"github.com/inamate/vecedit/internal/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

// Style holds presentation attributes. None of them affect geometry.
type Style struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
}

// DefaultStyle is applied to every new shape.
func DefaultStyle() Style {
	return Style{
		Fill:        "steelblue",
		Stroke:      "red",
		StrokeWidth: 1,
		Opacity:     1,
	}
}

// Shape is a single contour with its transform. The zero value is not usable;
// create shapes with New.
type Shape struct {
	id       int64
	commands []PathCommand
	position r2.Vec
	angle    float64
	scale    r2.Vec
	style    Style
	profile  Profile
}

// New returns an empty custom shape with the identity transform.
func New(id int64) *Shape {
	return &Shape{
		id:      id,
		scale:   r2.Vec{X: 1, Y: 1},
		style:   DefaultStyle(),
		profile: Profile{Kind: ProfileCustom},
	}
}

func (s *Shape) ID() int64 { return s.id }

// Commands returns a copy of the contour.
func (s *Shape) Commands() []PathCommand {
	return slices.Clone(s.commands)
}

func (s *Shape) Len() int { return len(s.commands) }

func (s *Shape) Position() r2.Vec { return s.position }
func (s *Shape) Angle() float64   { return s.angle }
func (s *Shape) Scale() r2.Vec    { return s.scale }
func (s *Shape) Style() Style     { return s.style }
func (s *Shape) Profile() Profile { return s.profile.clone() }

// Append adds a command to the end of the contour. Hand edits turn a
// parametric shape into a custom one.
func (s *Shape) Append(cmd PathCommand) {
	s.commands = append(s.commands, cmd)
	s.profile = Profile{Kind: ProfileCustom}
}

// Close ends the contour. Only closed contours are filled and have an area.
func (s *Shape) Close() {
	s.Append(Close())
}

// IsClosed reports whether the last command is a close.
func (s *Shape) IsClosed() bool {
	return len(s.commands) > 0 && s.commands[len(s.commands)-1].Type == CmdClose
}

// SetTransform replaces position, angle (degrees) and scale together.
func (s *Shape) SetTransform(position r2.Vec, angle float64, scale r2.Vec) {
	s.position = position
	s.angle = angle
	s.scale = scale
}

func (s *Shape) SetPosition(p r2.Vec) { s.position = p }

// Translate moves the shape by delta in world units.
func (s *Shape) Translate(delta r2.Vec) {
	s.position = r2.Add(s.position, delta)
}

func (s *Shape) SetFill(fill string) { s.style.Fill = fill }

func (s *Shape) SetStroke(stroke string, width float64) {
	s.style.Stroke = stroke
	s.style.StrokeWidth = width
}

func (s *Shape) SetOpacity(opacity float64) { s.style.Opacity = opacity }

func (s *Shape) SetStyle(style Style) { s.style = style }

// WorldMatrix returns the local-to-world transform of the shape.
func (s *Shape) WorldMatrix() geometry.Matrix2D {
	return geometry.Compose(s.position, s.angle, s.scale)
}

// SetProfile regenerates the contour from a parametric profile. On error the
// shape is left unchanged.
func (s *Shape) SetProfile(p Profile) error {
	cmds, err := Generate(p)
	if err != nil {
		return err
	}
	s.commands = cmds
	s.profile = p.clone()
	return nil
}

// Regenerate rebuilds the contour from the stored profile. Custom shapes
// keep their commands and are only validated.
func (s *Shape) Regenerate() error {
	if !s.profile.IsParametric() {
		for _, c := range s.commands {
			if err := c.Validate(); err != nil {
				return err
			}
		}
		return nil
	}
	cmds, err := Generate(s.profile)
	if err != nil {
		return err
	}
	s.commands = cmds
	return nil
}
