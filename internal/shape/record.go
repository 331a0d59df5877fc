package shape

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Record is the persisted form of a shape.
type Record struct {
	ID       int64         `json:"id"`
	Commands []PathCommand `json:"commands"`
	Position [2]float64    `json:"position"`
	Angle    float64       `json:"angle"`
	Scale    [2]float64    `json:"scale"`
	Style    Style         `json:"style"`
	Profile  *Profile      `json:"profile,omitempty"`
}

// Serialize captures the shape as a Record. The record shares no memory
// with the shape.
func (s *Shape) Serialize() Record {
	r := Record{
		ID:       s.id,
		Commands: s.Commands(),
		Position: [2]float64{s.position.X, s.position.Y},
		Angle:    s.angle,
		Scale:    [2]float64{s.scale.X, s.scale.Y},
		Style:    s.style,
	}
	if s.profile.IsParametric() {
		p := s.profile.clone()
		r.Profile = &p
	}
	return r
}

// Deserialize rebuilds a shape by replaying the recorded commands and then
// applying the recorded transform. A missing scale is read as (1, 1).
func Deserialize(r Record) (*Shape, error) {
	s := New(r.ID)
	for i, c := range r.Commands {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("shape %d command %d: %w", r.ID, i, err)
		}
		s.Append(c)
	}
	scale := r2.Vec{X: r.Scale[0], Y: r.Scale[1]}
	if scale == (r2.Vec{}) {
		scale = r2.Vec{X: 1, Y: 1}
	}
	s.SetTransform(r2.Vec{X: r.Position[0], Y: r.Position[1]}, r.Angle, scale)
	s.style = r.Style
	if r.Profile != nil {
		s.profile = r.Profile.clone()
	}
	return s, nil
}
