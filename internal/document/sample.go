package document

import (
	"github.com/inamate/vecedit/internal/shape"
	"gonum.org/v1/gonum/spatial/r2"
)

// NewSampleDocument returns a project with one of each built-in profile laid
// out in a row.
func NewSampleDocument(projectID string) *InDocument {
	doc := NewEmptyDocument(projectID, "Sample profiles")

	kinds := []shape.ProfileKind{
		shape.ProfileAngle,
		shape.ProfilePlate,
		shape.ProfileRadiusPlate,
		shape.ProfileLBeam,
		shape.ProfileTBeam,
	}
	positions := []r2.Vec{
		{X: 40, Y: 40},
		{X: 260, Y: 60},
		{X: 480, Y: 160},
		{X: 560, Y: 40},
		{X: 720, Y: 40},
	}

	for i, kind := range kinds {
		s := shape.New(int64(i + 1))
		s.SetProfile(shape.DefaultProfile(kind))
		s.SetPosition(positions[i])
		doc.Shapes = append(doc.Shapes, s.Serialize())
	}

	note := shape.New(int64(len(kinds) + 1))
	note.Append(shape.MoveTo(40, 300))
	note.Append(shape.BezierTo(120, 380, 200, 220, 280, 300))
	note.SetStroke("#333333", 2)
	doc.Shapes = append(doc.Shapes, note.Serialize())

	return doc
}
