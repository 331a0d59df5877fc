package document

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/inamate/vecedit/internal/shape"
)

// FormatVersion is bumped whenever the stored layout changes.
const FormatVersion = 1

// InDocument is a persisted project: metadata plus the shapes in z-order.
type InDocument struct {
	Project Project        `json:"project"`
	Canvas  Canvas         `json:"canvas"`
	Shapes  []shape.Record `json:"shapes"`
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Canvas describes the drawing area. The y axis points up.
type Canvas struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`
	Grid       int    `json:"grid"`
}

func defaultCanvas() Canvas {
	return Canvas{Width: 1280, Height: 720, Background: "#ffffff", Grid: 10}
}

// NewEmptyDocument creates an empty document for a new project
func NewEmptyDocument(projectID, projectName string) *InDocument {
	now := time.Now().UTC().Format(time.RFC3339)
	return &InDocument{
		Project: Project{
			ID:        projectID,
			Name:      projectName,
			Version:   FormatVersion,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Canvas: defaultCanvas(),
		Shapes: []shape.Record{},
	}
}

// Parse decodes a stored document and checks its version.
func Parse(data []byte) (*InDocument, error) {
	var doc InDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Project.Version > FormatVersion {
		return nil, fmt.Errorf("document version %d is newer than supported %d", doc.Project.Version, FormatVersion)
	}
	if doc.Shapes == nil {
		doc.Shapes = []shape.Record{}
	}
	return &doc, nil
}

// Marshal encodes the document for storage.
func (d *InDocument) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// Touch sets UpdatedAt to now.
func (d *InDocument) Touch() {
	d.Project.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}
