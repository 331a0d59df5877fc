package engine

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/inamate/vecedit/internal/shape"
	"gonum.org/v1/gonum/spatial/r2"
)

// Command is an executable, invertible unit of edit history. Execute is
// called again for redo, so it must be repeatable after Undo.
type Command interface {
	Execute()
	Undo()
}

// ShapeData describes a shape to add: explicit commands, or a profile when
// Commands is empty. With neither, the default angle profile is used.
type ShapeData struct {
	Commands []shape.PathCommand `json:"commands,omitempty"`
	Profile  *shape.Profile      `json:"profile,omitempty"`
	Style    *shape.Style        `json:"style,omitempty"`
}

func (d ShapeData) build(s *shape.Shape) error {
	if len(d.Commands) > 0 {
		for _, c := range d.Commands {
			s.Append(c)
		}
	} else {
		p := shape.DefaultProfile(shape.ProfileAngle)
		if d.Profile != nil {
			p = *d.Profile
		}
		if err := s.SetProfile(p); err != nil {
			return err
		}
	}
	if d.Style != nil {
		s.SetStyle(*d.Style)
	}
	return nil
}

func (d ShapeData) validate() error {
	for i, c := range d.Commands {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
	}
	if len(d.Commands) == 0 && d.Profile != nil {
		if _, err := shape.Generate(*d.Profile); err != nil {
			return err
		}
	}
	return nil
}

// AddShapeCommand creates a shape on first execution. Undo removes that
// exact instance and redo puts the same instance back, so its id survives.
type AddShapeCommand struct {
	registry *Registry
	data     ShapeData
	position r2.Vec

	shape *shape.Shape
	index int
}

// NewAddShapeCommand validates data up front so Execute cannot fail.
func NewAddShapeCommand(reg *Registry, data ShapeData, position r2.Vec) (*AddShapeCommand, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	return &AddShapeCommand{registry: reg, data: data, position: position, index: -1}, nil
}

func (c *AddShapeCommand) Execute() {
	if c.shape != nil {
		c.registry.InsertAt(c.shape, c.index)
		return
	}
	s, err := c.registry.Create(func(s *shape.Shape) error {
		if err := c.data.build(s); err != nil {
			return err
		}
		s.SetPosition(c.position)
		return nil
	})
	if err != nil {
		// data was validated in NewAddShapeCommand
		panic(fmt.Sprintf("engine: add shape: %v", err))
	}
	c.shape = s
}

func (c *AddShapeCommand) Undo() {
	if c.shape == nil {
		return
	}
	c.index = c.registry.Remove(c.shape)
	if c.index < 0 {
		slog.Warn("undo add: shape no longer registered", "shape", c.shape.ID())
		c.index = c.registry.Len()
	}
}

// Shape returns the created shape, or nil before the first Execute.
func (c *AddShapeCommand) Shape() *shape.Shape { return c.shape }

type removed struct {
	shape *shape.Shape
	index int
}

// RemoveShapeCommand deletes shapes and restores the same instances at
// their former z-order on undo. Shapes that were selected when removed are
// selected again.
type RemoveShapeCommand struct {
	registry *Registry
	targets  []*shape.Shape
	removed  []removed
	selected []*shape.Shape
}

func NewRemoveShapeCommand(reg *Registry, targets []*shape.Shape) *RemoveShapeCommand {
	return &RemoveShapeCommand{registry: reg, targets: slices.Clone(targets)}
}

func (c *RemoveShapeCommand) Execute() {
	c.removed = c.removed[:0]
	c.selected = nil
	if sel := c.registry.selection; sel != nil {
		for _, s := range sel.items {
			if slices.Contains(c.targets, s) {
				c.selected = append(c.selected, s)
			}
		}
	}
	for _, s := range c.targets {
		i := c.registry.IndexOf(s)
		if i < 0 {
			slog.Warn("remove: shape not registered", "shape", s.ID())
			continue
		}
		c.removed = append(c.removed, removed{shape: s, index: i})
	}
	slices.SortFunc(c.removed, func(a, b removed) int { return cmp.Compare(a.index, b.index) })
	for _, r := range slices.Backward(c.removed) {
		c.registry.Remove(r.shape)
	}
}

func (c *RemoveShapeCommand) Undo() {
	for _, r := range c.removed {
		if c.registry.Contains(r.shape) {
			slog.Warn("undo remove: shape already registered", "shape", r.shape.ID())
			continue
		}
		c.registry.InsertAt(r.shape, r.index)
	}
	if sel := c.registry.selection; sel != nil {
		for _, s := range c.selected {
			if c.registry.Contains(s) {
				sel.Add(s)
			}
		}
	}
}

// MoveShapeCommand translates shapes by the vector from first to last.
type MoveShapeCommand struct {
	registry *Registry
	targets  []*shape.Shape
	first    r2.Vec
	last     r2.Vec
}

func NewMoveShapeCommand(reg *Registry, targets []*shape.Shape, first, last r2.Vec) *MoveShapeCommand {
	return &MoveShapeCommand{registry: reg, targets: slices.Clone(targets), first: first, last: last}
}

func (c *MoveShapeCommand) Execute() { c.apply(r2.Sub(c.last, c.first)) }

func (c *MoveShapeCommand) Undo() { c.apply(r2.Sub(c.first, c.last)) }

func (c *MoveShapeCommand) apply(delta r2.Vec) {
	for _, s := range c.targets {
		if !c.registry.Contains(s) {
			slog.Warn("move: shape not registered", "shape", s.ID())
			continue
		}
		s.Translate(delta)
	}
}
