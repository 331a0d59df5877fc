package engine

import (
	"slices"

	"github.com/inamate/vecedit/internal/shape"
)

// Selection is an ordered set of shapes. Order is the order of selection.
type Selection struct {
	items []*shape.Shape
}

func NewSelection() *Selection {
	return &Selection{}
}

// SelectAt applies a click on s. With multi the shape is toggled, otherwise
// the selection becomes exactly {s}. A nil shape (click on empty canvas)
// always clears the selection, multi or not.
func (sel *Selection) SelectAt(s *shape.Shape, multi bool) {
	switch {
	case s == nil:
		sel.Clear()
	case multi:
		sel.Toggle(s)
	default:
		sel.items = []*shape.Shape{s}
	}
}

// Add selects s if it is not already selected.
func (sel *Selection) Add(s *shape.Shape) {
	if s == nil || sel.Contains(s) {
		return
	}
	sel.items = append(sel.items, s)
}

func (sel *Selection) Remove(s *shape.Shape) {
	if i := slices.Index(sel.items, s); i >= 0 {
		sel.items = slices.Delete(sel.items, i, i+1)
	}
}

func (sel *Selection) Toggle(s *shape.Shape) {
	if sel.Contains(s) {
		sel.Remove(s)
		return
	}
	sel.Add(s)
}

// Set replaces the selection, dropping duplicates and nils.
func (sel *Selection) Set(shapes []*shape.Shape) {
	sel.items = nil
	for _, s := range shapes {
		sel.Add(s)
	}
}

func (sel *Selection) Clear() { sel.items = nil }

func (sel *Selection) IsEmpty() bool { return len(sel.items) == 0 }

func (sel *Selection) Len() int { return len(sel.items) }

func (sel *Selection) Contains(s *shape.Shape) bool {
	return slices.Contains(sel.items, s)
}

// Items returns a copy of the selected shapes.
func (sel *Selection) Items() []*shape.Shape {
	return slices.Clone(sel.items)
}

// IDs returns the ids of the selected shapes in selection order.
func (sel *Selection) IDs() []int64 {
	ids := make([]int64, len(sel.items))
	for i, s := range sel.items {
		ids[i] = s.ID()
	}
	return ids
}
