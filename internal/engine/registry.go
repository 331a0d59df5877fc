package engine

import (
	"slices"

	"github.com/inamate/vecedit/internal/shape"
)

// Registry is the ordered list of live shapes. Order is z-order, back to
// front. It is the only place shapes are added to or removed from, and it
// keeps the selection consistent with its contents.
type Registry struct {
	shapes    []*shape.Shape
	nextID    int64
	selection *Selection
}

// NewRegistry creates an empty registry bound to sel. Removing a shape from
// the registry also removes it from sel.
func NewRegistry(sel *Selection) *Registry {
	return &Registry{nextID: 1, selection: sel}
}

// Create makes a new shape with a fresh id, lets init build it and appends
// it on top. If init fails nothing is registered and the id is not used.
func (r *Registry) Create(init func(s *shape.Shape) error) (*shape.Shape, error) {
	s := shape.New(r.nextID)
	if init != nil {
		if err := init(s); err != nil {
			return nil, err
		}
	}
	r.nextID++
	r.shapes = append(r.shapes, s)
	return s, nil
}

// Insert appends an existing shape on top. Shapes already present are
// left where they are.
func (r *Registry) Insert(s *shape.Shape) {
	r.InsertAt(s, len(r.shapes))
}

// InsertAt places s at index i, clamped to the valid range.
func (r *Registry) InsertAt(s *shape.Shape, i int) {
	if r.Contains(s) {
		return
	}
	i = min(max(i, 0), len(r.shapes))
	r.shapes = slices.Insert(r.shapes, i, s)
	if s.ID() >= r.nextID {
		r.nextID = s.ID() + 1
	}
}

// Remove takes s out of the registry and the selection. It returns the
// index s was at, or -1 if it was not registered.
func (r *Registry) Remove(s *shape.Shape) int {
	i := r.IndexOf(s)
	if i < 0 {
		return -1
	}
	r.shapes = slices.Delete(r.shapes, i, i+1)
	if r.selection != nil {
		r.selection.Remove(s)
	}
	return i
}

// Clear removes every shape and empties the selection. Ids keep counting.
func (r *Registry) Clear() {
	r.shapes = nil
	if r.selection != nil {
		r.selection.Clear()
	}
}

func (r *Registry) Contains(s *shape.Shape) bool {
	return r.IndexOf(s) >= 0
}

// IndexOf returns the z-order index of s, or -1.
func (r *Registry) IndexOf(s *shape.Shape) int {
	return slices.Index(r.shapes, s)
}

// ByID returns the registered shape with the given id.
func (r *Registry) ByID(id int64) (*shape.Shape, bool) {
	for _, s := range r.shapes {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

// Shapes returns a copy of the list, back to front.
func (r *Registry) Shapes() []*shape.Shape {
	return slices.Clone(r.shapes)
}

func (r *Registry) Len() int { return len(r.shapes) }

// NextID is the id the next created shape will get.
func (r *Registry) NextID() int64 { return r.nextID }

// MoveToIndex changes the z-order of a registered shape.
func (r *Registry) MoveToIndex(s *shape.Shape, i int) {
	from := r.IndexOf(s)
	if from < 0 {
		return
	}
	r.shapes = slices.Delete(r.shapes, from, from+1)
	i = min(max(i, 0), len(r.shapes))
	r.shapes = slices.Insert(r.shapes, i, s)
}
