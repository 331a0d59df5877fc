package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Memory is an in-process Store. Data is lost when the process exits.
type Memory struct {
	mu        sync.RWMutex
	projects  map[string]*Project
	snapshots map[string][]Snapshot
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		projects:  make(map[string]*Project),
		snapshots: make(map[string][]Snapshot),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) CreateProject(ctx context.Context, id, name string) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[id]; ok {
		return nil, fmt.Errorf("project %s: %w", id, ErrConflict)
	}
	now := m.now()
	p := &Project{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	m.projects[id] = p
	out := *p
	return &out, nil
}

func (m *Memory) GetProject(ctx context.Context, id string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	return &out, nil
}

// ListProjects returns projects most recently updated first.
func (m *Memory) ListProjects(ctx context.Context) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b Project) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) DeleteProject(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[id]; !ok {
		return ErrNotFound
	}
	delete(m.projects, id)
	delete(m.snapshots, id)
	return nil
}

func (m *Memory) SaveSnapshot(ctx context.Context, snapshotID, projectID string, doc json.RawMessage) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[projectID]
	if !ok {
		return nil, ErrNotFound
	}
	now := m.now()
	snap := Snapshot{
		ID:        snapshotID,
		ProjectID: projectID,
		Version:   len(m.snapshots[projectID]) + 1,
		Document:  slices.Clone(doc),
		CreatedAt: now,
	}
	m.snapshots[projectID] = append(m.snapshots[projectID], snap)
	p.UpdatedAt = now
	return &snap, nil
}

func (m *Memory) LatestSnapshot(ctx context.Context, projectID string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snaps := m.snapshots[projectID]
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	snap := snaps[len(snaps)-1]
	snap.Document = slices.Clone(snap.Document)
	return &snap, nil
}

func (m *Memory) Close() {}
