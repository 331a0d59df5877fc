// Package store persists projects and their document snapshots.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot is one saved version of a project document. Versions start at 1
// and increase by one per save.
type Snapshot struct {
	ID        string
	ProjectID string
	Version   int
	Document  json.RawMessage
	CreatedAt time.Time
}

// Store is implemented by Memory and Postgres.
type Store interface {
	CreateProject(ctx context.Context, id, name string) (*Project, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	DeleteProject(ctx context.Context, id string) error

	// SaveSnapshot stores doc as the next version of the project.
	SaveSnapshot(ctx context.Context, snapshotID, projectID string, doc json.RawMessage) (*Snapshot, error)
	LatestSnapshot(ctx context.Context, projectID string) (*Snapshot, error)

	Close()
}
