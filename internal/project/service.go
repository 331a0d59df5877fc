package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inamate/vecedit/internal/document"
	"github.com/inamate/vecedit/internal/store"
	"github.com/inamate/vecedit/internal/typeid"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrInvalidID = errors.New("invalid project id")
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Create registers a project and seeds its first snapshot, either empty or
// with the sample profiles.
func (s *Service) Create(ctx context.Context, name string, sample bool) (*Project, error) {
	projectID := typeid.NewProjectID()

	stProj, err := s.store.CreateProject(ctx, projectID, name)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	doc := document.NewEmptyDocument(projectID, name)
	if sample {
		doc = document.NewSampleDocument(projectID)
		doc.Project.Name = name
	}
	docJSON, err := doc.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal initial document: %w", err)
	}

	if _, err := s.store.SaveSnapshot(ctx, typeid.NewSnapshotID(), projectID, docJSON); err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return storeProjectToProject(stProj), nil
}

func (s *Service) Get(ctx context.Context, projectID string) (*Project, error) {
	if err := typeid.ValidateProjectID(projectID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	stProj, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, mapStoreError("get project", err)
	}
	return storeProjectToProject(stProj), nil
}

func (s *Service) List(ctx context.Context) ([]Project, error) {
	stProjects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]Project, len(stProjects))
	for i := range stProjects {
		projects[i] = *storeProjectToProject(&stProjects[i])
	}
	return projects, nil
}

func (s *Service) Delete(ctx context.Context, projectID string) error {
	if err := typeid.ValidateProjectID(projectID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return mapStoreError("delete project", s.store.DeleteProject(ctx, projectID))
}

// GetLatestSnapshot returns the raw JSON of the newest document version.
func (s *Service) GetLatestSnapshot(ctx context.Context, projectID string) (json.RawMessage, error) {
	if err := typeid.ValidateProjectID(projectID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	snap, err := s.store.LatestSnapshot(ctx, projectID)
	if err != nil {
		return nil, mapStoreError("get snapshot", err)
	}
	return snap.Document, nil
}

// LoadDocument returns the newest document version.
func (s *Service) LoadDocument(ctx context.Context, projectID string) (*document.InDocument, error) {
	raw, err := s.GetLatestSnapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return document.Parse(raw)
}

// SaveDocument stores doc as a new version and returns the version number.
func (s *Service) SaveDocument(ctx context.Context, doc *document.InDocument) (int, error) {
	doc.Touch()
	data, err := doc.Marshal()
	if err != nil {
		return 0, fmt.Errorf("marshal document: %w", err)
	}
	snap, err := s.store.SaveSnapshot(ctx, typeid.NewSnapshotID(), doc.Project.ID, data)
	if err != nil {
		return 0, mapStoreError("save snapshot", err)
	}
	return snap.Version, nil
}

func mapStoreError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func storeProjectToProject(p *store.Project) *Project {
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
