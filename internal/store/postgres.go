package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	version    INTEGER NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (project_id, version)
);
`

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects, verifies the connection and creates the schema if
// it does not exist yet.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) CreateProject(ctx context.Context, id, name string) (*Project, error) {
	var proj Project
	err := p.pool.QueryRow(ctx,
		`INSERT INTO projects (id, name) VALUES ($1, $2)
		 RETURNING id, name, created_at, updated_at`,
		id, name,
	).Scan(&proj.ID, &proj.Name, &proj.CreatedAt, &proj.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("project %s: %w", id, ErrConflict)
		}
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &proj, nil
}

func (p *Postgres) GetProject(ctx context.Context, id string) (*Project, error) {
	var proj Project
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM projects WHERE id = $1`, id,
	).Scan(&proj.ID, &proj.Name, &proj.CreatedAt, &proj.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &proj, nil
}

func (p *Postgres) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM projects ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	projects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Project, error) {
		var proj Project
		err := row.Scan(&proj.ID, &proj.Name, &proj.CreatedAt, &proj.UpdatedAt)
		return proj, err
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (p *Postgres) DeleteProject(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveSnapshot(ctx context.Context, snapshotID, projectID string, doc json.RawMessage) (*Snapshot, error) {
	snap := Snapshot{ID: snapshotID, ProjectID: projectID, Document: doc}
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		var one int
		err := tx.QueryRow(ctx, `SELECT 1 FROM projects WHERE id = $1 FOR UPDATE`, projectID).Scan(&one)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO snapshots (id, project_id, version, document)
			 SELECT $1, $2, COALESCE(MAX(version), 0) + 1, $3 FROM snapshots WHERE project_id = $2
			 RETURNING version, created_at`,
			snapshotID, projectID, []byte(doc),
		).Scan(&snap.Version, &snap.CreatedAt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE projects SET updated_at = $2 WHERE id = $1`, projectID, snap.CreatedAt)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return &snap, nil
}

func (p *Postgres) LatestSnapshot(ctx context.Context, projectID string) (*Snapshot, error) {
	var (
		snap Snapshot
		doc  []byte
	)
	err := p.pool.QueryRow(ctx,
		`SELECT id, project_id, version, document, created_at FROM snapshots
		 WHERE project_id = $1 ORDER BY version DESC LIMIT 1`, projectID,
	).Scan(&snap.ID, &snap.ProjectID, &snap.Version, &doc, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	snap.Document = doc
	return &snap, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
