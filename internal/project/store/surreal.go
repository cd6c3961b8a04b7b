package store

import (
	"context"
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"

	"vecinal/internal/project/models"
	"vecinal/internal/query"
	"vecinal/pkg/platform/sentinel"
)

const table = "project"

// Surreal persists projects in the project table.
type Surreal struct {
	db *surrealdb.DB
}

func NewSurreal(db *surrealdb.DB) *Surreal {
	return &Surreal{db: db}
}

type countRow struct {
	Total int `json:"total"`
}

func (s *Surreal) Create(ctx context.Context, project *models.Project) error {
	_, err := surrealdb.Query[any](ctx, s.db,
		"CREATE project CONTENT $project", map[string]any{"project": project})
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (s *Surreal) ByID(ctx context.Context, id string) (*models.Project, error) {
	res, err := surrealdb.Query[[]*models.Project](ctx, s.db,
		"SELECT * FROM project WHERE id = $id LIMIT 1", map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", id, err)
	}
	rows := (*res)[0].Result
	if len(rows) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return rows[0], nil
}

func (s *Surreal) List(ctx context.Context, q query.Query) ([]*models.Project, int, error) {
	if q.MatchNone() {
		return nil, 0, nil
	}

	stmt, vars := query.RenderSelect(table, q)
	res, err := surrealdb.Query[[]*models.Project](ctx, s.db, stmt, vars)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}

	countStmt, countVars := query.RenderCount(table, q)
	countRes, err := surrealdb.Query[[]countRow](ctx, s.db, countStmt, countVars)
	if err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}
	total := 0
	if rows := (*countRes)[0].Result; len(rows) > 0 {
		total = rows[0].Total
	}
	return (*res)[0].Result, total, nil
}

func (s *Surreal) Update(ctx context.Context, project *models.Project) error {
	res, err := surrealdb.Query[[]*models.Project](ctx, s.db,
		"UPDATE project CONTENT $project WHERE id = $id RETURN AFTER",
		map[string]any{"id": project.ID, "project": project})
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if len((*res)[0].Result) == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Surreal) Delete(ctx context.Context, id string) error {
	res, err := surrealdb.Query[[]*models.Project](ctx, s.db,
		"DELETE project WHERE id = $id RETURN BEFORE", map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if len((*res)[0].Result) == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Surreal) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	res, err := surrealdb.Query[[]countRow](ctx, s.db,
		"SELECT count() AS total FROM project WHERE status = $status GROUP ALL",
		map[string]any{"status": string(status)})
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	if rows := (*res)[0].Result; len(rows) > 0 {
		return rows[0].Total, nil
	}
	return 0, nil
}
