package store

import (
	"context"
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"

	"vecinal/internal/query"
	"vecinal/internal/tribunal/models"
	"vecinal/pkg/platform/sentinel"
)

const table = "tribunal"

// Surreal persists tribunals in the tribunal table.
type Surreal struct {
	db *surrealdb.DB
}

func NewSurreal(db *surrealdb.DB) *Surreal {
	return &Surreal{db: db}
}

type countRow struct {
	Total int `json:"total"`
}

func (s *Surreal) Create(ctx context.Context, tribunal *models.Tribunal) error {
	_, err := surrealdb.Query[any](ctx, s.db,
		"CREATE tribunal CONTENT $tribunal", map[string]any{"tribunal": tribunal})
	if err != nil {
		return fmt.Errorf("create tribunal: %w", err)
	}
	return nil
}

func (s *Surreal) ByID(ctx context.Context, id string) (*models.Tribunal, error) {
	res, err := surrealdb.Query[[]*models.Tribunal](ctx, s.db,
		"SELECT * FROM tribunal WHERE id = $id LIMIT 1", map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("tribunal %s: %w", id, err)
	}
	rows := (*res)[0].Result
	if len(rows) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return rows[0], nil
}

func (s *Surreal) List(ctx context.Context, q query.Query) ([]*models.Tribunal, int, error) {
	if q.MatchNone() {
		return nil, 0, nil
	}

	stmt, vars := query.RenderSelect(table, q)
	res, err := surrealdb.Query[[]*models.Tribunal](ctx, s.db, stmt, vars)
	if err != nil {
		return nil, 0, fmt.Errorf("list tribunals: %w", err)
	}

	countStmt, countVars := query.RenderCount(table, q)
	countRes, err := surrealdb.Query[[]countRow](ctx, s.db, countStmt, countVars)
	if err != nil {
		return nil, 0, fmt.Errorf("count tribunals: %w", err)
	}
	total := 0
	if rows := (*countRes)[0].Result; len(rows) > 0 {
		total = rows[0].Total
	}
	return (*res)[0].Result, total, nil
}

func (s *Surreal) Update(ctx context.Context, tribunal *models.Tribunal) error {
	res, err := surrealdb.Query[[]*models.Tribunal](ctx, s.db,
		"UPDATE tribunal CONTENT $tribunal WHERE id = $id RETURN AFTER",
		map[string]any{"id": tribunal.ID, "tribunal": tribunal})
	if err != nil {
		return fmt.Errorf("update tribunal: %w", err)
	}
	if len((*res)[0].Result) == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Surreal) Delete(ctx context.Context, id string) error {
	res, err := surrealdb.Query[[]*models.Tribunal](ctx, s.db,
		"DELETE tribunal WHERE id = $id RETURN BEFORE", map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete tribunal: %w", err)
	}
	if len((*res)[0].Result) == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
