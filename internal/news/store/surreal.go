package store

import (
	"context"
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"

	"vecinal/internal/news/models"
	"vecinal/internal/query"
	"vecinal/pkg/platform/sentinel"
)

const table = "news"

// Surreal persists articles in the news table.
type Surreal struct {
	db *surrealdb.DB
}

func NewSurreal(db *surrealdb.DB) *Surreal {
	return &Surreal{db: db}
}

type countRow struct {
	Total int `json:"total"`
}

func (s *Surreal) Create(ctx context.Context, article *models.Article) error {
	_, err := surrealdb.Query[any](ctx, s.db,
		"CREATE news CONTENT $article", map[string]any{"article": article})
	if err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

func (s *Surreal) ByID(ctx context.Context, id string) (*models.Article, error) {
	res, err := surrealdb.Query[[]*models.Article](ctx, s.db,
		"SELECT * FROM news WHERE id = $id LIMIT 1", map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("article %s: %w", id, err)
	}
	rows := (*res)[0].Result
	if len(rows) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return rows[0], nil
}

func (s *Surreal) List(ctx context.Context, q query.Query) ([]*models.Article, int, error) {
	if q.MatchNone() {
		return nil, 0, nil
	}

	stmt, vars := query.RenderSelect(table, q)
	res, err := surrealdb.Query[[]*models.Article](ctx, s.db, stmt, vars)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}

	countStmt, countVars := query.RenderCount(table, q)
	countRes, err := surrealdb.Query[[]countRow](ctx, s.db, countStmt, countVars)
	if err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}
	total := 0
	if rows := (*countRes)[0].Result; len(rows) > 0 {
		total = rows[0].Total
	}
	return (*res)[0].Result, total, nil
}

func (s *Surreal) Update(ctx context.Context, article *models.Article) error {
	res, err := surrealdb.Query[[]*models.Article](ctx, s.db,
		"UPDATE news CONTENT $article WHERE id = $id RETURN AFTER",
		map[string]any{"id": article.ID, "article": article})
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	if len((*res)[0].Result) == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Surreal) Delete(ctx context.Context, id string) error {
	res, err := surrealdb.Query[[]*models.Article](ctx, s.db,
		"DELETE news WHERE id = $id RETURN BEFORE", map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if len((*res)[0].Result) == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Surreal) CountPublished(ctx context.Context) (int, error) {
	res, err := surrealdb.Query[[]countRow](ctx, s.db,
		"SELECT count() AS total FROM news WHERE isPublished = true GROUP ALL", nil)
	if err != nil {
		return 0, fmt.Errorf("count published articles: %w", err)
	}
	if rows := (*res)[0].Result; len(rows) > 0 {
		return rows[0].Total, nil
	}
	return 0, nil
}
