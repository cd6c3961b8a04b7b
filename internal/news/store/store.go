package store

import (
	"context"

	"vecinal/internal/news/models"
	"vecinal/internal/query"
)

// Store is the news collection boundary.
type Store interface {
	Create(ctx context.Context, article *models.Article) error
	ByID(ctx context.Context, id string) (*models.Article, error)
	List(ctx context.Context, q query.Query) ([]*models.Article, int, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) error
	CountPublished(ctx context.Context) (int, error)
}
