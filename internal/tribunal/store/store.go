package store

import (
	"context"

	"vecinal/internal/query"
	"vecinal/internal/tribunal/models"
)

// Store is the tribunal collection boundary.
type Store interface {
	Create(ctx context.Context, tribunal *models.Tribunal) error
	ByID(ctx context.Context, id string) (*models.Tribunal, error)
	List(ctx context.Context, q query.Query) ([]*models.Tribunal, int, error)
	Update(ctx context.Context, tribunal *models.Tribunal) error
	Delete(ctx context.Context, id string) error
}
