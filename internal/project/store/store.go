package store

import (
	"context"

	"vecinal/internal/project/models"
	"vecinal/internal/query"
)

// Store is the project collection boundary.
type Store interface {
	Create(ctx context.Context, project *models.Project) error
	ByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, q query.Query) ([]*models.Project, int, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status models.Status) (int, error)
}
