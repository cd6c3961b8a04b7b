package store

import (
	"context"

	locmodels "vecinal/internal/location/models"
	"vecinal/internal/query"
	"vecinal/internal/user/models"
)

// Store is the account collection boundary.
//
// Create returns sentinel.ErrConflict when the username or email is already
// taken. ByLogin matches either the username or the email, both lowercased.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	ByID(ctx context.Context, id string) (*models.User, error)
	ByLogin(ctx context.Context, login string) (*models.User, error)
	List(ctx context.Context, q query.Query) ([]*models.User, int, error)
	UpdateLocation(ctx context.Context, id string, loc locmodels.Location) (*models.User, error)
	UpdateRole(ctx context.Context, id, role string) (*models.User, error)
	SetMemberRegistrationCode(ctx context.Context, id, code string) (*models.User, error)
}
