package store

import (
	"context"
	"fmt"
	"strings"

	surrealdb "github.com/surrealdb/surrealdb.go"

	locmodels "vecinal/internal/location/models"
	"vecinal/internal/query"
	"vecinal/internal/user/models"
	"vecinal/pkg/platform/sentinel"
)

const table = "user"

// Surreal persists accounts in the user table.
type Surreal struct {
	db *surrealdb.DB
}

func NewSurreal(db *surrealdb.DB) *Surreal {
	return &Surreal{db: db}
}

type countRow struct {
	Total int `json:"total"`
}

func (s *Surreal) Create(ctx context.Context, user *models.User) error {
	// Username and email uniqueness is checked inside one transaction with
	// the insert.
	_, err := surrealdb.Query[any](ctx, s.db, `
		BEGIN TRANSACTION;
		IF (SELECT count() AS total FROM user WHERE username = $username GROUP ALL)[0].total > 0 {
			THROW "duplicate_username";
		};
		IF (SELECT count() AS total FROM user WHERE email = $email GROUP ALL)[0].total > 0 {
			THROW "duplicate_email";
		};
		CREATE user CONTENT $user;
		COMMIT TRANSACTION;`,
		map[string]any{
			"username": user.Username,
			"email":    user.Email,
			"user":     user,
		})
	if err != nil {
		if strings.Contains(err.Error(), "duplicate_") {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Surreal) ByID(ctx context.Context, id string) (*models.User, error) {
	return s.one(ctx, "SELECT * FROM user WHERE id = $id LIMIT 1", map[string]any{"id": id})
}

func (s *Surreal) ByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.one(ctx,
		"SELECT * FROM user WHERE username = $login OR email = $login LIMIT 1",
		map[string]any{"login": login})
}

func (s *Surreal) one(ctx context.Context, stmt string, vars map[string]any) (*models.User, error) {
	res, err := surrealdb.Query[[]*models.User](ctx, s.db, stmt, vars)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	rows := (*res)[0].Result
	if len(rows) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return rows[0], nil
}

func (s *Surreal) List(ctx context.Context, q query.Query) ([]*models.User, int, error) {
	if q.MatchNone() {
		return nil, 0, nil
	}

	stmt, vars := query.RenderSelect(table, q)
	res, err := surrealdb.Query[[]*models.User](ctx, s.db, stmt, vars)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countStmt, countVars := query.RenderCount(table, q)
	countRes, err := surrealdb.Query[[]countRow](ctx, s.db, countStmt, countVars)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	total := 0
	if rows := (*countRes)[0].Result; len(rows) > 0 {
		total = rows[0].Total
	}
	return (*res)[0].Result, total, nil
}

func (s *Surreal) UpdateLocation(ctx context.Context, id string, loc locmodels.Location) (*models.User, error) {
	return s.update(ctx,
		"UPDATE user SET location = $location, updatedAt = time::now() WHERE id = $id RETURN AFTER",
		map[string]any{"id": id, "location": loc})
}

func (s *Surreal) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	return s.update(ctx,
		"UPDATE user SET role = $role, updatedAt = time::now() WHERE id = $id RETURN AFTER",
		map[string]any{"id": id, "role": role})
}

func (s *Surreal) SetMemberRegistrationCode(ctx context.Context, id, code string) (*models.User, error) {
	return s.update(ctx,
		"UPDATE user SET memberRegistrationCode = $code, updatedAt = time::now() WHERE id = $id RETURN AFTER",
		map[string]any{"id": id, "code": code})
}

func (s *Surreal) update(ctx context.Context, stmt string, vars map[string]any) (*models.User, error) {
	res, err := surrealdb.Query[[]*models.User](ctx, s.db, stmt, vars)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	rows := (*res)[0].Result
	if len(rows) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return rows[0], nil
}
