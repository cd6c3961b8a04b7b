package store

import (
	"context"
	"fmt"
	"strings"

	surrealdb "github.com/surrealdb/surrealdb.go"

	"vecinal/internal/member/models"
	"vecinal/internal/query"
	"vecinal/pkg/platform/sentinel"
)

const table = "member"

// Surreal persists member records in the member table.
type Surreal struct {
	db *surrealdb.DB
}

func NewSurreal(db *surrealdb.DB) *Surreal {
	return &Surreal{db: db}
}

type countRow struct {
	Total int `json:"total"`
}

func (s *Surreal) Create(ctx context.Context, member *models.Member) error {
	// Uniqueness of the idCard pair and the registration code is checked
	// inside one transaction with the insert.
	_, err := surrealdb.Query[any](ctx, s.db, `
		BEGIN TRANSACTION;
		IF (SELECT count() AS total FROM member WHERE idCard = $idCard AND idCardExtension = $ext GROUP ALL)[0].total > 0 {
			THROW "duplicate_id_card";
		};
		IF (SELECT count() AS total FROM member WHERE registrationCode = $code GROUP ALL)[0].total > 0 {
			THROW "duplicate_registration_code";
		};
		CREATE member CONTENT $member;
		COMMIT TRANSACTION;`,
		map[string]any{
			"idCard": member.IDCard,
			"ext":    member.IDCardExtension,
			"code":   member.RegistrationCode,
			"member": member,
		})
	if err != nil {
		if strings.Contains(err.Error(), "duplicate_") {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

func (s *Surreal) ByRegistrationCode(ctx context.Context, code string) (*models.Member, error) {
	res, err := surrealdb.Query[[]*models.Member](ctx, s.db,
		"SELECT * FROM member WHERE registrationCode = $code LIMIT 1",
		map[string]any{"code": code})
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", code, err)
	}
	rows := (*res)[0].Result
	if len(rows) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return rows[0], nil
}

func (s *Surreal) List(ctx context.Context, q query.Query) ([]*models.Member, int, error) {
	if q.MatchNone() {
		return nil, 0, nil
	}

	stmt, vars := query.RenderSelect(table, q)
	res, err := surrealdb.Query[[]*models.Member](ctx, s.db, stmt, vars)
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	members := (*res)[0].Result

	countStmt, countVars := query.RenderCount(table, q)
	countRes, err := surrealdb.Query[[]countRow](ctx, s.db, countStmt, countVars)
	if err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}
	total := 0
	if rows := (*countRes)[0].Result; len(rows) > 0 {
		total = rows[0].Total
	}
	return members, total, nil
}

func (s *Surreal) UpdateStatus(ctx context.Context, code string, status models.Status) (*models.Member, error) {
	res, err := surrealdb.Query[[]*models.Member](ctx, s.db,
		"UPDATE member SET status = $status, updatedAt = time::now() WHERE registrationCode = $code RETURN AFTER",
		map[string]any{"code": code, "status": string(status)})
	if err != nil {
		return nil, fmt.Errorf("update member status: %w", err)
	}
	rows := (*res)[0].Result
	if len(rows) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return rows[0], nil
}

func (s *Surreal) ClaimForUser(ctx context.Context, code, userID string) (*models.Member, error) {
	// Single check-and-set: the WHERE clause is the claim predicate, so two
	// racing links cannot both succeed.
	res, err := surrealdb.Query[[]*models.Member](ctx, s.db, `
		UPDATE member SET linkedUserId = $userId, updatedAt = time::now()
		WHERE registrationCode = $code
		  AND status = "VERIFIED"
		  AND (linkedUserId = NONE OR linkedUserId = "" OR linkedUserId = $userId)
		RETURN AFTER`,
		map[string]any{"code": code, "userId": userID})
	if err != nil {
		return nil, fmt.Errorf("claim member: %w", err)
	}
	if rows := (*res)[0].Result; len(rows) > 0 {
		return rows[0], nil
	}

	// The claim matched nothing; classify why.
	current, err := s.ByRegistrationCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusVerified {
		return nil, sentinel.ErrInvalidState
	}
	return nil, sentinel.ErrConflict
}

func (s *Surreal) ReleaseClaim(ctx context.Context, code, userID string) error {
	res, err := surrealdb.Query[[]*models.Member](ctx, s.db, `
		UPDATE member SET linkedUserId = "", updatedAt = time::now()
		WHERE registrationCode = $code AND linkedUserId = $userId
		RETURN AFTER`,
		map[string]any{"code": code, "userId": userID})
	if err != nil {
		return fmt.Errorf("release member claim: %w", err)
	}
	if len((*res)[0].Result) == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Surreal) Count(ctx context.Context) (int, error) {
	return s.count(ctx, "SELECT count() AS total FROM member GROUP ALL", nil)
}

func (s *Surreal) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	return s.count(ctx,
		"SELECT count() AS total FROM member WHERE status = $status GROUP ALL",
		map[string]any{"status": string(status)})
}

func (s *Surreal) count(ctx context.Context, stmt string, vars map[string]any) (int, error) {
	res, err := surrealdb.Query[[]countRow](ctx, s.db, stmt, vars)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	if rows := (*res)[0].Result; len(rows) > 0 {
		return rows[0].Total, nil
	}
	return 0, nil
}
