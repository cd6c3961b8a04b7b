package store

import (
	"context"
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"

	"vecinal/internal/location/models"
	"vecinal/pkg/platform/sentinel"
)

// Surreal persists the taxonomy in three SurrealDB tables keyed by the
// national integer codes.
type Surreal struct {
	db *surrealdb.DB
}

func NewSurreal(db *surrealdb.DB) *Surreal {
	return &Surreal{db: db}
}

type nameRow struct {
	Name string `json:"name"`
}

type codeNameRow struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

func (s *Surreal) Departments(ctx context.Context) ([]*models.Department, error) {
	res, err := surrealdb.Query[[]*models.Department](ctx, s.db,
		"SELECT * FROM department ORDER BY code ASC", nil)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return (*res)[0].Result, nil
}

func (s *Surreal) ProvincesByDepartment(ctx context.Context, departmentCode int) ([]*models.Province, error) {
	res, err := surrealdb.Query[[]*models.Province](ctx, s.db,
		"SELECT * FROM province WHERE departmentCode = $code ORDER BY code ASC",
		map[string]any{"code": departmentCode})
	if err != nil {
		return nil, fmt.Errorf("list provinces of department %d: %w", departmentCode, err)
	}
	return (*res)[0].Result, nil
}

func (s *Surreal) MunicipalitiesByProvince(ctx context.Context, provinceCode int) ([]*models.Municipality, error) {
	res, err := surrealdb.Query[[]*models.Municipality](ctx, s.db,
		"SELECT * FROM municipality WHERE provinceCode = $code ORDER BY code ASC",
		map[string]any{"code": provinceCode})
	if err != nil {
		return nil, fmt.Errorf("list municipalities of province %d: %w", provinceCode, err)
	}
	return (*res)[0].Result, nil
}

func (s *Surreal) ProvinceByCode(ctx context.Context, code int) (*models.Province, error) {
	res, err := surrealdb.Query[[]*models.Province](ctx, s.db,
		"SELECT * FROM province WHERE code = $code LIMIT 1",
		map[string]any{"code": code})
	if err != nil {
		return nil, fmt.Errorf("province %d: %w", code, err)
	}
	rows := (*res)[0].Result
	if len(rows) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return rows[0], nil
}

func (s *Surreal) MunicipalityByCode(ctx context.Context, code int) (*models.Municipality, error) {
	res, err := surrealdb.Query[[]*models.Municipality](ctx, s.db,
		"SELECT * FROM municipality WHERE code = $code LIMIT 1",
		map[string]any{"code": code})
	if err != nil {
		return nil, fmt.Errorf("municipality %d: %w", code, err)
	}
	rows := (*res)[0].Result
	if len(rows) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return rows[0], nil
}

func (s *Surreal) DepartmentName(ctx context.Context, code int) (string, error) {
	return s.nameByCode(ctx, "department", code)
}

func (s *Surreal) ProvinceName(ctx context.Context, code int) (string, error) {
	return s.nameByCode(ctx, "province", code)
}

func (s *Surreal) MunicipalityName(ctx context.Context, code int) (string, error) {
	return s.nameByCode(ctx, "municipality", code)
}

func (s *Surreal) DepartmentNames(ctx context.Context, codes []int) (map[int]string, error) {
	return s.namesByCodes(ctx, "department", codes)
}

func (s *Surreal) ProvinceNames(ctx context.Context, codes []int) (map[int]string, error) {
	return s.namesByCodes(ctx, "province", codes)
}

func (s *Surreal) MunicipalityNames(ctx context.Context, codes []int) (map[int]string, error) {
	return s.namesByCodes(ctx, "municipality", codes)
}

// nameByCode fetches only the name field by exact code match.
func (s *Surreal) nameByCode(ctx context.Context, table string, code int) (string, error) {
	res, err := surrealdb.Query[[]nameRow](ctx, s.db,
		fmt.Sprintf("SELECT name FROM %s WHERE code = $code LIMIT 1", table),
		map[string]any{"code": code})
	if err != nil {
		return "", fmt.Errorf("%s name %d: %w", table, code, err)
	}
	rows := (*res)[0].Result
	if len(rows) == 0 {
		return "", sentinel.ErrNotFound
	}
	return rows[0].Name, nil
}

// namesByCodes is the single "code is one of {set}" query bulk enrichment
// relies on.
func (s *Surreal) namesByCodes(ctx context.Context, table string, codes []int) (map[int]string, error) {
	if len(codes) == 0 {
		return map[int]string{}, nil
	}
	res, err := surrealdb.Query[[]codeNameRow](ctx, s.db,
		fmt.Sprintf("SELECT code, name FROM %s WHERE code IN $codes", table),
		map[string]any{"codes": codes})
	if err != nil {
		return nil, fmt.Errorf("%s names: %w", table, err)
	}
	out := make(map[int]string, len(codes))
	for _, row := range (*res)[0].Result {
		out[row.Code] = row.Name
	}
	return out, nil
}

func (s *Surreal) ReplaceAll(ctx context.Context, departments []*models.Department, provinces []*models.Province, municipalities []*models.Municipality) error {
	// Single transaction so readers never observe a half-seeded taxonomy.
	_, err := surrealdb.Query[any](ctx, s.db, `
		BEGIN TRANSACTION;
		DELETE department; DELETE province; DELETE municipality;
		FOR $d IN $departments { CREATE department CONTENT $d; };
		FOR $p IN $provinces { CREATE province CONTENT $p; };
		FOR $m IN $municipalities { CREATE municipality CONTENT $m; };
		COMMIT TRANSACTION;`,
		map[string]any{
			"departments":    departments,
			"provinces":      provinces,
			"municipalities": municipalities,
		})
	if err != nil {
		return fmt.Errorf("replace taxonomy: %w", err)
	}
	return nil
}
