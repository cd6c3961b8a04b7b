package store

import (
	"context"

	"vecinal/internal/location/models"
)

// Store is the taxonomy collection boundary. Name lookups return
// sentinel.ErrNotFound for unknown codes; callers decide whether that is an
// error (hierarchy validation) or a null name (enrichment).
type Store interface {
	Departments(ctx context.Context) ([]*models.Department, error)
	ProvincesByDepartment(ctx context.Context, departmentCode int) ([]*models.Province, error)
	MunicipalitiesByProvince(ctx context.Context, provinceCode int) ([]*models.Municipality, error)

	ProvinceByCode(ctx context.Context, code int) (*models.Province, error)
	MunicipalityByCode(ctx context.Context, code int) (*models.Municipality, error)

	// Per-level name lookups fetch only the name field.
	DepartmentName(ctx context.Context, code int) (string, error)
	ProvinceName(ctx context.Context, code int) (string, error)
	MunicipalityName(ctx context.Context, code int) (string, error)

	// Bulk name lookups issue one "code is one of" query per call and skip
	// unknown codes; the result map only contains codes that resolved.
	DepartmentNames(ctx context.Context, codes []int) (map[int]string, error)
	ProvinceNames(ctx context.Context, codes []int) (map[int]string, error)
	MunicipalityNames(ctx context.Context, codes []int) (map[int]string, error)

	// ReplaceAll swaps in a freshly seeded taxonomy.
	ReplaceAll(ctx context.Context, departments []*models.Department, provinces []*models.Province, municipalities []*models.Municipality) error
}
