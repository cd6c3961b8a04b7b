package handler

import (
	"vecinal/internal/location/models"
	dErrors "vecinal/pkg/domain-errors"
)

// ReseedRequest is the HTTP request body for PUT /admin/locations. It carries
// the complete taxonomy; partial reseeds are not supported.
type ReseedRequest struct {
	Departments    []*models.Department   `json:"departments"`
	Provinces      []*models.Province     `json:"provinces"`
	Municipalities []*models.Municipality `json:"municipalities"`
}

// Validate checks internal consistency of the submitted taxonomy before any
// write happens.
func (r *ReseedRequest) Validate() error {
	if len(r.Departments) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "departments must not be empty")
	}

	departments := make(map[int]struct{}, len(r.Departments))
	for _, d := range r.Departments {
		if d.Name == "" {
			return dErrors.Newf(dErrors.CodeBadRequest, "department %d has no name", d.Code)
		}
		if _, dup := departments[d.Code]; dup {
			return dErrors.Newf(dErrors.CodeBadRequest, "duplicate department code %d", d.Code)
		}
		departments[d.Code] = struct{}{}
	}

	provinces := make(map[int]int, len(r.Provinces))
	for _, p := range r.Provinces {
		if p.Name == "" {
			return dErrors.Newf(dErrors.CodeBadRequest, "province %d has no name", p.Code)
		}
		if _, dup := provinces[p.Code]; dup {
			return dErrors.Newf(dErrors.CodeBadRequest, "duplicate province code %d", p.Code)
		}
		if _, ok := departments[p.DepartmentCode]; !ok {
			return dErrors.Newf(dErrors.CodeBadRequest, "province %d references unknown department %d", p.Code, p.DepartmentCode)
		}
		provinces[p.Code] = p.DepartmentCode
	}

	municipalities := make(map[int]struct{}, len(r.Municipalities))
	for _, m := range r.Municipalities {
		if m.Name == "" {
			return dErrors.Newf(dErrors.CodeBadRequest, "municipality %d has no name", m.Code)
		}
		if _, dup := municipalities[m.Code]; dup {
			return dErrors.Newf(dErrors.CodeBadRequest, "duplicate municipality code %d", m.Code)
		}
		parentDept, ok := provinces[m.ProvinceCode]
		if !ok {
			return dErrors.Newf(dErrors.CodeBadRequest, "municipality %d references unknown province %d", m.Code, m.ProvinceCode)
		}
		if m.DepartmentCode != parentDept {
			return dErrors.Newf(dErrors.CodeBadRequest, "municipality %d department %d does not match province %d", m.Code, m.DepartmentCode, m.ProvinceCode)
		}
		municipalities[m.Code] = struct{}{}
	}
	return nil
}
