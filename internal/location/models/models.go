// Package models defines the location taxonomy: a strict three-level tree of
// departments, provinces and municipalities keyed by small integer codes.
//
// Codes are unique nationwide within their own collection, so a bare code
// identifies exactly one node at its level and domain entities can embed
// codes without a level discriminator. Taxonomy rows are seeded once from
// the national reference dataset and are essentially immutable afterward.
package models

import (
	"time"

	dErrors "vecinal/pkg/domain-errors"
)

// Department is the root level of the hierarchy.
type Department struct {
	Code         int       `json:"code"`
	Name         string    `json:"name"`
	Abbreviation string    `json:"abbreviation"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Province sits under a department. Its code is unique nationally, not just
// within the parent.
type Province struct {
	Code           int       `json:"code"`
	Name           string    `json:"name"`
	DepartmentCode int       `json:"departmentCode"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Municipality sits under a province and denormalizes the grandparent
// department code for one-hop filtering.
//
// Invariant: DepartmentCode equals the parent province's DepartmentCode.
type Municipality struct {
	Code           int       `json:"code"`
	Name           string    `json:"name"`
	ProvinceCode   int       `json:"provinceCode"`
	DepartmentCode int       `json:"departmentCode"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Location is the value object location-bearing entities embed. Codes are
// copied at write time, not references; they are never rewritten when the
// taxonomy changes. Nil means the level was not captured.
type Location struct {
	DepartmentCode   *int   `json:"departmentCode,omitempty"`
	ProvinceCode     *int   `json:"provinceCode,omitempty"`
	MunicipalityCode *int   `json:"municipalityCode,omitempty"`
	Zone             string `json:"zone,omitempty"`
	Barrio           string `json:"barrio,omitempty"`
}

// Enriched is a Location augmented with resolved display names. A name is
// nil when the corresponding code was absent or unknown; an unknown code is
// not an error.
type Enriched struct {
	Location
	DepartmentName   *string `json:"departmentName"`
	ProvinceName     *string `json:"provinceName"`
	MunicipalityName *string `json:"municipalityName"`
}

// RequireComplete checks the full code-plus-zone form required by member and
// project records.
func (l Location) RequireComplete() error {
	if l.DepartmentCode == nil {
		return dErrors.New(dErrors.CodeBadRequest, "departmentCode is required")
	}
	if l.ProvinceCode == nil {
		return dErrors.New(dErrors.CodeBadRequest, "provinceCode is required")
	}
	if l.MunicipalityCode == nil {
		return dErrors.New(dErrors.CodeBadRequest, "municipalityCode is required")
	}
	if l.Zone == "" {
		return dErrors.New(dErrors.CodeBadRequest, "zone is required")
	}
	return nil
}

// Ptr is a small helper for building optional codes.
func Ptr(code int) *int { return &code }
