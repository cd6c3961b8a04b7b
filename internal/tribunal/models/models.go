// Package models defines electoral tribunal directory records.
package models

import (
	"time"

	dErrors "vecinal/pkg/domain-errors"
)

// Level is the tier of government a tribunal belongs to.
type Level string

const (
	LevelDepartmental Level = "DEPARTMENTAL"
	LevelMunicipal    Level = "MUNICIPAL"
	LevelNeighborhood Level = "NEIGHBORHOOD"
)

// ParseLevel validates an incoming level value.
func ParseLevel(raw string) (Level, bool) {
	switch Level(raw) {
	case LevelDepartmental, LevelMunicipal, LevelNeighborhood:
		return Level(raw), true
	}
	return "", false
}

// DirectoryEntry is one seat on a tribunal.
type DirectoryEntry struct {
	Role     string `json:"role"`
	FullName string `json:"fullName"`
}

// Tribunal is one electoral tribunal with its current directory.
// LocationCode is the taxonomy code matching the tribunal's level
// (department code for DEPARTMENTAL, municipality code for MUNICIPAL);
// NEIGHBORHOOD tribunals carry the municipality code plus a free-text name.
type Tribunal struct {
	ID             string           `json:"id"`
	Level          Level            `json:"level"`
	LocationCode   int              `json:"locationCode"`
	LocationName   string           `json:"locationName"`
	Directory      []DirectoryEntry `json:"directory"`
	StatuteURL     string           `json:"statuteUrl,omitempty"`
	RegulationsURL string           `json:"regulationsUrl,omitempty"`
	TermStartDate  time.Time        `json:"termStartDate"`
	TermEndDate    time.Time        `json:"termEndDate"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Validate checks the record-level invariants.
func (t *Tribunal) Validate() error {
	if _, ok := ParseLevel(string(t.Level)); !ok {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown tribunal level %q", t.Level)
	}
	if t.LocationCode <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "locationCode is required")
	}
	if len(t.Directory) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "directory must not be empty")
	}
	for _, entry := range t.Directory {
		if entry.Role == "" || entry.FullName == "" {
			return dErrors.New(dErrors.CodeBadRequest, "every directory entry needs a role and a full name")
		}
	}
	if t.TermEndDate.Before(t.TermStartDate) {
		return dErrors.New(dErrors.CodeBadRequest, "termEndDate must not be before termStartDate")
	}
	return nil
}
