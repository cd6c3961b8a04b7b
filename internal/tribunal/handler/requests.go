package handler

import (
	"strings"
	"time"

	"vecinal/internal/tribunal/models"
	dErrors "vecinal/pkg/domain-errors"
)

// TribunalRequest is the body for POST /tribunals and PUT /tribunals/{id}.
// The directory is replaced whole on every write.
type TribunalRequest struct {
	Level         string                  `json:"level"`
	LocationCode  int                     `json:"locationCode"`
	LocationName  string                  `json:"locationName"`
	Directory     []models.DirectoryEntry `json:"directory"`
	TermStartDate string                  `json:"termStartDate"`
	TermEndDate   string                  `json:"termEndDate"`

	parsedTermStart time.Time
	parsedTermEnd   time.Time
}

func (r *TribunalRequest) Validate() error {
	r.Level = strings.ToUpper(strings.TrimSpace(r.Level))
	if r.Level == "" {
		return dErrors.New(dErrors.CodeBadRequest, "level is required")
	}
	var err error
	if r.parsedTermStart, err = parseDate(r.TermStartDate, "termStartDate"); err != nil {
		return err
	}
	if r.parsedTermEnd, err = parseDate(r.TermEndDate, "termEndDate"); err != nil {
		return err
	}
	return nil
}

// Tribunal converts the request into the domain record. Field-level
// invariants are checked by the service through Tribunal.Validate.
func (r *TribunalRequest) Tribunal() *models.Tribunal {
	return &models.Tribunal{
		Level:         models.Level(r.Level),
		LocationCode:  r.LocationCode,
		LocationName:  strings.TrimSpace(r.LocationName),
		Directory:     r.Directory,
		TermStartDate: r.parsedTermStart,
		TermEndDate:   r.parsedTermEnd,
	}
}

func parseDate(raw, field string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, dErrors.Newf(dErrors.CodeBadRequest, "%s is required", field)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeBadRequest, "%s must be RFC3339 or YYYY-MM-DD", field)
	}
	return t, nil
}
