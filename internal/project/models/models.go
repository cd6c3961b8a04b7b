// Package models defines community projects tracked by the organization.
package models

import (
	"time"

	locmodels "vecinal/internal/location/models"
	dErrors "vecinal/pkg/domain-errors"
)

// Status is the execution state of a project.
type Status string

const (
	StatusPlanned     Status = "PLANNED"
	StatusInExecution Status = "IN_EXECUTION"
	StatusCompleted   Status = "COMPLETED"
	StatusSuspended   Status = "SUSPENDED"
)

// ParseStatus validates an incoming status value.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPlanned, StatusInExecution, StatusCompleted, StatusSuspended:
		return Status(raw), true
	}
	return "", false
}

// Project is one community project.
type Project struct {
	ID            string             `json:"id"`
	ProjectName   string             `json:"projectName"`
	Objective     string             `json:"objective"`
	Location      locmodels.Location `json:"location"`
	FundingSource string             `json:"fundingSource,omitempty"`
	Beneficiaries int                `json:"beneficiaries,omitempty"`
	StartDate     time.Time          `json:"startDate"`
	EndDate       time.Time          `json:"endDate"`
	Status        Status             `json:"status"`
	CreatedByID   string             `json:"createdById"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// Enriched is a Project whose location carries resolved names.
type Enriched struct {
	Project
	Location locmodels.Enriched `json:"location"`
}

// ValidateDates rejects a project that ends before it starts.
func (p *Project) ValidateDates() error {
	if p.EndDate.Before(p.StartDate) {
		return dErrors.New(dErrors.CodeBadRequest, "endDate must not be before startDate")
	}
	return nil
}
