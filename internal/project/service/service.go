// Package service implements the community project registry.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	locmodels "vecinal/internal/location/models"
	"vecinal/internal/project/models"
	"vecinal/internal/project/store"
	"vecinal/internal/query"
	dErrors "vecinal/pkg/domain-errors"
	"vecinal/pkg/platform/sentinel"
)

// Schema is the project listing allow-list for the query builder.
var Schema = query.Schema{
	Filterable: map[string]query.FieldSpec{
		"status":                    {Path: "status", Kind: query.KindString},
		"fundingSource":             {Path: "fundingSource", Kind: query.KindString},
		"startDate":                 {Path: "startDate", Kind: query.KindTime},
		"endDate":                   {Path: "endDate", Kind: query.KindTime},
		"location.departmentCode":   {Path: "location.departmentCode", Kind: query.KindInt},
		"location.provinceCode":     {Path: "location.provinceCode", Kind: query.KindInt},
		"location.municipalityCode": {Path: "location.municipalityCode", Kind: query.KindInt},
	},
	Sortable: map[string]string{
		"createdAt":   "createdAt",
		"startDate":   "startDate",
		"projectName": "projectName",
	},
	DefaultSort: "-createdAt",
}

// Locations is the slice of the location service the registry needs.
type Locations interface {
	Enrich(ctx context.Context, loc locmodels.Location) locmodels.Enriched
	EnrichAll(ctx context.Context, locs []locmodels.Location) []locmodels.Enriched
	ValidateHierarchy(ctx context.Context, loc locmodels.Location) error
}

// Service manages community projects.
type Service struct {
	projects  store.Store
	locations Locations
	logger    *slog.Logger
}

// New constructs a Service.
func New(projects store.Store, locations Locations, logger *slog.Logger) *Service {
	return &Service{projects: projects, locations: locations, logger: logger}
}

// CreateInput carries a validated project creation request.
type CreateInput struct {
	ProjectName   string
	Objective     string
	Location      locmodels.Location
	FundingSource string
	Beneficiaries int
	StartDate     time.Time
	EndDate       time.Time
	Status        models.Status
	CreatedByID   string
}

// Create persists a new project.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Project, error) {
	if in.ProjectName == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "projectName is required")
	}
	if in.Objective == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "objective is required")
	}
	if err := in.Location.RequireComplete(); err != nil {
		return nil, err
	}
	if err := s.locations.ValidateHierarchy(ctx, in.Location); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.StatusPlanned
	}

	now := time.Now().UTC()
	project := &models.Project{
		ID:            uuid.NewString(),
		ProjectName:   in.ProjectName,
		Objective:     in.Objective,
		Location:      in.Location,
		FundingSource: in.FundingSource,
		Beneficiaries: in.Beneficiaries,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Status:        in.Status,
		CreatedByID:   in.CreatedByID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := project.ValidateDates(); err != nil {
		return nil, err
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create project")
	}
	s.logger.InfoContext(ctx, "project created", "project_id", project.ID, "status", project.Status)
	return project, nil
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	ProjectName   *string
	Objective     *string
	Location      *locmodels.Location
	FundingSource *string
	Beneficiaries *int
	StartDate     *time.Time
	EndDate       *time.Time
	Status        *models.Status
}

// Update applies a partial update; date ordering is re-checked on the merged
// project.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Project, error) {
	project, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.ProjectName != nil {
		project.ProjectName = *in.ProjectName
	}
	if in.Objective != nil {
		project.Objective = *in.Objective
	}
	if in.Location != nil {
		if err := in.Location.RequireComplete(); err != nil {
			return nil, err
		}
		if err := s.locations.ValidateHierarchy(ctx, *in.Location); err != nil {
			return nil, err
		}
		project.Location = *in.Location
	}
	if in.FundingSource != nil {
		project.FundingSource = *in.FundingSource
	}
	if in.Beneficiaries != nil {
		project.Beneficiaries = *in.Beneficiaries
	}
	if in.StartDate != nil {
		project.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		project.EndDate = *in.EndDate
	}
	if in.Status != nil {
		project.Status = *in.Status
	}
	if project.ProjectName == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "projectName is required")
	}
	if err := project.ValidateDates(); err != nil {
		return nil, err
	}

	if err := s.projects.Update(ctx, project); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no project %s", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update project")
	}
	return project, nil
}

// Delete removes a project.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "no project %s", id)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete project")
	}
	s.logger.InfoContext(ctx, "project deleted", "project_id", id)
	return nil
}

// List returns one page of projects with department-level enrichment.
func (s *Service) List(ctx context.Context, params url.Values) ([]models.Enriched, int, error) {
	q := query.Parse(params, Schema)
	if q.MatchNone() {
		return nil, 0, nil
	}

	projects, total, err := s.projects.List(ctx, q)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "list projects")
	}

	locs := make([]locmodels.Location, len(projects))
	for i, p := range projects {
		locs[i] = locmodels.Location{DepartmentCode: p.Location.DepartmentCode}
	}
	enriched := s.locations.EnrichAll(ctx, locs)

	out := make([]models.Enriched, len(projects))
	for i, p := range projects {
		out[i] = models.Enriched{Project: *p, Location: enriched[i]}
		out[i].Location.Location = p.Location
	}
	return out, total, nil
}

// Get fetches one project with full enrichment.
func (s *Service) Get(ctx context.Context, id string) (*models.Enriched, error) {
	project, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.Enriched{
		Project:  *project,
		Location: s.locations.Enrich(ctx, project.Location),
	}, nil
}

func (s *Service) fetch(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.projects.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no project %s", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "fetch project")
	}
	return project, nil
}
