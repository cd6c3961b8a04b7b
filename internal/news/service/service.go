// Package service implements the news board: public reads of published
// articles and staff-managed writes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	locmodels "vecinal/internal/location/models"
	"vecinal/internal/news/models"
	"vecinal/internal/news/store"
	"vecinal/internal/query"
	dErrors "vecinal/pkg/domain-errors"
	"vecinal/pkg/platform/sentinel"
)

// Schema is the news listing allow-list for the query builder.
var Schema = query.Schema{
	Filterable: map[string]query.FieldSpec{
		"isPublished":                  {Path: "isPublished", Kind: query.KindBool},
		"authorId":                     {Path: "authorId", Kind: query.KindString},
		"tags":                         {Path: "tags", Kind: query.KindString, Contains: true},
		"publicationDate":              {Path: "publicationDate", Kind: query.KindTime},
		"locationScope.departmentCode": {Path: "locationScope.departmentCode", Kind: query.KindInt},
		"locationScope.provinceCode":   {Path: "locationScope.provinceCode", Kind: query.KindInt},
	},
	Sortable: map[string]string{
		"createdAt":       "createdAt",
		"publicationDate": "publicationDate",
		"title":           "title",
	},
	DefaultSort: "-createdAt",
}

// Locations is the slice of the location service the news board needs.
type Locations interface {
	Enrich(ctx context.Context, loc locmodels.Location) locmodels.Enriched
	EnrichAll(ctx context.Context, locs []locmodels.Location) []locmodels.Enriched
	ValidateHierarchy(ctx context.Context, loc locmodels.Location) error
}

// Service manages news articles.
type Service struct {
	articles  store.Store
	locations Locations
	logger    *slog.Logger
}

// New constructs a Service.
func New(articles store.Store, locations Locations, logger *slog.Logger) *Service {
	return &Service{articles: articles, locations: locations, logger: logger}
}

// CreateInput carries a validated article creation request.
type CreateInput struct {
	Title           string
	Summary         string
	Content         string
	ImageURL        string
	DocumentURL     string
	PublicationDate time.Time
	AuthorID        string
	Tags            []string
	LocationScope   locmodels.Location
	IsPublished     bool
}

// Create persists a new article after checking the content-or-document
// invariant and the location scope hierarchy.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Article, error) {
	if in.Title == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "title is required")
	}
	if err := s.locations.ValidateHierarchy(ctx, in.LocationScope); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	article := &models.Article{
		ID:              uuid.NewString(),
		Title:           in.Title,
		Summary:         in.Summary,
		Content:         in.Content,
		ImageURL:        in.ImageURL,
		DocumentURL:     in.DocumentURL,
		PublicationDate: in.PublicationDate,
		AuthorID:        in.AuthorID,
		Tags:            in.Tags,
		LocationScope:   in.LocationScope,
		IsPublished:     in.IsPublished,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if article.PublicationDate.IsZero() {
		article.PublicationDate = now
	}
	if err := article.ValidateBody(); err != nil {
		return nil, err
	}

	if err := s.articles.Create(ctx, article); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create article")
	}
	s.logger.InfoContext(ctx, "article created", "article_id", article.ID, "author_id", article.AuthorID)
	return article, nil
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title           *string
	Summary         *string
	Content         *string
	ImageURL        *string
	DocumentURL     *string
	PublicationDate *time.Time
	Tags            *[]string
	LocationScope   *locmodels.Location
	IsPublished     *bool
}

// Update applies a partial update. The content-or-document invariant is
// checked on the merged article, whichever fields the update supplied.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Article, error) {
	article, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		article.Title = *in.Title
	}
	if in.Summary != nil {
		article.Summary = *in.Summary
	}
	if in.Content != nil {
		article.Content = *in.Content
	}
	if in.ImageURL != nil {
		article.ImageURL = *in.ImageURL
	}
	if in.DocumentURL != nil {
		article.DocumentURL = *in.DocumentURL
	}
	if in.PublicationDate != nil {
		article.PublicationDate = *in.PublicationDate
	}
	if in.Tags != nil {
		article.Tags = *in.Tags
	}
	if in.LocationScope != nil {
		if err := s.locations.ValidateHierarchy(ctx, *in.LocationScope); err != nil {
			return nil, err
		}
		article.LocationScope = *in.LocationScope
	}
	if in.IsPublished != nil {
		article.IsPublished = *in.IsPublished
	}
	if article.Title == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "title is required")
	}
	if err := article.ValidateBody(); err != nil {
		return nil, err
	}

	if err := s.articles.Update(ctx, article); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no article %s", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update article")
	}
	return article, nil
}

// Delete removes an article.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "no article %s", id)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete article")
	}
	s.logger.InfoContext(ctx, "article deleted", "article_id", id)
	return nil
}

// List returns one page of articles with department-level enrichment.
// Readers without staff access only see published articles.
func (s *Service) List(ctx context.Context, params url.Values, includeDrafts bool) ([]models.Enriched, int, error) {
	if !includeDrafts {
		params = cloneValues(params)
		params.Set("isPublished", "true")
	}
	q := query.Parse(params, Schema)
	if q.MatchNone() {
		return nil, 0, nil
	}

	articles, total, err := s.articles.List(ctx, q)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "list articles")
	}

	locs := make([]locmodels.Location, len(articles))
	for i, a := range articles {
		locs[i] = locmodels.Location{DepartmentCode: a.LocationScope.DepartmentCode}
	}
	enriched := s.locations.EnrichAll(ctx, locs)

	out := make([]models.Enriched, len(articles))
	for i, a := range articles {
		out[i] = models.Enriched{Article: *a, LocationScope: enriched[i]}
		out[i].LocationScope.Location = a.LocationScope
	}
	return out, total, nil
}

// Get fetches one article with full scope enrichment. Unpublished articles
// are only visible with staff access.
func (s *Service) Get(ctx context.Context, id string, includeDrafts bool) (*models.Enriched, error) {
	article, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !article.IsPublished && !includeDrafts {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no article %s", id)
	}
	return &models.Enriched{
		Article:       *article,
		LocationScope: s.locations.Enrich(ctx, article.LocationScope),
	}, nil
}

func (s *Service) fetch(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.articles.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no article %s", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "fetch article")
	}
	return article, nil
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}
	return out
}
