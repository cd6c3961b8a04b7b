package handler

import (
	"strings"
	"time"

	locmodels "vecinal/internal/location/models"
	"vecinal/internal/news/service"
	dErrors "vecinal/pkg/domain-errors"
)

// CreateRequest is the body for POST /news.
type CreateRequest struct {
	Title           string             `json:"title"`
	Summary         string             `json:"summary"`
	Content         string             `json:"content"`
	ImageURL        string             `json:"imageUrl"`
	DocumentURL     string             `json:"documentUrl"`
	PublicationDate string             `json:"publicationDate"`
	Tags            []string           `json:"tags"`
	LocationScope   locmodels.Location `json:"locationScope"`
	IsPublished     bool               `json:"isPublished"`

	parsedPublicationDate time.Time
}

func (r *CreateRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return dErrors.New(dErrors.CodeBadRequest, "title is required")
	}
	if r.PublicationDate != "" {
		parsed, err := parseDate(r.PublicationDate)
		if err != nil {
			return err
		}
		r.parsedPublicationDate = parsed
	}
	return nil
}

// Input converts the request into the service input.
func (r *CreateRequest) Input(authorID string) service.CreateInput {
	return service.CreateInput{
		Title:           r.Title,
		Summary:         r.Summary,
		Content:         r.Content,
		ImageURL:        r.ImageURL,
		DocumentURL:     r.DocumentURL,
		PublicationDate: r.parsedPublicationDate,
		AuthorID:        authorID,
		Tags:            r.Tags,
		LocationScope:   r.LocationScope,
		IsPublished:     r.IsPublished,
	}
}

// UpdateRequest is the body for PUT /news/{id}; absent fields stay
// untouched.
type UpdateRequest struct {
	Title           *string             `json:"title"`
	Summary         *string             `json:"summary"`
	Content         *string             `json:"content"`
	ImageURL        *string             `json:"imageUrl"`
	DocumentURL     *string             `json:"documentUrl"`
	PublicationDate *string             `json:"publicationDate"`
	Tags            *[]string           `json:"tags"`
	LocationScope   *locmodels.Location `json:"locationScope"`
	IsPublished     *bool               `json:"isPublished"`

	parsedPublicationDate *time.Time
}

func (r *UpdateRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "title must not be empty")
	}
	if r.PublicationDate != nil {
		parsed, err := parseDate(*r.PublicationDate)
		if err != nil {
			return err
		}
		r.parsedPublicationDate = &parsed
	}
	return nil
}

// Input converts the request into the service input.
func (r *UpdateRequest) Input() service.UpdateInput {
	return service.UpdateInput{
		Title:           r.Title,
		Summary:         r.Summary,
		Content:         r.Content,
		ImageURL:        r.ImageURL,
		DocumentURL:     r.DocumentURL,
		PublicationDate: r.parsedPublicationDate,
		Tags:            r.Tags,
		LocationScope:   r.LocationScope,
		IsPublished:     r.IsPublished,
	}
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "publicationDate must be RFC3339 or YYYY-MM-DD")
	}
	return t, nil
}
