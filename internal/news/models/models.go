// Package models defines news articles published by the organization.
package models

import (
	"time"

	locmodels "vecinal/internal/location/models"
	dErrors "vecinal/pkg/domain-errors"
)

// Article is one news item. LocationScope narrows the audience; an empty
// scope means national.
type Article struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Summary         string             `json:"summary,omitempty"`
	Content         string             `json:"content,omitempty"`
	ImageURL        string             `json:"imageUrl,omitempty"`
	DocumentURL     string             `json:"documentUrl,omitempty"`
	PublicationDate time.Time          `json:"publicationDate"`
	AuthorID        string             `json:"authorId"`
	Tags            []string           `json:"tags,omitempty"`
	LocationScope   locmodels.Location `json:"locationScope"`
	IsPublished     bool               `json:"isPublished"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// Enriched is an Article whose location scope carries resolved names.
type Enriched struct {
	Article
	LocationScope locmodels.Enriched `json:"locationScope"`
}

// ValidateBody enforces the article-level invariant: at least one of written
// content or an attached document must be present, whatever combination of
// fields an update supplied.
func (a *Article) ValidateBody() error {
	if a.Content == "" && a.DocumentURL == "" {
		return dErrors.New(dErrors.CodeBadRequest, "an article needs either content or an attached document")
	}
	return nil
}
