// Package service implements the electoral tribunal directory.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"vecinal/internal/audit"
	"vecinal/internal/query"
	"vecinal/internal/storage"
	"vecinal/internal/tribunal/models"
	"vecinal/internal/tribunal/store"
	dErrors "vecinal/pkg/domain-errors"
	"vecinal/pkg/platform/sentinel"
	"vecinal/pkg/requestcontext"
)

// Schema is the tribunal listing allow-list for the query builder.
var Schema = query.Schema{
	Filterable: map[string]query.FieldSpec{
		"level":        {Path: "level", Kind: query.KindString},
		"locationCode": {Path: "locationCode", Kind: query.KindInt},
	},
	Sortable: map[string]string{
		"createdAt":     "createdAt",
		"termStartDate": "termStartDate",
		"locationName":  "locationName",
	},
	DefaultSort: "-createdAt",
}

// Service manages tribunal records and their statute documents.
type Service struct {
	tribunals store.Store
	files     storage.Store
	logger    *slog.Logger
	publisher audit.Publisher
}

// New constructs a Service.
func New(tribunals store.Store, files storage.Store, logger *slog.Logger, publisher audit.Publisher) *Service {
	return &Service{tribunals: tribunals, files: files, logger: logger, publisher: publisher}
}

// Create persists a new tribunal after record validation.
func (s *Service) Create(ctx context.Context, tribunal *models.Tribunal) (*models.Tribunal, error) {
	now := time.Now().UTC()
	tribunal.ID = uuid.NewString()
	tribunal.CreatedAt = now
	tribunal.UpdatedAt = now
	if err := tribunal.Validate(); err != nil {
		return nil, err
	}

	if err := s.tribunals.Create(ctx, tribunal); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create tribunal")
	}
	audit.Emit(ctx, s.publisher, s.logger, audit.Event{
		Action:  audit.ActionTribunalDirectorySet,
		ActorID: requestcontext.UserID(ctx),
		Subject: tribunal.ID,
		Detail:  fmt.Sprintf("%s tribunal for location %d", tribunal.Level, tribunal.LocationCode),
	})
	return tribunal, nil
}

// Update replaces a tribunal record; the directory arrives whole, not as a
// patch.
func (s *Service) Update(ctx context.Context, id string, tribunal *models.Tribunal) (*models.Tribunal, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tribunal.ID = current.ID
	tribunal.CreatedAt = current.CreatedAt
	tribunal.UpdatedAt = time.Now().UTC()
	if tribunal.StatuteURL == "" {
		tribunal.StatuteURL = current.StatuteURL
	}
	if tribunal.RegulationsURL == "" {
		tribunal.RegulationsURL = current.RegulationsURL
	}
	if err := tribunal.Validate(); err != nil {
		return nil, err
	}

	if err := s.tribunals.Update(ctx, tribunal); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update tribunal")
	}
	audit.Emit(ctx, s.publisher, s.logger, audit.Event{
		Action:  audit.ActionTribunalDirectorySet,
		ActorID: requestcontext.UserID(ctx),
		Subject: tribunal.ID,
		Detail:  fmt.Sprintf("directory of %d seats", len(tribunal.Directory)),
	})
	return tribunal, nil
}

// Delete removes a tribunal.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.tribunals.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "no tribunal %s", id)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete tribunal")
	}
	return nil
}

// List returns one page of tribunals.
func (s *Service) List(ctx context.Context, params url.Values) ([]*models.Tribunal, int, error) {
	q := query.Parse(params, Schema)
	if q.MatchNone() {
		return nil, 0, nil
	}
	tribunals, total, err := s.tribunals.List(ctx, q)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "list tribunals")
	}
	return tribunals, total, nil
}

// Get fetches one tribunal.
func (s *Service) Get(ctx context.Context, id string) (*models.Tribunal, error) {
	tribunal, err := s.tribunals.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no tribunal %s", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "fetch tribunal")
	}
	return tribunal, nil
}

// AttachDocument stores a statute or regulations PDF and records its URL.
// kind is "statute" or "regulations".
func (s *Service) AttachDocument(ctx context.Context, id, kind, contentType string, body io.Reader) (*models.Tribunal, error) {
	tribunal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tribunals/%s/%s", id, kind)
	docURL, err := s.files.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store tribunal document")
	}

	switch kind {
	case "statute":
		tribunal.StatuteURL = docURL
	case "regulations":
		tribunal.RegulationsURL = docURL
	default:
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown document kind %q", kind)
	}
	tribunal.UpdatedAt = time.Now().UTC()

	if err := s.tribunals.Update(ctx, tribunal); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update tribunal")
	}
	return tribunal, nil
}
