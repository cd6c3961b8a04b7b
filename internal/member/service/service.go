// Package service implements the membership registry: public registration,
// admin listing and verification, and the member side of account linking.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"vecinal/internal/audit"
	locmodels "vecinal/internal/location/models"
	"vecinal/internal/member/metrics"
	"vecinal/internal/member/models"
	"vecinal/internal/member/store"
	"vecinal/internal/query"
	"vecinal/internal/storage"
	dErrors "vecinal/pkg/domain-errors"
	"vecinal/pkg/platform/sentinel"
	"vecinal/pkg/requestcontext"
)

// Schema is the member listing allow-list for the query builder.
var Schema = query.Schema{
	Filterable: map[string]query.FieldSpec{
		"status":                    {Path: "status", Kind: query.KindString},
		"idCard":                    {Path: "idCard", Kind: query.KindString},
		"councilRoleCode":           {Path: "councilRoleCode", Kind: query.KindInt},
		"location.departmentCode":   {Path: "location.departmentCode", Kind: query.KindInt},
		"location.provinceCode":     {Path: "location.provinceCode", Kind: query.KindInt},
		"location.municipalityCode": {Path: "location.municipalityCode", Kind: query.KindInt},
		"createdAt":                 {Path: "createdAt", Kind: query.KindTime},
	},
	Sortable: map[string]string{
		"createdAt": "createdAt",
		"lastName":  "lastName",
		"firstName": "firstName",
		"status":    "status",
	},
	DefaultSort: "-createdAt",
}

// Locations is the slice of the location service the registry needs.
type Locations interface {
	Enrich(ctx context.Context, loc locmodels.Location) locmodels.Enriched
	EnrichAll(ctx context.Context, locs []locmodels.Location) []locmodels.Enriched
	ValidateHierarchy(ctx context.Context, loc locmodels.Location) error
}

// Service orchestrates member registration, verification and linking.
type Service struct {
	members   store.Store
	locations Locations
	files     storage.Store
	logger    *slog.Logger
	publisher audit.Publisher
	metrics   *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithFileStorage(files storage.Store) Option {
	return func(s *Service) {
		s.files = files
	}
}

// New constructs a Service.
func New(members store.Store, locations Locations, opts ...Option) *Service {
	s := &Service{members: members, locations: locations, files: storage.Discard{}}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	FirstName               string
	LastName                string
	IDCard                  string
	IDCardExtension         string
	BirthDate               time.Time
	Gender                  string
	PhoneNumber             string
	Location                locmodels.Location
	NeighborhoodCouncilName string
	CouncilRoleCode         int

	// Optional photo attachment.
	Photo            io.Reader
	PhotoContentType string
}

// Register creates a PENDING member record and returns it with the generated
// registration code.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Member, error) {
	if err := in.Location.RequireComplete(); err != nil {
		s.metrics.IncrementRegistration("invalid")
		return nil, err
	}
	if err := s.locations.ValidateHierarchy(ctx, in.Location); err != nil {
		s.metrics.IncrementRegistration("invalid")
		return nil, err
	}
	if !models.ValidCouncilRole(in.CouncilRoleCode) {
		s.metrics.IncrementRegistration("invalid")
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown council role %d", in.CouncilRoleCode)
	}

	code, err := models.NewRegistrationCode()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "registration code")
	}

	photoURL := ""
	if in.Photo != nil {
		key := fmt.Sprintf("members/%s/photo", code)
		photoURL, err = s.files.Upload(ctx, key, in.PhotoContentType, in.Photo)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store member photo")
		}
	}

	now := time.Now().UTC()
	member := &models.Member{
		RegistrationCode:        code,
		FirstName:               in.FirstName,
		LastName:                in.LastName,
		IDCard:                  in.IDCard,
		IDCardExtension:         in.IDCardExtension,
		BirthDate:               in.BirthDate,
		Gender:                  in.Gender,
		PhoneNumber:             in.PhoneNumber,
		Location:                in.Location,
		NeighborhoodCouncilName: in.NeighborhoodCouncilName,
		CouncilRoleCode:         in.CouncilRoleCode,
		PhotoURL:                photoURL,
		Status:                  models.StatusPending,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := s.members.Create(ctx, member); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementRegistration("duplicate")
			return nil, dErrors.New(dErrors.CodeConflict, "a member with this id card is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create member")
	}

	s.metrics.IncrementRegistration("created")
	audit.Emit(ctx, s.publisher, s.logger, audit.Event{
		Action:  audit.ActionMemberRegistered,
		Subject: member.RegistrationCode,
	})
	s.logger.InfoContext(ctx, "member registered",
		"registration_code", member.RegistrationCode,
		"department_code", member.Location.DepartmentCode,
	)
	return member, nil
}

// List returns one admin page of members, department-enriched, plus the
// total filtered count.
func (s *Service) List(ctx context.Context, params url.Values) ([]models.Enriched, int, error) {
	q := query.Parse(params, Schema)
	if q.MatchNone() {
		return nil, 0, nil
	}

	members, total, err := s.members.List(ctx, q)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "list members")
	}

	// List views only resolve the department level.
	locs := make([]locmodels.Location, len(members))
	for i, m := range members {
		locs[i] = locmodels.Location{DepartmentCode: m.Location.DepartmentCode}
	}
	enrichedLocs := s.locations.EnrichAll(ctx, locs)

	out := make([]models.Enriched, len(members))
	for i, m := range members {
		out[i] = models.Enriched{Member: *m, Location: enrichedLocs[i]}
		out[i].Location.Location = m.Location
	}
	return out, total, nil
}

// Get fetches one member by registration code with full three-level
// enrichment.
func (s *Service) Get(ctx context.Context, code string) (*models.Enriched, error) {
	member, err := s.members.ByRegistrationCode(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no member with registration code %s", code)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "fetch member")
	}
	enriched := &models.Enriched{
		Member:   *member,
		Location: s.locations.Enrich(ctx, member.Location),
	}
	return enriched, nil
}

// UpdateStatus moves a member along the status machine. Only the edges
// PENDING->VERIFIED, PENDING->REJECTED and VERIFIED->INACTIVE are legal.
func (s *Service) UpdateStatus(ctx context.Context, code string, target models.Status) (*models.Member, error) {
	current, err := s.members.ByRegistrationCode(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no member with registration code %s", code)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "fetch member")
	}
	if current.Status == target {
		return current, nil
	}
	if !current.Status.CanTransitionTo(target) {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation,
			"cannot move member from %s to %s", current.Status, target)
	}

	updated, err := s.members.UpdateStatus(ctx, code, target)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update member status")
	}

	s.metrics.IncrementTransition(string(current.Status), string(target))
	audit.Emit(ctx, s.publisher, s.logger, audit.Event{
		Action:  audit.ActionMemberStatusChanged,
		ActorID: requestcontext.UserID(ctx),
		Subject: code,
		Detail:  fmt.Sprintf("%s -> %s", current.Status, target),
	})
	return updated, nil
}

// Claim links a member record to a user account. First phase of the
// two-phase link protocol; Release compensates when the second phase fails.
func (s *Service) Claim(ctx context.Context, code, userID string) (*models.Member, error) {
	member, err := s.members.ClaimForUser(ctx, code, userID)
	switch {
	case err == nil:
		s.metrics.IncrementLink("linked")
		return member, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no member with registration code %s", code)
	case errors.Is(err, sentinel.ErrInvalidState):
		s.metrics.IncrementLink("invalid_state")
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "only verified members can be linked")
	case errors.Is(err, sentinel.ErrConflict):
		s.metrics.IncrementLink("conflict")
		return nil, dErrors.New(dErrors.CodeConflict, "member is already linked to another account")
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "claim member")
	}
}

// Release undoes a claim after the user-side write failed.
func (s *Service) Release(ctx context.Context, code, userID string) {
	if err := s.members.ReleaseClaim(ctx, code, userID); err != nil {
		// The claim stays; reconciliation happens on the next link attempt
		// by the same user, which is idempotent.
		s.logger.ErrorContext(ctx, "failed to release member claim",
			"registration_code", code,
			"user_id", userID,
			"error", err,
		)
	}
}

// CouncilRoles returns the fixed council role catalog.
func (s *Service) CouncilRoles() []models.CouncilRole {
	return models.CouncilRoles
}
