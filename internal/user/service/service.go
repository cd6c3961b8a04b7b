// Package service implements portal accounts: signup, login, profile and the
// user side of member linking.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vecinal/internal/audit"
	locmodels "vecinal/internal/location/models"
	memmodels "vecinal/internal/member/models"
	"vecinal/internal/query"
	"vecinal/internal/user/metrics"
	"vecinal/internal/user/models"
	"vecinal/internal/user/store"
	dErrors "vecinal/pkg/domain-errors"
	"vecinal/pkg/platform/sentinel"
	"vecinal/pkg/requestcontext"
)

// Schema is the admin account listing allow-list for the query builder.
var Schema = query.Schema{
	Filterable: map[string]query.FieldSpec{
		"role":                    {Path: "role", Kind: query.KindString},
		"username":                {Path: "username", Kind: query.KindString},
		"email":                   {Path: "email", Kind: query.KindString},
		"memberRegistrationCode":  {Path: "memberRegistrationCode", Kind: query.KindString},
		"location.departmentCode": {Path: "location.departmentCode", Kind: query.KindInt},
		"createdAt":               {Path: "createdAt", Kind: query.KindTime},
	},
	Sortable: map[string]string{
		"createdAt": "createdAt",
		"username":  "username",
		"name":      "name",
	},
	DefaultSort: "-createdAt",
}

// Locations is the slice of the location service accounts need.
type Locations interface {
	Enrich(ctx context.Context, loc locmodels.Location) locmodels.Enriched
	EnrichAll(ctx context.Context, locs []locmodels.Location) []locmodels.Enriched
	ValidateHierarchy(ctx context.Context, loc locmodels.Location) error
}

// Members is the slice of the member service linking needs. Claim is
// idempotent for the same user, which makes link retries safe.
type Members interface {
	Claim(ctx context.Context, code, userID string) (*memmodels.Member, error)
	Release(ctx context.Context, code, userID string)
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}

// Service orchestrates account management and linking.
type Service struct {
	users     store.Store
	locations Locations
	members   Members
	tokens    TokenIssuer
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

// New constructs a Service.
func New(users store.Store, locations Locations, members Members, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{users: users, locations: locations, members: members, tokens: tokens}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// RegisterInput carries a validated signup request. Username and Email
// arrive lowercased from the handler.
type RegisterInput struct {
	Name        string
	Username    string
	Email       string
	Password    string
	Location    locmodels.Location
	BirthDate   *time.Time
	Gender      string
	IDCard      string
	PhoneNumber string
}

// Session is an authenticated account plus its bearer token.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a USER account and opens a session for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := validateAccountLocation(in.Location); err != nil {
		s.metrics.IncrementSignup("invalid")
		return nil, err
	}
	if err := s.locations.ValidateHierarchy(ctx, in.Location); err != nil {
		s.metrics.IncrementSignup("invalid")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		IsActive:     true,
		BirthDate:    in.BirthDate,
		Gender:       in.Gender,
		IDCard:       in.IDCard,
		PhoneNumber:  in.PhoneNumber,
		Location:     in.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementSignup("duplicate")
			return nil, dErrors.New(dErrors.CodeConflict, "username or email is already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create account")
	}
	s.metrics.IncrementSignup("created")

	return s.openSession(user)
}

// Login verifies credentials and opens a session. The login value matches
// either the username or the email.
func (s *Service) Login(ctx context.Context, login, password string) (*Session, error) {
	user, err := s.users.ByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementLogin("bad_credentials")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "fetch account")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.metrics.IncrementLogin("bad_credentials")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
	}
	if !user.IsActive {
		s.metrics.IncrementLogin("inactive")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account is disabled")
	}
	s.metrics.IncrementLogin("ok")

	return s.openSession(user)
}

func (s *Service) openSession(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "issue token")
	}
	return &Session{User: user, Token: token}, nil
}

// Me fetches the authenticated account with full location enrichment.
func (s *Service) Me(ctx context.Context, userID string) (*models.Enriched, error) {
	user, err := s.byID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.Enriched{
		User:     *user,
		Location: s.locations.Enrich(ctx, user.Location),
	}, nil
}

// UpdateLocation replaces the account's location after hierarchy validation.
func (s *Service) UpdateLocation(ctx context.Context, userID string, loc locmodels.Location) (*models.Enriched, error) {
	if err := validateAccountLocation(loc); err != nil {
		return nil, err
	}
	if err := s.locations.ValidateHierarchy(ctx, loc); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateLocation(ctx, userID, loc)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update account location")
	}
	return &models.Enriched{
		User:     *user,
		Location: s.locations.Enrich(ctx, user.Location),
	}, nil
}

// List returns one admin page of accounts, department-enriched, plus the
// total filtered count.
func (s *Service) List(ctx context.Context, params url.Values) ([]models.Enriched, int, error) {
	q := query.Parse(params, Schema)
	if q.MatchNone() {
		return nil, 0, nil
	}
	users, total, err := s.users.List(ctx, q)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "list accounts")
	}

	locs := make([]locmodels.Location, len(users))
	for i, u := range users {
		locs[i] = locmodels.Location{DepartmentCode: u.Location.DepartmentCode}
	}
	enrichedLocs := s.locations.EnrichAll(ctx, locs)

	out := make([]models.Enriched, len(users))
	for i, u := range users {
		out[i] = models.Enriched{User: *u, Location: enrichedLocs[i]}
		out[i].Location.Location = u.Location
	}
	return out, total, nil
}

// UpdateRole changes an account's role.
func (s *Service) UpdateRole(ctx context.Context, userID, role string) (*models.User, error) {
	role, ok := models.ParseRole(role)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown role %q", role)
	}

	current, err := s.byID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.Role == role {
		return current, nil
	}

	user, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update account role")
	}
	s.metrics.IncrementRoleChange(role)
	audit.Emit(ctx, s.publisher, s.logger, audit.Event{
		Action:  audit.ActionUserRoleChanged,
		ActorID: requestcontext.UserID(ctx),
		Subject: userID,
		Detail:  fmt.Sprintf("%s -> %s", current.Role, role),
	})
	return user, nil
}

// LinkMember ties the account to a verified member record by registration
// code. The member side is claimed first; if the account-side write then
// fails, the claim is released so the member stays linkable. Re-linking the
// same code is a no-op and a retry after a half-failed link reconciles.
func (s *Service) LinkMember(ctx context.Context, userID, code string) (*memmodels.Member, error) {
	user, err := s.byID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.MemberRegistrationCode != "" && user.MemberRegistrationCode != code {
		return nil, dErrors.New(dErrors.CodeConflict, "account is already linked to a member")
	}

	member, err := s.members.Claim(ctx, code, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.SetMemberRegistrationCode(ctx, userID, code); err != nil {
		s.members.Release(ctx, code, userID)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "record member link")
	}
	audit.Emit(ctx, s.publisher, s.logger, audit.Event{
		Action:  audit.ActionMemberLinked,
		ActorID: userID,
		Subject: code,
	})
	return member, nil
}

func (s *Service) byID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "fetch account")
	}
	return user, nil
}

// Accounts only need the department; deeper levels are optional but must
// stay consistent when present.
func validateAccountLocation(loc locmodels.Location) error {
	if loc.DepartmentCode == nil {
		return dErrors.New(dErrors.CodeBadRequest, "departmentCode is required")
	}
	return nil
}
