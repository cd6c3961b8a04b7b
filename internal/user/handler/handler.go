// Package handler exposes the account and session endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	locmodels "vecinal/internal/location/models"
	memmodels "vecinal/internal/member/models"
	"vecinal/internal/user/models"
	"vecinal/internal/user/service"
	"vecinal/pkg/platform/httputil"
	"vecinal/pkg/requestcontext"
)

// Service defines the interface for account operations.
type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.Session, error)
	Login(ctx context.Context, login, password string) (*service.Session, error)
	Me(ctx context.Context, userID string) (*models.Enriched, error)
	UpdateLocation(ctx context.Context, userID string, loc locmodels.Location) (*models.Enriched, error)
	List(ctx context.Context, params url.Values) ([]models.Enriched, int, error)
	UpdateRole(ctx context.Context, userID, role string) (*models.User, error)
	LinkMember(ctx context.Context, userID, code string) (*memmodels.Member, error)
}

// Handler wires account endpoints to the user service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a user handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public session endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

// RegisterAuthenticated mounts the profile endpoints; the router wraps them
// in the auth check.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/users/me", h.HandleMe)
	r.Put("/users/me/location", h.HandleUpdateLocation)
	r.Put("/users/me/link-member", h.HandleLinkMember)
}

// RegisterAdmin mounts the account administration endpoints; the router
// wraps them in the admin role check.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/users", h.HandleList)
	r.Put("/users/{id}/role", h.HandleUpdateRole)
}

// HandleRegister handles POST /auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	session, err := h.service.Register(ctx, req.Input())
	if err != nil {
		h.logger.WarnContext(ctx, "signup rejected",
			"request_id", requestID,
			"username", req.Username,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"user":  session.User,
		"token": session.Token,
	})
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	session, err := h.service.Login(ctx, req.Login, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login rejected",
			"request_id", requestID,
			"login", req.Login,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"user":  session.User,
		"token": session.Token,
	})
}

// HandleMe handles GET /users/me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.service.Me(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

// HandleUpdateLocation handles PUT /users/me/location.
func (h *Handler) HandleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LocationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.UpdateLocation(ctx, requestcontext.UserID(ctx), req.Location)
	if err != nil {
		h.logger.WarnContext(ctx, "location update rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

// HandleLinkMember handles PUT /users/me/link-member.
func (h *Handler) HandleLinkMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LinkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	member, err := h.service.LinkMember(ctx, requestcontext.UserID(ctx), req.RegistrationCode)
	if err != nil {
		h.logger.WarnContext(ctx, "member link rejected",
			"request_id", requestID,
			"registration_code", req.RegistrationCode,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"member": member})
}

// HandleList handles GET /users.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, total, err := h.service.List(ctx, r.URL.Query())
	if err != nil {
		h.logger.ErrorContext(ctx, "list accounts failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, "users", users, len(users), total)
}

// HandleUpdateRole handles PUT /users/{id}/role.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id := chi.URLParam(r, "id")

	req, ok := httputil.DecodeAndPrepare[RoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.UpdateRole(ctx, id, req.Role)
	if err != nil {
		h.logger.WarnContext(ctx, "role change rejected",
			"request_id", requestID,
			"user_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}
