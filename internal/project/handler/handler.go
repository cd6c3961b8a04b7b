package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	locmodels "vecinal/internal/location/models"
	"vecinal/internal/project/models"
	"vecinal/internal/project/service"
	dErrors "vecinal/pkg/domain-errors"
	"vecinal/pkg/platform/httputil"
	"vecinal/pkg/requestcontext"
)

// Service defines the interface for project operations.
type Service interface {
	Create(ctx context.Context, in service.CreateInput) (*models.Project, error)
	Update(ctx context.Context, id string, in service.UpdateInput) (*models.Project, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params url.Values) ([]models.Enriched, int, error)
	Get(ctx context.Context, id string) (*models.Enriched, error)
}

// Handler wires project endpoints to the project service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a project handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public read endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/projects", h.HandleList)
	r.Get("/projects/{id}", h.HandleGet)
}

// RegisterStaff mounts the write endpoints.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Post("/projects", h.HandleCreate)
	r.Put("/projects/{id}", h.HandleUpdate)
}

// RegisterAdmin mounts deletion, which staff accounts cannot perform.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Delete("/projects/{id}", h.HandleDelete)
}

// CreateRequest is the body for POST /projects.
type CreateRequest struct {
	ProjectName   string             `json:"projectName"`
	Objective     string             `json:"objective"`
	Location      locmodels.Location `json:"location"`
	FundingSource string             `json:"fundingSource"`
	Beneficiaries int                `json:"beneficiaries"`
	StartDate     string             `json:"startDate"`
	EndDate       string             `json:"endDate"`
	Status        string             `json:"status"`

	parsedStart  time.Time
	parsedEnd    time.Time
	parsedStatus models.Status
}

func (r *CreateRequest) Validate() error {
	r.ProjectName = strings.TrimSpace(r.ProjectName)
	r.Objective = strings.TrimSpace(r.Objective)

	start, err := parseDate(r.StartDate, "startDate")
	if err != nil {
		return err
	}
	end, err := parseDate(r.EndDate, "endDate")
	if err != nil {
		return err
	}
	r.parsedStart, r.parsedEnd = start, end

	if r.Status != "" {
		status, ok := models.ParseStatus(strings.ToUpper(r.Status))
		if !ok {
			return dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", r.Status)
		}
		r.parsedStatus = status
	}
	return nil
}

// UpdateRequest is the body for PUT /projects/{id}; absent fields stay
// untouched.
type UpdateRequest struct {
	ProjectName   *string             `json:"projectName"`
	Objective     *string             `json:"objective"`
	Location      *locmodels.Location `json:"location"`
	FundingSource *string             `json:"fundingSource"`
	Beneficiaries *int                `json:"beneficiaries"`
	StartDate     *string             `json:"startDate"`
	EndDate       *string             `json:"endDate"`
	Status        *string             `json:"status"`

	parsedStart  *time.Time
	parsedEnd    *time.Time
	parsedStatus *models.Status
}

func (r *UpdateRequest) Validate() error {
	if r.StartDate != nil {
		start, err := parseDate(*r.StartDate, "startDate")
		if err != nil {
			return err
		}
		r.parsedStart = &start
	}
	if r.EndDate != nil {
		end, err := parseDate(*r.EndDate, "endDate")
		if err != nil {
			return err
		}
		r.parsedEnd = &end
	}
	if r.Status != nil {
		status, ok := models.ParseStatus(strings.ToUpper(*r.Status))
		if !ok {
			return dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", *r.Status)
		}
		r.parsedStatus = &status
	}
	return nil
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

// HandleList handles GET /projects.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projects, total, err := h.service.List(ctx, r.URL.Query())
	if err != nil {
		h.logger.ErrorContext(ctx, "list projects failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, "projects", projects, len(projects), total)
}

// HandleGet handles GET /projects/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"project": project})
}

// HandleCreate handles POST /projects.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	project, err := h.service.Create(ctx, service.CreateInput{
		ProjectName:   req.ProjectName,
		Objective:     req.Objective,
		Location:      req.Location,
		FundingSource: req.FundingSource,
		Beneficiaries: req.Beneficiaries,
		StartDate:     req.parsedStart,
		EndDate:       req.parsedEnd,
		Status:        req.parsedStatus,
		CreatedByID:   requestcontext.UserID(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "project creation rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"project": project})
}

// HandleUpdate handles PUT /projects/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id := chi.URLParam(r, "id")

	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	project, err := h.service.Update(ctx, id, service.UpdateInput{
		ProjectName:   req.ProjectName,
		Objective:     req.Objective,
		Location:      req.Location,
		FundingSource: req.FundingSource,
		Beneficiaries: req.Beneficiaries,
		StartDate:     req.parsedStart,
		EndDate:       req.parsedEnd,
		Status:        req.parsedStatus,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "project update rejected",
			"request_id", requestID,
			"project_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"project": project})
}

// HandleDelete handles DELETE /projects/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "project deleted", nil)
}
